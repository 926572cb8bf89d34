package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roicid/proyectomodulo2/internal/users"
)

const (
	// TokenCookieName はセッショントークンを保持するクッキー名です。
	TokenCookieName = "token"
	// ContextUserKey は、ゲートを通過したユーザーをハンドラーへ渡すためのキーです。
	ContextUserKey = "auth.user"
)

// ErrDenied はゲートがリクエストを拒否したことを表します。
var ErrDenied = errors.New("authentication required")

// Gate は保護ルートの前に置くアクセス制御です。
type Gate struct {
	tokens *TokenService
}

// NewGate は Gate を作成します。
func NewGate(tokens *TokenService) *Gate {
	return &Gate{tokens: tokens}
}

// Authenticate はクッキーのトークンを検証し、埋め込まれたプロフィールを返します。
// クッキーがない・不正・期限切れの場合は ErrDenied をラップしたエラーを返します。
func (g *Gate) Authenticate(r *http.Request) (*users.Profile, error) {
	cookie, err := r.Cookie(TokenCookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrDenied
	}

	claims, err := g.tokens.Verify(cookie.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDenied, err)
	}
	if claims.UserWithoutPass.Email == "" {
		return nil, fmt.Errorf("%w: token carries no user", ErrDenied)
	}

	profile := claims.UserWithoutPass
	return &profile, nil
}

// RequireLogin は未認証のリクエストを / へリダイレクトするミドルウェアを返します。
func (g *Gate) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := g.Authenticate(c.Request)
		if err != nil {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Set(ContextUserKey, profile)
		c.Next()
	}
}

// CurrentUser はゲートが設定したユーザーを取り出します。
func CurrentUser(c *gin.Context) (*users.Profile, bool) {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	profile, ok := value.(*users.Profile)
	return profile, ok && profile != nil
}
