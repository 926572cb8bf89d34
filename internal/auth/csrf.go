package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/roicid/proyectomodulo2/internal/web"
)

const (
	// CSRFCookieName は CSRF トークンを保持するセッションクッキー名です。
	CSRFCookieName = "csrf_session"
	// CSRFFormField はフォームに埋め込む hidden フィールド名です。
	CSRFFormField = "_csrf"

	sessionKeyCSRF = "csrf_token"
	csrfHeader     = "X-CSRF-Token"
	csrfContextKey = "auth.csrf"

	msgCSRFInvalid = "Invalid form submission, please reload the page and try again."
)

// CSRFSessions は CSRF トークン用のクッキーセッションを有効にするミドルウェアを返します。
// VerifyCSRF より前に登録してください。
func CSRFSessions(secret string, secure bool) gin.HandlerFunc {
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(CSRFCookieName, store)
}

// VerifyCSRF は安全なメソッドではトークンを発行し、それ以外では
// _csrf フィールドまたは X-CSRF-Token ヘッダーを検証するミドルウェアです。
func VerifyCSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		expected, _ := session.Get(sessionKeyCSRF).(string)

		if isSafeMethod(c.Request.Method) {
			if expected == "" {
				token, err := generateToken()
				if err != nil {
					_ = c.Error(err)
					c.Abort()
					return
				}
				session.Set(sessionKeyCSRF, token)
				if err := session.Save(); err != nil {
					_ = c.Error(err)
					c.Abort()
					return
				}
				expected = token
			}
			c.Set(csrfContextKey, expected)
			c.Next()
			return
		}

		received := c.GetHeader(csrfHeader)
		if received == "" {
			received = c.PostForm(CSRFFormField)
		}
		if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(received)) != 1 {
			c.HTML(http.StatusForbidden, web.ErrorView, gin.H{
				"errorMessage": msgCSRFInvalid,
			})
			c.Abort()
			return
		}

		c.Set(csrfContextKey, expected)
		c.Next()
	}
}

// CSRFToken はビューに埋め込むトークンを返します。CSRF 保護が無効なら空文字です。
func CSRFToken(c *gin.Context) string {
	return c.GetString(csrfContextKey)
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
