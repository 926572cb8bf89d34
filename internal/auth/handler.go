// Package auth は認証・認可機能を提供します。
//
// サインアップ・ログインのハンドラー、セッショントークンの発行と検証、
// 保護ルートの前に置くゲート（RequireLogin）、CSRF 検証を含みます。
package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roicid/proyectomodulo2/internal/web"
)

type credentialsRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Handler は認証まわりの HTTP ハンドラーです。
type Handler struct {
	service       *Service
	gate          *Gate
	secureCookies bool
}

// NewHandler は Handler を作成します。secureCookies が true なら Secure 属性を付けます。
func NewHandler(service *Service, gate *Gate, secureCookies bool) *Handler {
	return &Handler{
		service:       service,
		gate:          gate,
		secureCookies: secureCookies,
	}
}

// Register はルートを登録します。/secret と /logout はゲートの後ろに置きます。
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/", h.Home)
	r.GET("/signup", h.SignupForm)
	r.POST("/signup", h.Signup)
	r.GET("/login", h.LoginForm)
	r.POST("/login", h.Login)
	r.GET("/secret", h.gate.RequireLogin(), h.Secret)
	r.GET("/logout", h.gate.RequireLogin(), h.Logout)
}

// Home はトップページです。有効なトークンがあればログイン中のユーザーを表示します。
func (h *Handler) Home(c *gin.Context) {
	data := gin.H{}
	if profile, err := h.gate.Authenticate(c.Request); err == nil {
		data["user"] = profile
	}
	h.render(c, web.HomeView, data)
}

// SignupForm は GET /signup のハンドラーです。
func (h *Handler) SignupForm(c *gin.Context) {
	h.render(c, web.SignupView, nil)
}

// Signup は POST /signup のハンドラーです。
func (h *Handler) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		h.render(c, web.SignupView, gin.H{"errorMessage": MsgSignupMissingFields})
		return
	}

	if _, err := h.service.Signup(c.Request.Context(), req.Email, req.Password); err != nil {
		var authErr *Error
		if errors.As(err, &authErr) {
			h.render(c, web.SignupView, gin.H{
				"errorMessage": authErr.Message,
				"email":        req.Email,
			})
			return
		}
		_ = c.Error(err)
		c.Abort()
		return
	}

	h.render(c, web.HomeView, gin.H{"message": MsgUserCreated})
}

// LoginForm は GET /login のハンドラーです。
func (h *Handler) LoginForm(c *gin.Context) {
	h.render(c, web.LoginView, nil)
}

// Login は POST /login のハンドラーです。成功時はトークンをクッキーに設定して / へリダイレクトします。
func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		h.render(c, web.LoginView, gin.H{"errorMessage": MsgLoginMissingFields})
		return
	}

	session, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		var authErr *Error
		if errors.As(err, &authErr) {
			h.render(c, web.LoginView, gin.H{
				"errorMessage": authErr.Message,
				"email":        req.Email,
			})
			return
		}
		_ = c.Error(err)
		c.Abort()
		return
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     TokenCookieName,
		Value:    session.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	c.Redirect(http.StatusFound, "/")
}

// Secret はゲート通過後のユーザー情報を表示します。
func (h *Handler) Secret(c *gin.Context) {
	profile, ok := CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	h.render(c, web.SecretView, gin.H{"user": profile})
}

// Logout はクッキーを空値・過去の有効期限で上書きします。
// トークンはサーバーに保存していないため、サーバー側での失効処理はありません。
func (h *Handler) Logout(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) render(c *gin.Context, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["csrfToken"] = CSRFToken(c)
	data["csrfField"] = CSRFFormField
	c.HTML(http.StatusOK, name, data)
}
