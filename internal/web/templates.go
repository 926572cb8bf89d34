// Package web はサーバーレンダリング用のビューと共通のエラーハンドリングを提供します。
package web

import (
	"embed"
	"html/template"
)

// ビュー名（templates/ 配下のファイル名）
const (
	HomeView   = "home.html"
	SignupView = "signup.html"
	LoginView  = "login.html"
	SecretView = "secret.html"
	ErrorView  = "error.html"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates は埋め込みテンプレートを一度だけパースして返します。
// gin.Engine.SetHTMLTemplate に渡して使います。
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}
