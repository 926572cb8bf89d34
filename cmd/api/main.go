// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/roicid/proyectomodulo2/internal/auth"
	"github.com/roicid/proyectomodulo2/internal/config"
	"github.com/roicid/proyectomodulo2/internal/users"
	"github.com/roicid/proyectomodulo2/internal/web"
)

func main() {
	// 設定の読み込み（SECRET_SESSION がなければここで終了する）
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := newLogger(cfg)

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	store, err := openUserStore(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to open user store: %v", err)
	}
	defer store.Close()

	router, err := newRouter(cfg, store, logger)
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	// サーバーの起動
	addr := ":" + cfg.Port
	logger.Info("starting auth server", "addr", addr, "mode", cfg.GinMode, "store", cfg.StoreDriver)
	if err := router.Run(addr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// newLogger は release モードでは JSON、それ以外ではテキストのロガーを返します。
func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.GinMode == gin.ReleaseMode {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// newRouter はミドルウェアとルーティングを配線した gin.Engine を返します。
func newRouter(cfg *config.Config, store users.Store, logger *slog.Logger) (*gin.Engine, error) {
	tokens, err := auth.NewTokenService(cfg.SecretSession)
	if err != nil {
		return nil, err
	}
	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()
	router.SetHTMLTemplate(tmpl)

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins()
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"X-CSRF-Token", // CSRF保護用ヘッダー
	}
	router.Use(cors.New(corsConfig))
	router.Use(web.HandleErrors(logger))

	if cfg.CSRFSecret != "" {
		router.Use(auth.CSRFSessions(cfg.CSRFSecret, cfg.SecureCookies()), auth.VerifyCSRF())
	} else {
		logger.Warn("CSRF_SECRET is not set, form submissions are not CSRF protected")
	}

	setupRoutes(router, cfg, store, tokens)
	return router, nil
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "auth",
		"version": "0.1.0",
	})
}

// setupRoutes は認証まわりの配線を行います。
func setupRoutes(router *gin.Engine, cfg *config.Config, store users.Store, tokens *auth.TokenService) {
	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", handleHealth)

	service := auth.NewService(store, auth.NewBcryptHasher(cfg.BcryptCost), tokens)
	gate := auth.NewGate(tokens)
	auth.NewHandler(service, gate, cfg.SecureCookies()).Register(router)
}
