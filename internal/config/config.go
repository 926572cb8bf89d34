// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ストアドライバー名
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// bcrypt が受け付けるコストの範囲
const (
	minBcryptCost = 4
	maxBcryptCost = 31
)

// Config はアプリケーションの設定を保持する構造体です。
// Load で一度だけ作成し、以降は読み取り専用として扱います。
type Config struct {
	// 認証設定
	SecretSession string // トークン署名用の秘密鍵（必須）
	BcryptCost    int    // パスワードハッシュのコスト
	CSRFSecret    string // CSRF 用セッションクッキーの署名鍵（空なら CSRF 保護なし）

	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// ユーザーストア設定
	StoreDriver string // memory, redis, sqlite
	RedisURL    string // redis ドライバー用の接続URL
	SQLitePath  string // sqlite ドライバー用のDBファイル
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	// .env.local ファイルを読み込む（存在しない場合はスキップ）
	loadEnvFile()

	config := &Config{
		SecretSession: getEnv("SECRET_SESSION", ""),
		BcryptCost:    getEnvAsInt("BCRYPT_COST", 10),
		CSRFSecret:    getEnv("CSRF_SECRET", ""),

		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreMemory)),
		RedisURL:    getEnv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		SQLitePath:  getEnv("SQLITE_PATH", "./auth.db"),
	}

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	// 秘密鍵がないとトークンの署名ができないので起動させない
	if c.SecretSession == "" {
		return fmt.Errorf("SECRET_SESSION is required")
	}
	if c.BcryptCost < minBcryptCost || c.BcryptCost > maxBcryptCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", minBcryptCost, maxBcryptCost, c.BcryptCost)
	}

	switch c.StoreDriver {
	case StoreMemory:
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis store")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.GinMode == "release" && c.CSRFSecret == "" {
		return fmt.Errorf("CSRF_SECRET is required in release mode")
	}

	return nil
}

// SecureCookies はクッキーに Secure 属性を付けるかどうかを返します。
func (c *Config) SecureCookies() bool {
	return c.GinMode == "release"
}

// AllowedOrigins は CORS 許可オリジンを配列で返します。
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
