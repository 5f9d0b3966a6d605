// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// アカウント設定
	DefaultProfileImage string // プロフィール画像未設定時のフォールバックURL
	SeedDemoUsers       bool   // 起動時にデモユーザーを投入するかどうか

	// レート制限設定
	RateLimitRedisURL string // レート制限カウンタ用Redis接続URL（空ならメモリ内カウンタ）
	SignupPerMinute   int    // サインアップの分間許容回数
	LoginPerMinute    int    // ログインの分間許容回数
	MeCheckPerMinute  int    // ログイン状態確認の分間許容回数
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	// .env.local ファイルを読み込む（存在しない場合はスキップ）
	loadEnvFile()

	config := &Config{
		// サーバー設定
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		// アカウント設定
		DefaultProfileImage: getEnv("DEFAULT_PROFILE_IMAGE", "https://image.kr/img.jpg"),
		SeedDemoUsers:       getEnvAsBool("SEED_DEMO_USERS", false),

		// レート制限設定
		RateLimitRedisURL: getEnv("RATE_LIMIT_REDIS_URL", ""),
		SignupPerMinute:   getEnvAsInt("SIGNUP_PER_MINUTE", 5),
		LoginPerMinute:    getEnvAsInt("LOGIN_PER_MINUTE", 10),
		MeCheckPerMinute:  getEnvAsInt("ME_CHECK_PER_MINUTE", 60),
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
	if c.SignupPerMinute <= 0 {
		return fmt.Errorf("SIGNUP_PER_MINUTE must be positive")
	}
	if c.LoginPerMinute <= 0 {
		return fmt.Errorf("LOGIN_PER_MINUTE must be positive")
	}
	if c.MeCheckPerMinute <= 0 {
		return fmt.Errorf("ME_CHECK_PER_MINUTE must be positive")
	}

	// ローカル開発ではCORS設定は任意
	// 本番環境では厳格にチェックする想定
	if c.GinMode == "release" {
		if c.CORSAllowedOrigins == "" {
			return fmt.Errorf("CORS_ALLOWED_ORIGINS is required in release mode")
		}
		if c.SeedDemoUsers {
			return fmt.Errorf("SEED_DEMO_USERS must not be enabled in release mode")
		}
	}

	return nil
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

// getEnvAsBool は環境変数を真偽値として取得します。
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
