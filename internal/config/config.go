// Package config は環境変数からのアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	MongoURI      string
	MongoDatabase string

	// Discord
	DiscordToken string

	// API secrets
	StaticToken string // テナント固定のバイパストークン（ダッシュボード用）
	PrivateKey  string // トークン発行エンドポイントを保護する秘密鍵

	// Token
	TokenTTL time.Duration

	// Rate Limit
	RateLimitGeneral    int // 全API共通（req/min/クライアント）
	RateLimitTokenIssue int // トークン発行（req/min/クライアント）

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.MongoURI = os.Getenv("MONGODB_URI")
	if cfg.MongoURI == "" {
		missing = append(missing, "MONGODB_URI")
	}

	cfg.DiscordToken = os.Getenv("DISCORD_TOKEN")
	if cfg.DiscordToken == "" {
		missing = append(missing, "DISCORD_TOKEN")
	}

	cfg.StaticToken = os.Getenv("API_STATIC_TOKEN")
	if cfg.StaticToken == "" {
		missing = append(missing, "API_STATIC_TOKEN")
	}

	cfg.PrivateKey = os.Getenv("API_PRIVATE_KEY")
	if cfg.PrivateKey == "" {
		missing = append(missing, "API_PRIVATE_KEY")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.MongoDatabase = getEnvString("MONGODB_DATABASE", "shiftgate")
	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", 720*time.Hour) // 30日 = 2,592,000秒
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitTokenIssue = getEnvInt("RATE_LIMIT_TOKEN_ISSUE", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
