package app

import (
	"bytes"
	"testing"
)

// TestRun_ServeCommand_AttemptsMongoConnection はserveコマンドがMongoDB接続を
// 試みることを検証する。テスト環境では接続先が存在しないため、エラーが返る
// ことを許容する。serverSelectionTimeoutMSを短くしてテストの待ち時間を抑える。
func TestRun_ServeCommand_AttemptsMongoConnection(t *testing.T) {
	setTestEnv(t)

	var buf bytes.Buffer
	err := Run(&buf, []string{"serve"})
	if err == nil {
		// CI/ローカルにMongoDBとDiscord疎通がある場合のみここに到達する。
		t.Log("Run(serve) succeeded - dependencies are available in test environment")
	}
}

// TestRun_DefaultCommand_AttemptsMongoConnection はデフォルトコマンド（serve）が
// MongoDB接続を試みることを検証する。
func TestRun_DefaultCommand_AttemptsMongoConnection(t *testing.T) {
	setTestEnv(t)

	var buf bytes.Buffer
	err := Run(&buf, []string{})
	if err == nil {
		t.Log("Run([]) succeeded - dependencies are available in test environment")
	}
}

func TestRun_WithMissingEnv_ReturnsError(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("API_STATIC_TOKEN", "")
	t.Setenv("API_PRIVATE_KEY", "")

	var buf bytes.Buffer
	err := Run(&buf, []string{"serve"})
	if err == nil {
		t.Fatal("Run with missing env should return error")
	}
}

func setTestEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MONGODB_URI", "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200&connectTimeoutMS=200")
	t.Setenv("DISCORD_TOKEN", "test-bot-token")
	t.Setenv("API_STATIC_TOKEN", "test-static-token")
	t.Setenv("API_PRIVATE_KEY", "test-private-key")
}
