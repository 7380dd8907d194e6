package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/takumi/shiftgate/internal/bot"
)

// BotInterface はハンドラーが必要とするBot機能のインターフェース。
type BotInterface interface {
	// GuildCount はBotが参加しているギルド数を返す。
	GuildCount() int

	// Latency はゲートウェイのハートビートレイテンシを返す。
	Latency() time.Duration

	// Guild はステートキャッシュからギルドを取得する。
	// Botがメンバーでないギルドはnilを返す。
	Guild(id string) *bot.Guild

	// Member はギルドメンバーを取得する。取得できない場合はエラーを返す。
	Member(ctx context.Context, guildID, userID string) (*bot.Member, error)
}

// StatusHandler は稼働状態系のHTTPハンドラー。
type StatusHandler struct {
	bot BotInterface
}

// NewStatusHandler はStatusHandlerを生成する。
func NewStatusHandler(b BotInterface) *StatusHandler {
	return &StatusHandler{bot: b}
}

// Status はBotの参加ギルド数とゲートウェイレイテンシ（ミリ秒）を返す。
// GET /status
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"guilds": h.bot.GuildCount(),
		"ping":   int(h.bot.Latency().Round(time.Millisecond) / time.Millisecond),
	})
}

// Health はプロセスの生存確認に応答する。
// GET /health
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
