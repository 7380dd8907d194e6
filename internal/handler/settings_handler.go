package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/takumi/shiftgate/internal/middleware"
	"github.com/takumi/shiftgate/internal/model"
)

// SettingsStore はギルド設定ドキュメントの参照・マージ更新インターフェース。
// repository.SettingsRepositoryの部分集合として定義する。
type SettingsStore interface {
	FindDocument(ctx context.Context, guildID string) (map[string]any, error)
	MergeSection(ctx context.Context, guildID, section string, fields map[string]any) error
}

// SettingsHandler はギルド設定のHTTPハンドラー。
type SettingsHandler struct {
	settings SettingsStore
}

// NewSettingsHandler はSettingsHandlerを生成する。
func NewSettingsHandler(settings SettingsStore) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// GetGuildSettings は指定ギルドの設定ドキュメント全体を返す。
// POST /get_guild_settings
func (h *SettingsHandler) GetGuildSettings(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Guild model.ID `json:"guild"`
	}
	decodeBody(r, &body)
	if body.Guild == "" {
		middleware.WriteDetail(w, http.StatusBadRequest, "Invalid guild")
		return
	}

	doc, err := h.settings.FindDocument(r.Context(), body.Guild.String())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if doc == nil {
		middleware.WriteDetail(w, http.StatusBadRequest, "Invalid guild")
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// UpdateGuildSettings は設定ドキュメントのmap値セクションのみを
// ネストキー単位でマージ更新し、更新後のドキュメント全体を返す。
// map以外の値を持つキーは無視する。
// POST /update_guild_settings
func (h *SettingsHandler) UpdateGuildSettings(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	decodeBody(r, &body)

	var guild model.ID
	if raw, ok := body["guild"]; ok {
		_ = json.Unmarshal(raw, &guild)
	}
	if guild == "" {
		middleware.WriteDetail(w, http.StatusBadRequest, "Invalid guild")
		return
	}
	guildID := guild.String()

	existing, err := h.settings.FindDocument(r.Context(), guildID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if existing == nil {
		middleware.WriteDetail(w, http.StatusBadRequest, "Invalid guild")
		return
	}

	for key, value := range body {
		if key == "guild" {
			continue
		}
		// map値のセクションのみマージ対象とする
		var fields map[string]any
		if err := json.Unmarshal(value, &fields); err != nil || fields == nil {
			continue
		}
		if err := h.settings.MergeSection(r.Context(), guildID, key, fields); err != nil {
			handleServiceError(w, err)
			return
		}
	}

	updated, err := h.settings.FindDocument(r.Context(), guildID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if updated == nil {
		middleware.WriteDetail(w, http.StatusNotFound, "Guild does not have settings attribute")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// GetLastWarnings は過去に提供していた警告参照APIの跡地。
// POST /get_last_warnings
func (h *SettingsHandler) GetLastWarnings(w http.ResponseWriter, r *http.Request) {
	middleware.WriteDetail(w, http.StatusInternalServerError, "This API is deprecated")
}
