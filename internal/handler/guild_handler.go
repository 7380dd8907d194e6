package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/takumi/shiftgate/internal/bot"
	"github.com/takumi/shiftgate/internal/middleware"
	"github.com/takumi/shiftgate/internal/model"
)

// SettingsFinder はギルド設定の型付き参照インターフェース。
// repository.SettingsRepositoryの部分集合として定義する。
type SettingsFinder interface {
	FindByID(ctx context.Context, guildID string) (*model.GuildSettings, error)
}

// GuildHandler はギルド照会系のHTTPハンドラー。
type GuildHandler struct {
	bot      BotInterface
	settings SettingsFinder
}

// NewGuildHandler はGuildHandlerを生成する。
func NewGuildHandler(b BotInterface, settings SettingsFinder) *GuildHandler {
	return &GuildHandler{bot: b, settings: settings}
}

// GetMutualGuilds は指定されたギルドIDのうち、Botが参加している
// ギルドの要約一覧を返す。不明なIDは黙ってスキップする。
// POST /get_mutual_guilds
func (h *GuildHandler) GetMutualGuilds(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Guilds []model.ID `json:"guilds"`
	}
	decodeBody(r, &body)
	if len(body.Guilds) == 0 {
		middleware.WriteDetail(w, http.StatusBadRequest, "No guild ids given")
		return
	}

	guilds := []model.GuildSummary{}
	for _, id := range body.Guilds {
		guild := h.bot.Guild(id.String())
		if guild == nil {
			continue
		}
		guilds = append(guilds, model.GuildSummary{
			ID:      guild.ID,
			Name:    guild.Name,
			IconURL: guild.IconURL,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"guilds": guilds})
}

// GetStaffGuilds は指定されたギルドのうち、対象ユーザーがスタッフ以上の
// 権限を持つギルドの要約一覧を返す。メンバーが見つからないギルドは
// スキップする。
// POST /get_staff_guilds
func (h *GuildHandler) GetStaffGuilds(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Guilds []model.ID `json:"guilds"`
		User   model.ID   `json:"user"`
	}
	decodeBody(r, &body)
	if len(body.Guilds) == 0 {
		middleware.WriteDetail(w, http.StatusBadRequest, "No guilds specified")
		return
	}

	guilds := []model.GuildSummary{}
	for _, id := range body.Guilds {
		guild := h.bot.Guild(id.String())
		if guild == nil {
			continue
		}

		member, err := h.bot.Member(r.Context(), guild.ID, body.User.String())
		if err != nil || member == nil {
			continue
		}

		level := h.permissionLevel(r.Context(), guild, member)
		if level == model.PermissionNone {
			continue
		}

		guilds = append(guilds, model.GuildSummary{
			ID:              guild.ID,
			Name:            guild.Name,
			IconURL:         guild.IconURL,
			MemberCount:     strconv.Itoa(guild.MemberCount),
			PermissionLevel: level,
		})
	}

	writeJSON(w, http.StatusOK, guilds)
}

// CheckStaffLevel は対象ユーザーの指定ギルドにおける権限レベルを返す。
// メンバーが見つからない場合はレベル0として扱う。
// POST /check_staff_level
func (h *GuildHandler) CheckStaffLevel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Guild model.ID `json:"guild"`
		User  model.ID `json:"user"`
	}
	decodeBody(r, &body)
	if body.Guild == "" || body.User == "" {
		middleware.WriteDetail(w, http.StatusBadRequest, "Invalid guild")
		return
	}

	guild := h.bot.Guild(body.Guild.String())
	if guild == nil {
		middleware.WriteDetail(w, http.StatusBadRequest, "Invalid guild")
		return
	}

	member, err := h.bot.Member(r.Context(), guild.ID, body.User.String())
	if err != nil || member == nil {
		writeJSON(w, http.StatusOK, map[string]int{"permission_level": model.PermissionNone})
		return
	}

	level := h.permissionLevel(r.Context(), guild, member)
	writeJSON(w, http.StatusOK, map[string]int{"permission_level": level})
}

// permissionLevel はギルド設定のロールリストから権限レベルを算出する。
// 設定の取得に失敗した場合は設定なしとして判定する（オーナーは設定に
// かかわらずマネジメント扱い）。
func (h *GuildHandler) permissionLevel(ctx context.Context, guild *bot.Guild, member *bot.Member) int {
	settings, err := h.settings.FindByID(ctx, guild.ID)
	if err != nil {
		settings = nil
	}
	return bot.PermissionLevel(settings, member, guild.OwnerID)
}
