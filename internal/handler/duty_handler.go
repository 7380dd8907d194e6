package handler

import (
	"context"
	"net/http"

	"github.com/takumi/shiftgate/internal/bot"
	"github.com/takumi/shiftgate/internal/middleware"
	"github.com/takumi/shiftgate/internal/model"
)

// ShiftServiceInterface は勤務ハンドラーが必要とするサービスインターフェース。
type ShiftServiceInterface interface {
	Open(ctx context.Context, memberID, guildID, shiftType string) (*model.ShiftEntry, error)
	Close(ctx context.Context, memberID, guildID string) (*model.ShiftEntry, error)
	OnlineByGuild(ctx context.Context, guildID string) ([]model.OnlineStaff, error)
}

// DutyHandler は勤務開始・終了と勤務中スタッフ照会のHTTPハンドラー。
type DutyHandler struct {
	bot      BotInterface
	links    LinkStringFinder
	fivem    FivemLinkFinder
	settings SettingsFinder
	shifts   ShiftServiceInterface
}

// NewDutyHandler はDutyHandlerを生成する。
func NewDutyHandler(
	b BotInterface,
	links LinkStringFinder,
	fivem FivemLinkFinder,
	settings SettingsFinder,
	shifts ShiftServiceInterface,
) *DutyHandler {
	return &DutyHandler{
		bot:      b,
		links:    links,
		fivem:    fivem,
		settings: settings,
		shifts:   shifts,
	}
}

// dutyBody は勤務系エンドポイントのリクエストボディ。
type dutyBody struct {
	SteamID   string   `json:"steam_id"`
	ShiftType string   `json:"shift_type"`
	Guild     model.ID `json:"guild"`
}

// resolveGuildFromToken はコンテキストの動的トークンから
// リンク文字列 → ギルドの連鎖を解決する。失敗時はエラーレスポンスを
// 書き込みnilを返す。
func (h *DutyHandler) resolveGuildFromToken(w http.ResponseWriter, r *http.Request) *bot.Guild {
	token, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		middleware.WriteDetail(w, http.StatusUnauthorized, "Invalid authorization")
		return nil
	}

	link, err := h.links.FindByID(r.Context(), token.LinkString)
	if err != nil {
		handleServiceError(w, err)
		return nil
	}
	if link == nil {
		middleware.WriteDetail(w, http.StatusUnauthorized, "Invalid link string")
		return nil
	}

	guild := h.bot.Guild(link.Guild)
	if guild == nil {
		middleware.WriteDetail(w, http.StatusNotFound, "Guild not found")
		return nil
	}
	return guild
}

// resolveMember はSteam IDからFiveM紐付け経由でギルドメンバーを解決する。
// 失敗時はエラーレスポンスを書き込みnilを返す。
func (h *DutyHandler) resolveMember(w http.ResponseWriter, r *http.Request, guild *bot.Guild, steamID string) *bot.Member {
	if steamID == "" {
		middleware.WriteDetail(w, http.StatusBadRequest, "No steam ID provided")
		return nil
	}

	fivemLink, err := h.fivem.FindBySteamID(r.Context(), steamID)
	if err != nil {
		handleServiceError(w, err)
		return nil
	}
	if fivemLink == nil || fivemLink.ID == "" {
		middleware.WriteDetail(w, http.StatusNotFound, "Could not find FiveM link")
		return nil
	}

	member, err := h.bot.Member(r.Context(), guild.ID, fivemLink.ID)
	if err != nil || member == nil {
		middleware.WriteDetail(w, http.StatusNotFound, "Could not find Discord member")
		return nil
	}
	return member
}

// DutyOn はトークン → リンク文字列 → ギルドの連鎖を解決し、Steam IDで
// 特定されたメンバーの勤務を開始する。勤務種別が指定された場合はギルド
// 設定に存在する種別のみを受け付ける。
// POST /duty_on
func (h *DutyHandler) DutyOn(w http.ResponseWriter, r *http.Request) {
	guild := h.resolveGuildFromToken(w, r)
	if guild == nil {
		return
	}

	var body dutyBody
	if !decodeBody(r, &body) {
		middleware.WriteDetail(w, http.StatusBadRequest, "No body provided")
		return
	}

	member := h.resolveMember(w, r, guild, body.SteamID)
	if member == nil {
		return
	}

	settings, err := h.settings.FindByID(r.Context(), guild.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if settings == nil {
		middleware.WriteDetail(w, http.StatusNotFound, "Could not find settings")
		return
	}

	if body.ShiftType != "" && !settings.HasShiftType(body.ShiftType) {
		middleware.WriteDetail(w, http.StatusBadRequest, "Invalid shift type")
		return
	}

	if _, err := h.shifts.Open(r.Context(), member.ID, guild.ID, body.ShiftType); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"member":     member.ID,
		"shift_type": body.ShiftType,
	})
}

// DutyOff はメンバーの指定ギルドにおけるアクティブな勤務を終了する。
// 動的トークンではギルドをリンク文字列から解決し、静的トークンでは
// ボディのguildフィールドを使用する（運用系クライアント向けの別経路）。
// POST /duty_off
func (h *DutyHandler) DutyOff(w http.ResponseWriter, r *http.Request) {
	var body dutyBody
	if !decodeBody(r, &body) {
		middleware.WriteDetail(w, http.StatusBadRequest, "No body provided")
		return
	}

	var guild *bot.Guild
	if _, ok := middleware.TokenFromContext(r.Context()); ok {
		guild = h.resolveGuildFromToken(w, r)
		if guild == nil {
			return
		}
	} else {
		// 静的トークン経路: ギルドはボディから受け取る
		guild = h.bot.Guild(body.Guild.String())
		if guild == nil {
			middleware.WriteDetail(w, http.StatusNotFound, "Guild not found")
			return
		}
	}

	member := h.resolveMember(w, r, guild, body.SteamID)
	if member == nil {
		return
	}

	settings, err := h.settings.FindByID(r.Context(), guild.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if settings == nil {
		middleware.WriteDetail(w, http.StatusNotFound, "Could not find settings")
		return
	}

	if _, err := h.shifts.Close(r.Context(), member.ID, guild.ID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"member": member.ID,
	})
}

// GetOnlineStaff はトークンに紐付いたギルドで勤務中のメンバーの一覧を
// 返す。各エントリにはDiscord IDと、紐付けがある場合はSteam IDが付く。
// GET /get_online_staff
func (h *DutyHandler) GetOnlineStaff(w http.ResponseWriter, r *http.Request) {
	guild := h.resolveGuildFromToken(w, r)
	if guild == nil {
		return
	}

	staff, err := h.shifts.OnlineByGuild(r.Context(), guild.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, staff)
}
