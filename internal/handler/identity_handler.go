package handler

import (
	"context"
	"net/http"

	"github.com/takumi/shiftgate/internal/middleware"
	"github.com/takumi/shiftgate/internal/model"
)

// LinkStringFinder はリンク文字列の参照インターフェース。
// repository.LinkStringRepositoryの部分集合として定義する。
type LinkStringFinder interface {
	FindByID(ctx context.Context, id string) (*model.LinkString, error)
}

// FivemLinkFinder はゲームプラットフォーム紐付けの参照インターフェース。
// repository.FivemLinkRepositoryの部分集合として定義する。
type FivemLinkFinder interface {
	FindByID(ctx context.Context, discordID string) (*model.FivemLink, error)
	FindByLicense(ctx context.Context, license string) (*model.FivemLink, error)
	FindBySteamID(ctx context.Context, steamID string) (*model.FivemLink, error)
}

// IdentityHandler はDiscord IDとゲームプラットフォームIDの相互解決を
// 提供するHTTPハンドラー。
type IdentityHandler struct {
	links LinkStringFinder
	fivem FivemLinkFinder
}

// NewIdentityHandler はIdentityHandlerを生成する。
func NewIdentityHandler(links LinkStringFinder, fivem FivemLinkFinder) *IdentityHandler {
	return &IdentityHandler{links: links, fivem: fivem}
}

// requireLink はコンテキストの動的トークンからリンク文字列を解決する。
// トークンなし、またはリンク文字列の解決失敗でエラーレスポンスを書き込み
// nilを返す。
func (h *IdentityHandler) requireLink(w http.ResponseWriter, r *http.Request) *model.LinkString {
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
	return link
}

// linkResponse は紐付け照会の応答を組み立てる。紐付けが存在する場合は
// statusにドキュメントの内容を併せて返す。
func linkResponse(link *model.FivemLink) map[string]any {
	if link == nil {
		return map[string]any{"status": "failed"}
	}
	resp := map[string]any{
		"status": "success",
		"_id":    link.ID,
	}
	if link.License != "" {
		resp["license"] = link.License
	}
	if link.SteamID != "" {
		resp["steam_id"] = link.SteamID
	}
	return resp
}

// GetDiscord はFiveMライセンスからDiscord側の紐付けを解決する。
// POST /get_discord
func (h *IdentityHandler) GetDiscord(w http.ResponseWriter, r *http.Request) {
	if link := h.requireLink(w, r); link == nil {
		return
	}

	var body struct {
		License string `json:"license"`
	}
	decodeBody(r, &body)
	if body.License == "" {
		middleware.WriteDetail(w, http.StatusBadRequest, "Missing license")
		return
	}

	fivemLink, err := h.fivem.FindByLicense(r.Context(), body.License)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, linkResponse(fivemLink))
}

// GetFivem はDiscordユーザーIDからゲームプラットフォーム側の紐付けを解決する。
// POST /get_fivem
func (h *IdentityHandler) GetFivem(w http.ResponseWriter, r *http.Request) {
	if link := h.requireLink(w, r); link == nil {
		return
	}

	var body struct {
		DiscordID model.ID `json:"discord_id"`
	}
	decodeBody(r, &body)
	if body.DiscordID == "" {
		middleware.WriteDetail(w, http.StatusBadRequest, "Missing discord_id")
		return
	}

	fivemLink, err := h.fivem.FindByID(r.Context(), body.DiscordID.String())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, linkResponse(fivemLink))
}
