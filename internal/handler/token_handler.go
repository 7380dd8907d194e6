package handler

import (
	"context"
	"net/http"

	"github.com/takumi/shiftgate/internal/middleware"
	"github.com/takumi/shiftgate/internal/model"
)

// AuthServiceInterface はトークンハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Issue はクライアントアドレスに対してトークンを発行する。
	// 有効期限内の既存トークンがあればそれを返す（冪等）。
	Issue(ctx context.Context, clientAddr string) (*model.APIToken, error)

	// AuthorizeLink はトークンとリンク文字列を相互に紐付ける。
	AuthorizeLink(ctx context.Context, token, linkID string) (*model.LinkString, error)
}

// TokenFinderByClient はクライアントアドレスによるトークン参照インターフェース。
// repository.TokenRepositoryの部分集合として定義する。
type TokenFinderByClient interface {
	FindByClient(ctx context.Context, clientAddr string) (*model.APIToken, error)
}

// TokenHandler はトークン発行・認可のHTTPハンドラー。
type TokenHandler struct {
	service    AuthServiceInterface
	tokens     TokenFinderByClient
	privateKey string
}

// NewTokenHandler はTokenHandlerを生成する。
func NewTokenHandler(service AuthServiceInterface, tokens TokenFinderByClient, privateKey string) *TokenHandler {
	return &TokenHandler{
		service:    service,
		tokens:     tokens,
		privateKey: privateKey,
	}
}

// GetToken はクライアントアドレスに対するトークンを発行する。
// Authorizationヘッダーが発行用の秘密鍵と一致する場合のみ許可する。
// GET /get_token
func (h *TokenHandler) GetToken(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != h.privateKey {
		middleware.WriteDetail(w, http.StatusUnauthorized, "Invalid authorization")
		return
	}

	token, err := h.service.Issue(r.Context(), middleware.ClientAddr(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, token)
}

// AuthorizeToken はX-Link-Stringヘッダーのリンク文字列を
// Authorizationヘッダーの動的トークンと相互に紐付け、更新後の
// リンク文字列ドキュメントを返す。静的トークンでは認可できない。
// POST /authorize_token
func (h *TokenHandler) AuthorizeToken(w http.ResponseWriter, r *http.Request) {
	authorization := r.Header.Get("Authorization")
	if authorization == "" {
		middleware.WriteDetail(w, http.StatusUnauthorized, "Invalid authorization")
		return
	}

	linkID := r.Header.Get("X-Link-String")
	if linkID == "" {
		middleware.WriteDetail(w, http.StatusUnauthorized, "Invalid authorization")
		return
	}

	link, err := h.service.AuthorizeLink(r.Context(), authorization, linkID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, link)
}

// GetLinkString は提示された動的トークンのドキュメントを返す。
// 静的トークンにはドキュメントが存在しないため401になる。
// GET /get_link_string
func (h *TokenHandler) GetLinkString(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		middleware.WriteDetail(w, http.StatusUnauthorized, "Invalid authorization")
		return
	}

	writeJSON(w, http.StatusOK, token)
}

// GetCurrentToken はリクエスト元のクライアントアドレスに紐付いた
// トークンを返す。認証は不要で、存在しない場合は404を返す。
// GET /get_current_token
func (h *TokenHandler) GetCurrentToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.tokens.FindByClient(r.Context(), middleware.ClientAddr(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if token == nil {
		middleware.WriteDetail(w, http.StatusNotFound, "Could not find token associated with IP")
		return
	}

	writeJSON(w, http.StatusOK, token)
}
