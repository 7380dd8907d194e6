package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/takumi/shiftgate/internal/model"
)

// DetailBody はAPIエラーレスポンスの統一フォーマット。
// すべてのエラーは{"detail": "..."}の形で返す。
type DetailBody struct {
	Detail string `json:"detail"`
}

// WriteDetail は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
func WriteDetail(w http.ResponseWriter, statusCode int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(DetailBody{Detail: detail})
}

// WriteAPIError はAPIErrorをステータスコード付きで書き込む。
func WriteAPIError(w http.ResponseWriter, apiErr *model.APIError) {
	WriteDetail(w, apiErr.Status, apiErr.Detail)
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteDetail(w, http.StatusInternalServerError, "Internal Server Error")
}
