package model

import (
	"fmt"
	"net/http"
)

// APIError はHTTPステータスとdetailメッセージを持つAPIエラーを表す。
// すべてのエラーレスポンスは {"detail": "..."} 形式で返される。
type APIError struct {
	Status int
	Detail string
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%d] %s", e.Status, e.Detail)
}

// NewUnauthorizedError は401エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{Status: http.StatusUnauthorized, Detail: "Invalid authorization"}
}

// NewExpiredAuthorizationError は期限切れトークンの401エラーを生成する。
func NewExpiredAuthorizationError() *APIError {
	return &APIError{Status: http.StatusUnauthorized, Detail: "Invalid or expired authorization."}
}

// NewInvalidLinkStringError はリンク文字列が見つからない場合の401エラーを生成する。
func NewInvalidLinkStringError() *APIError {
	return &APIError{Status: http.StatusUnauthorized, Detail: "Invalid link string"}
}

// NewBadRequestError は400エラーを生成する。
func NewBadRequestError(detail string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Detail: detail}
}

// NewNotFoundError は404エラーを生成する。
func NewNotFoundError(detail string) *APIError {
	return &APIError{Status: http.StatusNotFound, Detail: detail}
}

// NewGuildNotFoundError はギルドが見つからない場合の404エラーを生成する。
func NewGuildNotFoundError() *APIError {
	return &APIError{Status: http.StatusNotFound, Detail: "Guild not found"}
}

// NewShiftAlreadyActiveError は同一(メンバー, ギルド)に対する二重勤務開始の
// 400エラーを生成する。
func NewShiftAlreadyActiveError() *APIError {
	return &APIError{Status: http.StatusBadRequest, Detail: "Shift already active for this member"}
}

// NewShiftNotFoundError はアクティブな勤務が見つからない場合の404エラーを生成する。
func NewShiftNotFoundError() *APIError {
	return &APIError{Status: http.StatusNotFound, Detail: "Could not find user shifts"}
}
