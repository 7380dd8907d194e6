// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/takumi/shiftgate/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// tokenContextKey はリクエストコンテキストにAPIトークンを格納するためのキー。
var tokenContextKey = contextKey("api_token")

// TokenFinder はトークンの検索に必要なインターフェース。
// repository.TokenRepositoryの部分集合として定義する。
type TokenFinder interface {
	FindByToken(ctx context.Context, token string) (*model.APIToken, error)
}

// AuthMetricsRecorder は認証拒否を記録するメトリクスのインターフェース。
type AuthMetricsRecorder interface {
	RecordAuthRejected()
}

// TokenAuth はAuthorizationヘッダーによるトークン認証ミドルウェア。
type TokenAuth struct {
	finder      TokenFinder
	staticToken string
	metrics     AuthMetricsRecorder

	// now はテストで時刻を固定するために差し替え可能にする。
	now func() time.Time
}

// NewTokenAuth はTokenAuthを生成する。metricsはnilを許容する。
func NewTokenAuth(finder TokenFinder, staticToken string, metrics AuthMetricsRecorder) *TokenAuth {
	return &TokenAuth{
		finder:      finder,
		staticToken: staticToken,
		metrics:     metrics,
		now:         time.Now,
	}
}

// Middleware はAuthorizationヘッダーを検証するミドルウェアを返す。
// 静的トークンは常に通過させ、動的トークンは存在と有効期限を検証した上で
// トークンドキュメントをリクエストコンテキストに注入する。静的トークンの
// リクエストにはトークンドキュメントが存在しない。
func (ta *TokenAuth) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				ta.reject(w, r)
				return
			}

			// 静的トークンは運用系クライアント用のバイパス
			if header == ta.staticToken {
				next.ServeHTTP(w, r)
				return
			}

			token, err := ta.finder.FindByToken(r.Context(), header)
			if err != nil {
				slog.Error("failed to look up token",
					slog.String("error", err.Error()),
				)
				ta.reject(w, r)
				return
			}
			if token == nil || token.Expired(ta.now().Unix()) {
				ta.reject(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), tokenContextKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// reject は401レスポンスを書き込み、拒否をメトリクスに記録する。
func (ta *TokenAuth) reject(w http.ResponseWriter, r *http.Request) {
	if ta.metrics != nil {
		ta.metrics.RecordAuthRejected()
	}
	slog.Warn("request rejected",
		slog.String("path", r.URL.Path),
		slog.String("client_addr", ClientAddr(r)),
	)
	WriteDetail(w, http.StatusUnauthorized, "Invalid authorization")
}

// TokenFromContext はリクエストコンテキストからAPIトークンを取得する。
// トークン認証ミドルウェアを動的トークンで通過したリクエストでのみ存在する。
func TokenFromContext(ctx context.Context) (*model.APIToken, bool) {
	token, ok := ctx.Value(tokenContextKey).(*model.APIToken)
	return token, ok && token != nil
}

// ContextWithToken はコンテキストにAPIトークンを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithToken(ctx context.Context, token *model.APIToken) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// ClientAddr はリクエスト元のアドレス（ポートを除く）を返す。
// トークン発行のキーおよびレート制限のキーとして使用する。
func ClientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
