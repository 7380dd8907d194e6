package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/takumi/shiftgate/internal/metrics"
	"github.com/takumi/shiftgate/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	TokenAuth         *middleware.TokenAuth

	// メトリクス
	Collector *metrics.Collector
	Gatherer  prometheus.Gatherer

	// Bot
	Bot BotInterface

	// 認証・トークン
	AuthService  AuthServiceInterface
	TokenFinder  TokenFinderByClient
	PrivateKey   string

	// ストア
	Links    LinkStringFinder
	Fivem    FivemLinkFinder
	Settings interface {
		SettingsFinder
		SettingsStore
	}

	// 勤務
	ShiftService ShiftServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを
// 構成したchi.Routerを返す。ルートは明示的に列挙する。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → CORS → RateLimit(General)
//
// トークン認証が必要なルートはグループ内でTokenAuthを追加する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	var httpMetrics middleware.HTTPMetricsRecorder
	if deps.Collector != nil {
		httpMetrics = deps.Collector
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, httpMetrics))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(deps.RateLimiter.GeneralMiddleware())

	statusHandler := NewStatusHandler(deps.Bot)
	guildHandler := NewGuildHandler(deps.Bot, deps.Settings)
	settingsHandler := NewSettingsHandler(deps.Settings)
	tokenHandler := NewTokenHandler(deps.AuthService, deps.TokenFinder, deps.PrivateKey)
	identityHandler := NewIdentityHandler(deps.Links, deps.Fivem)
	dutyHandler := NewDutyHandler(deps.Bot, deps.Links, deps.Fivem, deps.Settings, deps.ShiftService)

	// --- 認証不要のルート ---

	r.Get("/status", statusHandler.Status)
	r.Get("/health", statusHandler.Health)

	r.Post("/get_mutual_guilds", guildHandler.GetMutualGuilds)
	r.Post("/get_staff_guilds", guildHandler.GetStaffGuilds)
	r.Post("/check_staff_level", guildHandler.CheckStaffLevel)

	r.Post("/get_guild_settings", settingsHandler.GetGuildSettings)
	r.Post("/update_guild_settings", settingsHandler.UpdateGuildSettings)
	r.Post("/get_last_warnings", settingsHandler.GetLastWarnings)

	// トークン発行は発行専用レート制限を追加し、秘密鍵はハンドラー内で検証する
	r.With(deps.RateLimiter.TokenIssueMiddleware()).Get("/get_token", tokenHandler.GetToken)
	r.Get("/get_current_token", tokenHandler.GetCurrentToken)

	// authorize_tokenは動的トークンのみを受け付けるためサービス層で再検証する
	r.Post("/authorize_token", tokenHandler.AuthorizeToken)

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- トークン認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(deps.TokenAuth.Middleware())

		r.Get("/get_link_string", tokenHandler.GetLinkString)
		r.Get("/get_online_staff", dutyHandler.GetOnlineStaff)

		r.Post("/get_discord", identityHandler.GetDiscord)
		r.Post("/get_fivem", identityHandler.GetFivem)

		r.Post("/duty_on", dutyHandler.DutyOn)
		r.Post("/duty_off", dutyHandler.DutyOff)
	})

	return r
}
