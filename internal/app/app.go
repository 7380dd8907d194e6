// Package app はアプリケーションの起動・依存関係のワイヤリング・停止を担う。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/takumi/shiftgate/internal/auth"
	"github.com/takumi/shiftgate/internal/bot"
	"github.com/takumi/shiftgate/internal/config"
	"github.com/takumi/shiftgate/internal/database"
	"github.com/takumi/shiftgate/internal/handler"
	"github.com/takumi/shiftgate/internal/logger"
	"github.com/takumi/shiftgate/internal/metrics"
	"github.com/takumi/shiftgate/internal/middleware"
	"github.com/takumi/shiftgate/internal/paginator"
	"github.com/takumi/shiftgate/internal/repository"
	"github.com/takumi/shiftgate/internal/shift"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	return runServe(cfg)
}

// runServe はAPIサーバーモードで起動する。
// MongoDBとDiscordゲートウェイに接続し、全依存関係をワイヤリングして
// HTTPサーバーを起動する。接続に失敗した場合はエラーを返して起動を中止する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	ctx := context.Background()

	// 1. MongoDB接続
	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			slog.Error("mongodb disconnect failed", slog.String("error", err.Error()))
		}
	}()

	slog.Info("mongodb connection established",
		slog.String("database", cfg.MongoDatabase),
	)

	db := client.Database(cfg.MongoDatabase)

	// 2. リポジトリの初期化
	tokenRepo := repository.NewMongoTokenRepo(db)
	linkRepo := repository.NewMongoLinkStringRepo(db)
	fivemRepo := repository.NewMongoFivemLinkRepo(db)
	settingsRepo := repository.NewMongoSettingsRepo(db)
	shiftRepo := repository.NewMongoShiftRepo(db)

	// 3. Discordゲートウェイ接続
	discordBot, err := bot.NewDiscordBot(cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create discord session: %w", err)
	}
	if err := discordBot.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}
	defer func() {
		if err := discordBot.Close(); err != nil {
			slog.Error("discord gateway close failed", slog.String("error", err.Error()))
		}
	}()

	slog.Info("discord gateway connected",
		slog.Int("guilds", discordBot.GuildCount()),
	)

	// 4. ページネーターのインタラクションハンドラ登録
	pageManager := paginator.NewManager()
	discordBot.Session().AddHandler(pageManager.HandleInteraction)

	// 5. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 6. ドメインサービスの初期化
	authService := auth.NewService(tokenRepo, linkRepo, auth.ServiceConfig{
		StaticToken: cfg.StaticToken,
		TokenTTL:    cfg.TokenTTL,
	}, collector)

	shiftService := shift.NewService(shiftRepo, fivemRepo, collector)

	// 7. ミドルウェアの初期化
	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitTokenIssue),
	)
	defer rateLimiter.Stop()

	tokenAuth := middleware.NewTokenAuth(tokenRepo, cfg.StaticToken, collector)

	// 8. ルーターの構築
	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		TokenAuth:         tokenAuth,

		Collector: collector,
		Gatherer:  registry,

		Bot: discordBot,

		AuthService: authService,
		TokenFinder: tokenRepo,
		PrivateKey:  cfg.PrivateKey,

		Links:    linkRepo,
		Fivem:    fivemRepo,
		Settings: settingsRepo,

		ShiftService: shiftService,
	})

	// 9. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
