// Package auth はトークンの検証・発行・リンク文字列の認可を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/takumi/shiftgate/internal/model"
	"github.com/takumi/shiftgate/internal/repository"
)

// MetricsRecorder はauthサービスが記録するメトリクスのインターフェース。
type MetricsRecorder interface {
	RecordTokenIssued()
	RecordAuthRejected()
}

// ServiceConfig は認可サービスの設定。
type ServiceConfig struct {
	StaticToken string        // 固定バイパストークン
	TokenTTL    time.Duration // 発行トークンの有効期間
}

// Service はトークン認可に関するビジネスロジックを提供する。
type Service struct {
	tokens  repository.TokenRepository
	links   repository.LinkStringRepository
	config  ServiceConfig
	metrics MetricsRecorder

	// now はテストで時刻を固定するために差し替え可能にする。
	now func() time.Time
}

// NewService はServiceを生成する。metricsはnilを許容する。
func NewService(
	tokens repository.TokenRepository,
	links repository.LinkStringRepository,
	config ServiceConfig,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		tokens:  tokens,
		links:   links,
		config:  config,
		metrics: metrics,
		now:     time.Now,
	}
}

// Validate はトークン文字列の有効性を判定する。
// disableStaticがfalseの場合、設定された固定トークンと一致すれば即座に成功する。
// それ以外は保存された動的トークンを検索し、存在しかつ現在時刻（秒）が
// 有効期限より小さい場合のみ成功する。検索エラーはログに記録し無効として扱う。
// この関数はエラーを返さない。
func (s *Service) Validate(ctx context.Context, token string, disableStatic bool) bool {
	if !disableStatic && s.config.StaticToken != "" && token == s.config.StaticToken {
		return true
	}

	tokenObj, err := s.tokens.FindByToken(ctx, token)
	if err != nil {
		slog.Error("token lookup failed during validation", slog.String("error", err.Error()))
		s.recordRejected()
		return false
	}
	if tokenObj == nil || tokenObj.Expired(s.now().Unix()) {
		s.recordRejected()
		return false
	}
	return true
}

// Issue はクライアントアドレスに対しトークンを発行する。
// 有効期限内の既存トークンがあればそれをそのまま返す（冪等な再利用）。
// なければ新しいランダムトークンを生成し、作成時刻とTTL後の有効期限を
// スタンプしてクライアントアドレスをキーに保存する。
func (s *Service) Issue(ctx context.Context, clientAddr string) (*model.APIToken, error) {
	existing, err := s.tokens.FindByClient(ctx, clientAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to look up existing token: %w", err)
	}

	nowSec := s.now().Unix()
	if existing != nil && !existing.Expired(nowSec) {
		return existing, nil
	}

	generated, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	token := &model.APIToken{
		ID:        clientAddr,
		Token:     generated,
		CreatedAt: nowSec,
		ExpiresAt: nowSec + int64(s.config.TokenTTL.Seconds()),
	}
	if err := s.tokens.Upsert(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordTokenIssued()
	}
	slog.Info("api token issued", slog.String("client", clientAddr))
	return token, nil
}

// AuthorizeLink はトークンをリンク文字列と相互に紐付ける。
// トークンは動的トークンのみ有効（固定バイパス無効）。リンク文字列側に
// トークンと発行元クライアントアドレスを記録し、トークン側にリンク文字列IDを
// 記録する。トークン側の更新が失敗した場合はリンク文字列側の更新を
// 補償ロールバックし、部分的な相互参照を残さない。
func (s *Service) AuthorizeLink(ctx context.Context, tokenStr, linkID string) (*model.LinkString, error) {
	if !s.Validate(ctx, tokenStr, true) {
		return nil, model.NewExpiredAuthorizationError()
	}

	tokenObj, err := s.tokens.FindByToken(ctx, tokenStr)
	if err != nil {
		return nil, fmt.Errorf("failed to find token: %w", err)
	}
	if tokenObj == nil {
		return nil, model.NewUnauthorizedError()
	}

	link, err := s.links.FindByID(ctx, linkID)
	if err != nil {
		return nil, fmt.Errorf("failed to find link string: %w", err)
	}
	if link == nil {
		return nil, model.NewInvalidLinkStringError()
	}

	if err := s.links.SetAuthorization(ctx, linkID, tokenStr, tokenObj.ID); err != nil {
		return nil, fmt.Errorf("failed to authorize link string: %w", err)
	}

	if err := s.tokens.SetLinkString(ctx, tokenObj.ID, linkID); err != nil {
		// 片側だけ更新された状態を残さない
		if rbErr := s.links.ClearAuthorization(ctx, linkID); rbErr != nil {
			slog.Error("failed to roll back link string authorization",
				slog.String("link_string", linkID),
				slog.String("error", rbErr.Error()),
			)
		}
		return nil, fmt.Errorf("failed to record link string on token: %w", err)
	}

	link.Token = tokenStr
	link.IP = tokenObj.ID
	link.LinkString = linkID
	slog.Info("token authorized for guild",
		slog.String("link_string", linkID),
		slog.String("guild", link.Guild),
	)
	return link, nil
}

func (s *Service) recordRejected() {
	if s.metrics != nil {
		s.metrics.RecordAuthRejected()
	}
}

// generateToken は暗号学的に安全なランダムトークン文字列を生成する。
func generateToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
