// Package shift は勤務台帳（duty shift）のビジネスロジックを提供する。
package shift

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/takumi/shiftgate/internal/model"
	"github.com/takumi/shiftgate/internal/repository"
)

// MetricsRecorder はshiftサービスが記録するメトリクスのインターフェース。
type MetricsRecorder interface {
	RecordShiftOpened(shiftType string)
	RecordShiftClosed(shiftType string)
}

// Service は勤務の開始・終了・照会を提供する。
type Service struct {
	shifts  repository.ShiftRepository
	fivem   repository.FivemLinkRepository
	metrics MetricsRecorder

	now func() time.Time
}

// NewService はServiceを生成する。metricsはnilを許容する。
func NewService(shifts repository.ShiftRepository, fivem repository.FivemLinkRepository, metrics MetricsRecorder) *Service {
	return &Service{
		shifts:  shifts,
		fivem:   fivem,
		metrics: metrics,
		now:     time.Now,
	}
}

// Open はメンバーの勤務を開始する。同一(メンバー, ギルド)に対して
// アクティブな勤務は高々1件であり、既にアクティブな勤務がある場合は
// エラーを返す。shiftTypeは空文字を許容する（種別なし勤務）。
func (s *Service) Open(ctx context.Context, memberID, guildID, shiftType string) (*model.ShiftEntry, error) {
	doc, err := s.shifts.FindByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shift document: %w", err)
	}
	if doc != nil && doc.ActiveForGuild(guildID) != nil {
		return nil, model.NewShiftAlreadyActiveError()
	}

	entry := model.ShiftEntry{
		ID:        uuid.NewString(),
		Guild:     guildID,
		ShiftType: shiftType,
		StartedAt: s.now().Unix(),
	}
	if err := s.shifts.PushEntry(ctx, memberID, entry); err != nil {
		return nil, fmt.Errorf("failed to open shift: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordShiftOpened(shiftType)
	}
	slog.Info("shift opened",
		slog.String("member_id", memberID),
		slog.String("guild_id", guildID),
		slog.String("shift_type", shiftType),
	)
	return &entry, nil
}

// Close はメンバーの指定ギルドにおけるアクティブな勤務を終了する。
// エントリを台帳から取り除き、終了時刻を付けてアーカイブに記録する。
// アーカイブへの記録は履歴目的のベストエフォートであり、失敗しても
// 勤務終了自体は成功として扱う。
func (s *Service) Close(ctx context.Context, memberID, guildID string) (*model.ShiftEntry, error) {
	doc, err := s.shifts.FindByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shift document: %w", err)
	}
	if doc == nil {
		return nil, model.NewShiftNotFoundError()
	}

	entry := doc.ActiveForGuild(guildID)
	if entry == nil {
		return nil, model.NewShiftNotFoundError()
	}

	if err := s.shifts.PullEntry(ctx, memberID, guildID); err != nil {
		return nil, fmt.Errorf("failed to close shift: %w", err)
	}

	closed := *entry
	closed.EndedAt = s.now().Unix()
	if err := s.shifts.Archive(ctx, memberID, closed); err != nil {
		slog.Error("failed to archive closed shift",
			slog.String("member_id", memberID),
			slog.String("shift_id", closed.ID),
			slog.String("error", err.Error()),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordShiftClosed(closed.ShiftType)
	}
	slog.Info("shift closed",
		slog.String("member_id", memberID),
		slog.String("guild_id", guildID),
	)
	return &closed, nil
}

// OnlineByGuild は指定ギルドでアクティブな勤務エントリの一覧を返す。
// 各エントリにはメンバーのDiscord IDと、FiveM紐付けが存在する場合はその
// Steam IDを付与する。紐付けの解決失敗はログに記録して続行する。
func (s *Service) OnlineByGuild(ctx context.Context, guildID string) ([]model.OnlineStaff, error) {
	docs, err := s.shifts.ListByGuild(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}

	online := make([]model.OnlineStaff, 0, len(docs))
	for _, doc := range docs {
		entry := doc.ActiveForGuild(guildID)
		if entry == nil {
			continue
		}

		staff := model.OnlineStaff{
			ShiftEntry: *entry,
			Discord:    doc.ID,
		}
		link, err := s.fivem.FindByID(ctx, doc.ID)
		if err != nil {
			slog.Error("failed to resolve fivem link",
				slog.String("member_id", doc.ID),
				slog.String("error", err.Error()),
			)
		} else if link != nil {
			staff.Fivem = link.SteamID
		}
		online = append(online, staff)
	}
	return online, nil
}
