package handler

import (
	"context"
	"time"

	"github.com/takumi/shiftgate/internal/bot"
	"github.com/takumi/shiftgate/internal/model"
)

// --- 共有モック定義 ---

// mockBot はBotInterfaceのモック実装。
type mockBot struct {
	guildCountFn func() int
	latencyFn    func() time.Duration
	guildFn      func(id string) *bot.Guild
	memberFn     func(ctx context.Context, guildID, userID string) (*bot.Member, error)
}

func (m *mockBot) GuildCount() int {
	if m.guildCountFn != nil {
		return m.guildCountFn()
	}
	return 0
}

func (m *mockBot) Latency() time.Duration {
	if m.latencyFn != nil {
		return m.latencyFn()
	}
	return 0
}

func (m *mockBot) Guild(id string) *bot.Guild {
	if m.guildFn != nil {
		return m.guildFn(id)
	}
	return nil
}

func (m *mockBot) Member(ctx context.Context, guildID, userID string) (*bot.Member, error) {
	if m.memberFn != nil {
		return m.memberFn(ctx, guildID, userID)
	}
	return nil, nil
}

// mockSettingsStore はSettingsFinderとSettingsStoreのモック実装。
type mockSettingsStore struct {
	findByIDFn     func(ctx context.Context, guildID string) (*model.GuildSettings, error)
	findDocumentFn func(ctx context.Context, guildID string) (map[string]any, error)
	mergeSectionFn func(ctx context.Context, guildID, section string, fields map[string]any) error
}

func (m *mockSettingsStore) FindByID(ctx context.Context, guildID string) (*model.GuildSettings, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, guildID)
	}
	return nil, nil
}

func (m *mockSettingsStore) FindDocument(ctx context.Context, guildID string) (map[string]any, error) {
	if m.findDocumentFn != nil {
		return m.findDocumentFn(ctx, guildID)
	}
	return nil, nil
}

func (m *mockSettingsStore) MergeSection(ctx context.Context, guildID, section string, fields map[string]any) error {
	if m.mergeSectionFn != nil {
		return m.mergeSectionFn(ctx, guildID, section, fields)
	}
	return nil
}

// mockLinkStringFinder はLinkStringFinderのモック実装。
type mockLinkStringFinder struct {
	findByIDFn func(ctx context.Context, id string) (*model.LinkString, error)
}

func (m *mockLinkStringFinder) FindByID(ctx context.Context, id string) (*model.LinkString, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

// mockFivemLinkFinder はFivemLinkFinderのモック実装。
type mockFivemLinkFinder struct {
	findByIDFn      func(ctx context.Context, discordID string) (*model.FivemLink, error)
	findByLicenseFn func(ctx context.Context, license string) (*model.FivemLink, error)
	findBySteamIDFn func(ctx context.Context, steamID string) (*model.FivemLink, error)
}

func (m *mockFivemLinkFinder) FindByID(ctx context.Context, discordID string) (*model.FivemLink, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, discordID)
	}
	return nil, nil
}

func (m *mockFivemLinkFinder) FindByLicense(ctx context.Context, license string) (*model.FivemLink, error) {
	if m.findByLicenseFn != nil {
		return m.findByLicenseFn(ctx, license)
	}
	return nil, nil
}

func (m *mockFivemLinkFinder) FindBySteamID(ctx context.Context, steamID string) (*model.FivemLink, error) {
	if m.findBySteamIDFn != nil {
		return m.findBySteamIDFn(ctx, steamID)
	}
	return nil, nil
}

// mockShiftService はShiftServiceInterfaceのモック実装。
type mockShiftService struct {
	openFn          func(ctx context.Context, memberID, guildID, shiftType string) (*model.ShiftEntry, error)
	closeFn         func(ctx context.Context, memberID, guildID string) (*model.ShiftEntry, error)
	onlineByGuildFn func(ctx context.Context, guildID string) ([]model.OnlineStaff, error)
}

func (m *mockShiftService) Open(ctx context.Context, memberID, guildID, shiftType string) (*model.ShiftEntry, error) {
	if m.openFn != nil {
		return m.openFn(ctx, memberID, guildID, shiftType)
	}
	return &model.ShiftEntry{}, nil
}

func (m *mockShiftService) Close(ctx context.Context, memberID, guildID string) (*model.ShiftEntry, error) {
	if m.closeFn != nil {
		return m.closeFn(ctx, memberID, guildID)
	}
	return &model.ShiftEntry{}, nil
}

func (m *mockShiftService) OnlineByGuild(ctx context.Context, guildID string) ([]model.OnlineStaff, error) {
	if m.onlineByGuildFn != nil {
		return m.onlineByGuildFn(ctx, guildID)
	}
	return nil, nil
}

// mockAuthService はAuthServiceInterfaceのモック実装。
type mockAuthService struct {
	issueFn         func(ctx context.Context, clientAddr string) (*model.APIToken, error)
	authorizeLinkFn func(ctx context.Context, token, linkID string) (*model.LinkString, error)
}

func (m *mockAuthService) Issue(ctx context.Context, clientAddr string) (*model.APIToken, error) {
	if m.issueFn != nil {
		return m.issueFn(ctx, clientAddr)
	}
	return &model.APIToken{}, nil
}

func (m *mockAuthService) AuthorizeLink(ctx context.Context, token, linkID string) (*model.LinkString, error) {
	if m.authorizeLinkFn != nil {
		return m.authorizeLinkFn(ctx, token, linkID)
	}
	return &model.LinkString{}, nil
}

// mockTokenFinderByClient はTokenFinderByClientのモック実装。
type mockTokenFinderByClient struct {
	findByClientFn func(ctx context.Context, clientAddr string) (*model.APIToken, error)
}

func (m *mockTokenFinderByClient) FindByClient(ctx context.Context, clientAddr string) (*model.APIToken, error) {
	if m.findByClientFn != nil {
		return m.findByClientFn(ctx, clientAddr)
	}
	return nil, nil
}
