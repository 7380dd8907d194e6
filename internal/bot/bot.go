// Package bot はDiscordゲートウェイ上のギルドキャッシュへのファサードを提供する。
// APIハンドラーはこのパッケージのインターフェース経由でのみBotランタイムに触れる。
package bot

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
)

// DefaultIconURL はギルドアイコンが解決できない場合に代わりに返すURL。
const DefaultIconURL = "https://cdn.discordapp.com/embed/avatars/0.png?size=512"

// Guild はハンドラーが参照するギルド情報の射影。
type Guild struct {
	ID          string
	Name        string
	IconURL     string
	OwnerID     string
	MemberCount int
}

// Member はハンドラーが参照するメンバー情報の射影。
type Member struct {
	ID    string
	Roles []string
}

// Bot はDiscord Botランタイムのうち、APIレイヤーが必要とする操作のインターフェース。
type Bot interface {
	// GuildCount はBotが参加しているギルド数を返す。
	GuildCount() int

	// Latency はゲートウェイのハートビートレイテンシを返す。
	Latency() time.Duration

	// Guild はステートキャッシュからギルドを取得する。
	// Botがメンバーでないギルドはキャッシュに存在しないためnilを返す。
	Guild(id string) *Guild

	// Member はギルドメンバーを取得する。キャッシュにない場合はREST APIに
	// フォールバックする。取得できない場合はエラーを返す。
	Member(ctx context.Context, guildID, userID string) (*Member, error)
}

// DiscordBot はdiscordgoセッションに基づくBot実装。
type DiscordBot struct {
	session *discordgo.Session
}

// NewDiscordBot はBotトークンからDiscordBotを生成する。
// 接続はOpenを呼ぶまで開始されない。
func NewDiscordBot(token string) (*DiscordBot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	session.StateEnabled = true
	return &DiscordBot{session: session}, nil
}

// Open はゲートウェイ接続を開始する。
func (b *DiscordBot) Open() error {
	return b.session.Open()
}

// Close はゲートウェイ接続を閉じる。
func (b *DiscordBot) Close() error {
	return b.session.Close()
}

// Session は下層のdiscordgoセッションを返す。
// ページネーションのインタラクションハンドラー登録などセッション単位の
// 配線に使用する。
func (b *DiscordBot) Session() *discordgo.Session {
	return b.session
}

// GuildCount はBotが参加しているギルド数を返す。
func (b *DiscordBot) GuildCount() int {
	return len(b.session.State.Guilds)
}

// Latency はゲートウェイのハートビートレイテンシを返す。
func (b *DiscordBot) Latency() time.Duration {
	return b.session.HeartbeatLatency()
}

// Guild はステートキャッシュからギルドを取得する。見つからない場合はnilを返す。
func (b *DiscordBot) Guild(id string) *Guild {
	g, err := b.session.State.Guild(id)
	if err != nil || g == nil {
		return nil
	}

	icon := g.IconURL("512")
	if icon == "" {
		icon = DefaultIconURL
	}

	return &Guild{
		ID:          g.ID,
		Name:        g.Name,
		IconURL:     icon,
		OwnerID:     g.OwnerID,
		MemberCount: g.MemberCount,
	}
}

// Member はギルドメンバーを取得する。キャッシュミス時はREST APIにフォールバックする。
func (b *DiscordBot) Member(ctx context.Context, guildID, userID string) (*Member, error) {
	if m, err := b.session.State.Member(guildID, userID); err == nil && m != nil {
		return toMember(m), nil
	}

	m, err := b.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return toMember(m), nil
}

func toMember(m *discordgo.Member) *Member {
	member := &Member{Roles: m.Roles}
	if m.User != nil {
		member.ID = m.User.ID
	}
	return member
}

// compile-time interface check
var _ Bot = (*DiscordBot)(nil)
