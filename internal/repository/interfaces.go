// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/takumi/shiftgate/internal/model"
)

// TokenRepository はAPIトークンの永続化インターフェース。
type TokenRepository interface {
	// FindByClient はクライアントアドレス（_id）でトークンを取得する。
	// 見つからない場合はnilを返す。
	FindByClient(ctx context.Context, clientAddr string) (*model.APIToken, error)

	// FindByToken はトークン文字列でトークンを検索する。見つからない場合はnilを返す。
	FindByToken(ctx context.Context, token string) (*model.APIToken, error)

	// Upsert はトークンをクライアントアドレスをキーに冪等に保存する。
	Upsert(ctx context.Context, token *model.APIToken) error

	// SetLinkString はトークンにリンク文字列IDを記録する。
	// linkIDが空文字の場合はフィールドを取り除く（補償ロールバック用）。
	SetLinkString(ctx context.Context, clientAddr, linkID string) error
}

// LinkStringRepository はリンク文字列の永続化インターフェース。
// リンク文字列ドキュメント自体はBot側で作成され、ここでは認可情報の
// 付与・取り消しと参照のみを行う。
type LinkStringRepository interface {
	// FindByID は指定IDのリンク文字列を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.LinkString, error)

	// SetAuthorization はリンク文字列にトークンと発行元クライアントアドレスを記録する。
	SetAuthorization(ctx context.Context, id, token, ip string) error

	// ClearAuthorization はSetAuthorizationで付与した認可情報を取り除く。
	// トークン側の更新が失敗した場合の補償ロールバックに使用する。
	ClearAuthorization(ctx context.Context, id string) error
}

// FivemLinkRepository はゲームプラットフォームIDとDiscordユーザーIDの
// 紐付けの読み取りインターフェース。作成・更新はBot側が行う。
type FivemLinkRepository interface {
	// FindByID はDiscordユーザーID（_id）で紐付けを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, discordID string) (*model.FivemLink, error)

	// FindByLicense はFiveMライセンスで紐付けを検索する。見つからない場合はnilを返す。
	FindByLicense(ctx context.Context, license string) (*model.FivemLink, error)

	// FindBySteamID はSteam IDで紐付けを検索する。見つからない場合はnilを返す。
	FindBySteamID(ctx context.Context, steamID string) (*model.FivemLink, error)
}

// SettingsRepository はギルド設定の永続化インターフェース。
type SettingsRepository interface {
	// FindByID は指定ギルドの設定を型付きビューで取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, guildID string) (*model.GuildSettings, error)

	// FindDocument は指定ギルドの設定ドキュメント全体を生のmapで取得する。
	// 見つからない場合はnilを返す。
	FindDocument(ctx context.Context, guildID string) (map[string]any, error)

	// MergeSection は設定ドキュメントの指定セクション配下のキーのみを
	// ドット記法の$setでマージ更新する。セクション外のキーには触れない。
	MergeSection(ctx context.Context, guildID, section string, fields map[string]any) error
}

// ShiftRepository は勤務台帳の永続化インターフェース。
type ShiftRepository interface {
	// FindByMember は指定メンバーの勤務ドキュメントを取得する。見つからない場合はnilを返す。
	FindByMember(ctx context.Context, memberID string) (*model.Shift, error)

	// PushEntry はメンバーの勤務ドキュメントにエントリを追加する。
	// ドキュメントが存在しない場合はupsertで作成する。
	PushEntry(ctx context.Context, memberID string, entry model.ShiftEntry) error

	// PullEntry はメンバーの勤務ドキュメントから指定ギルドのエントリを取り除く。
	PullEntry(ctx context.Context, memberID, guildID string) error

	// Archive は終了した勤務エントリをアーカイブコレクションに記録する。
	Archive(ctx context.Context, memberID string, entry model.ShiftEntry) error

	// ListByGuild は指定ギルドのエントリを含む勤務ドキュメントを全走査で返す。
	ListByGuild(ctx context.Context, guildID string) ([]*model.Shift, error)
}
