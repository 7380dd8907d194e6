// Package model はドメインモデルを定義する。
package model

// APIToken はクライアントに発行された動的APIトークンを表す。
// _idにはトークンを要求したクライアントのネットワークアドレスを使用し、
// 同一クライアントからの再発行要求は有効期限内であれば同じトークンを返す。
type APIToken struct {
	ID         string `bson:"_id" json:"_id"`
	Token      string `bson:"token" json:"token"`
	CreatedAt  int64  `bson:"created_at" json:"created_at"`
	ExpiresAt  int64  `bson:"expires_at" json:"expires_at"`
	LinkString string `bson:"link_string,omitempty" json:"link_string,omitempty"`
}

// Expired は与えられたUNIX秒時点でトークンが期限切れかどうかを返す。
// 有効なのは now < expires_at の場合のみ（境界ちょうどは期限切れ扱い）。
func (t *APIToken) Expired(now int64) bool {
	return now >= t.ExpiresAt
}

// LinkString はAPIトークンとDiscordギルドを対応付ける一時的なペアリング
// オブジェクトを表す。Bot側で作成され、authorize_tokenで完成する。
// TokenとIPは認可ステップ後にのみ設定される。
type LinkString struct {
	ID         string `bson:"_id" json:"_id"`
	Guild      string `bson:"guild" json:"guild"`
	Token      string `bson:"token,omitempty" json:"token,omitempty"`
	IP         string `bson:"ip,omitempty" json:"ip,omitempty"`
	LinkString string `bson:"link_string,omitempty" json:"link_string,omitempty"`
}

// FivemLink はゲームプラットフォーム上のアイデンティティ（FiveMライセンス・
// Steam ID）とDiscordユーザーIDの紐付けを表す。_idはDiscordユーザーID。
// Bot側で作成され、本APIからは読み取り専用。
type FivemLink struct {
	ID      string `bson:"_id" json:"_id"`
	License string `bson:"license,omitempty" json:"license,omitempty"`
	SteamID string `bson:"steam_id,omitempty" json:"steam_id,omitempty"`
}
