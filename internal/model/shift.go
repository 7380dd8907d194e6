package model

// Shift はメンバーごとの勤務ドキュメントを表す。_idはDiscordメンバーIDで、
// Dataには現在アクティブな勤務エントリのみが入る。終了した勤務は
// アーカイブコレクションへ移される。
type Shift struct {
	ID   string       `bson:"_id" json:"_id"`
	Data []ShiftEntry `bson:"data" json:"data"`
}

// ActiveForGuild は指定ギルドのアクティブな勤務エントリを返す。
// 見つからない場合はnilを返す。(member, guild)ごとに高々1件。
func (s *Shift) ActiveForGuild(guildID string) *ShiftEntry {
	for i := range s.Data {
		if s.Data[i].Guild == guildID {
			return &s.Data[i]
		}
	}
	return nil
}

// ShiftEntry は1件の勤務を表す。EndedAtはアーカイブ時にのみ設定される。
type ShiftEntry struct {
	ID        string `bson:"id" json:"id"`
	Guild     string `bson:"guild" json:"guild"`
	ShiftType string `bson:"shift_type,omitempty" json:"shift_type,omitempty"`
	StartedAt int64  `bson:"started_at" json:"started_at"`
	EndedAt   int64  `bson:"ended_at,omitempty" json:"ended_at,omitempty"`
}

// OnlineStaff はget_online_staffが返す、勤務中メンバー1人分のエントリ。
// Fivemは紐付けが存在する場合のみ設定される。
type OnlineStaff struct {
	ShiftEntry
	Discord string `json:"discord"`
	Fivem   string `json:"fivem,omitempty"`
}
