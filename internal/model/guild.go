package model

// ShiftType はギルドごとに設定可能な勤務種別を表す。
type ShiftType struct {
	ID   string `bson:"id" json:"id"`
	Name string `bson:"name,omitempty" json:"name,omitempty"`
}

// GuildSettings はギルドごとの設定ドキュメントの型付きビュー。
// 設定ドキュメント自体は自由形式であり、APIのget/updateエンドポイントは
// 生のドキュメント（map）を扱う。こちらは内部ロジックが参照する
// フィールドのみを写像する。
type GuildSettings struct {
	ID              string      `bson:"_id"`
	ShiftTypes      []ShiftType `bson:"shift_types,omitempty"`
	StaffRoles      []string    `bson:"staff_roles,omitempty"`
	ManagementRoles []string    `bson:"management_roles,omitempty"`
}

// HasShiftType は指定IDの勤務種別が設定されているかどうかを返す。
func (s *GuildSettings) HasShiftType(id string) bool {
	for _, st := range s.ShiftTypes {
		if st.ID == id {
			return true
		}
	}
	return false
}

// GuildSummary はギルド照会系エンドポイントが返すギルドの要約。
// MemberCountとPermissionLevelはget_staff_guilds系でのみ設定される。
type GuildSummary struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	IconURL         string `json:"icon_url"`
	MemberCount     string `json:"member_count,omitempty"`
	PermissionLevel int    `json:"permission_level,omitempty"`
}

// 権限レベル。0=権限なし、1=スタッフ、2=マネジメント。
const (
	PermissionNone       = 0
	PermissionStaff      = 1
	PermissionManagement = 2
)
