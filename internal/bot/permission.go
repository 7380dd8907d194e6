package bot

import "github.com/takumi/shiftgate/internal/model"

// PermissionLevel はギルド設定のロールリストに対してメンバーの権限レベルを
// 判定する。ギルドオーナーまたはマネジメントロール保持者は2、スタッフロール
// 保持者は1、それ以外は0を返す。
func PermissionLevel(settings *model.GuildSettings, member *Member, ownerID string) int {
	if member == nil {
		return model.PermissionNone
	}
	if ownerID != "" && member.ID == ownerID {
		return model.PermissionManagement
	}
	if settings == nil {
		return model.PermissionNone
	}

	roles := make(map[string]struct{}, len(member.Roles))
	for _, r := range member.Roles {
		roles[r] = struct{}{}
	}

	for _, r := range settings.ManagementRoles {
		if _, ok := roles[r]; ok {
			return model.PermissionManagement
		}
	}
	for _, r := range settings.StaffRoles {
		if _, ok := roles[r]; ok {
			return model.PermissionStaff
		}
	}
	return model.PermissionNone
}
