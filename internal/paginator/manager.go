package paginator

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Manager は送信済みメッセージIDとページネータの対応を保持し、
// ボタン押下インタラクションを該当ページネータへ振り分ける。
type Manager struct {
	mu     sync.Mutex
	active map[string]*Paginator
}

// NewManager はManagerを生成する。
func NewManager() *Manager {
	return &Manager{active: make(map[string]*Paginator)}
}

// Track はメッセージIDにページネータを紐付ける。
func (m *Manager) Track(messageID string, p *Paginator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active[messageID] = p
}

// Release はメッセージIDの紐付けを解除する。
func (m *Manager) Release(messageID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, messageID)
}

// lookup はメッセージIDに対応するページネータを返す。
func (m *Manager) lookup(messageID string) *Paginator {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active[messageID]
}

// HandleInteraction はdiscordgo.Session.AddHandlerに渡すハンドラ。
// コンポーネントインタラクションを対象メッセージのページネータへ
// 振り分け、未追跡のメッセージは無視する。
func (m *Manager) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	if i.Message == nil {
		return
	}
	p := m.lookup(i.Message.ID)
	if p == nil {
		return
	}
	_ = p.Respond(s, i)
}
