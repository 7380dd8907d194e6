// Package paginator はDiscordの埋め込みメッセージを2つのナビゲーション
// ボタンでページ送りするUIウィジェットを提供する。
package paginator

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

// DefaultLineLimit はStaticPaginatorの1ページあたりのデフォルト行数。
const DefaultLineLimit = 15

// RenderFunc はページ番号（1始まり）から埋め込みを生成するコールバック。
type RenderFunc func(page int) *discordgo.MessageEmbed

// Paginator は[1, pages]に束縛されたページカーソルと描画コールバックを持つ
// ページ送りウィジェット。カーソルは境界を越えない。
type Paginator struct {
	render RenderFunc
	pages  int
	page   int

	prevID string
	nextID string
}

// New はPaginatorを生成する。カーソルは1ページ目から始まる。
// pagesが1未満の場合は1ページ（空ページ）として扱う。
func New(render RenderFunc, pages int) *Paginator {
	if pages < 1 {
		pages = 1
	}
	id := uuid.NewString()
	return &Paginator{
		render: render,
		pages:  pages,
		page:   1,
		prevID: "paginator:prev:" + id,
		nextID: "paginator:next:" + id,
	}
}

// Page は現在のページ番号を返す。
func (p *Paginator) Page() int { return p.page }

// Pages は総ページ数を返す。
func (p *Paginator) Pages() int { return p.pages }

// Render は指定ページの埋め込みを描画コールバックで生成する。
// カーソルは動かさない。送信前に初期ページを得る用途にも使える。
func (p *Paginator) Render(page int) *discordgo.MessageEmbed {
	return p.render(page)
}

// Previous はカーソルを1ページ戻して（下限1で打ち止め）現在ページを描画する。
func (p *Paginator) Previous() *discordgo.MessageEmbed {
	if p.page > 1 {
		p.page--
	}
	return p.render(p.page)
}

// Next はカーソルを1ページ進めて（上限pagesで打ち止め）現在ページを描画する。
func (p *Paginator) Next() *discordgo.MessageEmbed {
	if p.page < p.pages {
		p.page++
	}
	return p.render(p.page)
}

// Components はナビゲーションボタンのコンポーネント列を返す。
// 先頭ページではBackが、最終ページではNextが無効になる。
func (p *Paginator) Components() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Back",
					Style:    discordgo.SecondaryButton,
					CustomID: p.prevID,
					Disabled: p.page <= 1,
				},
				discordgo.Button{
					Label:    "Next",
					Style:    discordgo.SecondaryButton,
					CustomID: p.nextID,
					Disabled: p.page >= p.pages,
				},
			},
		},
	}
}

// Session はインタラクション応答に必要なdiscordgoセッションの部分集合。
type Session interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

// Handles は与えられたコンポーネントIDがこのページネータのボタンか
// どうかを返す。
func (p *Paginator) Handles(customID string) bool {
	return customID == p.prevID || customID == p.nextID
}

// Respond はボタン押下インタラクションを処理する。カーソルを移動し、
// 新しい埋め込みとボタン状態でメッセージを編集する応答を返す。
// このページネータのボタン以外のインタラクションは無視する。
func (p *Paginator) Respond(s Session, i *discordgo.InteractionCreate) error {
	if i.Type != discordgo.InteractionMessageComponent {
		return nil
	}

	var embed *discordgo.MessageEmbed
	switch i.MessageComponentData().CustomID {
	case p.prevID:
		embed = p.Previous()
	case p.nextID:
		embed = p.Next()
	default:
		return nil
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: p.Components(),
		},
	})
}

// NewStatic は行のリストから固定内容のページネータを生成する。
// 総ページ数はceil(len(lines) / lineLimit)で、ページNはlines[(N-1)*limit, N*limit)
// を改行で連結してbaseの複製のDescriptionに差し込む。lineLimitが0以下の
// 場合はDefaultLineLimitを、baseがnilの場合は空の埋め込みを使用する。
func NewStatic(lines []string, lineLimit int, base *discordgo.MessageEmbed) *Paginator {
	if lineLimit <= 0 {
		lineLimit = DefaultLineLimit
	}
	if base == nil {
		base = &discordgo.MessageEmbed{}
	}

	pages := (len(lines) + lineLimit - 1) / lineLimit

	render := func(page int) *discordgo.MessageEmbed {
		m := (page - 1) * lineLimit
		n := page * lineLimit
		if m > len(lines) {
			m = len(lines)
		}
		if n > len(lines) {
			n = len(lines)
		}

		emb := *base
		emb.Description = strings.Join(lines[m:n], "\n")
		return &emb
	}

	return New(render, pages)
}
