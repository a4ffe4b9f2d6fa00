package tui

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/leonardotrapani/hyprnote/internal/notes"
	"github.com/leonardotrapani/hyprnote/internal/reldate"
	"github.com/muesli/termenv"
)

const (
	gridColumns   = 3
	gridGap       = 2
	cardLines     = 6 // content lines per card, date and id excluded
	minCardWidth  = 16
	shortIDLength = 8
)

const (
	newNoteTitle = "Adicionar nota"
	newNoteBody  = "Grave uma nota em áudio que será convertida para texto automaticamente."
	noResults    = "Nenhuma nota encontrada."
)

type GridOptions struct {
	Width  int
	Locale string
	// Now anchors the relative dates; zero means time.Now.
	Now time.Time
	// Plain drops colors, for pipes and dumb terminals.
	Plain bool
	// HideNewCard omits the "Adicionar nota" card.
	HideNewCard bool
}

// NoteGrid renders notes as cards in a three column grid, newest first.
type NoteGrid struct {
	opts     GridOptions
	renderer *lipgloss.Renderer
}

func NewNoteGrid(out io.Writer, opts GridOptions) *NoteGrid {
	r := lipgloss.NewRenderer(out)
	if opts.Plain {
		r.SetColorProfile(termenv.Ascii)
	}
	if opts.Width <= 0 {
		opts.Width = 120
	}
	if opts.Locale == "" {
		opts.Locale = reldate.DefaultLocale
	}
	return &NoteGrid{opts: opts, renderer: r}
}

// cardWidth is the text width inside a card's border and padding.
func (g *NoteGrid) cardWidth() int {
	w := (g.opts.Width-gridGap*(gridColumns-1))/gridColumns - 4
	if w < minCardWidth {
		w = minCardWidth
	}
	return w
}

func (g *NoteGrid) Render(list []notes.Note) string {
	now := g.opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	var cards []string
	if !g.opts.HideNewCard {
		cards = append(cards, g.newNoteCard())
	}
	for _, n := range list {
		cards = append(cards, g.noteCard(n, now))
	}
	if len(cards) == 0 {
		return g.renderer.NewStyle().Foreground(ColorMuted).Render(noResults)
	}

	gap := strings.Repeat(" ", gridGap)
	var rows []string
	for i := 0; i < len(cards); i += gridColumns {
		end := i + gridColumns
		if end > len(cards) {
			end = len(cards)
		}
		var row []string
		for j, c := range cards[i:end] {
			if j > 0 {
				row = append(row, gap)
			}
			row = append(row, c)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (g *NoteGrid) cardStyle(border lipgloss.TerminalColor) lipgloss.Style {
	return g.renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(g.cardWidth() + 2)
}

func (g *NoteGrid) newNoteCard() string {
	title := g.renderer.NewStyle().Bold(true).Foreground(ColorText).Render(newNoteTitle)
	body := g.clip(newNoteBody, cardLines+1)
	text := g.renderer.NewStyle().Foreground(ColorMuted).Render(body)
	return g.cardStyle(ColorPrimary).Render(title + "\n" + text)
}

func (g *NoteGrid) noteCard(n notes.Note, now time.Time) string {
	label := g.renderer.NewStyle().Bold(true).Foreground(ColorText).
		Render(reldate.Label(n.CreatedAt, now, g.opts.Locale))
	body := g.renderer.NewStyle().Foreground(ColorMuted).Render(g.clip(n.Content, cardLines))
	id := g.renderer.NewStyle().Foreground(ColorSubtle).Render("#" + ShortID(n.ID))
	return g.cardStyle(ColorHighlight).Render(label + "\n" + body + "\n" + id)
}

// clip wraps text to the card width and keeps at most maxLines lines,
// padding shorter text so every card has the same height.
func (g *NoteGrid) clip(text string, maxLines int) string {
	wrapped := g.renderer.NewStyle().Width(g.cardWidth()).Render(text)
	lines := strings.Split(wrapped, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}

	if len(lines) > maxLines {
		lines = lines[:maxLines]
		last := []rune(lines[maxLines-1])
		if len(last) >= g.cardWidth() {
			last = last[:g.cardWidth()-1]
		}
		lines[maxLines-1] = string(last) + "…"
	}
	for len(lines) < maxLines {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// ShortID is the id prefix shown on cards and accepted by delete.
func ShortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}
