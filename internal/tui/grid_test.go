package tui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/leonardotrapani/hyprnote/internal/notes"
)

var gridNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func plainGrid(opts GridOptions) *NoteGrid {
	opts.Plain = true
	if opts.Now.IsZero() {
		opts.Now = gridNow
	}
	return NewNoteGrid(&bytes.Buffer{}, opts)
}

func countRows(out string) int {
	rows := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "╭") {
			rows++
		}
	}
	return rows
}

func TestGridRendersCards(t *testing.T) {
	list := []notes.Note{
		{ID: "abcdef1234567890", CreatedAt: gridNow.Add(-5 * time.Minute), Content: "Comprar leite"},
		{ID: "0987654321fedcba", CreatedAt: gridNow.Add(-3 * 24 * time.Hour), Content: "Reunião às 10h"},
	}

	out := plainGrid(GridOptions{Width: 120}).Render(list)

	for _, want := range []string{
		"Adicionar nota",
		"há 5 minutos", "Comprar leite", "#abcdef12",
		"há 3 dias", "Reunião às 10h", "#09876543",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("plain output should not contain escape sequences")
	}
	if rows := countRows(out); rows != 1 {
		t.Errorf("expected 1 row, got %d", rows)
	}
}

func TestGridWrapsAfterThreeColumns(t *testing.T) {
	var list []notes.Note
	for i := 0; i < 5; i++ {
		list = append(list, notes.Note{ID: "id", CreatedAt: gridNow, Content: "nota"})
	}

	out := plainGrid(GridOptions{Width: 120}).Render(list)
	// six cards with the new note card
	if rows := countRows(out); rows != 2 {
		t.Errorf("expected 2 rows, got %d:\n%s", rows, out)
	}

	out = plainGrid(GridOptions{Width: 120, HideNewCard: true}).Render(list[:3])
	if rows := countRows(out); rows != 1 {
		t.Errorf("expected 1 row without the new note card, got %d", rows)
	}
}

func TestGridClipsLongContent(t *testing.T) {
	long := strings.Repeat("palavra ", 200)
	out := plainGrid(GridOptions{Width: 120, HideNewCard: true}).Render([]notes.Note{
		{ID: "abc", CreatedAt: gridNow, Content: long},
	})

	if !strings.Contains(out, "…") {
		t.Errorf("expected clipped content to end with an ellipsis:\n%s", out)
	}
	// border + label + content lines + id + border
	if lines := strings.Count(out, "\n") + 1; lines != cardLines+4 {
		t.Errorf("expected %d lines, got %d", cardLines+4, lines)
	}
}

func TestGridEqualHeightCards(t *testing.T) {
	out := plainGrid(GridOptions{Width: 120, HideNewCard: true}).Render([]notes.Note{
		{ID: "a", CreatedAt: gridNow, Content: "curta"},
		{ID: "b", CreatedAt: gridNow, Content: strings.Repeat("texto longo ", 12)},
	})

	if strings.Count(out, "╰") != 2 {
		t.Fatalf("expected two cards:\n%s", out)
	}
	last := strings.Split(out, "\n")
	if !strings.Contains(last[len(last)-1], "╰") || strings.Count(last[len(last)-1], "╰") != 2 {
		t.Errorf("expected both cards to end on the same line:\n%s", out)
	}
}

func TestGridNoResults(t *testing.T) {
	out := plainGrid(GridOptions{HideNewCard: true}).Render(nil)
	if out != noResults {
		t.Errorf("expected %q, got %q", noResults, out)
	}
}

func TestGridLocale(t *testing.T) {
	out := plainGrid(GridOptions{Locale: "en-US", HideNewCard: true}).Render([]notes.Note{
		{ID: "a", CreatedAt: gridNow.Add(-5 * time.Minute), Content: "milk"},
	})
	if !strings.Contains(out, "5 minutes ago") {
		t.Errorf("expected english date label:\n%s", out)
	}
}

func TestGridNarrowWidth(t *testing.T) {
	g := plainGrid(GridOptions{Width: 10})
	if w := g.cardWidth(); w != minCardWidth {
		t.Errorf("expected card width %d, got %d", minCardWidth, w)
	}
}

func TestShortID(t *testing.T) {
	tests := []struct {
		id, want string
	}{
		{"abcdef1234567890", "abcdef12"},
		{"abc", "abc"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ShortID(tt.id); got != tt.want {
			t.Errorf("ShortID(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
