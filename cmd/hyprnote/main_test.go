package main

import (
	"strings"
	"testing"

	"github.com/leonardotrapani/hyprnote/internal/notes"
)

func TestResolveNote(t *testing.T) {
	list := []notes.Note{
		{ID: "abcdef12-0000", Content: "one"},
		{ID: "abcdff34-0000", Content: "two"},
		{ID: "99999999-0000", Content: "three"},
	}

	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr string
	}{
		{"full id", "99999999-0000", "99999999-0000", ""},
		{"unique prefix", "abcdef", "abcdef12-0000", ""},
		{"card prefix with hash", "#999", "99999999-0000", ""},
		{"ambiguous", "abcd", "", "ambiguous"},
		{"missing", "zzz", "", "no note"},
		{"empty", "  ", "", "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := resolveNote(list, tt.ref)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n.ID != tt.want {
				t.Errorf("expected %s, got %s", tt.want, n.ID)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	if got := preview("linha um\nlinha   dois"); got != "linha um linha dois" {
		t.Errorf("unexpected preview %q", got)
	}
	long := strings.Repeat("a", 100)
	if got := []rune(preview(long)); len(got) != 60 || got[59] != '…' {
		t.Errorf("expected a 60 rune preview ending with an ellipsis, got %q", string(got))
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"serve", "record", "stop", "text", "draft", "submit", "status", "notes", "delete", "compose", "configure", "quit", "version", "doctor"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
}
