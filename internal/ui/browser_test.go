package ui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestBrowserFileSelectionReturnsMessage(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"song.mp3": "data",
	})

	m := NewBrowser(dir, 80, 20)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected selection command")
	}

	msg := cmd()
	selected, ok := msg.(browserSelectedMsg)
	if !ok {
		t.Fatalf("expected browserSelectedMsg, got %T", msg)
	}
	if selected.loc != filepath.Join(dir, "song.mp3") {
		t.Fatalf("expected song.mp3 in %s, got %q", dir, selected.loc)
	}
}

func TestBrowserURLSelectionReturnsMessage(t *testing.T) {
	m := NewBrowser(t.TempDir(), 80, 20)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.urlMode {
		t.Fatal("expected URL entry after selecting the URL item")
	}
	m.input.SetValue("https://example.com/live")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected URL selection command")
	}

	msg := cmd()
	selected, ok := msg.(browserSelectedMsg)
	if !ok {
		t.Fatalf("expected browserSelectedMsg, got %T", msg)
	}
	if selected.loc != "https://example.com/live" {
		t.Fatalf("expected URL, got %q", selected.loc)
	}
}

func TestBrowserEmptyURLIsIgnored(t *testing.T) {
	m := NewBrowser(t.TempDir(), 80, 20)
	m.urlMode = true
	m.input.SetValue("   ")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("expected no command for an empty URL")
	}
}

func TestBrowserEscLeavesURLMode(t *testing.T) {
	m := NewBrowser(t.TempDir(), 80, 20)
	m.urlMode = true
	m.input.SetValue("https://example.com")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.urlMode || m.input.Value() != "" {
		t.Fatal("expected esc to leave URL mode and clear the input")
	}
}

func TestBrowserCancelReturnsMessage(t *testing.T) {
	m := NewBrowser(t.TempDir(), 80, 20)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected cancel command")
	}

	if _, ok := cmd().(browserCancelledMsg); !ok {
		t.Fatalf("expected browserCancelledMsg, got %T", cmd())
	}
}

func TestBrowserListsOnlyPlayableFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"track.flac": "data",
		"clip.ogg":   "data",
		"book.m4b":   "data",
		"notes.txt":  "data",
	})

	m := NewBrowser(dir, 80, 20)

	var names []string
	for _, item := range m.list.Items() {
		if file, ok := item.(fileItem); ok {
			names = append(names, file.name+file.ext)
		}
	}
	if len(names) != 2 || names[0] != "clip.ogg" || names[1] != "track.flac" {
		t.Fatalf("unexpected browser files: %v", names)
	}
}

func TestBrowserReportsUnreadableDirectory(t *testing.T) {
	m := NewBrowser(filepath.Join(t.TempDir(), "missing"), 80, 20)
	if m.Error() == nil {
		t.Fatal("expected scan error")
	}
	if len(m.list.Items()) != 1 {
		t.Fatalf("expected only the URL item, got %d", len(m.list.Items()))
	}
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, contents := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}
