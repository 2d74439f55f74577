package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nconklindev/dupecheck/internal/config"
	"github.com/nconklindev/dupecheck/internal/dupes"
	"github.com/nconklindev/dupecheck/internal/sheet"
	"github.com/nconklindev/dupecheck/internal/types"

	tea "github.com/charmbracelet/bubbletea"
)

func loadedModel(t *testing.T, content string) Model {
	t.Helper()

	doc, err := sheet.ParseCSV(strings.NewReader(content))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}

	m := InitialModel(config.Default())
	m.selectedFile = "/tmp/people.csv"
	updated, _ := m.Update(fileLoadedMsg{doc: doc, size: 2048})
	return updated.(Model)
}

func press(t *testing.T, m Model, key string) (Model, tea.Cmd) {
	t.Helper()

	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}

	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func TestFileLoadedShowsColumns(t *testing.T) {
	m := loadedModel(t, "ID,Email\n1,a\n2,a\n")

	if m.state != stateColumnSelection {
		t.Fatalf("state = %v; want column selection", m.state)
	}
	if len(m.headers) != 2 {
		t.Errorf("headers = %v; want 2", m.headers)
	}

	view := m.View()
	for _, want := range []string{"people.csv", "2.0 kB", "ID", "Email"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	m, _ = press(t, m, "down")
	m, _ = press(t, m, "down")
	if m.cursor != 1 {
		t.Errorf("cursor = %d; want 1 after moving past the end", m.cursor)
	}
	m, _ = press(t, m, "up")
	if m.cursor != 0 {
		t.Errorf("cursor = %d; want 0", m.cursor)
	}
}

func TestFileLoadErrorResetsToPicker(t *testing.T) {
	m := InitialModel(config.Default())
	m.selectedFile = "/tmp/broken.xlsx"

	updated, _ := m.Update(fileLoadedMsg{err: sheet.ErrInvalidFormat})
	m = updated.(Model)
	if m.state != stateError {
		t.Fatalf("state = %v; want error", m.state)
	}
	if !strings.Contains(m.View(), "valid Excel file with headers") {
		t.Errorf("View() = %q; want load error hint", m.View())
	}

	m, _ = press(t, m, "x")
	if m.state != stateFilePicker {
		t.Errorf("state = %v; want file picker", m.state)
	}
	if m.doc != nil || m.selectedFile != "" {
		t.Error("session not cleared after load error")
	}
}

func TestCheckFlow(t *testing.T) {
	m := loadedModel(t, "ID,Email\n1,x@x.com\n2,y@y.com\n3,x@x.com\n")
	m, _ = press(t, m, "down")

	m, cmd := press(t, m, "enter")
	if m.state != stateProcessing {
		t.Fatalf("state = %v; want processing", m.state)
	}
	if cmd == nil || m.job == nil {
		t.Fatal("no job started")
	}

	// Drain the job the way the program would.
	outcome := m.job.Wait()
	updated, _ := m.Update(checkCompleteMsg{job: m.job, outcome: outcome})
	m = updated.(Model)

	if m.state != stateResults {
		t.Fatalf("state = %v; want results", m.state)
	}
	if len(m.result.Entries) != 1 || m.result.Entries[0].Value != types.String("x@x.com") {
		t.Errorf("result = %v; want [(x@x.com, 2)]", m.result.Entries)
	}
	view := m.View()
	if !strings.Contains(view, "x@x.com") || !strings.Contains(view, "2 occurrences") {
		t.Errorf("View() missing duplicate entry:\n%s", view)
	}

	m, cmd = press(t, m, "c")
	if cmd == nil {
		t.Error("copy key produced no command")
	}

	updated, _ = m.Update(copiedMsg{value: "x@x.com"})
	m = updated.(Model)
	if !strings.Contains(m.View(), "Copied to clipboard!") {
		t.Error("copy notice not shown")
	}
	updated, _ = m.Update(clearNoticeMsg{id: m.noticeID})
	m = updated.(Model)
	if m.notice != "" {
		t.Errorf("notice = %q; want cleared", m.notice)
	}

	m, _ = press(t, m, "n")
	if m.state != stateFilePicker || m.doc != nil || !m.result.Empty() {
		t.Error("new file did not reset the session")
	}
}

func TestNoDuplicatesView(t *testing.T) {
	m := loadedModel(t, "ID\n1\n2\n")
	job := dupes.Start(context.Background(), m.doc, 0)
	m.job = job
	m.state = stateProcessing

	updated, _ := m.Update(checkCompleteMsg{job: job, outcome: job.Wait()})
	m = updated.(Model)

	if !strings.Contains(m.View(), "No duplicates found in the selected column.") {
		t.Errorf("View() = %q; want no-duplicates message", m.View())
	}

	_, cmd := press(t, m, "c")
	if cmd != nil {
		t.Error("copy with no duplicates produced a command")
	}
}

func TestCancelledCheckReturnsToSelection(t *testing.T) {
	m := loadedModel(t, "ID\n1\n")
	job := dupes.Start(context.Background(), m.doc, 0)
	m.job = job
	m.state = stateProcessing

	updated, _ := m.Update(checkCompleteMsg{job: job, outcome: dupes.Outcome{Err: context.Canceled}})
	m = updated.(Model)

	if m.state != stateColumnSelection {
		t.Errorf("state = %v; want column selection", m.state)
	}
	if m.notice != "Check cancelled" {
		t.Errorf("notice = %q; want %q", m.notice, "Check cancelled")
	}
}

func TestStaleMessagesIgnored(t *testing.T) {
	m := loadedModel(t, "ID\n1\n1\n")
	stale := dupes.Start(context.Background(), m.doc, 0)
	stale.Wait()

	updated, _ := m.Update(progressMsg{job: stale, progress: dupes.Progress{Processed: 1, Total: 2}})
	m = updated.(Model)
	if m.lastPct != 0 {
		t.Errorf("lastPct = %d; want stale progress ignored", m.lastPct)
	}

	updated, _ = m.Update(checkCompleteMsg{job: stale, outcome: dupes.Outcome{Err: errors.New("boom")}})
	m = updated.(Model)
	if m.state != stateColumnSelection {
		t.Errorf("state = %v; want stale outcome ignored", m.state)
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name                   string
		cursor, n, height      int
		expectStart, expectEnd int
	}{
		{"Fits", 3, 5, 10, 0, 5},
		{"Top", 0, 50, 10, 0, 10},
		{"Middle", 25, 50, 10, 20, 30},
		{"Bottom", 49, 50, 10, 40, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := window(tt.cursor, tt.n, tt.height)
			if start != tt.expectStart || end != tt.expectEnd {
				t.Errorf("window(%d, %d, %d) = %d, %d; want %d, %d",
					tt.cursor, tt.n, tt.height, start, end, tt.expectStart, tt.expectEnd)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		width    int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a much longer value", 10, "a much ..."},
		{"héllo wörld", 8, "héllo..."},
		{"abc", 2, "ab"},
	}

	for _, tt := range tests {
		if got := truncate(tt.input, tt.width); got != tt.expected {
			t.Errorf("truncate(%q, %d) = %q; want %q", tt.input, tt.width, got, tt.expected)
		}
	}
}
