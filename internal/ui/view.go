package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

func (m Model) View() string {
	switch m.state {
	case stateFilePicker:
		return m.viewFilePicker()
	case stateColumnSelection:
		return m.viewColumnSelection()
	case stateProcessing:
		return m.viewProcessing()
	case stateResults:
		return m.viewResults()
	case stateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	title := TitleStyle.Render("🔍 dupecheck - Find Duplicate Values")

	s.WriteString(title)
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Select an Excel (.xlsx, .xls) or CSV file"))
	s.WriteString("\n\n")
	s.WriteString(m.filepicker.View())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("Press q to quit"))

	return s.String()
}

func (m Model) viewColumnSelection() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("🔍 Select a Column to Check"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(m.fileLine()))
	s.WriteString("\n")

	if m.doc.SheetCount() > 1 {
		s.WriteString(WarningStyle.Render(fmt.Sprintf("Only the first of %d sheets (%s) is checked", m.doc.SheetCount(), m.doc.SheetName())))
		s.WriteString("\n")
	}
	s.WriteString("\n")

	start, end := window(m.cursor, len(m.headers), m.listHeight())
	for i := start; i < end; i++ {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
		}

		line := fmt.Sprintf("%s %s", cursor, m.headers[i])
		if m.cursor == i {
			line = SelectedStyle.Render(line)
		} else {
			line = UnselectedStyle.Render(line)
		}

		s.WriteString(line)
		s.WriteString("\n")
	}

	if m.notice != "" {
		s.WriteString("\n")
		s.WriteString(NoticeStyle.Render(m.notice))
		s.WriteString("\n")
	}

	s.WriteString(HelpStyle.Render("↑/↓: navigate • enter: check duplicates • n: new file • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewProcessing() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render(fmt.Sprintf("%s Processing: %d%%", m.spinner.View(), m.lastPct)))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("Checking %q for duplicate values...", m.headers[m.cursor]))
	s.WriteString("\n\n")
	s.WriteString(m.progress.View())
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("esc: cancel • ctrl+c: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewResults() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render(fmt.Sprintf("🔍 Duplicates in %q", m.headers[m.cursor])))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("%s rows scanned • %s values • %s",
		humanize.Comma(int64(m.result.Rows)),
		humanize.Comma(int64(m.result.Values)),
		m.elapsed.Round(time.Millisecond))))
	s.WriteString("\n\n")

	if m.result.Empty() {
		s.WriteString(UnselectedStyle.Render("No duplicates found in the selected column."))
		s.WriteString("\n\n")
		s.WriteString(HelpStyle.Render("s: select column • n: new file • q: quit"))
		return BoxStyle.Render(s.String())
	}

	s.WriteString(SuccessStyle.Render(fmt.Sprintf("✓ %s duplicate value(s), %s occurrences",
		humanize.Comma(int64(len(m.result.Entries))),
		humanize.Comma(int64(m.result.Occurrences())))))
	s.WriteString("\n\n")

	width := valueWidth(m.width)
	start, end := window(m.resCursor, len(m.result.Entries), m.listHeight())
	for i := start; i < end; i++ {
		e := m.result.Entries[i]

		cursor := " "
		if m.resCursor == i {
			cursor = ">"
		}

		value := truncate(strings.ReplaceAll(e.Value.String(), "\n", "⏎"), width)
		line := fmt.Sprintf("%s %-*s", cursor, width, value)
		if m.resCursor == i {
			line = SelectedStyle.Render(line)
		} else {
			line = UnselectedStyle.Render(line)
		}

		count := CountStyle.Render(fmt.Sprintf("%s occurrences", humanize.Comma(int64(e.Count))))
		s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, line, "  ", count))
		s.WriteString("\n")
	}

	if m.notice != "" {
		s.WriteString("\n")
		s.WriteString(NoticeStyle.Render(m.notice))
		s.WriteString("\n")
	}

	s.WriteString(HelpStyle.Render("↑/↓: navigate • c/enter: copy • x: export • s: select column • n: new file • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("✗ Error"))
	s.WriteString("\n\n")
	if m.errReturn == stateFilePicker {
		s.WriteString("Error reading the file. Please make sure it's a valid Excel file with headers.")
		s.WriteString("\n\n")
	}
	s.WriteString(m.err.Error())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("Press any key to continue • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) fileLine() string {
	line := fmt.Sprintf("File: %s", filepath.Base(m.selectedFile))
	if m.fileSize > 0 {
		line += fmt.Sprintf(" (%s)", humanize.Bytes(uint64(m.fileSize)))
	}
	return line + fmt.Sprintf(" • %s data rows", humanize.Comma(int64(m.doc.Range().DataRows())))
}

func (m Model) listHeight() int {
	if m.height == 0 {
		return 15
	}
	return max(m.height-16, 5)
}

// window returns the [start, end) slice of n items that keeps cursor
// visible in a list of the given height.
func window(cursor, n, height int) (int, int) {
	if n <= height {
		return 0, n
	}
	start := cursor - height/2
	start = max(start, 0)
	start = min(start, n-height)
	return start, start + height
}

func valueWidth(termWidth int) int {
	if termWidth == 0 {
		return 40
	}
	return min(max(termWidth-40, 10), 80)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
