package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/nconklindev/dupecheck/internal/config"
	"github.com/nconklindev/dupecheck/internal/dupes"
	"github.com/nconklindev/dupecheck/internal/sheet"

	"github.com/aymanbagabas/go-osc52/v2"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// noticeDuration is how long a copy or export notice stays on screen.
const noticeDuration = 2 * time.Second

type state int

const (
	stateFilePicker state = iota
	stateColumnSelection
	stateProcessing
	stateResults
	stateError
)

// Model is the whole interactive session: the loaded document, the chosen
// column and the last result. Loading a new file replaces all of it.
type Model struct {
	state      state
	cfg        *config.Config
	filepicker filepicker.Model
	progress   progress.Model
	spinner    spinner.Model

	selectedFile string
	fileSize     int64
	doc          *sheet.Document
	headers      []string
	cursor       int

	job       *dupes.Job
	lastPct   int
	started   time.Time
	elapsed   time.Duration
	result    dupes.Result
	resCursor int

	notice   string
	noticeID int

	err       error
	errReturn state

	width  int
	height int
}

type fileLoadedMsg struct {
	doc  *sheet.Document
	size int64
	err  error
}

type progressMsg struct {
	job      *dupes.Job
	progress dupes.Progress
}

type checkCompleteMsg struct {
	job     *dupes.Job
	outcome dupes.Outcome
}

type copiedMsg struct {
	value string
	err   error
}

type exportedMsg struct {
	path string
	err  error
}

type clearNoticeMsg struct{ id int }

func InitialModel(cfg *config.Config) Model {
	if cfg == nil {
		cfg = config.Default()
	}

	fp := filepicker.New()
	fp.AllowedTypes = []string{".xlsx", ".xlsm", ".xls", ".csv"}
	fp.CurrentDirectory = cfg.Browse.StartDir
	if fp.CurrentDirectory == "" {
		fp.CurrentDirectory, _ = os.Getwd()
	}

	// Set filepicker colors to match theme
	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(accent)
	fp.Styles.Symlink = lipgloss.NewStyle().Foreground(highlight)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(highlight)
	fp.Styles.File = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(muted)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(accent).Bold(true)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(muted)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accent)

	return Model{
		state:      stateFilePicker,
		cfg:        cfg,
		filepicker: fp,
		progress:   progress.New(progress.WithGradient("#2E86AB", "#56C1E8")),
		spinner:    s,
	}
}

func (m Model) Init() tea.Cmd {
	return m.filepicker.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Leave room for title, subtitle, help text and padding
		m.filepicker.SetHeight(max(msg.Height-14, 5))

		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case fileLoadedMsg:
		if msg.err != nil {
			slog.Warn("failed to load file", "file", m.selectedFile, "error", msg.err)
			return m.fail(msg.err, stateFilePicker), nil
		}
		m.doc = msg.doc
		m.fileSize = msg.size
		m.headers = msg.doc.Headers()
		m.cursor = 0
		m.result = dupes.Result{}
		m.state = stateColumnSelection
		slog.Info("file loaded",
			"file", m.selectedFile,
			"sheet", msg.doc.SheetName(),
			"headers", len(m.headers),
			"rows", msg.doc.Range().DataRows())
		return m, nil

	case progressMsg:
		if m.state != stateProcessing || msg.job != m.job {
			return m, nil
		}
		m.lastPct = msg.progress.Percent()
		cmd := m.progress.SetPercent(msg.progress.Fraction())
		return m, tea.Batch(cmd, waitForProgress(m.job))

	case checkCompleteMsg:
		if msg.job != m.job {
			return m, nil
		}
		m.job = nil
		m.elapsed = time.Since(m.started)
		if err := msg.outcome.Err; err != nil {
			if errors.Is(err, context.Canceled) {
				m.state = stateColumnSelection
				return m.showNotice("Check cancelled")
			}
			return m.fail(err, stateColumnSelection), nil
		}
		m.result = msg.outcome.Result
		m.resCursor = 0
		m.state = stateResults
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			slog.Warn("failed to copy value", "error", msg.err)
			return m.showNotice("Failed to copy: " + msg.err.Error())
		}
		return m.showNotice("Copied to clipboard!")

	case exportedMsg:
		if msg.err != nil {
			slog.Warn("export failed", "path", msg.path, "error", msg.err)
			return m.showNotice("Export failed: " + msg.err.Error())
		}
		slog.Info("exported duplicates", "path", msg.path)
		return m.showNotice("Exported to " + msg.path)

	case clearNoticeMsg:
		if msg.id == m.noticeID {
			m.notice = ""
		}
		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case spinner.TickMsg:
		if m.state != stateProcessing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Handle filepicker updates
	if m.state == stateFilePicker {
		return m.updateFilePicker(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch m.state {
	case stateFilePicker:
		switch key {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
		return m.updateFilePicker(msg)

	case stateColumnSelection:
		switch key {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.headers)-1 {
				m.cursor++
			}
		case "n":
			return m.reset()
		case "enter":
			return m.startCheck()
		}

	case stateProcessing:
		switch key {
		case "ctrl+c":
			if m.job != nil {
				m.job.Cancel()
			}
			return m, tea.Quit
		case "esc", "q":
			if m.job != nil {
				m.job.Cancel()
			}
		}

	case stateResults:
		switch key {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			if m.resCursor > 0 {
				m.resCursor--
			}
		case "down", "j":
			if m.resCursor < len(m.result.Entries)-1 {
				m.resCursor++
			}
		case "enter", "c":
			if m.result.Empty() {
				return m, nil
			}
			return m, copyToClipboard(m.result.Entries[m.resCursor].Value.String())
		case "x":
			if m.result.Empty() {
				return m, nil
			}
			return m, m.export()
		case "s", "esc":
			m.state = stateColumnSelection
		case "n":
			return m.reset()
		}

	case stateError:
		switch key {
		case "ctrl+c", "q":
			return m, tea.Quit
		default:
			m.err = nil
			if m.errReturn == stateFilePicker {
				return m.reset()
			}
			m.state = m.errReturn
		}
	}

	return m, nil
}

func (m Model) updateFilePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.filepicker, cmd = m.filepicker.Update(msg)

	if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
		m.selectedFile = path
		return m, loadFile(path)
	}

	return m, cmd
}

// reset drops the loaded document and returns to the file picker.
func (m Model) reset() (tea.Model, tea.Cmd) {
	if m.job != nil {
		m.job.Cancel()
		m.job = nil
	}
	m.state = stateFilePicker
	m.selectedFile = ""
	m.fileSize = 0
	m.doc = nil
	m.headers = nil
	m.cursor = 0
	m.result = dupes.Result{}
	m.resCursor = 0
	m.notice = ""
	return m, m.filepicker.Init()
}

func (m Model) fail(err error, returnTo state) Model {
	m.err = err
	m.errReturn = returnTo
	m.state = stateError
	return m
}

func (m Model) showNotice(text string) (tea.Model, tea.Cmd) {
	m.noticeID++
	m.notice = text
	id := m.noticeID
	return m, tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return clearNoticeMsg{id: id}
	})
}

func (m Model) startCheck() (tea.Model, tea.Cmd) {
	if m.doc == nil || len(m.headers) == 0 {
		return m, nil
	}

	m.job = dupes.Start(context.Background(), m.doc, m.cursor)
	m.state = stateProcessing
	m.lastPct = 0
	m.started = time.Now()
	m.notice = ""
	slog.Debug("duplicate check started", "file", m.selectedFile, "column", m.headers[m.cursor])

	return m, tea.Batch(
		waitForProgress(m.job),
		m.progress.SetPercent(0),
		m.spinner.Tick,
	)
}

func (m Model) export() tea.Cmd {
	path := dupes.ExportPath(m.selectedFile, m.cfg.Export.Format)
	res := m.result
	column := m.headers[m.cursor]

	return func() tea.Msg {
		return exportedMsg{path: path, err: dupes.Export(path, res, column)}
	}
}

func loadFile(path string) tea.Cmd {
	return func() tea.Msg {
		var size int64
		if info, err := os.Stat(path); err == nil {
			size = info.Size()
		}
		doc, err := sheet.ParseFile(path)
		return fileLoadedMsg{doc: doc, size: size, err: err}
	}
}

// waitForProgress reads the next report, and once the job has stopped
// reporting, its outcome.
func waitForProgress(job *dupes.Job) tea.Cmd {
	return func() tea.Msg {
		if job == nil {
			return nil
		}

		p, ok := <-job.Progress()
		if !ok {
			return checkCompleteMsg{job: job, outcome: <-job.Done()}
		}

		return progressMsg{job: job, progress: p}
	}
}

func copyToClipboard(value string) tea.Cmd {
	return func() tea.Msg {
		seq := osc52.New(value)
		if os.Getenv("TMUX") != "" {
			seq = seq.Tmux()
		} else if os.Getenv("STY") != "" {
			seq = seq.Screen()
		}
		_, err := seq.WriteTo(os.Stderr)
		if err != nil {
			err = fmt.Errorf("write clipboard sequence: %w", err)
		}
		return copiedMsg{value: value, err: err}
	}
}
