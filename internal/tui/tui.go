// Package tui provides a Bubble Tea terminal user interface for
// interactive download sessions.
package tui

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"qbz/internal/archive"
	"qbz/internal/config"
	"qbz/internal/download"
	"qbz/internal/model"
	"qbz/internal/qobuz"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5FB0FF")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

// State is the current UI state.
type State int

const (
	StateInput State = iota
	StateAuth
	StateDownloading
	StateComplete
	StateError
)

// tracker is the progress sink the download manager reports into; the
// UI polls it on every tick.
type tracker struct {
	total    atomic.Int64
	received atomic.Int64
	label    atomic.Value // string
}

func (t *tracker) Describe(text string) { t.label.Store(text) }
func (t *tracker) GrowTotal(n int64)    { t.total.Add(n) }
func (t *tracker) Add(n int64)          { t.received.Add(n) }

func (t *tracker) current() (received, total int64, label string) {
	if v, ok := t.label.Load().(string); ok {
		label = v
	}
	return t.received.Load(), t.total.Load(), label
}

// Model is the Bubble Tea model for an interactive session.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	err       error

	ctx    context.Context
	cancel context.CancelFunc

	manager *download.Manager
	track   *tracker

	receivedBytes int64
	totalBytes    int64
	current       string
	snapshot      model.Snapshot

	// Toggles applied on top of the settings file.
	smartDiscography bool
	qualityFallback  bool
	albumsOnly       bool

	width int
}

// NewModel creates the TUI model over the loaded settings.
func NewModel(settings *config.Settings) Model {
	ti := textinput.New()
	ti.Placeholder = "https://www.qobuz.com/album/..."
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FB0FF"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:            StateInput,
		textInput:        ti,
		spinner:          sp,
		progress:         prog,
		settings:         settings,
		ctx:              ctx,
		cancel:           cancel,
		smartDiscography: settings.SmartDiscography,
		qualityFallback:  settings.QualityFallback,
		albumsOnly:       settings.AlbumsOnly,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

type (
	// AuthDoneMsg is sent once login and session setup finish.
	AuthDoneMsg struct {
		Manager *download.Manager
		Tracker *tracker
		Err     error
	}

	// DownloadDoneMsg is sent when the whole session finishes.
	DownloadDoneMsg struct {
		Err error
	}

	// TickMsg drives periodic progress polling.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateAuth || m.state == StateDownloading {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "enter":
			if m.state == StateInput && m.textInput.Value() != "" {
				m.state = StateAuth
				return m, tea.Batch(m.startSession(), m.spinner.Tick)
			}

		case "d":
			if m.state == StateInput {
				m.smartDiscography = !m.smartDiscography
			}

		case "f":
			if m.state == StateInput {
				m.qualityFallback = !m.qualityFallback
			}

		case "a":
			if m.state == StateInput {
				m.albumsOnly = !m.albumsOnly
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.state = StateInput
				m.err = nil
				m.manager = nil
				m.track = nil
				m.receivedBytes, m.totalBytes = 0, 0
				m.current = ""
				m.snapshot = model.Snapshot{}
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.SetValue("")
				m.textInput.Focus()
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case AuthDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.manager = msg.Manager
			m.track = msg.Tracker
			m.state = StateDownloading
			cmds = append(cmds, m.runDownload(), m.tickProgress())
		}

	case DownloadDoneMsg:
		m.refreshProgress()
		if msg.Err != nil && m.ctx.Err() == nil {
			m.state = StateError
			m.err = msg.Err
		} else if m.ctx.Err() != nil {
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		} else {
			m.state = StateComplete
		}

	case TickMsg:
		if m.state == StateDownloading {
			m.refreshProgress()
			var percent float64
			if m.totalBytes > 0 {
				percent = float64(m.receivedBytes) / float64(m.totalBytes)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) refreshProgress() {
	if m.track != nil {
		m.receivedBytes, m.totalBytes, m.current = m.track.current()
	}
	if m.manager != nil {
		m.snapshot = m.manager.Stats().Snapshot()
	}
}

func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("qbz"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Qobuz music downloader"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateAuth:
		b.WriteString(m.spinner.View() + " " + subtitleStyle.Render("Logging in..."))
		b.WriteString("\n")
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))
	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter Qobuz URL:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	check := func(on bool) string {
		if on {
			return "[x]"
		}
		return "[ ]"
	}
	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s Smart discography filter (d)\n", check(m.smartDiscography))
	fmt.Fprintf(&b, "  %s Quality fallback (f)\n", check(m.qualityFallback))
	fmt.Fprintf(&b, "  %s Albums only (a)\n", check(m.albumsOnly))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Quality: " + model.Quality(m.settings.Quality).Label()))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download path: " + m.settings.BaseDir))
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	if m.current != "" {
		b.WriteString(subtitleStyle.Render("Downloading: " + m.current))
		b.WriteString("\n\n")
	}

	var percent float64
	if m.totalBytes > 0 {
		percent = float64(m.receivedBytes) / float64(m.totalBytes)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Tracks: %d done, %d skipped, %d failed | %.2f MB",
		m.snapshot.Downloaded,
		m.snapshot.SkippedArchive+m.snapshot.SkippedExists,
		m.snapshot.Failed,
		float64(m.receivedBytes)/1024/1024,
	)))
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewComplete() string {
	return boxStyle.Render(fmt.Sprintf(
		"Session complete\n\n"+
			"Releases:   %d\n"+
			"Downloaded: %d\n"+
			"Skipped:    %d\n"+
			"Failed:     %d\n"+
			"Size:       %.2f MB\n"+
			"Elapsed:    %s",
		m.snapshot.Processed,
		m.snapshot.Downloaded,
		m.snapshot.SkippedArchive+m.snapshot.SkippedExists,
		m.snapshot.Failed,
		float64(m.snapshot.Bytes)/1024/1024,
		m.snapshot.Elapsed.Round(time.Second),
	))
}

func (m Model) viewError() string {
	var b strings.Builder
	b.WriteString(errorStyle.Render("Error:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString("  " + m.err.Error())
	}
	return b.String()
}

func (m Model) helpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • d/f/a: toggles • esc: quit"
	case StateAuth, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new download • q: quit"
	}
	return ""
}

// startSession logs in and builds the download manager.
func (m *Model) startSession() tea.Cmd {
	settings := m.settings
	ctx := m.ctx

	cfg := settings.DownloadConfig()
	cfg.SmartDiscography = m.smartDiscography
	cfg.QualityFallback = m.qualityFallback
	cfg.AlbumsOnly = m.albumsOnly

	return func() tea.Msg {
		client := qobuz.NewClient(settings.AppID, settings.Secrets, log.New(io.Discard))

		var err error
		if settings.Token != "" {
			err = client.LoginWithToken(ctx, settings.Token)
		} else {
			err = client.Login(ctx, settings.Email, settings.PasswordMD5)
		}
		if err != nil {
			return AuthDoneMsg{Err: err}
		}

		var arch *archive.Archive
		if settings.UseArchive {
			path := settings.ArchivePath
			if path == "" {
				path = filepath.Join(cfg.BaseDir, "download_archive.txt")
			}
			if arch, err = archive.Open(path); err != nil {
				return AuthDoneMsg{Err: err}
			}
		}

		track := &tracker{}
		mgr := download.New(client, cfg, arch, log.New(io.Discard), track)
		return AuthDoneMsg{Manager: mgr, Tracker: track}
	}
}

// runDownload drives the session for the entered URL.
func (m *Model) runDownload() tea.Cmd {
	mgr, ctx, url := m.manager, m.ctx, m.textInput.Value()
	return func() tea.Msg {
		return DownloadDoneMsg{Err: mgr.HandleAll(ctx, []string{url})}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
