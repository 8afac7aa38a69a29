package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/trackdl/internal/models"
	"github.com/desertthunder/trackdl/internal/shared"
	"github.com/desertthunder/trackdl/internal/tasks"
)

// Model represents the download TUI state: one track acquisition with a live
// progress bar driven by the engine's event stream.
type Model struct {
	ctx       context.Context
	req       models.DownloadRequest
	engine    *tasks.Engine
	outputDir string

	events  chan tasks.ProgressEvent
	bar     progress.Model
	stage   tasks.Stage
	percent int
	message string

	result   *tasks.Result
	err      error
	saved    string
	finished bool

	width int
	help  help.Model
	keys  keyMap
}

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	quit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.quit}}
}

// NewModel creates the download TUI for one request. outputDir is where the
// finished file is written.
func NewModel(ctx context.Context, engine *tasks.Engine, req models.DownloadRequest, outputDir string) Model {
	return Model{
		ctx:       ctx,
		req:       req,
		engine:    engine,
		outputDir: outputDir,
		events:    make(chan tasks.ProgressEvent, 64),
		bar:       progress.New(progress.WithDefaultGradient()),
		stage:     tasks.StageSearching,
		message:   "Starting...",
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init starts the acquisition and begins draining its event stream.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.startDownload(), m.waitForEvent())
}

// startDownload runs the engine in a command; the returned message carries
// the final result once the event channel is exhausted.
func (m Model) startDownload() tea.Cmd {
	return func() tea.Msg {
		result, err := m.engine.Run(m.ctx, m.req, m.events)
		close(m.events)
		return downloadFinishedMsg(result, err)
	}
}

// waitForEvent blocks on the next progress event.
func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return nil
		}
		return progressEventMsg(ev)
	}
}

// Update implements the bubbletea update loop.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(msg.Width-4, 60)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		return m, nil

	case Msg:
		switch msg.kind {
		case MsgProgressEvent:
			ev := msg.data.(tasks.ProgressEvent)
			m.stage = ev.Stage
			m.percent = ev.Progress
			m.message = ev.Message
			return m, m.waitForEvent()

		case MsgDownloadFinished:
			data := msg.data.(struct {
				result *tasks.Result
				err    error
			})
			m.result = data.result
			m.err = data.err
			m.finished = true
			if m.err == nil && m.result != nil && m.result.Artifact != nil {
				m.saved, m.err = saveArtifact(m.result.Artifact, m.outputDir)
			}
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the current download state.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styles.title.Render(fmt.Sprintf("Downloading %s", m.req.PrimaryQuery())))
	b.WriteString("\n")

	if m.finished {
		if m.err != nil {
			b.WriteString(styles.err.Render(fmt.Sprintf("✗ %v", m.err)))
		} else {
			b.WriteString(styles.ok.Render(fmt.Sprintf("✓ Saved %s (%s via %s)",
				m.saved,
				shared.FormatBytes(m.result.Artifact.Size()),
				m.result.Strategy)))
		}
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.bar.ViewAs(float64(m.percent) / 100))
	b.WriteString("\n")
	b.WriteString(styles.warn.Render(fmt.Sprintf("[%s] %s", m.stage, m.message)))
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

// Err returns the terminal error after the program exits, if any.
func (m Model) Err() error { return m.err }

// Result returns the engine's result after the program exits.
func (m Model) Result() *tasks.Result { return m.result }

// SavedPath returns where the artifact was written, empty on failure.
func (m Model) SavedPath() string { return m.saved }

// saveArtifact writes the in-memory artifact into dir under its suggested
// filename.
func saveArtifact(a *models.Artifact, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, a.SuggestedFilename)
	if err := os.WriteFile(path, a.Bytes, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
