// Package tui реализует терминальный интерфейс для замера одного снимка или сравнения двух.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"fiber-meter/internal/domain/entity"
	"fiber-meter/internal/infrastructure/report"
)

const DefaultSaveName = "fiber_results.json"

const (
	statusStarting = "Initializing AI vision model..."
	statusReady    = "AI vision model ready for analysis"
	statusBusy     = "Processing images with AI vision..."
	statusDone     = "Analysis complete!"
	statusFailed   = "Analysis failed"
	statusInitFail = "Initialization failed"
	pendingText    = "Analysis pending..."
)

// Analyzer то, чем экран делает замеры.
type Analyzer interface {
	ProcessImage(ctx context.Context, src entity.Source, path string) *entity.Reading
	CompareImages(ctx context.Context, src entity.Source, path1, path2 string) *entity.Comparison
}

// Options зависимости экрана.
type Options struct {
	Analyzer Analyzer
	Ping     func(ctx context.Context) error // nil: модель считается готовой сразу
	Styles   *Styles                         // nil: DefaultStyles
}

type statusKind int

const (
	kindOK statusKind = iota
	kindBusy
	kindError
)

type readyMsg struct{ err error }

type resultMsg struct {
	reading    *entity.Reading
	comparison *entity.Comparison
}

// Model состояние экрана.
type Model struct {
	opts     Options
	styles   Styles
	mode     entity.Mode
	files    []string
	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model

	ready      bool
	busy       bool
	status     string
	statusKind statusKind

	reading    *entity.Reading
	comparison *entity.Comparison

	width, height int
}

// New создаёт экран в одиночном режиме.
func New(opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "path/to/image.jpg"
	ti.Prompt = "➤ "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	vp := viewport.New(80, 16)
	vp.SetContent(pendingText)

	styles := DefaultStyles()
	if opts.Styles != nil {
		styles = *opts.Styles
	}

	m := Model{
		opts:     opts,
		styles:   styles,
		mode:     entity.ModeSingle,
		input:    ti,
		spinner:  sp,
		viewport: vp,
		status:   statusStarting,
	}
	if opts.Ping == nil {
		m.ready = true
		m.status = statusReady
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.opts.Ping != nil {
		cmds = append(cmds, m.spinner.Tick, m.ping())
	}
	return tea.Batch(cmds...)
}

// CanAnalyze сообщает, можно ли запустить анализ: да, когда модель готова и выбрано нужное число файлов.
func (m Model) CanAnalyze() bool {
	return m.ready && !m.busy && m.opts.Analyzer != nil && len(m.files) == m.mode.RequiredFiles()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = max(msg.Width-4, 20)
		m.viewport.Height = max(msg.Height-16, 5)
		return m, nil

	case readyMsg:
		if msg.err != nil {
			m.setStatus(statusInitFail+": "+msg.err.Error(), kindError)
			return m, nil
		}
		m.ready = true
		m.setStatus(statusReady, kindOK)
		return m, nil

	case resultMsg:
		m.busy = false
		m.reading, m.comparison = msg.reading, msg.comparison
		m.showResult()
		return m, nil

	case spinner.TickMsg:
		if !m.busy && m.ready {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyTab:
		m.toggleMode()
		return m, nil

	case tea.KeyEnter:
		m.addFile(strings.Trim(strings.TrimSpace(m.input.Value()), `"'`))
		m.input.SetValue("")
		return m, nil

	case tea.KeyCtrlR:
		if !m.CanAnalyze() {
			m.setStatus(fmt.Sprintf("Select %d image(s) first", m.mode.RequiredFiles()), kindError)
			return m, nil
		}
		m.busy = true
		m.setStatus(statusBusy, kindBusy)
		m.viewport.SetContent("Processing...")
		return m, tea.Batch(m.spinner.Tick, m.analyze())

	case tea.KeyCtrlS:
		m.save(strings.TrimSpace(m.input.Value()))
		m.input.SetValue("")
		return m, nil

	case tea.KeyCtrlL:
		m.clearResults()
		return m, nil

	case tea.KeyCtrlX:
		m.files = nil
		m.setStatus("Selection cleared", kindOK)
		return m, nil

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) toggleMode() {
	if m.mode == entity.ModeSingle {
		m.mode = entity.ModeDual
	} else {
		m.mode = entity.ModeSingle
	}
	m.files = nil
	m.clearResults()
}

func (m *Model) addFile(path string) {
	if path == "" {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		m.setStatus("File not found: "+path, kindError)
		return
	}
	if info.IsDir() {
		m.setStatus("Path is a directory: "+path, kindError)
		return
	}
	if len(m.files) >= m.mode.RequiredFiles() {
		m.files = nil
	}
	m.files = append(m.files, path)

	if need := m.mode.RequiredFiles() - len(m.files); need > 0 {
		m.setStatus(fmt.Sprintf("Selected %s, %d more to go", filepath.Base(path), need), kindOK)
		return
	}
	m.setStatus("Ready: press ctrl+r to analyze", kindOK)
}

func (m Model) analyze() tea.Cmd {
	analyzer := m.opts.Analyzer
	files := append([]string(nil), m.files...)
	mode := m.mode
	return func() tea.Msg {
		ctx := context.Background()
		if mode == entity.ModeDual && len(files) == 2 {
			return resultMsg{comparison: analyzer.CompareImages(ctx, entity.SourceTUI, files[0], files[1])}
		}
		return resultMsg{reading: analyzer.ProcessImage(ctx, entity.SourceTUI, files[0])}
	}
}

func (m Model) ping() tea.Cmd {
	ping := m.opts.Ping
	return func() tea.Msg {
		return readyMsg{err: ping(context.Background())}
	}
}

func (m *Model) showResult() {
	var errMsg string
	switch {
	case m.comparison != nil:
		errMsg = m.comparison.Error
	case m.reading != nil:
		errMsg = m.reading.Error
	default:
		errMsg = "Processing failed"
	}

	if errMsg != "" {
		m.setStatus(statusFailed, kindError)
		m.viewport.SetContent(fmt.Sprintf("Failed to process image(s).\nError: %s\n", errMsg))
		return
	}

	m.setStatus(statusDone, kindOK)
	if m.comparison != nil {
		m.viewport.SetContent(m.comparisonView(m.comparison))
	} else {
		m.viewport.SetContent(report.RenderReading(m.reading))
	}
	m.viewport.GotoTop()
}

func (m *Model) save(name string) {
	var result any
	switch {
	case m.comparison != nil:
		result = m.comparison
	case m.reading != nil:
		result = m.reading
	default:
		m.setStatus("No results to save!", kindError)
		return
	}

	if name == "" {
		name = DefaultSaveName
	}
	if filepath.Ext(name) == "" {
		name += ".json"
	}
	if err := report.WriteJSON(name, result); err != nil {
		m.setStatus("Failed to save file: "+err.Error(), kindError)
		return
	}
	m.setStatus("Results saved to: "+name, kindOK)
}

func (m *Model) clearResults() {
	m.reading, m.comparison = nil, nil
	m.viewport.SetContent(pendingText)
	if m.ready {
		m.setStatus(statusReady, kindOK)
	}
}

func (m *Model) setStatus(text string, kind statusKind) {
	m.status, m.statusKind = text, kind
}
