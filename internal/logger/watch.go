// ABOUTME: WatchLogger: the full-screen multi-pane terminal UI for watch-mode builds
// ABOUTME: One tea.Program per invocation; producers send messages, the render loop owns all state

package logger

import (
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/depot-go/depot/internal/logging"
)

// fixedPanes is the orchestrator-wide fixed set of process panes shown
// for every package, in grid reading order: build and check share the
// top ⅔ of the height, lint and script the bottom ⅓.
var fixedPanes = []string{"build", "check", "lint", "script"}

var (
	activeButtonStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("2")).
				Foreground(lipgloss.Color("0")).
				Bold(true).
				Padding(0, 2)
	inactiveButtonStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("0")).
				Foreground(lipgloss.Color("7")).
				Padding(0, 2)
	paneTitleStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	paneBoxStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("8"))
)

type registerMsg struct{ pkgName, procName string }
type logMsg struct {
	pkgName, procName string
	chunk              []byte
}

// WatchLogger drives the alt-screen TUI. Register and Log are safe to
// call from any goroutine; all state mutation happens on the bubbletea
// render loop, reached by sending messages through the program. Sending
// blocks until the program is running, so Register and Log must come
// after Start.
type WatchLogger struct {
	program *tea.Program

	mu   sync.Mutex
	reg  *registry
	done chan struct{}
}

// NewWatchLogger constructs a WatchLogger. roots is the set of package
// names the invoking command targeted; when it names exactly one
// package, that package is shown first.
func NewWatchLogger(roots []string) *WatchLogger {
	m := &watchModel{reg: newRegistry()}
	if len(roots) == 1 {
		m.active = roots[0]
	}

	l := &WatchLogger{
		reg:     m.reg,
		program: tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()),
		done:    make(chan struct{}),
	}
	return l
}

func (l *WatchLogger) Register(pkgName, procName string) {
	l.mu.Lock()
	l.reg.register(pkgName, procName)
	l.mu.Unlock()
	l.program.Send(registerMsg{pkgName: pkgName, procName: procName})
}

func (l *WatchLogger) Log(pkgName, procName string, chunk []byte) {
	l.mu.Lock()
	l.reg.lookup(pkgName, procName) // panics if unregistered
	l.mu.Unlock()
	cp := make([]byte, len(chunk))
	copy(cp, chunk)
	l.program.Send(logMsg{pkgName: pkgName, procName: procName, chunk: cp})
}

func (l *WatchLogger) Start() error {
	// internal/logging writes go straight to stderr; once the alt screen
	// owns the terminal that would tear through the rendered panes, so
	// buffer them for the duration and flush on exit.
	logging.Suspend()
	go func() {
		defer close(l.done)
		defer logging.Resume()
		_, _ = l.program.Run()
	}()
	return nil
}

// Done signals when the TUI has exited, whether because the user
// pressed q/escape/ctrl+c or because End was called. Callers running a
// build alongside the TUI select on this to cancel the build context
// when the user quits mid-run.
func (l *WatchLogger) Done() <-chan struct{} {
	return l.done
}

func (l *WatchLogger) End() error {
	select {
	case <-l.done:
	default:
		l.program.Quit()
		<-l.done
	}
	return nil
}

type watchModel struct {
	reg *registry

	packages []string // registration order
	active   string

	width, height int
	quitting      bool
}

func (m *watchModel) Init() tea.Cmd {
	return nil
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case tea.MouseMsg:
		if msg.Type == tea.MouseLeft {
			if pkg, ok := m.buttonAt(msg.X, msg.Y); ok {
				m.active = pkg
			}
		}
		return m, nil

	case registerMsg:
		m.registerPackage(msg.pkgName)
		return m, nil

	case logMsg:
		m.reg.lookup(msg.pkgName, msg.procName).append(msg.chunk)
		return m, nil
	}
	return m, nil
}

func (m *watchModel) registerPackage(pkgName string) {
	for _, p := range m.packages {
		if p == pkgName {
			return
		}
	}
	m.packages = append(m.packages, pkgName)
	if m.active == "" {
		m.active = pkgName
	}
}

// buttonRowY returns the row the button strip renders on: the last
// line of the viewport.
func (m *watchModel) buttonRowY() int {
	return m.height - 1
}

// buttonWidth is the fixed per-button width: the longest display label
// across every registered package, plus 4.
func (m *watchModel) buttonWidth() int {
	max := 0
	for _, pkg := range m.packages {
		if w := lipgloss.Width(displayLabel(pkg)); w > max {
			max = w
		}
	}
	return max + 4
}

// displayLabel shortens a scoped package name ("@scope/name") to just
// its final path segment for the button row; the full name stays the
// lookup key everywhere else, so two differently-scoped packages
// rendering the same label is cosmetic, not a collision.
func displayLabel(pkgName string) string {
	if idx := strings.LastIndex(pkgName, "/"); idx >= 0 {
		return pkgName[idx+1:]
	}
	return pkgName
}

// buttonAt maps a mouse click to the package whose button occupies
// that x position on the button row, mirroring View's layout exactly.
func (m *watchModel) buttonAt(x, y int) (string, bool) {
	if y != m.buttonRowY() {
		return "", false
	}
	w := m.buttonWidth()
	cursor := 0
	for _, pkg := range m.packages {
		if x >= cursor && x < cursor+w {
			return pkg, true
		}
		cursor += w
	}
	return "", false
}

func (m *watchModel) View() string {
	if m.quitting {
		return ""
	}
	if m.active == "" {
		return "waiting for packages to register...\n"
	}

	buttonWidth := m.buttonWidth()
	buttons := make([]string, 0, len(m.packages))
	for _, pkg := range m.packages {
		style := inactiveButtonStyle
		if pkg == m.active {
			style = activeButtonStyle
		}
		buttons = append(buttons, style.Width(buttonWidth).Render(displayLabel(pkg)))
	}
	buttonRow := lipgloss.JoinHorizontal(lipgloss.Top, buttons...)

	gridHeight := m.height - lipgloss.Height(buttonRow)
	if gridHeight < 2 {
		gridHeight = 2
	}
	topHeight := (gridHeight * 2) / 3
	bottomHeight := gridHeight - topHeight
	colWidth := m.width / 2
	if colWidth < 4 {
		colWidth = 4
	}

	topRow := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderPane(fixedPanes[0], colWidth, topHeight),
		m.renderPane(fixedPanes[1], colWidth, topHeight),
	)
	bottomRow := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderPane(fixedPanes[2], colWidth, bottomHeight),
		m.renderPane(fixedPanes[3], colWidth, bottomHeight),
	)

	return lipgloss.JoinVertical(lipgloss.Left, topRow, bottomRow, buttonRow)
}

func (m *watchModel) renderPane(procName string, width, height int) string {
	title := paneTitleStyle.Render(procName)

	content := ""
	if p, ok := m.reg.byKey[paneKey(m.active, procName)]; ok {
		lines := strings.Split(strings.TrimRight(string(p.bytes()), "\n"), "\n")
		if len(lines) > height-3 {
			lines = lines[len(lines)-(height-3):]
		}
		content = strings.Join(lines, "\n")
	}

	body := title + "\n" + content
	return paneBoxStyle.Width(width - 2).Height(height - 2).Render(body)
}
