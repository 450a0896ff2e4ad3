// ABOUTME: OnceLogger: buffers every pane and dumps them in registration order on End
// ABOUTME: Used for non-interactive invocations (CI, --release, piped stdout)

package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// defaultDumpWidth is the dot-rule width used when out isn't a terminal
// (the common case: CI logs, redirected stdout) and term.GetSize has
// nothing to report.
const defaultDumpWidth = 80

var paneHeaderStyle = lipgloss.NewStyle().Bold(true)

// OnceLogger accumulates output per pane and writes it all to out when
// End is called, in the order panes were first registered. It never
// renders anything while tasks are running, so it's safe to use when
// stdout isn't a terminal.
type OnceLogger struct {
	out io.Writer

	mu  sync.Mutex
	reg *registry
}

// NewOnceLogger returns a Logger that writes its buffered panes to out
// once every task has finished.
func NewOnceLogger(out io.Writer) *OnceLogger {
	return &OnceLogger{out: out, reg: newRegistry()}
}

func (l *OnceLogger) Register(pkgName, procName string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reg.register(pkgName, procName)
}

func (l *OnceLogger) Log(pkgName, procName string, chunk []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reg.lookup(pkgName, procName).append(chunk)
}

func (l *OnceLogger) Start() error {
	return nil
}

// End dumps every non-empty pane in registration order, each preceded
// by its bold pane name and followed by a full-width rule of dots so
// piped or paged output still reads as a sequence of sections.
func (l *OnceLogger) End() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rule := strings.Repeat(".", dumpWidth(l.out))

	for _, p := range l.reg.order {
		content := p.bytes()
		if len(content) == 0 {
			continue
		}
		header := paneHeaderStyle.Render(fmt.Sprintf("%s / %s", p.pkgName, p.procName))
		if _, err := fmt.Fprintln(l.out, header); err != nil {
			return err
		}
		if _, err := l.out.Write(content); err != nil {
			return err
		}
		if content[len(content)-1] != '\n' {
			if _, err := l.out.Write([]byte{'\n'}); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(l.out, rule); err != nil {
			return err
		}
	}
	return nil
}

// dumpWidth reports the terminal width behind out, falling back to
// defaultDumpWidth when out isn't a terminal (a pipe, a file, a test
// buffer) or the size can't be determined.
func dumpWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok {
		return defaultDumpWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultDumpWidth
	}
	return width
}
