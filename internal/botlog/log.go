// Package botlog is the bot's reporting surface: timestamped, per-account
// colorized console lines, plus an optional compressed JSONL event journal.
// There is no separate error channel; everything the engine decides or fails
// at goes through here.
package botlog

import (
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

var namePalette = []*color.Color{
	color.New(color.FgCyan, color.Bold),
	color.New(color.FgGreen, color.Bold),
	color.New(color.FgYellow, color.Bold),
	color.New(color.FgMagenta, color.Bold),
	color.New(color.FgBlue, color.Bold),
	color.New(color.FgHiCyan, color.Bold),
	color.New(color.FgHiGreen, color.Bold),
	color.New(color.FgHiYellow, color.Bold),
	color.New(color.FgHiMagenta, color.Bold),
	color.New(color.FgHiBlue, color.Bold),
}

var dim = color.New(color.Faint)

// pickColor returns a stable color for a name so an account keeps its color
// across runs.
func pickColor(name string) *color.Color {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return namePalette[int(h.Sum32())%len(namePalette)]
}

// Logger writes lines as "[15:04:05] [name] message" with the name tag
// colorized. Safe for concurrent use; each account task owns one.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	name    string
	tag     string
	runID   string
	journal *Journal
	now     func() time.Time
}

type Option func(*Logger)

func WithOutput(w io.Writer) Option { return func(l *Logger) { l.out = w } }

func WithJournal(j *Journal) Option { return func(l *Logger) { l.journal = j } }

func WithNow(now func() time.Time) Option { return func(l *Logger) { l.now = now } }

func New(name string, opts ...Option) *Logger {
	l := &Logger{
		out:   os.Stdout,
		name:  name,
		tag:   pickColor(name).Sprintf("[%s]", name),
		runID: uuid.NewString(),
		now:   time.Now,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// RunID identifies this account task's run in journal entries.
func (l *Logger) RunID() string { return l.runID }

func (l *Logger) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	stamp := dim.Sprintf("[%s]", l.now().Format("15:04:05"))
	l.mu.Lock()
	fmt.Fprintf(l.out, "%s %s %s\n", stamp, l.tag, msg)
	l.mu.Unlock()
}

// Event records a structured entry in the journal, if one is attached.
func (l *Logger) Event(kind string, fields map[string]any) {
	if l.journal == nil {
		return
	}
	_ = l.journal.Write(Entry{
		Time:    l.now().UTC(),
		RunID:   l.runID,
		Account: l.name,
		Kind:    kind,
		Fields:  fields,
	})
}
