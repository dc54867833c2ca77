// Package diag reports problems found while loading, checking and emitting a
// design. Positions are slash separated IR paths such as "top/rtl/seq/q".
package diag

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Severity of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "error"
	}
}

// Diagnostic is one reported problem.
type Diagnostic struct {
	Severity Severity `json:"-"`
	Level    string   `json:"severity"`
	Pos      string   `json:"pos,omitempty"`
	Message  string   `json:"message"`
}

// Reporter writes diagnostics as they are reported and counts them. It is
// safe for concurrent use.
type Reporter struct {
	mu       sync.Mutex
	w        io.Writer
	format   string
	colorize bool
	errors   int
	warnings int
	labels   map[Severity]*color.Color
}

// NewReporter returns a reporter writing to w in format "text" or "json".
// Text output is colourised when w is a terminal.
func NewReporter(w io.Writer, format string) *Reporter {
	if format != "json" {
		format = "text"
	}
	r := &Reporter{
		w:      w,
		format: format,
		labels: map[Severity]*color.Color{
			SeverityError:   color.New(color.FgRed, color.Bold),
			SeverityWarning: color.New(color.FgYellow, color.Bold),
			SeverityNote:    color.New(color.FgCyan),
		},
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		r.colorize = true
	}
	return r
}

// SetColor forces colour on or off.
func (r *Reporter) SetColor(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.colorize = on
}

// Error reports an error at pos.
func (r *Reporter) Error(pos, msg string) { r.report(SeverityError, pos, msg) }

// Errorf reports an error without position.
func (r *Reporter) Errorf(format string, args ...any) {
	r.report(SeverityError, "", fmt.Sprintf(format, args...))
}

// Warning reports a warning at pos.
func (r *Reporter) Warning(pos, msg string) { r.report(SeverityWarning, pos, msg) }

// Note reports additional information at pos.
func (r *Reporter) Note(pos, msg string) { r.report(SeverityNote, pos, msg) }

// HasErrors reports whether any error was reported.
func (r *Reporter) HasErrors() bool {
	return r.ErrorCount() > 0
}

// ErrorCount returns the number of errors reported so far.
func (r *Reporter) ErrorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errors
}

// WarningCount returns the number of warnings reported so far.
func (r *Reporter) WarningCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.warnings
}

func (r *Reporter) report(sev Severity, pos, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch sev {
	case SeverityError:
		r.errors++
	case SeverityWarning:
		r.warnings++
	}
	if r.w == nil {
		return
	}
	if r.format == "json" {
		data, err := json.Marshal(Diagnostic{Severity: sev, Level: sev.String(), Pos: pos, Message: msg})
		if err != nil {
			return
		}
		fmt.Fprintf(r.w, "%s\n", data)
		return
	}
	label := sev.String()
	if r.colorize {
		c := r.labels[sev]
		c.EnableColor()
		label = c.Sprint(label)
	}
	if pos != "" {
		fmt.Fprintf(r.w, "%s: %s: %s\n", pos, label, msg)
		return
	}
	fmt.Fprintf(r.w, "%s: %s\n", label, msg)
}
