package tmplsimp

import (
	"fmt"
	"io"
)

// Severity mirrors the error-reporting collaborator's contract from
// spec.md §6: the core only ever emits at severity Debug, but the
// interface is shaped the way the rest of ralph-cc's eventual symbol
// table / bug checkers would call it, so a Logger plugged in here can be
// the same one they use.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityStyle
	SeverityPerformance
	SeverityPortability
	SeverityInformation
	SeverityDebug
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityStyle:
		return "style"
	case SeverityPerformance:
		return "performance"
	case SeverityPortability:
		return "portability"
	case SeverityInformation:
		return "information"
	case SeverityDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// Logger is the external diagnostics collaborator. The simplification
// core only calls ReportErr for debug-level messages (mismatched
// argument counts, bail-outs, propagated math errors); error reporting
// proper belongs to the checkers that consume the simplified stream.
type Logger interface {
	ReportErr(severity Severity, id, message string, callstack []*Token)
}

// NopLogger discards every message. NewSimplifier uses it when it is
// given a nil Logger, matching how a library call with no supplied
// collaborator should still be safe to invoke.
type NopLogger struct{}

func (NopLogger) ReportErr(Severity, string, string, []*Token) {}

// WriterLogger formats messages to an io.Writer, the way
// cmd/ralph-cc/main.go's checkDebugFlags writes warnings straight to
// os.Stderr.
type WriterLogger struct {
	W io.Writer
}

func (wl WriterLogger) ReportErr(severity Severity, id, message string, callstack []*Token) {
	loc := ""
	if len(callstack) > 0 && callstack[0] != nil {
		loc = fmt.Sprintf("%d: ", callstack[0].Linenr)
	}
	fmt.Fprintf(wl.W, "ralph-cc: (%s) %s%s [%s]\n", severity, loc, message, id)
}
