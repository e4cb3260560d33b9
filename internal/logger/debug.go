package logger

import "fmt"

// Debug is the search engine's injected logger collaborator
// (tradecalc.Logger). A nil *Debug is valid and produces no output.
type Debug struct {
	Tag string
	// Level gates which Debug0/1/2 calls print: -1 disables all of them,
	// 0 only Debug0, 1 Debug0+Debug1, 2 everything.
	Level int
}

// NewDebug returns a Debug logger tagged for a search run, at the given
// verbosity level.
func NewDebug(tag string, level int) *Debug {
	return &Debug{Tag: tag, Level: level}
}

func (d *Debug) at(n int, format string, args ...any) {
	if d == nil || d.Level < n {
		return
	}
	tag := d.Tag
	if tag == "" {
		tag = "search"
	}
	Info(tag, fmt.Sprintf(format, args...))
}

// Debug0 logs the coarsest tracing level.
func (d *Debug) Debug0(format string, args ...any) { d.at(0, format, args...) }

// Debug1 logs a finer tracing level.
func (d *Debug) Debug1(format string, args ...any) { d.at(1, format, args...) }

// Debug2 logs the finest tracing level.
func (d *Debug) Debug2(format string, args ...any) { d.at(2, format, args...) }
