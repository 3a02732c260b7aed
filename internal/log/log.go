package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
)

// enabledSections are the sections whose records below slog.LevelWarn get printed
var enabledSections = []string{
	"unify",
	"cast",
	"registry",
	"compile",
	"backend",
	"config",
}

var level = new(slog.LevelVar)

var LoggerOpts = &slog.HandlerOptions{
	AddSource: false,
	Level:     level,
	ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == "time" {
			return slog.Attr{}
		}
		return a
	},
}

var DefaultLogger = New(os.Stderr)

func init() {
	level.Set(slog.LevelError)
}

// SetLevel changes the level of every logger created by this package
func SetLevel(l slog.Level) {
	level.Set(l)
}

// New returns a section-filtering logger writing text records to w
func New(w io.Writer) *slog.Logger {
	return slog.New(&filteringHandler{underlying: slog.NewTextHandler(w, LoggerOpts)})
}

// Section is a shorthand for DefaultLogger.With("section", name)
func Section(name string) *slog.Logger {
	return DefaultLogger.With("section", name)
}

var _ slog.Handler = &filteringHandler{}

type filteringHandler struct {
	underlying slog.Handler
	// sections holds the enabled sections set through WithAttrs
	sections []string
}

func isEnabledSection(attr slog.Attr) bool {
	return attr.Key == "section" && slices.ContainsFunc(enabledSections, func(section string) bool {
		return strings.HasPrefix(attr.Value.String(), section)
	})
}

func (f *filteringHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return f.underlying.Enabled(ctx, level)
}

func (f *filteringHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level >= slog.LevelWarn || len(f.sections) > 0 {
		return f.underlying.Handle(ctx, record)
	}
	wantSection := false
	record.Attrs(func(attr slog.Attr) bool {
		wantSection = isEnabledSection(attr)
		// iterate as long as we have not found our section
		return !wantSection
	})
	if !wantSection {
		return nil
	}
	return f.underlying.Handle(ctx, record)
}

func (f *filteringHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sections := slices.Clone(f.sections)
	for _, attr := range attrs {
		if isEnabledSection(attr) {
			sections = append(sections, attr.Value.String())
		}
	}
	return &filteringHandler{
		underlying: f.underlying.WithAttrs(attrs),
		sections:   sections,
	}
}

func (f *filteringHandler) WithGroup(name string) slog.Handler {
	return &filteringHandler{
		underlying: f.underlying.WithGroup(name),
		sections:   f.sections,
	}
}
