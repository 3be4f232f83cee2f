/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log provides the process-wide slog logger. Every record carries the
// app name and version; packages derive component loggers with WithComponent.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	lj "gopkg.in/natefinch/lumberjack.v2"

	"pagecomposer/internal/version"
)

// AppName is the value of the static "app" attribute.
const AppName = "pagecomposer"

// Options controls logger initialization. FromEnv reads them from
//   - PGC_LOG_LEVEL=debug|info|warn|error
//   - PGC_LOG_FORMAT=console|json
//   - PGC_LOG_SOURCE=true|false
//   - PGC_LOG_FILE=<path> (JSON, rotated by lumberjack)
//
// Output defaults to stderr.
type Options struct {
	Level     string
	Format    string // "console" or "json"
	AddSource bool
	File      string
	Output    io.Writer
}

var (
	mu      sync.RWMutex
	current *slog.Logger
	closer  io.Closer
)

// L returns the application logger, initializing it from the environment on first use.
func L() *slog.Logger {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init(FromEnv())
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Init replaces the global logger and slog.Default. A previously opened log file
// is closed.
func Init(opts Options) {
	lvl := ParseLevel(opts.Level)
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	var console slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		console = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource})
	} else {
		console = &lineHandler{level: lvl, source: opts.AddSource, w: out, mu: &sync.Mutex{}}
	}
	handlers := []slog.Handler{console}

	var file *lj.Logger
	if path := strings.TrimSpace(opts.File); path != "" {
		file = &lj.Logger{Filename: path, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		handlers = append(handlers, slog.NewJSONHandler(file, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}))
	}

	h := handlers[0]
	if len(handlers) > 1 {
		h = fanout(handlers)
	}
	l := slog.New(h).With(
		slog.String("app", AppName),
		slog.String("ver", version.Version),
	)

	mu.Lock()
	prev := closer
	current = l
	closer = nil
	if file != nil {
		closer = file
	}
	mu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
	slog.SetDefault(l)
}

// Close flushes and closes the rotating log file, if any.
func Close() error {
	mu.Lock()
	c := closer
	closer = nil
	mu.Unlock()
	if c == nil {
		return nil
	}
	return c.Close()
}

func FromEnv() Options {
	return Options{
		Level:     getenv("PGC_LOG_LEVEL", "info"),
		Format:    getenv("PGC_LOG_FORMAT", "console"),
		AddSource: strings.EqualFold(getenv("PGC_LOG_SOURCE", "false"), "true"),
		File:      os.Getenv("PGC_LOG_FILE"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// WithComponent returns a logger with the component attribute pre-set.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation annotates the logger with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

// ParseLevel maps a level name to a slog level; unknown names mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// lineHandler writes compact one-line records for the terminal:
//
//	15:04:05.000 INF msg key=val group.key=val
type lineHandler struct {
	level  slog.Leveler
	source bool
	w      io.Writer
	mu     *sync.Mutex

	prefix string // rendered handler attrs
	group  string // dotted group path
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *lineHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	b.WriteString(ts.Format("15:04:05.000"))
	b.WriteByte(' ')
	b.WriteString(levelTag(r.Level))
	b.WriteByte(' ')
	b.WriteString(r.Message)
	b.WriteString(h.prefix)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, h.group, a)
		return true
	})
	if h.source && r.PC != 0 {
		f, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		b.WriteString(" src=")
		b.WriteString(f.File)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(f.Line))
	}
	b.WriteByte('\n')
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(h.prefix)
	for _, a := range attrs {
		appendAttr(&b, h.group, a)
	}
	n := *h
	n.prefix = b.String()
	return &n
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	n := *h
	n.group = joinKey(h.group, name)
	return &n
}

func appendAttr(b *strings.Builder, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		g := joinKey(group, a.Key)
		for _, ga := range a.Value.Group() {
			appendAttr(b, g, ga)
		}
		return
	}
	b.WriteByte(' ')
	b.WriteString(joinKey(group, a.Key))
	b.WriteByte('=')
	b.WriteString(formatValue(a.Value))
}

func joinKey(group, key string) string {
	if group == "" {
		return key
	}
	if key == "" {
		return group
	}
	return group + "." + key
}

func levelTag(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return "DBG"
	case l < slog.LevelWarn:
		return "INF"
	case l < slog.LevelError:
		return "WRN"
	default:
		return "ERR"
	}
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " =\"") {
			return strconv.Quote(s)
		}
		return s
	default:
		return v.String()
	}
}
