package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const consoleTimeLayout = "2006-01-02 15:04:05"

// consoleHandler writes one human-readable line per record:
//
//	2024-01-01 07:00:00 INFO cohort: level mailed run_id=abc level=2
type consoleHandler struct {
	mu        *sync.Mutex
	out       io.Writer
	level     slog.Leveler
	loc       *time.Location
	addSource bool
	prefix    []string
	attrs     []field
}

type field struct {
	key   string
	value slog.Value
}

func newConsoleHandler(out io.Writer, level slog.Leveler, loc *time.Location, addSource bool) *consoleHandler {
	if loc == nil {
		loc = time.Local
	}
	return &consoleHandler{mu: &sync.Mutex{}, out: out, level: level, loc: loc, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	if !h.Enabled(context.Background(), r.Level) {
		return nil
	}

	fields := make([]field, 0, len(h.attrs)+r.NumAttrs())
	fields = append(fields, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		fields = appendField(fields, h.prefix, a)
		return true
	})

	component := ""
	kept := fields[:0]
	for _, f := range fields {
		if f.key == FieldComponent {
			if component == "" {
				component, _ = plainText(f.value)
			}
			continue
		}
		kept = append(kept, f)
	}

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var line bytes.Buffer
	line.Grow(96 + 24*len(kept))
	fmt.Fprintf(&line, "%s %s ", ts.In(h.loc).Format(consoleTimeLayout), levelName(r.Level))
	if component != "" {
		line.WriteString(component + ": ")
	}
	msg := strings.TrimSpace(r.Message)
	if msg == "" {
		msg = "(no message)"
	}
	line.WriteString(msg)

	if h.addSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			fmt.Fprintf(&line, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	for _, f := range kept {
		if f.key == "" {
			continue
		}
		line.WriteString(" " + f.key + "=" + h.render(f.value))
	}
	line.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(line.Bytes())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.derive()
	for _, a := range attrs {
		next.attrs = appendField(next.attrs, next.prefix, a)
	}
	return next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.derive()
	next.prefix = append(next.prefix, name)
	return next
}

func (h *consoleHandler) derive() *consoleHandler {
	next := *h
	next.prefix = append([]string(nil), h.prefix...)
	next.attrs = append([]field(nil), h.attrs...)
	return &next
}

// appendField flattens groups into dotted keys.
func appendField(dst []field, prefix []string, a slog.Attr) []field {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}
	if a.Value.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner = append(append([]string(nil), prefix...), a.Key)
		}
		for _, member := range a.Value.Group() {
			dst = appendField(dst, inner, member)
		}
		return dst
	}
	key := a.Key
	switch {
	case len(prefix) > 0 && key != "":
		key = strings.Join(prefix, ".") + "." + key
	case len(prefix) > 0:
		key = strings.Join(prefix, ".")
	}
	return append(dst, field{key: key, value: a.Value})
}

// render formats a value for key=value output, quoting text that would
// otherwise split the field.
func (h *consoleHandler) render(v slog.Value) string {
	if v.Kind() == slog.KindTime {
		t := v.Time()
		if t.IsZero() {
			return `""`
		}
		return strconv.Quote(t.In(h.loc).Format(consoleTimeLayout))
	}
	text, quotable := plainText(v)
	if quotable && needsQuoting(text) {
		return strconv.Quote(text)
	}
	return text
}

// plainText returns the unquoted text of v and whether it may need quoting.
func plainText(v slog.Value) (string, bool) {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindBool:
		return strconv.FormatBool(v.Bool()), false
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10), false
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10), false
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64), false
	case slog.KindDuration:
		return v.Duration().String(), false
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error(), true
		}
		return fmt.Sprint(v.Any()), true
	default:
		return v.String(), true
	}
}

func needsQuoting(s string) bool {
	return s == "" || strings.ContainsFunc(s, func(r rune) bool {
		return r <= ' ' || r == '=' || r == '"'
	})
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}
