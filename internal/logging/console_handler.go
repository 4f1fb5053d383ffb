package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler writes a one-line header per record followed by one bullet
// per attribute:
//
//	2026-01-02 15:04:05 INFO [organizer] report.pdf (route) - file organized
//	    - Destination: /inbox/pdfs/Invoice/report.pdf
type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     *slog.LevelVar
	preset    []slog.Attr
	groups    []string
	addSource bool
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{mu: &sync.Mutex{}, w: w, level: lvl, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	if !h.Enabled(context.Background(), record.Level) {
		return nil
	}

	var fields fieldList
	for _, attr := range h.preset {
		fields.add(nil, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		fields.add(h.groups, attr)
		return true
	})

	header := recordHeader{level: record.Level, message: strings.TrimSpace(record.Message)}
	header.time = record.Time
	if header.time.IsZero() {
		header.time = time.Now()
	}
	if h.addSource {
		header.source = record.Source()
	}

	var buf bytes.Buffer
	var bullets bytes.Buffer
	for _, f := range fields.entries {
		switch f.key {
		case FieldComponent:
			header.component = plainValue(f.value)
			continue
		case FieldFile:
			header.file = plainValue(f.value)
			continue
		case FieldStage:
			header.stage = plainValue(f.value)
			continue
		}
		if hiddenAtLevel(record.Level, f) {
			continue
		}
		bullets.WriteString("    - ")
		bullets.WriteString(fieldLabel(f.key))
		bullets.WriteString(": ")
		bullets.WriteString(fieldValue(f.value))
		bullets.WriteByte('\n')
	}
	header.write(&buf)
	buf.Write(bullets.Bytes())

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

// hiddenAtLevel drops noise from info and above: correlation ids and blank values.
func hiddenAtLevel(level slog.Level, f field) bool {
	if level < slog.LevelInfo {
		return false
	}
	if f.key == FieldRunID {
		return true
	}
	v := strings.TrimSpace(plainValue(f.value))
	return v == "" || v == "<nil>"
}

type recordHeader struct {
	time      time.Time
	level     slog.Level
	component string
	file      string
	stage     string
	message   string
	source    *slog.Source
}

func (r recordHeader) write(buf *bytes.Buffer) {
	buf.WriteString(consoleTime(r.time))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(r.level))
	if r.component != "" {
		buf.WriteString(" [" + r.component + "]")
	}
	if subject := r.subject(); subject != "" {
		buf.WriteString(" " + subject)
	}
	message := r.message
	if message == "" {
		message = "(no message)"
	}
	buf.WriteString(" - " + message)
	if r.source != nil && r.source.File != "" {
		buf.WriteString(" [" + filepath.Base(r.source.File) + ":" + strconv.Itoa(r.source.Line) + "]")
	}
	buf.WriteByte('\n')
}

// subject names the file being processed and, when known, the pipeline stage.
func (r recordHeader) subject() string {
	file := strings.TrimSpace(r.file)
	stage := strings.TrimSpace(r.stage)
	switch {
	case file != "" && stage != "":
		return file + " (" + stage + ")"
	case file != "":
		return file
	default:
		return stage
	}
}

// fieldLabel turns "error_hint" into "Error hint".
func fieldLabel(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '_' || r == '.' })
	if len(words) == 0 {
		return key
	}
	if c := words[0][0]; c >= 'a' && c <= 'z' {
		words[0] = string(c-'a'+'A') + words[0][1:]
	}
	return strings.Join(words, " ")
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.preset = append(append([]slog.Attr(nil), h.preset...), qualify(h.groups, attrs)...)
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}

// qualify folds the open groups into attrs so presets keep their prefix.
func qualify(groups []string, attrs []slog.Attr) []slog.Attr {
	if len(groups) == 0 {
		return attrs
	}
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	grouped := slog.Group(groups[len(groups)-1], args...)
	for i := len(groups) - 2; i >= 0; i-- {
		grouped = slog.Group(groups[i], grouped)
	}
	return []slog.Attr{grouped}
}

type field struct {
	key   string
	value slog.Value
}

// fieldList flattens groups into dotted keys; a repeated key keeps its first
// position and its last value.
type fieldList struct {
	entries []field
	index   map[string]int
}

func (l *fieldList) add(prefix []string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		next := prefix
		if attr.Key != "" {
			next = append(append([]string(nil), prefix...), attr.Key)
		}
		for _, member := range value.Group() {
			l.add(next, member)
		}
		return
	}
	key := strings.Join(append(append([]string(nil), prefix...), attr.Key), ".")
	key = strings.Trim(key, ".")
	if key == "" {
		return
	}
	if l.index == nil {
		l.index = make(map[string]int)
	}
	if pos, ok := l.index[key]; ok {
		l.entries[pos].value = value
		return
	}
	l.index[key] = len(l.entries)
	l.entries = append(l.entries, field{key: key, value: value})
}
