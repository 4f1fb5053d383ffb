package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"fastfox/internal/textutil"
)

const (
	consoleTimeLayout = "2006-01-02 15:04:05"
	// maxConsoleValue bounds attribute values such as extracted text on the console.
	maxConsoleValue = 160
)

func consoleTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Local().Format(consoleTimeLayout)
}

// plainValue renders v without quoting, for header slots.
func plainValue(v slog.Value) string {
	v = v.Resolve()
	if v.Kind() == slog.KindString {
		return v.String()
	}
	if v.Kind() == slog.KindAny {
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
	}
	return fieldValue(v)
}

// fieldValue renders v for a bullet line, quoting strings that would be
// ambiguous and shortening long ones.
func fieldValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return consoleTime(v.Time())
	case slog.KindString:
		return quoteIfNeeded(v.String())
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return quoteIfNeeded(err.Error())
		}
		return quoteIfNeeded(fmt.Sprint(v.Any()))
	default:
		return quoteIfNeeded(v.String())
	}
}

func quoteIfNeeded(s string) string {
	if len(s) > maxConsoleValue {
		if short := textutil.Truncate(s, maxConsoleValue); short != s {
			s = short + "..."
		}
	}
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}
