package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestTeeHandlerCollapsesTrivialSets(t *testing.T) {
	if _, ok := TeeHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler for all nil handlers")
	}
	inner := slog.NewJSONHandler(&bytes.Buffer{}, nil)
	if h := TeeHandler(nil, inner, nil); h != inner {
		t.Fatal("expected single non-nil handler to be returned unwrapped")
	}
}

func TestTeeHandlerRoutesByLevel(t *testing.T) {
	var consoleBuf, fileBuf bytes.Buffer
	console := slog.NewJSONHandler(&consoleBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	file := slog.NewJSONHandler(&fileBuf, &slog.HandlerOptions{Level: slog.LevelDebug})
	h := TeeHandler(console, file)

	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected tee enabled for debug when any member accepts it")
	}

	logger := slog.New(h)
	logger.Debug("prompt built", slog.Int("chars", 1000))
	if consoleBuf.Len() != 0 {
		t.Fatalf("info handler should not receive debug records, got %s", consoleBuf.String())
	}
	if fileBuf.Len() == 0 {
		t.Fatal("debug handler should receive debug records")
	}

	consoleBuf.Reset()
	fileBuf.Reset()
	logger.Info("file organized", slog.String("label", "Invoice"))
	for name, buf := range map[string]*bytes.Buffer{"console": &consoleBuf, "file": &fileBuf} {
		if !bytes.Contains(buf.Bytes(), []byte(`"label":"Invoice"`)) {
			t.Fatalf("%s output missing attribute: %s", name, buf.String())
		}
	}
}

func TestTeeHandlerWithAttrsAndGroup(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h := TeeHandler(slog.NewJSONHandler(&buf1, nil), slog.NewJSONHandler(&buf2, nil))

	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String(FieldRunID, "run-1")}).WithGroup("route"))
	logger.Info("test", slog.String("destination", "pdfs/Invoice"))

	for _, buf := range []*bytes.Buffer{&buf1, &buf2} {
		if !bytes.Contains(buf.Bytes(), []byte(`"run_id":"run-1"`)) {
			t.Fatalf("expected run_id attribute, got %s", buf.String())
		}
		if !bytes.Contains(buf.Bytes(), []byte(`"route":{"destination":"pdfs/Invoice"}`)) {
			t.Fatalf("expected grouped attribute, got %s", buf.String())
		}
	}
}
