package router

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"syscall"
	"testing"

	"github.com/google/go-cmp/cmp"

	"fastfox/internal/fileutil"
	"fastfox/internal/filetype"
	"fastfox/internal/services"
	"fastfox/internal/testsupport"
)

func newRouter(t *testing.T, policy string) (*Router, string) {
	t.Helper()
	root := t.TempDir()
	r, err := New(root, policy, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return r, root
}

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	testsupport.WriteBytes(t, path, []byte(content))
	return path
}

func hash(t *testing.T, path string) []byte {
	t.Helper()
	sum, err := fileutil.HashFile(path)
	if err != nil {
		t.Fatalf("hash %s: %v", path, err)
	}
	return sum
}

func TestRouteMovesIntoLabelDirectory(t *testing.T) {
	r, root := newRouter(t, "")
	src := writeSource(t, "report.pdf", "pdf bytes")

	res, err := r.Route(context.Background(), Decision{Source: src, Category: filetype.PDF, Label: "Invoice"})
	if err != nil {
		t.Fatalf("Route returned error: %v", err)
	}
	want := filepath.Join(root, "pdfs", "Invoice", "report.pdf")
	if res.Destination != want || res.Renamed || res.Copied {
		t.Fatalf("unexpected result %+v", res)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected source removed, got %v", err)
	}
	data, err := os.ReadFile(want)
	if err != nil || string(data) != "pdf bytes" {
		t.Fatalf("unexpected destination content %q (%v)", data, err)
	}
}

func TestEnsureDirIsIdempotent(t *testing.T) {
	r, root := newRouter(t, "")
	for i := 0; i < 2; i++ {
		dir, err := r.EnsureDir(filetype.CSV, "Sales")
		if err != nil {
			t.Fatalf("EnsureDir #%d returned error: %v", i+1, err)
		}
		if dir != filepath.Join(root, "csvs", "Sales") {
			t.Fatalf("unexpected dir %q", dir)
		}
	}
	entries, err := os.ReadDir(filepath.Join(root, "csvs"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "Sales" || !entries[0].IsDir() {
		t.Fatalf("expected exactly one label directory, got %v", entries)
	}
}

func TestCollisionRenamePreservesExistingFile(t *testing.T) {
	r, root := newRouter(t, PolicyRename)
	first := writeSource(t, "report.pdf", "first")
	second := writeSource(t, "report.pdf", "second")
	third := writeSource(t, "report.pdf", "third")

	res1, err := r.Route(context.Background(), Decision{Source: first, Category: filetype.PDF, Label: "Invoice"})
	if err != nil {
		t.Fatalf("first Route: %v", err)
	}
	before := hash(t, res1.Destination)

	res2, err := r.Route(context.Background(), Decision{Source: second, Category: filetype.PDF, Label: "Invoice"})
	if err != nil {
		t.Fatalf("second Route: %v", err)
	}
	res3, err := r.Route(context.Background(), Decision{Source: third, Category: filetype.PDF, Label: "Invoice"})
	if err != nil {
		t.Fatalf("third Route: %v", err)
	}

	dir := filepath.Join(root, "pdfs", "Invoice")
	if res2.Destination != filepath.Join(dir, "report-1.pdf") || !res2.Renamed {
		t.Fatalf("unexpected second result %+v", res2)
	}
	if res3.Destination != filepath.Join(dir, "report-2.pdf") {
		t.Fatalf("unexpected third result %+v", res3)
	}
	if after := hash(t, res1.Destination); !bytes.Equal(before, after) {
		t.Fatal("first file content changed after collisions")
	}
	data, _ := os.ReadFile(res2.Destination)
	if string(data) != "second" {
		t.Fatalf("renamed file has content %q", data)
	}
}

func TestCollisionRejectKeepsBothFiles(t *testing.T) {
	r, root := newRouter(t, PolicyReject)
	first := writeSource(t, "notes.docx", "first")
	second := writeSource(t, "notes.docx", "second")

	if _, err := r.Route(context.Background(), Decision{Source: first, Category: filetype.Document, Label: "Lease"}); err != nil {
		t.Fatalf("first Route: %v", err)
	}
	dest := filepath.Join(root, "docs", "Lease", "notes.docx")
	before := hash(t, dest)

	_, err := r.Route(context.Background(), Decision{Source: second, Category: filetype.Document, Label: "Lease"})
	if !errors.Is(err, services.ErrRoute) || !errors.Is(err, ErrCollision) {
		t.Fatalf("expected route collision error, got %v", err)
	}
	if after := hash(t, dest); !bytes.Equal(before, after) {
		t.Fatal("existing destination was overwritten")
	}
	if _, err := os.Stat(second); err != nil {
		t.Fatalf("expected rejected source left in place: %v", err)
	}
}

func TestOtherCategoryIgnoresLabel(t *testing.T) {
	r, root := newRouter(t, "")
	src := writeSource(t, "data.xyz", "x")
	res, err := r.Route(context.Background(), Decision{Source: src, Category: filetype.Other, Label: "ignored"})
	if err != nil {
		t.Fatalf("Route returned error: %v", err)
	}
	if res.Destination != filepath.Join(root, "other_files", "data.xyz") {
		t.Fatalf("unexpected destination %q", res.Destination)
	}
}

func TestInvalidLabelsRejected(t *testing.T) {
	r, _ := newRouter(t, "")
	for _, label := range []string{"", "  ", ".", "..", "a/b", `a\b`} {
		_, err := r.Plan(Decision{Source: "x.pdf", Category: filetype.PDF, Label: label})
		if !errors.Is(err, services.ErrRoute) {
			t.Errorf("label %q: expected route error, got %v", label, err)
		}
	}
}

func TestPlanDoesNotTouchFilesystem(t *testing.T) {
	r, root := newRouter(t, "")
	got, err := r.Plan(Decision{Source: "/in/report.pdf", Category: filetype.PDF, Label: "Invoice"})
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if got != filepath.Join(root, "pdfs", "Invoice", "report.pdf") {
		t.Fatalf("unexpected plan %q", got)
	}
	if _, err := os.Stat(filepath.Join(root, "pdfs")); !os.IsNotExist(err) {
		t.Fatalf("expected no directories created, got %v", err)
	}
}

func TestMissingSourceIsRouteError(t *testing.T) {
	r, _ := newRouter(t, "")
	_, err := r.Route(context.Background(), Decision{Source: filepath.Join(t.TempDir(), "gone.pdf"), Category: filetype.PDF, Label: "X"})
	if !errors.Is(err, services.ErrRoute) {
		t.Fatalf("expected route error, got %v", err)
	}
}

func exdev(src, dst string) error {
	return &os.LinkError{Op: "rename", Old: src, New: dst, Err: syscall.EXDEV}
}

func TestCrossDeviceMoveCopiesAndRemovesSource(t *testing.T) {
	r, root := newRouter(t, "")
	r.rename = exdev
	src := writeSource(t, "scan.png", "pixels")
	want := hash(t, src)

	res, err := r.Route(context.Background(), Decision{Source: src, Category: filetype.Image, Label: "Cat"})
	if err != nil {
		t.Fatalf("Route returned error: %v", err)
	}
	if !res.Copied || res.Destination != filepath.Join(root, "images", "Cat", "scan.png") {
		t.Fatalf("unexpected result %+v", res)
	}
	if got := hash(t, res.Destination); !bytes.Equal(want, got) {
		t.Fatal("copied content differs")
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected source removed, got %v", err)
	}
}

func TestCrossDeviceCollisionStillRenames(t *testing.T) {
	r, root := newRouter(t, "")
	r.rename = exdev
	existing := filepath.Join(root, "images", "Cat", "scan.png")
	testsupport.WriteBytes(t, existing, []byte("original"))
	src := writeSource(t, "scan.png", "newer")

	res, err := r.Route(context.Background(), Decision{Source: src, Category: filetype.Image, Label: "Cat"})
	if err != nil {
		t.Fatalf("Route returned error: %v", err)
	}
	if res.Destination != filepath.Join(root, "images", "Cat", "scan-1.png") {
		t.Fatalf("unexpected destination %q", res.Destination)
	}
	data, _ := os.ReadFile(existing)
	if string(data) != "original" {
		t.Fatalf("existing file overwritten: %q", data)
	}
}

func TestCrossDeviceCopyFailure(t *testing.T) {
	r, _ := newRouter(t, "")
	r.rename = exdev
	_, err := r.Route(context.Background(), Decision{Source: filepath.Join(t.TempDir(), "missing.png"), Category: filetype.Image, Label: "Cat"})
	if !errors.Is(err, services.ErrRoute) || !errors.Is(err, ErrCrossDevice) {
		t.Fatalf("expected cross-device route error, got %v", err)
	}
}

func TestConcurrentRoutesToSameLabel(t *testing.T) {
	r, root := newRouter(t, PolicyRename)
	const workers = 12
	srcs := make([]string, workers)
	for i := range srcs {
		srcs[i] = writeSource(t, "report.pdf", fmt.Sprintf("copy %d", i))
	}

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for _, src := range srcs {
		wg.Add(1)
		go func(src string) {
			defer wg.Done()
			_, err := r.Route(context.Background(), Decision{Source: src, Category: filetype.PDF, Label: "Invoice"})
			errs <- err
		}(src)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent Route returned error: %v", err)
		}
	}

	entries, err := os.ReadDir(filepath.Join(root, "pdfs", "Invoice"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var names []string
	contents := make(map[string]bool)
	for _, e := range entries {
		names = append(names, e.Name())
		data, _ := os.ReadFile(filepath.Join(root, "pdfs", "Invoice", e.Name()))
		contents[string(data)] = true
	}
	sort.Strings(names)
	want := []string{"report.pdf"}
	for i := 1; i < workers; i++ {
		want = append(want, fmt.Sprintf("report-%d.pdf", i))
	}
	sort.Strings(want)
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("unexpected files (-want +got):\n%s", diff)
	}
	if len(contents) != workers {
		t.Fatalf("expected %d distinct contents, got %d", workers, len(contents))
	}
	if n := r.locks.size(); n != 0 {
		t.Fatalf("expected lock table drained, got %d entries", n)
	}
}

func TestNewRejectsUnknownPolicy(t *testing.T) {
	if _, err := New(t.TempDir(), "overwrite", nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
