package filetype

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestForPath(t *testing.T) {
	cases := map[string]Category{
		"photo.PNG":       Image,
		"scan.jpeg":       Image,
		"anim.gif":        Image,
		"report.pdf":      PDF,
		"budget.XLS":      Excel,
		"budget.xlsx":     Excel,
		"data.csv":        CSV,
		"letter.doc":      Document,
		"letter.DocX":     Document,
		"data.xyz":        Other,
		"README":          Other,
		"archive.tar.gz":  Other,
		"dir/sub/x.Jpg":   Image,
		".hidden":         Other,
		"notes.docx.bak":  Other,
		"trailing.dot.":   Other,
		"spaces in.pdf":   PDF,
		"upper.CSV":       CSV,
		"mixed.PdF":       PDF,
		"noext.":          Other,
		"image.webp":      Other,
		"sheet.xlsm":      Other,
		"legacy.DOC":      Document,
		"/abs/path/a.xls": Excel,
	}
	for path, want := range cases {
		if got := ForPath(path); got != want {
			t.Errorf("ForPath(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestFromExtensionAcceptsBareNames(t *testing.T) {
	if got := FromExtension("PDF"); got != PDF {
		t.Fatalf("FromExtension(PDF) = %v", got)
	}
}

func TestDirsAreFixed(t *testing.T) {
	var dirs []string
	for _, c := range All {
		dirs = append(dirs, c.Dir())
	}
	want := []string{"images", "pdfs", "excels", "csvs", "docs", "other_files"}
	if diff := cmp.Diff(want, dirs); diff != "" {
		t.Fatalf("category dirs mismatch (-want +got):\n%s", diff)
	}
	if Other.Labeled() || !PDF.Labeled() {
		t.Fatal("only Other should be unlabeled")
	}
}

func TestLegacy(t *testing.T) {
	if !Legacy("a.DOC") || !Legacy("b.xls") || Legacy("c.docx") || Legacy("d.xlsx") {
		t.Fatal("unexpected legacy classification")
	}
}
