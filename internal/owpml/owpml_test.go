package owpml

import (
	"archive/zip"
	"bytes"
	"testing"
)

func zipReader(t *testing.T, files map[string]string) *zip.Reader {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		w.Write([]byte(content))
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("reopen zip: %v", err)
	}
	return zr
}

func TestReadFileFromZip(t *testing.T) {
	zr := zipReader(t, map[string]string{"Contents/header.xml": "<head/>"})
	data, err := ReadFileFromZip(zr, "Contents/header.xml")
	if err != nil {
		t.Fatalf("ReadFileFromZip: %v", err)
	}
	if string(data) != "<head/>" {
		t.Errorf("content = %q", data)
	}
	if _, err := ReadFileFromZip(zr, "missing.xml"); err == nil {
		t.Error("missing file did not error")
	}
}

func TestSectionFiles(t *testing.T) {
	zr := zipReader(t, map[string]string{
		"Contents/section1.xml": "",
		"Contents/section0.xml": "",
		"Contents/header.xml":   "",
		"mimetype":              "",
	})
	got := SectionFiles(zr)
	want := []string{"Contents/section0.xml", "Contents/section1.xml"}
	if len(got) != len(want) {
		t.Fatalf("sections = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("section %d = %q, want %q", i, got[i], want[i])
		}
	}
}

// Some producers nest sections outside Contents/; the lenient fallback
// still finds them.
func TestSectionFilesFallback(t *testing.T) {
	zr := zipReader(t, map[string]string{
		"Body/Section0.xml": "",
		"settings.xml":      "",
	})
	got := SectionFiles(zr)
	if len(got) != 1 || got[0] != "Body/Section0.xml" {
		t.Errorf("sections = %v", got)
	}
}

func TestManifestFiles(t *testing.T) {
	zr := zipReader(t, map[string]string{
		"Contents/content.hpf": "",
		"Contents/header.xml":  "",
	})
	got := ManifestFiles(zr)
	if len(got) != 1 || got[0] != "Contents/content.hpf" {
		t.Errorf("manifests = %v", got)
	}
}
