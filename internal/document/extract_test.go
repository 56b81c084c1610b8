package document

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gomutex/godocx"

	"github.com/abhirajadhikary06/voiceurresume/internal/errkind"
	"github.com/abhirajadhikary06/voiceurresume/internal/models"
)

type fakePages struct {
	texts []string
	fail  map[int]bool
}

func (f *fakePages) NumPage() int { return len(f.texts) }

func (f *fakePages) PageText(i int) (string, error) {
	if f.fail[i] {
		return "", errors.New("no text layer")
	}
	return f.texts[i-1], nil
}

func TestExtractPDFConcatenatesPagesInOrder(t *testing.T) {
	tests := []struct {
		name  string
		pages *fakePages
		want  string
	}{
		{
			name:  "all pages",
			pages: &fakePages{texts: []string{"Experienced ", "engineer ", "with Go."}},
			want:  "Experienced engineer with Go.",
		},
		{
			name:  "unextractable page contributes empty string",
			pages: &fakePages{texts: []string{"one ", "IGNORED", "three"}, fail: map[int]bool{2: true}},
			want:  "one three",
		},
		{
			name:  "no pages",
			pages: &fakePages{},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &implExtractor{openPDF: func([]byte) (pageSource, error) { return tt.pages, nil }}
			got, err := e.Extract(models.SourceDocument{Format: models.FormatPDF})
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractPDFMalformed(t *testing.T) {
	_, err := New().Extract(models.SourceDocument{Format: models.FormatPDF, Data: []byte("%PDF-1.4 garbage")})
	if !errors.Is(err, errkind.ErrIO) {
		t.Fatalf("Extract() error = %v, want IOError", err)
	}
}

func writeDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(documentPart)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtractDOCXJoinsParagraphs(t *testing.T) {
	xmlDoc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">Senior </w:t></w:r><w:r><w:t>Engineer</w:t></w:r></w:p>
    <w:p/>
    <w:p><w:r><w:t>Go</w:t><w:tab/><w:t>Kubernetes</w:t></w:r></w:p>
    <w:sectPr/>
  </w:body>
</w:document>`

	got, err := New().Extract(models.SourceDocument{Format: models.FormatDOCX, Data: writeDocx(t, xmlDoc)})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := "Jane Doe\nSenior Engineer\n\nGo\tKubernetes"
	if got != want {
		t.Errorf("Extract() = %q, want %q", got, want)
	}
}

func TestExtractDOCXSkipsTableParagraphs(t *testing.T) {
	xmlDoc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <w:body>
    <w:p><w:r><w:t>Intro</w:t></w:r></w:p>
    <w:tbl>
      <w:tr><w:tc><w:p><w:r><w:t>Cell</w:t></w:r></w:p></w:tc></w:tr>
    </w:tbl>
    <w:p><w:r><w:t xml:space="preserve">Profile: </w:t></w:r><w:hyperlink r:id="rId5"><w:r><w:t>github.com/jane</w:t></w:r></w:hyperlink></w:p>
    <w:p><w:r><w:t>Outro</w:t></w:r></w:p>
  </w:body>
</w:document>`

	got, err := New().Extract(models.SourceDocument{Format: models.FormatDOCX, Data: writeDocx(t, xmlDoc)})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := "Intro\nProfile: github.com/jane\nOutro"
	if got != want {
		t.Errorf("Extract() = %q, want %q", got, want)
	}
}

func TestExtractDOCXFromGodocx(t *testing.T) {
	doc, err := godocx.NewDocument()
	if err != nil {
		t.Fatal(err)
	}
	doc.AddParagraph("Experienced engineer")
	doc.AddParagraph("Ten years of backend work")

	path := filepath.Join(t.TempDir(), "resume.docx")
	if err := doc.SaveTo(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	got, err := New().Extract(models.SourceDocument{Format: models.FormatDOCX, Data: data})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(got, "Experienced engineer\nTen years of backend work") {
		t.Errorf("Extract() = %q, want paragraphs joined by newline", got)
	}
}

func TestExtractDOCXMissingPart(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, err := zw.Create("other.xml"); err != nil {
		t.Fatal(err)
	}
	zw.Close()

	_, err := New().Extract(models.SourceDocument{Format: models.FormatDOCX, Data: buf.Bytes()})
	if !errors.Is(err, errkind.ErrIO) {
		t.Fatalf("Extract() error = %v, want IOError", err)
	}
}

func TestExtractUnsupportedFormat(t *testing.T) {
	_, err := New().Extract(models.SourceDocument{Format: "odt"})
	if !errors.Is(err, errkind.ErrUnsupportedFormat) {
		t.Fatalf("Extract() error = %v, want UnsupportedFormat", err)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		data    []byte
		want    models.Format
		wantErr bool
	}{
		{"pdf", "resume.PDF", []byte("%PDF-1.7\n..."), models.FormatPDF, false},
		{"docx", "resume.docx", []byte("PK\x03\x04rest"), models.FormatDOCX, false},
		{"pdf extension with zip body", "resume.pdf", []byte("PK\x03\x04"), "", true},
		{"txt", "resume.txt", []byte("hello"), "", true},
		{"doc", "resume.doc", []byte{0xD0, 0xCF, 0x11, 0xE0}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.file, tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DetectFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errkind.ErrUnsupportedFormat) {
				t.Errorf("error %v should be UnsupportedFormat", err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}
