package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/abhirajadhikary06/voiceurresume/internal/errkind"
)

const (
	wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	documentPart  = "word/document.xml"
)

// extractDOCX joins the text of each body-level w:p with newlines
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errkind.Wrap(errkind.ErrIO, "extract", "docx", "open container", err)
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return "", errkind.Wrap(errkind.ErrIO, "extract", "docx", documentPart+" missing", nil)
	}

	rc, err := part.Open()
	if err != nil {
		return "", errkind.Wrap(errkind.ErrIO, "extract", "docx", "open "+documentPart, err)
	}
	defer rc.Close()

	paragraphs, err := readParagraphs(rc)
	if err != nil {
		return "", errkind.Wrap(errkind.ErrIO, "extract", "docx", "parse "+documentPart, err)
	}
	return strings.Join(paragraphs, "\n"), nil
}

// readParagraphs returns the paragraphs that are direct children of w:body.
// Table cells and text boxes nest their own w:p and are left out; text
// nested inside a kept paragraph (hyperlinks, fields) is kept.
func readParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		depth      int
		bodyDepth  = -1
		paraDepth  = -1
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xml token: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if t.Name.Space != wordNamespace {
				continue
			}
			inPara := paraDepth >= 0
			switch t.Name.Local {
			case "body":
				if bodyDepth < 0 {
					bodyDepth = depth
				}
			case "p":
				if !inPara && bodyDepth >= 0 && depth == bodyDepth+1 {
					paraDepth = depth
					current.Reset()
				}
			case "t":
				inText = inPara
			case "tab":
				if inPara {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if inPara {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Space == wordNamespace {
				switch t.Name.Local {
				case "p":
					if depth == paraDepth {
						paragraphs = append(paragraphs, current.String())
						paraDepth = -1
					}
				case "t":
					inText = false
				case "body":
					if depth == bodyDepth {
						bodyDepth = -1
					}
				}
			}
			depth--
		case xml.CharData:
			if inText && paraDepth >= 0 {
				current.Write(t)
			}
		}
	}

	return paragraphs, nil
}
