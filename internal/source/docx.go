package source

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// ParseDocx extracts plain text from a .docx file. A docx is a zip archive;
// the body lives in word/document.xml as runs of <w:t> text inside <w:p>
// paragraphs (table cells hold their own paragraphs, so tables come through
// as lines too).
func ParseDocx(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", eris.Wrap(err, "docx: open archive")
	}
	defer r.Close() //nolint:errcheck

	var doc *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", eris.New("docx: word/document.xml not found")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", eris.Wrap(err, "docx: open document.xml")
	}
	defer rc.Close() //nolint:errcheck

	text, err := documentText(rc)
	if err != nil {
		return "", eris.Wrap(err, "docx: decode document.xml")
	}
	return text, nil
}

// documentText walks the WordprocessingML token stream, collecting text runs
// and terminating lines at paragraph ends.
func documentText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		b      strings.Builder
		line   strings.Builder
		inText bool
	)

	flush := func() {
		if s := strings.TrimSpace(line.String()); s != "" {
			b.WriteString(s)
			b.WriteString("\n\n")
		}
		line.Reset()
	}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				flush()
			}
		case xml.CharData:
			if inText {
				line.Write(el)
			}
		}
	}
	flush()

	return strings.TrimSpace(b.String()), nil
}
