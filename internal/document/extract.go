// Package document extracts plain text from uploaded job descriptions.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// ErrUnsupportedFormat is returned for anything other than text, PDF or DOCX.
var ErrUnsupportedFormat = errors.New("document: unsupported format")

const (
	MimeText = "text/plain"
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// MaxUploadSize bounds accepted uploads.
const MaxUploadSize = 10 << 20

// ExtractText returns the text of the upload. contentType wins over the file
// extension; when neither is conclusive the bytes are sniffed.
func ExtractText(name, contentType string, data []byte) (string, error) {
	switch Detect(name, contentType, data) {
	case MimeText:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: text is not valid UTF-8", ErrUnsupportedFormat)
		}
		return strings.TrimSpace(string(data)), nil
	case MimePDF:
		return extractPDFText(data)
	case MimeDOCX:
		return extractDocxText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, contentType)
	}
}

// Detect resolves the upload to one of the supported MIME types, or "".
func Detect(name, contentType string, data []byte) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mt {
		case MimeText, "text/markdown":
			return MimeText
		case MimePDF, MimeDOCX:
			return mt
		}
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		return MimeText
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	}

	sniffed := http.DetectContentType(data)
	switch {
	case strings.HasPrefix(sniffed, "text/plain"):
		return MimeText
	case sniffed == MimePDF:
		return MimePDF
	}
	return ""
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("document: read pdf: %w", err)
	}
	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String()), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("document: parse docx: %w", err)
	}
	defer doc.Close()
	return StripXML(doc.Editable().GetContent()), nil
}

var (
	paragraphEnd = regexp.MustCompile(`</w:p>|<w:br/>|<w:tab/>`)
	xmlTag       = regexp.MustCompile(`<[^>]*>`)
	blankRun     = regexp.MustCompile(`[ \t]*\n[\s]*`)
)

// StripXML reduces WordprocessingML to plain text, one paragraph per line.
func StripXML(content string) string {
	text := paragraphEnd.ReplaceAllString(content, "\n")
	text = xmlTag.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	text = blankRun.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}
