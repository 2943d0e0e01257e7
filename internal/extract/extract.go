package extract

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// FileType identifies a supported resume format.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeDOCX FileType = "docx"
	FileTypeTXT  FileType = "txt"
)

// Error reports a failed extraction with the underlying cause. Malformed
// documents surface here rather than crashing the caller.
type Error struct {
	FileType FileType
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", strings.ToUpper(string(e.FileType)), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Text extracts plain text from an in-memory payload of a known type.
// Blank output is not an error here; the upload pipeline enforces the
// non-blank post-condition.
func Text(data []byte, fileType FileType) (string, error) {
	switch fileType {
	case FileTypePDF:
		return extractPDF(data)
	case FileTypeDOCX:
		return extractDOCX(data)
	case FileTypeTXT:
		return extractTXT(data)
	default:
		return "", &Error{FileType: fileType, Err: fmt.Errorf("unsupported file type: %s", fileType)}
	}
}

// extractPDF pulls text from every page in document order. Pages with no
// extractable text contribute nothing.
func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &Error{FileType: FileTypePDF, Err: err}
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}

// extractDOCX reads the word/document.xml payload via the docx package and
// collects paragraph text in document order, skipping blank paragraphs.
func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &Error{FileType: FileTypeDOCX, Err: err}
	}
	defer doc.Close()

	paragraphs, err := docxParagraphs(doc.Editable().GetContent())
	if err != nil {
		return "", &Error{FileType: FileTypeDOCX, Err: err}
	}
	return strings.Join(paragraphs, "\n\n"), nil
}

// docxParagraphs walks WordprocessingML and groups character data by
// enclosing paragraph element.
func docxParagraphs(raw string) ([]string, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var paragraphs []string
	var current strings.Builder

	flush := func() {
		if strings.TrimSpace(current.String()) != "" {
			paragraphs = append(paragraphs, current.String())
		}
		current.Reset()
	}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.CharData:
			current.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" {
				flush()
			}
		}
	}
	flush()
	return paragraphs, nil
}

// txtEncodings is the ordered decode fallback chain for plain text after
// UTF-8. The terminal ISO 8859-1 entry accepts every byte value, so decoding
// always eventually succeeds.
var txtEncodings = []struct {
	name string
	enc  encoding.Encoding
}{
	{"gbk", simplifiedchinese.GBK},
	{"latin-1", charmap.ISO8859_1},
}

func extractTXT(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}

	for _, candidate := range txtEncodings {
		decoded, _, err := transform.Bytes(candidate.enc.NewDecoder(), data)
		if err != nil || !cleanDecode(decoded) {
			continue
		}
		return string(decoded), nil
	}
	return "", &Error{FileType: FileTypeTXT, Err: errors.New("undecodable text file")}
}

// cleanDecode reports whether a decode produced no replacement runes, which
// the x/text decoders substitute instead of returning an error.
func cleanDecode(decoded []byte) bool {
	return !bytes.ContainsRune(decoded, utf8.RuneError)
}
