package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"strings"

	"docanalyze/internal/helper"
	"docanalyze/internal/models"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/rs/zerolog/log"
)

var ErrUnsupportedFileType = errors.New("unsupported file type")

// FromFile normalizes an uploaded file into a Document. The content type is
// taken from the upload when it names a supported format, otherwise the file
// extension decides. Unsupported formats fail before any prompt request.
func FromFile(fileName, contentType string, data []byte) (*models.Document, error) {
	mimeType, err := resolveMimeType(fileName, contentType)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		FileName: fileName,
		MimeType: mimeType,
		DataURI:  helper.EncodeDataURI(mimeType, data),
	}

	switch mimeType {
	case models.MimeTXT:
		doc.Text = string(data)
		doc.Extraction = models.ExtractionSucceeded
	case models.MimeDOCX:
		text, err := extractDocxText(data)
		if err != nil {
			// Extraction failure is non-fatal: the document stays usable
			// through its data URI.
			log.Warn().Err(err).Str("file", fileName).Msg("docx text extraction failed")
			doc.Extraction = models.ExtractionFailed
			break
		}
		doc.Text = text
		doc.Extraction = models.ExtractionSucceeded
	case models.MimePDF:
		// PDFs are passed to the model as media, so no text extraction.
		pages, err := pdfPageCount(data)
		if err != nil {
			log.Warn().Err(err).Str("file", fileName).Msg("could not read pdf page count")
			break
		}
		doc.PageCount = pages
	}

	return doc, nil
}

func resolveMimeType(fileName, contentType string) (string, error) {
	ct, _, _ := strings.Cut(contentType, ";")
	switch strings.TrimSpace(ct) {
	case models.MimePDF, models.MimeDOCX, models.MimeTXT:
		return strings.TrimSpace(ct), nil
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return models.MimePDF, nil
	case ".docx":
		return models.MimeDOCX, nil
	case ".txt":
		return models.MimeTXT, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, fileName)
	}
}

func extractDocxText(data []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer r.Close()

	content := r.Editable().GetContent()
	return extractTextFromXML(content), nil
}

// extractTextFromXML pulls the text runs (<w:t> elements) out of a document
// body, one line per paragraph.
func extractTextFromXML(xmlContent string) string {
	var text strings.Builder
	for _, para := range strings.Split(xmlContent, "</w:p>") {
		var line strings.Builder
		parts := strings.Split(para, "<w:t")
		for i, part := range parts {
			if i == 0 {
				continue
			}
			// Skip other w:t-prefixed tags such as <w:tbl>.
			if !strings.HasPrefix(part, ">") && !strings.HasPrefix(part, " ") && !strings.HasPrefix(part, "/") {
				continue
			}
			gt := strings.Index(part, ">")
			if gt < 0 {
				continue
			}
			rest := part[gt+1:]
			end := strings.Index(rest, "</w:t>")
			if end >= 0 {
				line.WriteString(html.UnescapeString(rest[:end]))
			}
		}
		if strings.TrimSpace(line.String()) != "" {
			text.WriteString(line.String())
			text.WriteString("\n")
		}
	}
	return strings.TrimSpace(text.String())
}

func pdfPageCount(data []byte) (int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	return reader.NumPage(), nil
}
