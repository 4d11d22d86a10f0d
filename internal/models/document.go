package models

// Accepted upload mime types. Anything else is rejected before a prompt
// request is ever built.
const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeTXT  = "text/plain"
)

// ExtractionState records the outcome of plain-text extraction during
// ingestion. "Failed" and "Succeeded with empty text" are distinct states.
type ExtractionState int

const (
	ExtractionNotAttempted ExtractionState = iota
	ExtractionFailed
	ExtractionSucceeded
)

// Document is the normalized form of an uploaded file. Immutable once built;
// a new upload replaces it wholesale.
type Document struct {
	FileName   string
	MimeType   string
	DataURI    string
	Text       string
	Extraction ExtractionState
	PageCount  int
}

// TextAvailable reports whether extracted plain text can stand in for the
// raw document when building prompt requests.
func (d *Document) TextAvailable() bool {
	return d.Extraction == ExtractionSucceeded
}

type refKind int

const (
	refNone refKind = iota
	refText
	refURI
)

// DocumentRef is the document payload of a prompt request: either extracted
// plain text or a base64 data URI, never both and never neither.
type DocumentRef struct {
	kind  refKind
	value string
}

func TextRef(text string) DocumentRef {
	return DocumentRef{kind: refText, value: text}
}

func URIRef(uri string) DocumentRef {
	return DocumentRef{kind: refURI, value: uri}
}

func (r DocumentRef) IsText() bool { return r.kind == refText }

func (r DocumentRef) IsURI() bool { return r.kind == refURI }

// IsZero reports whether the ref carries no payload at all. Passing a zero
// ref to the prompt service is a caller bug.
func (r DocumentRef) IsZero() bool { return r.kind == refNone }

func (r DocumentRef) Value() string { return r.value }

// Ref picks the request payload for a document: extracted text when
// extraction succeeded, the data URI otherwise.
func (d *Document) Ref() DocumentRef {
	if d.TextAvailable() {
		return TextRef(d.Text)
	}
	return URIRef(d.DataURI)
}
