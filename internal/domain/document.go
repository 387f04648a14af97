package domain

// IngestionStatus classifies the outcome of extracting text from an uploaded
// document.
type IngestionStatus int

const (
	// TextExtracted means at least one page yielded text.
	TextExtracted IngestionStatus = iota
	// EmptyExtraction means the document parsed but contained no extractable
	// text (image-only PDF). This is a successful outcome, not a failure.
	EmptyExtraction
	// UnreadableDocument means the document could not be opened or parsed at
	// all.
	UnreadableDocument
)

func (s IngestionStatus) String() string {
	switch s {
	case TextExtracted:
		return "extracted"
	case EmptyExtraction:
		return "empty"
	case UnreadableDocument:
		return "unreadable"
	default:
		return "unknown"
	}
}

// IngestionResult is derived once per uploaded file. Text is populated only
// for TextExtracted; Reason only for UnreadableDocument.
type IngestionResult struct {
	Status IngestionStatus
	Text   string
	Pages  int
	Reason string
}

// DocumentRecord is a persisted entry in the document registry describing one
// processed upload.
type DocumentRecord struct {
	PK         string
	SK         string
	DocumentID string
	CompanyID  string
	Filename   string
	Pages      int
	TextLength int
	Status     string
	TTL        int64
}
