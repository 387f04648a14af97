package usecase

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"onboarding-agent/internal/domain"
)

const defaultDocumentListLimit = 50

// PageDocument is an open document exposing per-page text extraction.
// Page numbers are 1-based.
type PageDocument interface {
	NumPages() int
	PageText(n int) (string, error)
	Close() error
}

// DocumentOpener opens an uploaded file for page-by-page extraction.
type DocumentOpener interface {
	Open(path string) (PageDocument, error)
}

// DocumentStore records processed uploads in the document registry.
type DocumentStore interface {
	SaveDocument(ctx context.Context, rec domain.DocumentRecord) error
	ListDocuments(ctx context.Context, companyID string, limit int) ([]domain.DocumentRecord, error)
}

// IngestService converts an uploaded PDF into normalized text for the
// knowledge base. A page that cannot be processed contributes no text and
// never fails the document; only a failure to open the document at all is
// reported as unreadable.
type IngestService struct {
	opener DocumentOpener
	store  DocumentStore
}

type IngestInput struct {
	// Path is the temporary on-disk upload artifact. Ingest removes it on
	// every exit path.
	Path      string
	Filename  string
	CompanyID string
}

func NewIngestService(opener DocumentOpener, store DocumentStore) (*IngestService, error) {
	if opener == nil {
		return nil, errors.New("usecase: document opener must not be nil")
	}
	if store == nil {
		return nil, errors.New("usecase: document store must not be nil")
	}
	return &IngestService{opener: opener, store: store}, nil
}

// Ingest extracts text from the uploaded file and records the outcome in the
// registry. It never returns an error: an unparseable document is itself a
// classified result.
func (s *IngestService) Ingest(ctx context.Context, in IngestInput) domain.IngestionResult {
	defer func() {
		if err := os.Remove(in.Path); err != nil && !os.IsNotExist(err) {
			slog.WarnContext(ctx, "failed to remove upload artifact", "path", in.Path, "err", err)
		}
	}()

	result := s.extract(ctx, in.Path)
	s.record(ctx, in, result)
	return result
}

func (s *IngestService) extract(ctx context.Context, path string) domain.IngestionResult {
	doc, err := s.opener.Open(path)
	if err != nil {
		return domain.IngestionResult{
			Status: domain.UnreadableDocument,
			Reason: "could not open or parse the document",
		}
	}
	defer func() { _ = doc.Close() }()

	pages := doc.NumPages()
	var b strings.Builder
	for n := 1; n <= pages; n++ {
		text, err := doc.PageText(n)
		if err != nil {
			slog.WarnContext(ctx, "skipping unreadable page", "page", n, "err", err)
			continue
		}
		if text != "" {
			b.WriteString(text)
			b.WriteString("\n")
		}
	}

	extracted := strings.TrimSpace(b.String())
	if extracted == "" {
		return domain.IngestionResult{Status: domain.EmptyExtraction, Pages: pages}
	}
	return domain.IngestionResult{Status: domain.TextExtracted, Text: extracted, Pages: pages}
}

// record writes the registry entry. Registry failures never fail an upload;
// they are logged and absorbed.
func (s *IngestService) record(ctx context.Context, in IngestInput, result domain.IngestionResult) {
	rec := domain.DocumentRecord{
		DocumentID: newUUID(),
		CompanyID:  in.CompanyID,
		Filename:   in.Filename,
		Pages:      result.Pages,
		TextLength: len(result.Text),
		Status:     result.Status.String(),
	}
	if err := s.store.SaveDocument(ctx, rec); err != nil {
		slog.WarnContext(ctx, "failed to record document", "filename", in.Filename, "err", err)
	}
}

// Documents lists the registry entries for a company, newest first.
func (s *IngestService) Documents(ctx context.Context, companyID string) ([]domain.DocumentRecord, error) {
	recs, err := s.store.ListDocuments(ctx, companyID, defaultDocumentListLimit)
	if err != nil {
		return nil, newError(ErrorInternal, "document_list_error", err)
	}
	return recs, nil
}

var newUUID = func() string {
	return uuid.NewString()
}
