// Package gdocs reads and edits the candidate's CV as a Google Doc,
// using the Drive API for plain-text export and the Docs API for edits.
package gdocs

import (
	"context"
	"fmt"
	"io"
	"log"

	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// maxExportBytes bounds the exported document size; anything larger is
// almost certainly not a CV and would blow up the LLM context anyway.
const maxExportBytes = 10 << 20

// Service wraps the Docs and Drive clients behind the document contract
// the pipeline consumes.
type Service struct {
	docs  *docs.Service
	drive *drive.Service
}

// NewService builds the service from shared client options (API key or
// service-account credentials).
func NewService(ctx context.Context, opts ...option.ClientOption) (*Service, error) {
	docsSvc, err := docs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docs service: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &Service{docs: docsSvc, drive: driveSvc}, nil
}

// ExportText downloads the document as plain text. Documents larger
// than 10 MiB are rejected.
func (s *Service) ExportText(ctx context.Context, docID string) (string, error) {
	resp, err := s.drive.Files.Export(docID, "text/plain").Context(ctx).Download()
	if err != nil {
		return "", fmt.Errorf("failed to export document %s: %w", docID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxExportBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read export of %s: %w", docID, err)
	}
	if len(body) > maxExportBytes {
		return "", fmt.Errorf("document %s exceeds %d bytes", docID, maxExportBytes)
	}
	log.Printf("gdocs: exported %s (%d bytes)", docID, len(body))
	return string(body), nil
}

// PrependText inserts text at the very top of the document body.
func (s *Service) PrependText(ctx context.Context, docID, text string) error {
	if text == "" {
		return nil
	}
	req := &docs.BatchUpdateDocumentRequest{
		Requests: []*docs.Request{
			{
				InsertText: &docs.InsertTextRequest{
					Text: text,
					// Index 1 is the first position inside the body.
					Location: &docs.Location{Index: 1},
				},
			},
		},
	}
	if _, err := s.docs.Documents.BatchUpdate(docID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to prepend text to %s: %w", docID, err)
	}
	log.Printf("gdocs: prepended %d chars to %s", len(text), docID)
	return nil
}
