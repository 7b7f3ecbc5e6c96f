// Package document renders views as Word documents and archives them in S3.
package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gosimple/slug"
	"github.com/nuptial-ops/wedding-manager/pkg/roster"
)

const ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

type uploader interface {
	Upload(ctx context.Context, bucket string, key string, body io.Reader, contentType string) error
}

func NewService(logger *slog.Logger, uploader uploader, bucket string) *Service {
	return &Service{
		logger:   logger,
		uploader: uploader,
		bucket:   bucket,
		now:      time.Now,
	}
}

type Service struct {
	logger   *slog.Logger
	uploader uploader
	bucket   string
	now      func() time.Time
}

// Filename returns a download friendly name for a file with the given title.
func Filename(title, extension string) string {
	return slug.Make(title) + "." + extension
}

// Render writes the export as a Word document.
func (s *Service) Render(w io.Writer, title string, export roster.Export) error {
	if err := roster.WriteDocx(w, title, export); err != nil {
		return fmt.Errorf("failed to render %q: %v", title, err)
	}
	return nil
}

// Archive renders the export and uploads it under the wedding's prefix. The key is returned.
func (s *Service) Archive(ctx context.Context, weddingID uint, title string, export roster.Export) (string, error) {
	var buf bytes.Buffer
	if err := s.Render(&buf, title, export); err != nil {
		return "", err
	}

	key := fmt.Sprintf("weddings/%d/%s-%s.docx", weddingID, slug.Make(title), s.now().UTC().Format("20060102T150405Z"))
	if err := s.uploader.Upload(ctx, s.bucket, key, &buf, ContentType); err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "Archived document", "key", key, "rows", len(export.Rows))
	return key, nil
}
