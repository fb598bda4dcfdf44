package repository

import (
	"context"
	"fmt"
	"net/url"

	"pacs-study-browser/internal/domain/entity"
)

// ArchiveRepository is the archive's REST query interface.
type ArchiveRepository interface {
	GetStudies(ctx context.Context, tab entity.Tab, callingAet entity.Aet, params url.Values) ([]entity.Attributes, error)
	CountStudies(ctx context.Context, tab entity.Tab, callingAet entity.Aet, params url.Values) (int64, error)
	GetStudiesSize(ctx context.Context, callingAet entity.Aet, params url.Values) (int64, error)
	GetAes(ctx context.Context) ([]entity.Aet, error)
	GetAets(ctx context.Context) ([]entity.Aet, error)
	GetAttributeFilter(ctx context.Context, entityName string) (*entity.AttributeFilter, error)
}

// ArchiveError is a non-success answer of the archive.
type ArchiveError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *ArchiveError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("archive returned status %d for %s: %s", e.StatusCode, e.URL, e.Message)
	}
	return fmt.Sprintf("archive returned status %d for %s", e.StatusCode, e.URL)
}
