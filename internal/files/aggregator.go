// Package files aggregates per-app file listings across the four
// category tables and packages them into download archives.
package files

import (
	"context"

	"github.com/oriys/vega/internal/domain"
	"github.com/oriys/vega/internal/logging"
)

// Lister is the slice of the store the aggregator consumes.
type Lister interface {
	ListFiles(ctx context.Context, appID string) ([]domain.StoredFile, error)
	ListFilesWithContent(ctx context.Context, appID string) ([]domain.StoredFile, error)
	GetFile(ctx context.Context, fileID string, fileType domain.FileType) (*domain.StoredFile, error)
}

// Listing is the outcome of a file listing. Degraded marks a listing
// whose backend call failed under the suppression policy, so callers
// can tell an empty catalog from an unavailable backend.
type Listing struct {
	Files    []domain.StoredFile
	Degraded bool
}

// Aggregator serves per-app file listings. Backend failures on the
// listing paths are suppressed into an empty degraded Listing unless
// strict is set, in which case they propagate.
type Aggregator struct {
	store  Lister
	strict bool
}

func NewAggregator(store Lister, strict bool) *Aggregator {
	return &Aggregator{store: store, strict: strict}
}

// List returns file metadata for one app, newest first.
func (a *Aggregator) List(ctx context.Context, appID string) (Listing, error) {
	files, err := a.store.ListFiles(ctx, appID)
	return a.finish("list_files", appID, files, err)
}

// ListWithContent is List with each file's content populated.
func (a *Aggregator) ListWithContent(ctx context.Context, appID string) (Listing, error) {
	files, err := a.store.ListFilesWithContent(ctx, appID)
	return a.finish("list_files_with_content", appID, files, err)
}

func (a *Aggregator) finish(op, appID string, files []domain.StoredFile, err error) (Listing, error) {
	if err != nil {
		if a.strict {
			return Listing{}, err
		}
		logging.Op().Warn("file listing degraded", "operation", op, "app_id", appID, "error", err)
		return Listing{Degraded: true}, nil
	}
	return Listing{Files: files}, nil
}

// GetByID fetches one file with content, or nil when no row matches.
// Unknown categories are a local none. Failures on this path always
// propagate; the suppression policy covers listings only.
func (a *Aggregator) GetByID(ctx context.Context, fileID string, fileType domain.FileType) (*domain.StoredFile, error) {
	return a.store.GetFile(ctx, fileID, fileType)
}
