package files

import (
	"context"
	"errors"
	"testing"

	"github.com/oriys/vega/internal/domain"
)

type fakeLister struct {
	files []domain.StoredFile
	file  *domain.StoredFile
	err   error
	calls int
}

func (f *fakeLister) ListFiles(ctx context.Context, appID string) ([]domain.StoredFile, error) {
	f.calls++
	return f.files, f.err
}

func (f *fakeLister) ListFilesWithContent(ctx context.Context, appID string) ([]domain.StoredFile, error) {
	f.calls++
	return f.files, f.err
}

func (f *fakeLister) GetFile(ctx context.Context, fileID string, fileType domain.FileType) (*domain.StoredFile, error) {
	f.calls++
	return f.file, f.err
}

func TestListReturnsBackendFiles(t *testing.T) {
	want := []domain.StoredFile{{ID: "1", Filename: "config.json", FileType: domain.FileTypeJSON}}
	a := NewAggregator(&fakeLister{files: want}, false)

	listing, err := a.List(context.Background(), "1245623")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if listing.Degraded {
		t.Fatal("healthy listing marked degraded")
	}
	if len(listing.Files) != 1 || listing.Files[0].Filename != "config.json" {
		t.Fatalf("files = %+v", listing.Files)
	}
}

func TestListSuppressesBackendFailure(t *testing.T) {
	a := NewAggregator(&fakeLister{err: errors.New("remote query failed: status 500")}, false)

	listing, err := a.List(context.Background(), "1245623")
	if err != nil {
		t.Fatalf("suppression policy leaked error: %v", err)
	}
	if !listing.Degraded {
		t.Fatal("failed listing not marked degraded")
	}
	if len(listing.Files) != 0 {
		t.Fatalf("files = %+v, want none", listing.Files)
	}
}

func TestListStrictPropagatesFailure(t *testing.T) {
	backendErr := errors.New("remote query failed: status 500")
	a := NewAggregator(&fakeLister{err: backendErr}, true)

	_, err := a.List(context.Background(), "1245623")
	if !errors.Is(err, backendErr) {
		t.Fatalf("err = %v, want backend failure", err)
	}
}

func TestListWithContentSuppressesBackendFailure(t *testing.T) {
	a := NewAggregator(&fakeLister{err: errors.New("timeout")}, false)

	listing, err := a.ListWithContent(context.Background(), "1245623")
	if err != nil {
		t.Fatalf("ListWithContent: %v", err)
	}
	if !listing.Degraded {
		t.Fatal("failed listing not marked degraded")
	}
}

// Suppression covers listings only; single-file lookups keep their
// errors so the caller can tell 404 from 5xx.
func TestGetByIDPropagatesFailure(t *testing.T) {
	backendErr := errors.New("remote query failed: status 500")
	a := NewAggregator(&fakeLister{err: backendErr}, false)

	_, err := a.GetByID(context.Background(), "9", domain.FileTypeLua)
	if !errors.Is(err, backendErr) {
		t.Fatalf("err = %v, want backend failure", err)
	}
}

func TestGetByIDAbsentIsNone(t *testing.T) {
	a := NewAggregator(&fakeLister{}, false)

	f, err := a.GetByID(context.Background(), "404", domain.FileTypeJSON)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if f != nil {
		t.Fatalf("file = %+v, want nil", f)
	}
}
