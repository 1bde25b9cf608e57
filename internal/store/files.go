package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/oriys/vega/internal/domain"
	"github.com/oriys/vega/internal/turso"
)

// fileTables maps each category to its physical table. The four tables
// share the same column layout; the category itself is a property of
// the table, tagged into query results as a literal.
var fileTables = map[domain.FileType]string{
	domain.FileTypeJSON:     "json_files",
	domain.FileTypeLua:      "lua_files",
	domain.FileTypeManifest: "manifest_files",
	domain.FileTypeVDF:      "vdf_files",
}

// filesUnionQuery builds the UNION ALL across the category tables in
// canonical branch order, sorted newest first. Ties keep branch order.
func filesUnionQuery(withContent bool) string {
	contentCol := ""
	if withContent {
		contentCol = ", content"
	}

	var b strings.Builder
	for i, ft := range domain.FileTypes() {
		if i > 0 {
			b.WriteString(" UNION ALL ")
		}
		fmt.Fprintf(&b,
			"SELECT id, app_id, filename, '%s' AS file_type, size, uploaded_at%s FROM %s WHERE app_id = ?",
			ft, contentCol, fileTables[ft],
		)
	}
	b.WriteString(" ORDER BY uploaded_at DESC")
	return b.String()
}

// ListFiles returns metadata rows for one app across all four category
// tables, newest first. Content is left nil.
func (s *Store) ListFiles(ctx context.Context, appID string) ([]domain.StoredFile, error) {
	return s.listFiles(ctx, appID, false)
}

// ListFilesWithContent is ListFiles with each row's content populated.
func (s *Store) ListFilesWithContent(ctx context.Context, appID string) ([]domain.StoredFile, error) {
	return s.listFiles(ctx, appID, true)
}

func (s *Store) listFiles(ctx context.Context, appID string, withContent bool) ([]domain.StoredFile, error) {
	types := domain.FileTypes()
	args := make([]turso.Value, len(types))
	for i := range types {
		args[i] = turso.Text(appID)
	}

	res, err := s.db.Execute(ctx, filesUnionQuery(withContent), args...)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return mapFiles(res, withContent)
}

// GetFile looks up one file in its category table and returns it with
// content, or nil when no row matches. An unknown category is a local
// none: no remote call is made.
func (s *Store) GetFile(ctx context.Context, fileID string, fileType domain.FileType) (*domain.StoredFile, error) {
	table, ok := fileTables[fileType]
	if !ok {
		return nil, nil
	}

	res, err := s.db.Execute(ctx,
		fmt.Sprintf(
			"SELECT id, app_id, filename, '%s' AS file_type, size, uploaded_at, content FROM %s WHERE id = ?",
			fileType, table,
		),
		turso.Text(fileID),
	)
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	files, err := mapFiles(res, true)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}
	return &files[0], nil
}

func mapFiles(res *turso.Result, withContent bool) ([]domain.StoredFile, error) {
	idx := newRowIndex(res)
	files := make([]domain.StoredFile, 0, len(res.Rows))
	for _, row := range res.Rows {
		r := rowReader{idx: idx, row: row}

		id, err := r.text("id")
		if err != nil {
			return nil, fmt.Errorf("map file row: %w", err)
		}
		appID, err := r.text("app_id")
		if err != nil {
			return nil, fmt.Errorf("map file row: %w", err)
		}
		filename, err := r.text("filename")
		if err != nil {
			return nil, fmt.Errorf("map file row: %w", err)
		}
		rawType, err := r.text("file_type")
		if err != nil {
			return nil, fmt.Errorf("map file row: %w", err)
		}
		fileType, ok := domain.ParseFileType(rawType)
		if !ok {
			return nil, fmt.Errorf("map file row: unknown file type %q", rawType)
		}
		size, err := r.integer("size")
		if err != nil {
			return nil, fmt.Errorf("map file row: %w", err)
		}
		uploadedAt, err := r.timestamp("uploaded_at")
		if err != nil {
			return nil, fmt.Errorf("map file row: %w", err)
		}

		f := domain.StoredFile{
			ID:         id,
			AppID:      appID,
			Filename:   filename,
			FileType:   fileType,
			Size:       size,
			UploadedAt: uploadedAt,
		}
		if withContent {
			content, err := r.bytes("content")
			if err != nil {
				return nil, fmt.Errorf("map file row: %w", err)
			}
			f.Content = content
		}
		files = append(files, f)
	}
	return files, nil
}
