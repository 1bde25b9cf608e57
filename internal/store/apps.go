package store

import (
	"context"
	"fmt"

	"github.com/oriys/vega/internal/domain"
	"github.com/oriys/vega/internal/turso"
)

const appColumns = "app_id, name, type, created_at, updated_at"

// ListApps returns the full catalog, newest first.
func (s *Store) ListApps(ctx context.Context) ([]domain.App, error) {
	res, err := s.db.Execute(ctx, "SELECT "+appColumns+" FROM apps ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list apps: %w", err)
	}
	return mapApps(res)
}

// GetApp returns the catalog entry for appID, or nil when no row
// matches.
func (s *Store) GetApp(ctx context.Context, appID string) (*domain.App, error) {
	res, err := s.db.Execute(ctx,
		"SELECT "+appColumns+" FROM apps WHERE app_id = ?",
		turso.Text(appID),
	)
	if err != nil {
		return nil, fmt.Errorf("get app: %w", err)
	}
	apps, err := mapApps(res)
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, nil
	}
	return &apps[0], nil
}

func mapApps(res *turso.Result) ([]domain.App, error) {
	idx := newRowIndex(res)
	apps := make([]domain.App, 0, len(res.Rows))
	for _, row := range res.Rows {
		r := rowReader{idx: idx, row: row}

		appID, err := r.text("app_id")
		if err != nil {
			return nil, fmt.Errorf("map app row: %w", err)
		}
		name, err := r.nullText("name")
		if err != nil {
			return nil, fmt.Errorf("map app row: %w", err)
		}
		appType, err := r.nullText("type")
		if err != nil {
			return nil, fmt.Errorf("map app row: %w", err)
		}
		createdAt, err := r.timestamp("created_at")
		if err != nil {
			return nil, fmt.Errorf("map app row: %w", err)
		}
		updatedAt, err := r.timestamp("updated_at")
		if err != nil {
			return nil, fmt.Errorf("map app row: %w", err)
		}

		apps = append(apps, domain.App{
			AppID:     appID,
			Name:      name,
			Type:      appType,
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
		})
	}
	return apps, nil
}
