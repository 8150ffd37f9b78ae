package report

import (
	"context"
	"fmt"

	"github.com/medsta/portal/internal/platform/filestore"
	"github.com/medsta/portal/pkg/pagination"
)

type Service struct {
	repo  Repository
	files filestore.FileStore
}

func NewService(repo Repository, files filestore.FileStore) *Service {
	return &Service{repo: repo, files: files}
}

// List returns one page of the user's reports, newest first.
func (s *Service) List(ctx context.Context, userID string, after *pagination.Cursor, limit int) ([]Report, *pagination.Cursor, bool, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	return s.repo.List(ctx, userID, after, limit)
}

// Fetcher adapts the service to a pagination fetch function bound to one user.
func (s *Service) Fetcher(userID string) pagination.FetchFunc[Report] {
	return func(ctx context.Context, after *pagination.Cursor, limit int) ([]Report, *pagination.Cursor, bool, error) {
		return s.List(ctx, userID, after, limit)
	}
}

// DownloadURL resolves a time-limited URL for the report's stored file.
func (s *Service) DownloadURL(ctx context.Context, userID, id string) (string, error) {
	rep, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if !rep.HasFile() {
		return "", ErrNotFound
	}
	url, err := s.files.DownloadURL(ctx, rep.FileKey, filestore.DefaultURLExpiry)
	if err != nil {
		return "", fmt.Errorf("download url for report %s: %w", id, err)
	}
	return url, nil
}

func (s *Service) Add(ctx context.Context, rep *Report) error {
	return s.repo.Create(ctx, rep)
}
