package report

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/medsta/portal/internal/platform/filestore"
	"github.com/medsta/portal/pkg/pagination"
)

type mockRepo struct {
	reports []Report
	err     error
}

func (m *mockRepo) List(_ context.Context, userID string, after *pagination.Cursor, limit int) ([]Report, *pagination.Cursor, bool, error) {
	if m.err != nil {
		return nil, nil, false, m.err
	}
	var matched []Report
	for _, r := range m.reports {
		if r.UserID == userID {
			matched = append(matched, r)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].ReportDate.Equal(matched[j].ReportDate) {
			return matched[i].ReportDate.After(matched[j].ReportDate)
		}
		return matched[i].ID.String() > matched[j].ID.String()
	})
	if after != nil {
		afterDate, err := time.Parse(time.RFC3339Nano, after.Key)
		if err != nil {
			return nil, nil, false, err
		}
		var rest []Report
		for _, r := range matched {
			if r.ReportDate.Before(afterDate) || (r.ReportDate.Equal(afterDate) && r.ID.String() < after.ID) {
				rest = append(rest, r)
			}
		}
		matched = rest
	}
	hasMore := len(matched) > limit
	if hasMore {
		matched = matched[:limit]
	}
	var next *pagination.Cursor
	if hasMore {
		last := matched[len(matched)-1]
		next = &pagination.Cursor{Key: last.ReportDate.UTC().Format(time.RFC3339Nano), ID: last.ID.String()}
	}
	return matched, next, hasMore, nil
}

func (m *mockRepo) Create(_ context.Context, r *Report) error {
	if m.err != nil {
		return m.err
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	m.reports = append(m.reports, *r)
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, userID, id string) (*Report, error) {
	for _, r := range m.reports {
		if r.UserID == userID && r.ID.String() == id {
			out := r
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func seedReports(repo *mockRepo, userID string, days ...int) {
	for _, d := range days {
		repo.reports = append(repo.reports, Report{
			ID:         uuid.New(),
			UserID:     userID,
			Title:      "Report",
			ReportDate: day(d),
		})
	}
}

func TestService_ListNewestFirst(t *testing.T) {
	repo := &mockRepo{}
	seedReports(repo, "u1", 3, 1, 2)

	svc := NewService(repo, filestore.NewMemoryStore())
	got, _, _, err := svc.List(context.Background(), "u1", nil, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(got); i++ {
		if got[i].ReportDate.After(got[i-1].ReportDate) {
			t.Errorf("results not descending at %d", i)
		}
	}
}

func TestService_ListPaginatesSixRecords(t *testing.T) {
	repo := &mockRepo{}
	seedReports(repo, "u1", 1, 2, 3, 4, 5, 6)

	svc := NewService(repo, filestore.NewMemoryStore())

	first, cur, hasMore, err := svc.List(context.Background(), "u1", nil, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 5 || !hasMore || cur == nil {
		t.Fatalf("expected 5 reports with more, got %d hasMore=%v", len(first), hasMore)
	}
	if !first[0].ReportDate.Equal(day(6)) || !first[4].ReportDate.Equal(day(2)) {
		t.Errorf("first page should span day 6 down to day 2, got %v..%v", first[0].ReportDate, first[4].ReportDate)
	}

	second, cur2, hasMore2, err := svc.List(context.Background(), "u1", cur, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second) != 1 || !second[0].ReportDate.Equal(day(1)) {
		t.Fatalf("expected final page with only day 1, got %d records", len(second))
	}
	if hasMore2 || cur2 != nil {
		t.Error("expected no further pages")
	}
}

func TestService_ListFiltersByUser(t *testing.T) {
	repo := &mockRepo{}
	seedReports(repo, "u1", 1)
	seedReports(repo, "u2", 2)

	svc := NewService(repo, filestore.NewMemoryStore())
	got, _, _, err := svc.List(context.Background(), "u1", nil, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].UserID != "u1" {
		t.Fatalf("expected only u1 reports, got %d", len(got))
	}
}

func TestService_DownloadURL(t *testing.T) {
	repo := &mockRepo{}
	files := filestore.NewMemoryStore()
	ctx := context.Background()

	if _, err := files.Put(ctx, "reports/u1/lipid.pdf", "application/pdf", strings.NewReader("pdf")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rep := &Report{UserID: "u1", Title: "Lipid Profile", ReportDate: day(10), FileKey: "reports/u1/lipid.pdf"}
	if err := repo.Create(ctx, rep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	svc := NewService(repo, files)
	url, err := svc.DownloadURL(ctx, "u1", rep.ID.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url == "" {
		t.Error("expected non-empty url")
	}

	// Another user must not reach the file.
	if _, err := svc.DownloadURL(ctx, "u2", rep.ID.String()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign user, got %v", err)
	}
}

func TestService_DownloadURLNoFile(t *testing.T) {
	repo := &mockRepo{}
	rep := &Report{UserID: "u1", Title: "X-Ray", ReportDate: day(5)}
	if err := repo.Create(context.Background(), rep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	svc := NewService(repo, filestore.NewMemoryStore())
	if _, err := svc.DownloadURL(context.Background(), "u1", rep.ID.String()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for report without file, got %v", err)
	}
}
