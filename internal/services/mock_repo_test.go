package services

import (
	"context"
	"sort"

	"github.com/tfml/tender-console/internal/models"

	"github.com/jackc/pgx/v5"
)

// mockTenderRepository - хранилище тендеров в памяти для тестов сервисов.
type mockTenderRepository struct {
	tenders map[int64]models.Tender
	failOn  string
}

func newMockTenderRepository() *mockTenderRepository {
	return &mockTenderRepository{tenders: make(map[int64]models.Tender)}
}

type mockRepoError struct{ op string }

func (e *mockRepoError) Error() string { return "mock repository failure: " + e.op }

func (m *mockTenderRepository) GetTenders(_ context.Context) ([]models.Tender, error) {
	if m.failOn == "GetTenders" {
		return nil, &mockRepoError{op: "GetTenders"}
	}
	out := make([]models.Tender, 0, len(m.tenders))
	for _, t := range m.tenders {
		out = append(out, copyTender(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockTenderRepository) GetTenderByID(_ context.Context, id int64) (*models.Tender, error) {
	if m.failOn == "GetTenderByID" {
		return nil, &mockRepoError{op: "GetTenderByID"}
	}
	t, ok := m.tenders[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := copyTender(t)
	return &cp, nil
}

func (m *mockTenderRepository) SaveTender(_ context.Context, tender *models.Tender) error {
	if m.failOn == "SaveTender" {
		return &mockRepoError{op: "SaveTender"}
	}
	m.tenders[tender.ID] = copyTender(*tender)
	return nil
}

func (m *mockTenderRepository) DeleteTender(_ context.Context, id int64) error {
	if m.failOn == "DeleteTender" {
		return &mockRepoError{op: "DeleteTender"}
	}
	delete(m.tenders, id)
	return nil
}

func (m *mockTenderRepository) NextID(_ context.Context) (int64, error) {
	if m.failOn == "NextID" {
		return 0, &mockRepoError{op: "NextID"}
	}
	var maxID int64
	for id := range m.tenders {
		if id > maxID {
			maxID = id
		}
	}
	return maxID + 1, nil
}

func (m *mockTenderRepository) ExistingTitles(_ context.Context, titles []string) (map[string]bool, error) {
	if m.failOn == "ExistingTitles" {
		return nil, &mockRepoError{op: "ExistingTitles"}
	}
	want := make(map[string]bool, len(titles))
	for _, t := range titles {
		want[t] = true
	}
	existing := make(map[string]bool)
	for _, t := range m.tenders {
		if want[t.Title] {
			existing[t.Title] = true
		}
	}
	return existing, nil
}

func copyTender(t models.Tender) models.Tender {
	cp := t
	cp.Drafts = make([]models.Draft, len(t.Drafts))
	copy(cp.Drafts, t.Drafts)
	for i := range cp.Drafts {
		cp.Drafts[i].Attachments = append([]string(nil), t.Drafts[i].Attachments...)
	}
	return cp
}
