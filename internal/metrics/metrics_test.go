package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tfml/tender-console/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCompute_OverdueAndDueWindows(t *testing.T) {
	today := date(2025, time.August, 10)
	rows := []models.Tender{
		{ID: 1, Title: "A", Deadline: "2025-08-09", Status: models.PendingTender},
		{ID: 2, Title: "B", Deadline: "2025-08-12", Status: models.DraftTender},
	}

	s := Compute(rows, today)
	if s.Total != 2 {
		t.Errorf("expected total 2, got %d", s.Total)
	}
	if s.Overdue != 1 {
		t.Errorf("expected 1 overdue, got %d", s.Overdue)
	}
	if len(s.Overdues) != 1 || s.Overdues[0].Title != "A" {
		t.Errorf("expected overdue list to contain A, got %+v", s.Overdues)
	}

	if got := CountDueIn(rows, today, 3); got != 1 {
		t.Errorf("expected 1 tender due in 3 days, got %d", got)
	}
	if got := CountDueIn(rows, today, 7); got != 1 {
		t.Errorf("expected 1 tender due in 7 days, got %d", got)
	}
}

func TestCompute_OverdueExcludesDecided(t *testing.T) {
	today := date(2025, time.August, 10)
	rows := []models.Tender{
		{ID: 1, Deadline: "2025-08-01", Status: models.WonTender},
		{ID: 2, Deadline: "2025-08-01", Status: models.LostTender},
		{ID: 3, Deadline: "2025-08-01", Status: models.RejectedTender},
		{ID: 4, Deadline: "2025-08-01", Status: models.SubmittedTender},
	}

	s := Compute(rows, today)
	if s.Overdue != 1 {
		t.Errorf("expected only the submitted tender overdue, got %d", s.Overdue)
	}
}

func TestCompute_WinRate(t *testing.T) {
	today := date(2025, time.August, 10)

	s := Compute([]models.Tender{
		{ID: 1, Status: models.DraftTender},
		{ID: 2, Status: models.PendingTender},
	}, today)
	if s.WinRate != 0.0 {
		t.Errorf("expected win rate 0.0 with no decided tenders, got %v", s.WinRate)
	}

	s = Compute([]models.Tender{
		{ID: 1, Status: models.AwardedTender},
		{ID: 2, Status: models.LostTender},
		{ID: 3, Status: models.LostTender},
	}, today)
	if s.WinRate != 33.3 {
		t.Errorf("expected win rate 33.3, got %v", s.WinRate)
	}

	s = Compute([]models.Tender{
		{ID: 1, Status: models.WonTender},
		{ID: 2, Status: models.AwardedTender},
	}, today)
	if s.WinRate != 100.0 {
		t.Errorf("expected win rate 100.0, got %v", s.WinRate)
	}
}

func TestCompute_WorkloadNormalizesAssignee(t *testing.T) {
	today := date(2025, time.August, 10)
	rows := []models.Tender{
		{ID: 1, Assignee: ""},
		{ID: 2, Assignee: "   "},
		{ID: 3, Assignee: "femi@tfml.ng"},
	}

	s := Compute(rows, today)
	if s.Workload[models.Unassigned] != 2 {
		t.Errorf("expected 2 unassigned, got %d", s.Workload[models.Unassigned])
	}
	if s.Workload["femi@tfml.ng"] != 1 {
		t.Errorf("expected 1 for femi, got %d", s.Workload["femi@tfml.ng"])
	}

	rows[0].Assignee = "greg@tfml.ng"
	s = Compute(rows, today)
	if s.Workload[models.Unassigned] != 1 {
		t.Errorf("expected unassigned count to drop to 1, got %d", s.Workload[models.Unassigned])
	}
	if s.Workload["greg@tfml.ng"] != 1 {
		t.Errorf("expected count to move to greg, got %d", s.Workload["greg@tfml.ng"])
	}
}

func TestCompute_UnparseableDeadline(t *testing.T) {
	today := date(2025, time.August, 10)
	rows := []models.Tender{
		{ID: 1, Deadline: "not-a-date", Status: models.PendingTender},
	}

	s := Compute(rows, today)
	if s.Total != 1 {
		t.Errorf("expected total 1, got %d", s.Total)
	}
	if s.Overdue != 0 {
		t.Errorf("expected no overdue for unparseable deadline, got %d", s.Overdue)
	}
	if got := CountDueIn(rows, today, 30); got != 0 {
		t.Errorf("expected no due tenders, got %d", got)
	}
}

func TestCompute_DeadlineHistogram(t *testing.T) {
	today := date(2025, time.August, 10)
	rows := []models.Tender{
		{ID: 1, Deadline: "2025-08-15"},
		{ID: 2, Deadline: "2025-08-15"},
		{ID: 3, Deadline: "2025-08-12"},
		{ID: 4, Deadline: "2025-10-01"}, // за пределами окна
		{ID: 5, Deadline: "2025-08-01"}, // в прошлом
	}

	s := Compute(rows, today)
	if len(s.Deadline30) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(s.Deadline30))
	}
	if s.Deadline30[0].Date != "2025-08-12" || s.Deadline30[0].Tenders != 1 {
		t.Errorf("unexpected first bucket: %+v", s.Deadline30[0])
	}
	if s.Deadline30[1].Date != "2025-08-15" || s.Deadline30[1].Tenders != 2 {
		t.Errorf("unexpected second bucket: %+v", s.Deadline30[1])
	}
}

func TestActivityFeed_NeverExportedDraft(t *testing.T) {
	rows := []models.Tender{
		{
			ID: 1, Title: "No artifact", Status: models.DraftTender,
			Drafts: []models.Draft{
				{ID: "1:1", Type: models.EOIKind, Version: 1},
			},
		},
	}

	feed := ActivityFeed(rows, time.Now())
	if len(feed) != 1 {
		t.Fatalf("expected 1 feed entry, got %d", len(feed))
	}
	// Черновик без файла отдаёт пустое имя, а не ".".
	if feed[0].File != "" {
		t.Errorf("expected empty file name, got %q", feed[0].File)
	}
	if feed[0].When.IsZero() {
		t.Errorf("expected fallback timestamp to be set")
	}
}

func TestActivityFeed_OrderAndFallback(t *testing.T) {
	dir := t.TempDir()
	oldFile := filepath.Join(dir, "old.docx")
	newFile := filepath.Join(dir, "new.docx")
	for _, f := range []string{oldFile, newFile} {
		if err := os.WriteFile(f, []byte("doc"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	oldTime := time.Now().Add(-2 * time.Hour)
	newTime := time.Now().Add(-1 * time.Hour)
	if err := os.Chtimes(oldFile, oldTime, oldTime); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(newFile, newTime, newTime); err != nil {
		t.Fatal(err)
	}

	rows := []models.Tender{
		{
			ID: 1, Title: "With files", Status: models.DraftTender,
			Drafts: []models.Draft{
				{ID: "1:1", Type: models.EOIKind, File: oldFile, Version: 1},
				{ID: "1:2", Type: models.EOIKind, File: newFile, Version: 2},
			},
		},
		{
			ID: 2, Title: "Missing file", Status: models.PendingTender,
			Drafts: []models.Draft{
				{ID: "2:1", Type: models.ProposalKind, File: filepath.Join(dir, "gone.docx"), Version: 1},
			},
		},
	}

	feed := ActivityFeed(rows, time.Now())
	if len(feed) != 3 {
		t.Fatalf("expected 3 feed entries, got %d", len(feed))
	}
	// Файл без артефакта получает текущий момент и оказывается первым.
	if feed[0].Tender != "Missing file" {
		t.Errorf("expected missing-file draft first, got %q", feed[0].Tender)
	}
	if feed[1].File != "new.docx" || feed[2].File != "old.docx" {
		t.Errorf("expected files ordered new.docx, old.docx; got %q, %q", feed[1].File, feed[2].File)
	}
	if feed[1].Version != 2 {
		t.Errorf("expected version 2, got %d", feed[1].Version)
	}
}
