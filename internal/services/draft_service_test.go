package services

import (
	"context"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/tfml/tender-console/internal/docgen"
	"github.com/tfml/tender-console/internal/mailer"
	"github.com/tfml/tender-console/internal/models"
	"github.com/tfml/tender-console/internal/templates"
)

type recordingMailer struct {
	sent []mailer.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func newDraftFixture(t *testing.T) (*DraftService, *mockTenderRepository, *recordingMailer) {
	t.Helper()
	repo := newMockTenderRepository()
	docs, err := docgen.NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create docs writer: %v", err)
	}
	mail := &recordingMailer{}
	svc := NewDraftService(repo, docs, templates.NewLoader(), mail, "bids@tfml.ng")
	return svc, repo, mail
}

func TestCreateDraft_VersionsGrowMonotonically(t *testing.T) {
	svc, repo, _ := newDraftFixture(t)
	repo.tenders[1] = models.Tender{
		ID:     1,
		Title:  "Facility Management Services",
		Org:    "MTN Nigeria",
		Sector: models.FacilitiesManagement,
	}

	for want := 1; want <= 3; want++ {
		draft, err := svc.CreateDraft(context.Background(), 1, models.EOIKind, "")
		if err != nil {
			t.Fatalf("unexpected error on version %d: %v", want, err)
		}
		if draft.Version != want {
			t.Errorf("expected version %d, got %d", want, draft.Version)
		}
		if wantID := models.DraftID(1, want); draft.ID != wantID {
			t.Errorf("expected draft id %q, got %q", wantID, draft.ID)
		}
	}

	stored := repo.tenders[1]
	if len(stored.Drafts) != 3 {
		t.Fatalf("expected 3 drafts persisted, got %d", len(stored.Drafts))
	}
}

func TestCreateDraft_VersionsNeverReused(t *testing.T) {
	svc, repo, _ := newDraftFixture(t)
	repo.tenders[1] = models.Tender{ID: 1, Title: "X", Org: "FAAN"}

	for i := 0; i < 2; i++ {
		if _, err := svc.CreateDraft(context.Background(), 1, models.EOIKind, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := svc.DeleteDraft(context.Background(), 1, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	draft, err := svc.CreateDraft(context.Background(), 1, models.EOIKind, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// После удаления версии 2 максимум снова 1, следующая версия 2.
	if draft.Version != 2 {
		t.Errorf("expected version 2, got %d", draft.Version)
	}
}

func TestCreateDraft_RendersTemplateAndSuggestsRecipient(t *testing.T) {
	svc, repo, _ := newDraftFixture(t)
	repo.tenders[1] = models.Tender{
		ID:          1,
		Title:       "HVAC Upgrade",
		Org:         "MTN Nigeria",
		Sector:      models.Energy,
		Description: "Chiller replacement across two campuses.",
	}

	draft, err := svc.CreateDraft(context.Background(), 1, models.EOIKind, "Head of Procurement")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if draft.To != "procurement@mtn.com" {
		t.Errorf("expected suggested recipient procurement@mtn.com, got %q", draft.To)
	}
	if draft.Subject != "EOI: HVAC Upgrade" {
		t.Errorf("unexpected subject %q", draft.Subject)
	}
	if !strings.Contains(draft.Body, "Dear Head of Procurement") {
		t.Errorf("recipient not substituted into body:\n%s", draft.Body)
	}
	if !strings.Contains(draft.Body, "HVAC Upgrade") || !strings.Contains(draft.Body, "energy") {
		t.Errorf("tender fields not substituted into body:\n%s", draft.Body)
	}
	if draft.LastUpdated.IsZero() {
		t.Errorf("expected last_updated to be set")
	}

	if _, err := os.Stat(draft.File); err != nil {
		t.Errorf("generated document missing: %v", err)
	}
	if !strings.HasSuffix(draft.File, "HVAC_Upgrade_EOI_v1.docx") {
		t.Errorf("unexpected file name %q", draft.File)
	}
}

func TestCreateDraft_IndependentBodies(t *testing.T) {
	svc, repo, _ := newDraftFixture(t)
	repo.tenders[1] = models.Tender{ID: 1, Title: "X", Org: "FAAN"}

	first, err := svc.CreateDraft(context.Background(), 1, models.EOIKind, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.EditDraft(context.Background(), 1, 1, map[string]interface{}{"body": "edited body"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := svc.CreateDraft(context.Background(), 1, models.EOIKind, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Body == "edited body" {
		t.Errorf("new version must not inherit edits of an older version")
	}
	if second.Body != first.Body {
		t.Errorf("expected freshly rendered body to match the original render")
	}
}

func TestCreateDraft_TenderNotFound(t *testing.T) {
	svc, _, _ := newDraftFixture(t)

	_, err := svc.CreateDraft(context.Background(), 99, models.EOIKind, "")
	if statusOf(t, err) != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestEditDraft_TouchesLastUpdated(t *testing.T) {
	svc, repo, _ := newDraftFixture(t)
	repo.tenders[1] = models.Tender{ID: 1, Title: "X", Org: "FAAN"}

	created, err := svc.CreateDraft(context.Background(), 1, models.EOIKind, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	edited, err := svc.EditDraft(context.Background(), 1, 1, map[string]interface{}{
		"subject": "Re: tender",
		"cc":      "ops@tfml.ng",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if edited.Subject != "Re: tender" || edited.Cc != "ops@tfml.ng" {
		t.Errorf("unexpected edit result: %+v", edited)
	}
	if edited.LastUpdated.Before(created.LastUpdated) {
		t.Errorf("last_updated went backwards")
	}

	_, err = svc.EditDraft(context.Background(), 1, 1, map[string]interface{}{"bogus": true})
	if statusOf(t, err) != http.StatusBadRequest {
		t.Errorf("expected 400 for no valid fields, got %v", err)
	}
}

func TestAddAttachment_Dedupes(t *testing.T) {
	svc, repo, _ := newDraftFixture(t)
	repo.tenders[1] = models.Tender{ID: 1, Title: "X", Org: "FAAN"}

	if _, err := svc.CreateDraft(context.Background(), 1, models.EOIKind, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.AddAttachment(context.Background(), 1, 1, "docs/profile.pdf"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	draft, err := svc.AddAttachment(context.Background(), 1, 1, "docs/profile.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(draft.Attachments) != 1 {
		t.Errorf("expected single attachment after dedupe, got %v", draft.Attachments)
	}

	_, err = svc.AddAttachment(context.Background(), 1, 1, "")
	if statusOf(t, err) != http.StatusBadRequest {
		t.Errorf("expected 400 for empty path, got %v", err)
	}
}

func TestUpdateDraftStatus(t *testing.T) {
	svc, repo, _ := newDraftFixture(t)
	repo.tenders[1] = models.Tender{ID: 1, Title: "X", Org: "FAAN"}

	if _, err := svc.CreateDraft(context.Background(), 1, models.EOIKind, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	draft, err := svc.UpdateDraftStatus(context.Background(), 1, 1, "Ready")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if draft.Status != models.ReadyDraft {
		t.Errorf("expected Ready, got %q", draft.Status)
	}

	_, err = svc.UpdateDraftStatus(context.Background(), 1, 1, "Archived")
	if statusOf(t, err) != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown status, got %v", err)
	}
}

func TestDeleteDraft_KeepsOtherVersions(t *testing.T) {
	svc, repo, _ := newDraftFixture(t)
	repo.tenders[1] = models.Tender{ID: 1, Title: "X", Org: "FAAN"}

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateDraft(context.Background(), 1, models.EOIKind, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if err := svc.DeleteDraft(context.Background(), 1, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := repo.tenders[1]
	if len(stored.Drafts) != 2 {
		t.Fatalf("expected 2 drafts, got %d", len(stored.Drafts))
	}
	for _, d := range stored.Drafts {
		if d.Version == 2 {
			t.Errorf("version 2 was not removed")
		}
	}

	err := svc.DeleteDraft(context.Background(), 1, 2)
	if statusOf(t, err) != http.StatusNotFound {
		t.Errorf("expected 404 for missing version, got %v", err)
	}
}

func TestEmailDraft_SendsAndMarksSent(t *testing.T) {
	svc, repo, mail := newDraftFixture(t)
	repo.tenders[1] = models.Tender{ID: 1, Title: "X", Org: "FAAN"}

	if _, err := svc.CreateDraft(context.Background(), 1, models.EOIKind, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.AddAttachment(context.Background(), 1, 1, "docs/profile.pdf"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	draft, err := svc.EmailDraft(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if draft.Status != models.SentDraft {
		t.Errorf("expected Sent, got %q", draft.Status)
	}

	if len(mail.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(mail.sent))
	}
	msg := mail.sent[0]
	if msg.To != "procurement@faan.com" {
		t.Errorf("unexpected recipient %q", msg.To)
	}
	// Сгенерированный документ уходит вложением вместе с остальными.
	if len(msg.Attachments) != 2 || msg.Attachments[0] != "docs/profile.pdf" {
		t.Errorf("unexpected attachments %v", msg.Attachments)
	}
	if !strings.HasSuffix(msg.Attachments[1], ".docx") {
		t.Errorf("expected generated document last, got %v", msg.Attachments)
	}
}

func TestListDrafts_CollectsLibrary(t *testing.T) {
	svc, repo, _ := newDraftFixture(t)
	repo.tenders[1] = models.Tender{ID: 1, Title: "First", Org: "FAAN", Status: models.PendingTender, Deadline: "2025-09-01"}
	repo.tenders[2] = models.Tender{ID: 2, Title: "Second", Org: "MTN", Status: models.DraftTender}

	if _, err := svc.CreateDraft(context.Background(), 1, models.EOIKind, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.CreateDraft(context.Background(), 2, models.ProposalKind, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lib, err := svc.ListDrafts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lib) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(lib))
	}
	if lib[0].Tender != "First" || lib[0].Status != models.PendingTender || lib[0].Deadline != "2025-09-01" {
		t.Errorf("unexpected first entry: %+v", lib[0])
	}
	if lib[1].Type != models.ProposalKind {
		t.Errorf("unexpected second entry: %+v", lib[1])
	}
}
