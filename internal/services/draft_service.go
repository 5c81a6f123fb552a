package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tfml/tender-console/internal/docgen"
	"github.com/tfml/tender-console/internal/mailer"
	"github.com/tfml/tender-console/internal/models"
	"github.com/tfml/tender-console/internal/repository"
	"github.com/tfml/tender-console/internal/templates"

	"github.com/jackc/pgx/v5"
)

type DraftService struct {
	Repo      repository.TenderRepository
	Docs      *docgen.Writer
	Templates *templates.Loader
	Mail      mailer.Mailer
	DefaultTo string
}

// NewDraftService создаёт новый экземпляр DraftService.
func NewDraftService(repo repository.TenderRepository, docs *docgen.Writer, tmpl *templates.Loader, mail mailer.Mailer, defaultTo string) *DraftService {
	return &DraftService{
		Repo:      repo,
		Docs:      docs,
		Templates: tmpl,
		Mail:      mail,
		DefaultTo: defaultTo,
	}
}

// LibraryEntry - строка библиотеки черновиков.
type LibraryEntry struct {
	DraftID  string              `json:"draft_id"`
	Tender   string              `json:"tender"`
	Buyer    string              `json:"buyer"`
	Type     models.DocKind      `json:"type"`
	File     string              `json:"file"`
	Version  int                 `json:"version"`
	Status   models.TenderStatus `json:"status"`
	Deadline string              `json:"deadline"`
}

// CreateDraft создаёт очередную версию черновика для тендера, генерирует
// документ и прикрепляет черновик к тендеру. Версии растут монотонно и
// никогда не перенумеровываются. Если документ записать не удалось,
// черновик не появляется вовсе.
func (s *DraftService) CreateDraft(ctx context.Context, tenderID int64, kind models.DocKind, recipient string) (*models.Draft, error) {
	tender, err := s.getTender(ctx, tenderID)
	if err != nil {
		return nil, err
	}

	if kind == "" {
		kind = models.EOIKind
	}
	if recipient == "" {
		recipient = "Procurement Team"
	}

	version := models.NextDraftVersion(tender.Drafts)
	letter := s.Templates.Get(kind)
	data := templates.RenderData{
		Recipient: recipient,
		Title:     tender.Title,
		Sector:    string(tender.Sector),
		Summary:   tender.Description,
	}
	body := letter.RenderBody(data)

	path, err := s.Docs.Write(tender.Title, kind, version, body)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "error generating document")
	}

	draft := models.Draft{
		ID:          models.DraftID(tenderID, version),
		Type:        kind,
		File:        path,
		Version:     version,
		Status:      models.CreatedDraft,
		To:          s.suggestTo(tender.Org),
		Subject:     letter.RenderSubject(data),
		Body:        body,
		LastUpdated: time.Now(),
	}

	tender.Drafts = append(tender.Drafts, draft)
	if err := s.Repo.SaveTender(ctx, tender); err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to save draft")
	}
	return &draft, nil
}

// EditDraft меняет поля содержимого черновика и обновляет отметку
// последнего изменения.
func (s *DraftService) EditDraft(ctx context.Context, tenderID int64, version int, updateFields map[string]interface{}) (*models.Draft, error) {
	tender, draft, err := s.findDraft(ctx, tenderID, version)
	if err != nil {
		return nil, err
	}

	updated := 0
	if to, ok := updateFields["to"].(string); ok {
		draft.To = to
		updated++
	}
	if cc, ok := updateFields["cc"].(string); ok {
		draft.Cc = cc
		updated++
	}
	if subject, ok := updateFields["subject"].(string); ok {
		draft.Subject = subject
		updated++
	}
	if body, ok := updateFields["body"].(string); ok {
		draft.Body = body
		updated++
	}
	if value, ok := updateFields["value"].(string); ok {
		draft.Value = value
		updated++
	}
	if attachments, ok := updateFields["attachments"].([]interface{}); ok {
		for _, a := range attachments {
			if path, ok := a.(string); ok && path != "" {
				draft.AddAttachment(path)
			}
		}
		updated++
	}

	if updated == 0 {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "No valid fields to update")
	}

	draft.Touch(time.Now())
	if err := s.Repo.SaveTender(ctx, tender); err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to save draft")
	}
	return draft, nil
}

// UpdateDraftStatus меняет статус черновика. Жизненный цикл черновика
// не обязан повторять статус самого тендера.
func (s *DraftService) UpdateDraftStatus(ctx context.Context, tenderID int64, version int, status string) (*models.Draft, error) {
	if !models.KnownDraftStatuses[models.DraftStatus(status)] {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "invalid draft status")
	}

	tender, draft, err := s.findDraft(ctx, tenderID, version)
	if err != nil {
		return nil, err
	}

	draft.Status = models.DraftStatus(status)
	draft.Touch(time.Now())
	if err := s.Repo.SaveTender(ctx, tender); err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to save draft")
	}
	return draft, nil
}

// AddAttachment добавляет вложение к черновику без дублей.
func (s *DraftService) AddAttachment(ctx context.Context, tenderID int64, version int, path string) (*models.Draft, error) {
	if path == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "missing required field: path")
	}

	tender, draft, err := s.findDraft(ctx, tenderID, version)
	if err != nil {
		return nil, err
	}

	if draft.AddAttachment(path) {
		draft.Touch(time.Now())
		if err := s.Repo.SaveTender(ctx, tender); err != nil {
			return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to save draft")
		}
	}
	return draft, nil
}

// DeleteDraft убирает одну версию черновика из тендера. Оставшиеся
// версии сохраняют свои номера.
func (s *DraftService) DeleteDraft(ctx context.Context, tenderID int64, version int) error {
	tender, err := s.getTender(ctx, tenderID)
	if err != nil {
		return err
	}

	kept := tender.Drafts[:0]
	removed := false
	for _, d := range tender.Drafts {
		if d.Version == version {
			removed = true
			continue
		}
		kept = append(kept, d)
	}
	if !removed {
		return models.NewErrorResponse(http.StatusNotFound, "draft not found")
	}

	tender.Drafts = kept
	if err := s.Repo.SaveTender(ctx, tender); err != nil {
		return models.NewErrorResponse(http.StatusInternalServerError, "failed to save tender")
	}
	return nil
}

// EmailDraft отправляет черновик получателю и переводит его в статус Sent.
func (s *DraftService) EmailDraft(ctx context.Context, tenderID int64, version int) (*models.Draft, error) {
	tender, draft, err := s.findDraft(ctx, tenderID, version)
	if err != nil {
		return nil, err
	}

	to := draft.To
	if to == "" {
		to = s.DefaultTo
	}
	attachments := draft.Attachments
	if draft.File != "" {
		attachments = append(append([]string{}, attachments...), draft.File)
	}

	msg := mailer.Message{
		To:          to,
		Cc:          draft.Cc,
		Subject:     draft.Subject,
		Body:        draft.Body,
		Attachments: attachments,
	}
	if err := s.Mail.Send(ctx, msg); err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to send draft")
	}

	draft.Status = models.SentDraft
	draft.Touch(time.Now())
	if err := s.Repo.SaveTender(ctx, tender); err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to save draft")
	}
	return draft, nil
}

// ListDrafts собирает библиотеку черновиков по всем тендерам.
func (s *DraftService) ListDrafts(ctx context.Context) ([]LibraryEntry, error) {
	rows, err := s.Repo.GetTenders(ctx)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to load tenders")
	}

	var lib []LibraryEntry
	for _, r := range rows {
		for _, d := range r.Drafts {
			lib = append(lib, LibraryEntry{
				DraftID:  d.ID,
				Tender:   r.Title,
				Buyer:    r.Org,
				Type:     d.Type,
				File:     d.File,
				Version:  d.Version,
				Status:   r.Status,
				Deadline: r.Deadline,
			})
		}
	}
	return lib, nil
}

func (s *DraftService) getTender(ctx context.Context, id int64) (*models.Tender, error) {
	tender, err := s.Repo.GetTenderByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NewErrorResponse(http.StatusNotFound, "tender not found")
		}
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to load tender")
	}
	return tender, nil
}

func (s *DraftService) findDraft(ctx context.Context, tenderID int64, version int) (*models.Tender, *models.Draft, error) {
	tender, err := s.getTender(ctx, tenderID)
	if err != nil {
		return nil, nil, err
	}
	for i := range tender.Drafts {
		if tender.Drafts[i].Version == version {
			return tender, &tender.Drafts[i], nil
		}
	}
	return nil, nil, models.NewErrorResponse(http.StatusNotFound, "draft not found")
}

// suggestTo подбирает адрес получателя по названию организации:
// "MTN Nigeria" даёт procurement@mtn.com.
func (s *DraftService) suggestTo(org string) string {
	fields := strings.Fields(strings.ToLower(org))
	if len(fields) == 0 {
		return s.DefaultTo
	}
	var token strings.Builder
	for _, r := range fields[0] {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			token.WriteRune(r)
		}
	}
	if token.Len() == 0 {
		return s.DefaultTo
	}
	return "procurement@" + token.String() + ".com"
}
