package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tfml/tender-console/internal/agent"
	"github.com/tfml/tender-console/internal/metrics"
	"github.com/tfml/tender-console/internal/models"
	"github.com/tfml/tender-console/internal/repository"

	"github.com/jackc/pgx/v5"
)

type TenderService struct {
	Repo   repository.TenderRepository
	Source agent.Source
}

// NewTenderService создаёт новый экземпляр TenderService.
func NewTenderService(repo repository.TenderRepository, source agent.Source) *TenderService {
	return &TenderService{Repo: repo, Source: source}
}

// FetchTenders возвращает снимок тендеров, пропущенный через фильтр.
func (s *TenderService) FetchTenders(ctx context.Context, f metrics.Filter, today time.Time) ([]models.Tender, error) {
	rows, err := s.Repo.GetTenders(ctx)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to load tenders")
	}
	return metrics.Apply(rows, f, today), nil
}

// Dashboard считает агрегаты дашборда по текущему снимку тендеров.
func (s *TenderService) Dashboard(ctx context.Context, today time.Time) (*metrics.Summary, error) {
	rows, err := s.Repo.GetTenders(ctx)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to load tenders")
	}
	return metrics.Compute(rows, today), nil
}

// GetTender возвращает один тендер по идентификатору.
func (s *TenderService) GetTender(ctx context.Context, id int64) (*models.Tender, error) {
	tender, err := s.Repo.GetTenderByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NewErrorResponse(http.StatusNotFound, "tender not found")
		}
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to load tender")
	}
	return tender, nil
}

// CreateTender создает новый тендер со следующим свободным идентификатором.
func (s *TenderService) CreateTender(ctx context.Context, tenderReq models.TenderRequest) (*models.Tender, error) {
	if tenderReq.Title == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "missing required field: title")
	}

	status := tenderReq.Status
	if status == "" {
		status = models.DraftTender
	}
	if !models.KnownTenderStatuses[status] {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "invalid tender status")
	}

	sector := tenderReq.Sector
	if sector == "" {
		sector = models.OtherSector
	}

	id, err := s.Repo.NextID(ctx)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to allocate tender id")
	}

	newTender := models.Tender{
		ID:          id,
		Title:       tenderReq.Title,
		Org:         tenderReq.Org,
		Sector:      sector,
		Deadline:    tenderReq.Deadline,
		Description: tenderReq.Description,
		Status:      status,
		Score:       clampScore(tenderReq.Score),
		Assignee:    tenderReq.Assignee,
		Drafts:      []models.Draft{},
	}
	if err := s.Repo.SaveTender(ctx, &newTender); err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to save tender")
	}
	return &newTender, nil
}

// EditTender меняет отдельные поля тендера, не трогая остальные.
func (s *TenderService) EditTender(ctx context.Context, id int64, updateFields map[string]interface{}) (*models.Tender, error) {
	tender, err := s.GetTender(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := 0
	if title, ok := updateFields["title"].(string); ok && title != "" {
		tender.Title = title
		updated++
	}
	if org, ok := updateFields["org"].(string); ok {
		tender.Org = org
		updated++
	}
	if sector, ok := updateFields["sector"].(string); ok && sector != "" {
		tender.Sector = models.TenderSector(sector)
		updated++
	}
	if deadline, ok := updateFields["deadline"].(string); ok {
		tender.Deadline = deadline
		updated++
	}
	if description, ok := updateFields["description"].(string); ok {
		tender.Description = description
		updated++
	}
	if assignee, ok := updateFields["assignee"].(string); ok {
		tender.Assignee = assignee
		updated++
	}
	if score, ok := updateFields["score"].(float64); ok {
		tender.Score = clampScore(score)
		updated++
	}

	if updated == 0 {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "No valid fields to update")
	}

	if err := s.Repo.SaveTender(ctx, tender); err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to save tender")
	}
	return tender, nil
}

// UpdateTenderStatus меняет статус тендера. Проверяется только, что
// статус известен: допустим любой переход между любыми статусами.
func (s *TenderService) UpdateTenderStatus(ctx context.Context, id int64, status string) (*models.Tender, error) {
	if status == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "missing required query parameter: status")
	}
	if !models.KnownTenderStatuses[models.TenderStatus(status)] {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "invalid tender status")
	}

	tender, err := s.GetTender(ctx, id)
	if err != nil {
		return nil, err
	}

	tender.Status = models.TenderStatus(status)
	if err := s.Repo.SaveTender(ctx, tender); err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to save tender")
	}
	return tender, nil
}

// DeleteTender удаляет тендер вместе с его черновиками. Удаление
// несуществующего тендера - не ошибка.
func (s *TenderService) DeleteTender(ctx context.Context, id int64) error {
	if err := s.Repo.DeleteTender(ctx, id); err != nil {
		return models.NewErrorResponse(http.StatusInternalServerError, "failed to delete tender")
	}
	return nil
}

// Notice - предупреждение о приближающемся дедлайне тендера.
type Notice struct {
	TenderID int64  `json:"tender_id"`
	Title    string `json:"title"`
	Deadline string `json:"deadline"`
	Message  string `json:"message"`
}

// DeadlineNotices возвращает предупреждения по тендерам, дедлайн которых
// наступает в ближайшие days дней. Просроченные тендеры сюда не входят:
// они живут в списке overdue дашборда.
func (s *TenderService) DeadlineNotices(ctx context.Context, today time.Time, days int) ([]Notice, error) {
	rows, err := s.Repo.GetTenders(ctx)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to load tenders")
	}

	var notices []Notice
	for _, r := range metrics.DueWithin(rows, today, days) {
		title := r.Title
		if title == "" {
			title = "Untitled"
		}
		notices = append(notices, Notice{
			TenderID: r.ID,
			Title:    title,
			Deadline: r.Deadline,
			Message:  fmt.Sprintf("Tender %q is due on %s", title, r.Deadline),
		})
	}
	return notices, nil
}

// ImportTenders забирает тендеры из внешнего источника и добавляет те,
// чьих названий ещё нет в базе. При ошибке источника ничего не сохраняется.
func (s *TenderService) ImportTenders(ctx context.Context) (int, error) {
	if s.Source == nil {
		return 0, models.NewErrorResponse(http.StatusBadRequest, "tender source is not configured")
	}

	incoming, err := s.Source.Fetch(ctx)
	if err != nil {
		return 0, models.NewErrorResponse(http.StatusBadGateway, "tender source unavailable")
	}

	titles := make([]string, 0, len(incoming))
	for _, item := range incoming {
		if item.Title != "" {
			titles = append(titles, item.Title)
		}
	}

	existing, err := s.Repo.ExistingTitles(ctx, titles)
	if err != nil {
		return 0, models.NewErrorResponse(http.StatusInternalServerError, "failed to check existing tenders")
	}

	nextID, err := s.Repo.NextID(ctx)
	if err != nil {
		return 0, models.NewErrorResponse(http.StatusInternalServerError, "failed to allocate tender id")
	}

	added := 0
	for _, item := range incoming {
		if item.Title == "" || existing[item.Title] {
			continue
		}
		existing[item.Title] = true

		status := models.TenderStatus(item.Status)
		if !models.KnownTenderStatuses[status] {
			status = models.PendingTender
		}
		sector := models.TenderSector(item.Sector)
		if sector == "" {
			sector = models.OtherSector
		}

		tender := models.Tender{
			ID:          nextID,
			Title:       item.Title,
			Org:         item.Org,
			Sector:      sector,
			Deadline:    item.Deadline,
			Description: item.Description,
			Status:      status,
			Score:       clampScore(item.Score),
			Drafts:      []models.Draft{},
		}
		if err := s.Repo.SaveTender(ctx, &tender); err != nil {
			return added, models.NewErrorResponse(http.StatusInternalServerError, "failed to save imported tender")
		}
		nextID++
		added++
	}
	return added, nil
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
