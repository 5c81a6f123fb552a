package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/tfml/tender-console/internal/metrics"
	"github.com/tfml/tender-console/internal/models"
	"github.com/tfml/tender-console/internal/services"
	"github.com/tfml/tender-console/internal/utils"
)

// TenderHandler - структура для обработки HTTP-запросов по тендерам.
type TenderHandler struct {
	Service *services.TenderService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewTenderHandler создаёт новый экземпляр TenderHandler.
func NewTenderHandler(service *services.TenderService, logger *log.Logger, timeout time.Duration) *TenderHandler {
	return &TenderHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// GetTenders обрабатывает запросы на список тендеров с фильтрами.
func (h *TenderHandler) GetTenders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	query := r.URL.Query()
	filter := metrics.Filter{
		Query:   query.Get("query"),
		Sectors: query["sector"],
	}
	for _, s := range query["status"] {
		filter.Statuses = append(filter.Statuses, models.TenderStatus(s))
	}
	if from, ok := models.ParseDeadline(query.Get("from")); ok {
		filter.From = &from
	}
	if to, ok := models.ParseDeadline(query.Get("to")); ok {
		filter.To = &to
	}

	limit, offset, err := utils.ParseLimitOffset(query.Get("limit"), query.Get("offset"))
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	tenders, err := h.Service.FetchTenders(ctx, filter, time.Now())
	if err != nil {
		h.respondError(w, err, "failed to fetch tenders")
		return
	}

	if offset > len(tenders) {
		offset = len(tenders)
	}
	end := offset + limit
	if end > len(tenders) {
		end = len(tenders)
	}
	utils.SendJSON(w, h.Logger, tenders[offset:end])
}

// CreateTender обрабатывает запросы для создания тендера.
func (h *TenderHandler) CreateTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var tenderReq models.TenderRequest
	if err := json.NewDecoder(r.Body).Decode(&tenderReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tender, err := h.Service.CreateTender(ctx, tenderReq)
	if err != nil {
		h.respondError(w, err, "failed to create tender")
		return
	}
	utils.SendJSON(w, h.Logger, tender)
}

// GetTender обрабатывает запросы на один тендер.
func (h *TenderHandler) GetTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	id, err := utils.ParseTenderID(r.PathValue("tenderId"))
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	tender, err := h.Service.GetTender(ctx, id)
	if err != nil {
		h.respondError(w, err, "failed to fetch tender")
		return
	}
	utils.SendJSON(w, h.Logger, tender)
}

// EditTender обрабатывает запросы на частичное изменение тендера.
func (h *TenderHandler) EditTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	id, err := utils.ParseTenderID(r.PathValue("tenderId"))
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var updateFields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updateFields); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tender, err := h.Service.EditTender(ctx, id, updateFields)
	if err != nil {
		h.respondError(w, err, "failed to edit tender")
		return
	}
	utils.SendJSON(w, h.Logger, tender)
}

// UpdateTenderStatus меняет статус тендера.
func (h *TenderHandler) UpdateTenderStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	id, err := utils.ParseTenderID(r.PathValue("tenderId"))
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	tender, err := h.Service.UpdateTenderStatus(ctx, id, r.URL.Query().Get("status"))
	if err != nil {
		h.respondError(w, err, "failed to update tender status")
		return
	}
	utils.SendJSON(w, h.Logger, tender)
}

// DeleteTender удаляет тендер вместе с черновиками.
func (h *TenderHandler) DeleteTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	id, err := utils.ParseTenderID(r.PathValue("tenderId"))
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Service.DeleteTender(ctx, id); err != nil {
		h.respondError(w, err, "failed to delete tender")
		return
	}
	utils.SendJSON(w, h.Logger, map[string]string{"result": "deleted"})
}

// GetDashboard возвращает агрегаты дашборда по текущему снимку.
func (h *TenderHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	summary, err := h.Service.Dashboard(ctx, time.Now())
	if err != nil {
		h.respondError(w, err, "failed to compute dashboard")
		return
	}
	utils.SendJSON(w, h.Logger, summary)
}

// GetNotices возвращает предупреждения о приближающихся дедлайнах.
func (h *TenderHandler) GetNotices(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	days := 3
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			utils.SendErrorResponse(w, http.StatusBadRequest, "invalid days parameter, must be a non-negative integer")
			return
		}
		days = parsed
	}

	notices, err := h.Service.DeadlineNotices(ctx, time.Now(), days)
	if err != nil {
		h.respondError(w, err, "failed to compute notices")
		return
	}
	utils.SendJSON(w, h.Logger, notices)
}

// RunAgent запускает импорт тендеров из внешнего источника.
func (h *TenderHandler) RunAgent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	added, err := h.Service.ImportTenders(ctx)
	if err != nil {
		h.respondError(w, err, "failed to import tenders")
		return
	}
	utils.SendJSON(w, h.Logger, map[string]int{"added": added})
}

func (h *TenderHandler) respondError(w http.ResponseWriter, err error, fallback string) {
	h.Logger.Println(err)
	if errorResponse, ok := err.(*models.ErrorResponse); ok {
		utils.SendErrorResponse(w, errorResponse.StatusCode, errorResponse.Message)
		return
	}
	utils.SendErrorResponse(w, http.StatusInternalServerError, fallback)
}
