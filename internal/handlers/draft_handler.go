package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/tfml/tender-console/internal/models"
	"github.com/tfml/tender-console/internal/services"
	"github.com/tfml/tender-console/internal/session"
	"github.com/tfml/tender-console/internal/utils"
)

// DraftHandler - структура для обработки HTTP-запросов по черновикам.
type DraftHandler struct {
	Service  *services.DraftService
	Sessions *session.Store
	Logger   *log.Logger
	Timeout  time.Duration
}

// NewDraftHandler создаёт новый экземпляр DraftHandler.
func NewDraftHandler(service *services.DraftService, sessions *session.Store, logger *log.Logger, timeout time.Duration) *DraftHandler {
	return &DraftHandler{
		Service:  service,
		Sessions: sessions,
		Logger:   logger,
		Timeout:  timeout,
	}
}

// GetDrafts возвращает библиотеку черновиков по всем тендерам.
func (h *DraftHandler) GetDrafts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	lib, err := h.Service.ListDrafts(ctx)
	if err != nil {
		h.respondError(w, err, "failed to fetch drafts")
		return
	}
	utils.SendJSON(w, h.Logger, lib)
}

// CreateDraft создаёт новую версию черновика и генерирует документ.
func (h *DraftHandler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	tenderID, err := utils.ParseTenderID(r.PathValue("tenderId"))
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Kind      models.DocKind `json:"kind"`
		Recipient string         `json:"recipient"`
	}
	if r.Body != nil {
		// Пустое тело допустимо: тип и получатель возьмутся по умолчанию.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Recipient == "" {
		settings := h.Sessions.Get(r.Header.Get(SessionHeader))
		req.Recipient = settings.DefaultRecipient
	}

	draft, err := h.Service.CreateDraft(ctx, tenderID, req.Kind, req.Recipient)
	if err != nil {
		h.respondError(w, err, "failed to create draft")
		return
	}
	utils.SendJSON(w, h.Logger, draft)
}

// EditDraft меняет поля содержимого черновика.
func (h *DraftHandler) EditDraft(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	tenderID, version, err := utils.ParseDraftID(r.PathValue("draftId"))
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var updateFields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updateFields); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft, err := h.Service.EditDraft(ctx, tenderID, version, updateFields)
	if err != nil {
		h.respondError(w, err, "failed to edit draft")
		return
	}
	utils.SendJSON(w, h.Logger, draft)
}

// UpdateDraftStatus меняет статус черновика.
func (h *DraftHandler) UpdateDraftStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	tenderID, version, err := utils.ParseDraftID(r.PathValue("draftId"))
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	draft, err := h.Service.UpdateDraftStatus(ctx, tenderID, version, r.URL.Query().Get("status"))
	if err != nil {
		h.respondError(w, err, "failed to update draft status")
		return
	}
	utils.SendJSON(w, h.Logger, draft)
}

// AddAttachment прикрепляет файл к черновику.
func (h *DraftHandler) AddAttachment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	tenderID, version, err := utils.ParseDraftID(r.PathValue("draftId"))
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft, err := h.Service.AddAttachment(ctx, tenderID, version, req.Path)
	if err != nil {
		h.respondError(w, err, "failed to add attachment")
		return
	}
	utils.SendJSON(w, h.Logger, draft)
}

// EmailDraft отправляет черновик по почте.
func (h *DraftHandler) EmailDraft(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	tenderID, version, err := utils.ParseDraftID(r.PathValue("draftId"))
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	draft, err := h.Service.EmailDraft(ctx, tenderID, version)
	if err != nil {
		h.respondError(w, err, "failed to email draft")
		return
	}
	utils.SendJSON(w, h.Logger, draft)
}

// DeleteDraft удаляет одну версию черновика.
func (h *DraftHandler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	tenderID, version, err := utils.ParseDraftID(r.PathValue("draftId"))
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Service.DeleteDraft(ctx, tenderID, version); err != nil {
		h.respondError(w, err, "failed to delete draft")
		return
	}
	utils.SendJSON(w, h.Logger, map[string]string{"result": "deleted"})
}

func (h *DraftHandler) respondError(w http.ResponseWriter, err error, fallback string) {
	h.Logger.Println(err)
	if errorResponse, ok := err.(*models.ErrorResponse); ok {
		utils.SendErrorResponse(w, errorResponse.StatusCode, errorResponse.Message)
		return
	}
	utils.SendErrorResponse(w, http.StatusInternalServerError, fallback)
}
