package router

import (
	"net/http"

	"github.com/tfml/tender-console/internal/handlers"
)

func InitRoutes(tenderHandler *handlers.TenderHandler, draftHandler *handlers.DraftHandler, settingsHandler *handlers.SettingsHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/ping", handlers.PingHandler)

	mux.HandleFunc("GET /api/tenders", tenderHandler.GetTenders)
	mux.HandleFunc("POST /api/tenders/new", tenderHandler.CreateTender)
	mux.HandleFunc("GET /api/tenders/{tenderId}", tenderHandler.GetTender)
	mux.HandleFunc("PUT /api/tenders/{tenderId}/edit", tenderHandler.EditTender)
	mux.HandleFunc("PUT /api/tenders/{tenderId}/status", tenderHandler.UpdateTenderStatus)
	mux.HandleFunc("DELETE /api/tenders/{tenderId}", tenderHandler.DeleteTender)
	mux.HandleFunc("GET /api/dashboard", tenderHandler.GetDashboard)
	mux.HandleFunc("GET /api/notices", tenderHandler.GetNotices)
	mux.HandleFunc("POST /api/agent/run", tenderHandler.RunAgent)

	mux.HandleFunc("GET /api/drafts", draftHandler.GetDrafts)
	mux.HandleFunc("POST /api/tenders/{tenderId}/drafts/new", draftHandler.CreateDraft)
	mux.HandleFunc("PUT /api/drafts/{draftId}/edit", draftHandler.EditDraft)
	mux.HandleFunc("PUT /api/drafts/{draftId}/status", draftHandler.UpdateDraftStatus)
	mux.HandleFunc("POST /api/drafts/{draftId}/attachments", draftHandler.AddAttachment)
	mux.HandleFunc("POST /api/drafts/{draftId}/email", draftHandler.EmailDraft)
	mux.HandleFunc("DELETE /api/drafts/{draftId}", draftHandler.DeleteDraft)

	mux.HandleFunc("GET /api/settings", settingsHandler.GetSettings)
	mux.HandleFunc("PUT /api/settings", settingsHandler.UpdateSettings)

	return mux
}
