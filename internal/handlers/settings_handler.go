package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/tfml/tender-console/internal/session"
	"github.com/tfml/tender-console/internal/utils"
)

// SessionHeader - заголовок с токеном сеанса.
const SessionHeader = "X-Session-Token"

// SettingsHandler - структура для обработки HTTP-запросов настроек сеанса.
type SettingsHandler struct {
	Sessions *session.Store
	Logger   *log.Logger
}

// NewSettingsHandler создаёт новый экземпляр SettingsHandler.
func NewSettingsHandler(sessions *session.Store, logger *log.Logger) *SettingsHandler {
	return &SettingsHandler{Sessions: sessions, Logger: logger}
}

// GetSettings возвращает настройки сеанса. Запрос без токена открывает
// новый сеанс, токен возвращается в заголовке ответа.
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(SessionHeader)
	if token == "" {
		token = h.Sessions.NewSession()
	}
	w.Header().Set(SessionHeader, token)
	utils.SendJSON(w, h.Logger, h.Sessions.Get(token))
}

// UpdateSettings сохраняет настройки сеанса.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(SessionHeader)
	if token == "" {
		utils.SendErrorResponse(w, http.StatusBadRequest, "missing required header: "+SessionHeader)
		return
	}

	var settings session.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.Sessions.Put(token, settings)
	w.Header().Set(SessionHeader, token)
	utils.SendJSON(w, h.Logger, settings)
}
