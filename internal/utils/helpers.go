package utils

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/tfml/tender-console/internal/models"
)

// SendErrorResponse отправляет ошибку в формате JSON
func SendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := models.ErrorResponse{
		StatusCode: statusCode,
		Message:    message,
	}
	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		log.Println(err)
	}
}

// SendJSON отправляет успешный ответ в формате JSON
func SendJSON(w http.ResponseWriter, logger *log.Logger, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Println(err)
	}
}

// ParseLimitOffset обрабатывает limit и offset
func ParseLimitOffset(limitStr, offsetStr string) (int, int, error) {
	var limit, offset int
	var err error

	if limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 || limit > 100 {
			return 0, 0, fmt.Errorf("invalid limit parameter, must be a positive integer [0:100]")
		}
	} else {
		limit = 20
	}

	if offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset parameter, must be a non-negative integer")
		}
	} else {
		offset = 0
	}

	return limit, offset, nil
}

// ParseTenderID разбирает идентификатор тендера из пути запроса.
func ParseTenderID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid tenderId parameter: %s", raw)
	}
	return id, nil
}

// ParseDraftID разбирает составной идентификатор черновика "<tenderId>:<version>".
func ParseDraftID(raw string) (int64, int, error) {
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid draftId parameter: %s", raw)
	}
	tenderID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || tenderID <= 0 {
		return 0, 0, fmt.Errorf("invalid draftId parameter: %s", raw)
	}
	version, err := strconv.Atoi(parts[1])
	if err != nil || version <= 0 {
		return 0, 0, fmt.Errorf("invalid draftId parameter: %s", raw)
	}
	return tenderID, version, nil
}
