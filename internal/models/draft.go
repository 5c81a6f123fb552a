package models

import (
	"fmt"
	"time"
)

type (
	DocKind     string // Тип документа-черновика
	DraftStatus string // Статус черновика
)

const (
	EOIKind      DocKind = "EOI"      // Expression of Interest
	ProposalKind DocKind = "Proposal" // Полное предложение

	CreatedDraft   DraftStatus = "Draft"     // Черновик создан
	ReadyDraft     DraftStatus = "Ready"     // Черновик готов к отправке
	SentDraft      DraftStatus = "Sent"      // Черновик отправлен
	SubmittedDraft DraftStatus = "Submitted" // Черновик подан заказчику
)

// KnownDraftStatuses перечисляет допустимые статусы черновика.
var KnownDraftStatuses = map[DraftStatus]bool{
	CreatedDraft:   true,
	ReadyDraft:     true,
	SentDraft:      true,
	SubmittedDraft: true,
}

// Draft представляет версионированный документ-отклик внутри тендера.
// Обязательное ядро - type, file и version; остальные поля появились
// в более поздних версиях схемы и заполняются по умолчанию при загрузке.
type Draft struct {
	ID          string      `json:"id,omitempty"`
	Type        DocKind     `json:"type"`
	File        string      `json:"file"`
	Version     int         `json:"version"`
	Status      DraftStatus `json:"status,omitempty"`
	To          string      `json:"to,omitempty"`
	Cc          string      `json:"cc,omitempty"`
	Subject     string      `json:"subject,omitempty"`
	Body        string      `json:"body,omitempty"`
	Value       string      `json:"value,omitempty"`
	Attachments []string    `json:"attachments,omitempty"`
	LastUpdated time.Time   `json:"last_updated,omitempty"`
}

// DraftID собирает идентификатор черновика вида "<tenderId>:<version>".
func DraftID(tenderID int64, version int) string {
	return fmt.Sprintf("%d:%d", tenderID, version)
}

// Normalize заполняет поля, отсутствующие в старых записях.
func (d *Draft) Normalize(tenderID int64) {
	if d.Version < 1 {
		d.Version = 1
	}
	if d.ID == "" {
		d.ID = DraftID(tenderID, d.Version)
	}
	if d.Type == "" {
		d.Type = EOIKind
	}
	if d.Status == "" {
		d.Status = CreatedDraft
	}
	d.Attachments = dedupeStrings(d.Attachments)
}

// Touch обновляет отметку последнего изменения.
func (d *Draft) Touch(now time.Time) {
	d.LastUpdated = now
}

// AddAttachment добавляет путь к вложению без дублей.
func (d *Draft) AddAttachment(path string) bool {
	for _, a := range d.Attachments {
		if a == path {
			return false
		}
	}
	d.Attachments = append(d.Attachments, path)
	return true
}

// NextDraftVersion возвращает следующую версию черновика для тендера.
func NextDraftVersion(drafts []Draft) int {
	maxVersion := 0
	for _, d := range drafts {
		if d.Version > maxVersion {
			maxVersion = d.Version
		}
	}
	return maxVersion + 1
}

func dedupeStrings(in []string) []string {
	if len(in) < 2 {
		return in
	}
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
