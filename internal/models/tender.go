package models

import (
	"strings"
	"time"
)

type (
	TenderSector string // Сектор тендера
	TenderStatus string // Статус тендера
)

const (
	FacilitiesManagement TenderSector = "Facilities Management"
	Construction         TenderSector = "Construction"
	Energy               TenderSector = "Energy"
	OtherSector          TenderSector = "Other"

	DraftTender     TenderStatus = "Draft"     // Тендер в работе
	SubmittedTender TenderStatus = "Submitted" // Заявка подана
	PendingTender   TenderStatus = "Pending"   // Ожидает решения
	AwardedTender   TenderStatus = "Awarded"   // Контракт присуждён
	WonTender       TenderStatus = "Won"       // Тендер выигран
	LostTender      TenderStatus = "Lost"      // Тендер проигран
	RejectedTender  TenderStatus = "Rejected"  // Заявка отклонена
)

// Unassigned - имя, под которым учитываются тендеры без ответственного.
const Unassigned = "Unassigned"

// DeadlineLayout - строгий формат дедлайна YYYY-MM-DD.
const DeadlineLayout = "2006-01-02"

// KnownTenderStatuses перечисляет допустимые статусы тендера.
// Переходы между статусами намеренно не ограничены.
var KnownTenderStatuses = map[TenderStatus]bool{
	DraftTender:     true,
	SubmittedTender: true,
	PendingTender:   true,
	AwardedTender:   true,
	WonTender:       true,
	LostTender:      true,
	RejectedTender:  true,
}

// Tender представляет модель тендера.
type Tender struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Org         string       `json:"org"`
	Sector      TenderSector `json:"sector"`
	Deadline    string       `json:"deadline"`
	Description string       `json:"description"`
	Status      TenderStatus `json:"status"`
	Score       float64      `json:"score"`
	Assignee    string       `json:"assignee"`
	Drafts      []Draft      `json:"drafts"`
}

// TenderRequest представляет структуру запроса для создания тендера.
type TenderRequest struct {
	Title       string       `json:"title"`
	Org         string       `json:"org"`
	Sector      TenderSector `json:"sector"`
	Deadline    string       `json:"deadline"`
	Description string       `json:"description"`
	Status      TenderStatus `json:"status"`
	Score       float64      `json:"score"`
	Assignee    string       `json:"assignee"`
}

// DeadlineDate возвращает дедлайн тендера как дату.
// Пустой или нераспознанный дедлайн означает "без срока", а не ошибку.
func (t *Tender) DeadlineDate() (time.Time, bool) {
	return ParseDeadline(t.Deadline)
}

// ParseDeadline разбирает дату строго в формате YYYY-MM-DD.
func ParseDeadline(s string) (time.Time, bool) {
	d, err := time.ParseInLocation(DeadlineLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// IsWon сообщает, завершился ли тендер успехом.
func (s TenderStatus) IsWon() bool {
	return s == AwardedTender || s == WonTender
}

// IsLost сообщает, завершился ли тендер неудачей.
func (s TenderStatus) IsLost() bool {
	return s == LostTender || s == RejectedTender
}

// IsDecided сообщает, есть ли по тендеру финальное решение.
func (s TenderStatus) IsDecided() bool {
	return s.IsWon() || s.IsLost()
}

// NormalizeAssignee приводит пустого ответственного к Unassigned.
func NormalizeAssignee(assignee string) string {
	a := strings.TrimSpace(assignee)
	if a == "" {
		return Unassigned
	}
	return a
}
