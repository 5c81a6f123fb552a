package metrics

import (
	"strings"
	"time"

	"github.com/tfml/tender-console/internal/models"
)

// Filter - составной фильтр списка тендеров. Пустое множество статусов
// или секторов означает отсутствие ограничения.
type Filter struct {
	Query    string
	Statuses []models.TenderStatus
	Sectors  []string
	From     *time.Time
	To       *time.Time
}

// shortcut - сохранённый быстрый запрос: ключевое слово и предикат по дате.
type shortcut struct {
	keyword string
	matches func(deadline time.Time, today time.Time) bool
}

// Порядок важен: "due this week" проверяется раньше "overdue".
var shortcuts = []shortcut{
	{
		keyword: "due this week",
		matches: func(d, today time.Time) bool {
			return !d.After(today.AddDate(0, 0, 7))
		},
	},
	{
		keyword: "overdue",
		matches: func(d, today time.Time) bool {
			return d.Before(today)
		},
	},
}

// Apply применяет фильтр к снимку тендеров. Распознанный быстрый запрос
// замещает собой весь остальной фильтр, включая явный диапазон дат, -
// это зафиксированное поведение, а не обязательно желаемое.
func Apply(rows []models.Tender, f Filter, today time.Time) []models.Tender {
	today = dateOnly(today)

	if sc, ok := matchShortcut(f.Query); ok {
		var out []models.Tender
		for _, r := range rows {
			if d, parsed := r.DeadlineDate(); parsed && sc.matches(d, today) {
				out = append(out, r)
			}
		}
		return out
	}

	var out []models.Tender
	for _, r := range rows {
		if !matchQuery(&r, f.Query) {
			continue
		}
		if !containsStatus(f.Statuses, r.Status) {
			continue
		}
		if !containsSector(f.Sectors, r.Sector) {
			continue
		}
		if !matchDateRange(&r, f.From, f.To) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchShortcut(query string) (*shortcut, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, false
	}
	for i := range shortcuts {
		if strings.Contains(q, shortcuts[i].keyword) {
			return &shortcuts[i], true
		}
	}
	return nil, false
}

func matchQuery(t *models.Tender, query string) bool {
	if query == "" {
		return true
	}
	haystack := strings.ToLower(t.Title + " " + t.Org)
	return strings.Contains(haystack, strings.ToLower(query))
}

// Тендер без распознаваемого дедлайна проходит любой диапазон дат.
func matchDateRange(t *models.Tender, from, to *time.Time) bool {
	d, ok := t.DeadlineDate()
	if !ok {
		return true
	}
	if from != nil && d.Before(dateOnly(*from)) {
		return false
	}
	if to != nil && d.After(dateOnly(*to)) {
		return false
	}
	return true
}

func containsStatus(set []models.TenderStatus, status models.TenderStatus) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

func containsSector(set []string, sector models.TenderSector) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if models.TenderSector(s) == sector {
			return true
		}
	}
	return false
}
