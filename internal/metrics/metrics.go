package metrics

import (
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/tfml/tender-console/internal/models"
)

// Summary - агрегаты дашборда, детерминированно выведенные из снимка
// тендеров и текущей даты. Вычисление ничего не мутирует.
type Summary struct {
	Total      int              `json:"total"`
	Overdue    int              `json:"overdue"`
	Due3       int              `json:"due3"`
	Due7       int              `json:"due7"`
	DraftCount int              `json:"drafts"`
	InFlight   int              `json:"inflight"`
	Awarded    int              `json:"awarded"`
	WinRate    float64          `json:"win_rate"`
	Workload   map[string]int   `json:"workload"`
	Deadline30 []DeadlineBucket `json:"deadline_30"`
	Overdues   []models.Tender  `json:"overdue_list"`
	Soon       []models.Tender  `json:"soon_list"`
	Activity   []ActivityEntry  `json:"activity"`
}

// DeadlineBucket - количество дедлайнов на одну календарную дату.
type DeadlineBucket struct {
	Date    string `json:"date"`
	Tenders int    `json:"tenders"`
}

// ActivityEntry - одна запись ленты активности, по записи на черновик.
type ActivityEntry struct {
	When    time.Time           `json:"when"`
	Tender  string              `json:"tender"`
	Type    models.DocKind      `json:"type"`
	Version int                 `json:"version"`
	Status  models.TenderStatus `json:"status"`
	File    string              `json:"file"`
}

const (
	deadlineWindowDays = 30
	soonListLimit      = 10
)

// Compute считает агрегаты дашборда по снимку тендеров на дату today.
// Тендеры без распознаваемого дедлайна не попадают в просроченные и
// срочные, но учитываются в общем количестве.
func Compute(rows []models.Tender, today time.Time) *Summary {
	today = dateOnly(today)

	s := &Summary{
		Total:    len(rows),
		Workload: make(map[string]int, len(rows)),
	}

	deadline30 := make(map[string]int)
	decided, won := 0, 0

	for _, r := range rows {
		switch {
		case r.Status == models.DraftTender:
			s.DraftCount++
		case r.Status == models.SubmittedTender || r.Status == models.PendingTender:
			s.InFlight++
		}
		if r.Status.IsWon() {
			s.Awarded++
		}
		if r.Status.IsDecided() {
			decided++
			if r.Status.IsWon() {
				won++
			}
		}

		s.Workload[models.NormalizeAssignee(r.Assignee)]++

		d, ok := r.DeadlineDate()
		if !ok {
			continue
		}
		if d.Before(today) && !r.Status.IsDecided() {
			s.Overdue++
			s.Overdues = append(s.Overdues, r)
		}
		if within(d, today, 3) {
			s.Due3++
		}
		if within(d, today, 7) {
			s.Due7++
		}
		if within(d, today, deadlineWindowDays) {
			deadline30[d.Format(models.DeadlineLayout)]++
		}
		s.Soon = append(s.Soon, r)
	}

	s.WinRate = winRate(won, decided)
	s.Deadline30 = sortBuckets(deadline30)
	s.Soon = sortSoon(s.Soon)
	s.Activity = ActivityFeed(rows, time.Now())

	return s
}

// DueWithin возвращает тендеры с дедлайном в ближайшие n дней
// включительно, независимо от статуса.
func DueWithin(rows []models.Tender, today time.Time, n int) []models.Tender {
	today = dateOnly(today)
	var due []models.Tender
	for _, r := range rows {
		if d, ok := r.DeadlineDate(); ok && within(d, today, n) {
			due = append(due, r)
		}
	}
	return due
}

// CountDueIn возвращает число тендеров с дедлайном в ближайшие n дней.
func CountDueIn(rows []models.Tender, today time.Time, n int) int {
	return len(DueWithin(rows, today, n))
}

// ActivityFeed строит ленту активности по черновикам: время - mtime
// сгенерированного файла, если он ещё существует, иначе момент расчёта.
func ActivityFeed(rows []models.Tender, now time.Time) []ActivityEntry {
	var feed []ActivityEntry
	for _, r := range rows {
		for _, d := range r.Drafts {
			when, file := now, ""
			if d.File != "" {
				file = filepath.Base(d.File)
				if fi, err := os.Stat(d.File); err == nil {
					when = fi.ModTime()
				}
			}
			feed = append(feed, ActivityEntry{
				When:    when,
				Tender:  r.Title,
				Type:    d.Type,
				Version: d.Version,
				Status:  r.Status,
				File:    file,
			})
		}
	}
	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].When.After(feed[j].When)
	})
	return feed
}

func winRate(won, decided int) float64 {
	if decided == 0 {
		return 0.0
	}
	rate := float64(won) / float64(decided) * 100.0
	return math.Round(rate*10) / 10
}

// within сообщает, попадает ли дата в окно [today, today+n] включительно.
func within(d, today time.Time, n int) bool {
	end := today.AddDate(0, 0, n)
	return !d.Before(today) && !d.After(end)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sortBuckets(byDate map[string]int) []DeadlineBucket {
	buckets := make([]DeadlineBucket, 0, len(byDate))
	for date, n := range byDate {
		buckets = append(buckets, DeadlineBucket{Date: date, Tenders: n})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Date < buckets[j].Date
	})
	return buckets
}

func sortSoon(rows []models.Tender) []models.Tender {
	sort.SliceStable(rows, func(i, j int) bool {
		di, _ := rows[i].DeadlineDate()
		dj, _ := rows[j].DeadlineDate()
		return di.Before(dj)
	})
	if len(rows) > soonListLimit {
		rows = rows[:soonListLimit]
	}
	return rows
}
