package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tfml/tender-console/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// TenderRepository - интерфейс хранилища тендеров и их черновиков.
type TenderRepository interface {
	GetTenders(ctx context.Context) ([]models.Tender, error)
	GetTenderByID(ctx context.Context, id int64) (*models.Tender, error)
	SaveTender(ctx context.Context, tender *models.Tender) error
	DeleteTender(ctx context.Context, id int64) error
	NextID(ctx context.Context) (int64, error)
	ExistingTitles(ctx context.Context, titles []string) (map[string]bool, error)
}

// PostgresTenderRepository - реализация TenderRepository для базы данных.
type PostgresTenderRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresTenderRepository создаёт новый экземпляр PostgresTenderRepository.
func NewPostgresTenderRepository(db *pgxpool.Pool) *PostgresTenderRepository {
	return &PostgresTenderRepository{DB: db}
}

// GetTenders возвращает все тендеры вместе с черновиками.
// Битая запись не должна гасить весь дашборд: строка с нечитаемыми
// полями пропускается, нечитаемый JSON черновиков даёт пустой список.
func (r *PostgresTenderRepository) GetTenders(ctx context.Context) ([]models.Tender, error) {
	query := `SELECT id, title, org, sector, deadline, description, status, score, assignee, drafts
	          FROM tender ORDER BY id`

	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenders []models.Tender
	for rows.Next() {
		var tender models.Tender
		var draftsRaw []byte
		if err := rows.Scan(
			&tender.ID,
			&tender.Title,
			&tender.Org,
			&tender.Sector,
			&tender.Deadline,
			&tender.Description,
			&tender.Status,
			&tender.Score,
			&tender.Assignee,
			&draftsRaw); err != nil {
			continue
		}
		tender.Drafts = decodeDrafts(tender.ID, draftsRaw)
		tenders = append(tenders, tender)
	}
	return tenders, nil
}

// GetTenderByID возвращает один тендер по идентификатору.
func (r *PostgresTenderRepository) GetTenderByID(ctx context.Context, id int64) (*models.Tender, error) {
	query := `SELECT id, title, org, sector, deadline, description, status, score, assignee, drafts
	          FROM tender WHERE id = $1`

	var tender models.Tender
	var draftsRaw []byte
	err := r.DB.QueryRow(ctx, query, id).Scan(
		&tender.ID,
		&tender.Title,
		&tender.Org,
		&tender.Sector,
		&tender.Deadline,
		&tender.Description,
		&tender.Status,
		&tender.Score,
		&tender.Assignee,
		&draftsRaw,
	)
	if err != nil {
		return nil, err
	}
	tender.Drafts = decodeDrafts(tender.ID, draftsRaw)
	return &tender, nil
}

// SaveTender вставляет тендер или целиком заменяет существующую строку.
func (r *PostgresTenderRepository) SaveTender(ctx context.Context, tender *models.Tender) error {
	draftsRaw, err := encodeDrafts(tender.Drafts)
	if err != nil {
		return fmt.Errorf("failed to encode drafts: %w", err)
	}

	_, err = r.DB.Exec(ctx, `
       INSERT INTO tender (id, title, org, sector, deadline, description, status, score, assignee, drafts)
       VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
       ON CONFLICT (id) DO UPDATE SET
           title = EXCLUDED.title,
           org = EXCLUDED.org,
           sector = EXCLUDED.sector,
           deadline = EXCLUDED.deadline,
           description = EXCLUDED.description,
           status = EXCLUDED.status,
           score = EXCLUDED.score,
           assignee = EXCLUDED.assignee,
           drafts = EXCLUDED.drafts
   `,
		tender.ID,
		tender.Title,
		tender.Org,
		tender.Sector,
		tender.Deadline,
		tender.Description,
		tender.Status,
		tender.Score,
		tender.Assignee,
		draftsRaw)
	if err != nil {
		return fmt.Errorf("failed to save tender: %w", err)
	}
	return nil
}

// DeleteTender удаляет тендер вместе с черновиками. Повторное удаление - не ошибка.
func (r *PostgresTenderRepository) DeleteTender(ctx context.Context, id int64) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM tender WHERE id = $1`, id)
	return err
}

// NextID возвращает следующий свободный идентификатор тендера.
func (r *PostgresTenderRepository) NextID(ctx context.Context) (int64, error) {
	var next int64
	query := `SELECT COALESCE(MAX(id), 0) + 1 FROM tender`
	if err := r.DB.QueryRow(ctx, query).Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

// ExistingTitles возвращает, какие из переданных названий уже есть в базе.
func (r *PostgresTenderRepository) ExistingTitles(ctx context.Context, titles []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(titles))
	if len(titles) == 0 {
		return existing, nil
	}

	query := `SELECT title FROM tender WHERE title = ANY($1)`
	rows, err := r.DB.Query(ctx, query, pq.Array(titles))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		existing[title] = true
	}
	return existing, nil
}

func decodeDrafts(tenderID int64, raw []byte) []models.Draft {
	if len(raw) == 0 {
		return nil
	}
	var drafts []models.Draft
	if err := json.Unmarshal(raw, &drafts); err != nil {
		return nil
	}
	for i := range drafts {
		drafts[i].Normalize(tenderID)
	}
	return drafts
}

func encodeDrafts(drafts []models.Draft) ([]byte, error) {
	if drafts == nil {
		drafts = []models.Draft{}
	}
	return json.Marshal(drafts)
}
