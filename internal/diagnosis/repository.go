package diagnosis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trafficmanagerhub/hub/internal/db"
)

const diagnosisColumns = `id, account_id, client_id, niche, input, report, html, source, model, created_at`

// Repository provê acesso à tabela diagnoses.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert grava o diagnóstico.
func (r *Repository) Insert(ctx context.Context, d Diagnosis) (*Diagnosis, error) {
	input, err := json.Marshal(d.Input)
	if err != nil {
		return nil, err
	}
	report, err := json.Marshal(d.Report)
	if err != nil {
		return nil, err
	}

	query := `
        INSERT INTO diagnoses (id, account_id, client_id, niche, input, report, html, source, model, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING ` + diagnosisColumns

	row := db.Conn(ctx, r.pool).QueryRow(ctx, query, d.ID, d.AccountID, d.ClientID, d.Niche, input, report, d.HTML, d.Source, d.Model, d.CreatedAt)
	return scanDiagnosis(row)
}

// Get busca diagnóstico da conta.
func (r *Repository) Get(ctx context.Context, accountID, id uuid.UUID) (*Diagnosis, error) {
	query := `SELECT ` + diagnosisColumns + ` FROM diagnoses WHERE account_id = $1 AND id = $2`
	return scanDiagnosis(db.Conn(ctx, r.pool).QueryRow(ctx, query, accountID, id))
}

// List devolve os diagnósticos mais recentes primeiro.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Diagnosis, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + diagnosisColumns + ` FROM diagnoses WHERE account_id = $1`
	args := []any{filter.AccountID}
	if filter.ClientID != nil {
		query += ` AND client_id = $2`
		args = append(args, *filter.ClientID)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Diagnosis{}
	for rows.Next() {
		d, err := scanDiagnosis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// Count conta diagnósticos gerados desde since; reaproveitamentos de cache
// não entram na conta.
func (r *Repository) Count(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error) {
	var n int
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
        SELECT count(*) FROM diagnoses
        WHERE account_id = $1 AND created_at >= $2 AND source <> 'cache'
    `, accountID, since).Scan(&n)
	return n, err
}

func scanDiagnosis(row pgx.Row) (*Diagnosis, error) {
	var (
		d             Diagnosis
		input, report []byte
	)
	if err := row.Scan(&d.ID, &d.AccountID, &d.ClientID, &d.Niche, &input, &report, &d.HTML, &d.Source, &d.Model, &d.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(input, &d.Input); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(report, &d.Report); err != nil {
		return nil, err
	}
	return &d, nil
}
