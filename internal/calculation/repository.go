package calculation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trafficmanagerhub/hub/internal/db"
)

const recordColumns = `id, account_id, client_id, mode, input, result, created_at`

// Repository provê acesso à tabela calculations.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert grava o registro; ID e CreatedAt vêm preenchidos pelo serviço.
func (r *Repository) Insert(ctx context.Context, rec Record) (*Record, error) {
	query := `
        INSERT INTO calculations (id, account_id, client_id, mode, input, result, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ` + recordColumns

	row := db.Conn(ctx, r.pool).QueryRow(ctx, query, rec.ID, rec.AccountID, rec.ClientID, rec.Mode, []byte(rec.Input), []byte(rec.Result), rec.CreatedAt)
	return scanRecord(row)
}

// Get busca registro da conta.
func (r *Repository) Get(ctx context.Context, accountID, id uuid.UUID) (*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM calculations WHERE account_id = $1 AND id = $2`
	return scanRecord(db.Conn(ctx, r.pool).QueryRow(ctx, query, accountID, id))
}

// List devolve o histórico mais recente primeiro.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Record, error) {
	clauses := []string{"account_id = $1"}
	args := []any{filter.AccountID}
	idx := 2

	if filter.ClientID != nil {
		clauses = append(clauses, fmt.Sprintf("client_id = $%d", idx))
		args = append(args, *filter.ClientID)
		idx++
	}
	if filter.Mode != "" {
		clauses = append(clauses, fmt.Sprintf("mode = $%d", idx))
		args = append(args, filter.Mode)
		idx++
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + recordColumns + ` FROM calculations WHERE ` + strings.Join(clauses, " AND ") +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}

// Count conta cálculos da conta criados desde since.
func (r *Repository) Count(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error) {
	var n int
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT count(*) FROM calculations WHERE account_id = $1 AND created_at >= $2`, accountID, since).Scan(&n)
	return n, err
}

func scanRecord(row pgx.Row) (*Record, error) {
	var (
		rec           Record
		input, result []byte
	)
	if err := row.Scan(&rec.ID, &rec.AccountID, &rec.ClientID, &rec.Mode, &input, &result, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rec.Input = input
	rec.Result = result
	return &rec, nil
}
