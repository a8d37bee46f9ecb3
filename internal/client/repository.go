package client

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

const clientColumns = `id, account_id, name, coalesce(email, ''), coalesce(phone, ''), coalesce(company, ''), coalesce(niche, ''), status, monthly_budget::float8, coalesce(notes, ''), created_at, updated_at`

// Repository provê acesso à tabela clients.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create insere um cliente.
func (r *Repository) Create(ctx context.Context, input CreateInput) (*Client, error) {
	query := `
        INSERT INTO clients (account_id, name, email, phone, company, niche, status, monthly_budget, notes)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING ` + clientColumns

	row := db.Conn(ctx, r.pool).QueryRow(ctx, query,
		input.AccountID,
		input.Name,
		input.Email,
		input.Phone,
		input.Company,
		input.Niche,
		input.Status,
		input.MonthlyBudget,
		input.Notes,
	)
	return scanClient(row)
}

// Get busca cliente da conta.
func (r *Repository) Get(ctx context.Context, accountID, id uuid.UUID) (*Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE account_id = $1 AND id = $2`
	return scanClient(db.Conn(ctx, r.pool).QueryRow(ctx, query, accountID, id))
}

// List lista clientes aplicando filtros simples.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Client, error) {
	clauses := []string{"account_id = $1"}
	args := []any{filter.AccountID}
	idx := 2

	if len(filter.Status) > 0 {
		clauses = append(clauses, fmt.Sprintf("status = ANY($%d)", idx))
		args = append(args, filter.Status)
		idx++
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR company ILIKE $%d)", idx, idx))
		args = append(args, "%"+search+"%")
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

	query := `SELECT ` + clientColumns + ` FROM clients WHERE ` + strings.Join(clauses, " AND ") +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := []Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return clients, nil
}

// Update aplica alterações parciais.
func (r *Repository) Update(ctx context.Context, input UpdateInput) (*Client, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	set := func(column string, value any) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if input.Name != nil {
		set("name", *input.Name)
	}
	if input.Email != nil {
		set("email", *input.Email)
	}
	if input.Phone != nil {
		set("phone", *input.Phone)
	}
	if input.Company != nil {
		set("company", *input.Company)
	}
	if input.Niche != nil {
		set("niche", *input.Niche)
	}
	if input.Status != nil {
		set("status", *input.Status)
	}
	if input.MonthlyBudget != nil {
		set("monthly_budget", *input.MonthlyBudget)
	} else if input.ClearBudget {
		setParts = append(setParts, "monthly_budget = NULL")
	}
	if input.Notes != nil {
		set("notes", *input.Notes)
	}

	if len(setParts) == 0 {
		return r.Get(ctx, input.AccountID, input.ID)
	}

	setParts = append(setParts, "updated_at = now()")
	args = append(args, input.AccountID, input.ID)
	query := fmt.Sprintf(`
        UPDATE clients
        SET %s
        WHERE account_id = $%d AND id = $%d
        RETURNING %s
    `, strings.Join(setParts, ", "), idx, idx+1, clientColumns)

	return scanClient(db.Conn(ctx, r.pool).QueryRow(ctx, query, args...))
}

// Delete remove cliente da conta.
func (r *Repository) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM clients WHERE account_id = $1 AND id = $2`, accountID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Count devolve o total da carteira; clientes não são contados por período.
func (r *Repository) Count(ctx context.Context, accountID uuid.UUID, _ time.Time) (int, error) {
	var n int
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT count(*) FROM clients WHERE account_id = $1`, accountID).Scan(&n)
	return n, err
}

// CountByStatus agrupa a carteira por status.
func (r *Repository) CountByStatus(ctx context.Context, accountID uuid.UUID) (map[string]int, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `SELECT status, count(*) FROM clients WHERE account_id = $1 GROUP BY status`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int, len(Statuses))
	for _, s := range Statuses {
		out[s] = 0
	}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	if err := row.Scan(&c.ID, &c.AccountID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Niche, &c.Status, &c.MonthlyBudget, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
