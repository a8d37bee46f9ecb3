package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, account_id, client_id, title, description, kind, status, due_at, completed_at, created_at, updated_at`

// Repository provê acesso à tabela tasks.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create insere tarefa.
func (r *Repository) Create(ctx context.Context, input CreateInput) (*Task, error) {
	query := `
        INSERT INTO tasks (account_id, client_id, title, description, kind, status, due_at, completed_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING ` + taskColumns

	row := r.pool.QueryRow(ctx, query,
		input.AccountID,
		input.ClientID,
		input.Title,
		input.Description,
		input.Kind,
		input.Status,
		input.DueAt,
		input.CompletedAt,
	)
	return scanTask(row)
}

// Get busca tarefa da conta.
func (r *Repository) Get(ctx context.Context, accountID, id uuid.UUID) (*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE account_id = $1 AND id = $2`
	return scanTask(r.pool.QueryRow(ctx, query, accountID, id))
}

// List lista tarefas ordenadas pelo vencimento.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Task, error) {
	clauses := []string{"account_id = $1"}
	args := []any{filter.AccountID}
	idx := 2

	add := func(clause string, value any) {
		clauses = append(clauses, fmt.Sprintf(clause, idx))
		args = append(args, value)
		idx++
	}

	if filter.ClientID != nil {
		add("client_id = $%d", *filter.ClientID)
	}
	if len(filter.Status) > 0 {
		add("status = ANY($%d)", filter.Status)
	}
	if filter.Kind != "" {
		add("kind = $%d", filter.Kind)
	}
	if filter.DueFrom != nil {
		add("due_at >= $%d", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		add("due_at < $%d", *filter.DueTo)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + strings.Join(clauses, " AND ") +
		fmt.Sprintf(" ORDER BY due_at ASC NULLS LAST, created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return tasks, nil
}

// Update aplica alterações parciais.
func (r *Repository) Update(ctx context.Context, input UpdateInput) (*Task, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	set := func(column string, value any) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if input.ClientID != nil {
		set("client_id", *input.ClientID)
	} else if input.ClearClient {
		setParts = append(setParts, "client_id = NULL")
	}
	if input.Title != nil {
		set("title", *input.Title)
	}
	if input.Description != nil {
		set("description", *input.Description)
	}
	if input.DueAt != nil {
		set("due_at", *input.DueAt)
	} else if input.ClearDue {
		setParts = append(setParts, "due_at = NULL")
	}
	if input.Status != nil {
		set("status", *input.Status)
		if input.CompletedAt != nil {
			set("completed_at", *input.CompletedAt)
		} else {
			setParts = append(setParts, "completed_at = NULL")
		}
	}

	if len(setParts) == 0 {
		return r.Get(ctx, input.AccountID, input.ID)
	}

	setParts = append(setParts, "updated_at = now()")
	args = append(args, input.AccountID, input.ID)
	query := fmt.Sprintf(`
        UPDATE tasks
        SET %s
        WHERE account_id = $%d AND id = $%d
        RETURNING %s
    `, strings.Join(setParts, ", "), idx, idx+1, taskColumns)

	return scanTask(r.pool.QueryRow(ctx, query, args...))
}

// Delete remove tarefa da conta.
func (r *Repository) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE account_id = $1 AND id = $2`, accountID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountOpen conta tarefas pendentes ou em andamento.
func (r *Repository) CountOpen(ctx context.Context, accountID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
        SELECT count(*) FROM tasks
        WHERE account_id = $1 AND status IN ('pending', 'in_progress')
    `, accountID).Scan(&n)
	return n, err
}

// CountMeetingsBetween conta reuniões abertas marcadas no intervalo [from, to).
func (r *Repository) CountMeetingsBetween(ctx context.Context, accountID uuid.UUID, from, to time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
        SELECT count(*) FROM tasks
        WHERE account_id = $1 AND kind = 'meeting' AND status IN ('pending', 'in_progress')
          AND due_at >= $2 AND due_at < $3
    `, accountID, from, to).Scan(&n)
	return n, err
}

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	if err := row.Scan(&t.ID, &t.AccountID, &t.ClientID, &t.Title, &t.Description, &t.Kind, &t.Status, &t.DueAt, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}
