package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trafficmanagerhub/hub/internal/db"
)

const uniqueViolation = "23505"

// Queries concentra o acesso a contas e sessões.
type Queries struct {
	pool *pgxpool.Pool
}

// New cria Queries sobre o pool informado.
func New(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

const accountColumns = `id, name, email, password_hash, plan, active, created_at`

// CreateAccount insere uma nova conta.
func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (Account, error) {
	const query = `
        INSERT INTO accounts (name, email, password_hash, plan)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + accountColumns

	row := q.pool.QueryRow(ctx, query, strings.TrimSpace(arg.Name), strings.ToLower(strings.TrimSpace(arg.Email)), arg.PasswordHash, arg.Plan)
	acc, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Account{}, ErrConflict
		}
		return Account{}, err
	}
	return acc, nil
}

// GetAccountByEmail busca conta pelo e-mail normalizado.
func (q *Queries) GetAccountByEmail(ctx context.Context, email string) (Account, error) {
	row := q.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, strings.ToLower(strings.TrimSpace(email)))
	return scanAccount(row)
}

// GetAccountByID busca conta pelo identificador.
func (q *Queries) GetAccountByID(ctx context.Context, id uuid.UUID) (Account, error) {
	row := db.Conn(ctx, q.pool).QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

// LockAccount trava a linha da conta até o fim da transação corrente.
// Fora de transação o lock é liberado na hora e não serve para nada.
func (q *Queries) LockAccount(ctx context.Context, id uuid.UUID) error {
	var locked uuid.UUID
	err := db.Conn(ctx, q.pool).QueryRow(ctx, `SELECT id FROM accounts WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// InsertRefreshToken persiste o hash de um refresh token.
func (q *Queries) InsertRefreshToken(ctx context.Context, arg InsertRefreshTokenParams) (RefreshToken, error) {
	const query = `
        INSERT INTO refresh_tokens (id, subject, audience, token_hash, expires_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, subject, audience, token_hash, expires_at, created_at, revoked
    `
	row := q.pool.QueryRow(ctx, query, arg.ID, arg.Subject, arg.Audience, arg.TokenHash, arg.ExpiresAt, arg.CreatedAt)
	return scanRefresh(row)
}

// GetRefreshTokenByHash busca token pelo hash.
func (q *Queries) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (RefreshToken, error) {
	const query = `
        SELECT id, subject, audience, token_hash, expires_at, created_at, revoked
        FROM refresh_tokens
        WHERE token_hash = $1
    `
	return scanRefresh(q.pool.QueryRow(ctx, query, tokenHash))
}

// RevokeRefreshToken marca o token como revogado.
func (q *Queries) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	tag, err := q.pool.Exec(ctx, `UPDATE refresh_tokens SET revoked = TRUE WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InvalidateOtherRefreshTokens revoga as demais sessões do mesmo subject.
func (q *Queries) InvalidateOtherRefreshTokens(ctx context.Context, subject uuid.UUID, audience, keepHash string) error {
	const query = `
        UPDATE refresh_tokens
        SET revoked = TRUE
        WHERE subject = $1 AND audience = $2 AND token_hash <> $3 AND revoked = FALSE
    `
	_, err := q.pool.Exec(ctx, query, subject, audience, keepHash)
	return err
}

func scanAccount(row pgx.Row) (Account, error) {
	var acc Account
	err := row.Scan(&acc.ID, &acc.Name, &acc.Email, &acc.PasswordHash, &acc.Plan, &acc.Active, &acc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	return acc, err
}

func scanRefresh(row pgx.Row) (RefreshToken, error) {
	var tok RefreshToken
	err := row.Scan(&tok.ID, &tok.Subject, &tok.Audience, &tok.TokenHash, &tok.ExpiresAt, &tok.CreatedAt, &tok.Revoked)
	if errors.Is(err, pgx.ErrNoRows) {
		return RefreshToken{}, ErrNotFound
	}
	return tok, err
}
