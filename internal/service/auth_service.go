package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/trafficmanagerhub/hub/internal/auth"
	"github.com/trafficmanagerhub/hub/internal/plan"
	"github.com/trafficmanagerhub/hub/internal/repo"
	"github.com/trafficmanagerhub/hub/internal/util"
)

var (
	// ErrInvalidCredentials indica falha na autenticação.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrAccountDisabled indica conta desativada.
	ErrAccountDisabled = errors.New("conta desativada")
	// ErrRefreshInvalid indica refresh token inválido ou expirado.
	ErrRefreshInvalid = errors.New("refresh token inválido")
	// ErrEmailTaken indica e-mail já cadastrado.
	ErrEmailTaken = errors.New("e-mail já cadastrado")
)

type authRepository interface {
	CreateAccount(ctx context.Context, arg repo.CreateAccountParams) (repo.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (repo.Account, error)
	GetAccountByID(ctx context.Context, id uuid.UUID) (repo.Account, error)
	InsertRefreshToken(ctx context.Context, arg repo.InsertRefreshTokenParams) (repo.RefreshToken, error)
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (repo.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	InvalidateOtherRefreshTokens(ctx context.Context, subject uuid.UUID, audience, keepHash string) error
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// AuthService concentra cadastro, login e sessões das contas.
type AuthService struct {
	repo       authRepository
	redis      redisCommander
	jwt        *auth.JWTManager
	refreshTTL time.Duration
}

// NewAuthService cria novo serviço.
func NewAuthService(r *repo.Queries, redisClient *redis.Client, jwtMgr *auth.JWTManager, refreshTTL time.Duration) *AuthService {
	return &AuthService{repo: r, redis: redisClient, jwt: jwtMgr, refreshTTL: refreshTTL}
}

// JWT expõe gerenciador de JWT (útil em middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// LoginResult representa retorno padrão de autenticações.
type LoginResult struct {
	AccessToken   string
	RefreshToken  string
	RefreshExpiry time.Time
	Profile       *Profile
}

// Profile descreve o gestor autenticado.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Plan      string    `json:"plan"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterInput reúne os dados de cadastro.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register cria a conta no plano gratuito e já abre sessão.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*LoginResult, error) {
	if err := util.RequireString(input.Name, "nome"); err != nil {
		return nil, &ValidationError{Messages: []string{err.Error()}}
	}
	if err := util.ValidateEmail(input.Email); err != nil {
		return nil, &ValidationError{Messages: []string{err.Error()}}
	}
	if err := util.ValidatePassword(input.Password); err != nil {
		return nil, &ValidationError{Messages: []string{err.Error()}}
	}

	hash, err := auth.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	acc, err := s.repo.CreateAccount(ctx, repo.CreateAccountParams{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Plan:         plan.CodeFree,
	})
	if err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	log.Info().Str("account_id", acc.ID.String()).Msg("conta criada")
	return s.openSession(ctx, acc)
}

// Login autentica por e-mail e senha.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	acc, err := s.repo.GetAccountByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			auth.VerifyDummy(password)
			log.Warn().Msg("login: conta não encontrada")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.Verify(password, acc.PasswordHash)
	if err != nil {
		log.Warn().Err(err).Msg("login: verify password failed")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		log.Warn().Str("account_id", acc.ID.String()).Msg("login: senha inválida")
		return nil, ErrInvalidCredentials
	}
	if !acc.Active {
		return nil, ErrAccountDisabled
	}

	return s.openSession(ctx, acc)
}

// Refresh troca refresh token por novos tokens, revogando o anterior.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*LoginResult, error) {
	if rawToken == "" {
		return nil, ErrRefreshInvalid
	}

	hash := auth.HashRefreshToken(rawToken)
	record, err := s.repo.GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}

	if record.Revoked || util.Now().After(record.ExpiresAt) || record.Audience != auth.Audience {
		return nil, ErrRefreshInvalid
	}

	redisKey := auth.RefreshRedisKey(auth.Audience, hash)
	status, err := s.redis.Get(ctx, redisKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRefreshInvalid
	}
	if err != nil {
		return nil, err
	}
	if status != "active" {
		return nil, ErrRefreshInvalid
	}

	acc, err := s.repo.GetAccountByID(ctx, record.Subject)
	if err != nil {
		return nil, err
	}
	if !acc.Active {
		return nil, ErrAccountDisabled
	}

	if err := s.revoke(ctx, hash); err != nil {
		return nil, err
	}

	return s.openSession(ctx, acc)
}

// Logout revoga refresh token atual.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	return s.revoke(ctx, auth.HashRefreshToken(rawToken))
}

// GetMe retorna o perfil da conta autenticada.
func (s *AuthService) GetMe(ctx context.Context, accountID uuid.UUID) (*Profile, error) {
	acc, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return toProfile(acc), nil
}

func (s *AuthService) openSession(ctx context.Context, acc repo.Account) (*LoginResult, error) {
	roles := []string{auth.RoleConsultant}
	token, _, err := s.jwt.GenerateAccessToken(acc.ID, acc.Plan, roles)
	if err != nil {
		return nil, err
	}

	refresh, err := auth.NewRefreshToken(s.refreshTTL)
	if err != nil {
		return nil, err
	}
	if err := s.persistRefresh(ctx, acc.ID, refresh); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:   token,
		RefreshToken:  refresh.Raw,
		RefreshExpiry: refresh.ExpiresAt,
		Profile:       toProfile(acc),
	}, nil
}

func (s *AuthService) persistRefresh(ctx context.Context, subject uuid.UUID, tok auth.RefreshToken) error {
	_, err := s.repo.InsertRefreshToken(ctx, repo.InsertRefreshTokenParams{
		ID:        uuid.New(),
		Subject:   subject,
		Audience:  auth.Audience,
		TokenHash: tok.Hash,
		ExpiresAt: tok.ExpiresAt,
		CreatedAt: util.Now(),
	})
	if err != nil {
		return err
	}

	if err := s.repo.InvalidateOtherRefreshTokens(ctx, subject, auth.Audience, tok.Hash); err != nil {
		return err
	}

	return s.redis.Set(ctx, auth.RefreshRedisKey(auth.Audience, tok.Hash), "active", time.Until(tok.ExpiresAt)).Err()
}

func (s *AuthService) revoke(ctx context.Context, hash string) error {
	if err := s.repo.RevokeRefreshToken(ctx, hash); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if err := s.redis.Del(ctx, auth.RefreshRedisKey(auth.Audience, hash)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

func toProfile(acc repo.Account) *Profile {
	return &Profile{
		ID:        acc.ID.String(),
		Name:      acc.Name,
		Email:     acc.Email,
		Plan:      acc.Plan,
		Roles:     []string{auth.RoleConsultant},
		CreatedAt: acc.CreatedAt,
	}
}
