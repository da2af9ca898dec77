package service

import (
	"context"
	"errors"
	"time"

	"go-coordinator/core/cache"
	"go-coordinator/core/clock"
	"go-coordinator/core/config"
	"go-coordinator/core/constants"
	appErrors "go-coordinator/core/errors"
	"go-coordinator/core/logger"
	"go-coordinator/core/metrics"
	"go-coordinator/core/middleware"
	"go-coordinator/core/token"
	"go-coordinator/core/utils"
	"go-coordinator/modules/auth/dto"
	"go-coordinator/modules/auth/entity"
	"go-coordinator/modules/auth/repository"
)

var ErrUnknownAdministrator = errors.New("unknown administrator")

// dummyHash keeps the cost of a login for an unknown username equal to one
// for a known username with a wrong password.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3ZfKp.9HhS5tt1p7Xcq7Mce"

type AuthServiceInterface interface {
	Login(ctx context.Context, req *dto.LoginRequest, origin middleware.AuditInfo) (*dto.LoginResponse, *appErrors.AppError)
	CreateTokenFor(ctx context.Context, username string) (string, error)
	ValidateToken(ctx context.Context, raw string, origin middleware.AuditInfo) bool
	RegisterAdministrator(ctx context.Context, req *dto.RegisterAdministratorRequest) (*dto.AdministratorResponse, *appErrors.AppError)
	ListAdministrators(ctx context.Context) ([]dto.AdministratorResponse, *appErrors.AppError)
	SeedAdministrators(ctx context.Context, seeds []config.AdminSeed) error
}

type AuthService struct {
	repo     repository.AdministratorRepositoryInterface
	cache    cache.Cache
	issuer   *token.Issuer
	auth     token.TokenAuthenticator
	clock    clock.Clock
	lifespan time.Duration
}

func NewAuthService(
	repo repository.AdministratorRepositoryInterface,
	c cache.Cache,
	issuer *token.Issuer,
	auth token.TokenAuthenticator,
	clk clock.Clock,
	lifespan time.Duration,
) *AuthService {
	if clk == nil {
		clk = clock.Real()
	}
	if lifespan <= 0 {
		lifespan = constants.DefaultTokenLifespan
	}
	return &AuthService{
		repo:     repo,
		cache:    c,
		issuer:   issuer,
		auth:     auth,
		clock:    clk,
		lifespan: lifespan,
	}
}

// Login checks credentials and issues a token. Every failure, including a
// throttled username, is the same invalid-input error.
func (service *AuthService) Login(ctx context.Context, req *dto.LoginRequest, origin middleware.AuditInfo) (*dto.LoginResponse, *appErrors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultTimeout)
	defer cancel()

	invalid := appErrors.NewAppError(appErrors.ErrInvalidInput, "invalid credentials", nil)
	loginKey := constants.RedisKeyLoginAttempt + req.Username

	blocked, err := service.cache.IsLoginBlocked(ctx, loginKey)
	if err != nil {
		logger.Error("AuthService:Login:IsLoginBlocked:Error", "error", err)
		return nil, appErrors.NewAppError(appErrors.ErrInternalServer, "internal server error", err)
	}
	if blocked {
		metrics.LoginAttempts.WithLabelValues("blocked").Inc()
		logger.Warn("AuthService:Login:Blocked", "username", req.Username, "ip", origin.IP)
		return nil, invalid
	}

	admin, err := service.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, appErrors.NewAppError(appErrors.ErrInternalServer, "internal server error", err)
	}

	hash := dummyHash
	if admin != nil {
		hash = admin.PasswordHash
	}
	if !utils.ComparePassword(hash, req.Password) || admin == nil {
		if errIncrement := service.cache.IncrementLoginAttempt(ctx, loginKey); errIncrement != nil {
			logger.Error("AuthService:Login:IncrementLoginAttempt:Error", "error", errIncrement)
		}
		metrics.LoginAttempts.WithLabelValues("rejected").Inc()
		logger.Warn("AuthService:Login:Rejected", "username", req.Username, "ip", origin.IP)
		return nil, invalid
	}

	signed, err := service.CreateTokenFor(ctx, admin.Username)
	if err != nil {
		if errors.Is(err, ErrUnknownAdministrator) {
			return nil, invalid
		}
		return nil, appErrors.NewAppError(appErrors.ErrInternalServer, "internal server error", err)
	}

	if errDel := service.cache.Del(ctx, loginKey); errDel != nil {
		logger.Error("AuthService:Login:Del:Error", "error", errDel)
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	logger.Info("AuthService:Login:Success", "username", admin.Username, "ip", origin.IP)

	return &dto.LoginResponse{Token: signed}, nil
}

// CreateTokenFor re-checks that the administrator exists right before
// signing; the verifier never consults the store.
func (service *AuthService) CreateTokenFor(ctx context.Context, username string) (string, error) {
	admin, err := service.repo.FindByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if admin == nil {
		return "", ErrUnknownAdministrator
	}

	signed, err := service.issuer.Issue(admin.Username, service.lifespan, service.clock.Now())
	if err != nil {
		logger.Error("AuthService:CreateTokenFor:Issue:Error", "error", err)
		return "", err
	}
	metrics.TokensIssued.Inc()
	return signed, nil
}

// ValidateToken reports whether raw is a currently valid token whose subject
// is still an administrator.
func (service *AuthService) ValidateToken(ctx context.Context, raw string, origin middleware.AuditInfo) bool {
	result := service.auth.Authenticate(raw)
	middleware.Audit(result, origin)
	if !result.OK() {
		return false
	}

	admin, err := service.repo.FindByUsername(ctx, result.Subject())
	if err != nil {
		logger.Error("AuthService:ValidateToken:FindByUsername:Error", "error", err)
		return false
	}
	if admin == nil {
		logger.Warn("AuthService:ValidateToken:UnknownSubject", "subject", result.Subject(), "ip", origin.IP)
		return false
	}

	logger.Info("AuthService:ValidateToken:Valid", "subject", result.Subject(), "ip", origin.IP)
	return true
}

func (service *AuthService) RegisterAdministrator(ctx context.Context, req *dto.RegisterAdministratorRequest) (*dto.AdministratorResponse, *appErrors.AppError) {
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, appErrors.NewAppError(appErrors.ErrInternalServer, "internal server error", err)
	}

	admin := &entity.Administrator{
		Username:     req.Username,
		PasswordHash: hash,
		CreatedAt:    service.clock.Now().UTC(),
	}
	if err := service.repo.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrAdministratorExists) {
			return nil, appErrors.NewAppError(appErrors.ErrAlreadyExists, "administrator already exists", err)
		}
		return nil, appErrors.NewAppError(appErrors.ErrInternalServer, "internal server error", err)
	}

	return &dto.AdministratorResponse{Username: admin.Username, CreatedAt: admin.CreatedAt}, nil
}

func (service *AuthService) ListAdministrators(ctx context.Context) ([]dto.AdministratorResponse, *appErrors.AppError) {
	admins, err := service.repo.List(ctx)
	if err != nil {
		return nil, appErrors.NewAppError(appErrors.ErrInternalServer, "internal server error", err)
	}

	out := make([]dto.AdministratorResponse, 0, len(admins))
	for _, admin := range admins {
		out = append(out, dto.AdministratorResponse{Username: admin.Username, CreatedAt: admin.CreatedAt})
	}
	return out, nil
}

// SeedAdministrators writes the administrators declared in configuration.
func (service *AuthService) SeedAdministrators(ctx context.Context, seeds []config.AdminSeed) error {
	now := service.clock.Now().UTC()
	for _, seed := range seeds {
		admin := &entity.Administrator{Username: seed.Username, PasswordHash: seed.PasswordHash, CreatedAt: now}
		if err := service.repo.Upsert(ctx, admin); err != nil {
			return err
		}
	}
	logger.Info("AuthService:SeedAdministrators:Success", "count", len(seeds))
	return nil
}
