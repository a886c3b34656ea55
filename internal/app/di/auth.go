// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "taskandtime_backend/internal/feature/auth/adapters"
	authhandler "taskandtime_backend/internal/feature/auth/transport/handler"
	"taskandtime_backend/internal/feature/auth/usecase"
	"taskandtime_backend/internal/platform/cache"
	"taskandtime_backend/internal/platform/config"
	jwtmw "taskandtime_backend/internal/platform/jwt"
	"taskandtime_backend/internal/platform/observability"
	"taskandtime_backend/internal/platform/password"
)

// AdminBootstrapper seeds the administrator account at startup.
type AdminBootstrapper interface {
	CreateAdminIfAbsent(ctx context.Context) (usecase.RegisterOutcome, error)
}

// Auth bundles the wired auth feature.
type Auth struct {
	AuthHandler *authhandler.AuthHandler
	UserHandler *authhandler.UserHandler
	Verifier    jwtmw.TokenVerifier
	TokenStatus jwtmw.TokenStatusFunc
	Admin       AdminBootstrapper
}

// NewTokenRepository creates the token ledger.
// If Redis is available, lookups go through a Redis cache in front of PostgreSQL.
func NewTokenRepository(rdb *redis.Client, db *gorm.DB, cfg config.Config) usecase.TokenRepository {
	ledger := authadapters.NewTokenPostgres(db)
	if rdb == nil {
		return ledger
	}
	return cache.NewCachingTokenRepository(rdb, cfg.TokenCacheTTL, ledger, "tokens")
}

// NewTokenStatus adapts the ledger to the middleware's status check.
// A token the ledger has never seen is treated as not valid.
func NewTokenStatus(ledger usecase.TokenRepository) jwtmw.TokenStatusFunc {
	return func(ctx context.Context, raw string) (bool, error) {
		t, err := ledger.FindByToken(ctx, raw)
		if err != nil {
			if errors.Is(err, usecase.ErrTokenNotFound) {
				return false, nil
			}
			return false, err
		}
		return t.IsValid(), nil
	}
}

// NewAuth wires repositories, usecases and handlers of the auth feature.
// prom may be nil.
func NewAuth(cfg config.Config, db *gorm.DB, rdb *redis.Client, prom *observability.Prom) *Auth {
	users := authadapters.NewUserPostgres(db)
	ledger := NewTokenRepository(rdb, db, cfg)
	hasher := password.NewBcryptHasher(cfg.BcryptCost)
	generator := jwtmw.NewGenerator(cfg.JWT.Secret, cfg.JWT.Expiration)

	authUC := usecase.NewAuthUsecase(
		users,
		ledger,
		hasher,
		usecase.NewCredentialAuthenticator(users, hasher),
		generator,
		usecase.AdminSeed{
			Name:     cfg.Admin.Name,
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
			Contact:  cfg.Admin.Contact,
		},
	)
	userUC := usecase.NewUserUsecase(users, ledger, hasher)

	var metrics authhandler.AuthMetrics
	if prom != nil {
		metrics = prom
	}

	return &Auth{
		AuthHandler: authhandler.NewAuthHandler(authUC, metrics),
		UserHandler: authhandler.NewUserHandler(userUC),
		Verifier:    generator,
		TokenStatus: NewTokenStatus(ledger),
		Admin:       authUC,
	}
}
