package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/paymybuddy/api/auth"
	"github.com/paymybuddy/api/config"
	"github.com/paymybuddy/api/handlers"
	"github.com/paymybuddy/api/middleware"
	"github.com/paymybuddy/api/repositories"
	"github.com/paymybuddy/api/repositories/postgres"
	"github.com/paymybuddy/api/services"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Users        repositories.UserRepository
	Transactions repositories.TransactionRepository
	TxManager    repositories.TransactionManager

	// Auth
	Keys           *auth.KeyPair
	Tokens         *auth.TokenService
	Hasher         auth.PasswordHasher
	Authenticator  *auth.Authenticator
	authHandler    *auth.Handler
	AuthMiddleware *middleware.AuthMiddleware
	AccessPolicy   *middleware.AccessPolicy

	// Services
	UserService        *services.UserService
	TransactionService *services.TransactionService

	// HTTP handlers
	UserHandler        *handlers.UserHandler
	TransactionHandler *handlers.TransactionHandler
	HealthHandler      *handlers.HealthHandler
}

// AuthHandler returns the auth handler for route wiring (implements handlers.AuthDeps)
func (d *Dependencies) AuthHandler() *auth.Handler {
	return d.authHandler
}

// NewDependencies loads the signing keys, opens the database and wires up
// all application dependencies. A *auth.KeyParseError in the returned chain
// means the key files are unusable.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	keys, err := loadKeys(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing keys: %w", err)
	}

	factory, err := initDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps := Build(cfg, keys, factory, logger)
	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// Build wires every component on top of already loaded keys and an open repository factory
func Build(cfg *config.Config, keys *auth.KeyPair, factory *postgres.RepositoryFactory, logger *zap.Logger) *Dependencies {
	d := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		Keys:        keys,
		RepoFactory: factory,
		DB:          factory.GetDB(),
	}

	d.initRepositories()
	d.initAuth(cfg)
	d.initServices()
	d.initHandlers()
	return d
}

func loadKeys(cfg *config.Config, logger *zap.Logger) (*auth.KeyPair, error) {
	keys, err := auth.LoadKeyPair(cfg.RSA.PublicKeyPath, cfg.RSA.PrivateKeyPath)
	if err != nil {
		return nil, err
	}
	if !keys.Matches() {
		logger.Warn("rsa public key does not belong to the private key; issued tokens will not verify",
			zap.String("public_key", cfg.RSA.PublicKeyPath),
			zap.String("private_key", cfg.RSA.PrivateKeyPath))
	}
	logger.Info("rsa key pair loaded", zap.Int("bits", keys.Private.N.BitLen()))
	return keys, nil
}

// initDatabase opens the PostgreSQL pool and applies the schema when configured
func initDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*postgres.RepositoryFactory, error) {
	factory, err := postgres.NewRepositoryFactory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create repository factory: %w", err)
	}

	if cfg.Database.InitSchema {
		if err := factory.GetDB().InitSchema(ctx); err != nil {
			_ = factory.Close()
			return nil, err
		}
	}

	return factory, nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Users = repos.Users
	d.Transactions = repos.Transactions
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

func (d *Dependencies) initAuth(cfg *config.Config) {
	d.Tokens = auth.NewTokenService(d.Keys, auth.TokenConfig{
		Issuer: cfg.Token.Issuer,
		TTL:    cfg.Token.TTL,
	})

	d.Hasher = auth.NewBcryptHasher(cfg.Security.BcryptCost)
	d.Authenticator = auth.NewAuthenticator(services.NewUserDirectory(d.Users), d.Hasher)
	d.authHandler = auth.NewHandler(d.Authenticator, d.Tokens, d.Logger)

	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Tokens, d.Logger)
	d.AccessPolicy = middleware.DefaultAccessPolicy(d.Logger)

	d.Logger.Info("auth initialized",
		zap.String("issuer", cfg.Token.Issuer),
		zap.Duration("token_ttl", d.Tokens.TTL()))
}

func (d *Dependencies) initServices() {
	d.UserService = services.NewUserService(d.Users, d.Hasher, d.Logger)
	d.TransactionService = services.NewTransactionService(d.Transactions, d.Users, d.TxManager, d.Logger)
}

func (d *Dependencies) initHandlers() {
	d.UserHandler = handlers.NewUserHandler(d.UserService, d.Logger)
	d.TransactionHandler = handlers.NewTransactionHandler(d.TransactionService, d.Logger)
	d.HealthHandler = handlers.NewHealthHandler(d.DB.DB, d.Logger)
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
		d.RepoFactory = nil
	}

	_ = d.Logger.Sync()

	return errors.Join(errs...)
}
