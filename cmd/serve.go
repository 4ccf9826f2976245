package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"secret-friends-backend/internal/auth"
	"secret-friends-backend/internal/config"
	"secret-friends-backend/internal/handlers"
	"secret-friends-backend/internal/repository"
	"secret-friends-backend/internal/repository/memstore"
	"secret-friends-backend/internal/services"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			setupLogger(cfg.Log.Level, cfg.Log.Format)
			return Run(cfg)
		},
	}
}

// stores groups the three store implementations picked by database.driver
type stores struct {
	pinger   handlers.Pinger
	users    services.UserStore
	secrets  services.SecretStore
	requests services.FriendRequestStore
	close    func()
}

func openStores(ctx context.Context, cfg config.DatabaseConfig) (*stores, error) {
	if cfg.Driver == config.DriverMemory {
		log.Warn().Msg("Using in-memory store, data is lost on exit")
		mem := memstore.New()
		return &stores{
			pinger:   mem,
			users:    mem.Users(),
			secrets:  mem.Secrets(),
			requests: mem.FriendRequests(),
			close:    func() {},
		}, nil
	}

	db, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info().Msg("Database connection established")

	if cfg.ApplySchema {
		if err := repository.ApplySchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		log.Info().Msg("Database schema applied")
	}

	return &stores{
		pinger:   db,
		users:    repository.NewUserRepository(db),
		secrets:  repository.NewSecretRepository(db),
		requests: repository.NewFriendRequestRepository(db),
		close:    db.Close,
	}, nil
}

func newAuthenticator(cfg config.AuthConfig) (auth.Authenticator, string, error) {
	if cfg.Mode == config.AuthModeJWT {
		a, err := auth.NewJWTAuthenticator(cfg.JWTSecret, cfg.JWTIssuer)
		return a, "", err
	}
	log.Warn().
		Str("header", cfg.Header).
		Msg("Trusting caller-supplied identity header")
	return auth.NewHeaderAuthenticator(cfg.Header), cfg.Header, nil
}

// Run starts the HTTP server and blocks until SIGINT or SIGTERM
func Run(cfg *config.Config) error {
	st, err := openStores(context.Background(), cfg.Database)
	if err != nil {
		return err
	}
	defer st.close()

	authenticator, identityHeader, err := newAuthenticator(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to create authenticator: %w", err)
	}

	// Initialize services
	userService := services.NewUserService(st.users)
	secretService := services.NewSecretService(st.secrets)
	friendService := services.NewFriendService(st.requests)
	accessService := services.NewAccessService(st.requests, st.secrets)
	wsHub := services.NewWSHub()

	router := handlers.NewRouter(handlers.Dependencies{
		Authenticator:  authenticator,
		IdentityHeader: identityHeader,
		Store:          st.pinger,
		UserService:    userService,
		SecretService:  secretService,
		FriendService:  friendService,
		AccessService:  accessService,
		WSHub:          wsHub,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Str("auth_mode", cfg.Auth.Mode).
			Str("driver", cfg.Database.Driver).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
	case <-quit:
	}

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// hijacked websocket connections are not tracked by Shutdown; they close with the process
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
	return nil
}
