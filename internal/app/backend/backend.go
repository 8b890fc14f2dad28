// Package backend assembles the API server: storage, cache, queue publisher,
// services and the HTTP router.
package backend

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/adblockpro/backend/internal/cache"
	"github.com/adblockpro/backend/internal/config"
	"github.com/adblockpro/backend/internal/lib/jwt"
	"github.com/adblockpro/backend/internal/lib/rabbitmq"
	"github.com/adblockpro/backend/internal/migrations"
	"github.com/adblockpro/backend/internal/paymentprovider"
	adminservice "github.com/adblockpro/backend/internal/services/admin"
	authservice "github.com/adblockpro/backend/internal/services/auth"
	mailerservice "github.com/adblockpro/backend/internal/services/mailer"
	statsservice "github.com/adblockpro/backend/internal/services/stats"
	subservice "github.com/adblockpro/backend/internal/services/subscription"
	userservice "github.com/adblockpro/backend/internal/services/user"
	"github.com/adblockpro/backend/internal/storage/repository"
)

// App is the assembled API server.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	amqp   *amqp.Connection
	amqpCh *amqp.Channel
}

// New builds the App from configuration: connects storage, runs migrations,
// connects redis and rabbitmq, wires services and routes.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetMailQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(ch, rabbitmq.MailExchange, rabbitmq.EmailQueue)

	jwtMaker := jwt.NewMaker(cfg.JWT.AccessSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshSecret, cfg.JWT.RefreshTTL)
	mailer := mailerservice.New(publisher, cfg.ClientURL, logger)
	provider := paymentprovider.NewClient(cfg.StripeSecretKey, cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL)

	auth := authservice.New(db, jwtMaker, mailer, cfg.BcryptCost)
	users := userservice.New(db)
	subs := subservice.New(db, logger)
	stats := statsservice.New(db, cacheRedis)
	admin := adminservice.New(db, cacheRedis)

	router := chi.NewRouter()
	registerRoutes(router, cfg, logger, jwtMaker, auth, users, subs, stats, admin, provider)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		amqp:   conn,
		amqpCh: ch,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.amqpCh.Close(); closeErr != nil {
			a.logger.Error("failed to close amqp channel", slog.Any("err", closeErr))
		}
		if closeErr := a.amqp.Close(); closeErr != nil {
			a.logger.Error("failed to close amqp connection", slog.Any("err", closeErr))
		}
		a.db.DB.Close()
		return err
	}
}
