package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/config"
	"github.com/xavierca1/ligue-crm/internal/infra/database"
	"github.com/xavierca1/ligue-crm/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/infra/mail"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
	"github.com/xavierca1/ligue-crm/internal/infra/storage"
	"github.com/xavierca1/ligue-crm/internal/infra/worker"
	"github.com/xavierca1/ligue-crm/internal/logger"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Logger, zap.Fields(zap.String("version", version)))
	if err != nil {
		panic(err)
	}

	os.Exit(exitCode(log, run(cfg, log)))
}

// exitCode logs a run failure and flushes the logger; os.Exit skips
// deferred calls.
func exitCode(log *zap.Logger, err error) int {
	code := 0
	if err != nil {
		log.Error("server stopped", zap.Error(err))
		code = 1
	}
	_ = log.Sync()
	return code
}

func run(cfg *config.AppConfig, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Banco e migrações
	db, err := database.NewDBConnection(cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.MigrateOnStart {
		if err := database.Migrate(db.DB, log, 0); err != nil {
			return err
		}
	}

	blobs, err := storage.NewFileStore(cfg.Storage.BlobDir, log)
	if err != nil {
		return err
	}

	// 2. Repositórios
	tx := database.NewTxManager(db, log)
	serviceRepo := database.NewServiceRepository(db)
	adsRepo := database.NewAdvertisingRepository(db)
	leadRepo := database.NewLeadRepository(db)
	contractRepo := database.NewContractRepository(db)
	customerRepo := database.NewCustomerRepository(db, log)
	statsRepo := database.NewStatisticsRepository(db)
	roleRepo := database.NewRoleRepository(db, tx, log)

	health := map[string]handlers.Pinger{"database": db, "rabbitmq": nil}
	deps := usecase.CustomerDeps{
		Tx:        tx,
		Leads:     leadRepo,
		Ads:       adsRepo,
		Services:  serviceRepo,
		Contracts: contractRepo,
		Customers: customerRepo,
		Blobs:     blobs,
	}

	// 3. Fila (opcional)
	if cfg.RabbitMQ.URL != "" {
		rmq, err := queue.NewRabbitMQ(cfg.RabbitMQ.URL)
		if err != nil {
			return err
		}
		defer rmq.Close()

		deps.Events = queue.NewProducer(rmq.Ch)
		health["rabbitmq"] = handlers.PingFunc(func(context.Context) error { return rmq.Ping() })

		if cfg.Mail.Host != "" {
			ch, err := rmq.Conn.Channel()
			if err != nil {
				return err
			}
			welcome := queue.NewWorker(ch, mail.NewEmailSender(cfg.Mail), log)
			go func() {
				if err := welcome.Start(ctx, queue.QueueName); err != nil {
					log.Error("welcome worker stopped", zap.Error(err))
				}
			}()
		}
	} else {
		log.Warn("RABBITMQ_URL not set, customer events are disabled")
	}

	if cfg.Storage.SweepInterval > 0 {
		sweeper := worker.NewDocumentSweeper(blobs, contractRepo, cfg.Storage.SweepInterval, cfg.Storage.SweepGrace, log)
		go sweeper.Start(ctx)
	}

	// 4. UseCases
	stats := usecase.NewStatisticsUseCase(statsRepo, adsRepo, log)
	roles := usecase.NewRoleUseCase(roleRepo, log)

	// 5. Handlers e rotas
	limit := cfg.Server.LeadRateLimit
	router := handlers.Router{
		Services:       handlers.NewServiceHandler(usecase.NewServiceUseCase(serviceRepo, log), log),
		Advertisements: handlers.NewAdvertisingHandler(usecase.NewAdvertisingUseCase(adsRepo, serviceRepo, log), stats, log),
		Leads:          handlers.NewLeadHandler(usecase.NewLeadUseCase(leadRepo, adsRepo, log), limit, time.Minute, log),
		Contracts:      handlers.NewContractHandler(usecase.NewContractUseCase(contractRepo, serviceRepo, blobs, time.Now, log), log),
		Customers:      handlers.NewCustomerHandler(usecase.NewCustomerUseCase(deps, log), log),
		Statistics:     handlers.NewStatisticsHandler(stats, log),
		Health:         handlers.NewHealthHandler(version, health),
		Permissions:    middleware.NewPermissions(roles, log),
		CORSOrigins:    cfg.Server.CORSOrigins,
		TrustProxy:     cfg.Server.TrustProxy,
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
