// Package app собирает и запускает приложение: бот, служебный HTTP,
// воркер outbox и фоновый архив выгрузок.
package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	"github.com/oilshop/order-bot/internal/catalog"
	config "github.com/oilshop/order-bot/internal/cfg"
	"github.com/oilshop/order-bot/internal/delivery/telegram"
	v1Http "github.com/oilshop/order-bot/internal/delivery/v1/http"
	"github.com/oilshop/order-bot/internal/infrastructure/archive"
	"github.com/oilshop/order-bot/internal/infrastructure/kafka"
	"github.com/oilshop/order-bot/internal/migration"
	"github.com/oilshop/order-bot/internal/repository/memory"
	s3Repo "github.com/oilshop/order-bot/internal/repository/minio"
	"github.com/oilshop/order-bot/internal/repository/pgdb"
	pgdbConv "github.com/oilshop/order-bot/internal/repository/pgdb/converter"
	redisRepo "github.com/oilshop/order-bot/internal/repository/redis"
	"github.com/oilshop/order-bot/internal/usecase"
	"github.com/oilshop/order-bot/pkg/clients"
	"github.com/oilshop/order-bot/pkg/closer"
	"github.com/oilshop/order-bot/pkg/e"
	"github.com/oilshop/order-bot/pkg/logger"
	"github.com/oilshop/order-bot/pkg/postgres"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	db           *postgres.PgDatabase
	bot          *telegram.Bot
	httpSrv      *v1Http.Server
	outboxWorker *kafka.OutboxWorker

	// runCtx живёт от старта до сигнала остановки; его отмена гасит фоновые задачи.
	runCtx    context.Context
	runCancel context.CancelFunc
}

func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	a := &App{
		cfg:    cfg,
		logger: log,
		closer: closer.NewCloser(2 * time.Second),
	}
	a.runCtx, a.runCancel = context.WithCancel(context.Background())

	cat, err := catalog.Load()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	db, err := initPGDB(log, cfg)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	a.db = db
	a.closer.Add(func(_ context.Context) error {
		db.Close()
		return nil
	})

	orderRepo := pgdb.NewOrderRepo(db.Pool, pgdbConv.NewOrderConverterImpl())
	overrideRepo := pgdb.NewOverrideRepo(db.Pool, pgdbConv.NewOverrideConverterImpl())
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.NewOutboxEventConverterImpl())

	sessionRepo, err := a.initSessionRepo()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	producer, err := kafka.NewProducer(log, cfg.Kafka)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if err := producer.EnsureTopic(10 * time.Second); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.Add(func(_ context.Context) error { return producer.Close() })

	a.outboxWorker = kafka.NewOutboxWorker(outboxRepo, log, producer, db.Dsn)

	archiver, err := a.initArchiver()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	api, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	catalogUC := usecase.NewCatalogUC(cat, overrideRepo, log)
	intakeUC := usecase.NewIntakeUC(
		catalogUC,
		sessionRepo,
		orderRepo,
		outboxRepo,
		db.Pool,
		telegram.NewNotifier(api),
		log,
		cfg.Bot.AdminIDs,
		cfg.Intake.Cooldown,
	)
	adminUC := usecase.NewAdminUC(
		cat,
		catalogUC,
		orderRepo,
		overrideRepo,
		archiver,
		log,
		cfg.Intake.PageSize,
		cfg.Bot.VersionFile,
	)

	migrator := migration.NewMigrator(cat, orderRepo, db.Pool, log)
	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), time.Minute)
	defer migrateCancel()
	if err := migrator.Run(migrateCtx, cfg.Intake.LegacyOrdersFile); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	a.bot = telegram.NewBot(api, catalogUC, intakeUC, adminUC, log, cfg.Bot)

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, log)
	router.Init(adminUC, db.Pool, cfg.Http)
	a.httpSrv = v1Http.NewServer(r, cfg.Http)

	return a, nil
}

// initSessionRepo выбирает хранилище состояния диалогов по конфигурации.
func (a *App) initSessionRepo() (usecase.SessionRepository, error) {
	if a.cfg.Intake.SessionStore == config.SessionStoreMemory {
		a.logger.Infof("using in-memory session store")
		return memory.NewSessionRepo(a.cfg.Intake.SessionTTL), nil
	}

	redisClient := clients.NewRedisClient(a.cfg.Redis)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx); err != nil {
		return nil, err
	}
	a.closer.Add(func(_ context.Context) error { return redisClient.Client.Close() })

	a.logger.Infof("using redis session store at %s", a.cfg.Redis.Addr)
	return redisRepo.NewSessionRepo(redisClient, a.cfg.Intake, a.logger), nil
}

// initArchiver поднимает архив выгрузок в MinIO; без MINIO_ENDPOINT архив выключен.
func (a *App) initArchiver() (usecase.ReportArchiver, error) {
	if a.cfg.Minio == nil {
		a.logger.Infof("report archive disabled: MINIO_ENDPOINT is not set")
		return nil, nil
	}

	minioClient, err := clients.NewMinIOClient(a.cfg.Minio)
	if err != nil {
		return nil, err
	}

	bucketCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := clients.EnsureBucket(bucketCtx, minioClient, a.cfg.Minio.BucketName); err != nil {
		return nil, err
	}

	reportArchive := archive.NewReportArchive(
		s3Repo.NewReportRepo(minioClient, a.cfg.Minio),
		a.logger,
		a.runCtx,
	)
	a.closer.Add(reportArchive.WaitForUploads)

	return reportArchive, nil
}

// Run запускает все компоненты и блокируется до сигнала остановки или фатальной ошибки.
func (a *App) Run() error {
	a.outboxWorker.Start(a.runCtx)

	botDone := make(chan struct{})
	go func() {
		defer close(botDone)
		a.bot.Run(a.runCtx)
	}()

	httpErrCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Errorf(err, "HTTP server failed")
			httpErrCh <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-httpErrCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpSrv.Stop(shutdownCtx); err != nil {
		a.logger.Errorf(err, "HTTP server shutdown error")
	} else {
		a.logger.Infof("HTTP server stopped")
	}

	a.runCancel()
	<-botDone
	a.outboxWorker.Stop()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Warnf("shutdown: %v", err)
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(); err != nil {
		logger.Errorf(err, "failed to ping database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
