package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/facturacion-api/internal/application/auth"
	"github.com/jhoicas/facturacion-api/internal/application/billing"
	"github.com/jhoicas/facturacion-api/internal/application/usecase"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/internal/domain/repository"
	infradian "github.com/jhoicas/facturacion-api/internal/infrastructure/dian"
	"github.com/jhoicas/facturacion-api/internal/infrastructure/eventlog"
	"github.com/jhoicas/facturacion-api/internal/infrastructure/metrics"
	infraMongo "github.com/jhoicas/facturacion-api/internal/infrastructure/mongo"
	infrapdf "github.com/jhoicas/facturacion-api/internal/infrastructure/pdf"
	"github.com/jhoicas/facturacion-api/internal/infrastructure/postgres"
	infraRedis "github.com/jhoicas/facturacion-api/internal/infrastructure/redis"
	"github.com/jhoicas/facturacion-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/facturacion-api/internal/interfaces/http"
	"github.com/jhoicas/facturacion-api/pkg/config"
	"github.com/jhoicas/facturacion-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		File:  cfg.App.LogFile,
	})
	defer log.Close()
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	reg := metrics.New()

	// ── Postgres (opcional: sin BD la emisión queda solo en disco) ──
	var pool *pgxpool.Pool
	if p, err := postgres.NewPool(ctx, cfg.DB); err != nil {
		log.Error().Err(err).Msg("configuración de PostgreSQL inválida, se continúa sin BD")
	} else if err := postgres.Ping(ctx, p, 5*time.Second); err != nil {
		log.Error().Err(err).Msg("PostgreSQL no responde, se continúa sin BD")
		p.Close()
	} else {
		pool = p
		defer pool.Close()
		if cfg.DB.AutoMigrate {
			if err := postgres.RunMigrations(pool); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
			log.Info().Msg("migraciones aplicadas")
		}
	}

	// ── Mongo (bitácora documental) ──
	var eventStore *infraMongo.EventStore
	if cfg.Mongo.Enabled() {
		if es, err := infraMongo.Connect(ctx, cfg.Mongo, log); err != nil {
			log.Warn().Err(err).Msg("MongoDB no disponible, bitácora solo en archivo y BD")
		} else {
			if err := es.Provision(ctx); err != nil {
				log.Warn().Err(err).Msg("aprovisionar colecciones de bitácora")
			}
			eventStore = es
			defer func() { _ = eventStore.Close(context.Background()) }()
		}
	}

	// ── Bitácora ──
	sinkOpts := []eventlog.Option{eventlog.WithSinkErrors(reg)}
	if pool != nil {
		sinkOpts = append(sinkOpts, eventlog.WithSink("postgres", postgres.NewLogRepository(pool)))
	}
	if eventStore != nil {
		sinkOpts = append(sinkOpts, eventlog.WithSink("mongo", eventStore))
	}
	events := eventlog.New(log, sinkOpts...)
	events.Info(ctx, eventlog.ModuleSystem, "servicio iniciado", map[string]any{"env": cfg.App.Env})

	// ── Artefactos ──
	artifacts, err := storage.NewArtifactStore(ctx, cfg.Artifacts)
	if err != nil {
		log.Fatal().Err(err).Msg("almacén de artefactos")
	}
	encoding, err := entity.ParsePrintableEncoding(cfg.Billing.PrintableEncoding)
	if err != nil {
		log.Fatal().Err(err).Msg("DOCUMENT_PRINTABLE_ENCODING")
	}

	codec := infradian.NewExchangeCodec()
	var pdfOpts []infrapdf.Option
	if cfg.Billing.QRImagePath != "" {
		pdfOpts = append(pdfOpts, infrapdf.WithQRImage(cfg.Billing.QRImagePath))
	}
	printer := infrapdf.NewMarotoPDFGenerator(codec, cfg.Billing.TaxRate, pdfOpts...)

	// ── Casos de uso ──
	var (
		txRunner billing.BillingTxRunner
		docs     repository.DocumentRepository
		folios   billing.FolioReader
	)
	if pool != nil {
		txRunner = postgres.NewTxRunner(pool)
		docs = postgres.NewDocumentRepository(pool)
		folios = postgres.NewInvoiceRepository(pool)
	}

	health := map[string]httpRouter.HealthCheck{}
	allocOpts := []billing.AllocatorOption{billing.WithAllocatorMetrics(reg)}
	if cfg.Redis.Enabled() {
		if client, err := infraRedis.NewClient(ctx, cfg.Redis); err != nil {
			log.Warn().Err(err).Msg("Redis no disponible, folios sin candado")
		} else {
			defer client.Close()
			health["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
			allocOpts = append(allocOpts, billing.WithFolioLocker(infraRedis.NewFolioLocker(client),
				time.Duration(cfg.Redis.FolioLockTTLMS)*time.Millisecond))
		}
	}
	allocator := billing.NewFolioAllocator(storage.NewCounterFile(cfg.Billing.FolioFile), folios, events, allocOpts...)
	coordinator := billing.NewPersistenceCoordinator(txRunner, docs, codec, encoding, events)

	issueOpts := []billing.IssueOption{billing.WithIssueMetrics(reg)}
	if !cfg.Billing.SubmissionDisabled {
		issueOpts = append(issueOpts, billing.WithSubmissionQueue(infradian.NewSubmissionQueue(artifacts, cfg.Billing.IssuerNIT)))
	}
	issueUC := billing.NewIssueInvoiceUseCase(allocator, coordinator, codec, printer, artifacts, events,
		billing.IssueConfig{
			Prefix:   cfg.Billing.InvoicePrefix,
			TaxRate:  cfg.Billing.TaxRate,
			Currency: cfg.Billing.Currency,
			DueDays:  cfg.Billing.PaymentDueDays,
			Issuer: entity.Issuer{
				NIT:              cfg.Billing.IssuerNIT,
				Name:             cfg.Billing.IssuerName,
				BranchCode:       cfg.Billing.BranchCode,
				ResolutionNumber: cfg.Billing.ResolutionNumber,
				ResolutionPrefix: cfg.Billing.ResolutionPrefix,
			},
		},
		issueOpts...,
	)
	retrieval := billing.NewRetrievalResolver(artifacts, docs, printer, infrapdf.NewValidator(), coordinator, events, reg)
	documentsUC := billing.NewDocumentsUseCase(artifacts, docs)
	cartUC := billing.NewCartUseCase(events)

	logSources := map[string]repository.LogRepository{}
	if pool != nil {
		logSources[usecase.LogSourceDB] = postgres.NewLogRepository(pool)
	}
	if eventStore != nil {
		logSources[usecase.LogSourceBilling] = eventStore
		logSources[usecase.LogSourceSystem] = eventStore
	}
	logUC := usecase.NewLogUseCase(logSources)

	authUC := auth.NewAuthUseCase(
		auth.Operator{User: cfg.Admin.User, PasswordHash: cfg.Admin.PasswordHash},
		auth.JWTConfig{Secret: cfg.JWT.Secret, ExpMinutes: cfg.JWT.Expiration, Issuer: cfg.JWT.Issuer},
	)

	if pool != nil {
		health["postgres"] = pool.Ping
	}
	if eventStore != nil {
		health["mongo"] = eventStore.Ping
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Facturación API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		ServiceName: cfg.App.Name,
		Issuer:      issueUC,
		Cart:        cartUC,
		Pending:     documentsUC,
		Printable:   retrieval,
		Documents:   documentsUC,
		Logs:        logUC,
		AuthUC:      authUC,
		JWTSecret:   cfg.JWT.Secret,
		Health:      health,
		Metrics:     reg.Registry(),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	events.Info(shutdownCtx, eventlog.ModuleSystem, "servicio detenido", nil)

	log.Info().Msg("aplicación detenida")
}
