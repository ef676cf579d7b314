package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/custodia-api/internal/application/auth"
	"github.com/jhoicas/custodia-api/internal/application/authz"
	"github.com/jhoicas/custodia-api/internal/application/inventory"
	"github.com/jhoicas/custodia-api/internal/application/report"
	"github.com/jhoicas/custodia-api/internal/application/usecase"
	infraamqp "github.com/jhoicas/custodia-api/internal/infrastructure/amqp"
	infrapdf "github.com/jhoicas/custodia-api/internal/infrastructure/pdf"
	"github.com/jhoicas/custodia-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/custodia-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/custodia-api/internal/interfaces/http"
	"github.com/jhoicas/custodia-api/pkg/config"
	"github.com/jhoicas/custodia-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicar esquema")
	}

	userRepo := postgres.NewUserRepository(pool)
	permRepo := postgres.NewPermissionRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	assignmentRepo := postgres.NewAssignmentRepository(pool)
	personnelRepo := postgres.NewPersonnelRepository(pool)
	destinationRepo := postgres.NewDestinationRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Eventos de stock: opcionales. Sin broker los casos de uso no publican.
	var publisher inventory.EventPublisher
	if cfg.AMQP.URL != "" {
		pub, err := infraamqp.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Queue, log.Component("amqp"))
		if err != nil {
			log.Warn().Err(err).Msg("broker AMQP no disponible, eventos de stock desactivados")
		} else {
			defer pub.Close()
			publisher = pub
		}
	}

	authUC := auth.NewAuthUseCase(userRepo, permRepo, sessionRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		SessionTTL: cfg.JWT.SessionTTL,
	}, log.Component("auth"))
	userUC := usecase.NewUserUseCase(txRunner, userRepo, permRepo, authUC)
	permissionUC := authz.NewPermissionUseCase(userRepo, permRepo)
	productUC := usecase.NewProductUseCase(txRunner, productRepo, categoryRepo, supplierRepo)
	categoryUC := usecase.NewCategoryUseCase(categoryRepo)
	supplierUC := usecase.NewSupplierUseCase(supplierRepo, productRepo)
	custodianUC := usecase.NewCustodianUseCase(personnelRepo, destinationRepo)
	ledgerUC := inventory.NewLedgerUseCase(txRunner, movementRepo, productRepo, publisher, log.Component("ledger"))
	assignmentUC := inventory.NewAssignmentUseCase(txRunner, assignmentRepo, publisher, log.Component("assignments"))

	// PDF: reporte de custodia
	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.App.Name)
	custodyUC := report.NewCustodyUseCase(assignmentRepo, productRepo, personnelRepo, destinationRepo, pdfGenerator)

	if cfg.Bootstrap.AdminEmail != "" {
		created, err := userUC.Bootstrap(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword, cfg.Bootstrap.AdminName)
		if err != nil {
			log.Fatal().Err(err).Msg("crear administrador inicial")
		}
		if created {
			log.Info().Str("email", cfg.Bootstrap.AdminEmail).Msg("administrador inicial creado")
		}
	}

	var loginLimiter infraredis.Limiter
	if cfg.RateLimit.Enabled {
		rdb := infraredis.NewClient(ctx, cfg.Redis, log.Component("redis"))
		if rdb != nil {
			defer rdb.Close()
		}
		loginLimiter = infraredis.NewLimiter(rdb, cfg.RateLimit)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		Immutable:    true,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    cfg.HTTP.BodyLimit,
		ErrorHandler: httpRouter.ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Custodia API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		UserUC:       userUC,
		PermissionUC: permissionUC,
		ProductUC:    productUC,
		CategoryUC:   categoryUC,
		CustodianUC:  custodianUC,
		SupplierUC:   supplierUC,
		Ledger:       ledgerUC,
		Assignments:  assignmentUC,
		Reports:      custodyUC,
		LoginLimiter: loginLimiter,
		Logger:       log,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			return fmt.Errorf("servidor HTTP: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		sweepSessions(gctx, authUC, cfg.App.SessionSweep, log.Component("sessions"))
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("señal de apagado recibida, cerrando servidor...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// sweepSessions borra periódicamente las sesiones vencidas hasta que ctx termine.
func sweepSessions(ctx context.Context, authUC *auth.AuthUseCase, every time.Duration, log *logger.Logger) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := authUC.PurgeExpired(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("barrido de sesiones")
				continue
			}
			if n > 0 {
				log.Info().Int64("sessions", n).Msg("sesiones vencidas eliminadas")
			}
		}
	}
}
