package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/FarmaStock-api/internal/application/auth"
	"github.com/jhoicas/FarmaStock-api/internal/application/distribution"
	"github.com/jhoicas/FarmaStock-api/internal/application/orders"
	"github.com/jhoicas/FarmaStock-api/internal/application/prescription"
	"github.com/jhoicas/FarmaStock-api/internal/application/stock"
	"github.com/jhoicas/FarmaStock-api/internal/application/usecase"
	infrapdf "github.com/jhoicas/FarmaStock-api/internal/infrastructure/pdf"
	"github.com/jhoicas/FarmaStock-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/FarmaStock-api/internal/interfaces/http"
	"github.com/jhoicas/FarmaStock-api/pkg/config"
	"github.com/jhoicas/FarmaStock-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repositorios atados al pool (lecturas consultivas).
	userRepo := postgres.NewUserRepository(pool)
	medicationRepo := postgres.NewMedicationRepository(pool)
	siteRepo := postgres.NewSiteRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	globalStockRepo := postgres.NewMedicationStockRepository(pool)
	siteStockRepo := postgres.NewSiteStockRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	distributionRepo := postgres.NewDistributionRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	prescriptionRepo := postgres.NewPrescriptionRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Motor de transferencias y consultas de stock.
	transferUC := stock.NewTransferUseCase(txRunner, globalStockRepo, siteStockRepo)
	stockQueryUC := stock.NewQueryUseCase(globalStockRepo, siteStockRepo, movementRepo)

	// Catálogo y maestros.
	medicationUC := usecase.NewMedicationUseCase(txRunner, medicationRepo, globalStockRepo)
	siteUC := usecase.NewSiteUseCase(siteRepo)
	supplierUC := usecase.NewSupplierUseCase(supplierRepo)

	// Flujos documentales sobre el motor.
	distributionUC := distribution.NewUseCase(txRunner, distributionRepo, siteRepo, transferUC)
	orderUC := orders.NewUseCase(txRunner, orderRepo, supplierRepo, transferUC)
	prescriptionUC := prescription.NewUseCase(txRunner, prescriptionRepo, siteRepo, transferUC)

	// PDF: remisión de distribución.
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	distributionPDFUC := distribution.NewPDFUseCase(distributionRepo, siteRepo, medicationRepo, pdfGenerator)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "FarmaStock API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:          authUC,
		MedicationUC:    medicationUC,
		SiteUC:          siteUC,
		SupplierUC:      supplierUC,
		TransferUC:      transferUC,
		StockQueryUC:    stockQueryUC,
		DistributionUC:  distributionUC,
		DistributionPDF: distributionPDFUC,
		OrderUC:         orderUC,
		PrescriptionUC:  prescriptionUC,
		JWTSecret:       cfg.JWT.Secret,
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

	log.Info().Msg("aplicación detenida")
}
