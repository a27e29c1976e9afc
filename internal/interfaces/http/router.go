package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/FarmaStock-api/internal/application/auth"
	"github.com/jhoicas/FarmaStock-api/internal/application/distribution"
	"github.com/jhoicas/FarmaStock-api/internal/application/orders"
	"github.com/jhoicas/FarmaStock-api/internal/application/prescription"
	"github.com/jhoicas/FarmaStock-api/internal/application/stock"
	"github.com/jhoicas/FarmaStock-api/internal/application/usecase"
	"github.com/jhoicas/FarmaStock-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC          *auth.AuthUseCase
	MedicationUC    *usecase.MedicationUseCase
	SiteUC          *usecase.SiteUseCase
	SupplierUC      *usecase.SupplierUseCase
	TransferUC      *stock.TransferUseCase
	StockQueryUC    *stock.QueryUseCase
	DistributionUC  *distribution.UseCase
	DistributionPDF *distribution.PDFUseCase
	OrderUC         *orders.UseCase
	PrescriptionUC  *prescription.UseCase
	JWTSecret       string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	adminOnly := RequireRole(entity.RoleAdmin)
	quimicoOrAdmin := RequireRole(entity.RoleAdmin, entity.RoleQuimico)

	// Medications (catálogo; escritura solo admin)
	medications := protected.Group("/medications")
	medicationHandler := NewMedicationHandler(deps.MedicationUC)
	medications.Post("/", adminOnly, medicationHandler.Create)
	medications.Get("/", medicationHandler.List)
	medications.Get("/cum/:cum", medicationHandler.GetByCUM)
	medications.Get("/:id", medicationHandler.GetByID)
	medications.Put("/:id", adminOnly, medicationHandler.Update)

	// Sites (escritura solo admin)
	sites := protected.Group("/sites")
	siteHandler := NewSiteHandler(deps.SiteUC)
	sites.Post("/", adminOnly, siteHandler.Create)
	sites.Get("/", siteHandler.List)
	sites.Get("/:id", siteHandler.GetByID)
	sites.Put("/:id", adminOnly, siteHandler.Update)

	// Suppliers (escritura solo admin)
	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Post("/", adminOnly, supplierHandler.Create)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Put("/:id", adminOnly, supplierHandler.Update)

	// Stock: transferencias, reversiones, ajustes y consultas
	stockGroup := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.TransferUC, deps.StockQueryUC)
	stockGroup.Post("/transfers/validate", stockHandler.ValidateTransfer)
	stockGroup.Post("/transfers", stockHandler.PerformTransfer)
	stockGroup.Post("/reversals", quimicoOrAdmin, stockHandler.Reverse)
	stockGroup.Get("/low", stockHandler.ListLowStock)
	stockGroup.Get("/movements/summary", stockHandler.SummarizeMovements)
	stockGroup.Get("/movements/:type/:id", stockHandler.MovementsByReference)
	stockGroup.Post("/medications/:id/adjust", adminOnly, stockHandler.Adjust)
	stockGroup.Get("/medications/:id/movements", stockHandler.MovementHistory)
	stockGroup.Get("/medications/:id", stockHandler.GetGlobal)
	stockGroup.Post("/sites/:siteId/synchronize", adminOnly, stockHandler.Synchronize)
	stockGroup.Get("/sites/:siteId/medications/:id", stockHandler.GetSiteStock)
	stockGroup.Get("/sites/:siteId", stockHandler.ListSiteStocks)

	// Distributions
	distributions := protected.Group("/distributions")
	distributionHandler := NewDistributionHandler(deps.DistributionUC, deps.DistributionPDF)
	distributions.Post("/", distributionHandler.Create)
	distributions.Get("/", distributionHandler.List)
	distributions.Get("/:id/pdf", distributionHandler.DownloadPDF)
	distributions.Post("/:id/distribute", distributionHandler.Distribute)
	distributions.Get("/:id", distributionHandler.GetByID)
	distributions.Delete("/:id", distributionHandler.Cancel)

	// Orders (aprobación solo químico o admin)
	ordersGroup := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC)
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Post("/:id/approve", quimicoOrAdmin, orderHandler.Approve)
	ordersGroup.Post("/:id/in-transit", orderHandler.MarkInTransit)
	ordersGroup.Post("/:id/deliver", orderHandler.MarkDelivered)
	ordersGroup.Post("/:id/cancel", quimicoOrAdmin, orderHandler.Cancel)
	ordersGroup.Get("/:id", orderHandler.GetByID)

	// Prescriptions (dispensación solo químico o admin)
	prescriptions := protected.Group("/prescriptions")
	prescriptionHandler := NewPrescriptionHandler(deps.PrescriptionUC)
	prescriptions.Post("/", prescriptionHandler.Create)
	prescriptions.Get("/", prescriptionHandler.List)
	prescriptions.Post("/:id/preparing", prescriptionHandler.MarkPreparing)
	prescriptions.Post("/:id/prepared", quimicoOrAdmin, prescriptionHandler.MarkPrepared)
	prescriptions.Post("/:id/cancel", prescriptionHandler.Cancel)
	prescriptions.Get("/:id", prescriptionHandler.GetByID)
}
