package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/custodia-api/internal/application/auth"
	"github.com/jhoicas/custodia-api/internal/application/authz"
	"github.com/jhoicas/custodia-api/internal/application/inventory"
	"github.com/jhoicas/custodia-api/internal/application/report"
	"github.com/jhoicas/custodia-api/internal/application/usecase"
	"github.com/jhoicas/custodia-api/internal/domain/permission"
	"github.com/jhoicas/custodia-api/internal/infrastructure/redis"
	"github.com/jhoicas/custodia-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	UserUC       *usecase.UserUseCase
	PermissionUC *authz.PermissionUseCase
	ProductUC    *usecase.ProductUseCase
	CategoryUC   *usecase.CategoryUseCase
	CustodianUC  *usecase.CustodianUseCase
	SupplierUC   *usecase.SupplierUseCase
	Ledger       *inventory.LedgerUseCase
	Assignments  *inventory.AssignmentUseCase
	Reports      *report.CustodyUseCase
	// LoginLimiter nil desactiva el límite de intentos de login.
	LoginLimiter redis.Limiter
	Logger       *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	loginChain := []fiber.Handler{}
	if deps.LoginLimiter != nil {
		loginChain = append(loginChain, RateLimit(deps.LoginLimiter, LoginKey, deps.Logger))
	}
	loginChain = append(loginChain, authHandler.Login)
	authGroup.Post("/login", loginChain...)

	// Rutas protegidas (requieren Bearer Token con sesión vigente)
	protected := api.Group("/", AuthMiddleware(deps.AuthUC))

	protected.Post("/auth/logout", authHandler.Logout)
	protected.Get("/auth/verify", authHandler.Verify)
	protected.Post("/auth/password", authHandler.ChangePassword)

	// Users
	users := protected.Group("/users")
	userHandler := NewUserHandler(deps.UserUC, deps.PermissionUC)
	users.Get("/roles", userHandler.Roles)
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Deactivate)
	users.Put("/:id/activate", userHandler.Activate)
	users.Put("/:id/password", userHandler.SetPassword)
	users.Get("/:id/permissions", userHandler.GetPermissions)
	users.Put("/:id/permissions", userHandler.ReplacePermissions)
	users.Post("/:id/permissions/reset", userHandler.ResetPermissions)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.Ledger)
	products.Get("/low-stock", RequirePermission(permission.VerReportes), productHandler.LowStock)
	products.Get("/", productHandler.List)
	products.Post("/", productHandler.Create)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Deactivate)
	products.Get("/:id/ledger-check", RequirePermission(permission.VerReportes), productHandler.LedgerCheck)

	// Categories
	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Get("/", categoryHandler.List)
	categories.Post("/", categoryHandler.Create)

	// Suppliers
	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Post("/", supplierHandler.Create)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Put("/:id", supplierHandler.Update)
	suppliers.Delete("/:id", supplierHandler.Deactivate)
	suppliers.Get("/:id/products", supplierHandler.Products)

	// Movements
	movements := protected.Group("/movements")
	inventoryHandler := NewInventoryHandler(deps.Ledger)
	movements.Get("/", RequirePermission(permission.VerMovimientos), inventoryHandler.List)
	movements.Post("/in", RequirePermission(permission.CrearEntrada), inventoryHandler.RecordInbound)
	movements.Post("/out", RequirePermission(permission.CrearSalida), inventoryHandler.RecordOutbound)

	// Assignments y custodios
	assignmentHandler := NewAssignmentHandler(deps.Assignments, deps.CustodianUC)
	assignments := protected.Group("/assignments")
	assignments.Get("/", assignmentHandler.List)
	assignments.Post("/", assignmentHandler.Create)
	assignments.Get("/personnel/:id", assignmentHandler.ListByPersonnel)
	assignments.Get("/destinations/:id", assignmentHandler.ListByDestination)
	assignments.Get("/:id", assignmentHandler.GetByID)
	assignments.Put("/:id/return", assignmentHandler.Return)

	personnel := protected.Group("/personnel")
	personnel.Get("/", assignmentHandler.ListPersonnel)
	personnel.Post("/", assignmentHandler.CreatePersonnel)

	destinations := protected.Group("/destinations")
	destinations.Get("/", assignmentHandler.ListDestinations)
	destinations.Post("/", assignmentHandler.CreateDestination)

	// Reports
	reports := protected.Group("/reports", RequirePermission(permission.GenerarReportes))
	reportHandler := NewReportHandler(deps.Reports)
	reports.Get("/custody/:kind/:id", reportHandler.Custody)
	reports.Get("/custody/:kind/:id/pdf", reportHandler.CustodyPDF)
}
