// seed prepara una base nueva: aplica el esquema, crea el administrador inicial y, opcionalmente,
// importa un catálogo de productos desde CSV. El stock inicial de cada producto entra al libro
// como movimiento "stock inicial".
//
// Uso: go run ./cmd/seed [ruta/productos.csv]
// Requiere BOOTSTRAP_ADMIN_EMAIL y BOOTSTRAP_ADMIN_PASSWORD.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jhoicas/custodia-api/internal/application/auth"
	"github.com/jhoicas/custodia-api/internal/application/authz"
	"github.com/jhoicas/custodia-api/internal/application/dto"
	"github.com/jhoicas/custodia-api/internal/application/usecase"
	"github.com/jhoicas/custodia-api/internal/domain"
	"github.com/jhoicas/custodia-api/internal/infrastructure/postgres"
	"github.com/jhoicas/custodia-api/pkg/config"
	"github.com/jhoicas/custodia-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	if cfg.Bootstrap.AdminEmail == "" || cfg.Bootstrap.AdminPassword == "" {
		log.Fatal().Msg("BOOTSTRAP_ADMIN_EMAIL y BOOTSTRAP_ADMIN_PASSWORD son requeridos")
	}

	ctx := context.Background()
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
	categoryRepo := postgres.NewCategoryRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	authUC := auth.NewAuthUseCase(userRepo, permRepo, sessionRepo, auth.JWTConfig{Secret: cfg.JWT.Secret}, log)
	userUC := usecase.NewUserUseCase(txRunner, userRepo, permRepo, authUC)

	created, err := userUC.Bootstrap(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword, cfg.Bootstrap.AdminName)
	if err != nil {
		log.Fatal().Err(err).Msg("crear administrador inicial")
	}
	if created {
		log.Info().Str("email", cfg.Bootstrap.AdminEmail).Msg("administrador inicial creado")
	} else {
		log.Info().Msg("ya existen usuarios, no se crea administrador")
	}

	if len(os.Args) < 2 {
		return
	}
	f, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatal().Err(err).Msg("abrir catálogo")
	}
	defer f.Close()
	rows, err := parseCatalog(f)
	if err != nil {
		log.Fatal().Err(err).Msg("leer catálogo")
	}

	admin, err := userRepo.GetByEmail(ctx, auth.NormalizeEmail(cfg.Bootstrap.AdminEmail))
	if err != nil || admin == nil {
		log.Fatal().Err(err).Msg("administrador inicial no encontrado")
	}
	perms, err := permRepo.Get(ctx, admin.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("leer permisos del administrador")
	}
	actx := authz.WithPrincipal(ctx, &authz.Principal{User: admin, Permissions: perms})

	categoryUC := usecase.NewCategoryUseCase(categoryRepo)
	productUC := usecase.NewProductUseCase(txRunner, productRepo, categoryRepo, supplierRepo)
	imported, skipped, err := importCatalog(actx, categoryUC, productUC, rows)
	if err != nil {
		log.Fatal().Err(err).Msg("importar catálogo")
	}
	log.Info().Int("importados", imported).Int("omitidos", skipped).Msg("catálogo importado")
}

// importCatalog crea las categorías que falten y los productos; un SKU existente se omite.
func importCatalog(ctx context.Context, categories *usecase.CategoryUseCase, products *usecase.ProductUseCase, rows []catalogRow) (imported, skipped int, err error) {
	existing, err := categories.List(ctx)
	if err != nil {
		return 0, 0, err
	}
	byName := make(map[string]string, len(existing))
	for _, c := range existing {
		byName[strings.ToLower(c.Name)] = c.ID
	}
	for _, row := range rows {
		categoryID := ""
		if row.Category != "" {
			key := strings.ToLower(row.Category)
			id, ok := byName[key]
			if !ok {
				c, err := categories.Create(ctx, dto.CreateCategoryRequest{Name: row.Category})
				if err != nil {
					return imported, skipped, fmt.Errorf("categoría %q: %w", row.Category, err)
				}
				id = c.ID
				byName[key] = id
			}
			categoryID = id
		}
		_, err := products.Create(ctx, dto.CreateProductRequest{
			SKU:          row.SKU,
			Name:         row.Name,
			CategoryID:   categoryID,
			Price:        row.Price,
			InitialStock: row.Stock,
			StockMinimum: row.StockMinimum,
		})
		if errors.Is(err, domain.ErrDuplicate) {
			skipped++
			continue
		}
		if err != nil {
			return imported, skipped, fmt.Errorf("producto %s: %w", row.SKU, err)
		}
		imported++
	}
	return imported, skipped, nil
}
