package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/internal/interfaces/channel"
	"github.com/jhoicas/stock-ledger-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Dispatcher *channel.Dispatcher
	LocationUC *usecase.LocationUseCase
	JWTSecret  string
	JWTIssuer  string
	Log        zerolog.Logger
}

// Router registra las rutas de la API. Todo bajo /api requiere Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	stockHandler := NewStockHandler(deps.Dispatcher, deps.Log)
	stock := api.Group("/stock")
	stock.Post("/update", stockHandler.Update)
	stock.Post("/create", stockHandler.Create)
	stock.Post("/transfer", stockHandler.Transfer)
	stock.Get("/items", stockHandler.ListItems)
	stock.Get("/items/:id", stockHandler.GetItem)
	stock.Get("/items/:id/reconcile", stockHandler.Reconcile)
	stock.Get("/lookup", stockHandler.Lookup)
	stock.Get("/low-stock", stockHandler.LowStock)
	stock.Get("/out-of-stock", stockHandler.OutOfStock)
	stock.Get("/expiring", stockHandler.Expiring)
	stock.Get("/movements", stockHandler.Movements)
	stock.Post("/movements/:id/reverse", RequireRole(jwt.RoleAdmin), stockHandler.Reverse)

	api.Get("/stats/business-inventory", stockHandler.BusinessInventory)
	api.Get("/stats/shops/:id", stockHandler.ShopInventory)
	api.Post("/rpc/:operation", stockHandler.RPC)

	locationHandler := NewLocationHandler(deps.LocationUC, deps.Log)
	locations := api.Group("/locations")
	locations.Post("/", locationHandler.Create)
	locations.Get("/", locationHandler.List)
	locations.Get("/:id", locationHandler.GetByID)
	locations.Patch("/:id", locationHandler.Rename)
}
