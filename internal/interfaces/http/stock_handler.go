package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/interfaces/channel"
	"github.com/jhoicas/stock-ledger-api/pkg/jwt"
)

// StockHandler expone las operaciones del libro de stock (protegido).
type StockHandler struct {
	dispatcher *channel.Dispatcher
	log        zerolog.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(dispatcher *channel.Dispatcher, log zerolog.Logger) *StockHandler {
	return &StockHandler{dispatcher: dispatcher, log: log.With().Str("component", "stock_handler").Logger()}
}

// Update godoc
// @Summary      Incrementar o decrementar stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockUpdateRequest  true  "product_id, location_id, quantity, type (increment|decrement)"
// @Success      200   {object}  channel.Envelope
// @Failure      400   {object}  channel.Envelope
// @Failure      404   {object}  channel.Envelope
// @Failure      409   {object}  channel.Envelope
// @Router       /api/stock/update [post]
func (h *StockHandler) Update(c *fiber.Ctx) error {
	var in dto.StockUpdateRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	return writeEnvelope(c, h.log, h.dispatcher.UpdateStock(c.UserContext(), ScopeFrom(c), in), fiber.StatusOK)
}

// Create godoc
// @Summary      Crear ítem de inventario con saldo inicial
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateItemRequest  true  "Clave del ítem, cantidad inicial y costos"
// @Success      201   {object}  channel.Envelope
// @Failure      400   {object}  channel.Envelope
// @Failure      409   {object}  channel.Envelope
// @Router       /api/stock/create [post]
func (h *StockHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	return writeEnvelope(c, h.log, h.dispatcher.CreateItem(c.UserContext(), ScopeFrom(c), in), fiber.StatusCreated)
}

// Transfer godoc
// @Summary      Trasladar stock entre ubicaciones
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "Origen, destino, producto y cantidad"
// @Success      200   {object}  channel.Envelope
// @Failure      400   {object}  channel.Envelope
// @Failure      409   {object}  channel.Envelope
// @Router       /api/stock/transfer [post]
func (h *StockHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	return writeEnvelope(c, h.log, h.dispatcher.Transfer(c.UserContext(), ScopeFrom(c), in), fiber.StatusOK)
}

// GetItem godoc
// @Summary      Obtener ítem por ID
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  channel.Envelope
// @Failure      404  {object}  channel.Envelope
// @Router       /api/stock/items/{id} [get]
func (h *StockHandler) GetItem(c *fiber.Ctx) error {
	in := dto.GetItemRequest{ItemID: c.Params("id")}
	return writeEnvelope(c, h.log, h.dispatcher.GetItem(c.UserContext(), ScopeFrom(c), in), fiber.StatusOK)
}

// Lookup godoc
// @Summary      Obtener ítem por clave
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id   query  string  true   "Producto"
// @Param        location_id  query  string  true   "Ubicación"
// @Param        batch_id     query  string  false  "Lote"
// @Param        variant_id   query  string  false  "Variante"
// @Success      200  {object}  channel.Envelope
// @Failure      404  {object}  channel.Envelope
// @Router       /api/stock/lookup [get]
func (h *StockHandler) Lookup(c *fiber.Ctx) error {
	var in dto.GetItemRequest
	if err := c.QueryParser(&in); err != nil {
		return invalidBody(c)
	}
	in.ItemID = ""
	return writeEnvelope(c, h.log, h.dispatcher.GetItem(c.UserContext(), ScopeFrom(c), in), fiber.StatusOK)
}

// ListItems godoc
// @Summary      Listar ítems de una ubicación, tienda o del negocio
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        shop_id      query  string  false  "Tienda"
// @Param        location_id  query  string  false  "Ubicación"
// @Success      200  {object}  channel.Envelope
// @Router       /api/stock/items [get]
func (h *StockHandler) ListItems(c *fiber.Ctx) error {
	var in dto.StockScopeRequest
	if err := c.QueryParser(&in); err != nil {
		return invalidBody(c)
	}
	return writeEnvelope(c, h.log, h.dispatcher.ListItems(c.UserContext(), ScopeFrom(c), in), fiber.StatusOK)
}

// LowStock godoc
// @Summary      Ítems en o bajo el punto de reorden
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        shop_id      query  string  false  "Tienda"
// @Param        location_id  query  string  false  "Ubicación"
// @Success      200  {object}  channel.Envelope
// @Router       /api/stock/low-stock [get]
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	var in dto.StockScopeRequest
	if err := c.QueryParser(&in); err != nil {
		return invalidBody(c)
	}
	return writeEnvelope(c, h.log, h.dispatcher.LowStock(c.UserContext(), ScopeFrom(c), in), fiber.StatusOK)
}

// OutOfStock godoc
// @Summary      Ítems agotados
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        shop_id      query  string  false  "Tienda"
// @Param        location_id  query  string  false  "Ubicación"
// @Success      200  {object}  channel.Envelope
// @Router       /api/stock/out-of-stock [get]
func (h *StockHandler) OutOfStock(c *fiber.Ctx) error {
	var in dto.StockScopeRequest
	if err := c.QueryParser(&in); err != nil {
		return invalidBody(c)
	}
	return writeEnvelope(c, h.log, h.dispatcher.OutOfStock(c.UserContext(), ScopeFrom(c), in), fiber.StatusOK)
}

// Expiring godoc
// @Summary      Lotes activos que vencen dentro del horizonte
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        shop_id      query  string  false  "Tienda"
// @Param        location_id  query  string  false  "Ubicación"
// @Param        days         query  int     false  "Días (0 = horizonte configurado)"
// @Success      200  {object}  channel.Envelope
// @Failure      400  {object}  channel.Envelope
// @Router       /api/stock/expiring [get]
func (h *StockHandler) Expiring(c *fiber.Ctx) error {
	var in dto.ExpiringRequest
	if err := c.QueryParser(&in); err != nil {
		return invalidBody(c)
	}
	return writeEnvelope(c, h.log, h.dispatcher.ExpiringProducts(c.UserContext(), ScopeFrom(c), in), fiber.StatusOK)
}

// Movements godoc
// @Summary      Consultar el libro de movimientos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        item_id      query  string  false  "Ítem"
// @Param        product_id   query  string  false  "Producto"
// @Param        location_id  query  string  false  "Ubicación"
// @Param        transfer_id  query  string  false  "Traslado"
// @Param        type         query  string  false  "Tipo de movimiento"
// @Param        from         query  string  false  "Desde (RFC3339)"
// @Param        to           query  string  false  "Hasta (RFC3339)"
// @Param        limit        query  int     false  "Límite"  default(50)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  channel.Envelope
// @Failure      400  {object}  channel.Envelope
// @Router       /api/stock/movements [get]
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	var in dto.MovementsRequest
	if err := c.QueryParser(&in); err != nil {
		return invalidBody(c)
	}
	var err error
	if in.From, err = queryTime(c, "from"); err != nil {
		return writeError(c, h.log, err)
	}
	if in.To, err = queryTime(c, "to"); err != nil {
		return writeError(c, h.log, err)
	}
	return writeEnvelope(c, h.log, h.dispatcher.Movements(c.UserContext(), ScopeFrom(c), in), fiber.StatusOK)
}

// Reverse godoc
// @Summary      Revertir un movimiento (ambas patas si es traslado)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true   "ID del movimiento"
// @Param        body  body  dto.ReverseRequest  false  "reason"
// @Success      200   {object}  channel.Envelope
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  channel.Envelope
// @Router       /api/stock/movements/{id}/reverse [post]
func (h *StockHandler) Reverse(c *fiber.Ctx) error {
	var in dto.ReverseRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	in.MovementID = c.Params("id")
	return writeEnvelope(c, h.log, h.dispatcher.Reverse(c.UserContext(), ScopeFrom(c), in), fiber.StatusOK)
}

// Reconcile godoc
// @Summary      Conciliar cantidad del ítem contra la suma del libro
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  channel.Envelope
// @Failure      404  {object}  channel.Envelope
// @Router       /api/stock/items/{id}/reconcile [get]
func (h *StockHandler) Reconcile(c *fiber.Ctx) error {
	in := dto.ReconcileRequest{ItemID: c.Params("id")}
	return writeEnvelope(c, h.log, h.dispatcher.Reconcile(c.UserContext(), ScopeFrom(c), in), fiber.StatusOK)
}

// BusinessInventory godoc
// @Summary      Valorización del inventario del negocio por tienda
// @Tags         stats
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  channel.Envelope
// @Router       /api/stats/business-inventory [get]
func (h *StockHandler) BusinessInventory(c *fiber.Ctx) error {
	in := dto.BusinessInventoryRequest{BusinessID: c.Query("business_id")}
	return writeEnvelope(c, h.log, h.dispatcher.BusinessInventory(c.UserContext(), ScopeFrom(c), in), fiber.StatusOK)
}

// ShopInventory godoc
// @Summary      Valorización del inventario de una tienda
// @Tags         stats
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la tienda"
// @Success      200  {object}  channel.Envelope
// @Failure      404  {object}  channel.Envelope
// @Router       /api/stats/shops/{id} [get]
func (h *StockHandler) ShopInventory(c *fiber.Ctx) error {
	in := dto.ShopInventoryRequest{ShopID: c.Params("id")}
	return writeEnvelope(c, h.log, h.dispatcher.ShopInventory(c.UserContext(), ScopeFrom(c), in), fiber.StatusOK)
}

// RPC godoc
// @Summary      Ejecutar una operación del canal interno
// @Description  El cuerpo es el payload JSON de la operación (stock.update, stock.transfer, ...).
// @Tags         rpc
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        operation  path  string  true  "Operación"
// @Success      200  {object}  channel.Envelope
// @Failure      400  {object}  channel.Envelope
// @Router       /api/rpc/{operation} [post]
func (h *StockHandler) RPC(c *fiber.Ctx) error {
	op := c.Params("operation")
	if op == channel.OpStockReverse && !hasRole(GetRole(c), []string{jwt.RoleAdmin}) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin permiso para esta operación"})
	}
	return writeEnvelope(c, h.log, h.dispatcher.Dispatch(c.UserContext(), ScopeFrom(c), op, c.Body()), fiber.StatusOK)
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domain.Invalid(key, "formato RFC3339 requerido")
	}
	return &t, nil
}
