package channel

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// Operaciones del canal interno.
const (
	OpStockUpdate       = "stock.update"
	OpStockCreate       = "stock.create"
	OpStockGet          = "stock.get"
	OpStockTransfer     = "stock.transfer"
	OpLowStockCheck     = "stock.lowStockCheck"
	OpOutOfStock        = "stock.outOfStock"
	OpExpiringProducts  = "stock.expiringProducts"
	OpStockMovements    = "stock.movements"
	OpStockReverse      = "stock.reverse"
	OpStockReconcile    = "stock.reconcile"
	OpBusinessInventory = "stats.businessInventory"
	OpShopInventory     = "stats.shopInventory"
)

// Envelope respuesta uniforme de todas las operaciones.
// Success false siempre trae Code y Message; Retryable solo es true en conflictos de bloqueo.
type Envelope struct {
	Success        bool                        `json:"success"`
	Item           *dto.ItemResponse           `json:"item,omitempty"`
	Movement       *dto.MovementResponse       `json:"movement,omitempty"`
	Transfer       *dto.TransferResponse       `json:"transfer,omitempty"`
	Products       []dto.ProductStockResponse  `json:"products,omitempty"`
	Movements      []dto.MovementResponse      `json:"movements,omitempty"`
	Reconciliation *dto.ReconciliationResponse `json:"reconciliation,omitempty"`
	Stats          *dto.InventoryStatsResponse `json:"stats,omitempty"`
	ShopStats      *dto.ShopStatsResponse      `json:"shop_stats,omitempty"`
	Page           *dto.PageResponse           `json:"page,omitempty"`
	Code           string                      `json:"code,omitempty"`
	Message        string                      `json:"message,omitempty"`
	Retryable      bool                        `json:"retryable,omitempty"`
}

// Dispatcher traduce operaciones del canal a los servicios del libro de stock.
type Dispatcher struct {
	registry *inventory.Registry
	transfer *inventory.TransferCoordinator
	ledger   *inventory.Ledger
	reorder  *inventory.ReorderEngine
	valuer   *inventory.ValuationAggregator
	log      zerolog.Logger
	handlers map[string]func(context.Context, domain.Scope, []byte) Envelope
}

// NewDispatcher construye el despachador.
func NewDispatcher(
	registry *inventory.Registry,
	transfer *inventory.TransferCoordinator,
	ledger *inventory.Ledger,
	reorder *inventory.ReorderEngine,
	valuer *inventory.ValuationAggregator,
	log zerolog.Logger,
) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		transfer: transfer,
		ledger:   ledger,
		reorder:  reorder,
		valuer:   valuer,
		log:      log.With().Str("component", "channel_dispatcher").Logger(),
	}
	d.handlers = map[string]func(context.Context, domain.Scope, []byte) Envelope{
		OpStockUpdate:       decodeInto(d.UpdateStock),
		OpStockCreate:       decodeInto(d.CreateItem),
		OpStockGet:          decodeInto(d.GetItem),
		OpStockTransfer:     decodeInto(d.Transfer),
		OpLowStockCheck:     decodeInto(d.LowStock),
		OpOutOfStock:        decodeInto(d.OutOfStock),
		OpExpiringProducts:  decodeInto(d.ExpiringProducts),
		OpStockMovements:    decodeInto(d.Movements),
		OpStockReverse:      decodeInto(d.Reverse),
		OpStockReconcile:    decodeInto(d.Reconcile),
		OpBusinessInventory: decodeInto(d.BusinessInventory),
		OpShopInventory:     decodeInto(d.ShopInventory),
	}
	return d
}

// Operations devuelve los nombres de operación soportados.
func (d *Dispatcher) Operations() []string {
	return []string{
		OpStockUpdate, OpStockCreate, OpStockGet, OpStockTransfer, OpLowStockCheck, OpOutOfStock,
		OpExpiringProducts, OpStockMovements, OpStockReverse, OpStockReconcile, OpBusinessInventory,
		OpShopInventory,
	}
}

// Dispatch decodifica payload (JSON) y ejecuta la operación op bajo scope.
func (d *Dispatcher) Dispatch(ctx context.Context, scope domain.Scope, op string, payload []byte) Envelope {
	h, ok := d.handlers[op]
	if !ok {
		return Failure(domain.Invalid("operation", fmt.Sprintf("operación desconocida %q", op)))
	}
	env := h(ctx, scope, payload)
	if !env.Success && env.Code == domain.CodeInternal {
		d.log.Error().Str("operation", op).Str("business_id", scope.BusinessID).Msg(env.Message)
		env.Message = "error interno"
	}
	return env
}

func decodeInto[T any](fn func(context.Context, domain.Scope, T) Envelope) func(context.Context, domain.Scope, []byte) Envelope {
	return func(ctx context.Context, scope domain.Scope, payload []byte) Envelope {
		var in T
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &in); err != nil {
				return Failure(domain.Invalid("payload", "JSON inválido"))
			}
		}
		return fn(ctx, scope, in)
	}
}

// Failure construye el sobre de error a partir de un error de dominio.
func Failure(err error) Envelope {
	return Envelope{
		Success:   false,
		Code:      domain.Code(err),
		Message:   err.Error(),
		Retryable: domain.Retryable(err),
	}
}

// UpdateStock stock.update: incrementa o decrementa la cantidad de un ítem existente.
func (d *Dispatcher) UpdateStock(ctx context.Context, scope domain.Scope, in dto.StockUpdateRequest) Envelope {
	if in.Quantity <= 0 {
		return Failure(domain.Invalid("quantity", "debe ser mayor a cero"))
	}
	var (
		delta int64
		mtype entity.MovementType
	)
	switch in.Type {
	case dto.UpdateIncrement:
		delta, mtype = in.Quantity, entity.MovementPurchase
	case dto.UpdateDecrement:
		delta, mtype = -in.Quantity, entity.MovementSale
	default:
		return Failure(domain.Invalid("type", "debe ser increment o decrement"))
	}
	if in.MovementType != "" {
		mtype = entity.MovementType(in.MovementType)
	}
	key := entity.NewStockKey(in.ProductID, in.LocationID).WithBatch(in.BatchID).WithVariant(in.VariantID)
	item, mov, err := d.registry.ApplyDelta(ctx, scope, inventory.DeltaInput{
		Key:       key,
		Delta:     delta,
		Type:      mtype,
		UnitCost:  in.UnitCost,
		Reference: in.Reference,
		Notes:     in.Notes,
	})
	if err != nil {
		return Failure(err)
	}
	ir := toItemResponse(item)
	mr := toMovementResponse(mov)
	return Envelope{Success: true, Item: &ir, Movement: &mr}
}

// CreateItem stock.create: alta de un ítem con su saldo inicial.
func (d *Dispatcher) CreateItem(ctx context.Context, scope domain.Scope, in dto.CreateItemRequest) Envelope {
	key := entity.NewStockKey(in.ProductID, in.LocationID).WithBatch(in.BatchID).WithVariant(in.VariantID)
	item, err := d.registry.CreateItem(ctx, scope, inventory.CreateItemInput{
		Key:             key,
		InitialQuantity: in.InitialQuantity,
		UnitCost:        in.UnitCost,
		SellingPrice:    in.SellingPrice,
		ReorderPoint:    in.ReorderPoint,
		ExpiryDate:      in.ExpiryDate,
		SupplierID:      in.SupplierID,
		Type:            entity.MovementType(in.MovementType),
		Reference:       in.Reference,
	})
	if err != nil {
		return Failure(err)
	}
	ir := toItemResponse(item)
	return Envelope{Success: true, Item: &ir}
}

// GetItem stock.get: por item_id o por clave producto/ubicación/lote/variante.
func (d *Dispatcher) GetItem(ctx context.Context, scope domain.Scope, in dto.GetItemRequest) Envelope {
	var (
		item *entity.InventoryItem
		err  error
	)
	if in.ItemID != "" {
		item, err = d.registry.GetItemByID(ctx, scope, in.ItemID)
	} else {
		key := entity.NewStockKey(in.ProductID, in.LocationID).WithBatch(in.BatchID).WithVariant(in.VariantID)
		item, err = d.registry.GetItem(ctx, scope, key)
	}
	if err != nil {
		return Failure(err)
	}
	ir := toItemResponse(item)
	return Envelope{Success: true, Item: &ir}
}

// Transfer stock.transfer: mueve stock entre dos ubicaciones del negocio.
func (d *Dispatcher) Transfer(ctx context.Context, scope domain.Scope, in dto.TransferRequest) Envelope {
	if in.BusinessID != "" && in.BusinessID != scope.BusinessID {
		return Failure(fmt.Errorf("%w: business_id no coincide con el token", domain.ErrUnauthorizedScope))
	}
	if in.PerformedBy != "" && in.PerformedBy != scope.ActorID {
		return Failure(fmt.Errorf("%w: performed_by no coincide con el token", domain.ErrUnauthorizedScope))
	}
	res, err := d.transfer.Transfer(ctx, scope, inventory.TransferInput{
		SourceLocationID:      in.SourceLocationID,
		DestinationLocationID: in.DestinationLocationID,
		ProductID:             in.ProductID,
		BatchNumber:           in.BatchID,
		VariantID:             in.VariantID,
		Quantity:              in.Quantity,
		Reference:             in.Reference,
		Notes:                 in.Notes,
	})
	if err != nil {
		return Failure(err)
	}
	return Envelope{Success: true, Transfer: toTransferResponse(res)}
}

// LowStock stock.lowStockCheck.
func (d *Dispatcher) LowStock(ctx context.Context, scope domain.Scope, in dto.StockScopeRequest) Envelope {
	views, err := d.reorder.ListLowStock(ctx, scope, inventory.StockScope{ShopID: in.ShopID, LocationID: in.LocationID})
	if err != nil {
		return Failure(err)
	}
	return Envelope{Success: true, Products: toProductStocks(views)}
}

// OutOfStock stock.outOfStock.
func (d *Dispatcher) OutOfStock(ctx context.Context, scope domain.Scope, in dto.StockScopeRequest) Envelope {
	views, err := d.reorder.ListOutOfStock(ctx, scope, inventory.StockScope{ShopID: in.ShopID, LocationID: in.LocationID})
	if err != nil {
		return Failure(err)
	}
	return Envelope{Success: true, Products: toProductStocks(views)}
}

// ListItems todos los ítems del alcance (sin clasificar).
func (d *Dispatcher) ListItems(ctx context.Context, scope domain.Scope, in dto.StockScopeRequest) Envelope {
	views, err := d.reorder.ListItems(ctx, scope, inventory.StockScope{ShopID: in.ShopID, LocationID: in.LocationID})
	if err != nil {
		return Failure(err)
	}
	return Envelope{Success: true, Products: toProductStocks(views)}
}

// ExpiringProducts stock.expiringProducts.
func (d *Dispatcher) ExpiringProducts(ctx context.Context, scope domain.Scope, in dto.ExpiringRequest) Envelope {
	views, err := d.reorder.ListExpiringBatches(ctx, scope,
		inventory.StockScope{ShopID: in.ShopID, LocationID: in.LocationID}, in.DaysThreshold)
	if err != nil {
		return Failure(err)
	}
	return Envelope{Success: true, Products: toProductStocks(views)}
}

// Movements stock.movements: consulta paginada del libro.
func (d *Dispatcher) Movements(ctx context.Context, scope domain.Scope, in dto.MovementsRequest) Envelope {
	in.DefaultPage()
	filter := repository.MovementFilter{
		ItemID:     in.ItemID,
		ProductID:  in.ProductID,
		LocationID: in.LocationID,
		TransferID: in.TransferID,
		From:       in.From,
		To:         in.To,
		Limit:      in.Limit,
		Offset:     in.Offset,
	}
	if in.Type != "" {
		t := entity.MovementType(in.Type)
		filter.Type = &t
	}
	list, err := d.ledger.Query(ctx, scope, filter)
	if err != nil {
		return Failure(err)
	}
	return Envelope{
		Success:   true,
		Movements: toMovementResponses(list),
		Page:      &dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}
}

// Reverse stock.reverse: compensa un movimiento (ambas patas si es traslado).
func (d *Dispatcher) Reverse(ctx context.Context, scope domain.Scope, in dto.ReverseRequest) Envelope {
	if in.MovementID == "" {
		return Failure(domain.Invalid("movement_id", "es requerido"))
	}
	list, err := d.ledger.Reverse(ctx, scope, in.MovementID, in.Reason)
	if err != nil {
		return Failure(err)
	}
	return Envelope{Success: true, Movements: toMovementResponses(list)}
}

// Reconcile stock.reconcile.
func (d *Dispatcher) Reconcile(ctx context.Context, scope domain.Scope, in dto.ReconcileRequest) Envelope {
	if in.ItemID == "" {
		return Failure(domain.Invalid("item_id", "es requerido"))
	}
	rec, err := d.ledger.Reconcile(ctx, scope, in.ItemID)
	if err != nil {
		return Failure(err)
	}
	return Envelope{Success: true, Reconciliation: &dto.ReconciliationResponse{
		ItemID:    rec.ItemID,
		Quantity:  rec.Quantity,
		LedgerSum: rec.LedgerSum,
		Balanced:  rec.Balanced,
	}}
}

// BusinessInventory stats.businessInventory.
func (d *Dispatcher) BusinessInventory(ctx context.Context, scope domain.Scope, in dto.BusinessInventoryRequest) Envelope {
	if in.BusinessID != "" && in.BusinessID != scope.BusinessID {
		return Failure(fmt.Errorf("%w: negocio %s", domain.ErrUnauthorizedScope, in.BusinessID))
	}
	stats, err := d.valuer.BusinessStats(ctx, scope)
	if err != nil {
		return Failure(err)
	}
	return Envelope{Success: true, Stats: toStatsResponse(stats)}
}

// ShopInventory stats.shopInventory: totales de una tienda.
func (d *Dispatcher) ShopInventory(ctx context.Context, scope domain.Scope, in dto.ShopInventoryRequest) Envelope {
	stats, err := d.valuer.ShopStats(ctx, scope, in.ShopID)
	if err != nil {
		return Failure(err)
	}
	out := toShopStatsResponse(*stats)
	return Envelope{Success: true, ShopStats: &out}
}
