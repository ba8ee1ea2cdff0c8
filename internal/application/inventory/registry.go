package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
)

// Registry es el único camino de escritura sobre InventoryItem.
// Cada cambio de cantidad actualiza la fila y agrega un StockMovement en la misma transacción.
type Registry struct {
	txRunner TxRunner
	reads    Repos
	log      zerolog.Logger
	now      func() time.Time
}

// NewRegistry construye el registro. reads son repositorios fuera de transacción para lecturas.
func NewRegistry(txRunner TxRunner, reads Repos, log zerolog.Logger) *Registry {
	return &Registry{
		txRunner: txRunner,
		reads:    reads,
		log:      log.With().Str("component", "inventory_registry").Logger(),
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// DeltaInput entrada de ApplyDelta. Delta positivo entra, negativo sale.
// UnitCost solo aplica a entradas y recalcula el costo promedio ponderado.
type DeltaInput struct {
	Key       entity.StockKey
	Delta     int64
	Type      entity.MovementType
	UnitCost  *decimal.Decimal
	Reference string
	Notes     string
}

// CreateItemInput entrada de CreateItem.
// ReorderPoint nil toma el punto de reorden del producto.
// Type por defecto es purchase (adjustment para saldos iniciales en cero).
type CreateItemInput struct {
	Key             entity.StockKey
	InitialQuantity int64
	UnitCost        decimal.Decimal
	SellingPrice    decimal.Decimal
	ReorderPoint    *int64
	ExpiryDate      *time.Time
	SupplierID      *string
	Type            entity.MovementType
	Reference       string
}

// movementChange describe un cambio interno; admite campos de traslado y reversión.
type movementChange struct {
	Delta                 int64
	Type                  entity.MovementType
	UnitCost              *decimal.Decimal
	TransferID            *string
	SourceLocationID      *string
	DestinationLocationID *string
	ReversesID            *string
	Reference             string
	Notes                 string
}

// GetItem devuelve el ítem de la clave o domain.ErrNotFound.
func (r *Registry) GetItem(ctx context.Context, scope domain.Scope, key entity.StockKey) (*entity.InventoryItem, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if err := key.Validate(); err != nil {
		return nil, domain.Invalid("key", err.Error())
	}
	item, err := r.reads.Items.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	return ownedItem(scope, item)
}

// GetItemByID devuelve el ítem por ID o domain.ErrNotFound.
func (r *Registry) GetItemByID(ctx context.Context, scope domain.Scope, id string) (*entity.InventoryItem, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	item, err := r.reads.Items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ownedItem(scope, item)
}

// ApplyDelta suma delta a la cantidad del ítem bajo bloqueo de fila y agrega un movimiento.
// Falla con InsufficientStock si la cantidad quedaría negativa, sin escribir nada.
// Los traslados se hacen con TransferCoordinator, no aquí.
func (r *Registry) ApplyDelta(ctx context.Context, scope domain.Scope, in DeltaInput) (*entity.InventoryItem, *entity.StockMovement, error) {
	if err := scope.Validate(); err != nil {
		return nil, nil, err
	}
	if err := in.Key.Validate(); err != nil {
		return nil, nil, domain.Invalid("key", err.Error())
	}
	if !in.Type.Valid() {
		return nil, nil, domain.Invalid("type", "tipo de movimiento desconocido")
	}
	if in.Type == entity.MovementTransfer {
		return nil, nil, domain.Invalid("type", "los traslados usan stock.transfer")
	}
	if in.Delta == 0 {
		return nil, nil, domain.Invalid("quantity", "debe ser distinta de cero")
	}
	if !in.Type.AllowsDelta(in.Delta) {
		return nil, nil, domain.Invalid("quantity", fmt.Sprintf("signo inválido para %s", in.Type))
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return nil, nil, domain.Invalid("unit_cost", "no puede ser negativo")
	}

	var (
		updated  *entity.InventoryItem
		movement *entity.StockMovement
	)
	err := r.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		// Bloquea la fila antes de validar: la verificación de no-negatividad usa el valor bloqueado.
		item, err := repos.Items.GetForUpdate(ctx, in.Key)
		if err != nil {
			return err
		}
		if item, err = ownedItem(scope, item); err != nil {
			return err
		}
		movement, err = r.applyDelta(ctx, repos, scope, item, movementChange{
			Delta:     in.Delta,
			Type:      in.Type,
			UnitCost:  in.UnitCost,
			Reference: in.Reference,
			Notes:     in.Notes,
		})
		if err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		r.logRejected(err, in.Key, in.Delta, in.Type)
		return nil, nil, err
	}
	r.log.Info().
		Str("item_id", updated.ID).
		Str("key", in.Key.String()).
		Int64("delta", in.Delta).
		Int64("quantity", updated.Quantity).
		Str("movement_type", string(in.Type)).
		Str("actor_id", scope.ActorID).
		Msg("stock actualizado")
	return updated, movement, nil
}

// CreateItem crea el ítem de la clave con su cantidad inicial y registra exactamente un movimiento.
// Falla con DuplicateItem si la clave ya existe: los reabastecimientos usan ApplyDelta.
func (r *Registry) CreateItem(ctx context.Context, scope domain.Scope, in CreateItemInput) (*entity.InventoryItem, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if err := in.Key.Validate(); err != nil {
		return nil, domain.Invalid("key", err.Error())
	}
	if in.InitialQuantity < 0 {
		return nil, domain.Invalid("initial_quantity", "no puede ser negativa")
	}
	if in.UnitCost.IsNegative() || in.SellingPrice.IsNegative() {
		return nil, domain.Invalid("unit_cost", "costos y precios no pueden ser negativos")
	}
	if in.ReorderPoint != nil && *in.ReorderPoint < 0 {
		return nil, domain.Invalid("reorder_point", "no puede ser negativo")
	}
	mtype := in.Type
	if mtype == "" {
		mtype = entity.MovementPurchase
		if in.InitialQuantity == 0 {
			mtype = entity.MovementAdjustment
		}
	}
	if mtype != entity.MovementPurchase && mtype != entity.MovementAdjustment {
		return nil, domain.Invalid("type", "la creación admite purchase o adjustment")
	}

	var created *entity.InventoryItem
	err := r.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		product, err := r.resolveProduct(ctx, repos, scope, in.Key)
		if err != nil {
			return err
		}
		if product.HasBatchTracking && in.Key.BatchNumber == "" {
			return domain.Invalid("batch_id", "el producto exige número de lote")
		}
		if product.HasExpiryDate && in.ExpiryDate == nil {
			return domain.Invalid("expiry_date", "el producto exige fecha de vencimiento")
		}
		existing, err := repos.Items.GetByKey(ctx, in.Key)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicateItem
		}

		reorder := product.ReorderPoint
		if in.ReorderPoint != nil {
			reorder = *in.ReorderPoint
		}
		now := r.now()
		item := &entity.InventoryItem{
			ID:           uuid.New().String(),
			BusinessID:   scope.BusinessID,
			Key:          in.Key,
			Quantity:     in.InitialQuantity,
			UnitCost:     in.UnitCost,
			SellingPrice: in.SellingPrice,
			ReorderPoint: reorder,
			ExpiryDate:   in.ExpiryDate,
			SupplierID:   in.SupplierID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		item.Refresh()
		if err := repos.Items.Create(ctx, item); err != nil {
			return err
		}
		if err := r.trackBatch(ctx, repos, product, item, now); err != nil {
			return err
		}
		mov := newMovement(scope, item, movementChange{
			Delta:     in.InitialQuantity,
			Type:      mtype,
			Reference: in.Reference,
			Notes:     "alta de ítem",
		}, item.UnitCost, now)
		if err := repos.Movements.Append(ctx, mov); err != nil {
			return err
		}
		created = item
		return nil
	})
	if err != nil {
		r.log.Warn().Err(err).Str("key", in.Key.String()).Msg("alta de ítem rechazada")
		return nil, err
	}
	r.log.Info().
		Str("item_id", created.ID).
		Str("key", in.Key.String()).
		Int64("quantity", created.Quantity).
		Str("actor_id", scope.ActorID).
		Msg("ítem de inventario creado")
	return created, nil
}

// applyDelta aplica un cambio a un ítem ya bloqueado por el llamador y agrega su movimiento.
func (r *Registry) applyDelta(ctx context.Context, repos Repos, scope domain.Scope, item *entity.InventoryItem, ch movementChange) (*entity.StockMovement, error) {
	newQty := item.Quantity + ch.Delta
	if newQty < 0 {
		return nil, &domain.InsufficientStockError{ItemID: item.ID, Requested: -ch.Delta, Available: item.Quantity}
	}
	costPerUnit := item.UnitCost
	if ch.Delta > 0 && ch.UnitCost != nil {
		costPerUnit = *ch.UnitCost
		item.UnitCost = domaininv.CostCalculator(item.Quantity, item.UnitCost, ch.Delta, *ch.UnitCost)
	}
	prevQty := item.Quantity
	now := r.now()
	item.Quantity = newQty
	item.UpdatedAt = now
	item.Refresh()
	if err := repos.Items.Update(ctx, item); err != nil {
		return nil, err
	}
	mov := newMovement(scope, item, ch, costPerUnit, now)
	if err := repos.Movements.Append(ctx, mov); err != nil {
		return nil, err
	}
	if err := syncBatchStatus(ctx, repos, item, prevQty); err != nil {
		return nil, err
	}
	return mov, nil
}

// createEmptyItem crea la fila con cantidad cero sin movimiento (destino de traslados);
// el movimiento lo escribe el applyDelta que sigue. Si el producto lleva lote, el lote
// nace depleted y el applyDelta entrante lo reactiva.
func (r *Registry) createEmptyItem(ctx context.Context, repos Repos, product *entity.Product, template *entity.InventoryItem, key entity.StockKey) (*entity.InventoryItem, error) {
	now := r.now()
	item := &entity.InventoryItem{
		ID:           uuid.New().String(),
		BusinessID:   template.BusinessID,
		Key:          key,
		Quantity:     0,
		UnitCost:     template.UnitCost,
		SellingPrice: template.SellingPrice,
		ReorderPoint: product.ReorderPoint,
		ExpiryDate:   template.ExpiryDate,
		SupplierID:   template.SupplierID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	item.Refresh()
	if err := repos.Items.Create(ctx, item); err != nil {
		return nil, err
	}
	if err := r.trackBatch(ctx, repos, product, item, now); err != nil {
		return nil, err
	}
	return item, nil
}

func (r *Registry) resolveProduct(ctx context.Context, repos Repos, scope domain.Scope, key entity.StockKey) (*entity.Product, error) {
	loc, err := repos.Locations.GetByID(ctx, key.LocationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidLocation, key.LocationID)
	}
	if !scope.Owns(loc.BusinessID) {
		return nil, domain.ErrUnauthorizedScope
	}
	product, err := repos.Products.GetByID(ctx, key.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, key.ProductID)
	}
	if !scope.Owns(product.BusinessID) {
		return nil, domain.ErrUnauthorizedScope
	}
	return product, nil
}

func (r *Registry) trackBatch(ctx context.Context, repos Repos, product *entity.Product, item *entity.InventoryItem, now time.Time) error {
	if !product.RequiresBatch() {
		return nil
	}
	status := entity.BatchActive
	if item.Quantity == 0 {
		status = entity.BatchDepleted
	}
	return repos.Batches.Create(ctx, &entity.BatchTracking{
		ID:          uuid.New().String(),
		ItemID:      item.ID,
		BusinessID:  item.BusinessID,
		BatchNumber: item.Key.BatchNumber,
		ExpiryDate:  item.ExpiryDate,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (r *Registry) logRejected(err error, key entity.StockKey, delta int64, mtype entity.MovementType) {
	ev := r.log.Warn()
	if !errors.Is(err, domain.ErrInsufficientStock) && !errors.Is(err, domain.ErrConflict) {
		ev = r.log.Error()
	}
	ev.Err(err).
		Str("key", key.String()).
		Int64("delta", delta).
		Str("movement_type", string(mtype)).
		Str("code", domain.Code(err)).
		Msg("cambio de stock rechazado")
}

// syncBatchStatus marca el lote como agotado al llegar a cero y lo reactiva al reabastecer.
func syncBatchStatus(ctx context.Context, repos Repos, item *entity.InventoryItem, prevQty int64) error {
	if (prevQty == 0) == (item.Quantity == 0) {
		return nil
	}
	batch, err := repos.Batches.GetByItem(ctx, item.ID)
	if err != nil || batch == nil {
		return err
	}
	switch {
	case item.Quantity == 0 && batch.Status == entity.BatchActive:
		return repos.Batches.UpdateStatus(ctx, batch.ID, entity.BatchDepleted)
	case item.Quantity > 0 && batch.Status == entity.BatchDepleted:
		return repos.Batches.UpdateStatus(ctx, batch.ID, entity.BatchActive)
	}
	return nil
}

func newMovement(scope domain.Scope, item *entity.InventoryItem, ch movementChange, costPerUnit decimal.Decimal, now time.Time) *entity.StockMovement {
	return &entity.StockMovement{
		ID:                    uuid.New().String(),
		BusinessID:            item.BusinessID,
		ItemID:                item.ID,
		ProductID:             item.Key.ProductID,
		LocationID:            item.Key.LocationID,
		Type:                  ch.Type,
		Delta:                 ch.Delta,
		Direction:             entity.DirectionOf(ch.Delta),
		TransferID:            ch.TransferID,
		SourceLocationID:      ch.SourceLocationID,
		DestinationLocationID: ch.DestinationLocationID,
		CostPerUnit:           costPerUnit,
		TotalCost:             domaininv.MovementCost(ch.Delta, costPerUnit),
		PerformedBy:           scope.ActorID,
		Reference:             ch.Reference,
		Notes:                 ch.Notes,
		Status:                entity.MovementCompleted,
		ReversesID:            ch.ReversesID,
		CreatedAt:             now,
	}
}

func ownedItem(scope domain.Scope, item *entity.InventoryItem) (*entity.InventoryItem, error) {
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if !scope.Owns(item.BusinessID) {
		return nil, domain.ErrUnauthorizedScope
	}
	return item, nil
}
