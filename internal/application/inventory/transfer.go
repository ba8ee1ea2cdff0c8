package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// TransferInput mueve Quantity unidades de un producto (lote/variante) entre dos ubicaciones del negocio.
type TransferInput struct {
	SourceLocationID      string
	DestinationLocationID string
	ProductID             string
	BatchNumber           string
	VariantID             string
	Quantity              int64
	Reference             string
	Notes                 string
}

// TransferResult ambas patas de un traslado confirmado.
type TransferResult struct {
	TransferID  string
	Source      *entity.InventoryItem
	Destination *entity.InventoryItem
	Outbound    *entity.StockMovement
	Inbound     *entity.StockMovement
}

// TransferCoordinator ejecuta traslados atómicos: o se aplican ambas patas o ninguna.
type TransferCoordinator struct {
	txRunner TxRunner
	registry *Registry
	log      zerolog.Logger
}

// NewTransferCoordinator construye el coordinador sobre el mismo registro de escritura.
func NewTransferCoordinator(txRunner TxRunner, registry *Registry, log zerolog.Logger) *TransferCoordinator {
	return &TransferCoordinator{
		txRunner: txRunner,
		registry: registry,
		log:      log.With().Str("component", "transfer_coordinator").Logger(),
	}
}

// Transfer descuenta en origen y suma en destino en una transacción.
// Las filas se bloquean en orden de location_id para que traslados opuestos concurrentes no se bloqueen mutuamente.
// Si el destino no tiene ítem para la clave se crea con el costo del origen.
func (c *TransferCoordinator) Transfer(ctx context.Context, scope domain.Scope, in TransferInput) (*TransferResult, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if in.ProductID == "" {
		return nil, domain.Invalid("product_id", "es requerido")
	}
	if in.SourceLocationID == "" || in.DestinationLocationID == "" {
		return nil, domain.Invalid("location_id", "origen y destino son requeridos")
	}
	if in.Quantity <= 0 {
		return nil, domain.Invalid("quantity", "debe ser mayor a cero")
	}
	if in.SourceLocationID == in.DestinationLocationID {
		return nil, domain.Invalid("to_location_id", "origen y destino deben ser distintos")
	}

	srcKey := entity.StockKey{
		ProductID:   in.ProductID,
		LocationID:  in.SourceLocationID,
		BatchNumber: in.BatchNumber,
		VariantID:   in.VariantID,
	}
	dstKey := srcKey.AtLocation(in.DestinationLocationID)
	transferID := uuid.New().String()

	var result *TransferResult
	err := c.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		for _, locID := range []string{in.SourceLocationID, in.DestinationLocationID} {
			if err := checkLocation(ctx, repos, scope, locID); err != nil {
				return err
			}
		}
		product, err := repos.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
		}
		if !scope.Owns(product.BusinessID) {
			return domain.ErrUnauthorizedScope
		}

		locked, err := lockKeys(ctx, repos, srcKey, dstKey)
		if err != nil {
			return err
		}
		src := locked[in.SourceLocationID]
		if src == nil {
			return &domain.InsufficientStockError{ItemID: srcKey.String(), Requested: in.Quantity, Available: 0}
		}
		if !scope.Owns(src.BusinessID) {
			return domain.ErrUnauthorizedScope
		}
		if src.Quantity < in.Quantity {
			return &domain.InsufficientStockError{ItemID: src.ID, Requested: in.Quantity, Available: src.Quantity}
		}
		dst := locked[in.DestinationLocationID]
		if dst == nil {
			dst, err = c.registry.createEmptyItem(ctx, repos, product, src, dstKey)
			if errors.Is(err, domain.ErrDuplicateItem) {
				// Otra transacción creó el destino entre el bloqueo y el alta.
				return fmt.Errorf("%w: destino creado concurrentemente", domain.ErrConflict)
			}
			if err != nil {
				return err
			}
		} else if !scope.Owns(dst.BusinessID) {
			return domain.ErrUnauthorizedScope
		}

		srcLoc, dstLoc := in.SourceLocationID, in.DestinationLocationID
		cost := src.UnitCost
		out, err := c.registry.applyDelta(ctx, repos, scope, src, movementChange{
			Delta:                 -in.Quantity,
			Type:                  entity.MovementTransfer,
			TransferID:            &transferID,
			SourceLocationID:      &srcLoc,
			DestinationLocationID: &dstLoc,
			Reference:             in.Reference,
			Notes:                 in.Notes,
		})
		if err != nil {
			return err
		}
		inb, err := c.registry.applyDelta(ctx, repos, scope, dst, movementChange{
			Delta:                 in.Quantity,
			Type:                  entity.MovementTransfer,
			UnitCost:              &cost,
			TransferID:            &transferID,
			SourceLocationID:      &srcLoc,
			DestinationLocationID: &dstLoc,
			Reference:             in.Reference,
			Notes:                 in.Notes,
		})
		if err != nil {
			return err
		}
		result = &TransferResult{
			TransferID:  transferID,
			Source:      src,
			Destination: dst,
			Outbound:    out,
			Inbound:     inb,
		}
		return nil
	})
	if err != nil {
		c.log.Warn().Err(err).
			Str("product_id", in.ProductID).
			Str("from", in.SourceLocationID).
			Str("to", in.DestinationLocationID).
			Int64("quantity", in.Quantity).
			Str("code", domain.Code(err)).
			Msg("traslado rechazado")
		return nil, err
	}
	c.log.Info().
		Str("transfer_id", transferID).
		Str("product_id", in.ProductID).
		Str("from", in.SourceLocationID).
		Str("to", in.DestinationLocationID).
		Int64("quantity", in.Quantity).
		Str("actor_id", scope.ActorID).
		Msg("traslado confirmado")
	return result, nil
}

func checkLocation(ctx context.Context, repos Repos, scope domain.Scope, id string) error {
	loc, err := repos.Locations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if loc == nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidLocation, id)
	}
	if !scope.Owns(loc.BusinessID) {
		return domain.ErrUnauthorizedScope
	}
	return nil
}

// lockKeys bloquea las claves en orden ascendente de location_id y devuelve los ítems por ubicación.
// Un ítem inexistente queda como nil en el mapa.
func lockKeys(ctx context.Context, repos Repos, keys ...entity.StockKey) (map[string]*entity.InventoryItem, error) {
	ordered := append([]entity.StockKey(nil), keys...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].LocationID < ordered[j].LocationID })
	out := make(map[string]*entity.InventoryItem, len(ordered))
	for _, k := range ordered {
		item, err := repos.Items.GetForUpdate(ctx, k)
		if err != nil {
			return nil, err
		}
		out[k.LocationID] = item
	}
	return out, nil
}
