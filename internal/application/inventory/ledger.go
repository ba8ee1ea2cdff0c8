package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

const (
	defaultMovementLimit = 50
	maxMovementLimit     = 500
)

// Reconciliation compara la cantidad materializada con la suma del libro.
type Reconciliation struct {
	ItemID    string
	Quantity  int64
	LedgerSum int64
	Balanced  bool
}

// Ledger expone el libro de movimientos: consulta, reversión compensatoria y conciliación.
// No existe operación de edición; las correcciones son movimientos nuevos.
type Ledger struct {
	txRunner TxRunner
	reads    Repos
	registry *Registry
	log      zerolog.Logger
}

func NewLedger(txRunner TxRunner, reads Repos, registry *Registry, log zerolog.Logger) *Ledger {
	return &Ledger{
		txRunner: txRunner,
		reads:    reads,
		registry: registry,
		log:      log.With().Str("component", "stock_ledger").Logger(),
	}
}

// Query lista movimientos del negocio del alcance, más recientes primero.
func (l *Ledger) Query(ctx context.Context, scope domain.Scope, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, domain.Invalid("type", "tipo de movimiento desconocido")
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, domain.Invalid("to", "debe ser posterior a from")
	}
	if filter.Offset < 0 {
		return nil, domain.Invalid("offset", "no puede ser negativo")
	}
	filter.BusinessID = scope.BusinessID
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultMovementLimit
	case filter.Limit > maxMovementLimit:
		filter.Limit = maxMovementLimit
	}
	return l.reads.Movements.Query(ctx, filter)
}

// Reverse escribe el movimiento opuesto a movementID y marca el original como reversed.
// Si el movimiento es una pata de traslado se revierten ambas patas en la misma transacción.
func (l *Ledger) Reverse(ctx context.Context, scope domain.Scope, movementID, reason string) ([]*entity.StockMovement, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if movementID == "" {
		return nil, domain.Invalid("movement_id", "es requerido")
	}

	var compensations []*entity.StockMovement
	err := l.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		orig, err := repos.Movements.GetForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if orig == nil {
			return fmt.Errorf("%w: movimiento %s", domain.ErrNotFound, movementID)
		}
		if !scope.Owns(orig.BusinessID) {
			return domain.ErrUnauthorizedScope
		}
		if orig.ReversesID != nil {
			return domain.Invalid("movement_id", "un movimiento compensatorio no se revierte")
		}

		legs := []*entity.StockMovement{orig}
		if orig.IsTransferLeg() {
			if legs, err = transferLegs(ctx, repos, orig); err != nil {
				return err
			}
		}
		for _, leg := range legs {
			if leg.Status == entity.MovementReversed {
				return fmt.Errorf("%w: movimiento %s ya revertido", domain.ErrConflict, leg.ID)
			}
		}
		// Mismo orden de bloqueo que los traslados.
		sort.Slice(legs, func(i, j int) bool { return legs[i].LocationID < legs[j].LocationID })

		var transferID *string
		if orig.IsTransferLeg() {
			id := uuid.New().String()
			transferID = &id
		}
		notes := "reversión de " + movementID
		if reason != "" {
			notes += ": " + reason
		}
		for _, leg := range legs {
			item, err := repos.Items.GetByIDForUpdate(ctx, leg.ItemID)
			if err != nil {
				return err
			}
			if item == nil {
				return fmt.Errorf("%w: ítem %s", domain.ErrNotFound, leg.ItemID)
			}
			ch := movementChange{
				Delta:      -leg.Delta,
				Type:       entity.MovementAdjustment,
				ReversesID: &leg.ID,
				Reference:  leg.Reference,
				Notes:      notes,
			}
			if leg.IsTransferLeg() {
				// La reversión invierte origen y destino.
				ch.Type = entity.MovementTransfer
				ch.TransferID = transferID
				ch.SourceLocationID = leg.DestinationLocationID
				ch.DestinationLocationID = leg.SourceLocationID
			}
			if ch.Delta > 0 {
				cost := leg.CostPerUnit
				ch.UnitCost = &cost
			}
			mov, err := l.registry.applyDelta(ctx, repos, scope, item, ch)
			if err != nil {
				return err
			}
			if err := repos.Movements.MarkReversed(ctx, leg.ID); err != nil {
				return err
			}
			compensations = append(compensations, mov)
		}
		return nil
	})
	if err != nil {
		l.log.Warn().Err(err).Str("movement_id", movementID).Str("code", domain.Code(err)).Msg("reversión rechazada")
		return nil, err
	}
	l.log.Info().
		Str("movement_id", movementID).
		Int("compensations", len(compensations)).
		Str("actor_id", scope.ActorID).
		Msg("movimiento revertido")
	return compensations, nil
}

// Reconcile bloquea el ítem y compara su cantidad con la suma con signo de sus movimientos.
func (l *Ledger) Reconcile(ctx context.Context, scope domain.Scope, itemID string) (*Reconciliation, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if itemID == "" {
		return nil, domain.Invalid("item_id", "es requerido")
	}
	var rec *Reconciliation
	err := l.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		item, err := repos.Items.GetByIDForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if item, err = ownedItem(scope, item); err != nil {
			return err
		}
		sum, err := repos.Movements.SumDeltas(ctx, item.ID)
		if err != nil {
			return err
		}
		rec = &Reconciliation{
			ItemID:    item.ID,
			Quantity:  item.Quantity,
			LedgerSum: sum,
			Balanced:  sum == item.Quantity,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !rec.Balanced {
		l.log.Error().
			Str("item_id", rec.ItemID).
			Int64("quantity", rec.Quantity).
			Int64("ledger_sum", rec.LedgerSum).
			Msg("ítem descuadrado respecto al libro")
	}
	return rec, nil
}

// transferLegs devuelve las dos patas del traslado de m, bloqueando la pata hermana.
func transferLegs(ctx context.Context, repos Repos, m *entity.StockMovement) ([]*entity.StockMovement, error) {
	siblings, err := repos.Movements.Query(ctx, repository.MovementFilter{
		BusinessID: m.BusinessID,
		TransferID: *m.TransferID,
		Limit:      maxMovementLimit,
	})
	if err != nil {
		return nil, err
	}
	legs := []*entity.StockMovement{m}
	for _, s := range siblings {
		if s.ID == m.ID {
			continue
		}
		locked, err := repos.Movements.GetForUpdate(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		if locked != nil {
			legs = append(legs, locked)
		}
	}
	if len(legs) != 2 {
		return nil, fmt.Errorf("%w: traslado %s con %d patas", domain.ErrConflict, *m.TransferID, len(legs))
	}
	return legs, nil
}
