package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

const maxLocationName = 200

// LocationUseCase alta, listado y cambio de nombre de ubicaciones de stock.
// Una ubicación no se elimina ni cambia de tienda; solo se renombra.
type LocationUseCase struct {
	txRunner inventory.TxRunner
	reads    inventory.Repos
	log      zerolog.Logger
	now      func() time.Time
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(txRunner inventory.TxRunner, reads inventory.Repos, log zerolog.Logger) *LocationUseCase {
	return &LocationUseCase{
		txRunner: txRunner,
		reads:    reads,
		log:      log.With().Str("component", "location_usecase").Logger(),
		now:      time.Now,
	}
}

// Create crea una ubicación del negocio, opcionalmente asociada a una tienda del mismo negocio.
func (uc *LocationUseCase) Create(ctx context.Context, scope domain.Scope, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	loc := &entity.StockLocation{
		ID:         uuid.New().String(),
		BusinessID: scope.BusinessID,
		Name:       name,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err = uc.txRunner.Run(ctx, func(ctx context.Context, repos inventory.Repos) error {
		if in.ShopID != "" {
			shop, err := repos.Shops.GetByID(ctx, in.ShopID)
			if err != nil {
				return err
			}
			if shop == nil {
				return fmt.Errorf("%w: tienda %s", domain.ErrNotFound, in.ShopID)
			}
			if !scope.Owns(shop.BusinessID) {
				return domain.ErrUnauthorizedScope
			}
			shopID := shop.ID
			loc.ShopID = &shopID
		}
		return repos.Locations.Create(ctx, loc)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("location_id", loc.ID).Str("name", loc.Name).Str("actor_id", scope.ActorID).Msg("ubicación creada")
	return toLocationResponse(loc), nil
}

// GetByID obtiene una ubicación del negocio.
func (uc *LocationUseCase) GetByID(ctx context.Context, scope domain.Scope, id string) (*dto.LocationResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	loc, err := uc.reads.Locations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, id)
	}
	if !scope.Owns(loc.BusinessID) {
		return nil, domain.ErrUnauthorizedScope
	}
	return toLocationResponse(loc), nil
}

// Rename cambia el nombre de una ubicación.
func (uc *LocationUseCase) Rename(ctx context.Context, scope domain.Scope, id string, in dto.RenameLocationRequest) (*dto.LocationResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	var out *entity.StockLocation
	err = uc.txRunner.Run(ctx, func(ctx context.Context, repos inventory.Repos) error {
		loc, err := repos.Locations.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if loc == nil {
			return fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, id)
		}
		if !scope.Owns(loc.BusinessID) {
			return domain.ErrUnauthorizedScope
		}
		at := uc.now()
		if err := repos.Locations.Rename(ctx, id, name, at); err != nil {
			return err
		}
		loc.Name = name
		loc.UpdatedAt = at
		out = loc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toLocationResponse(out), nil
}

// List lista ubicaciones del negocio; con shopID solo las de esa tienda.
func (uc *LocationUseCase) List(ctx context.Context, scope domain.Scope, shopID string) (*dto.LocationListResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	var (
		list []*entity.StockLocation
		err  error
	)
	if shopID != "" {
		shop, err := uc.reads.Shops.GetByID(ctx, shopID)
		if err != nil {
			return nil, err
		}
		if shop == nil {
			return nil, fmt.Errorf("%w: tienda %s", domain.ErrNotFound, shopID)
		}
		if !scope.Owns(shop.BusinessID) {
			return nil, domain.ErrUnauthorizedScope
		}
		list, err = uc.reads.Locations.ListByShop(ctx, shopID)
		if err != nil {
			return nil, err
		}
	} else if list, err = uc.reads.Locations.ListByBusiness(ctx, scope.BusinessID); err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLocationResponse(l))
	}
	return &dto.LocationListResponse{Items: items}, nil
}

// normalizeName aplica NFC, recorta y colapsa espacios internos.
func normalizeName(raw string) (string, error) {
	name := strings.Join(strings.Fields(norm.NFC.String(raw)), " ")
	if name == "" {
		return "", domain.Invalid("name", "es requerido")
	}
	if utf8.RuneCountInString(name) > maxLocationName {
		return "", domain.Invalid("name", fmt.Sprintf("máximo %d caracteres", maxLocationName))
	}
	return name, nil
}

func toLocationResponse(l *entity.StockLocation) *dto.LocationResponse {
	if l == nil {
		return nil
	}
	return &dto.LocationResponse{
		ID:         l.ID,
		BusinessID: l.BusinessID,
		ShopID:     l.ShopID,
		Name:       l.Name,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}
