package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// DefaultLockTimeout espera máxima por el candado de escritura.
const DefaultLockTimeout = 3 * time.Second

// Store guarda el estado en memoria e implementa todos los puertos de repositorio y el TxRunner.
// Las transacciones se serializan con un único candado de escritura: trabajan sobre una copia
// del estado que reemplaza al original solo al confirmar.
type Store struct {
	mu          sync.RWMutex
	state       *state
	writeLock   chan struct{}
	lockTimeout time.Duration
}

type state struct {
	shops     map[string]*entity.Shop
	locations map[string]*entity.StockLocation
	products  map[string]*entity.Product
	items     map[string]*entity.InventoryItem
	itemKeys  map[entity.StockKey]string
	movements []*entity.StockMovement
	movIndex  map[string]int
	batches   map[string]*entity.BatchTracking
}

func newState() *state {
	return &state{
		shops:     map[string]*entity.Shop{},
		locations: map[string]*entity.StockLocation{},
		products:  map[string]*entity.Product{},
		items:     map[string]*entity.InventoryItem{},
		itemKeys:  map[entity.StockKey]string{},
		movIndex:  map[string]int{},
		batches:   map[string]*entity.BatchTracking{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.shops {
		c.shops[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.locations {
		l := *v
		c.locations[k] = &l
	}
	for k, v := range s.items {
		c.items[k] = v.Clone()
	}
	for k, v := range s.itemKeys {
		c.itemKeys[k] = v
	}
	c.movements = make([]*entity.StockMovement, len(s.movements))
	for i, m := range s.movements {
		cp := *m
		c.movements[i] = &cp
	}
	for k, v := range s.movIndex {
		c.movIndex[k] = v
	}
	for k, v := range s.batches {
		b := *v
		c.batches[k] = &b
	}
	return c
}

// New crea un store vacío. lockTimeout <= 0 usa DefaultLockTimeout.
func New(lockTimeout time.Duration) *Store {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &Store{
		state:       newState(),
		writeLock:   make(chan struct{}, 1),
		lockTimeout: lockTimeout,
	}
}

// Run ejecuta fn como una transacción. Si fn falla el estado no cambia.
// Sin candado dentro de lockTimeout devuelve domain.ErrConflict.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	s.mu.RLock()
	work := s.state.clone()
	s.mu.RUnlock()

	if err := fn(ctx, binding{store: s, tx: work}.repos()); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	}
	s.mu.Lock()
	s.state = work
	s.mu.Unlock()
	return nil
}

// Repos devuelve repositorios sobre el estado confirmado (lecturas fuera de transacción).
func (s *Store) Repos() inventory.Repos {
	return binding{store: s}.repos()
}

func (s *Store) acquire(ctx context.Context) error {
	timer := time.NewTimer(s.lockTimeout)
	defer timer.Stop()
	select {
	case s.writeLock <- struct{}{}:
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: tiempo de espera de bloqueo agotado", domain.ErrConflict)
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", domain.ErrConflict, ctx.Err())
	}
}

func (s *Store) release() { <-s.writeLock }

// SeedShop registra una tienda (el alta de tiendas es externa).
func (s *Store) SeedShop(shop entity.Shop) {
	s.seed(func(st *state) { st.shops[shop.ID] = &shop })
}

// SeedLocation registra una ubicación.
func (s *Store) SeedLocation(loc entity.StockLocation) {
	s.seed(func(st *state) { st.locations[loc.ID] = &loc })
}

// SeedProduct registra un producto del catálogo.
func (s *Store) SeedProduct(p entity.Product) {
	s.seed(func(st *state) { st.products[p.ID] = &p })
}

// seed espera a que termine la transacción en curso para no perder la escritura en su commit.
func (s *Store) seed(fn func(st *state)) {
	s.writeLock <- struct{}{}
	defer s.release()
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state)
}

// binding enlaza los repositorios a una transacción (tx != nil) o al estado confirmado.
type binding struct {
	store *Store
	tx    *state
}

func (b binding) repos() inventory.Repos {
	return inventory.Repos{
		Items:     itemRepo{b},
		Movements: movementRepo{b},
		Batches:   batchRepo{b},
		Locations: locationRepo{b},
		Shops:     shopRepo{b},
		Products:  productRepo{b},
	}
}

func (b binding) read(fn func(st *state) error) error {
	if b.tx != nil {
		return fn(b.tx)
	}
	b.store.mu.RLock()
	defer b.store.mu.RUnlock()
	return fn(b.store.state)
}

// write fuera de transacción toma el candado de escritura y muta el estado confirmado.
func (b binding) write(ctx context.Context, fn func(st *state) error) error {
	if b.tx != nil {
		return fn(b.tx)
	}
	if err := b.store.acquire(ctx); err != nil {
		return err
	}
	defer b.store.release()
	b.store.mu.RLock()
	work := b.store.state.clone()
	b.store.mu.RUnlock()
	if err := fn(work); err != nil {
		return err
	}
	b.store.mu.Lock()
	b.store.state = work
	b.store.mu.Unlock()
	return nil
}
