// Package cart holds the cart store: an ordered list of line items merged by
// (productId, weight, flavor), persisted as one JSON array after every
// mutation. The store does not price anything; callers supply unit prices.
package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/bakery_storefront/internal/models"
	"github.com/GTDGit/bakery_storefront/internal/pricing"
)

// Snapshot is an immutable view of the cart handed to readers and listeners.
type Snapshot struct {
	Items []models.CartLineItem `json:"items"`
	models.CartAggregate
}

// Listener is notified with the new snapshot after every change. Listeners
// run one at a time in mutation order and must not mutate the store.
type Listener func(Snapshot)

// Store is a single cart. All mutations are serialized by mu and persist the
// full line list before returning.
type Store struct {
	mu      sync.Mutex
	key     string
	storage Storage
	items   []models.CartLineItem
	ready   bool
	loadErr error
	seq     uint64 // bumped under mu for every published snapshot

	lmu       sync.Mutex
	listeners map[int]Listener
	nextID    int

	// nmu serializes delivery; delivered is the seq of the newest snapshot
	// handed to listeners. Older snapshots arriving late are dropped.
	nmu       sync.Mutex
	delivered uint64
}

// NewStore creates a store persisted under key. The store reads as empty
// until Load has run.
func NewStore(storage Storage, key string) *Store {
	return &Store{
		key:       key,
		storage:   storage,
		items:     []models.CartLineItem{},
		listeners: make(map[int]Listener),
	}
}

// Open creates a store and rehydrates it.
func Open(ctx context.Context, storage Storage, key string) *Store {
	s := NewStore(storage, key)
	s.Load(ctx)
	return s
}

// Key returns the storage key of the cart.
func (s *Store) Key() string {
	return s.key
}

// Load rehydrates the cart from storage. A missing or unreadable record
// yields an empty cart; Load never fails.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	s.items, s.loadErr = s.readRecord(ctx)
	s.ready = true
	seq, snap := s.publishLocked()
	s.mu.Unlock()

	s.notify(seq, snap)
}

// readRecord returns the stored lines. The error is only set when storage
// itself failed; a corrupt record is not an error.
func (s *Store) readRecord(ctx context.Context) ([]models.CartLineItem, error) {
	data, err := s.storage.Load(ctx, s.key)
	if err != nil {
		log.Warn().Err(err).Str("cart", s.key).Msg("Failed to load cart, starting empty")
		return []models.CartLineItem{}, err
	}
	if len(data) == 0 {
		return []models.CartLineItem{}, nil
	}

	var raw []models.CartLineItem
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Warn().Err(err).Str("cart", s.key).Msg("Corrupt cart record, starting empty")
		return []models.CartLineItem{}, nil
	}
	return sanitize(raw), nil
}

// LoadErr is the storage error hit by the last rehydration, if any.
func (s *Store) LoadErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// sanitize repairs records written by older clients: drops lines without a
// product, clamps quantities to 1 and merges lines whose keys collapse after
// sentinel normalization.
func sanitize(raw []models.CartLineItem) []models.CartLineItem {
	out := make([]models.CartLineItem, 0, len(raw))
	for _, it := range raw {
		if it.ProductID == "" {
			continue
		}
		key := pricing.NormalizeKey(it.Product, it.Key())
		it.SelectedWeight = key.Weight
		it.SelectedFlavor = key.Flavor
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		if it.UnitPrice < 0 {
			it.UnitPrice = 0
		}
		if i := indexOf(out, it.Key()); i >= 0 {
			out[i].Quantity += it.Quantity
			continue
		}
		out = append(out, it)
	}
	return out
}

// Ready reports whether Load has completed.
func (s *Store) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// AddToCart adds one unit of the (product, weight, flavor) selection. An
// existing line keeps its locked-in unit price; a new line takes unitPrice.
func (s *Store) AddToCart(ctx context.Context, product models.Product, weight, flavor string, unitPrice float64) {
	key := pricing.NormalizeKey(product, models.CartKey{ProductID: product.ID, Weight: weight, Flavor: flavor})
	if key.ProductID == "" {
		return
	}

	s.mutate(ctx, func() bool {
		if i := indexOf(s.items, key); i >= 0 {
			s.items[i].Quantity++
			return true
		}
		s.items = append(s.items, models.CartLineItem{
			ProductID:      key.ProductID,
			SelectedWeight: key.Weight,
			SelectedFlavor: key.Flavor,
			UnitPrice:      max(unitPrice, 0),
			Quantity:       1,
			Product:        cloneProduct(product),
		})
		return true
	})
}

// RemoveFromCart deletes the line with exactly this key.
func (s *Store) RemoveFromCart(ctx context.Context, key models.CartKey) {
	s.mutate(ctx, func() bool {
		i := s.indexLocked(key)
		if i < 0 {
			return false
		}
		s.items = append(s.items[:i], s.items[i+1:]...)
		return true
	})
}

// IncreaseAmount adds one unit to the matching line.
func (s *Store) IncreaseAmount(ctx context.Context, key models.CartKey) {
	s.mutate(ctx, func() bool {
		i := s.indexLocked(key)
		if i < 0 {
			return false
		}
		s.items[i].Quantity++
		return true
	})
}

// DecreaseAmount removes one unit from the matching line; the last unit
// removes the line.
func (s *Store) DecreaseAmount(ctx context.Context, key models.CartKey) {
	s.mutate(ctx, func() bool {
		i := s.indexLocked(key)
		if i < 0 {
			return false
		}
		if s.items[i].Quantity > 1 {
			s.items[i].Quantity--
		} else {
			s.items = append(s.items[:i], s.items[i+1:]...)
		}
		return true
	})
}

// UpdateItemVariant re-keys the line identified by old to (newWeight,
// newFlavor) and sets its unit price. When another line already holds the
// new key, that line absorbs the quantity and the new price, and the old
// line is dropped.
func (s *Store) UpdateItemVariant(ctx context.Context, old models.CartKey, newWeight, newFlavor string, newUnitPrice float64) {
	price := max(newUnitPrice, 0)

	s.mutate(ctx, func() bool {
		i := s.indexLocked(old)
		if i < 0 {
			return false
		}
		target := pricing.NormalizeKey(s.items[i].Product, models.CartKey{
			ProductID: s.items[i].ProductID,
			Weight:    newWeight,
			Flavor:    newFlavor,
		})
		if target == s.items[i].Key() {
			s.items[i].UnitPrice = price
			return true
		}
		if j := indexOf(s.items, target); j >= 0 {
			s.items[j].Quantity += s.items[i].Quantity
			s.items[j].UnitPrice = price
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
		s.items[i].SelectedWeight = target.Weight
		s.items[i].SelectedFlavor = target.Flavor
		s.items[i].UnitPrice = price
		return true
	})
}

// RemoveLines subtracts the quantities of ordered from the matching lines
// and drops lines that reach zero. Lines added or re-keyed after ordered was
// read are left alone.
func (s *Store) RemoveLines(ctx context.Context, ordered []models.CartLineItem) {
	s.mutate(ctx, func() bool {
		changed := false
		for _, o := range ordered {
			i := indexOf(s.items, o.Key())
			if i < 0 || o.Quantity < 1 {
				continue
			}
			changed = true
			if s.items[i].Quantity > o.Quantity {
				s.items[i].Quantity -= o.Quantity
				continue
			}
			s.items = append(s.items[:i], s.items[i+1:]...)
		}
		return changed
	})
}

// ClearCart empties the cart.
func (s *Store) ClearCart(ctx context.Context) {
	s.mutate(ctx, func() bool {
		s.items = []models.CartLineItem{}
		return true
	})
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []models.CartLineItem {
	return s.Snapshot().Items
}

// Find returns the line with the given key.
func (s *Store) Find(key models.CartKey) (models.CartLineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return models.CartLineItem{}, false
	}
	if i := s.indexLocked(key); i >= 0 {
		return s.items[i], true
	}
	return models.CartLineItem{}, false
}

// ItemCount is the sum of quantities.
func (s *Store) ItemCount() int {
	return s.Snapshot().TotalQuantity
}

// Total is the sum of unitPrice * quantity.
func (s *Store) Total() float64 {
	return s.Snapshot().TotalAmount
}

// Aggregate returns the derived totals.
func (s *Store) Aggregate() models.CartAggregate {
	return s.Snapshot().CartAggregate
}

// Snapshot returns the current lines and totals. Before Load it is empty.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers l for change notifications and returns a function
// that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.lmu.Unlock()

	return func() {
		s.lmu.Lock()
		delete(s.listeners, id)
		s.lmu.Unlock()
	}
}

// mutate runs fn under the lock, persists when fn reports a change and then
// notifies listeners outside the lock.
func (s *Store) mutate(ctx context.Context, fn func() bool) {
	s.mu.Lock()
	if !s.ready {
		// a mutation before Load would be overwritten by the rehydrated record
		s.items, s.loadErr = s.readRecord(ctx)
		s.ready = true
	}
	if !fn() {
		s.mu.Unlock()
		return
	}
	s.persistLocked(ctx)
	seq, snap := s.publishLocked()
	s.mu.Unlock()

	s.notify(seq, snap)
}

func (s *Store) persistLocked(ctx context.Context) {
	data, err := json.Marshal(s.items)
	if err != nil {
		log.Error().Err(err).Str("cart", s.key).Msg("Failed to encode cart")
		return
	}
	if err := s.storage.Save(ctx, s.key, data); err != nil {
		log.Warn().Err(err).Str("cart", s.key).Msg("Failed to persist cart")
	}
}

func (s *Store) snapshotLocked() Snapshot {
	if !s.ready {
		return Snapshot{Items: []models.CartLineItem{}}
	}
	items := make([]models.CartLineItem, len(s.items))
	copy(items, s.items)
	return Snapshot{Items: items, CartAggregate: aggregate(items)}
}

// publishLocked numbers the current snapshot for delivery.
func (s *Store) publishLocked() (uint64, Snapshot) {
	s.seq++
	return s.seq, s.snapshotLocked()
}

func (s *Store) notify(seq uint64, snap Snapshot) {
	s.nmu.Lock()
	defer s.nmu.Unlock()
	if seq <= s.delivered {
		return
	}
	s.delivered = seq

	s.lmu.Lock()
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.lmu.Unlock()

	for _, l := range ls {
		l(snap)
	}
}

// aggregate sums quantities and amounts in one pass.
func aggregate(items []models.CartLineItem) models.CartAggregate {
	qty := 0
	total := decimal.Zero
	for _, it := range items {
		qty += it.Quantity
		total = total.Add(decimal.NewFromFloat(it.UnitPrice).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return models.CartAggregate{TotalQuantity: qty, TotalAmount: total.InexactFloat64()}
}

func indexOf(items []models.CartLineItem, key models.CartKey) int {
	for i := range items {
		if items[i].Key() == key {
			return i
		}
	}
	return -1
}

// indexLocked finds key after normalizing it against the product snapshot
// of the first line of the same product.
func (s *Store) indexLocked(key models.CartKey) int {
	for i := range s.items {
		if s.items[i].ProductID == key.ProductID {
			return indexOf(s.items, pricing.NormalizeKey(s.items[i].Product, key))
		}
	}
	return -1
}

func cloneProduct(p models.Product) models.Product {
	if p.Price != nil {
		price := *p.Price
		p.Price = &price
	}
	if p.Variants != nil {
		variants := make([]models.Variant, len(p.Variants))
		for i, v := range p.Variants {
			if v.Price != nil {
				price := *v.Price
				v.Price = &price
			}
			variants[i] = v
		}
		p.Variants = variants
	}
	return p
}
