package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/bakery_storefront/internal/cart"
	"github.com/GTDGit/bakery_storefront/internal/models"
	"github.com/GTDGit/bakery_storefront/internal/pricing"
	"github.com/GTDGit/bakery_storefront/internal/sse"
	"github.com/GTDGit/bakery_storefront/internal/utils"
)

// ProductLookup resolves a cake by id.
type ProductLookup interface {
	Get(ctx context.Context, id string) (*models.Product, error)
}

// AddItemRequest adds one unit of a cake. A nil selection means "use the
// default for this cake"; an explicit empty string means no selection.
type AddItemRequest struct {
	ProductID      string  `json:"productId" binding:"required"`
	SelectedWeight *string `json:"selectedWeight"`
	SelectedFlavor *string `json:"selectedFlavor"`
}

// ChangeVariantRequest moves a line to another (weight, flavor) selection.
type ChangeVariantRequest struct {
	models.CartKey
	NewWeight string `json:"newWeight"`
	NewFlavor string `json:"newFlavor"`
}

type openCart struct {
	store       *cart.Store
	unsubscribe func()
	lastAccess  time.Time
}

// CartService keeps one cart.Store per cart session and prices every line
// through the pricing package.
type CartService struct {
	storage  cart.Storage
	products ProductLookup
	notifier sse.Notifier
	idleTTL  time.Duration

	mu    sync.Mutex
	carts map[string]*openCart
	now   func() time.Time
}

// NewCartService constructs a CartService.
func NewCartService(storage cart.Storage, products ProductLookup, notifier sse.Notifier, idleTTL time.Duration) *CartService {
	if notifier == nil {
		notifier = sse.NopNotifier{}
	}
	return &CartService{
		storage:  storage,
		products: products,
		notifier: notifier,
		idleTTL:  idleTTL,
		carts:    make(map[string]*openCart),
		now:      time.Now,
	}
}

// Store returns the open store of session, rehydrating it on first use.
func (s *CartService) Store(ctx context.Context, session string) (*cart.Store, error) {
	if session == "" {
		return nil, utils.ErrInvalidSession
	}

	s.mu.Lock()
	if oc, ok := s.carts[session]; ok {
		oc.lastAccess = s.now()
		s.mu.Unlock()
		return oc.store, nil
	}
	s.mu.Unlock()

	// Rehydrate outside the registry lock so one slow read does not stall
	// other sessions.
	store := cart.Open(ctx, s.storage, session)
	if err := store.LoadErr(); err != nil {
		// serve this request from the empty cart but retry the read next time
		log.Warn().Err(err).Str("cart", session).Msg("Cart storage unavailable, store not cached")
		return store, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if oc, ok := s.carts[session]; ok {
		oc.lastAccess = s.now()
		return oc.store, nil
	}
	unsubscribe := store.Subscribe(func(snap cart.Snapshot) {
		s.notifier.NotifyCartChanged(session, snap)
	})
	s.carts[session] = &openCart{store: store, unsubscribe: unsubscribe, lastAccess: s.now()}
	return store, nil
}

// Get returns the cart of session.
func (s *CartService) Get(ctx context.Context, session string) (cart.Snapshot, error) {
	store, err := s.Store(ctx, session)
	if err != nil {
		return cart.Snapshot{}, err
	}
	return store.Snapshot(), nil
}

// AddItem prices the requested selection and adds one unit of it.
func (s *CartService) AddItem(ctx context.Context, session string, req AddItemRequest) (cart.Snapshot, error) {
	store, err := s.Store(ctx, session)
	if err != nil {
		return cart.Snapshot{}, err
	}
	product, err := s.products.Get(ctx, req.ProductID)
	if err != nil {
		return cart.Snapshot{}, err
	}

	weight, flavor := pricing.DefaultSelection(*product)
	if req.SelectedWeight != nil {
		weight = *req.SelectedWeight
	}
	if req.SelectedFlavor != nil {
		flavor = *req.SelectedFlavor
	}
	q := pricing.QuoteFor(*product, weight, flavor)
	if err := checkSelection(*product, q.SelectedWeight, q.SelectedFlavor, "selectedWeight", "selectedFlavor"); err != nil {
		return cart.Snapshot{}, err
	}

	store.AddToCart(ctx, *product, q.SelectedWeight, q.SelectedFlavor, q.UnitPrice())
	log.Debug().Str("cart", session).Str("product_id", product.ID).
		Str("weight", q.SelectedWeight).Str("flavor", q.SelectedFlavor).
		Float64("unit_price", q.UnitPrice()).Msg("Cart item added")
	return store.Snapshot(), nil
}

// Increase adds one unit to a line. Unknown keys leave the cart unchanged.
func (s *CartService) Increase(ctx context.Context, session string, key models.CartKey) (cart.Snapshot, error) {
	return s.apply(ctx, session, func(st *cart.Store) { st.IncreaseAmount(ctx, key) })
}

// Decrease removes one unit from a line, dropping it at zero.
func (s *CartService) Decrease(ctx context.Context, session string, key models.CartKey) (cart.Snapshot, error) {
	return s.apply(ctx, session, func(st *cart.Store) { st.DecreaseAmount(ctx, key) })
}

// Remove deletes a line.
func (s *CartService) Remove(ctx context.Context, session string, key models.CartKey) (cart.Snapshot, error) {
	return s.apply(ctx, session, func(st *cart.Store) { st.RemoveFromCart(ctx, key) })
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, session string) (cart.Snapshot, error) {
	return s.apply(ctx, session, func(st *cart.Store) { st.ClearCart(ctx) })
}

// ChangeVariant re-prices a line for a new selection using the product
// snapshot stored on the line, so catalog changes after the line was added
// do not leak into it.
func (s *CartService) ChangeVariant(ctx context.Context, session string, req ChangeVariantRequest) (cart.Snapshot, error) {
	store, err := s.Store(ctx, session)
	if err != nil {
		return cart.Snapshot{}, err
	}
	line, ok := store.Find(req.CartKey)
	if !ok {
		return cart.Snapshot{}, fmt.Errorf("cart line %s: %w", req.ProductID, utils.ErrNotFound)
	}

	q := pricing.QuoteFor(line.Product, req.NewWeight, req.NewFlavor)
	if err := checkSelection(line.Product, q.SelectedWeight, q.SelectedFlavor, "newWeight", "newFlavor"); err != nil {
		return cart.Snapshot{}, err
	}
	store.UpdateItemVariant(ctx, req.CartKey, q.SelectedWeight, q.SelectedFlavor, q.UnitPrice())
	return store.Snapshot(), nil
}

func (s *CartService) apply(ctx context.Context, session string, fn func(*cart.Store)) (cart.Snapshot, error) {
	store, err := s.Store(ctx, session)
	if err != nil {
		return cart.Snapshot{}, err
	}
	fn(store)
	return store.Snapshot(), nil
}

// EvictIdle closes stores not used for longer than the idle TTL. Their state
// is already persisted, so eviction only frees memory.
func (s *CartService) EvictIdle() int {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for session, oc := range s.carts {
		if oc.lastAccess.Before(cutoff) {
			oc.unsubscribe()
			delete(s.carts, session)
			n++
		}
	}
	return n
}

// OpenCount is the number of stores held in memory.
func (s *CartService) OpenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

// checkSelection rejects labels the product does not offer in that role.
func checkSelection(p models.Product, weight, flavor, weightField, flavorField string) error {
	c := pricing.Classify(p.Variants)
	ve := utils.NewValidationError()
	if weight != "" && !hasLabel(c.WeightVariants, weight) {
		ve.Add(weightField, "is not offered for this cake")
	}
	if flavor != "" && !hasLabel(c.FlavorVariants, flavor) {
		ve.Add(flavorField, "is not offered for this cake")
	}
	if ve.Empty() {
		return nil
	}
	return ve
}

func hasLabel(variants []models.Variant, label string) bool {
	for _, v := range variants {
		if strings.TrimSpace(v.Label) == label {
			return true
		}
	}
	return false
}
