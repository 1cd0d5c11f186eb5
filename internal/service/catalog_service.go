package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/bakery_storefront/internal/cache"
	"github.com/GTDGit/bakery_storefront/internal/models"
	"github.com/GTDGit/bakery_storefront/internal/pricing"
)

// CatalogSource reads cakes from the bakery API.
type CatalogSource interface {
	ListCakes(ctx context.Context) ([]models.Product, error)
	GetCake(ctx context.Context, id string) (*models.Product, error)
}

// CatalogCache is the optional read-through cache in front of the source.
type CatalogCache interface {
	GetList(ctx context.Context) ([]models.Product, error)
	SetList(ctx context.Context, cakes []models.Product) error
	GetCake(ctx context.Context, id string) (*models.Product, error)
	SetCake(ctx context.Context, cake *models.Product) error
	Invalidate(ctx context.Context) error
}

// Sort orders accepted by catalog listings.
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortTitle     = "title"
)

// CakeView is a cake enriched with its classified variants and default
// selection, as shown on listing cards and detail pages.
type CakeView struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Category       string           `json:"category"`
	Image          string           `json:"image"`
	Discount       float64          `json:"discount"`
	Variants       []models.Variant `json:"variants"`
	WeightVariants []models.Variant `json:"weightVariants"`
	FlavorVariants []models.Variant `json:"flavorVariants"`
	Default        pricing.Quote    `json:"default"`
}

// NewCakeView builds the view of p.
func NewCakeView(p models.Product) CakeView {
	c := pricing.Classify(p.Variants)
	variants := p.Variants
	if variants == nil {
		variants = []models.Variant{}
	}
	return CakeView{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.Description,
		Category:       p.Category,
		Image:          p.Image,
		Discount:       p.Discount,
		Variants:       variants,
		WeightVariants: c.WeightVariants,
		FlavorVariants: c.FlavorVariants,
		Default:        pricing.DefaultQuote(p),
	}
}

// ListQuery filters, orders and pages a cake listing.
type ListQuery struct {
	Category string
	Search   string
	Sort     string
	Page     int
	Limit    int
}

// CatalogService serves the storefront catalog.
type CatalogService struct {
	source CatalogSource
	cache  CatalogCache
}

// NewCatalogService constructs a CatalogService. cache may be nil.
func NewCatalogService(source CatalogSource, cache CatalogCache) *CatalogService {
	return &CatalogService{source: source, cache: cache}
}

// All returns every cake, from cache when warm.
func (s *CatalogService) All(ctx context.Context) ([]models.Product, error) {
	if s.cache != nil {
		cakes, err := s.cache.GetList(ctx)
		if err == nil {
			return cakes, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			log.Warn().Err(err).Msg("Catalog cache read failed")
		}
	}
	return s.Refresh(ctx)
}

// Refresh reads the catalog from the bakery API and refills the cache.
func (s *CatalogService) Refresh(ctx context.Context) ([]models.Product, error) {
	cakes, err := s.source.ListCakes(ctx)
	if err != nil {
		return nil, upstreamErr(err)
	}
	if s.cache != nil {
		if err := s.cache.SetList(ctx, cakes); err != nil {
			log.Warn().Err(err).Msg("Catalog cache write failed")
		}
	}
	return cakes, nil
}

// Get returns one cake.
func (s *CatalogService) Get(ctx context.Context, id string) (*models.Product, error) {
	if s.cache != nil {
		cake, err := s.cache.GetCake(ctx, id)
		if err == nil {
			return cake, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			log.Warn().Err(err).Str("cake_id", id).Msg("Catalog cache read failed")
		}
	}
	cake, err := s.source.GetCake(ctx, id)
	if err != nil {
		return nil, upstreamErr(err)
	}
	if cake.ID == "" {
		cake.ID = id
	}
	if s.cache != nil {
		if err := s.cache.SetCake(ctx, cake); err != nil {
			log.Warn().Err(err).Str("cake_id", id).Msg("Catalog cache write failed")
		}
	}
	return cake, nil
}

// Invalidate drops cached catalog data after an admin write.
func (s *CatalogService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("Catalog cache invalidation failed")
	}
}

// List returns one page of enriched cakes and the number of matches.
func (s *CatalogService) List(ctx context.Context, q ListQuery) ([]CakeView, int, error) {
	cakes, err := s.All(ctx)
	if err != nil {
		return nil, 0, err
	}
	views := QueryCakes(cakes, q)
	page, limit := normalizePage(q.Page, q.Limit, 100)
	return paginate(views, page, limit), len(views), nil
}

// Detail returns the enriched view of one cake.
func (s *CatalogService) Detail(ctx context.Context, id string) (*CakeView, error) {
	cake, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	v := NewCakeView(*cake)
	return &v, nil
}

// Quote prices a selection of one cake. Labels the cake does not offer in
// that role are rejected, the same way the cart rejects them.
func (s *CatalogService) Quote(ctx context.Context, id, weight, flavor string) (*pricing.Quote, error) {
	cake, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	q := pricing.QuoteFor(*cake, weight, flavor)
	if err := checkSelection(*cake, q.SelectedWeight, q.SelectedFlavor, "weight", "flavor"); err != nil {
		return nil, err
	}
	return &q, nil
}

// Categories returns distinct categories in catalog order.
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	cakes, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	out := []string{}
	for _, c := range cakes {
		name := strings.TrimSpace(c.Category)
		key := strings.ToLower(name)
		if name == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}

// QueryCakes filters by category and search text and orders the result.
// Search is a case-insensitive substring match over title, description and
// category.
func QueryCakes(cakes []models.Product, q ListQuery) []CakeView {
	category := strings.ToLower(strings.TrimSpace(q.Category))
	search := strings.ToLower(strings.TrimSpace(q.Search))

	views := make([]CakeView, 0, len(cakes))
	for _, c := range cakes {
		if category != "" && strings.ToLower(strings.TrimSpace(c.Category)) != category {
			continue
		}
		if search != "" && !matchesSearch(c, search) {
			continue
		}
		views = append(views, NewCakeView(c))
	}

	switch q.Sort {
	case SortPriceAsc:
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].Default.UnitPrice() < views[j].Default.UnitPrice()
		})
	case SortPriceDesc:
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].Default.UnitPrice() > views[j].Default.UnitPrice()
		})
	case SortTitle:
		sort.SliceStable(views, func(i, j int) bool {
			return strings.ToLower(views[i].Title) < strings.ToLower(views[j].Title)
		})
	}
	return views
}

func matchesSearch(c models.Product, search string) bool {
	return strings.Contains(strings.ToLower(c.Title), search) ||
		strings.Contains(strings.ToLower(c.Description), search) ||
		strings.Contains(strings.ToLower(c.Category), search)
}
