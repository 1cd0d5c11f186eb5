package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/bakery_storefront/internal/models"
	"github.com/GTDGit/bakery_storefront/internal/utils"
)

// AdminAPI is the bearer-authenticated part of the bakery API.
type AdminAPI interface {
	ListCakes(ctx context.Context) ([]models.Product, error)
	GetCake(ctx context.Context, id string) (*models.Product, error)
	CreateCake(ctx context.Context, token string, in *models.CakeInput) (*models.Product, error)
	UpdateCake(ctx context.Context, token, id string, in *models.CakeInput) (*models.Product, error)
	DeleteCake(ctx context.Context, token, id string) error

	ListOrders(ctx context.Context, token string) ([]models.Order, error)
	GetOrder(ctx context.Context, token, id string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, token, id string, status models.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, token, id string, status models.PaymentStatus) error
	DeleteOrder(ctx context.Context, token, id string) error

	ListUsers(ctx context.Context, token string) ([]models.User, error)
	GetUser(ctx context.Context, token, id string) (*models.User, error)
	DeleteUser(ctx context.Context, token, id string) error

	ListContacts(ctx context.Context, token string) ([]models.Contact, error)
	DeleteContact(ctx context.Context, token, id string) error
}

// CatalogInvalidator drops cached catalog data.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context)
}

// OrderQuery filters the admin order list.
type OrderQuery struct {
	Search string
	Status string
	Page   int
	Limit  int
}

// AdminService backs the back-office. Every call acts with the upstream
// token of the signed-in admin.
type AdminService struct {
	api     AdminAPI
	catalog CatalogInvalidator
}

func NewAdminService(api AdminAPI, catalog CatalogInvalidator) *AdminService {
	return &AdminService{api: api, catalog: catalog}
}

// ListCakes reads the catalog uncached so edits show up at once.
func (s *AdminService) ListCakes(ctx context.Context, q ListQuery) ([]CakeView, int, error) {
	cakes, err := s.api.ListCakes(ctx)
	if err != nil {
		return nil, 0, upstreamErr(err)
	}
	views := QueryCakes(cakes, q)
	page, limit := normalizePage(q.Page, q.Limit, 200)
	return paginate(views, page, limit), len(views), nil
}

func (s *AdminService) GetCake(ctx context.Context, id string) (*CakeView, error) {
	cake, err := s.api.GetCake(ctx, id)
	if err != nil {
		return nil, upstreamErr(err)
	}
	v := NewCakeView(*cake)
	return &v, nil
}

func (s *AdminService) CreateCake(ctx context.Context, admin *models.AdminSession, in *models.CakeInput) (*models.Product, error) {
	if err := validateCakeInput(in); err != nil {
		return nil, err
	}
	cake, err := s.api.CreateCake(ctx, admin.UpstreamToken, in)
	if err != nil {
		return nil, upstreamErr(err)
	}
	s.catalog.Invalidate(ctx)
	log.Info().Str("admin", admin.Email).Str("cake_id", cake.ID).Msg("Cake created")
	return cake, nil
}

func (s *AdminService) UpdateCake(ctx context.Context, admin *models.AdminSession, id string, in *models.CakeInput) (*models.Product, error) {
	if err := validateCakeInput(in); err != nil {
		return nil, err
	}
	cake, err := s.api.UpdateCake(ctx, admin.UpstreamToken, id, in)
	if err != nil {
		return nil, upstreamErr(err)
	}
	s.catalog.Invalidate(ctx)
	log.Info().Str("admin", admin.Email).Str("cake_id", id).Msg("Cake updated")
	return cake, nil
}

func (s *AdminService) DeleteCake(ctx context.Context, admin *models.AdminSession, id string) error {
	if err := s.api.DeleteCake(ctx, admin.UpstreamToken, id); err != nil {
		return upstreamErr(err)
	}
	s.catalog.Invalidate(ctx)
	log.Info().Str("admin", admin.Email).Str("cake_id", id).Msg("Cake deleted")
	return nil
}

// validateCakeInput requires every variant to carry a price and the cake to
// be priceable through either variants or a legacy price.
func validateCakeInput(in *models.CakeInput) error {
	ve := utils.NewValidationError()
	if err := utils.ValidateStruct(in); err != nil {
		fieldErr, ok := err.(*utils.ValidationError)
		if !ok {
			return err
		}
		ve = fieldErr
	}
	for i, v := range in.Variants {
		if strings.TrimSpace(v.Label) == "" {
			ve.Add(fmt.Sprintf("variants[%d].label", i), "is required")
		}
		if v.Price == nil {
			ve.Add(fmt.Sprintf("variants[%d].price", i), "is required")
		} else if v.Price.DiscountedPrice > v.Price.OriginalPrice {
			ve.Add(fmt.Sprintf("variants[%d].price.discountedPrice", i), "must not exceed originalPrice")
		}
	}
	if len(in.Variants) == 0 && in.Price == nil {
		ve.Add("price", "is required when the cake has no variants")
	}
	if ve.Empty() {
		return nil
	}
	return ve
}

// ListOrders returns matching orders, newest first.
func (s *AdminService) ListOrders(ctx context.Context, admin *models.AdminSession, q OrderQuery) ([]models.Order, int, error) {
	orders, err := s.api.ListOrders(ctx, admin.UpstreamToken)
	if err != nil {
		return nil, 0, upstreamErr(err)
	}

	status := strings.ToLower(strings.TrimSpace(q.Status))
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if status != "" && strings.ToLower(string(o.Status)) != status {
			continue
		}
		if search != "" && !orderMatches(o, search) {
			continue
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	page, limit := normalizePage(q.Page, q.Limit, 200)
	return paginate(out, page, limit), len(out), nil
}

func orderMatches(o models.Order, search string) bool {
	for _, f := range []string{o.ID, o.Customer.Name, o.Customer.Email, o.Customer.Phone} {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

func (s *AdminService) GetOrder(ctx context.Context, admin *models.AdminSession, id string) (*models.Order, error) {
	order, err := s.api.GetOrder(ctx, admin.UpstreamToken, id)
	if err != nil {
		return nil, upstreamErr(err)
	}
	return order, nil
}

func (s *AdminService) UpdateOrderStatus(ctx context.Context, admin *models.AdminSession, id string, status models.OrderStatus) error {
	if !models.ValidOrderStatus(status) {
		ve := utils.NewValidationError()
		ve.Add("status", "is not a known order status")
		return ve
	}
	if err := s.api.UpdateOrderStatus(ctx, admin.UpstreamToken, id, status); err != nil {
		return upstreamErr(err)
	}
	log.Info().Str("admin", admin.Email).Str("order_id", id).Str("status", string(status)).Msg("Order status updated")
	return nil
}

func (s *AdminService) UpdatePaymentStatus(ctx context.Context, admin *models.AdminSession, id string, status models.PaymentStatus) error {
	if !models.ValidPaymentStatus(status) {
		ve := utils.NewValidationError()
		ve.Add("paymentStatus", "is not a known payment status")
		return ve
	}
	if err := s.api.UpdatePaymentStatus(ctx, admin.UpstreamToken, id, status); err != nil {
		return upstreamErr(err)
	}
	log.Info().Str("admin", admin.Email).Str("order_id", id).Str("payment_status", string(status)).Msg("Payment status updated")
	return nil
}

func (s *AdminService) DeleteOrder(ctx context.Context, admin *models.AdminSession, id string) error {
	if err := s.api.DeleteOrder(ctx, admin.UpstreamToken, id); err != nil {
		return upstreamErr(err)
	}
	log.Info().Str("admin", admin.Email).Str("order_id", id).Msg("Order deleted")
	return nil
}

// ListUsers returns matching users in upstream order.
func (s *AdminService) ListUsers(ctx context.Context, admin *models.AdminSession, search string, page, limit int) ([]models.User, int, error) {
	users, err := s.api.ListUsers(ctx, admin.UpstreamToken)
	if err != nil {
		return nil, 0, upstreamErr(err)
	}
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		out = append(out, u)
	}
	page, limit = normalizePage(page, limit, 200)
	return paginate(out, page, limit), len(out), nil
}

func (s *AdminService) GetUser(ctx context.Context, admin *models.AdminSession, id string) (*models.User, error) {
	user, err := s.api.GetUser(ctx, admin.UpstreamToken, id)
	if err != nil {
		return nil, upstreamErr(err)
	}
	return user, nil
}

func (s *AdminService) DeleteUser(ctx context.Context, admin *models.AdminSession, id string) error {
	if err := s.api.DeleteUser(ctx, admin.UpstreamToken, id); err != nil {
		return upstreamErr(err)
	}
	log.Info().Str("admin", admin.Email).Str("user_id", id).Msg("User deleted")
	return nil
}

// ListContacts returns contact messages, newest first.
func (s *AdminService) ListContacts(ctx context.Context, admin *models.AdminSession, page, limit int) ([]models.Contact, int, error) {
	contacts, err := s.api.ListContacts(ctx, admin.UpstreamToken)
	if err != nil {
		return nil, 0, upstreamErr(err)
	}
	sort.SliceStable(contacts, func(i, j int) bool { return contacts[i].CreatedAt.After(contacts[j].CreatedAt) })
	page, limit = normalizePage(page, limit, 200)
	return paginate(contacts, page, limit), len(contacts), nil
}

func (s *AdminService) DeleteContact(ctx context.Context, admin *models.AdminSession, id string) error {
	if err := s.api.DeleteContact(ctx, admin.UpstreamToken, id); err != nil {
		return upstreamErr(err)
	}
	log.Info().Str("admin", admin.Email).Str("contact_id", id).Msg("Contact deleted")
	return nil
}
