package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/bakery_storefront/internal/cart"
	"github.com/GTDGit/bakery_storefront/internal/config"
	"github.com/GTDGit/bakery_storefront/internal/models"
	"github.com/GTDGit/bakery_storefront/internal/pricing"
	"github.com/GTDGit/bakery_storefront/internal/sse"
	"github.com/GTDGit/bakery_storefront/internal/utils"
)

// OrderAPI submits and reads orders upstream.
type OrderAPI interface {
	CreateOrder(ctx context.Context, order *models.OrderRequest) (string, error)
	GetOrder(ctx context.Context, token, id string) (*models.Order, error)
}

// ReceiptStore keeps local receipts of placed orders.
type ReceiptStore interface {
	Create(ctx context.Context, r *models.OrderReceipt) error
	ListBySession(ctx context.Context, session string, limit int) ([]models.OrderReceipt, error)
	GetByOrderID(ctx context.Context, orderID string) (*models.OrderReceipt, error)
}

// OrderMailer sends order confirmations.
type OrderMailer interface {
	Enabled() bool
	SendOrderConfirmation(ctx context.Context, orderID string, order *models.OrderRequest) error
}

// LineCustomization personalises the cart line with the given key.
type LineCustomization struct {
	models.CartKey
	Message  string `json:"message" binding:"max=100"`
	PhotoURL string `json:"photoUrl" binding:"omitempty,url"`
}

// CheckoutRequest is the checkout form.
type CheckoutRequest struct {
	Customer       models.Customer     `json:"customer"`
	Customizations []LineCustomization `json:"customizations" binding:"dive"`
}

// CheckoutResult is returned after an order was placed.
type CheckoutResult struct {
	OrderID       string             `json:"orderId"`
	Status        models.OrderStatus `json:"status"`
	PaymentMethod string             `json:"paymentMethod"`
	ItemCount     int                `json:"itemCount"`
	Totals        models.OrderTotals `json:"totals"`
}

// CheckoutService turns a cart into an upstream order.
type CheckoutService struct {
	carts    *CartService
	orders   OrderAPI
	receipts ReceiptStore
	mailer   OrderMailer
	notifier sse.Notifier
	cfg      config.CheckoutConfig

	mu       sync.Mutex
	inflight map[string]struct{} // sessions with an order being submitted
}

// NewCheckoutService constructs a CheckoutService. mailer and notifier may be nil.
func NewCheckoutService(carts *CartService, orders OrderAPI, receipts ReceiptStore, mailer OrderMailer, notifier sse.Notifier, cfg config.CheckoutConfig) *CheckoutService {
	if notifier == nil {
		notifier = sse.NopNotifier{}
	}
	return &CheckoutService{
		carts:    carts,
		orders:   orders,
		receipts: receipts,
		mailer:   mailer,
		notifier: notifier,
		cfg:      cfg,
		inflight: make(map[string]struct{}),
	}
}

// Summary returns the totals the current cart would be charged.
func (s *CheckoutService) Summary(ctx context.Context, session string) (*models.OrderTotals, error) {
	snap, err := s.carts.Get(ctx, session)
	if err != nil {
		return nil, err
	}
	totals := s.Totals(snap.Items)
	return &totals, nil
}

// Totals computes subtotal, delivery charge and grand total of lines.
func (s *CheckoutService) Totals(items []models.CartLineItem) models.OrderTotals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(decimal.NewFromFloat(it.UnitPrice).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	extra := decimal.NewFromFloat(s.cfg.DeliveryCharge)
	threshold := decimal.NewFromFloat(s.cfg.FreeDeliveryThreshold)
	if len(items) == 0 || (threshold.IsPositive() && subtotal.GreaterThanOrEqual(threshold)) {
		extra = decimal.Zero
	}

	return models.OrderTotals{
		Subtotal:     subtotal.InexactFloat64(),
		ExtraCharges: extra.InexactFloat64(),
		GrandTotal:   subtotal.Add(extra).InexactFloat64(),
	}
}

// Checkout validates the form, submits the order, records a receipt and
// removes the ordered lines from the cart. Nothing is sent upstream when
// validation fails. One checkout per session runs at a time; lines added
// while the order is in flight stay in the cart.
func (s *CheckoutService) Checkout(ctx context.Context, session string, req CheckoutRequest) (*CheckoutResult, error) {
	store, err := s.carts.Store(ctx, session)
	if err != nil {
		return nil, err
	}
	if !s.begin(session) {
		return nil, utils.ErrCheckoutInProgress
	}
	defer s.end(session)

	snap := store.Snapshot()
	if len(snap.Items) == 0 {
		return nil, utils.ErrEmptyCart
	}

	order, err := s.buildOrder(snap, req)
	if err != nil {
		return nil, err
	}

	orderID, err := s.orders.CreateOrder(ctx, order)
	if err != nil {
		log.Error().Err(err).Str("cart", session).Msg("Order submission failed")
		return nil, upstreamErr(err)
	}
	log.Info().Str("order_id", orderID).Str("cart", session).
		Int("items", order.ItemCount).Float64("grand_total", order.Totals.GrandTotal).
		Msg("Order placed")

	receipt := &models.OrderReceipt{
		OrderID:    orderID,
		SessionID:  session,
		Email:      order.Customer.Email,
		ItemCount:  order.ItemCount,
		GrandTotal: order.Totals.GrandTotal,
		Status:     string(order.Status),
		CreatedAt:  time.Now(),
	}
	// The order exists upstream at this point; a lost receipt must not fail
	// the checkout.
	if err := s.receipts.Create(ctx, receipt); err != nil {
		log.Error().Err(err).Str("order_id", orderID).Msg("Failed to store order receipt")
	}

	store.RemoveLines(ctx, snap.Items)
	s.notifier.NotifyOrderCreated(receipt)
	s.sendConfirmation(orderID, order)

	return &CheckoutResult{
		OrderID:       orderID,
		Status:        order.Status,
		PaymentMethod: order.PaymentMethod,
		ItemCount:     order.ItemCount,
		Totals:        order.Totals,
	}, nil
}

func (s *CheckoutService) begin(session string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[session]; busy {
		return false
	}
	s.inflight[session] = struct{}{}
	return true
}

func (s *CheckoutService) end(session string) {
	s.mu.Lock()
	delete(s.inflight, session)
	s.mu.Unlock()
}

func (s *CheckoutService) buildOrder(snap cart.Snapshot, req CheckoutRequest) (*models.OrderRequest, error) {
	ve := utils.NewValidationError()
	if err := utils.ValidateStruct(req); err != nil {
		fieldErr, ok := err.(*utils.ValidationError)
		if !ok {
			return nil, err
		}
		ve = fieldErr
	}

	products := make(map[string]models.Product, len(snap.Items))
	for _, line := range snap.Items {
		if _, ok := products[line.ProductID]; !ok {
			products[line.ProductID] = line.Product
		}
	}
	custom := make(map[models.CartKey]LineCustomization, len(req.Customizations))
	for _, c := range req.Customizations {
		custom[pricing.NormalizeKey(products[c.ProductID], c.CartKey)] = c
	}

	items := make([]models.OrderItem, 0, len(snap.Items))
	for i, line := range snap.Items {
		item := models.OrderItem{
			CakeID:         line.ProductID,
			Title:          line.Product.Title,
			Category:       line.Product.Category,
			Image:          line.Product.Image,
			SelectedWeight: line.SelectedWeight,
			SelectedFlavor: line.SelectedFlavor,
			Quantity:       line.Quantity,
			Price:          line.UnitPrice,
		}
		c, ok := custom[line.Key()]
		if ok && (strings.TrimSpace(c.Message) != "" || c.PhotoURL != "") {
			item.Customization = &models.Customization{
				Message:  strings.TrimSpace(c.Message),
				PhotoURL: c.PhotoURL,
			}
		}
		if s.photoRequired(line.Product.Category) && (item.Customization == nil || item.Customization.PhotoURL == "") {
			ve.Add(fmt.Sprintf("items[%d].customization.photoUrl", i), "a photo is required for this cake")
		}
		items = append(items, item)
	}

	if !ve.Empty() {
		return nil, ve
	}

	return &models.OrderRequest{
		Customer:      req.Customer,
		Items:         items,
		Totals:        s.Totals(snap.Items),
		ItemCount:     snap.TotalQuantity,
		Status:        models.OrderStatusPending,
		PaymentMethod: models.PaymentMethodCOD,
	}, nil
}

func (s *CheckoutService) photoRequired(category string) bool {
	for _, c := range s.cfg.PhotoRequiredCategories {
		if strings.EqualFold(strings.TrimSpace(c), strings.TrimSpace(category)) {
			return true
		}
	}
	return false
}

func (s *CheckoutService) sendConfirmation(orderID string, order *models.OrderRequest) {
	if s.mailer == nil || !s.mailer.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.mailer.SendOrderConfirmation(ctx, orderID, order); err != nil {
			log.Warn().Err(err).Str("order_id", orderID).Msg("Failed to send order confirmation")
			return
		}
		log.Info().Str("order_id", orderID).Str("email", order.Customer.Email).Msg("Order confirmation sent")
	}()
}

// Receipts lists the orders placed from a cart session, newest first.
func (s *CheckoutService) Receipts(ctx context.Context, session string) ([]models.OrderReceipt, error) {
	if session == "" {
		return nil, utils.ErrInvalidSession
	}
	return s.receipts.ListBySession(ctx, session, 50)
}

// Track returns the live state of an order placed from this session.
func (s *CheckoutService) Track(ctx context.Context, session, orderID string) (*models.Order, error) {
	receipt, err := s.receipts.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if receipt == nil || receipt.SessionID != session {
		return nil, fmt.Errorf("order %s: %w", orderID, utils.ErrNotFound)
	}
	order, err := s.orders.GetOrder(ctx, "", orderID)
	if err != nil {
		return nil, upstreamErr(err)
	}
	if order.ID == "" {
		order.ID = orderID
	}
	return order, nil
}
