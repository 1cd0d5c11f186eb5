package service

import (
	"context"
	"net/http"
	"sync"

	"github.com/GTDGit/bakery_storefront/internal/cart"
	"github.com/GTDGit/bakery_storefront/internal/models"
	"github.com/GTDGit/bakery_storefront/pkg/bakeryapi"
)

func vp(original, discounted float64) *models.VariantPrice {
	return &models.VariantPrice{OriginalPrice: original, DiscountedPrice: discounted}
}

func truffleCake() models.Product {
	return models.Product{
		ID:       "truffle",
		Title:    "Chocolate Truffle",
		Category: "Chocolate Cakes",
		Variants: []models.Variant{
			{Label: "1 Kg", Price: vp(500, 450)},
			{Label: "2 Kg", Price: vp(950, 900)},
			{Label: "Chocolate", Price: vp(60, 50)},
			{Label: "Vanilla", Price: vp(0, 0)},
		},
	}
}

func photoCake() models.Product {
	return models.Product{
		ID:       "photo",
		Title:    "Photo Cake",
		Category: "Photo Cakes",
		Price:    vp(800, 700),
	}
}

// fakeBakery implements every upstream interface the services use.
type fakeBakery struct {
	mu       sync.Mutex
	cakes    map[string]models.Product
	order    []string
	listErr  error
	calls    map[string]int
	orders   []models.Order
	users    []models.User
	contacts []models.Contact

	createdOrders []*models.OrderRequest
	createErr     error
	nextOrderID   string
	// when set, CreateOrder signals createEntered and waits on createGate
	createEntered chan struct{}
	createGate    chan struct{}

	login    *bakeryapi.LoginResult
	loginErr error

	statusUpdates  map[string]models.OrderStatus
	paymentUpdates map[string]models.PaymentStatus
	submitted      []*models.Contact
}

func newFakeBakery(cakes ...models.Product) *fakeBakery {
	f := &fakeBakery{
		cakes:          make(map[string]models.Product),
		calls:          make(map[string]int),
		nextOrderID:    "order-1",
		statusUpdates:  make(map[string]models.OrderStatus),
		paymentUpdates: make(map[string]models.PaymentStatus),
	}
	for _, c := range cakes {
		f.cakes[c.ID] = c
		f.order = append(f.order, c.ID)
	}
	return f
}

func (f *fakeBakery) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBakery) hit(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeBakery) setCake(c models.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.cakes[c.ID]; !ok {
		f.order = append(f.order, c.ID)
	}
	f.cakes[c.ID] = c
}

func (f *fakeBakery) ListCakes(context.Context) ([]models.Product, error) {
	f.hit("ListCakes")
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Product, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.cakes[id])
	}
	return out, nil
}

func (f *fakeBakery) GetCake(_ context.Context, id string) (*models.Product, error) {
	f.hit("GetCake")
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cakes[id]
	if !ok {
		return nil, &bakeryapi.StatusError{StatusCode: http.StatusNotFound, Message: "Cake not found"}
	}
	return &c, nil
}

func (f *fakeBakery) CreateCake(_ context.Context, _ string, in *models.CakeInput) (*models.Product, error) {
	f.hit("CreateCake")
	c := models.Product{ID: "new-cake", Title: in.Title, Category: in.Category, Variants: in.Variants, Price: in.Price}
	f.setCake(c)
	return &c, nil
}

func (f *fakeBakery) UpdateCake(_ context.Context, _ string, id string, in *models.CakeInput) (*models.Product, error) {
	f.hit("UpdateCake")
	c := models.Product{ID: id, Title: in.Title, Category: in.Category, Variants: in.Variants, Price: in.Price}
	f.setCake(c)
	return &c, nil
}

func (f *fakeBakery) DeleteCake(context.Context, string, string) error {
	f.hit("DeleteCake")
	return nil
}

func (f *fakeBakery) CreateOrder(_ context.Context, order *models.OrderRequest) (string, error) {
	f.hit("CreateOrder")
	if f.createGate != nil {
		f.createEntered <- struct{}{}
		<-f.createGate
	}
	if f.createErr != nil {
		return "", f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdOrders = append(f.createdOrders, order)
	return f.nextOrderID, nil
}

func (f *fakeBakery) GetOrder(_ context.Context, _ string, id string) (*models.Order, error) {
	f.hit("GetOrder")
	for _, o := range f.orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, &bakeryapi.StatusError{StatusCode: http.StatusNotFound}
}

func (f *fakeBakery) ListOrders(context.Context, string) ([]models.Order, error) {
	f.hit("ListOrders")
	return append([]models.Order(nil), f.orders...), nil
}

func (f *fakeBakery) UpdateOrderStatus(_ context.Context, _ string, id string, status models.OrderStatus) error {
	f.statusUpdates[id] = status
	return nil
}

func (f *fakeBakery) UpdatePaymentStatus(_ context.Context, _ string, id string, status models.PaymentStatus) error {
	f.paymentUpdates[id] = status
	return nil
}

func (f *fakeBakery) DeleteOrder(context.Context, string, string) error { return nil }

func (f *fakeBakery) ListUsers(context.Context, string) ([]models.User, error) {
	return append([]models.User(nil), f.users...), nil
}

func (f *fakeBakery) GetUser(_ context.Context, _ string, id string) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, &bakeryapi.StatusError{StatusCode: http.StatusNotFound}
}

func (f *fakeBakery) DeleteUser(context.Context, string, string) error { return nil }

func (f *fakeBakery) ListContacts(context.Context, string) ([]models.Contact, error) {
	return append([]models.Contact(nil), f.contacts...), nil
}

func (f *fakeBakery) DeleteContact(context.Context, string, string) error { return nil }

func (f *fakeBakery) SubmitContact(_ context.Context, msg *models.Contact) error {
	f.submitted = append(f.submitted, msg)
	return nil
}

func (f *fakeBakery) Login(_ context.Context, email, _ string) (*bakeryapi.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	res := *f.login
	if res.User.Email == "" {
		res.User.Email = email
	}
	return &res, nil
}

// memReceipts is an in-memory ReceiptStore.
type memReceipts struct {
	mu       sync.Mutex
	receipts []models.OrderReceipt
	err      error
}

func (m *memReceipts) Create(_ context.Context, r *models.OrderReceipt) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = len(m.receipts) + 1
	m.receipts = append(m.receipts, *r)
	return nil
}

func (m *memReceipts) ListBySession(_ context.Context, session string, _ int) ([]models.OrderReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.OrderReceipt{}
	for i := len(m.receipts) - 1; i >= 0; i-- {
		if m.receipts[i].SessionID == session {
			out = append(out, m.receipts[i])
		}
	}
	return out, nil
}

func (m *memReceipts) GetByOrderID(_ context.Context, orderID string) (*models.OrderReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.receipts {
		if r.OrderID == orderID {
			return &r, nil
		}
	}
	return nil, nil
}

// chanMailer records confirmations on a channel.
type chanMailer struct {
	sent chan string
}

func (m *chanMailer) Enabled() bool { return true }

func (m *chanMailer) SendOrderConfirmation(_ context.Context, orderID string, _ *models.OrderRequest) error {
	m.sent <- orderID
	return nil
}

// recordingNotifier captures cart and order events.
type recordingNotifier struct {
	mu     sync.Mutex
	carts  map[string][]cart.Snapshot
	orders []*models.OrderReceipt
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{carts: make(map[string][]cart.Snapshot)}
}

func (n *recordingNotifier) NotifyCartChanged(session string, snap cart.Snapshot) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.carts[session] = append(n.carts[session], snap)
}

func (n *recordingNotifier) NotifyOrderCreated(r *models.OrderReceipt) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, r)
}

func (n *recordingNotifier) cartEvents(session string) []cart.Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]cart.Snapshot(nil), n.carts[session]...)
}
