package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/bakery_storefront/internal/models"
)

const testKey = "cart:test"

type failingStorage struct {
	loadErr error
	saveErr error
	saves   int
}

func (f *failingStorage) Load(context.Context, string) ([]byte, error) { return nil, f.loadErr }
func (f *failingStorage) Save(context.Context, string, []byte) error {
	f.saves++
	return f.saveErr
}

func productA() models.Product {
	return models.Product{
		ID:       "1",
		Title:    "Chocolate Truffle",
		Category: "Chocolate Cakes",
		Variants: []models.Variant{
			{Label: "1 Kg", Price: &models.VariantPrice{OriginalPrice: 500, DiscountedPrice: 450}},
			{Label: "Chocolate", Price: &models.VariantPrice{OriginalPrice: 0, DiscountedPrice: 50}},
			{Label: "Vanilla", Price: &models.VariantPrice{OriginalPrice: 0, DiscountedPrice: 0}},
		},
	}
}

func newTestStore(t *testing.T) (*Store, *MemoryStorage) {
	t.Helper()
	storage := NewMemoryStorage()
	return Open(context.Background(), storage, testKey), storage
}

func TestAddToCart_MergesIdenticalKey(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	s.AddToCart(ctx, productA(), "1 Kg", "Chocolate", 500)
	require.Len(t, s.Items(), 1)
	assert.Equal(t, 1, s.Items()[0].Quantity)

	s.AddToCart(ctx, productA(), "1 Kg", "Chocolate", 500)
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 1000.0, s.Total())
	assert.Equal(t, 2, s.ItemCount())
}

func TestAddToCart_MergeInvariant(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	for i := 0; i < 7; i++ {
		s.AddToCart(ctx, productA(), "1 Kg", "Chocolate", 500)
	}
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)
}

func TestAddToCart_KeepsLockedInPrice(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	s.AddToCart(ctx, productA(), "1 Kg", "Chocolate", 500)
	s.AddToCart(ctx, productA(), "1 Kg", "Chocolate", 999)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 500.0, items[0].UnitPrice)
	assert.Equal(t, 1000.0, s.Total())
}

func TestAddToCart_DifferentFlavorIsNewLine(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	s.AddToCart(ctx, productA(), "1 Kg", "Chocolate", 500)
	s.AddToCart(ctx, productA(), "1 Kg", "Vanilla", 450)

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Chocolate", items[0].SelectedFlavor)
	assert.Equal(t, "Vanilla", items[1].SelectedFlavor)
	assert.Equal(t, 950.0, s.Total())
}

func TestAddToCart_SentinelSpellingsMerge(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	s.AddToCart(ctx, productA(), "1 Kg", "", 450)
	s.AddToCart(ctx, productA(), "1 Kg", "Standard", 450)
	s.AddToCart(ctx, productA(), "1 Kg ", "standard", 450)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, "", items[0].SelectedFlavor)
}

func TestAddToCart_IgnoresProductWithoutID(t *testing.T) {
	s, storage := newTestStore(t)
	s.AddToCart(context.Background(), models.Product{Title: "ghost"}, "", "", 10)

	assert.Empty(t, s.Items())
	data, _ := storage.Load(context.Background(), testKey)
	assert.Nil(t, data)
}

func TestAddToCart_SnapshotIsDetached(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	p := productA()
	s.AddToCart(ctx, p, "1 Kg", "Chocolate", 500)
	p.Title = "Renamed"
	p.Variants[0].Price.DiscountedPrice = 1

	item := s.Items()[0]
	assert.Equal(t, "Chocolate Truffle", item.Product.Title)
	assert.Equal(t, 450.0, item.Product.Variants[0].Price.DiscountedPrice)
}

func TestDecreaseAmount_RemovesAtZero(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	key := models.CartKey{ProductID: "1", Weight: "1 Kg", Flavor: "Chocolate"}

	for i := 0; i < 3; i++ {
		s.AddToCart(ctx, productA(), key.Weight, key.Flavor, 500)
	}

	s.DecreaseAmount(ctx, key)
	assert.Equal(t, 2, s.ItemCount())
	s.DecreaseAmount(ctx, key)
	assert.Equal(t, 1, s.ItemCount())
	s.DecreaseAmount(ctx, key)
	assert.Empty(t, s.Items())
	assert.Equal(t, 0.0, s.Total())

	for _, it := range s.Items() {
		assert.Greater(t, it.Quantity, 0)
	}
}

func TestIncreaseAndRemove(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	key := models.CartKey{ProductID: "1", Weight: "1 Kg", Flavor: "Chocolate"}

	s.AddToCart(ctx, productA(), key.Weight, key.Flavor, 500)
	s.IncreaseAmount(ctx, key)
	s.IncreaseAmount(ctx, key)
	assert.Equal(t, 3, s.ItemCount())

	s.RemoveFromCart(ctx, key)
	assert.Empty(t, s.Items())
}

func TestOperations_MissingKeyIsNoop(t *testing.T) {
	ctx := context.Background()
	storage := &failingStorage{}
	s := Open(ctx, storage, testKey)
	s.AddToCart(ctx, productA(), "1 Kg", "Chocolate", 500)
	saves := storage.saves

	missing := models.CartKey{ProductID: "1", Weight: "2 Kg", Flavor: "Chocolate"}
	s.IncreaseAmount(ctx, missing)
	s.DecreaseAmount(ctx, missing)
	s.RemoveFromCart(ctx, missing)
	s.UpdateItemVariant(ctx, missing, "1 Kg", "Vanilla", 10)

	assert.Equal(t, saves, storage.saves)
	assert.Equal(t, 1, s.ItemCount())
}

func TestRemoveFromCart_StandardMatchesEmpty(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	s.AddToCart(ctx, productA(), "1 Kg", "", 450)
	s.RemoveFromCart(ctx, models.CartKey{ProductID: "1", Weight: "1 Kg", Flavor: "Standard"})
	assert.Empty(t, s.Items())
}

func TestUpdateItemVariant_Rekeys(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	s.AddToCart(ctx, productA(), "1 Kg", "Chocolate", 500)
	s.AddToCart(ctx, productA(), "1 Kg", "Chocolate", 500)
	s.UpdateItemVariant(ctx, models.CartKey{ProductID: "1", Weight: "1 Kg", Flavor: "Chocolate"}, "1 Kg", "Vanilla", 450)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Vanilla", items[0].SelectedFlavor)
	assert.Equal(t, 450.0, items[0].UnitPrice)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 900.0, s.Total())
}

func TestUpdateItemVariant_SameKeyUpdatesPrice(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	key := models.CartKey{ProductID: "1", Weight: "1 Kg", Flavor: "Chocolate"}

	s.AddToCart(ctx, productA(), key.Weight, key.Flavor, 500)
	s.UpdateItemVariant(ctx, key, "1 Kg", "Chocolate", 480)

	assert.Equal(t, 480.0, s.Items()[0].UnitPrice)
}

func TestUpdateItemVariant_CollisionMergesIntoExistingLine(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	other := models.Product{ID: "2", Title: "Cheesecake"}
	s.AddToCart(ctx, productA(), "1 Kg", "Vanilla", 450) // line 0
	s.AddToCart(ctx, other, "", "", 300)                 // line 1
	s.AddToCart(ctx, productA(), "1 Kg", "Chocolate", 500)
	s.AddToCart(ctx, productA(), "1 Kg", "Chocolate", 500) // line 2, qty 2

	s.UpdateItemVariant(ctx, models.CartKey{ProductID: "1", Weight: "1 Kg", Flavor: "Chocolate"}, "1 Kg", "Vanilla", 455)

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, models.CartKey{ProductID: "1", Weight: "1 Kg", Flavor: "Vanilla"}, items[0].Key())
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 455.0, items[0].UnitPrice)
	assert.Equal(t, "2", items[1].ProductID)
	assert.Equal(t, 3*455.0+300, s.Total())
}

func TestClearCart(t *testing.T) {
	ctx := context.Background()
	s, storage := newTestStore(t)

	s.AddToCart(ctx, productA(), "1 Kg", "Chocolate", 500)
	s.ClearCart(ctx)

	assert.Empty(t, s.Items())
	data, err := storage.Load(ctx, testKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestPersistence_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, storage := newTestStore(t)

	s.AddToCart(ctx, productA(), "1 Kg", "Chocolate", 500)
	s.AddToCart(ctx, productA(), "1 Kg", "Vanilla", 450)
	s.AddToCart(ctx, models.Product{ID: "9", Title: "Brownie"}, "", "", 120.5)
	s.IncreaseAmount(ctx, models.CartKey{ProductID: "9"})

	reopened := Open(ctx, storage, testKey)
	assert.Equal(t, s.Items(), reopened.Items())
	assert.Equal(t, s.Aggregate(), reopened.Aggregate())
}

func TestLoad_CorruptRecordIsEmpty(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(ctx, testKey, []byte("{not json")))

	s := Open(ctx, storage, testKey)
	assert.True(t, s.Ready())
	assert.Empty(t, s.Items())
	assert.NoError(t, s.LoadErr())
}

func TestLoad_StorageErrorIsEmpty(t *testing.T) {
	s := Open(context.Background(), &failingStorage{loadErr: errors.New("boom")}, testKey)
	assert.True(t, s.Ready())
	assert.Empty(t, s.Items())
	assert.EqualError(t, s.LoadErr(), "boom")
}

func TestLoad_SanitizesOlderRecords(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	record := `[
		{"productId":"1","selectedWeight":"1 Kg","selectedFlavor":"Standard","unitPrice":450,"quantity":2,"title":"ignored top-level"},
		{"productId":"1","selectedWeight":"1 Kg","selectedFlavor":null,"unitPrice":450,"quantity":1},
		{"productId":"","quantity":4},
		{"productId":"2","quantity":0,"unitPrice":100}
	]`
	require.NoError(t, storage.Save(ctx, testKey, []byte(record)))

	s := Open(ctx, storage, testKey)
	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, models.CartKey{ProductID: "1", Weight: "1 Kg"}, items[0].Key())
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
	assert.Equal(t, 3*450.0+100, s.Total())
}

func TestSaveFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	storage := &failingStorage{saveErr: errors.New("quota exceeded")}
	s := Open(ctx, storage, testKey)

	s.AddToCart(ctx, productA(), "1 Kg", "Chocolate", 500)
	assert.Equal(t, 1, s.ItemCount())
	assert.Equal(t, 1, storage.saves)
}

func TestPersistsEveryMutation(t *testing.T) {
	ctx := context.Background()
	s, storage := newTestStore(t)
	key := models.CartKey{ProductID: "1", Weight: "1 Kg", Flavor: "Chocolate"}

	s.AddToCart(ctx, productA(), key.Weight, key.Flavor, 500)
	s.IncreaseAmount(ctx, key)

	data, err := storage.Load(ctx, testKey)
	require.NoError(t, err)
	var stored []models.CartLineItem
	require.NoError(t, json.Unmarshal(data, &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, 2, stored[0].Quantity)
}

func TestNotReadyReadsEmpty(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	seed := Open(ctx, storage, testKey)
	seed.AddToCart(ctx, productA(), "1 Kg", "Chocolate", 500)

	s := NewStore(storage, testKey)
	assert.False(t, s.Ready())
	assert.Empty(t, s.Items())
	assert.Equal(t, 0.0, s.Total())

	s.Load(ctx)
	assert.Equal(t, 1, s.ItemCount())
}

func TestMutationBeforeLoadKeepsStoredLines(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	seed := Open(ctx, storage, testKey)
	seed.AddToCart(ctx, productA(), "1 Kg", "Chocolate", 500)

	s := NewStore(storage, testKey)
	s.AddToCart(ctx, productA(), "1 Kg", "Chocolate", 500)
	assert.Equal(t, 2, s.ItemCount())
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	var got []Snapshot
	unsubscribe := s.Subscribe(func(snap Snapshot) { got = append(got, snap) })

	s.AddToCart(ctx, productA(), "1 Kg", "Chocolate", 500)
	s.AddToCart(ctx, productA(), "1 Kg", "Chocolate", 500)
	s.RemoveFromCart(ctx, models.CartKey{ProductID: "404"})

	require.Len(t, got, 2)
	assert.Equal(t, 2, got[1].TotalQuantity)
	assert.Equal(t, 1000.0, got[1].TotalAmount)

	unsubscribe()
	s.ClearCart(ctx)
	assert.Len(t, got, 2)
}

func TestSubscribe_DeliversInMutationOrder(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	var seen []int
	first := true
	s.Subscribe(func(snap Snapshot) {
		mu.Lock()
		block := first
		first = false
		mu.Unlock()
		if block {
			close(entered)
			<-release
		}
		mu.Lock()
		seen = append(seen, snap.TotalQuantity)
		mu.Unlock()
	})

	done := make(chan struct{}, 2)
	go func() {
		s.AddToCart(ctx, productA(), "1 Kg", "Chocolate", 500)
		done <- struct{}{}
	}()
	<-entered
	go func() {
		s.AddToCart(ctx, productA(), "1 Kg", "Chocolate", 500)
		done <- struct{}{}
	}()
	assert.Eventually(t, func() bool { return s.ItemCount() == 2 }, time.Second, 5*time.Millisecond)

	close(release)
	<-done
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2}, seen)
}

func TestRemoveLines_SubtractsOnlyOrderedQuantities(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	s.AddToCart(ctx, productA(), "1 Kg", "Chocolate", 500)
	s.AddToCart(ctx, productA(), "1 Kg", "Vanilla", 450)
	ordered := s.Items()

	// edits made while the order was in flight
	s.AddToCart(ctx, productA(), "1 Kg", "Chocolate", 500)
	s.AddToCart(ctx, productA(), "", "Vanilla", 0)

	s.RemoveLines(ctx, ordered)

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, models.CartKey{ProductID: "1", Weight: "1 Kg", Flavor: "Chocolate"}, items[0].Key())
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, models.CartKey{ProductID: "1", Flavor: "Vanilla"}, items[1].Key())
	assert.Equal(t, 500.0, s.Total())
}

func TestRemoveLines_NothingMatchingIsNoop(t *testing.T) {
	ctx := context.Background()
	storage := &failingStorage{}
	s := Open(ctx, storage, testKey)
	s.AddToCart(ctx, productA(), "1 Kg", "Chocolate", 500)
	saves := storage.saves

	s.RemoveLines(ctx, []models.CartLineItem{{ProductID: "1", SelectedWeight: "1 Kg", SelectedFlavor: "Vanilla", Quantity: 1}})
	assert.Equal(t, saves, storage.saves)
	assert.Equal(t, 1, s.ItemCount())
}

func TestAliasLabelledVariantIsARealSelection(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	cake := productA()
	cake.Variants = append(cake.Variants, models.Variant{Label: "Regular", Price: &models.VariantPrice{DiscountedPrice: 20}})

	s.AddToCart(ctx, cake, "1 Kg", "Regular", 470)
	s.AddToCart(ctx, cake, "1 Kg", "", 450)
	require.Len(t, s.Items(), 2)
	assert.Equal(t, "Regular", s.Items()[0].SelectedFlavor)

	s.IncreaseAmount(ctx, models.CartKey{ProductID: "1", Weight: "1 Kg", Flavor: "regular"})
	assert.Equal(t, 2, s.Items()[0].Quantity)

	s.RemoveFromCart(ctx, models.CartKey{ProductID: "1", Weight: "1 Kg", Flavor: "Standard"})
	require.Len(t, s.Items(), 1)
	assert.Equal(t, "Regular", s.Items()[0].SelectedFlavor)
}

func TestConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	s, storage := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddToCart(ctx, productA(), "1 Kg", "Chocolate", 500)
		}()
	}
	wg.Wait()

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 50, items[0].Quantity)

	reopened := Open(ctx, storage, testKey)
	assert.Equal(t, 50, reopened.ItemCount())
}

func TestTotalIsExact(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	s.AddToCart(ctx, models.Product{ID: "a"}, "", "", 0.1)
	s.AddToCart(ctx, models.Product{ID: "b"}, "", "", 0.2)
	assert.Equal(t, 0.3, s.Total())
	assert.GreaterOrEqual(t, s.Total(), 0.0)
}
