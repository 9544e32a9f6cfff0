package cart

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/Deepanshu0211/MahadevEnterprises/internal/domain"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/state"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestStore(t *testing.T, blobs state.BlobStore) *Store {
	t.Helper()
	p := state.NewPersister(blobs, state.CartNamespace, "client-1", StateVersion, zap.NewNop())
	return NewStore(context.Background(), p)
}

func TestAddItem_MergesSameVariant(t *testing.T) {
	s := newTestStore(t, state.NewMemoryStore())
	ctx := context.Background()

	s.AddItem(ctx, domain.CartItem{ProductID: "1", Quantity: 2, Color: "Maroon", Size: "M"})
	s.AddItem(ctx, domain.CartItem{ProductID: "1", Quantity: 3, Color: "Maroon", Size: "M"})

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestAddItem_DifferentColorIsSeparateLine(t *testing.T) {
	s := newTestStore(t, state.NewMemoryStore())
	ctx := context.Background()

	s.AddItem(ctx, domain.CartItem{ProductID: "3", Quantity: 1, Color: "Maroon"})
	s.AddItem(ctx, domain.CartItem{ProductID: "3", Quantity: 1, Color: "Royal Blue"})

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Maroon", items[0].Color)
	assert.Equal(t, "Royal Blue", items[1].Color)
}

func TestAddItem_DifferentSizeIsSeparateLine(t *testing.T) {
	s := newTestStore(t, state.NewMemoryStore())
	ctx := context.Background()

	s.AddItem(ctx, domain.CartItem{ProductID: "8", Quantity: 1, Size: "S"})
	s.AddItem(ctx, domain.CartItem{ProductID: "8", Quantity: 1, Size: "XL"})

	assert.Len(t, s.Items(), 2)
	assert.Equal(t, 2, s.ItemCount())
}

func TestAddItem_NonPositiveQuantityCountsAsOne(t *testing.T) {
	s := newTestStore(t, state.NewMemoryStore())

	s.AddItem(context.Background(), domain.CartItem{ProductID: "1", Quantity: 0})
	assert.Equal(t, 1, s.ItemCount())
}

func TestAddItem_QuantityIsCapped(t *testing.T) {
	s := newTestStore(t, state.NewMemoryStore())
	ctx := context.Background()

	s.AddItem(ctx, domain.CartItem{ProductID: "1", Quantity: math.MaxInt})
	s.AddItem(ctx, domain.CartItem{ProductID: "1", Quantity: math.MaxInt})
	assert.Equal(t, MaxQuantity, s.ItemCount())

	s.AddItem(ctx, domain.CartItem{ProductID: "2", Quantity: MaxQuantity - 1})
	s.AddItem(ctx, domain.CartItem{ProductID: "2", Quantity: 5})
	assert.Equal(t, 2*MaxQuantity, s.ItemCount())
}

func TestUpdateQuantity_IsCapped(t *testing.T) {
	s := newTestStore(t, state.NewMemoryStore())
	ctx := context.Background()

	s.AddItem(ctx, domain.CartItem{ProductID: "1", Quantity: 1})
	s.UpdateQuantity(ctx, "1", math.MaxInt)

	assert.Equal(t, MaxQuantity, s.ItemCount())
}

func TestPersistence_LoadClampsStoredQuantities(t *testing.T) {
	blobs := state.NewMemoryStore()
	blob := `{"state":{"items":[{"product_id":"1","quantity":-4},{"product_id":"2","quantity":100000}]},"version":0}`
	require.NoError(t, blobs.Save(context.Background(), "cart-storage:client-1", []byte(blob)))

	s := newTestStore(t, blobs)
	assert.Equal(t, 1+MaxQuantity, s.ItemCount())
}

func TestItemCount_Scenario(t *testing.T) {
	s := newTestStore(t, state.NewMemoryStore())
	ctx := context.Background()

	assert.Equal(t, 0, s.ItemCount())

	s.AddItem(ctx, domain.CartItem{ProductID: "1", Quantity: 1})
	assert.Equal(t, 1, s.ItemCount())

	s.AddItem(ctx, domain.CartItem{ProductID: "1", Quantity: 2})
	assert.Equal(t, 3, s.ItemCount())

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestRemoveItem_RemovesEveryVariant(t *testing.T) {
	s := newTestStore(t, state.NewMemoryStore())
	ctx := context.Background()

	s.AddItem(ctx, domain.CartItem{ProductID: "8", Quantity: 1, Size: "S"})
	s.AddItem(ctx, domain.CartItem{ProductID: "4", Quantity: 2})
	s.AddItem(ctx, domain.CartItem{ProductID: "8", Quantity: 1, Size: "L"})

	s.RemoveItem(ctx, "8")

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "4", items[0].ProductID)
}

func TestRemoveItem_MissingIsNoop(t *testing.T) {
	s := newTestStore(t, state.NewMemoryStore())
	ctx := context.Background()

	s.AddItem(ctx, domain.CartItem{ProductID: "1", Quantity: 1})
	s.RemoveItem(ctx, "does-not-exist")
	s.RemoveItem(ctx, "does-not-exist")

	assert.Len(t, s.Items(), 1)
}

func TestUpdateQuantity_SetsEveryLineForProduct(t *testing.T) {
	s := newTestStore(t, state.NewMemoryStore())
	ctx := context.Background()

	s.AddItem(ctx, domain.CartItem{ProductID: "8", Quantity: 1, Size: "S"})
	s.AddItem(ctx, domain.CartItem{ProductID: "8", Quantity: 4, Size: "M"})
	s.AddItem(ctx, domain.CartItem{ProductID: "2", Quantity: 1})

	s.UpdateQuantity(ctx, "8", 3)

	items := s.Items()
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 3, items[1].Quantity)
	assert.Equal(t, 1, items[2].Quantity)
	assert.Equal(t, 7, s.ItemCount())
}

func TestUpdateQuantity_MissingIsNoop(t *testing.T) {
	s := newTestStore(t, state.NewMemoryStore())

	s.UpdateQuantity(context.Background(), "nope", 5)
	assert.Empty(t, s.Items())
}

func TestClear(t *testing.T) {
	s := newTestStore(t, state.NewMemoryStore())
	ctx := context.Background()

	s.AddItem(ctx, domain.CartItem{ProductID: "1", Quantity: 1})
	s.AddItem(ctx, domain.CartItem{ProductID: "2", Quantity: 1})
	s.Clear(ctx)

	assert.Empty(t, s.Items())
	assert.Equal(t, 0, s.ItemCount())
}

func TestItems_ReturnsCopy(t *testing.T) {
	s := newTestStore(t, state.NewMemoryStore())
	s.AddItem(context.Background(), domain.CartItem{ProductID: "1", Quantity: 1})

	items := s.Items()
	items[0].Quantity = 99

	assert.Equal(t, 1, s.ItemCount())
}

func TestPersistence_SurvivesReload(t *testing.T) {
	blobs := state.NewMemoryStore()
	ctx := context.Background()

	s := newTestStore(t, blobs)
	s.AddItem(ctx, domain.CartItem{ProductID: "1", Quantity: 2, Color: "Indigo"})
	s.AddItem(ctx, domain.CartItem{ProductID: "5", Quantity: 1})

	reloaded := newTestStore(t, blobs)
	assert.Equal(t, s.Items(), reloaded.Items())
	assert.Equal(t, 3, reloaded.ItemCount())
}

func TestPersistence_ClearIsPersisted(t *testing.T) {
	blobs := state.NewMemoryStore()
	ctx := context.Background()

	s := newTestStore(t, blobs)
	s.AddItem(ctx, domain.CartItem{ProductID: "1", Quantity: 2})
	s.Clear(ctx)

	assert.Empty(t, newTestStore(t, blobs).Items())
}

func TestPersistence_CorruptBlobStartsEmpty(t *testing.T) {
	blobs := state.NewMemoryStore()
	require.NoError(t, blobs.Save(context.Background(), "cart-storage:client-1", []byte("not json")))

	s := newTestStore(t, blobs)
	assert.Empty(t, s.Items())
}

type brokenStore struct{}

func (brokenStore) Load(context.Context, string) ([]byte, error) {
	return nil, errors.New("backend down")
}

func (brokenStore) Save(context.Context, string, []byte) error {
	return errors.New("backend down")
}

func (brokenStore) Delete(context.Context, string) error {
	return errors.New("backend down")
}

func TestPersistence_FailureKeepsMemoryState(t *testing.T) {
	s := newTestStore(t, brokenStore{})
	ctx := context.Background()

	s.AddItem(ctx, domain.CartItem{ProductID: "1", Quantity: 2})
	s.AddItem(ctx, domain.CartItem{ProductID: "1", Quantity: 1})

	assert.Equal(t, 3, s.ItemCount())
}

type catalogStub map[string]*domain.Product

func (c catalogStub) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := c[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func TestSummarize_UsesEffectivePriceAndSkipsMissing(t *testing.T) {
	discount := 150.0
	products := catalogStub{
		"A": {ID: "A", Price: 100},
		"B": {ID: "B", Price: 200, DiscountPrice: &discount},
	}

	s := newTestStore(t, state.NewMemoryStore())
	ctx := context.Background()
	s.AddItem(ctx, domain.CartItem{ProductID: "A", Quantity: 2})
	s.AddItem(ctx, domain.CartItem{ProductID: "gone", Quantity: 5})
	s.AddItem(ctx, domain.CartItem{ProductID: "B", Quantity: 1})

	summary, err := s.Summarize(ctx, products)
	require.NoError(t, err)

	require.Len(t, summary.Lines, 2)
	assert.Equal(t, "A", summary.Lines[0].Product.ID)
	assert.True(t, decimal.NewFromInt(200).Equal(summary.Lines[0].LineTotal))
	assert.True(t, decimal.NewFromInt(150).Equal(summary.Lines[1].UnitPrice))
	assert.True(t, decimal.NewFromInt(350).Equal(summary.Subtotal))
	assert.Equal(t, 3, summary.ItemCount)

	// the unresolved line stays in the cart
	assert.Len(t, s.Items(), 3)
}

type erroringCatalog struct{}

func (erroringCatalog) GetByID(context.Context, string) (*domain.Product, error) {
	return nil, errors.New("database error")
}

func TestSummarize_PropagatesLookupErrors(t *testing.T) {
	s := newTestStore(t, state.NewMemoryStore())
	ctx := context.Background()
	s.AddItem(ctx, domain.CartItem{ProductID: "A", Quantity: 1})

	_, err := s.Summarize(ctx, erroringCatalog{})
	require.ErrorContains(t, err, "database error")
}
