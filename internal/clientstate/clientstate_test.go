// internal/clientstate/clientstate_test.go
package clientstate

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(qty int) CartLine {
	return CartLine{
		ProductID: uuid.New(),
		Title:     "Wireless Mouse",
		UnitPrice: 24.99,
		Quantity:  qty,
	}
}

func TestReduceAddToCart(t *testing.T) {
	state := State{}
	l := line(2)

	next := Reduce(state, Action{Type: ActionAddToCart, Line: l})

	require.Len(t, next.Cart, 1)
	assert.Equal(t, 2, next.Cart[0].Quantity)
	assert.Empty(t, state.Cart, "input state must stay untouched")
}

func TestReduceAddToCartMergesSameProduct(t *testing.T) {
	l := line(1)
	state := Reduce(State{}, Action{Type: ActionAddToCart, Line: l})

	next := Reduce(state, Action{Type: ActionAddToCart, Line: CartLine{
		ProductID: l.ProductID,
		Title:     l.Title,
		UnitPrice: l.UnitPrice,
		Quantity:  3,
	}})

	require.Len(t, next.Cart, 1)
	assert.Equal(t, 4, next.Cart[0].Quantity)
	assert.Equal(t, 1, state.Cart[0].Quantity, "previous snapshot keeps its quantity")
}

func TestReduceAddToCartRejectsNonPositiveQuantity(t *testing.T) {
	l := line(0)
	next := Reduce(State{}, Action{Type: ActionAddToCart, Line: l})
	assert.Empty(t, next.Cart)
}

func TestReduceUpdateQuantity(t *testing.T) {
	l := line(2)
	state := Reduce(State{}, Action{Type: ActionAddToCart, Line: l})

	next := Reduce(state, Action{Type: ActionUpdateQuantity, LineID: l.ProductID, Quantity: 5})
	require.Len(t, next.Cart, 1)
	assert.Equal(t, 5, next.Cart[0].Quantity)

	// Zero removes the line entirely
	next = Reduce(next, Action{Type: ActionUpdateQuantity, LineID: l.ProductID, Quantity: 0})
	assert.Empty(t, next.Cart)
}

func TestReduceRemoveFromCart(t *testing.T) {
	a, b := line(1), line(2)
	state := Reduce(State{}, Action{Type: ActionAddToCart, Line: a})
	state = Reduce(state, Action{Type: ActionAddToCart, Line: b})

	next := Reduce(state, Action{Type: ActionRemoveFromCart, LineID: a.ProductID})

	require.Len(t, next.Cart, 1)
	assert.Equal(t, b.ProductID, next.Cart[0].ProductID)
	assert.Len(t, state.Cart, 2)
}

func TestReduceClearUserDropsCart(t *testing.T) {
	state := Reduce(State{}, Action{Type: ActionAddToCart, Line: line(1)})
	state = Reduce(state, Action{Type: ActionSetUser, User: &UserInfo{Username: "dana"}})

	next := Reduce(state, Action{Type: ActionClearUser})

	assert.Nil(t, next.User)
	assert.Empty(t, next.Cart)
	assert.NotNil(t, state.User)
}

func TestReduceViewProductDeduplicatesAndCaps(t *testing.T) {
	state := State{}
	first := uuid.New()
	state = Reduce(state, Action{Type: ActionViewProduct, LineID: first})

	for i := 0; i < maxRecentlyViewed+3; i++ {
		state = Reduce(state, Action{Type: ActionViewProduct, LineID: uuid.New()})
	}
	assert.Len(t, state.RecentlyViewed, maxRecentlyViewed)

	// Re-viewing moves the product to the front without duplicating it
	recent := state.RecentlyViewed[3]
	state = Reduce(state, Action{Type: ActionViewProduct, LineID: recent})
	assert.Equal(t, recent, state.RecentlyViewed[0])
	assert.Len(t, state.RecentlyViewed, maxRecentlyViewed)
}

func TestReduceRecordSearch(t *testing.T) {
	state := Reduce(State{}, Action{Type: ActionRecordSearch, Query: "mouse"})
	state = Reduce(state, Action{Type: ActionRecordSearch, Query: "keyboard"})
	state = Reduce(state, Action{Type: ActionRecordSearch, Query: "mouse"})

	require.Len(t, state.SearchHistory, 2)
	assert.Equal(t, "mouse", state.SearchHistory[0])
	assert.Equal(t, "keyboard", state.SearchHistory[1])

	state = Reduce(state, Action{Type: ActionRecordSearch, Query: ""})
	assert.Len(t, state.SearchHistory, 2)

	state = Reduce(state, Action{Type: ActionClearSearchHistory})
	assert.Empty(t, state.SearchHistory)
}

func TestReduceUnknownActionIsIdentity(t *testing.T) {
	state := Reduce(State{}, Action{Type: ActionAddToCart, Line: line(1)})
	next := Reduce(state, Action{Type: ActionType("SOMETHING_ELSE")})
	assert.Equal(t, state, next)
}

func TestStateSubtotalAndItemCount(t *testing.T) {
	state := State{Cart: []CartLine{
		{ProductID: uuid.New(), UnitPrice: 10.00, Quantity: 2},
		{ProductID: uuid.New(), UnitPrice: 4.50, Quantity: 1},
	}}

	assert.InDelta(t, 24.50, state.Subtotal(), 0.0001)
	assert.Equal(t, 3, state.ItemCount())
}

func TestStoreDispatchSavesEveryTransition(t *testing.T) {
	persist := &MemoryPersistence{}
	store := NewStore(persist)

	l := line(1)
	_, err := store.Dispatch(Action{Type: ActionAddToCart, Line: l})
	require.NoError(t, err)

	saved, err := persist.Load()
	require.NoError(t, err)
	require.Len(t, saved.Cart, 1)
	assert.Equal(t, l.ProductID, saved.Cart[0].ProductID)

	// A fresh store picks up the persisted snapshot
	reloaded := NewStore(persist)
	assert.Len(t, reloaded.State().Cart, 1)
}

func TestFilePersistenceRoundTrip(t *testing.T) {
	path := t.TempDir() + "/state.json"
	persist := FilePersistence{Path: path}

	// Missing file loads as zero state
	state, err := persist.Load()
	require.NoError(t, err)
	assert.Empty(t, state.Cart)

	l := line(2)
	state = Reduce(state, Action{Type: ActionAddToCart, Line: l})
	require.NoError(t, persist.Save(state))

	loaded, err := persist.Load()
	require.NoError(t, err)
	require.Len(t, loaded.Cart, 1)
	assert.Equal(t, l.ProductID, loaded.Cart[0].ProductID)
	assert.Equal(t, 2, loaded.Cart[0].Quantity)
}
