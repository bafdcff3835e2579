// internal/clientstate/clientstate.go

// Package clientstate mirrors the storefront's page-global state: a
// typed immutable snapshot, a pure reducer, and a persistence adapter
// that loads once at startup and saves after every dispatch.
package clientstate

import "github.com/google/uuid"

// CartLine is one product entry in the locally held cart.
type CartLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Title     string    `json:"title"`
	UnitPrice float64   `json:"unit_price"`
	Quantity  int       `json:"quantity"`
}

// UserInfo is the signed-in identity carried between pages.
type UserInfo struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	Token    string    `json:"token"`
}

// State is an immutable snapshot. Reduce never mutates its input; every
// transition returns a fresh value with fresh slices.
type State struct {
	Cart           []CartLine  `json:"cart"`
	User           *UserInfo   `json:"user,omitempty"`
	RecentlyViewed []uuid.UUID `json:"recently_viewed"`
	SearchHistory  []string    `json:"search_history"`
}

const (
	maxRecentlyViewed = 10
	maxSearchHistory  = 20
)

// Action is a state transition request. Exactly one field group is
// meaningful per Type.
type Action struct {
	Type     ActionType
	Line     CartLine
	LineID   uuid.UUID
	Quantity int
	User     *UserInfo
	Query    string
}

type ActionType string

const (
	ActionAddToCart          ActionType = "ADD_TO_CART"
	ActionRemoveFromCart     ActionType = "REMOVE_FROM_CART"
	ActionUpdateQuantity     ActionType = "UPDATE_QUANTITY"
	ActionClearCart          ActionType = "CLEAR_CART"
	ActionSetUser            ActionType = "SET_USER"
	ActionClearUser          ActionType = "CLEAR_USER"
	ActionViewProduct        ActionType = "VIEW_PRODUCT"
	ActionRecordSearch       ActionType = "RECORD_SEARCH"
	ActionClearSearchHistory ActionType = "CLEAR_SEARCH_HISTORY"
)

// Reduce applies one action and returns the next state. Unknown action
// types return the state unchanged.
func Reduce(state State, action Action) State {
	switch action.Type {
	case ActionAddToCart:
		return addToCart(state, action.Line)
	case ActionRemoveFromCart:
		return removeFromCart(state, action.LineID)
	case ActionUpdateQuantity:
		return updateQuantity(state, action.LineID, action.Quantity)
	case ActionClearCart:
		next := clone(state)
		next.Cart = nil
		return next
	case ActionSetUser:
		next := clone(state)
		if action.User != nil {
			u := *action.User
			next.User = &u
		}
		return next
	case ActionClearUser:
		next := clone(state)
		next.User = nil
		next.Cart = nil
		return next
	case ActionViewProduct:
		return viewProduct(state, action.LineID)
	case ActionRecordSearch:
		return recordSearch(state, action.Query)
	case ActionClearSearchHistory:
		next := clone(state)
		next.SearchHistory = nil
		return next
	default:
		return state
	}
}

func addToCart(state State, line CartLine) State {
	if line.Quantity < 1 {
		return state
	}
	next := clone(state)
	for i, existing := range next.Cart {
		if existing.ProductID == line.ProductID {
			next.Cart[i].Quantity += line.Quantity
			return next
		}
	}
	next.Cart = append(next.Cart, line)
	return next
}

func removeFromCart(state State, productID uuid.UUID) State {
	next := clone(state)
	filtered := next.Cart[:0]
	for _, line := range next.Cart {
		if line.ProductID != productID {
			filtered = append(filtered, line)
		}
	}
	next.Cart = filtered
	return next
}

func updateQuantity(state State, productID uuid.UUID, quantity int) State {
	if quantity <= 0 {
		return removeFromCart(state, productID)
	}
	next := clone(state)
	for i, line := range next.Cart {
		if line.ProductID == productID {
			next.Cart[i].Quantity = quantity
			break
		}
	}
	return next
}

func viewProduct(state State, productID uuid.UUID) State {
	next := clone(state)
	viewed := make([]uuid.UUID, 0, len(next.RecentlyViewed)+1)
	viewed = append(viewed, productID)
	for _, id := range next.RecentlyViewed {
		if id != productID {
			viewed = append(viewed, id)
		}
	}
	if len(viewed) > maxRecentlyViewed {
		viewed = viewed[:maxRecentlyViewed]
	}
	next.RecentlyViewed = viewed
	return next
}

func recordSearch(state State, query string) State {
	if query == "" {
		return state
	}
	next := clone(state)
	history := make([]string, 0, len(next.SearchHistory)+1)
	history = append(history, query)
	for _, q := range next.SearchHistory {
		if q != query {
			history = append(history, q)
		}
	}
	if len(history) > maxSearchHistory {
		history = history[:maxSearchHistory]
	}
	next.SearchHistory = history
	return next
}

// Subtotal sums the cart lines without tax or shipping.
func (s State) Subtotal() float64 {
	var subtotal float64
	for _, line := range s.Cart {
		subtotal += line.UnitPrice * float64(line.Quantity)
	}
	return subtotal
}

// ItemCount is the total unit count across cart lines.
func (s State) ItemCount() int {
	var count int
	for _, line := range s.Cart {
		count += line.Quantity
	}
	return count
}

func clone(state State) State {
	next := State{
		Cart:           append([]CartLine(nil), state.Cart...),
		RecentlyViewed: append([]uuid.UUID(nil), state.RecentlyViewed...),
		SearchHistory:  append([]string(nil), state.SearchHistory...),
	}
	if state.User != nil {
		u := *state.User
		next.User = &u
	}
	return next
}
