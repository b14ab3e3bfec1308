package wishlist

// Item is a wishlist entry. It carries a snapshot of the tutorial at the
// time it was added; TutorialID is the identity used for replace and remove.
type Item struct {
	TutorialID   string  `json:"id"`
	Name         string  `json:"name"`
	Slug         string  `json:"slug"`
	Image        string  `json:"image"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	CountInStock int     `json:"countInStock"`
}

// UserInfo is the session identity captured at sign-in.
type UserInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Token   string `json:"token"`
}

// Location is the geocoordinate part of a shipping address.
type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
	Name    string  `json:"name,omitempty"`
}

// ShippingAddress is the delivery address attached to the wishlist.
type ShippingAddress struct {
	FullName   string   `json:"fullName"`
	Address    string   `json:"address"`
	City       string   `json:"city"`
	PostalCode string   `json:"postalCode"`
	Country    string   `json:"country"`
	Location   Location `json:"location"`
}

// Wishlist groups the cart-domain state: items plus the checkout details
// collected along the way.
type Wishlist struct {
	Items           []Item          `json:"wishlistItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
}

// State is the full client session state the reducer operates on.
type State struct {
	FullBox  bool      `json:"fullBox"`
	UserInfo *UserInfo `json:"userInfo"`
	Wishlist Wishlist  `json:"wishlist"`
}

// NewState returns the initial state for a fresh session.
func NewState() State {
	return State{
		Wishlist: Wishlist{
			Items: []Item{},
		},
	}
}

// Subtotal returns the total quantity and price across all items.
func (w Wishlist) Subtotal() (int, float64) {
	var count int
	var total float64
	for _, item := range w.Items {
		count += item.Quantity
		total += item.Price * float64(item.Quantity)
	}
	return count, total
}
