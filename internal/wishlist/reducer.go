package wishlist

// Action is a sealed state transition request. The concrete types below are
// the only implementations.
type Action interface {
	isAction()
}

// SetFullBoxOn enables the full-width layout flag.
type SetFullBoxOn struct{}

// SetFullBoxOff disables the full-width layout flag.
type SetFullBoxOff struct{}

// AddItem appends an item, or replaces the existing entry sharing the same
// tutorial identity. The latest snapshot and quantity win.
type AddItem struct {
	Item Item
}

// RemoveItem drops the entry matching the given item's tutorial identity.
type RemoveItem struct {
	Item Item
}

// ClearWishlist empties the item list, leaving shipping and payment intact.
type ClearWishlist struct{}

// SignIn sets the session identity.
type SignIn struct {
	User UserInfo
}

// SignOut clears the identity and resets the whole cart domain.
type SignOut struct{}

// SaveShippingAddress replaces the shipping address wholesale.
type SaveShippingAddress struct {
	Address ShippingAddress
}

// SaveShippingAddressLocation merges only the geocoordinate into the
// existing address.
type SaveShippingAddressLocation struct {
	Location Location
}

// SavePaymentMethod replaces the payment method tag.
type SavePaymentMethod struct {
	Method string
}

func (SetFullBoxOn) isAction()                {}
func (SetFullBoxOff) isAction()               {}
func (AddItem) isAction()                     {}
func (RemoveItem) isAction()                  {}
func (ClearWishlist) isAction()               {}
func (SignIn) isAction()                      {}
func (SignOut) isAction()                     {}
func (SaveShippingAddress) isAction()         {}
func (SaveShippingAddressLocation) isAction() {}
func (SavePaymentMethod) isAction()           {}

// Reduce applies an action to the current state and returns the next state.
// It is pure: no I/O, no mutation of the input, deterministic output.
// Unknown actions return the state unchanged.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case SetFullBoxOn:
		state.FullBox = true
		return state

	case SetFullBoxOff:
		state.FullBox = false
		return state

	case AddItem:
		items := make([]Item, 0, len(state.Wishlist.Items)+1)
		replaced := false
		for _, item := range state.Wishlist.Items {
			if item.TutorialID == a.Item.TutorialID {
				items = append(items, a.Item)
				replaced = true
			} else {
				items = append(items, item)
			}
		}
		if !replaced {
			items = append(items, a.Item)
		}
		state.Wishlist.Items = items
		return state

	case RemoveItem:
		items := make([]Item, 0, len(state.Wishlist.Items))
		for _, item := range state.Wishlist.Items {
			if item.TutorialID != a.Item.TutorialID {
				items = append(items, item)
			}
		}
		state.Wishlist.Items = items
		return state

	case ClearWishlist:
		state.Wishlist.Items = []Item{}
		return state

	case SignIn:
		user := a.User
		state.UserInfo = &user
		return state

	case SignOut:
		state.UserInfo = nil
		state.Wishlist = Wishlist{
			Items:           []Item{},
			ShippingAddress: ShippingAddress{},
			PaymentMethod:   "",
		}
		return state

	case SaveShippingAddress:
		state.Wishlist.ShippingAddress = a.Address
		return state

	case SaveShippingAddressLocation:
		state.Wishlist.ShippingAddress.Location = a.Location
		return state

	case SavePaymentMethod:
		state.Wishlist.PaymentMethod = a.Method
		return state

	default:
		return state
	}
}
