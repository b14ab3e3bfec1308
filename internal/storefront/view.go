package storefront

import (
	"context"
	"errors"
	"log/slog"

	"github.com/instruktori/tutorialstore/internal/domain"
	"github.com/instruktori/tutorialstore/internal/wishlist"
)

// ErrOutOfStock is returned when the advisory stock check rejects an add or
// quantity change. The wishlist state is left untouched.
var ErrOutOfStock = errors.New("Sorry. Tutorial is out of stock")

// ViewState is what a rendering layer consumes. Fetch failures land in the
// Error slot instead of propagating across the rendering boundary.
type ViewState struct {
	Loading   bool
	Error     string
	Tutorials []domain.Tutorial
}

// Storefront drives one client session: catalog reads for rendering plus
// wishlist transitions on user interaction.
type Storefront struct {
	catalog *CatalogClient
	session *wishlist.Session
	view    ViewState
	logger  *slog.Logger
}

// New creates a storefront for the given session.
func New(catalog *CatalogClient, session *wishlist.Session, logger *slog.Logger) *Storefront {
	return &Storefront{
		catalog: catalog,
		session: session,
		logger:  logger,
	}
}

// View returns the current view state.
func (s *Storefront) View() ViewState {
	return s.view
}

// Session returns the wishlist session backing this storefront.
func (s *Storefront) Session() *wishlist.Session {
	return s.session
}

// LoadHome fetches the catalog for the home view. On failure the previous
// tutorial list is kept and the error message is recorded for display.
func (s *Storefront) LoadHome(ctx context.Context) {
	s.view.Loading = true
	s.view.Error = ""

	tutorials, err := s.catalog.ListTutorials(ctx)
	s.view.Loading = false
	if err != nil {
		s.view.Error = err.Error()
		s.logger.WarnContext(ctx, "home view fetch failed",
			slog.String("error", err.Error()),
		)
		return
	}

	s.view.Tutorials = tutorials
}

// AddToWishlist adds a tutorial with the requested quantity after an
// advisory stock check: the tutorial is re-fetched and the action fails
// locally when requested quantity exceeds current stock. The check is not
// atomic with any later purchase; stock can still change afterwards.
func (s *Storefront) AddToWishlist(ctx context.Context, tutorial *domain.Tutorial, quantity int) error {
	fresh, err := s.checkStock(ctx, tutorial.ID, quantity)
	if err != nil {
		return err
	}

	_, err = s.session.Dispatch(ctx, wishlist.AddItem{Item: wishlist.Item{
		TutorialID:   fresh.ID,
		Name:         fresh.Name,
		Slug:         fresh.Slug,
		Image:        fresh.Image,
		Price:        fresh.Price,
		Quantity:     quantity,
		CountInStock: fresh.CountInStock,
	}})
	return err
}

// UpdateQuantity changes an existing item's quantity, re-running the
// advisory stock check first. The existing snapshot is kept apart from the
// refreshed stock count.
func (s *Storefront) UpdateQuantity(ctx context.Context, item wishlist.Item, quantity int) error {
	fresh, err := s.checkStock(ctx, item.TutorialID, quantity)
	if err != nil {
		return err
	}

	item.Quantity = quantity
	item.CountInStock = fresh.CountInStock

	_, err = s.session.Dispatch(ctx, wishlist.AddItem{Item: item})
	return err
}

// RemoveFromWishlist drops an item from the wishlist.
func (s *Storefront) RemoveFromWishlist(ctx context.Context, item wishlist.Item) error {
	_, err := s.session.Dispatch(ctx, wishlist.RemoveItem{Item: item})
	return err
}

// CheckoutIntent returns the navigation target for the checkout button:
// straight to shipping when signed in, through sign-in otherwise.
func (s *Storefront) CheckoutIntent() string {
	if s.session.State().UserInfo != nil {
		return "/shipping"
	}
	return "/signin?redirect=/shipping"
}

func (s *Storefront) checkStock(ctx context.Context, tutorialID string, quantity int) (*domain.Tutorial, error) {
	fresh, err := s.catalog.GetTutorial(ctx, tutorialID)
	if err != nil {
		return nil, err
	}

	if !fresh.HasStock(quantity) {
		s.logger.InfoContext(ctx, "stock check rejected wishlist change",
			slog.String("tutorial_id", tutorialID),
			slog.Int("requested", quantity),
			slog.Int("in_stock", fresh.CountInStock),
		)
		return nil, ErrOutOfStock
	}

	return fresh, nil
}
