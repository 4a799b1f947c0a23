package reconcile

import (
	"context"
	"time"

	"rokomferi-storefront/internal/domain"
	"rokomferi-storefront/pkg/logger"

	"github.com/rs/zerolog"
)

// WishlistOptions configures a Wishlist.
type WishlistOptions struct {
	// BackgroundTimeout bounds each background remote call.
	BackgroundTimeout time.Duration
	// ConfirmFirst waits for the server before showing a change.
	ConfirmFirst bool
	Feedback     Feedback
	Logger       *zerolog.Logger
}

// Wishlist mirrors the shopper's saved products. Changes show at once and
// are sent in the background; a failed call triggers a resync.
type Wishlist struct {
	store  *Store[domain.ProductID, domain.WishlistEntry]
	remote domain.WishlistRemote
	log    *zerolog.Logger
	now    func() time.Time
}

func NewWishlist(remote domain.WishlistRemote, opts WishlistOptions) *Wishlist {
	log := opts.Logger
	if log == nil {
		log = logger.Component("wishlist")
	}

	return &Wishlist{
		store: NewStore(StoreConfig[domain.ProductID, domain.WishlistEntry]{
			Resource:          "wishlist",
			Policy:            Policy{Optimistic: !opts.ConfirmFirst},
			KeyOf:             entryKey,
			List:              remote.List,
			BackgroundTimeout: opts.BackgroundTimeout,
			Logger:            log,
			Feedback:          opts.Feedback,
		}),
		remote: remote,
		log:    log,
		now:    time.Now,
	}
}

func entryKey(e domain.WishlistEntry) domain.ProductID {
	return e.ProductID
}

// OnAuthChange clears the wishlist on sign-out and resyncs on sign-in.
func (w *Wishlist) OnAuthChange(ctx context.Context, authenticated bool) {
	w.store.SetAuthenticated(authenticated)
	if authenticated {
		w.SyncWishlist(ctx)
	}
}

// Subscribe registers fn to receive the entries after every change.
func (w *Wishlist) Subscribe(fn func(entries []domain.WishlistEntry)) (unsubscribe func()) {
	return w.store.Subscribe(fn)
}

// Entries returns the current entries.
func (w *Wishlist) Entries() []domain.WishlistEntry {
	return w.store.Items()
}

// Count is the number of saved products.
func (w *Wishlist) Count() int {
	return len(w.store.Items())
}

// IsInWishlist reports whether productID is saved. Always false while
// signed out.
func (w *Wishlist) IsInWishlist(productID domain.ProductID) bool {
	return w.store.Contains(productID)
}

// SyncWishlist replaces the entries with the server's list. Failures are
// logged and reported; the last known entries stay.
func (w *Wishlist) SyncWishlist(ctx context.Context) {
	if !w.store.Authenticated() {
		return
	}
	_ = w.store.Refresh(ctx)
}

// AddToWishlist saves product. Does nothing while signed out or when the
// product is already saved.
func (w *Wishlist) AddToWishlist(ctx context.Context, product domain.Product) {
	if !w.store.Authenticated() || w.store.Contains(product.ID) {
		return
	}

	entry := domain.WishlistEntry{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.EffectivePrice(),
		Image:     product.Image,
		AddedAt:   w.now().UTC(),
	}
	_ = w.store.Mutate(ctx, Mutation[domain.WishlistEntry]{
		Op: "add",
		Local: func(entries []domain.WishlistEntry) []domain.WishlistEntry {
			return upsert(entries, entry, entryKey)
		},
		Remote: func(ctx context.Context) ([]domain.WishlistEntry, error) {
			return w.remote.Add(ctx, entry)
		},
		Fields: map[string]interface{}{"product_id": product.ID.String()},
	})
}

// RemoveFromWishlist drops productID. Does nothing while signed out.
func (w *Wishlist) RemoveFromWishlist(ctx context.Context, productID domain.ProductID) {
	if !w.store.Authenticated() {
		return
	}

	_ = w.store.Mutate(ctx, Mutation[domain.WishlistEntry]{
		Op: "remove",
		Local: func(entries []domain.WishlistEntry) []domain.WishlistEntry {
			return without(entries, productID, entryKey)
		},
		Remote: func(ctx context.Context) ([]domain.WishlistEntry, error) {
			return w.remote.Remove(ctx, productID)
		},
		Fields: map[string]interface{}{"product_id": productID.String()},
	})
}

// Toggle saves product, or drops it when already saved. It reports whether
// the product is saved afterwards.
func (w *Wishlist) Toggle(ctx context.Context, product domain.Product) bool {
	if w.IsInWishlist(product.ID) {
		w.RemoveFromWishlist(ctx, product.ID)
	} else {
		w.AddToWishlist(ctx, product)
	}
	return w.IsInWishlist(product.ID)
}

// Wait blocks until background remote calls have finished.
func (w *Wishlist) Wait() {
	w.store.Wait()
}
