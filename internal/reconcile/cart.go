package reconcile

import (
	"context"
	"errors"
	"fmt"

	"rokomferi-storefront/internal/domain"
	"rokomferi-storefront/pkg/logger"

	"github.com/rs/zerolog"
)

const DefaultMaxCartQuantity = 1000

// CartOptions configures a Cart.
type CartOptions struct {
	// MaxQuantity caps a single line. Zero means DefaultMaxCartQuantity.
	MaxQuantity int
	// LoginRequired is called when a mutation needs a signed-in shopper.
	LoginRequired func(ctx context.Context)
	// Optimistic switches the cart to optimistic mutations.
	Optimistic bool
	Feedback   Feedback
	Logger     *zerolog.Logger
}

// Cart mirrors the shopper's server cart. Mutations are confirmed by the
// server before they show locally.
type Cart struct {
	store         *Store[domain.LineKey, domain.CartLine]
	remote        domain.CartRemote
	maxQty        int
	loginRequired func(ctx context.Context)
	log           *zerolog.Logger
}

func NewCart(remote domain.CartRemote, opts CartOptions) *Cart {
	log := opts.Logger
	if log == nil {
		log = logger.Component("cart")
	}
	maxQty := opts.MaxQuantity
	if maxQty <= 0 {
		maxQty = DefaultMaxCartQuantity
	}

	return &Cart{
		store: NewStore(StoreConfig[domain.LineKey, domain.CartLine]{
			Resource: "cart",
			Policy:   Policy{Optimistic: opts.Optimistic},
			KeyOf:    domain.CartLine.Key,
			List:     remote.List,
			Logger:   log,
			Feedback: opts.Feedback,
		}),
		remote:        remote,
		maxQty:        maxQty,
		loginRequired: opts.LoginRequired,
		log:           log,
	}
}

// OnAuthChange clears the cart on sign-out and reloads it on sign-in.
func (c *Cart) OnAuthChange(ctx context.Context, authenticated bool) {
	c.store.SetAuthenticated(authenticated)
	if authenticated {
		_ = c.Refresh(ctx)
	}
}

// Subscribe registers fn to receive the lines after every change.
func (c *Cart) Subscribe(fn func(lines []domain.CartLine)) (unsubscribe func()) {
	return c.store.Subscribe(fn)
}

// Lines returns the current lines.
func (c *Cart) Lines() []domain.CartLine {
	return c.store.Items()
}

// Line returns the line for key.
func (c *Cart) Line(key domain.LineKey) (domain.CartLine, bool) {
	return c.store.Get(key)
}

// Total is the sum of quantity × unit price over all lines.
func (c *Cart) Total() float64 {
	var total float64
	for _, l := range c.store.Items() {
		total += l.Subtotal()
	}
	return total
}

// ItemCount is the sum of quantities over all lines.
func (c *Cart) ItemCount() int {
	var n int
	for _, l := range c.store.Items() {
		n += l.Quantity
	}
	return n
}

// Refresh reloads the cart from the server. It does nothing while signed out.
func (c *Cart) Refresh(ctx context.Context) error {
	if !c.store.Authenticated() {
		return nil
	}
	return c.settle(ctx, c.store.Refresh(ctx))
}

// AddToCart adds qty of product in the given size and color. An existing
// line with the same size and color grows by qty on the server.
func (c *Cart) AddToCart(ctx context.Context, product domain.Product, size, color string, qty int) error {
	if !c.store.Authenticated() {
		return c.requireLogin(ctx)
	}
	if qty < 1 {
		return c.reject("add", domain.NewValidationError("quantity", "must be at least 1"))
	}
	if qty > c.maxQty {
		return c.reject("add", domain.NewValidationError("quantity", fmt.Sprintf("must be at most %d", c.maxQty)))
	}

	line := domain.CartLine{
		ProductID:      product.ID,
		Name:           product.Name,
		UnitPrice:      product.EffectivePrice(),
		SelectedSize:   size,
		SelectedColor:  color,
		Quantity:       qty,
		ProductImage:   product.Image,
		MannequinImage: product.MannequinImage,
		ColorVariants:  product.ColorVariants,
	}

	err := c.store.Mutate(ctx, Mutation[domain.CartLine]{
		Op: "add",
		Local: func(lines []domain.CartLine) []domain.CartLine {
			merged := line
			if cur, ok := findLine(lines, line.Key()); ok {
				merged.Quantity += cur.Quantity
			}
			return upsert(lines, merged, domain.CartLine.Key)
		},
		Remote: func(ctx context.Context) ([]domain.CartLine, error) {
			return c.remote.Add(ctx, line)
		},
		Fields: lineFields(line.Key(), qty),
	})
	return c.settle(ctx, err)
}

// RemoveFromCart drops the line. Removing a line that is not there is not
// an error.
func (c *Cart) RemoveFromCart(ctx context.Context, productID domain.ProductID, size, color string) error {
	if !c.store.Authenticated() {
		return c.requireLogin(ctx)
	}

	key := domain.LineKey{ProductID: productID, SelectedSize: size, SelectedColor: color}
	err := c.store.Mutate(ctx, Mutation[domain.CartLine]{
		Op: "remove",
		Local: func(lines []domain.CartLine) []domain.CartLine {
			return without(lines, key, domain.CartLine.Key)
		},
		Remote: func(ctx context.Context) ([]domain.CartLine, error) {
			return c.remote.Remove(ctx, key)
		},
		Fields: lineFields(key, 0),
	})
	return c.settle(ctx, err)
}

// UpdateQuantity sets the line's quantity. A quantity of zero or less
// removes the line.
func (c *Cart) UpdateQuantity(ctx context.Context, productID domain.ProductID, size, color string, qty int) error {
	if qty <= 0 {
		return c.RemoveFromCart(ctx, productID, size, color)
	}
	if !c.store.Authenticated() {
		return c.requireLogin(ctx)
	}
	if qty > c.maxQty {
		return c.reject("update", domain.NewValidationError("quantity", fmt.Sprintf("must be at most %d", c.maxQty)))
	}

	key := domain.LineKey{ProductID: productID, SelectedSize: size, SelectedColor: color}
	err := c.store.Mutate(ctx, Mutation[domain.CartLine]{
		Op: "update",
		Local: func(lines []domain.CartLine) []domain.CartLine {
			for i := range lines {
				if lines[i].Key() == key {
					lines[i].Quantity = qty
				}
			}
			return lines
		},
		Remote: func(ctx context.Context) ([]domain.CartLine, error) {
			return c.remote.UpdatePartial(ctx, key, qty)
		},
		Fields: lineFields(key, qty),
	})
	return c.settle(ctx, err)
}

// ClearCart empties the cart on the server.
func (c *Cart) ClearCart(ctx context.Context) error {
	if !c.store.Authenticated() {
		return c.requireLogin(ctx)
	}
	err := c.store.Mutate(ctx, Mutation[domain.CartLine]{
		Op: "clear",
		Local: func([]domain.CartLine) []domain.CartLine {
			return nil
		},
		Remote: c.remote.Clear,
	})
	return c.settle(ctx, err)
}

// Wait blocks until background calls of an optimistic cart have finished.
func (c *Cart) Wait() {
	c.store.Wait()
}

// settle applies the failure policy to a mutation or refresh result. The
// store has already logged and reported the failure.
func (c *Cart) settle(ctx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrUnauthenticated):
		return c.requireLogin(ctx)
	case errors.Is(err, domain.ErrValidation):
		return err
	default:
		// Network and not-found failures keep the last known state.
		return nil
	}
}

func (c *Cart) requireLogin(ctx context.Context) error {
	c.log.Debug().Msg("Cart needs a signed-in shopper")
	if c.loginRequired != nil {
		c.loginRequired(ctx)
	}
	return domain.ErrUnauthenticated
}

func (c *Cart) reject(op string, err *domain.RemoteError) error {
	c.store.report(op, err, nil)
	return err
}

func findLine(lines []domain.CartLine, key domain.LineKey) (domain.CartLine, bool) {
	for _, l := range lines {
		if l.Key() == key {
			return l, true
		}
	}
	return domain.CartLine{}, false
}

func lineFields(key domain.LineKey, qty int) map[string]interface{} {
	f := map[string]interface{}{
		"product_id": key.ProductID.String(),
		"size":       key.SelectedSize,
		"color":      key.SelectedColor,
	}
	if qty != 0 {
		f["quantity"] = qty
	}
	return f
}
