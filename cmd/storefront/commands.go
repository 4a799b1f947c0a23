package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"rokomferi-storefront/internal/domain"

	"github.com/spf13/cobra"
)

// --- Session ---

func newLoginCmd(c *cli) *cobra.Command {
	var (
		email    string
		password string
		remember bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and load the cart and wishlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				var err error
				email, password, err = prompt(cmd.InOrStdin(), cmd.ErrOrStderr(), email, password)
				if err != nil {
					return err
				}
			}

			if _, err := c.app.Gate.Login(cmd.Context(), domain.Credentials{
				Email:    email,
				Password: password,
				Remember: remember,
			}); err != nil {
				return fmt.Errorf("login: %s", domain.UserMessage(err))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Signed in as %s\n", c.app.Gate.User().Email)
			fmt.Fprintf(out, "Cart: %d item(s), wishlist: %d product(s)\n", c.app.Cart.ItemCount(), c.app.Wishlist.Count())
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when empty)")
	// Every invocation is a new process, so only a remembered token outlives it.
	cmd.Flags().BoolVar(&remember, "remember", true, "keep the session across invocations")
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			c.app.Gate.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in shopper",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			u := c.app.Gate.User()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s <%s>\n", u.FirstName, u.LastName, u.Email)
			return nil
		},
	}
}

func newProductsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := c.app.Client.Catalog().List(cmd.Context())
			if err != nil {
				return fmt.Errorf("products: %s", domain.UserMessage(err))
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPRICE\tSIZES\tCOLORS")
			for _, p := range products {
				fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n",
					p.ID, p.Name, p.EffectivePrice(), strings.Join(p.Sizes, ","), strings.Join(p.Colors, ","))
			}
			return w.Flush()
		},
	}
}

// --- Cart ---

type variantFlags struct {
	size  string
	color string
}

func (v *variantFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&v.size, "size", "", "selected size")
	cmd.Flags().StringVar(&v.color, "color", "", "selected color")
}

func newCartCmd(c *cli) *cobra.Command {
	cart := &cobra.Command{
		Use:   "cart",
		Short: "Show and change the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printCart(c, cmd.OutOrStdout())
		},
	}

	var addVariant variantFlags
	var qty int
	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product variant to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := domain.ProductID(args[0])

			// Catalog details make the local line complete before the
			// server answers; the server fills them in either way.
			product := domain.Product{ID: id}
			if p, err := c.app.Client.Catalog().Get(ctx, id); err == nil {
				product = *p
			}

			if err := c.app.Cart.AddToCart(ctx, product, addVariant.size, addVariant.color, qty); err != nil {
				return cartError(err)
			}
			return printCart(c, cmd.OutOrStdout())
		},
	}
	addVariant.bind(add)
	add.Flags().IntVarP(&qty, "qty", "q", 1, "quantity to add")

	var qtyVariant variantFlags
	setQty := &cobra.Command{
		Use:   "qty <product-id> <quantity>",
		Short: "Set the quantity of a cart line, 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity %q is not a number", args[1])
			}
			if err := c.app.Cart.UpdateQuantity(cmd.Context(), domain.ProductID(args[0]), qtyVariant.size, qtyVariant.color, n); err != nil {
				return cartError(err)
			}
			return printCart(c, cmd.OutOrStdout())
		},
	}
	qtyVariant.bind(setQty)

	var rmVariant variantFlags
	rm := &cobra.Command{
		Use:     "rm <product-id>",
		Aliases: []string{"remove"},
		Short:   "Remove a cart line",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Cart.RemoveFromCart(cmd.Context(), domain.ProductID(args[0]), rmVariant.size, rmVariant.color); err != nil {
				return cartError(err)
			}
			return printCart(c, cmd.OutOrStdout())
		},
	}
	rmVariant.bind(rm)

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Cart.ClearCart(cmd.Context()); err != nil {
				return cartError(err)
			}
			return printCart(c, cmd.OutOrStdout())
		},
	}

	cart.AddCommand(add, setQty, rm, clearCmd)
	return cart
}

func printCart(c *cli, out io.Writer) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	lines := c.app.Cart.Lines()
	if len(lines) == 0 {
		fmt.Fprintln(out, "Cart is empty")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSIZE\tCOLOR\tQTY\tSUBTOTAL")
	for _, l := range lines {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.2f\n",
			l.ProductID, l.Name, dash(l.SelectedSize), dash(l.SelectedColor), l.Quantity, l.Subtotal())
	}
	fmt.Fprintf(w, "\t\t\t\t%d\t%.2f\n", c.app.Cart.ItemCount(), c.app.Cart.Total())
	return w.Flush()
}

// cartError turns a cart failure into what the shopper should read.
func cartError(err error) error {
	if errors.Is(err, domain.ErrUnauthenticated) {
		return errLoginRequired
	}
	return errors.New(domain.UserMessage(err))
}

// --- Wishlist ---

func newWishlistCmd(c *cli) *cobra.Command {
	wishlist := &cobra.Command{
		Use:   "wishlist",
		Short: "Show and change the wishlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printWishlist(c, cmd.OutOrStdout())
		},
	}

	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Save a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			ctx := cmd.Context()
			id := domain.ProductID(args[0])

			product := domain.Product{ID: id}
			if p, err := c.app.Client.Catalog().Get(ctx, id); err == nil {
				product = *p
			}
			c.app.Wishlist.AddToWishlist(ctx, product)
			c.app.Wishlist.Wait()
			return printWishlist(c, cmd.OutOrStdout())
		},
	}

	rm := &cobra.Command{
		Use:     "rm <product-id>",
		Aliases: []string{"remove"},
		Short:   "Forget a saved product",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			c.app.Wishlist.RemoveFromWishlist(cmd.Context(), domain.ProductID(args[0]))
			c.app.Wishlist.Wait()
			return printWishlist(c, cmd.OutOrStdout())
		},
	}

	wishlist.AddCommand(add, rm)
	return wishlist
}

func printWishlist(c *cli, out io.Writer) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	entries := c.app.Wishlist.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(out, "Wishlist is empty")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tADDED")
	for _, e := range entries {
		added := "-"
		if !e.AddedAt.IsZero() {
			added = e.AddedAt.Local().Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\n", e.ProductID, e.Name, e.Price, added)
	}
	return w.Flush()
}

// --- Helpers ---

func prompt(in io.Reader, out io.Writer, email, password string) (string, string, error) {
	r := bufio.NewReader(in)
	read := func(label string) (string, error) {
		fmt.Fprint(out, label)
		s, err := r.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && s != "") {
			return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(label, ": "), err)
		}
		return strings.TrimSpace(s), nil
	}

	var err error
	if email == "" {
		if email, err = read("Email: "); err != nil {
			return "", "", err
		}
	}
	if password == "" {
		if password, err = read("Password: "); err != nil {
			return "", "", err
		}
	}
	return email, password, nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
