package main

import (
	"context"
	"errors"
	"fmt"

	"rokomferi-storefront/config"
	"rokomferi-storefront/internal/domain"
	"rokomferi-storefront/internal/reconcile"
	"rokomferi-storefront/internal/storefront"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// cli holds what every subcommand shares. app is built in the root's
// PersistentPreRunE and closed in PersistentPostRun.
type cli struct {
	cfg *config.Config
	log *zerolog.Logger
	app *storefront.App
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Rokomferi storefront cart and wishlist client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.app != nil {
				c.app.Close()
			}
		},
	}

	root.AddCommand(
		newLoginCmd(c),
		newLogoutCmd(c),
		newWhoamiCmd(c),
		newProductsCmd(c),
		newCartCmd(c),
		newWishlistCmd(c),
	)
	return root
}

func (c *cli) open(cmd *cobra.Command) error {
	errOut := cmd.ErrOrStderr()

	c.app = storefront.New(storefront.Options{
		Config: c.cfg,
		LoginRequired: func(ctx context.Context) {
			fmt.Fprintln(errOut, "Please log in first: storefront login")
		},
		Feedback: reconcile.FeedbackFunc(func(f reconcile.Failure) {
			if f.Kind == domain.KindUnauthenticated {
				return
			}
			fmt.Fprintf(errOut, "%s %s failed: %s\n", f.Resource, f.Op, f.Message)
		}),
		Logger: c.log,
	})

	if err := c.app.Start(cmd.Context()); err != nil {
		// A remembered token survives a network failure; commands will
		// surface their own errors.
		c.log.Warn().Err(err).Msg("Could not restore session")
	}
	return nil
}

// errLoginRequired fails a cart command after the login redirect hook has
// already told the shopper what to do.
var errLoginRequired = errors.New("login required")

// requireSession fails commands that make no sense signed out.
func (c *cli) requireSession() error {
	if !c.app.Gate.Authenticated() {
		return errors.New("not logged in, run: storefront login")
	}
	return nil
}
