package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gaylashop/storefront/internal/cart/domain"
	"github.com/gaylashop/storefront/internal/cart/view"
	"github.com/gaylashop/storefront/pkg/shutdown"
)

func (c *cli) addCmd() *cobra.Command {
	var (
		qty      int
		variants map[string]string
	)
	cmd := &cobra.Command{
		Use:   "add <product-id|slug>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			item, err := c.shop.lines.LineItem(ctx, args[0], domain.Variants(variants), qty)
			if err != nil {
				return err
			}
			if err := c.tab.store.AddItem(ctx, item); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %d x %s\n", qty, describe(item))
			return nil
		}),
	}
	cmd.Flags().IntVar(&qty, "qty", 1, "quantity to add")
	cmd.Flags().StringToStringVar(&variants, "variant", nil, "variant selection, e.g. --variant Size=M")
	return cmd
}

func (c *cli) updateCmd() *cobra.Command {
	var variants map[string]string
	cmd := &cobra.Command{
		Use:   "update <product-id> <quantity>",
		Short: "Set the quantity of a line; 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return &domain.InvalidQuantityError{Input: args[1]}
			}
			c.tab.store.UpdateQuantity(cmd.Context(), lineKey(args[0], variants), qty)
			return c.printCart(cmd)
		}),
	}
	cmd.Flags().StringToStringVar(&variants, "variant", nil, "variant selection of the line")
	return cmd
}

func (c *cli) removeCmd() *cobra.Command {
	var variants map[string]string
	cmd := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			c.tab.store.RemoveItem(cmd.Context(), lineKey(args[0], variants))
			return c.printCart(cmd)
		}),
	}
	cmd.Flags().StringToStringVar(&variants, "variant", nil, "variant selection of the line")
	return cmd
}

func (c *cli) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			c.tab.store.Clear(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "cart cleared")
			return nil
		}),
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the cart lines and subtotal",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			return c.printCart(cmd)
		}),
	}
}

func (c *cli) countCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the cart badge (distinct lines)",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			c.tab.badge.Update(c.tab.store.Snapshot(cmd.Context()))
			printBadge(cmd.OutOrStdout(), c.tab.badge.State())
			return nil
		}),
	}
}

func (c *cli) watchCmd() *cobra.Command {
	var duration time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stay open as a tab and print the badge whenever the cart changes",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			ctx, cancel := shutdown.WithSignals(cmd.Context(), c.log)
			defer cancel()
			if duration > 0 {
				var stop context.CancelFunc
				ctx, stop = context.WithTimeout(ctx, duration)
				defer stop()
			}

			updates, unsubscribe := c.tab.badge.Updates()
			defer unsubscribe()

			out := cmd.OutOrStdout()
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return c.tab.sync.Run(gctx)
			})
			g.Go(func() error {
				for {
					select {
					case <-gctx.Done():
						return nil
					case st := <-updates:
						printBadge(out, st)
					}
				}
			})
			return g.Wait()
		}),
	}
	cmd.Flags().DurationVar(&duration, "for", 0, "stop after this long (0 waits for a signal)")
	return cmd
}

func (c *cli) printCart(cmd *cobra.Command) error {
	cart := c.tab.store.Snapshot(cmd.Context())
	out := cmd.OutOrStdout()
	if cart.IsEmpty() {
		fmt.Fprintln(out, "cart is empty")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tNAME\tVARIANTS\tQTY\tPRICE\tTOTAL")
	for _, it := range cart.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			it.ProductID, it.Name, it.Variants.String(), it.Quantity,
			it.UnitPrice().StringFixed(2), it.LineTotal().StringFixed(2))
	}
	fmt.Fprintf(w, "\t\t\t\tSUBTOTAL\t%s DZD\n", cart.Subtotal().StringFixed(2))
	return w.Flush()
}

func printBadge(out io.Writer, st view.State) {
	fmt.Fprintf(out, "cart: %d lines, %d units\n", st.Count, st.Units)
}

func lineKey(productID string, variants map[string]string) domain.LineKey {
	return domain.LineKey{ProductID: productID, Variants: domain.Variants(variants).Clone()}
}

func describe(it domain.LineItem) string {
	if len(it.Variants) == 0 {
		return it.Name
	}
	return it.Name + " (" + it.Variants.String() + ")"
}
