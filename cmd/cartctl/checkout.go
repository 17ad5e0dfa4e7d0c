package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	checkoutdomain "github.com/gaylashop/storefront/internal/checkout/domain"
	"github.com/gaylashop/storefront/internal/delivery"
)

func (c *cli) quoteCmd() *cobra.Command {
	var (
		wilaya int
		option string
	)
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price the cart with delivery to a wilaya",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			t, err := delivery.ParseType(option)
			if err != nil {
				return err
			}
			q, err := c.shop.checkout.Quote(cmd.Context(), wilaya, t)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, line := range q.Lines {
				fmt.Fprintf(w, "%s\t%d\t%s\n", line.Name, line.Quantity, line.LineTotal.StringFixed(2))
			}
			fmt.Fprintf(w, "subtotal\t\t%s\n", q.Subtotal.StringFixed(2))
			fmt.Fprintf(w, "delivery (%s, wilaya %d)\t\t%s\n", q.DeliveryType, q.Wilaya, q.Delivery.StringFixed(2))
			fmt.Fprintf(w, "total\t\t%s DZD\n", q.Total.StringFixed(2))
			return w.Flush()
		}),
	}
	cmd.Flags().IntVar(&wilaya, "wilaya", 16, "wilaya code (1-58)")
	cmd.Flags().StringVar(&option, "delivery", string(delivery.Stopdesk), "stopdesk or domicile")
	return cmd
}

func (c *cli) checkoutCmd() *cobra.Command {
	var (
		customer checkoutdomain.Customer
		option   string
	)
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place a cash-on-delivery order for the cart and empty it",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			t, err := delivery.ParseType(option)
			if err != nil {
				return err
			}
			receipt, err := c.shop.checkout.PlaceOrder(cmd.Context(), customer, t)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "order %s %s, pay %s DZD on delivery\n",
				receipt.OrderID, receipt.Status, receipt.Total.StringFixed(2))
			return nil
		}),
	}
	cmd.Flags().StringVar(&customer.Name, "name", "", "customer full name")
	cmd.Flags().StringVar(&customer.Phone, "phone", "", "mobile number, e.g. 0551234567")
	cmd.Flags().IntVar(&customer.Wilaya, "wilaya", 0, "wilaya code (1-58)")
	cmd.Flags().StringVar(&customer.Commune, "commune", "", "commune")
	cmd.Flags().StringVar(&customer.Address, "address", "", "street address (required for domicile)")
	cmd.Flags().StringVar(&option, "delivery", string(delivery.Stopdesk), "stopdesk or domicile")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("phone")
	_ = cmd.MarkFlagRequired("wilaya")
	return cmd
}
