package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	catalogapp "github.com/gaylashop/storefront/internal/catalog/app"
)

func (c *cli) productCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Manage the local product catalog",
	}
	cmd.AddCommand(c.productAddCmd(), c.productListCmd())
	return cmd
}

func (c *cli) productAddCmd() *cobra.Command {
	var (
		in        catalogapp.NewProduct
		price     string
		thumbnail string
		groups    []string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product to the catalog",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			var err error
			if in.Price, err = decimal.NewFromString(price); err != nil {
				return fmt.Errorf("%w: price %q", catalogapp.ErrInvalidInput, price)
			}
			if thumbnail != "" {
				in.Thumbnail = &thumbnail
			}
			if in.VariantGroups, err = parseGroups(groups); err != nil {
				return err
			}

			p, err := c.shop.catalog.CreateProduct(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p.ID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&in.Slug, "slug", "", "url slug, e.g. abaya-noir")
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&in.Description, "description", "", "description")
	cmd.Flags().StringVar(&price, "price", "", "unit price in DZD")
	cmd.Flags().StringVar(&thumbnail, "thumbnail", "", "thumbnail URL")
	cmd.Flags().StringArrayVar(&groups, "variant-group", nil, "variant group and values, e.g. Size=S,M,L")
	_ = cmd.MarkFlagRequired("slug")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func (c *cli) productListCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)
	cmd := &cobra.Command{
		Use:   "list [query]",
		Short: "List catalog products",
		Args:  cobra.MaximumNArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			products, next, err := c.shop.catalog.ListProducts(cmd.Context(), query, limit, cursor)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSLUG\tNAME\tPRICE\tVARIANTS")
			for _, p := range products {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Slug, p.Name, p.Price.StringFixed(2), formatGroups(p.VariantGroups))
			}
			if next != "" {
				fmt.Fprintf(w, "next cursor: %s\n", next)
			}
			return w.Flush()
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "page size (max 100)")
	cmd.Flags().StringVar(&cursor, "cursor", "", "cursor from the previous page")
	return cmd
}

func parseGroups(specs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(specs))
	for _, s := range specs {
		name, values, ok := strings.Cut(s, "=")
		if !ok || strings.TrimSpace(name) == "" || strings.TrimSpace(values) == "" {
			return nil, fmt.Errorf("%w: variant group %q, want Name=v1,v2", catalogapp.ErrInvalidInput, s)
		}
		out[strings.TrimSpace(name)] = strings.Split(values, ",")
	}
	return out, nil
}

func formatGroups(groups map[string][]string) string {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+strings.Join(groups[name], ","))
	}
	return strings.Join(parts, " ")
}
