package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jhonlemus05/FastBite-Delivery/app/models"
	"github.com/jhonlemus05/FastBite-Delivery/app/routes"
	"github.com/jhonlemus05/FastBite-Delivery/app/views"
)

var catalogCategory string

// fastbite catalog: print the menu as the backend serves it.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the products served by the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		products, err := routes.Backend().GetProducts(context.Background())
		if err != nil {
			return err
		}
		if c, ok := models.ParseCategory(catalogCategory); ok {
			products = models.FilterByCategory(products, c)
		} else if catalogCategory != "" {
			return fmt.Errorf("unknown category %q", catalogCategory)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tCATEGORY\tPRICE\tNAME")
		for _, p := range products {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Category, views.Money(p.Price), p.Name)
		}
		return w.Flush()
	},
}

func init() {
	catalogCmd.Flags().StringVarP(&catalogCategory, "category", "c", "", "only this category (Hamburguesas, Pizzas, Bebidas, Postres)")
}
