package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/campuseats/campuseats/internal/model"
)

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// printBasket renders the basket with the server's totals as-is.
func printBasket(w io.Writer, b *model.Basket) {
	if b.Empty() {
		fmt.Fprintln(w, "basket is empty")
		return
	}
	fmt.Fprintf(w, "basket: %s\n", b.RestaurantName)
	for _, it := range b.Items {
		fmt.Fprintf(w, "  %d\t%dx %s\t= %d\n", it.ID, it.Quantity, it.Name, it.LineTotal)
	}
	fmt.Fprintf(w, "total: %d (%d item(s))\n", b.TotalCost, b.ItemCount)
}

// printItems renders a menu listing; unavailable items are marked.
func printItems(w io.Writer, items []model.MenuItem) {
	for _, it := range items {
		mark := ""
		if !it.Available {
			mark = "\t[unavailable]"
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t(rating %s)%s\n", it.ID, it.Name, it.Price, it.Rating, mark)
	}
}

// printOrders renders the order list; the seller projection includes the
// customer's delivery details.
func printOrders(w io.Writer, orders []model.Order, seller bool) {
	for _, o := range orders {
		fmt.Fprintf(w, "order #%d\t%s\ttotal %d\t%d item(s)\n", o.ID, o.RestaurantName, o.TotalPrice, o.ItemCount)
		for _, it := range o.Items {
			fmt.Fprintf(w, "  %dx %s @ %d\n", it.Quantity, it.Name, it.Price)
		}
		if seller && o.CustomerName != "" {
			fmt.Fprintf(w, "  deliver to: %s (%s), %s room %d\n",
				o.CustomerName, o.CustomerID, o.CustomerHostel, o.CustomerRoom)
		}
	}
}
