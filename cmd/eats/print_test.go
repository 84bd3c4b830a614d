package main

import (
	"strings"
	"testing"

	"github.com/campuseats/campuseats/internal/model"
)

func TestPrintBasket_EmptyAndAbsentRenderTheSame(t *testing.T) {
	t.Parallel()

	var absent, empty strings.Builder
	printBasket(&absent, &model.Basket{})
	printBasket(&empty, &model.Basket{ID: 3, RestaurantName: "Foodies"})

	if absent.String() != empty.String() {
		t.Fatalf("absent %q != empty %q", absent.String(), empty.String())
	}
	if !strings.Contains(absent.String(), "empty") {
		t.Fatalf("unexpected rendering: %q", absent.String())
	}
}

func TestPrintBasket_UsesServerTotals(t *testing.T) {
	t.Parallel()

	b := &model.Basket{
		RestaurantName: "Foodies",
		ItemCount:      2,
		TotalCost:      200,
		Items: []model.BasketItem{
			{ID: 9, Name: "Wrap", UnitPrice: 75, Quantity: 2, LineTotal: 200},
		},
	}
	var out strings.Builder
	printBasket(&out, b)

	if !strings.Contains(out.String(), "total: 200") {
		t.Fatalf("server total missing: %q", out.String())
	}
	if strings.Contains(out.String(), "150") {
		t.Fatalf("client-side recomputation crept in: %q", out.String())
	}
}

func TestPrintOrders_SellerProjection(t *testing.T) {
	t.Parallel()

	orders := []model.Order{{
		ID:             11,
		RestaurantName: "Foodies",
		TotalPrice:     300,
		ItemCount:      3,
		CustomerName:   "Alice",
		CustomerID:     "2021A7PS0001",
		CustomerHostel: "SR",
		CustomerRoom:   101,
		Items:          []model.OrderItem{{Name: "Wrap", Price: 100, Quantity: 3}},
	}}

	var customer strings.Builder
	printOrders(&customer, orders, false)
	if strings.Contains(customer.String(), "deliver to") {
		t.Fatalf("customer view leaked delivery details: %q", customer.String())
	}

	var seller strings.Builder
	printOrders(&seller, orders, true)
	if !strings.Contains(seller.String(), "deliver to: Alice") {
		t.Fatalf("seller view missing delivery details: %q", seller.String())
	}
}

func TestPrintItems_MarksUnavailable(t *testing.T) {
	t.Parallel()

	items := []model.MenuItem{
		{ID: 5, Name: "Wrap", Price: 100, Rating: "4.5", Available: true},
		{ID: 6, Name: "Roll", Price: 80, Rating: "3.0", Available: false},
	}
	var out strings.Builder
	printItems(&out, items)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %q", out.String())
	}
	if strings.Contains(lines[0], "[unavailable]") || !strings.Contains(lines[1], "[unavailable]") {
		t.Fatalf("availability marks wrong: %q", out.String())
	}
}
