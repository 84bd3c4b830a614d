// Package model defines domain entities shared by the session, basket and API layers.
//
// JSON tags follow the server's wire field names exactly, including the
// backend's "restraunt" spellings; the server is authoritative here.
package model

import "time"

// Role distinguishes the two account kinds the API knows about.
type Role string

const (
	RoleCustomer Role = "user"
	RoleSeller   Role = "seller"
)

// Valid reports whether r is one of the roles the API accepts.
func (r Role) Valid() bool { return r == RoleCustomer || r == RoleSeller }

// Tokens is the credential pair issued at login/register. ExpiresAt is
// derived client-side from the access token's exp claim (diagnostics only).
type Tokens struct {
	Access    string    `json:"access"`
	Refresh   string    `json:"refresh"`
	ExpiresAt time.Time `json:"-"`
}

// User is the account identity as returned by the auth endpoints.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Profile is the extended display profile. Customer and seller profiles are
// the same entity in two projections: customers carry campus fields, sellers
// carry a contact phone.
type Profile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	CampusID string `json:"bits_id,omitempty"`
	Hostel   string `json:"hostel,omitempty"`
	RoomNo   int    `json:"room_no,omitempty"`
	Branch   string `json:"user_branch,omitempty"`
	PhoneNo  int64  `json:"seller_phone_no,omitempty"`
}

// Restaurant is a seller's storefront. Rating decimals are rendered as
// strings by the server and never recomputed client-side.
type Restaurant struct {
	ID          int64  `json:"id"`
	Name        string `json:"restraunt_name"`
	Rating      string `json:"restraunt_rating_value"`
	SellerID    int64  `json:"of_seller"`
	SellerName  string `json:"seller_name"`
	SellerPhone int64  `json:"seller_phone"`
}

// MenuItem is a purchasable item on a restaurant's menu. Prices are integer
// currency units on the server.
type MenuItem struct {
	ID             int64  `json:"id"`
	Name           string `json:"item_name"`
	Price          int64  `json:"item_price"`
	Description    string `json:"item_description"`
	Image          string `json:"item_image,omitempty"`
	Available      bool   `json:"available"`
	Rating         string `json:"item_rating"`
	RestaurantID   int64  `json:"of_restraunt"`
	RestaurantName string `json:"restaurant_name"`
}

// Basket is the client-visible projection of the server-held basket,
// scoped to exactly one restaurant. ItemCount, TotalCost and per-line
// totals are computed server-side and trusted as returned.
type Basket struct {
	ID             int64        `json:"id"`
	ItemCount      int          `json:"no_of_items"`
	TotalCost      int64        `json:"total_cost"`
	RestaurantID   int64        `json:"restaurant_id"`
	RestaurantName string       `json:"restaurant_name"`
	Items          []BasketItem `json:"items"`
}

// Empty reports whether the basket holds no items. An absent server-side
// basket and an emptied one are both represented as an Empty basket.
func (b *Basket) Empty() bool { return b == nil || len(b.Items) == 0 }

// BasketItem is a single line in the basket.
type BasketItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"item_name"`
	Description string `json:"item_description"`
	UnitPrice   int64  `json:"item_cost"`
	Quantity    int    `json:"item_quantity"`
	Image       string `json:"item_image,omitempty"`
	LineTotal   int64  `json:"total_cost_item"`
}

// Order is an immutable placed order. The customer fields are only filled
// in the seller-visible projection.
type Order struct {
	ID             int64       `json:"id"`
	TotalPrice     int64       `json:"order_price"`
	ItemCount      int         `json:"no_of_items"`
	RestaurantName string      `json:"restaurant_name"`
	CustomerName   string      `json:"student_name,omitempty"`
	CustomerID     string      `json:"student_bits_id,omitempty"`
	CustomerHostel string      `json:"student_hostel,omitempty"`
	CustomerRoom   int         `json:"student_room,omitempty"`
	Items          []OrderItem `json:"items"`
}

// OrderItem is a single line of a placed order.
type OrderItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"item_name"`
	Price    int64  `json:"item_price"`
	Quantity int    `json:"item_quantity"`
}
