// Package api implements the typed client for the CampusEats HTTP API.
//
// Every method goes through the gateway, so authenticated calls pick up the
// refresh-and-retry protocol for free. Methods return the server's data
// decoded into model types, or an *Error carrying the server's message.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/campuseats/campuseats/internal/gateway"
	"github.com/campuseats/campuseats/internal/model"
)

// Client is a typed view over the remote API.
type Client struct {
	gw *gateway.Gateway
}

// New returns a client dispatching through gw.
func New(gw *gateway.Gateway) *Client { return &Client{gw: gw} }

// do runs one JSON round trip. in is marshaled as the request body when
// non-nil; out is filled from a 2xx response body when non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any, anonymous bool) error {
	req := &gateway.Request{Method: method, Path: path, Query: query, Anonymous: anonymous}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return err
		}
		req.Body = body
		req.ContentType = "application/json"
	}
	resp, err := c.gw.Do(ctx, req)
	if err != nil {
		return err
	}
	if resp.Status >= http.StatusBadRequest {
		return newError(resp.Status, resp.Body)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// ---- auth ----

// Credentials is a username/password pair for login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest carries the registration form. The declared Role is
// authoritative: the server creates the matching profile from it.
type RegisterRequest struct {
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	Password        string     `json:"password"`
	PasswordConfirm string     `json:"password_confirm"`
	FirstName       string     `json:"first_name,omitempty"`
	LastName        string     `json:"last_name,omitempty"`
	Role            model.Role `json:"user_type"`
}

// LoginResponse is the payload of POST /auth/login/.
type LoginResponse struct {
	User   model.User   `json:"user"`
	Role   model.Role   `json:"user_type"`
	Tokens model.Tokens `json:"tokens"`
}

// RegisterResponse is the payload of POST /auth/register/. The role is not
// echoed back; callers keep the one they declared.
type RegisterResponse struct {
	User    model.User   `json:"user"`
	Tokens  model.Tokens `json:"tokens"`
	Message string       `json:"message"`
}

// CurrentUserResponse is the payload of GET /auth/user/.
type CurrentUserResponse struct {
	User    model.User     `json:"user"`
	Role    model.Role     `json:"user_type"`
	Profile *model.Profile `json:"profile"`
}

// Login authenticates and returns the identity plus credential pair.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login/", nil, creds, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns its identity plus credential pair.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var out RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register/", nil, req, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout asks the server to blacklist the refresh token.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	in := map[string]string{"refresh_token": refreshToken}
	return c.do(ctx, http.MethodPost, "/auth/logout/", nil, in, nil, false)
}

// CurrentUser fetches the authenticated identity with its extended profile.
func (c *Client) CurrentUser(ctx context.Context) (*CurrentUserResponse, error) {
	var out CurrentUserResponse
	if err := c.do(ctx, http.MethodGet, "/auth/user/", nil, nil, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---- restaurants ----

// Restaurants lists restaurants, optionally filtered by a name search.
func (c *Client) Restaurants(ctx context.Context, search string) ([]model.Restaurant, error) {
	var q url.Values
	if search != "" {
		q = url.Values{"search": {search}}
	}
	var out []model.Restaurant
	if err := c.do(ctx, http.MethodGet, "/restaurants/", q, nil, &out, false); err != nil {
		return nil, err
	}
	return out, nil
}

// Restaurant fetches one restaurant by id.
func (c *Client) Restaurant(ctx context.Context, id int64) (*model.Restaurant, error) {
	var out model.Restaurant
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/restaurants/%d/", id), nil, nil, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRestaurant opens a storefront for the calling seller.
func (c *Client) CreateRestaurant(ctx context.Context, name string) (*model.Restaurant, error) {
	in := map[string]string{"restraunt_name": name}
	var out model.Restaurant
	if err := c.do(ctx, http.MethodPost, "/restaurants/", nil, in, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyRestaurant returns the calling seller's restaurant.
func (c *Client) MyRestaurant(ctx context.Context) (*model.Restaurant, error) {
	var out model.Restaurant
	if err := c.do(ctx, http.MethodGet, "/restaurants/my_restaurant/", nil, nil, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---- menu items ----

// MenuItems lists items, filtered to one restaurant when restaurantID > 0.
func (c *Client) MenuItems(ctx context.Context, restaurantID int64, availableOnly bool) ([]model.MenuItem, error) {
	q := url.Values{}
	if restaurantID > 0 {
		q.Set("restaurant", fmt.Sprint(restaurantID))
	}
	if availableOnly {
		q.Set("available", "true")
	}
	if len(q) == 0 {
		q = nil
	}
	var out []model.MenuItem
	if err := c.do(ctx, http.MethodGet, "/items/", q, nil, &out, false); err != nil {
		return nil, err
	}
	return out, nil
}

// MyItems lists the calling seller's menu items.
func (c *Client) MyItems(ctx context.Context) ([]model.MenuItem, error) {
	var out []model.MenuItem
	if err := c.do(ctx, http.MethodGet, "/items/my_items/", nil, nil, &out, false); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateItem uploads a new menu item as a multipart form (the image field
// requires it).
func (c *Client) CreateItem(ctx context.Context, up ItemUpload) (*model.MenuItem, error) {
	return c.sendItem(ctx, http.MethodPost, "/items/", up)
}

// UpdateItem patches an existing menu item.
func (c *Client) UpdateItem(ctx context.Context, id int64, up ItemUpload) (*model.MenuItem, error) {
	return c.sendItem(ctx, http.MethodPatch, fmt.Sprintf("/items/%d/", id), up)
}

// DeleteItem removes a menu item.
func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/items/%d/", id), nil, nil, nil, false)
}

func (c *Client) sendItem(ctx context.Context, method, path string, up ItemUpload) (*model.MenuItem, error) {
	body, contentType, err := up.encode()
	if err != nil {
		return nil, err
	}
	resp, err := c.gw.Do(ctx, &gateway.Request{
		Method:      method,
		Path:        path,
		Body:        body,
		ContentType: contentType,
	})
	if err != nil {
		return nil, err
	}
	if resp.Status >= http.StatusBadRequest {
		return nil, newError(resp.Status, resp.Body)
	}
	var out model.MenuItem
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return &out, nil
}

// ---- basket ----

// decodeBasket handles both shapes the basket endpoints answer with: the
// bare serialized basket, and {"message": ..., "basket": ...} where the
// basket may be null. A nil result means no basket exists server-side.
func decodeBasket(body []byte) (*model.Basket, error) {
	var env struct {
		Message string          `json:"message"`
		Basket  json.RawMessage `json:"basket"`
	}
	if err := json.Unmarshal(body, &env); err == nil && (env.Message != "" || len(env.Basket) > 0) {
		if len(env.Basket) == 0 || string(env.Basket) == "null" {
			return nil, nil
		}
		var b model.Basket
		if err := json.Unmarshal(env.Basket, &b); err != nil {
			return nil, fmt.Errorf("decode basket: %w", err)
		}
		return &b, nil
	}
	var b model.Basket
	if err := json.Unmarshal(body, &b); err != nil {
		return nil, fmt.Errorf("decode basket: %w", err)
	}
	return &b, nil
}

// CurrentBasket fetches the caller's basket. A nil result means no basket
// exists server-side, which callers treat the same as an empty one.
func (c *Client) CurrentBasket(ctx context.Context) (*model.Basket, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/basket/current/", nil, nil, &raw, false); err != nil {
		return nil, err
	}
	return decodeBasket(raw)
}

// AddBasketItem adds one unit of the item and returns the updated basket.
func (c *Client) AddBasketItem(ctx context.Context, itemID int64) (*model.Basket, error) {
	in := map[string]int64{"item_id": itemID}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/basket/add_item/", nil, in, &raw, false); err != nil {
		return nil, err
	}
	return decodeBasket(raw)
}

// RemoveBasketItem removes a basket line. A nil basket means the server
// deleted the now-empty basket.
func (c *Client) RemoveBasketItem(ctx context.Context, basketItemID int64) (*model.Basket, error) {
	in := map[string]int64{"basket_item_id": basketItemID}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/basket/remove_item/", nil, in, &raw, false); err != nil {
		return nil, err
	}
	return decodeBasket(raw)
}

// ClearBasket discards the caller's basket. Clearing an absent basket is a
// no-op server-side.
func (c *Client) ClearBasket(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/basket/clear/", nil, struct{}{}, nil, false)
}

// PlaceOrder converts the basket into an order. The basket is cleared
// server-side on success.
func (c *Client) PlaceOrder(ctx context.Context) (*model.Order, error) {
	var out struct {
		Message string      `json:"message"`
		OrderID int64       `json:"order_id"`
		Order   model.Order `json:"order"`
	}
	if err := c.do(ctx, http.MethodPost, "/basket/place_order/", nil, struct{}{}, &out, false); err != nil {
		return nil, err
	}
	return &out.Order, nil
}

// ---- orders ----

// Orders lists orders: a customer sees their own, a seller sees their
// restaurant's (same entity, two visibility projections).
func (c *Client) Orders(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	if err := c.do(ctx, http.MethodGet, "/orders/", nil, nil, &out, false); err != nil {
		return nil, err
	}
	return out, nil
}

// Order fetches one order by id.
func (c *Client) Order(ctx context.Context, id int64) (*model.Order, error) {
	var out model.Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d/", id), nil, nil, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompleteOrder marks an order dispatched (seller only).
func (c *Client) CompleteOrder(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/orders/%d/complete/", id), nil, struct{}{}, nil, false)
}

// ---- ratings ----

// RateItem submits or replaces the caller's rating for a menu item.
func (c *Client) RateItem(ctx context.Context, itemID int64, value int) error {
	in := map[string]int64{"rated_item": itemID, "rating_value": int64(value)}
	return c.do(ctx, http.MethodPost, "/ratings/", nil, in, nil, false)
}

// RateRestaurant submits or replaces the caller's rating for a restaurant.
func (c *Client) RateRestaurant(ctx context.Context, restaurantID int64, value int) error {
	in := map[string]int64{"rated_restraunt": restaurantID, "rating_value": int64(value)}
	return c.do(ctx, http.MethodPost, "/restaurant-ratings/", nil, in, nil, false)
}
