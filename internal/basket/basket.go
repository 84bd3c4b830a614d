// Package basket maintains the client view of the server-held shopping
// basket and the basket-to-order transition.
//
// Mutations are fire-and-refetch: after every change the current basket is
// re-requested instead of patching local state, so server-computed totals
// are always the ones displayed.
package basket

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/campuseats/campuseats/internal/api"
	"github.com/campuseats/campuseats/internal/errs"
	"github.com/campuseats/campuseats/internal/model"
)

// API is the slice of the remote client the service needs. *api.Client
// satisfies it.
type API interface {
	CurrentBasket(ctx context.Context) (*model.Basket, error)
	AddBasketItem(ctx context.Context, itemID int64) (*model.Basket, error)
	RemoveBasketItem(ctx context.Context, basketItemID int64) (*model.Basket, error)
	ClearBasket(ctx context.Context) error
	PlaceOrder(ctx context.Context) (*model.Order, error)
}

// Service exposes basket reads, mutations and order placement.
type Service struct {
	api API
	log *zap.Logger
}

// NewService returns a basket service over the given API.
func NewService(a API, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{api: a, log: log}
}

// Current returns the basket. An absent server-side basket and an emptied
// one both come back as a non-nil basket with no items; neither is an error.
func (s *Service) Current(ctx context.Context) (*model.Basket, error) {
	b, err := s.api.CurrentBasket(ctx)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return &model.Basket{}, nil
	}
	return b, nil
}

// AddItem adds one unit of the item and returns the refetched basket. A
// cross-restaurant conflict is reported with the server's message verbatim;
// the client does not pre-validate.
func (s *Service) AddItem(ctx context.Context, itemID int64) (*model.Basket, error) {
	if _, err := s.api.AddBasketItem(ctx, itemID); err != nil {
		return nil, err
	}
	return s.Current(ctx)
}

// RemoveItem removes a basket line and returns the refetched basket.
// Removing the last item yields an empty, not absent, basket.
func (s *Service) RemoveItem(ctx context.Context, basketItemID int64) (*model.Basket, error) {
	if _, err := s.api.RemoveBasketItem(ctx, basketItemID); err != nil {
		return nil, err
	}
	return s.Current(ctx)
}

// Clear discards the basket.
func (s *Service) Clear(ctx context.Context) error {
	return s.api.ClearBasket(ctx)
}

// PlaceOrder converts the basket into an order. The server rejects an empty
// or absent basket; that rejection is mapped onto errs.ErrEmptyBasket and no
// order state is produced. Local basket state is stale after success and
// must be refetched on next view.
func (s *Service) PlaceOrder(ctx context.Context) (*model.Order, error) {
	ord, err := s.api.PlaceOrder(ctx)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest {
			return nil, fmt.Errorf("%w: %s", errs.ErrEmptyBasket, apiErr.Message)
		}
		return nil, err
	}
	s.log.Info("order placed",
		zap.Int64("order_id", ord.ID),
		zap.Int64("total", ord.TotalPrice),
		zap.Int("items", ord.ItemCount),
	)
	return ord, nil
}
