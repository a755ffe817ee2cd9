package service

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/rl1809/shop-backoffice/internal/core/domain"
	"github.com/rl1809/shop-backoffice/internal/core/money"
	"github.com/rl1809/shop-backoffice/internal/port"
)

var ErrMissingOrderID = errors.New("missing order id")

type OrderService struct {
	repo      port.OrderRepository
	priceOpts []money.Option
}

func NewOrderService(repo port.OrderRepository, priceOpts ...money.Option) *OrderService {
	return &OrderService{repo: repo, priceOpts: priceOpts}
}

func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

// GetOrderView loads the order header and its lines concurrently and returns
// only once both reads have finished.
func (s *OrderService) GetOrderView(ctx context.Context, orderID string) (*domain.OrderView, error) {
	if orderID == "" {
		return nil, ErrMissingOrderID
	}

	var (
		order *domain.Order
		items []domain.OrderItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		o, err := s.repo.GetOrder(gctx, orderID)
		if err != nil {
			return errors.Wrapf(err, "get order %s", orderID)
		}
		order = o
		return nil
	})
	g.Go(func() error {
		lines, err := s.repo.ListOrderItems(gctx, orderID)
		if err != nil {
			return errors.Wrapf(err, "list items of order %s", orderID)
		}
		items = lines
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := &domain.OrderView{
		Order: *order,
		Items: make([]domain.OrderItemView, 0, len(items)),
	}
	for _, item := range items {
		subtotal := item.SubtotalCents()
		view.Items = append(view.Items, domain.OrderItemView{
			OrderItem:          item,
			SubtotalCents:      subtotal,
			UnitPriceFormatted: money.FormatPrice(item.UnitPriceCents, s.priceOpts...),
			SubtotalFormatted:  money.FormatPrice(subtotal, s.priceOpts...),
		})
		view.TotalCents += subtotal
	}
	view.TotalFormatted = money.FormatPrice(view.TotalCents, s.priceOpts...)

	return view, nil
}
