package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/cache"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type OrderService struct {
	store    repository.Store
	products cache.ProductCache
	policy   RestockPolicy
	log      zerolog.Logger
}

func NewOrderService(store repository.Store, products cache.ProductCache, opts Options) *OrderService {
	opts = opts.withDefaults()
	return &OrderService{
		store:    store,
		products: products,
		policy:   opts.RestockPolicy,
		log:      opts.Logger,
	}
}

// CreateOrder turns the user's cart into a PENDING order priced at current
// product prices. Stock was already taken when the items entered the cart.
func (s *OrderService) CreateOrder(ctx context.Context, userID int64) (*domain.Order, error) {
	var order *domain.Order
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		user, err := q.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		cart, products, err := lockCart(ctx, q, userID)
		if err != nil {
			return err
		}
		if cart.IsEmpty() {
			return fmt.Errorf("user %d: %w", userID, domain.ErrEmptyCart)
		}

		order = &domain.Order{UserID: userID, Status: domain.OrderStatusPending, Total: decimal.Zero}
		for _, item := range cart.Items {
			p := products[item.ProductID]
			order.Lines = append(order.Lines, domain.OrderLine{
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    item.Quantity,
				UnitPrice:   p.Price,
			})
			order.Total = order.Total.Add(p.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		if err := q.CreateOrder(ctx, order); err != nil {
			return err
		}
		if s.policy == RestockConsistent {
			if err := q.DeleteCartItems(ctx, cart.ID); err != nil {
				return err
			}
		}
		return enqueueEvent(ctx, q, orderAggregate(order.ID), domain.EventOrderPlaced, orderPlacedEvent(user, order))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("order_id", order.ID).Int64("user_id", userID).Str("total", order.Total.String()).
		Msg("order created")
	return order, nil
}

// UpdateOrderStatus overwrites the status. Under RestockConsistent, moving
// into CANCELLED restocks the lines and moving out of CANCELLED is refused.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*domain.Order, error) {
	next, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	var order *domain.Order
	var restocked []int64
	err = s.store.WithTx(ctx, func(q repository.Queries) error {
		o, err := q.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		prev := o.Status

		if s.policy == RestockConsistent && prev != next {
			if prev == domain.OrderStatusCancelled {
				return fmt.Errorf("order %d is cancelled and its stock was returned: %w",
					orderID, domain.ErrInvalidStateTransition)
			}
			if next == domain.OrderStatusCancelled {
				if restocked, err = restockOrder(ctx, q, o); err != nil {
					return err
				}
			}
		}

		order, err = s.setStatus(ctx, q, o, next)
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(restocked) > 0 {
		invalidateProducts(s.products, s.log, restocked...)
	}
	return order, nil
}

// CancelOrder cancels a PENDING order.
func (s *OrderService) CancelOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	var order *domain.Order
	var restocked []int64
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		o, err := q.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status != domain.OrderStatusPending {
			return fmt.Errorf("order %d is %s, only PENDING orders can be cancelled: %w",
				orderID, o.Status, domain.ErrInvalidStateTransition)
		}

		if s.policy == RestockConsistent {
			if restocked, err = restockOrder(ctx, q, o); err != nil {
				return err
			}
		}

		order, err = s.setStatus(ctx, q, o, domain.OrderStatusCancelled)
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(restocked) > 0 {
		invalidateProducts(s.products, s.log, restocked...)
	}
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	var order *domain.Order
	err := s.store.View(ctx, func(q repository.Queries) error {
		o, err := q.GetOrder(ctx, orderID)
		order = o
		return err
	})
	return order, err
}

func (s *OrderService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := s.store.View(ctx, func(q repository.Queries) error {
		o, err := q.ListOrders(ctx)
		orders = o
		return err
	})
	return orders, err
}

func (s *OrderService) ListOrdersByUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := s.store.View(ctx, func(q repository.Queries) error {
		if _, err := q.GetUser(ctx, userID); err != nil {
			return err
		}
		o, err := q.ListOrdersByUserID(ctx, userID)
		orders = o
		return err
	})
	return orders, err
}

func (s *OrderService) setStatus(ctx context.Context, q repository.Queries, o *domain.Order, next domain.OrderStatus) (*domain.Order, error) {
	prev := o.Status
	if err := q.UpdateOrderStatus(ctx, o.ID, next); err != nil {
		return nil, err
	}
	if prev != next {
		user, err := q.GetUser(ctx, o.UserID)
		if err != nil {
			return nil, err
		}
		event := domain.OrderStatusChangedEvent{
			EventID:      newEventID(),
			OrderID:      o.ID,
			CustomerName: user.FullName(),
			Email:        user.Email,
			From:         prev,
			To:           next,
		}
		if err := enqueueEvent(ctx, q, orderAggregate(o.ID), domain.EventOrderStatusChanged, event); err != nil {
			return nil, err
		}
		s.log.Info().Int64("order_id", o.ID).Str("from", string(prev)).Str("to", string(next)).
			Msg("order status changed")
	}
	return q.GetOrder(ctx, o.ID)
}

// restockOrder returns every line of o to stock. Lines whose product has
// since been deleted are skipped.
func restockOrder(ctx context.Context, q repository.Queries, o *domain.Order) ([]int64, error) {
	quantities := map[int64]int{}
	var ids []int64
	for _, line := range o.Lines {
		if line.ProductID == 0 {
			continue
		}
		if _, seen := quantities[line.ProductID]; !seen {
			ids = append(ids, line.ProductID)
		}
		quantities[line.ProductID] += line.Quantity
	}
	if len(ids) == 0 {
		return nil, nil
	}

	locked, err := q.LockProducts(ctx, ids...)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		p := locked[id]
		if err := adjustStock(ctx, q, p, p.Stock+quantities[id], domain.ActionOrderCancelled); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func orderPlacedEvent(user *domain.User, o *domain.Order) domain.OrderPlacedEvent {
	lines := make([]domain.EventLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, domain.EventLine{ProductName: l.ProductName, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	return domain.OrderPlacedEvent{
		EventID:      newEventID(),
		OrderID:      o.ID,
		CustomerName: user.FullName(),
		Email:        user.Email,
		Lines:        lines,
		Total:        o.Total,
		PlacedAt:     o.CreatedAt,
	}
}

func orderAggregate(id int64) string {
	return "order-" + strconv.FormatInt(id, 10)
}
