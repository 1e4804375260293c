package integration

import (
	"context"

	"github.com/yourorg/checkout-orchestrator/internal/checkout"
	"github.com/yourorg/checkout-orchestrator/internal/order"
	"github.com/yourorg/checkout-orchestrator/internal/payment"
)

// StoreService is a Service that dispatches collaborator thunks to a store.
type StoreService struct {
	store    checkout.Dispatcher
	orders   *order.ActionCreator
	payments *payment.ActionCreator
}

// NewStoreService creates a StoreService.
func NewStoreService(store checkout.Dispatcher, orders *order.ActionCreator, payments *payment.ActionCreator) *StoreService {
	return &StoreService{store: store, orders: orders, payments: payments}
}

func (s *StoreService) GetState() checkout.State {
	return s.store.GetState()
}

func (s *StoreService) SubmitOrder(ctx context.Context, body *order.RequestBody) error {
	return s.store.Dispatch(ctx, s.orders.SubmitOrder(body))
}

func (s *StoreService) SubmitPayment(ctx context.Context, p payment.Payment) error {
	return s.store.Dispatch(ctx, s.payments.SubmitPayment(p))
}

func (s *StoreService) LoadOrderPayments(ctx context.Context, orderID int64) error {
	return s.store.Dispatch(ctx, s.orders.LoadOrderPayments(orderID))
}

func (s *StoreService) FinalizeOrder(ctx context.Context, orderID int64) error {
	return s.store.Dispatch(ctx, s.orders.FinalizeOrder(orderID))
}
