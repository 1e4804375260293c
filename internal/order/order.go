// Package order submits orders and loads order payments, reporting progress
// to the checkout store as actions.
package order

import (
	"context"
	"fmt"
	"strconv"

	"github.com/yourorg/checkout-orchestrator/internal/checkout"
	"github.com/yourorg/checkout-orchestrator/internal/payment"
	"github.com/yourorg/checkout-orchestrator/internal/transport"
)

// RequestBody is what a caller submits to place an order.
type RequestBody struct {
	Payment         *payment.OrderPaymentRequestBody `json:"payment,omitempty"`
	UseStoreCredit  bool                             `json:"useStoreCredit,omitempty"`
	CustomerMessage string                           `json:"customerMessage,omitempty"`
}

// SubmitPayload is the order submission sent to the storefront API.
type SubmitPayload struct {
	CartID          string                           `json:"cartId"`
	CustomerMessage string                           `json:"customerMessage,omitempty"`
	UseStoreCredit  bool                             `json:"useStoreCredit,omitempty"`
	ExternalSource  string                           `json:"externalSource,omitempty"`
	Payment         *payment.OrderPaymentRequestBody `json:"payment,omitempty"`
}

// RequestSender talks to the storefront order endpoints.
type RequestSender interface {
	LoadOrderPayments(ctx context.Context, orderID int64) (*checkout.Order, error)
	SubmitOrder(ctx context.Context, payload SubmitPayload) (*checkout.OrderSubmitted, error)
	FinalizeOrder(ctx context.Context, orderID int64) (*checkout.Order, error)
}

const (
	ordersPath      = "/api/storefront/orders/"
	submitOrderPath = "/internalapi/v1/checkout/order"
)

// HTTPSender is a RequestSender over the JSON transport.
type HTTPSender struct {
	client *transport.Client
}

// NewHTTPSender creates an HTTPSender.
func NewHTTPSender(client *transport.Client) *HTTPSender {
	return &HTTPSender{client: client}
}

func (s *HTTPSender) LoadOrderPayments(ctx context.Context, orderID int64) (*checkout.Order, error) {
	var o checkout.Order
	path := ordersPath + strconv.FormatInt(orderID, 10) + "?include=payments"
	if err := s.client.Get(ctx, path, &o); err != nil {
		return nil, fmt.Errorf("order: load payments for %d: %w", orderID, err)
	}
	return &o, nil
}

func (s *HTTPSender) SubmitOrder(ctx context.Context, payload SubmitPayload) (*checkout.OrderSubmitted, error) {
	var resp checkout.OrderSubmitted
	headers := map[string]string{"Idempotency-Key": "order-" + payload.CartID}
	if err := s.client.Post(ctx, submitOrderPath, payload, &resp, headers); err != nil {
		return nil, fmt.Errorf("order: submit cart %s: %w", payload.CartID, err)
	}
	return &resp, nil
}

func (s *HTTPSender) FinalizeOrder(ctx context.Context, orderID int64) (*checkout.Order, error) {
	var o checkout.Order
	id := strconv.FormatInt(orderID, 10)
	headers := map[string]string{"Idempotency-Key": "finalize-" + id}
	if err := s.client.Post(ctx, ordersPath+id+"/finalize", nil, &o, headers); err != nil {
		return nil, fmt.Errorf("order: finalize %d: %w", orderID, err)
	}
	return &o, nil
}
