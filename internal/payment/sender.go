package payment

import (
	"context"
	"fmt"

	"github.com/yourorg/checkout-orchestrator/internal/transport"
)

const paymentsPath = "/api/public/v1/payments"

// OrderPaymentRequestBody is the payment part of an order submission.
type OrderPaymentRequestBody struct {
	MethodID    string `json:"methodId"`
	GatewayID   string `json:"gatewayId,omitempty"`
	PaymentData *Data  `json:"paymentData,omitempty"`
}

// Response is the payments API reply to a submission.
type Response struct {
	ID               string            `json:"id,omitempty"`
	Status           string            `json:"status"`
	AdditionalAction *AdditionalAction `json:"additionalAction,omitempty"`
	Errors           []string          `json:"errors,omitempty"`
}

// Sender submits payment bodies to the payments API.
type Sender interface {
	SubmitPayment(ctx context.Context, body RequestBody) (Response, error)
}

// HTTPSender is a Sender over the JSON transport.
type HTTPSender struct {
	client *transport.Client
}

// NewHTTPSender creates an HTTPSender.
func NewHTTPSender(client *transport.Client) *HTTPSender {
	return &HTTPSender{client: client}
}

// SubmitPayment posts body with its auth token as the authorization header.
func (s *HTTPSender) SubmitPayment(ctx context.Context, body RequestBody) (Response, error) {
	headers := map[string]string{
		"Authorization":   body.AuthToken,
		"Idempotency-Key": "payment",
	}
	var resp Response
	if err := s.client.Post(ctx, paymentsPath, body, &resp, headers); err != nil {
		return Response{}, fmt.Errorf("payment: submit: %w", err)
	}
	return resp, nil
}
