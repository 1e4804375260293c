// Package apperr holds the error taxonomy shared by the checkout orchestration
// layer and maps errors to kinds and HTTP statuses.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// MissingDataType names the entity that was absent from state.
type MissingDataType string

const (
	MissingPaymentMethod  MissingDataType = "missing_payment_method"
	MissingPaymentToken   MissingDataType = "missing_payment_token"
	MissingCheckout       MissingDataType = "missing_checkout"
	MissingOrder          MissingDataType = "missing_order"
	MissingBillingAddress MissingDataType = "missing_billing_address"
)

// ErrMissingData matches every MissingDataError via errors.Is.
var ErrMissingData = errors.New("missing data")

// MissingDataError reports that a required entity is not present in state.
type MissingDataError struct {
	Type MissingDataType
}

// NewMissingDataError creates a MissingDataError for t.
func NewMissingDataError(t MissingDataType) *MissingDataError {
	return &MissingDataError{Type: t}
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("unable to proceed because the required data is unavailable: %s", e.Type)
}

func (e *MissingDataError) Is(target error) bool {
	return target == ErrMissingData
}

// IsMissing reports whether err is a MissingDataError of type t.
func IsMissing(err error, t MissingDataType) bool {
	var md *MissingDataError
	return errors.As(err, &md) && md.Type == t
}

var (
	// ErrOrderFinalizationNotRequired is an expected outcome of finalize when
	// no previously used payment method can be found.
	ErrOrderFinalizationNotRequired = errors.New("order finalization not required")

	// ErrStrategyNotFound matches every NotFoundError via errors.Is.
	ErrStrategyNotFound = errors.New("payment strategy not found")

	// ErrSpamProtectionFailed is returned when checkout verification is rejected.
	ErrSpamProtectionFailed = errors.New("spam protection verification failed")

	// ErrInvalidRequest marks a payload rejected by contract validation.
	ErrInvalidRequest = errors.New("invalid request")
)

// NotFoundError is returned by a strategy registry lookup that matched nothing.
type NotFoundError struct {
	Registry string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s registry: no strategy registered for %q", e.Registry, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrStrategyNotFound
}

// IsBenign reports whether err is informational rather than a real failure.
func IsBenign(err error) bool {
	return errors.Is(err, ErrOrderFinalizationNotRequired)
}

func Kind(err error) string {
	var md *MissingDataError

	switch {
	case err == nil:
		return ""

	case errors.As(err, &md):
		return string(md.Type)

	case errors.Is(err, ErrOrderFinalizationNotRequired):
		return "finalization_not_required"

	case errors.Is(err, ErrStrategyNotFound):
		return "strategy_not_found"

	case errors.Is(err, ErrSpamProtectionFailed):
		return "spam_protection_failed"

	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"

	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"

	case errors.Is(err, context.Canceled):
		return "canceled"

	default:
		return "strategy_failure"
	}
}

func HTTPStatus(err error) int {
	switch {
	case err == nil, errors.Is(err, ErrOrderFinalizationNotRequired):
		return http.StatusOK

	case errors.Is(err, ErrMissingData):
		return http.StatusUnprocessableEntity

	case errors.Is(err, ErrStrategyNotFound):
		return http.StatusNotFound

	case errors.Is(err, ErrSpamProtectionFailed):
		return http.StatusForbidden

	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	case errors.Is(err, context.Canceled):
		return http.StatusBadRequest

	default:
		return http.StatusBadGateway
	}
}
