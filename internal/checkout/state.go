// Package checkout holds the checkout state snapshot, the selectors that read
// it, the reducer that derives the next snapshot from an action, and the
// store that serializes those transitions.
package checkout

// StrategyError records the last failure of a lifecycle operation.
type StrategyError struct {
	MethodID string `json:"methodId,omitempty"`
	Message  string `json:"message"`
	err      error
}

// Err returns the original error.
func (e StrategyError) Err() error { return e.err }

// StrategyStatus tracks in-flight lifecycle operations by method id.
type StrategyStatus struct {
	InitializingMethodID   string `json:"initializingMethodId,omitempty"`
	ExecutingMethodID      string `json:"executingMethodId,omitempty"`
	FinalizingMethodID     string `json:"finalizingMethodId,omitempty"`
	DeinitializingMethodID string `json:"deinitializingMethodId,omitempty"`
	IsExecuting            bool   `json:"isExecuting"`
	IsFinalizing           bool   `json:"isFinalizing"`
	IsWidgetInteracting    bool   `json:"isWidgetInteracting"`
}

// StrategiesState is the payment strategy slice of the store. Initialized is
// only changed by InitializeSucceeded and DeinitializeSucceeded.
type StrategiesState struct {
	Initialized map[string]bool          `json:"initialized"`
	Status      StrategyStatus           `json:"status"`
	Errors      map[string]StrategyError `json:"errors,omitempty"`
}

// State is an immutable snapshot of the checkout. Selectors never mutate it
// and the reducer always returns a new value.
type State struct {
	Checkout           *Checkout           `json:"checkout,omitempty" yaml:"checkout"`
	BillingAddress     *Address            `json:"billingAddress,omitempty" yaml:"billingAddress"`
	Customer           *Customer           `json:"customer,omitempty" yaml:"customer"`
	Order              *Order              `json:"order,omitempty" yaml:"order"`
	OrderMeta          *OrderMeta          `json:"orderMeta,omitempty" yaml:"orderMeta"`
	PaymentMethods     []PaymentMethod     `json:"paymentMethods,omitempty" yaml:"paymentMethods"`
	PaymentMethodsMeta *PaymentMethodsMeta `json:"paymentMethodsMeta,omitempty" yaml:"paymentMethodsMeta"`
	Payment            PaymentState        `json:"payment" yaml:"payment"`
	InstrumentsMeta    *InstrumentsMeta    `json:"instrumentsMeta,omitempty" yaml:"instrumentsMeta"`
	Config             *Config             `json:"config,omitempty" yaml:"config"`
	Strategies         StrategiesState     `json:"paymentStrategies" yaml:"-"`
}

// payment providers that never identify the primary payment of an order
var nonPrimaryProviders = map[string]bool{
	"giftcertificate": true,
	"storecredit":     true,
}

// GetPaymentMethod looks a method up by id, and by gateway when one is given.
func (s State) GetPaymentMethod(methodID, gatewayID string) (PaymentMethod, bool) {
	for _, m := range s.PaymentMethods {
		if m.ID != methodID {
			continue
		}
		if gatewayID != "" && m.Gateway != gatewayID {
			continue
		}
		return m, true
	}
	return PaymentMethod{}, false
}

// GetCheckout returns the checkout, or nil.
func (s State) GetCheckout() *Checkout { return s.Checkout }

// GetCheckoutByID returns the checkout when its id matches.
func (s State) GetCheckoutByID(id string) (*Checkout, bool) {
	if s.Checkout == nil || s.Checkout.ID != id {
		return nil, false
	}
	return s.Checkout, true
}

// GetOrder returns the placed order, or nil.
func (s State) GetOrder() *Order { return s.Order }

// GetOrderByID returns the order when its id matches.
func (s State) GetOrderByID(id int64) (*Order, bool) {
	if s.Order == nil || s.Order.OrderID != id {
		return nil, false
	}
	return s.Order, true
}

// GetOrderMeta returns the order metadata, or nil.
func (s State) GetOrderMeta() *OrderMeta { return s.OrderMeta }

// GetPaymentToken returns the payment session token.
func (s State) GetPaymentToken() (string, bool) {
	return s.Payment.Token, s.Payment.Token != ""
}

// GetPaymentStatus returns the last known payment status.
func (s State) GetPaymentStatus() string { return s.Payment.Status }

// GetPaymentID returns the provider and gateway of the previous payment,
// preferring an explicitly stored id over the order's payment records.
func (s State) GetPaymentID() (PaymentID, bool) {
	if s.Payment.ID != nil {
		return *s.Payment.ID, true
	}
	if s.Order == nil {
		return PaymentID{}, false
	}
	for _, p := range s.Order.Payments {
		if nonPrimaryProviders[p.ProviderID] {
			continue
		}
		return PaymentID{ProviderID: p.ProviderID, GatewayID: p.GatewayID}, true
	}
	return PaymentID{}, false
}

// GetConsignments returns the checkout consignments.
func (s State) GetConsignments() []Consignment {
	if s.Checkout == nil {
		return nil
	}
	return s.Checkout.Consignments
}

// GetShippingOption returns the shipping option selected on the first consignment.
func (s State) GetShippingOption() *ShippingOption {
	consignments := s.GetConsignments()
	if len(consignments) == 0 {
		return nil
	}
	return consignments[0].SelectedShippingOption
}

// GetShippingAddress returns the address of the first consignment.
func (s State) GetShippingAddress() *Address {
	consignments := s.GetConsignments()
	if len(consignments) == 0 {
		return nil
	}
	return consignments[0].ShippingAddress
}

// GetBillingAddress returns the billing address, or nil.
func (s State) GetBillingAddress() *Address { return s.BillingAddress }

// GetCustomer returns the customer, or nil.
func (s State) GetCustomer() *Customer { return s.Customer }

// GetStoreConfig returns the store configuration, or nil.
func (s State) GetStoreConfig() *StoreConfig {
	if s.Config == nil {
		return nil
	}
	return &s.Config.StoreConfig
}

// GetContextConfig returns the context configuration, or nil.
func (s State) GetContextConfig() *ContextConfig {
	if s.Config == nil {
		return nil
	}
	return &s.Config.ContextConfig
}

// GetInstrumentsMeta returns the vault metadata, or nil.
func (s State) GetInstrumentsMeta() *InstrumentsMeta { return s.InstrumentsMeta }

// GetPaymentMethodsMeta returns the payment method session metadata, or nil.
func (s State) GetPaymentMethodsMeta() *PaymentMethodsMeta { return s.PaymentMethodsMeta }

// IsInitialized reports whether the strategy for methodID is initialized.
func (s State) IsInitialized(methodID string) bool {
	return s.Strategies.Initialized[methodID]
}

// StrategyError returns the last error recorded for an operation
// ("initialize", "execute", "finalize", "deinitialize", "widget").
func (s State) StrategyError(op string) (StrategyError, bool) {
	e, ok := s.Strategies.Errors[op]
	return e, ok
}
