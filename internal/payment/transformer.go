// Package payment maps checkout state and user-entered payment data into the
// body submitted to the payments API, and sends it.
package payment

import (
	"regexp"
	"strings"

	"github.com/yourorg/checkout-orchestrator/internal/apperr"
	"github.com/yourorg/checkout-orchestrator/internal/checkout"
)

// DefaultSource identifies this client in submissions.
const DefaultSource = "checkout-orchestrator"

// MultiOptionMethod marks methods that expose several payment options routed
// through one gateway.
const MultiOptionMethod = "multi-option"

// HostedFieldType names a hosted card input.
type HostedFieldType string

const (
	CardCode               HostedFieldType = "cardCode"
	CardCodeVerification   HostedFieldType = "cardCodeVerification"
	CardExpiryField        HostedFieldType = "cardExpiry"
	CardName               HostedFieldType = "cardName"
	CardNumber             HostedFieldType = "cardNumber"
	CardNumberVerification HostedFieldType = "cardNumberVerification"
)

// HostedFormOrderData is the checkout data handed to a hosted form so it can
// build a submission without access to the store.
type HostedFormOrderData struct {
	AdditionalAction  *AdditionalAction            `json:"additionalAction,omitempty"`
	AuthToken         string                       `json:"authToken"`
	Checkout          *checkout.Checkout           `json:"checkout,omitempty"`
	BillingAddress    *checkout.Address            `json:"billingAddress,omitempty"`
	Customer          *checkout.Customer           `json:"customer,omitempty"`
	Config            *checkout.Config             `json:"config,omitempty"`
	Order             *checkout.Order              `json:"order,omitempty"`
	OrderMeta         *checkout.OrderMeta          `json:"orderMeta,omitempty"`
	Payment           *Data                        `json:"payment,omitempty"`
	PaymentMethod     *checkout.PaymentMethod      `json:"paymentMethod,omitempty"`
	PaymentMethodMeta *checkout.PaymentMethodsMeta `json:"paymentMethodMeta,omitempty"`
}

// Transformer builds payment submission bodies. The zero value is usable.
type Transformer struct {
	Source string
}

// NewTransformer creates a Transformer tagging submissions with DefaultSource.
func NewTransformer() *Transformer {
	return &Transformer{Source: DefaultSource}
}

// Transform builds a submission body for p from the state snapshot. It fails
// with a MissingPaymentToken error before building anything when the state
// holds no payment token.
func (t *Transformer) Transform(p Payment, state checkout.State) (RequestBody, error) {
	token, ok := state.GetPaymentToken()
	if !ok {
		return RequestBody{}, apperr.NewMissingDataError(apperr.MissingPaymentToken)
	}

	instrumentsMeta := state.GetInstrumentsMeta()
	if instrumentsMeta != nil && p.PaymentData.IsVaultedInstrument() {
		token = token + ", " + instrumentsMeta.VaultAccessToken
	}

	var method *checkout.PaymentMethod
	if m, ok := state.GetPaymentMethod(p.MethodID, p.GatewayID); ok {
		method = &m
	}

	var payment *Data
	if p.PaymentData != nil {
		copied := *p.PaymentData
		payment = &copied
	}

	return t.assemble(bodyInput{
		additionalAction: p.AdditionalAction,
		authToken:        token,
		checkout:         state.GetCheckout(),
		billingAddress:   state.GetBillingAddress(),
		customer:         state.GetCustomer(),
		order:            state.GetOrder(),
		orderMeta:        state.GetOrderMeta(),
		payment:          payment,
		method:           method,
		methodsMeta:      state.GetPaymentMethodsMeta(),
		storeConfig:      state.GetStoreConfig(),
		contextConfig:    state.GetContextConfig(),
	}), nil
}

// TransformWithHostedFormData builds a submission body from tokenized hosted
// field values and a one-time nonce. additional, when set, takes precedence
// over the additional action already present on the order data.
func (t *Transformer) TransformWithHostedFormData(
	values map[HostedFieldType]string,
	data HostedFormOrderData,
	nonce string,
	additional *AdditionalAction,
) RequestBody {
	payment := Data{}
	if data.Payment != nil {
		payment = *data.Payment
	}
	payment.HostedFormNonce = nonce

	if payment.InstrumentID != "" {
		payment.CCNumber = stripWhitespace(values[CardNumberVerification])
		payment.CCCvv = values[CardCodeVerification]
	} else {
		payment.CCNumber = stripWhitespace(values[CardNumber])
		payment.CCCvv = values[CardCode]
		payment.CCName = values[CardName]
		payment.CCExpiry = ParseExpiry(values[CardExpiryField])
	}

	action := data.AdditionalAction
	if additional != nil {
		action = additional
	}

	var storeConfig *checkout.StoreConfig
	var contextConfig *checkout.ContextConfig
	if data.Config != nil {
		storeConfig = &data.Config.StoreConfig
		contextConfig = &data.Config.ContextConfig
	}

	return t.assemble(bodyInput{
		additionalAction: action,
		authToken:        data.AuthToken,
		checkout:         data.Checkout,
		billingAddress:   data.BillingAddress,
		customer:         data.Customer,
		order:            data.Order,
		orderMeta:        data.OrderMeta,
		payment:          &payment,
		method:           data.PaymentMethod,
		methodsMeta:      data.PaymentMethodMeta,
		storeConfig:      storeConfig,
		contextConfig:    contextConfig,
	})
}

type bodyInput struct {
	additionalAction *AdditionalAction
	authToken        string
	checkout         *checkout.Checkout
	billingAddress   *checkout.Address
	customer         *checkout.Customer
	order            *checkout.Order
	orderMeta        *checkout.OrderMeta
	payment          *Data
	method           *checkout.PaymentMethod
	methodsMeta      *checkout.PaymentMethodsMeta
	storeConfig      *checkout.StoreConfig
	contextConfig    *checkout.ContextConfig
}

func (t *Transformer) assemble(in bodyInput) RequestBody {
	source := t.Source
	if source == "" {
		source = DefaultSource
	}

	body := RequestBody{
		AdditionalAction: in.additionalAction,
		AuthToken:        in.authToken,
		BillingAddress:   mapAddress(in.billingAddress, ""),
		Customer:         mapCustomer(in.customer, in.billingAddress),
		Order:            mapOrder(in.order, in.orderMeta),
		OrderMeta:        in.orderMeta,
		Payment:          in.payment,
		PaymentMethod:    ShapePaymentMethod(in.method),
		Source:           source,
	}

	if in.checkout != nil {
		body.Cart = mapCart(in.checkout)

		if len(in.checkout.Consignments) > 0 {
			first := in.checkout.Consignments[0]
			if !first.IsPickup() {
				body.ShippingAddress = mapAddress(first.ShippingAddress, first.ID)
			}
			if opt := first.SelectedShippingOption; opt != nil {
				body.ShippingOption = &InternalShippingOption{
					ID:          opt.ID,
					Description: opt.Description,
					Price:       opt.Cost,
					Selected:    true,
				}
			}
		}
	}

	if in.methodsMeta != nil {
		body.QuoteMeta.Request.DeviceSessionID = in.methodsMeta.DeviceSessionID
		body.QuoteMeta.Request.SessionHash = in.methodsMeta.SessionHash
	}
	if in.contextConfig != nil {
		body.QuoteMeta.Request.GeoCountryCode = in.contextConfig.GeoIPCountryCode
	}
	if in.storeConfig != nil {
		profile := in.storeConfig.StoreProfile
		body.Store = &profile
	}

	return body
}

// ShapePaymentMethod returns the method as it must be submitted. Multi-option
// methods without a gateway use their own id as gateway and are otherwise left
// alone. Any other method declaring initializationData.gateway is submitted
// under that id.
func ShapePaymentMethod(m *checkout.PaymentMethod) *checkout.PaymentMethod {
	if m == nil {
		return nil
	}
	shaped := *m
	if m.Method == MultiOptionMethod && m.Gateway == "" {
		shaped.Gateway = m.ID
		return &shaped
	}
	if gateway := m.InitializationData.String("gateway"); gateway != "" {
		shaped.ID = gateway
	}
	return &shaped
}

var expiryPattern = regexp.MustCompile(`^\s*(\d{1,2})\s*/\s*(\d{2}|\d{4})\s*$`)

// ParseExpiry parses "MM/YY", "MM / YY" or "MM/YYYY". It returns nil for
// anything else.
func ParseExpiry(s string) *CardExpiry {
	m := expiryPattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	month, year := m[1], m[2]
	if len(month) == 1 {
		month = "0" + month
	}
	if len(year) == 2 {
		year = "20" + year
	}
	return &CardExpiry{Month: month, Year: year}
}

func stripWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func mapAddress(a *checkout.Address, id string) *InternalAddress {
	if a == nil {
		return nil
	}
	if id == "" {
		id = a.ID
	}
	return &InternalAddress{
		ID:           id,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Company:      a.Company,
		AddressLine1: a.Address1,
		AddressLine2: a.Address2,
		City:         a.City,
		Province:     a.StateOrProvince,
		ProvinceCode: a.StateOrProvinceCode,
		Country:      a.Country,
		CountryCode:  a.CountryCode,
		PostCode:     a.PostalCode,
		Phone:        a.Phone,
		Email:        a.Email,
	}
}

func mapCustomer(c *checkout.Customer, billing *checkout.Address) *InternalCustomer {
	if c == nil {
		return nil
	}
	out := &InternalCustomer{
		CustomerID:  c.ID,
		Email:       c.Email,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		IsGuest:     c.IsGuest,
		StoreCredit: c.StoreCredit,
	}
	// guests only have the email they typed into the billing step
	if out.Email == "" && billing != nil {
		out.Email = billing.Email
	}
	return out
}

func mapCart(c *checkout.Checkout) *InternalCart {
	count := 0
	for _, item := range c.Cart.LineItems {
		count += item.Quantity
	}
	return &InternalCart{
		ID:           c.Cart.ID,
		CurrencyCode: c.Cart.CurrencyCode,
		SubTotal:     c.Cart.BaseAmount,
		GrandTotal:   c.GrandTotal,
		ItemCount:    count,
	}
}

func mapOrder(o *checkout.Order, meta *checkout.OrderMeta) *InternalOrder {
	if o == nil {
		return nil
	}
	out := &InternalOrder{
		OrderID:      o.OrderID,
		CurrencyCode: o.CurrencyCode,
		GrandTotal:   o.OrderAmount,
		IsComplete:   o.IsComplete,
	}
	if meta != nil {
		out.DeviceFingerprint = meta.DeviceFingerprint
	}
	return out
}

// HostedFormOrderDataFromState collects what a hosted form needs to submit a
// payment for methodID without access to the store.
func HostedFormOrderDataFromState(state checkout.State, methodID, gatewayID string, data *Data) (HostedFormOrderData, error) {
	token, ok := state.GetPaymentToken()
	if !ok {
		return HostedFormOrderData{}, apperr.NewMissingDataError(apperr.MissingPaymentToken)
	}
	method, ok := state.GetPaymentMethod(methodID, gatewayID)
	if !ok {
		return HostedFormOrderData{}, apperr.NewMissingDataError(apperr.MissingPaymentMethod)
	}

	return HostedFormOrderData{
		AuthToken:         token,
		Checkout:          state.GetCheckout(),
		BillingAddress:    state.GetBillingAddress(),
		Customer:          state.GetCustomer(),
		Config:            state.Config,
		Order:             state.GetOrder(),
		OrderMeta:         state.GetOrderMeta(),
		Payment:           data,
		PaymentMethod:     &method,
		PaymentMethodMeta: state.GetPaymentMethodsMeta(),
	}, nil
}
