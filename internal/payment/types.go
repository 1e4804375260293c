package payment

import "github.com/yourorg/checkout-orchestrator/internal/checkout"

// CardExpiry is a card expiry date.
type CardExpiry struct {
	Month string `json:"month"`
	Year  string `json:"year"`
}

// AdditionalAction is a verification payload (for example a captcha token)
// requested by the payments API after a first submission attempt.
type AdditionalAction struct {
	Type string            `json:"type"`
	Data map[string]string `json:"data,omitempty"`
}

// Data is the user-entered payment data, and the payment object of the
// submission body.
type Data struct {
	MethodID        string      `json:"methodId,omitempty"`
	Gateway         string      `json:"gateway,omitempty"`
	CCNumber        string      `json:"ccNumber,omitempty"`
	CCCvv           string      `json:"ccCvv,omitempty"`
	CCName          string      `json:"ccName,omitempty"`
	CCExpiry        *CardExpiry `json:"ccExpiry,omitempty"`
	CCCustomerCode  string      `json:"ccCustomerCode,omitempty"`
	InstrumentID    string      `json:"instrumentId,omitempty"`
	Nonce           string      `json:"nonce,omitempty"`
	HostedFormNonce string      `json:"hostedFormNonce,omitempty"`
	DeviceSessionID string      `json:"deviceSessionId,omitempty"`

	ShouldSaveInstrument         bool `json:"shouldSaveInstrument,omitempty"`
	ShouldSetAsDefaultInstrument bool `json:"shouldSetAsDefaultInstrument,omitempty"`
}

// IsVaultedInstrument reports whether d pays with a stored instrument.
func (d *Data) IsVaultedInstrument() bool {
	return d != nil && d.InstrumentID != ""
}

// Payment is the input to Transform.
type Payment struct {
	MethodID         string            `json:"methodId"`
	GatewayID        string            `json:"gatewayId,omitempty"`
	PaymentData      *Data             `json:"paymentData,omitempty"`
	AdditionalAction *AdditionalAction `json:"additionalAction,omitempty"`
}

// InternalAddress is the address shape expected by the payments API.
type InternalAddress struct {
	ID           string `json:"id,omitempty"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Company      string `json:"company,omitempty"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	Province     string `json:"province,omitempty"`
	ProvinceCode string `json:"provinceCode,omitempty"`
	Country      string `json:"country,omitempty"`
	CountryCode  string `json:"countryCode"`
	PostCode     string `json:"postCode"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
}

// InternalCustomer is the customer shape expected by the payments API.
type InternalCustomer struct {
	CustomerID  int64   `json:"customerId"`
	Email       string  `json:"email"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	IsGuest     bool    `json:"isGuest"`
	StoreCredit float64 `json:"storeCredit"`
}

// InternalCart is the cart shape expected by the payments API.
type InternalCart struct {
	ID           string  `json:"id"`
	CurrencyCode string  `json:"currency"`
	SubTotal     float64 `json:"subtotal"`
	GrandTotal   float64 `json:"grandTotal"`
	ItemCount    int     `json:"itemsCount"`
}

// InternalOrder is the order shape expected by the payments API.
type InternalOrder struct {
	OrderID           int64   `json:"orderId"`
	CurrencyCode      string  `json:"currency"`
	GrandTotal        float64 `json:"grandTotal"`
	IsComplete        bool    `json:"isComplete"`
	DeviceFingerprint string  `json:"deviceFingerprint,omitempty"`
}

// InternalShippingOption is the shipping option shape expected by the payments API.
type InternalShippingOption struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Selected    bool    `json:"selected"`
}

// QuoteMeta carries device and geo data used for fraud screening.
type QuoteMeta struct {
	Request QuoteMetaRequest `json:"request"`
}

// QuoteMetaRequest is the request part of QuoteMeta.
type QuoteMetaRequest struct {
	DeviceSessionID string `json:"deviceSessionId,omitempty"`
	SessionHash     string `json:"sessionHash,omitempty"`
	GeoCountryCode  string `json:"geoCountryCode,omitempty"`
}

// RequestBody is the wire-ready payment submission.
type RequestBody struct {
	AdditionalAction *AdditionalAction       `json:"additionalAction,omitempty"`
	AuthToken        string                  `json:"authToken"`
	BillingAddress   *InternalAddress        `json:"billingAddress,omitempty"`
	Cart             *InternalCart           `json:"cart,omitempty"`
	Customer         *InternalCustomer       `json:"customer,omitempty"`
	Order            *InternalOrder          `json:"order,omitempty"`
	OrderMeta        *checkout.OrderMeta     `json:"orderMeta,omitempty"`
	Payment          *Data                   `json:"payment,omitempty"`
	PaymentMethod    *checkout.PaymentMethod `json:"paymentMethod,omitempty"`
	QuoteMeta        QuoteMeta               `json:"quoteMeta"`
	ShippingAddress  *InternalAddress        `json:"shippingAddress,omitempty"`
	ShippingOption   *InternalShippingOption `json:"shippingOption,omitempty"`
	Source           string                  `json:"source"`
	Store            *checkout.StoreProfile  `json:"store,omitempty"`
}
