package checkout

// Address is a billing or shipping address.
type Address struct {
	ID                  string `json:"id,omitempty" yaml:"id"`
	FirstName           string `json:"firstName" yaml:"firstName"`
	LastName            string `json:"lastName" yaml:"lastName"`
	Email               string `json:"email,omitempty" yaml:"email"`
	Company             string `json:"company,omitempty" yaml:"company"`
	Address1            string `json:"address1" yaml:"address1"`
	Address2            string `json:"address2,omitempty" yaml:"address2"`
	City                string `json:"city" yaml:"city"`
	StateOrProvince     string `json:"stateOrProvince,omitempty" yaml:"stateOrProvince"`
	StateOrProvinceCode string `json:"stateOrProvinceCode,omitempty" yaml:"stateOrProvinceCode"`
	Country             string `json:"country,omitempty" yaml:"country"`
	CountryCode         string `json:"countryCode" yaml:"countryCode"`
	PostalCode          string `json:"postalCode" yaml:"postalCode"`
	Phone               string `json:"phone,omitempty" yaml:"phone"`
}

// Customer is the shopper attached to the checkout.
type Customer struct {
	ID          int64   `json:"id" yaml:"id"`
	Email       string  `json:"email" yaml:"email"`
	FirstName   string  `json:"firstName" yaml:"firstName"`
	LastName    string  `json:"lastName" yaml:"lastName"`
	IsGuest     bool    `json:"isGuest" yaml:"isGuest"`
	StoreCredit float64 `json:"storeCredit" yaml:"storeCredit"`
}

// LineItem is a single cart entry.
type LineItem struct {
	ID        string  `json:"id" yaml:"id"`
	ProductID int64   `json:"productId" yaml:"productId"`
	Name      string  `json:"name" yaml:"name"`
	Quantity  int     `json:"quantity" yaml:"quantity"`
	SalePrice float64 `json:"salePrice" yaml:"salePrice"`
}

// Cart is the cart embedded in a checkout.
type Cart struct {
	ID           string     `json:"id" yaml:"id"`
	CurrencyCode string     `json:"currencyCode" yaml:"currencyCode"`
	BaseAmount   float64    `json:"baseAmount" yaml:"baseAmount"`
	CartAmount   float64    `json:"cartAmount" yaml:"cartAmount"`
	LineItems    []LineItem `json:"lineItems,omitempty" yaml:"lineItems"`
}

// ShippingOption is a shipping quote selected for a consignment.
type ShippingOption struct {
	ID            string  `json:"id" yaml:"id"`
	Type          string  `json:"type" yaml:"type"`
	Description   string  `json:"description" yaml:"description"`
	Cost          float64 `json:"cost" yaml:"cost"`
	TransitTime   string  `json:"transitTime,omitempty" yaml:"transitTime"`
	IsRecommended bool    `json:"isRecommended" yaml:"isRecommended"`
}

// PickupOption marks a consignment collected in store.
type PickupOption struct {
	PickupMethodID int64 `json:"pickupMethodId" yaml:"pickupMethodId"`
}

// Consignment groups line items shipped to (or picked up from) one place.
type Consignment struct {
	ID                     string          `json:"id" yaml:"id"`
	ShippingAddress        *Address        `json:"shippingAddress,omitempty" yaml:"shippingAddress"`
	SelectedShippingOption *ShippingOption `json:"selectedShippingOption,omitempty" yaml:"selectedShippingOption"`
	SelectedPickupOption   *PickupOption   `json:"selectedPickupOption,omitempty" yaml:"selectedPickupOption"`
	LineItemIDs            []string        `json:"lineItemIds,omitempty" yaml:"lineItemIds"`
}

// IsPickup reports whether the consignment is collected in store and carries
// no shipping quote.
func (c Consignment) IsPickup() bool {
	return c.SelectedPickupOption != nil && c.SelectedShippingOption == nil
}

// Checkout is the checkout aggregate.
type Checkout struct {
	ID                     string        `json:"id" yaml:"id"`
	Cart                   Cart          `json:"cart" yaml:"cart"`
	OrderID                int64         `json:"orderId,omitempty" yaml:"orderId"`
	GrandTotal             float64       `json:"grandTotal" yaml:"grandTotal"`
	OutstandingBalance     float64       `json:"outstandingBalance" yaml:"outstandingBalance"`
	IsStoreCreditApplied   bool          `json:"isStoreCreditApplied" yaml:"isStoreCreditApplied"`
	ShouldExecuteSpamCheck bool          `json:"shouldExecuteSpamCheck" yaml:"shouldExecuteSpamCheck"`
	CustomerMessage        string        `json:"customerMessage,omitempty" yaml:"customerMessage"`
	Consignments           []Consignment `json:"consignments,omitempty" yaml:"consignments"`
}

// OrderPayment is a payment recorded against a placed order.
type OrderPayment struct {
	ProviderID string  `json:"providerId" yaml:"providerId"`
	GatewayID  string  `json:"gatewayId,omitempty" yaml:"gatewayId"`
	MethodID   string  `json:"methodId,omitempty" yaml:"methodId"`
	Amount     float64 `json:"amount" yaml:"amount"`
	Status     string  `json:"paymentStatus,omitempty" yaml:"paymentStatus"`
}

// Order is an order placed from the checkout.
type Order struct {
	OrderID      int64          `json:"orderId" yaml:"orderId"`
	CartID       string         `json:"cartId" yaml:"cartId"`
	CurrencyCode string         `json:"currencyCode" yaml:"currencyCode"`
	OrderAmount  float64        `json:"orderAmount" yaml:"orderAmount"`
	IsComplete   bool           `json:"isComplete" yaml:"isComplete"`
	Status       string         `json:"status" yaml:"status"`
	Payments     []OrderPayment `json:"payments,omitempty" yaml:"payments"`
}

// OrderMeta carries fraud-screening metadata for an order.
type OrderMeta struct {
	DeviceFingerprint string `json:"deviceFingerprint,omitempty" yaml:"deviceFingerprint"`
}

// Payment method types.
const (
	MethodTypeAPI     = "PAYMENT_TYPE_API"
	MethodTypeHosted  = "PAYMENT_TYPE_HOSTED"
	MethodTypeOffline = "PAYMENT_TYPE_OFFLINE"
)

// PaymentMethodConfig is display and capability configuration of a method.
type PaymentMethodConfig struct {
	DisplayName         string `json:"displayName,omitempty" yaml:"displayName"`
	TestMode            bool   `json:"testMode" yaml:"testMode"`
	IsVaultingEnabled   bool   `json:"isVaultingEnabled" yaml:"isVaultingEnabled"`
	RequireCustomerCode bool   `json:"requireCustomerCode" yaml:"requireCustomerCode"`
}

// PaymentMethod is an available payment method. Snapshots are replaced
// wholesale on reload and never mutated in place.
type PaymentMethod struct {
	ID                 string              `json:"id" yaml:"id"`
	Gateway            string              `json:"gateway,omitempty" yaml:"gateway"`
	Type               string              `json:"type" yaml:"type"`
	Method             string              `json:"method" yaml:"method"`
	SupportedCards     []string            `json:"supportedCards,omitempty" yaml:"supportedCards"`
	Config             PaymentMethodConfig `json:"config" yaml:"config"`
	InitializationData InitializationData  `json:"initializationData" yaml:"initializationData"`
	ClientToken        string              `json:"clientToken,omitempty" yaml:"clientToken"`
}

// PaymentMethodsMeta is session metadata returned with the method list.
type PaymentMethodsMeta struct {
	DeviceSessionID string `json:"deviceSessionId,omitempty" yaml:"deviceSessionId"`
	SessionHash     string `json:"sessionHash,omitempty" yaml:"sessionHash"`
}

// PaymentMethodsLoaded is the payload of a LoadPaymentMethodsSucceeded action.
type PaymentMethodsLoaded struct {
	Methods []PaymentMethod     `json:"methods"`
	Meta    *PaymentMethodsMeta `json:"meta,omitempty"`
}

// InstrumentsMeta holds the vault access token for stored instruments.
type InstrumentsMeta struct {
	VaultAccessToken  string `json:"vaultAccessToken" yaml:"vaultAccessToken"`
	VaultAccessExpiry int64  `json:"vaultAccessExpiry" yaml:"vaultAccessExpiry"`
}

// StoreProfile identifies the storefront.
type StoreProfile struct {
	StoreID       string `json:"storeId" yaml:"storeId"`
	StoreHash     string `json:"storeHash" yaml:"storeHash"`
	StoreName     string `json:"storeName" yaml:"storeName"`
	StoreLanguage string `json:"storeLanguage" yaml:"storeLanguage"`
	ShopPath      string `json:"shopPath" yaml:"shopPath"`
}

// StoreCurrency is the storefront currency.
type StoreCurrency struct {
	Code          string `json:"code" yaml:"code"`
	DecimalPlaces int    `json:"decimalPlaces" yaml:"decimalPlaces"`
}

// StoreConfig is storefront configuration.
type StoreConfig struct {
	StoreProfile StoreProfile  `json:"storeProfile" yaml:"storeProfile"`
	Currency     StoreCurrency `json:"currency" yaml:"currency"`
}

// ContextConfig is request-scoped storefront context.
type ContextConfig struct {
	CheckoutID       string `json:"checkoutId,omitempty" yaml:"checkoutId"`
	GeoIPCountryCode string `json:"geoipCountryCode,omitempty" yaml:"geoipCountryCode"`
}

// Config groups store and context configuration.
type Config struct {
	StoreConfig   StoreConfig   `json:"storeConfig" yaml:"storeConfig"`
	ContextConfig ContextConfig `json:"context" yaml:"context"`
}

// Payment statuses reported by the payments API.
const (
	PaymentStatusAcknowledge = "ACKNOWLEDGE"
	PaymentStatusFinalize    = "FINALIZE"
	PaymentStatusInitialize  = "INITIALIZE"
)

// PaymentID identifies the provider and gateway used for a previous payment.
type PaymentID struct {
	ProviderID string `json:"providerId" yaml:"providerId"`
	GatewayID  string `json:"gatewayId,omitempty" yaml:"gatewayId"`
}

// PaymentState holds the payment session token and last payment id.
type PaymentState struct {
	Token  string     `json:"token,omitempty" yaml:"token"`
	ID     *PaymentID `json:"id,omitempty" yaml:"id"`
	Status string     `json:"status,omitempty" yaml:"status"`
}

// PaymentSubmitted is the payload of a SubmitPaymentSucceeded action.
type PaymentSubmitted struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status"`
}

// OrderSubmitted is the payload of a SubmitOrderSucceeded action.
type OrderSubmitted struct {
	Order        *Order `json:"order"`
	PaymentToken string `json:"paymentToken,omitempty"`
}
