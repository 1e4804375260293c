package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/checkout-orchestrator/internal/apperr"
	"github.com/yourorg/checkout-orchestrator/internal/checkout"
)

func loadState(t *testing.T) checkout.State {
	t.Helper()
	s, err := checkout.LoadFixture("../checkout/testdata/checkout.yaml")
	require.NoError(t, err)
	return s
}

func TestTransform_BuildsBody(t *testing.T) {
	state := loadState(t)

	body, err := NewTransformer().Transform(Payment{
		MethodID:    "authorizenet",
		PaymentData: &Data{CCNumber: "4111111111111111", CCCvv: "123"},
	}, state)
	require.NoError(t, err)

	assert.Equal(t, "JWT_TOKEN", body.AuthToken)
	assert.Equal(t, DefaultSource, body.Source)
	require.NotNil(t, body.PaymentMethod)
	assert.Equal(t, "authorizenet", body.PaymentMethod.ID)
	require.NotNil(t, body.Payment)
	assert.Equal(t, "4111111111111111", body.Payment.CCNumber)

	require.NotNil(t, body.BillingAddress)
	assert.Equal(t, "12345 Testing Way", body.BillingAddress.AddressLine1)
	require.NotNil(t, body.ShippingAddress)
	assert.Equal(t, "55c96cda6f04c", body.ShippingAddress.ID)
	require.NotNil(t, body.ShippingOption)
	assert.Equal(t, "Flat Rate", body.ShippingOption.Description)

	require.NotNil(t, body.Cart)
	assert.Equal(t, "USD", body.Cart.CurrencyCode)
	assert.Equal(t, float64(190), body.Cart.GrandTotal)
	require.NotNil(t, body.Customer)
	assert.Equal(t, int64(4), body.Customer.CustomerID)
	require.NotNil(t, body.Store)
	assert.Equal(t, "k1drp8k8", body.Store.StoreHash)
	assert.Equal(t, "AU", body.QuoteMeta.Request.GeoCountryCode)
}

func TestTransform_MissingTokenFailsFirst(t *testing.T) {
	state := loadState(t)
	state.Payment.Token = ""

	_, err := NewTransformer().Transform(Payment{MethodID: "authorizenet"}, state)
	require.Error(t, err)
	assert.True(t, apperr.IsMissing(err, apperr.MissingPaymentToken))
}

func TestTransform_VaultedInstrumentAppendsVaultToken(t *testing.T) {
	state := loadState(t)
	state.InstrumentsMeta = &checkout.InstrumentsMeta{VaultAccessToken: "VAULT_TOKEN"}

	body, err := NewTransformer().Transform(Payment{
		MethodID:    "authorizenet",
		PaymentData: &Data{InstrumentID: "123"},
	}, state)
	require.NoError(t, err)
	assert.Equal(t, "JWT_TOKEN, VAULT_TOKEN", body.AuthToken)

	body, err = NewTransformer().Transform(Payment{
		MethodID:    "authorizenet",
		PaymentData: &Data{CCNumber: "4111111111111111"},
	}, state)
	require.NoError(t, err)
	assert.Equal(t, "JWT_TOKEN", body.AuthToken)
}

func TestTransform_MultiOptionUsesIDAsGateway(t *testing.T) {
	state := loadState(t)
	state.PaymentMethods = append(state.PaymentMethods, checkout.PaymentMethod{
		ID:     "klarna",
		Method: MultiOptionMethod,
	})

	body, err := NewTransformer().Transform(Payment{MethodID: "klarna"}, state)
	require.NoError(t, err)
	require.NotNil(t, body.PaymentMethod)
	assert.Equal(t, "klarna", body.PaymentMethod.ID)
	assert.Equal(t, "klarna", body.PaymentMethod.Gateway)
}

func TestTransform_InitializationDataGatewayOverridesID(t *testing.T) {
	state := loadState(t)
	state.PaymentMethods = append(state.PaymentMethods, checkout.PaymentMethod{
		ID:                 "visacheckout",
		Method:             "credit-card",
		InitializationData: checkout.MustInitializationData(map[string]any{"gateway": "authorizenet"}),
	})

	body, err := NewTransformer().Transform(Payment{MethodID: "visacheckout"}, state)
	require.NoError(t, err)
	require.NotNil(t, body.PaymentMethod)
	assert.Equal(t, "authorizenet", body.PaymentMethod.ID)
	assert.Empty(t, body.PaymentMethod.Gateway)
}

func TestShapePaymentMethod_MultiOptionTakesPrecedence(t *testing.T) {
	shaped := ShapePaymentMethod(&checkout.PaymentMethod{
		ID:                 "adyenv2",
		Method:             MultiOptionMethod,
		InitializationData: checkout.MustInitializationData(map[string]any{"gateway": "authorizenet"}),
	})

	require.NotNil(t, shaped)
	assert.Equal(t, "adyenv2", shaped.ID)
	assert.Equal(t, "adyenv2", shaped.Gateway)
}

func TestShapePaymentMethod_MultiOptionWithGatewayUsesInitializationData(t *testing.T) {
	shaped := ShapePaymentMethod(&checkout.PaymentMethod{
		ID:                 "scheme",
		Gateway:            "adyenv2",
		Method:             MultiOptionMethod,
		InitializationData: checkout.MustInitializationData(map[string]any{"gateway": "adyen"}),
	})

	require.NotNil(t, shaped)
	assert.Equal(t, "adyen", shaped.ID)
	assert.Equal(t, "adyenv2", shaped.Gateway)
}

func TestTransform_PickupOmitsShippingAddress(t *testing.T) {
	state := loadState(t)
	c := *state.Checkout
	consignment := c.Consignments[0]
	consignment.SelectedShippingOption = nil
	consignment.SelectedPickupOption = &checkout.PickupOption{PickupMethodID: 1}
	c.Consignments = []checkout.Consignment{consignment}
	state.Checkout = &c

	body, err := NewTransformer().Transform(Payment{MethodID: "authorizenet"}, state)
	require.NoError(t, err)
	assert.Nil(t, body.ShippingAddress)
	assert.Nil(t, body.ShippingOption)
	assert.NotNil(t, body.BillingAddress)
}

func TestTransform_DoesNotAliasPaymentData(t *testing.T) {
	data := &Data{CCNumber: "4111111111111111"}
	body, err := NewTransformer().Transform(Payment{MethodID: "authorizenet", PaymentData: data}, loadState(t))
	require.NoError(t, err)

	body.Payment.CCNumber = "changed"
	assert.Equal(t, "4111111111111111", data.CCNumber)
}

func hostedOrderData(t *testing.T) HostedFormOrderData {
	state := loadState(t)
	method, ok := state.GetPaymentMethod("authorizenet", "")
	require.True(t, ok)
	return HostedFormOrderData{
		AuthToken:      "JWT_TOKEN",
		Checkout:       state.GetCheckout(),
		BillingAddress: state.GetBillingAddress(),
		Customer:       state.GetCustomer(),
		Config:         state.Config,
		Payment:        &Data{MethodID: "authorizenet"},
		PaymentMethod:  &method,
	}
}

func TestTransformWithHostedFormData_NewCard(t *testing.T) {
	values := map[HostedFieldType]string{
		CardNumber:      "4111 1111 1111 1111",
		CardCode:        "123",
		CardName:        "BigCommerce",
		CardExpiryField: "10 / 20",
	}

	body := NewTransformer().TransformWithHostedFormData(values, hostedOrderData(t), "nonce", nil)

	require.NotNil(t, body.Payment)
	assert.Equal(t, "4111111111111111", body.Payment.CCNumber)
	assert.Equal(t, "123", body.Payment.CCCvv)
	assert.Equal(t, "BigCommerce", body.Payment.CCName)
	assert.Equal(t, &CardExpiry{Month: "10", Year: "2020"}, body.Payment.CCExpiry)
	assert.Equal(t, "nonce", body.Payment.HostedFormNonce)
	assert.Equal(t, "authorizenet", body.Payment.MethodID)
	assert.Equal(t, "JWT_TOKEN", body.AuthToken)
	assert.Equal(t, "AU", body.QuoteMeta.Request.GeoCountryCode)
	assert.Empty(t, body.Payment.InstrumentID)
}

func TestTransformWithHostedFormData_StoredCard(t *testing.T) {
	data := hostedOrderData(t)
	data.Payment = &Data{MethodID: "authorizenet", InstrumentID: "123"}
	values := map[HostedFieldType]string{
		CardNumberVerification: "4111 1111 1111 1111",
		CardCodeVerification:   "123",
	}

	body := NewTransformer().TransformWithHostedFormData(values, data, "nonce", nil)

	require.NotNil(t, body.Payment)
	assert.Equal(t, "123", body.Payment.InstrumentID)
	assert.Equal(t, "4111111111111111", body.Payment.CCNumber)
	assert.Equal(t, "123", body.Payment.CCCvv)
	assert.Equal(t, "nonce", body.Payment.HostedFormNonce)
	assert.Empty(t, body.Payment.CCName)
	assert.Nil(t, body.Payment.CCExpiry)
}

func TestTransformWithHostedFormData_AdditionalAction(t *testing.T) {
	data := hostedOrderData(t)
	data.AdditionalAction = &AdditionalAction{Type: "recaptcha_v2_verification", Data: map[string]string{"token": "from-order"}}

	body := NewTransformer().TransformWithHostedFormData(nil, data, "nonce", nil)
	require.NotNil(t, body.AdditionalAction)
	assert.Equal(t, "from-order", body.AdditionalAction.Data["token"])

	caller := &AdditionalAction{Type: "recaptcha_v2_verification", Data: map[string]string{"token": "from-caller"}}
	body = NewTransformer().TransformWithHostedFormData(nil, data, "nonce", caller)
	require.NotNil(t, body.AdditionalAction)
	assert.Equal(t, "from-caller", body.AdditionalAction.Data["token"])
}

func TestParseExpiry(t *testing.T) {
	tests := []struct {
		in   string
		want *CardExpiry
	}{
		{"10 / 20", &CardExpiry{Month: "10", Year: "2020"}},
		{"10/20", &CardExpiry{Month: "10", Year: "2020"}},
		{"3/2031", &CardExpiry{Month: "03", Year: "2031"}},
		{"", nil},
		{"1020", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseExpiry(tt.in))
		})
	}
}

func TestShapePaymentMethod_Nil(t *testing.T) {
	assert.Nil(t, ShapePaymentMethod(nil))
}

func TestHostedFormOrderDataFromState(t *testing.T) {
	state := loadState(t)

	data, err := HostedFormOrderDataFromState(state, "amex", "adyen", &Data{InstrumentID: "123"})
	require.NoError(t, err)
	assert.Equal(t, "JWT_TOKEN", data.AuthToken)
	require.NotNil(t, data.PaymentMethod)
	assert.Equal(t, "adyen", data.PaymentMethod.Gateway)
	assert.Equal(t, "123", data.Payment.InstrumentID)
	require.NotNil(t, data.Config)
	assert.Equal(t, "AU", data.Config.ContextConfig.GeoIPCountryCode)

	_, err = HostedFormOrderDataFromState(state, "klarna", "", nil)
	assert.True(t, apperr.IsMissing(err, apperr.MissingPaymentMethod))

	state.Payment.Token = ""
	_, err = HostedFormOrderDataFromState(state, "amex", "adyen", nil)
	assert.True(t, apperr.IsMissing(err, apperr.MissingPaymentToken))
}
