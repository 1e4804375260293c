package payment

import "time"

// RequestOptions are passed to every strategy lifecycle call.
type RequestOptions struct {
	MethodID  string            `json:"methodId"`
	GatewayID string            `json:"gatewayId,omitempty"`
	Timeout   time.Duration     `json:"-"`
	Params    map[string]string `json:"params,omitempty"`
}

// InitializeOptions are passed to Initialize. Settings carries
// provider-specific widget configuration.
type InitializeOptions struct {
	RequestOptions
	Settings map[string]any `json:"settings,omitempty"`
}
