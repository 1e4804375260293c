// Package server exposes the payment strategy lifecycle of a single checkout
// store over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yourorg/checkout-orchestrator/internal/action"
	"github.com/yourorg/checkout-orchestrator/internal/apperr"
	"github.com/yourorg/checkout-orchestrator/internal/checkout"
	"github.com/yourorg/checkout-orchestrator/internal/monitor"
	"github.com/yourorg/checkout-orchestrator/internal/order"
	"github.com/yourorg/checkout-orchestrator/internal/payment"
	"github.com/yourorg/checkout-orchestrator/internal/paymentmethod"
	"github.com/yourorg/checkout-orchestrator/internal/paymentstrategy"
	"github.com/yourorg/checkout-orchestrator/internal/reporting"
	"github.com/yourorg/checkout-orchestrator/internal/tracing"
)

// RequestIDHeader carries the correlation id of a request.
const RequestIDHeader = "X-Request-ID"

// Deps are the collaborators a Server dispatches to.
type Deps struct {
	Store          *checkout.Store
	Strategies     *paymentstrategy.ActionCreator
	Payments       *payment.ActionCreator
	PaymentMethods *paymentmethod.ActionCreator
	Reporter       *reporting.RetrospectiveReporter
	// Contracts overrides request contracts by name. Missing ones use the
	// embedded schemas.
	Contracts      map[string]*monitor.ContractMonitor
	Logger         *slog.Logger
	ServiceName    string
	DefaultTimeout time.Duration
}

// Server is the HTTP surface.
type Server struct {
	deps            Deps
	executeContract *monitor.ContractMonitor
	methodContract  *monitor.ContractMonitor
}

// New creates a Server.
func New(deps Deps) *Server {
	if deps.Store == nil || deps.Strategies == nil {
		panic("server: store and strategies are required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Reporter == nil {
		deps.Reporter = reporting.NewRetrospectiveReporter()
	}
	return &Server{
		deps:            deps,
		executeContract: contractOrBuiltin(deps.Contracts, monitor.ExecuteRequest),
		methodContract:  contractOrBuiltin(deps.Contracts, monitor.MethodRequest),
	}
}

func contractOrBuiltin(overrides map[string]*monitor.ContractMonitor, name string) *monitor.ContractMonitor {
	if cm, ok := overrides[name]; ok && cm != nil {
		return cm
	}
	return monitor.MustBuiltin(name)
}

// Router builds the gin engine.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), otelgin.Middleware(s.deps.ServiceName), s.requestContext())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/state", s.getState)
	r.GET("/report", s.getReport)

	p := r.Group("/payment")
	p.POST("/initialize", s.initialize)
	p.POST("/deinitialize", s.deinitialize)
	p.POST("/execute", s.execute)
	p.POST("/finalize", s.finalize)
	p.POST("/hosted-form", s.hostedForm)

	if s.deps.PaymentMethods != nil {
		r.POST("/payment-methods/load", s.loadPaymentMethods)
	}
	return r
}

func (s *Server) requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := tracing.RequestID(c.GetHeader(RequestIDHeader))
		c.Request = c.Request.WithContext(tracing.WithRequestID(c.Request.Context(), requestID))
		c.Header(RequestIDHeader, requestID)

		start := time.Now()
		c.Next()
		s.deps.Logger.Info("request handled",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"request_id", requestID,
			"duration", time.Since(start),
		)
	}
}

type methodRequest struct {
	MethodID  string         `json:"methodId"`
	GatewayID string         `json:"gatewayId,omitempty"`
	TimeoutMs int64          `json:"timeoutMs,omitempty"`
	Settings  map[string]any `json:"settings,omitempty"`
}

func (r methodRequest) options(fallback time.Duration) payment.RequestOptions {
	return payment.RequestOptions{MethodID: r.MethodID, GatewayID: r.GatewayID, Timeout: timeout(r.TimeoutMs, fallback)}
}

type executeRequest struct {
	order.RequestBody
	TimeoutMs int64 `json:"timeoutMs,omitempty"`
}

type finalizeRequest struct {
	TimeoutMs int64 `json:"timeoutMs,omitempty"`
}

type hostedFormRequest struct {
	MethodID         string                             `json:"methodId"`
	GatewayID        string                             `json:"gatewayId,omitempty"`
	Nonce            string                             `json:"nonce"`
	Values           map[payment.HostedFieldType]string `json:"values"`
	InstrumentID     string                             `json:"instrumentId,omitempty"`
	AdditionalAction *payment.AdditionalAction          `json:"additionalAction,omitempty"`
}

func (s *Server) initialize(c *gin.Context) {
	var req methodRequest
	if !s.bind(c, s.methodContract, &req) {
		return
	}
	opts := payment.InitializeOptions{RequestOptions: req.options(s.deps.DefaultTimeout), Settings: req.Settings}
	types, err := s.dispatch(c.Request.Context(), s.deps.Strategies.Initialize(opts))
	s.respond(c, "initialize", types, err)
}

func (s *Server) deinitialize(c *gin.Context) {
	var req methodRequest
	if !s.bind(c, s.methodContract, &req) {
		return
	}
	types, err := s.dispatch(c.Request.Context(), s.deps.Strategies.Deinitialize(req.options(s.deps.DefaultTimeout)))
	s.respond(c, "deinitialize", types, err)
}

func (s *Server) execute(c *gin.Context) {
	var req executeRequest
	if !s.bind(c, s.executeContract, &req) {
		return
	}
	opts := payment.RequestOptions{Timeout: timeout(req.TimeoutMs, s.deps.DefaultTimeout)}
	types, err := s.dispatch(c.Request.Context(), s.deps.Strategies.Execute(req.RequestBody, opts))
	s.respond(c, "execute", types, err)
}

func (s *Server) finalize(c *gin.Context) {
	var req finalizeRequest
	if !s.bind(c, nil, &req) {
		return
	}
	opts := payment.RequestOptions{Timeout: timeout(req.TimeoutMs, s.deps.DefaultTimeout)}
	types, err := s.dispatch(c.Request.Context(), s.deps.Strategies.Finalize(opts))
	if apperr.IsBenign(err) {
		c.JSON(http.StatusOK, gin.H{
			"operation": "finalize",
			"finalized": false,
			"reason":    apperr.Kind(err),
			"actions":   types,
		})
		return
	}
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"operation": "finalize", "finalized": true, "actions": types})
		return
	}
	s.respond(c, "finalize", types, err)
}

func (s *Server) hostedForm(c *gin.Context) {
	if s.deps.Payments == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "hosted form payments are not configured"})
		return
	}
	var req hostedFormRequest
	if !s.bind(c, s.methodContract, &req) {
		return
	}

	var data *payment.Data
	if req.InstrumentID != "" {
		data = &payment.Data{InstrumentID: req.InstrumentID}
	}
	orderData, err := payment.HostedFormOrderDataFromState(s.deps.Store.GetState(), req.MethodID, req.GatewayID, data)
	if err != nil {
		s.respond(c, "hosted_form", nil, err)
		return
	}

	types, err := s.dispatch(c.Request.Context(), s.deps.Payments.SubmitHostedPayment(req.Values, orderData, req.Nonce, req.AdditionalAction))
	s.respond(c, "hosted_form", types, err)
}

func (s *Server) loadPaymentMethods(c *gin.Context) {
	types, err := s.dispatch(c.Request.Context(), s.deps.PaymentMethods.LoadPaymentMethods())
	s.respond(c, "load_payment_methods", types, err)
}

func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Store.GetState())
}

func (s *Server) getReport(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Reporter.GenerateRetrospective(s.deps.Store.Journal()))
}

// dispatch runs thunk against the store and returns the types of the actions
// it emitted.
func (s *Server) dispatch(ctx context.Context, thunk checkout.Thunk) ([]action.Type, error) {
	rec := action.NewRecorder()
	err := thunk(ctx, s.deps.Store, func(a action.Action) {
		rec.Emit(a)
		s.deps.Store.Apply(a)
	})
	return rec.Types(), err
}

// bind reads the JSON body, validates it against contract when one is given,
// and decodes it into dst. It writes the error response itself.
func (s *Server) bind(c *gin.Context, contract *monitor.ContractMonitor, dst any) bool {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return false
	}
	if len(body) == 0 {
		body = []byte("{}")
	}
	if !json.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: body is not JSON"})
		return false
	}
	if contract != nil {
		if err := contract.CheckBytes(body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": apperr.Kind(err)})
			return false
		}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return false
	}
	return true
}

func (s *Server) respond(c *gin.Context, operation string, types []action.Type, err error) {
	if types == nil {
		types = []action.Type{}
	}
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"operation": operation, "actions": types})
		return
	}

	cause := action.Cause(err)
	body := gin.H{
		"operation": operation,
		"actions":   types,
		"error":     cause.Error(),
		"kind":      apperr.Kind(cause),
	}
	if a, ok := action.FailedAction(err); ok {
		body["failedAction"] = a.Type
		body["methodId"] = a.Meta.MethodID
	}

	status := apperr.HTTPStatus(cause)
	var httpErr interface{ Retryable() bool }
	if errors.As(cause, &httpErr) && status == http.StatusBadGateway {
		body["retryable"] = httpErr.Retryable()
	}
	c.JSON(status, body)
}

func timeout(ms int64, fallback time.Duration) time.Duration {
	if ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}
