package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yourorg/checkout-orchestrator/internal/checkout"
	"github.com/yourorg/checkout-orchestrator/internal/config"
	"github.com/yourorg/checkout-orchestrator/internal/integration"
	"github.com/yourorg/checkout-orchestrator/internal/logging"
	"github.com/yourorg/checkout-orchestrator/internal/monitor"
	"github.com/yourorg/checkout-orchestrator/internal/order"
	"github.com/yourorg/checkout-orchestrator/internal/payment"
	"github.com/yourorg/checkout-orchestrator/internal/paymentmethod"
	"github.com/yourorg/checkout-orchestrator/internal/paymentstrategy"
	"github.com/yourorg/checkout-orchestrator/internal/policy"
	"github.com/yourorg/checkout-orchestrator/internal/server"
	"github.com/yourorg/checkout-orchestrator/internal/spam"
	"github.com/yourorg/checkout-orchestrator/internal/strategy"
	"github.com/yourorg/checkout-orchestrator/internal/strategy/mock"
	"github.com/yourorg/checkout-orchestrator/internal/tracing"
	"github.com/yourorg/checkout-orchestrator/internal/transport"
	"github.com/yourorg/checkout-orchestrator/internal/transport/circuitbreaker"
)

// storefrontBreakerKey names the storefront API in the circuit breaker.
const storefrontBreakerKey = "storefront"

func newServeCmd() *cobra.Command {
	var demo bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the payment strategy HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, demo)
		},
	}
	cmd.Flags().BoolVar(&demo, "demo", false, "register scriptable demo strategies")
	return cmd
}

// app is the wired service.
type app struct {
	store  *checkout.Store
	router *gin.Engine
}

func buildApp(cfg config.Config, logger *slog.Logger, demo bool) (*app, error) {
	state := checkout.State{}
	if cfg.Checkout.FixturePath != "" {
		loaded, err := checkout.LoadFixture(cfg.Checkout.FixturePath)
		if err != nil {
			return nil, err
		}
		state = loaded
	}
	store := checkout.NewStore(state,
		checkout.WithLogger(logger),
		checkout.WithJournalLimit(cfg.Checkout.JournalLimit),
	)

	breaker := circuitbreaker.NewCircuitBreaker(circuitbreaker.Config{
		FailureThreshold:  cfg.Breaker.FailureThreshold,
		ResetTimeout:      cfg.Breaker.ResetTimeout,
		HalfOpenSuccesses: cfg.Breaker.HalfOpenSuccesses,
	})
	client := transport.New(cfg.API.BaseURL,
		transport.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		transport.WithRetry(cfg.API.RetryAttempts, cfg.API.RetryDelay),
		transport.WithCircuitBreaker(breaker, storefrontBreakerKey),
		transport.WithLogger(logger),
	)

	rule, err := policy.New(cfg.Checkout.PaymentRequiredRule)
	if err != nil {
		return nil, err
	}

	contracts := make(map[string]*monitor.ContractMonitor, 3)
	for _, name := range []string{monitor.OrderSubmission, monitor.ExecuteRequest, monitor.MethodRequest} {
		cm, err := monitor.Load(cfg.Checkout.ContractsDir, name)
		if err != nil {
			return nil, err
		}
		contracts[name] = cm
	}

	orders := order.NewActionCreator(order.NewHTTPSender(client),
		order.WithValidator(contracts[monitor.OrderSubmission]),
		order.WithExternalSource(cfg.Checkout.ExternalSource),
	)
	payments := payment.NewActionCreator(payment.NewHTTPSender(client), payment.NewTransformer())
	svc := integration.NewStoreService(store, orders, payments)

	v2 := integration.NewRegistry(svc)
	if demo {
		registerDemoStrategies(v2, logger)
	}
	legacy := strategy.NewRegistry()
	strategy.RegisterBuiltins(legacy, svc)

	strategies := paymentstrategy.NewActionCreator(
		strategy.NewResolver(v2, legacy, logger),
		orders,
		spam.NewActionCreator(spam.NewHTTPVerifier(client, spam.StaticToken(cfg.API.SpamToken))),
		paymentstrategy.WithLogger(logger),
		paymentstrategy.WithPolicy(rule),
	)

	srv := server.New(server.Deps{
		Store:          store,
		Strategies:     strategies,
		Payments:       payments,
		PaymentMethods: paymentmethod.NewActionCreator(paymentmethod.NewHTTPSender(client)),
		Contracts:      contracts,
		Logger:         logger,
		ServiceName:    cfg.Tracing.ServiceName,
		DefaultTimeout: cfg.Checkout.OperationTimeout,
	})
	return &app{store: store, router: srv.Router()}, nil
}

// registerDemoStrategies registers v2 strategies that succeed without
// contacting a provider, keyed by the method ids used in local fixtures.
func registerDemoStrategies(v2 *integration.Registry, logger *slog.Logger) {
	for _, id := range []string{"testgateway", "mockpay"} {
		s := mock.NewStrategy(id)
		v2.Register(func(integration.Service) (integration.PaymentStrategy, error) {
			logger.Info("demo strategy constructed", "method_id", s.Name)
			return s, nil
		}, integration.ResolveID{ID: id})
	}
}

func serve(ctx context.Context, cfg config.Config, demo bool) error {
	logger := logging.New(cfg.Logging, os.Stdout)
	slog.SetDefault(logger)

	tp, err := tracing.Setup(tracing.ProviderConfig{ServiceName: cfg.Tracing.ServiceName, Exporter: cfg.Tracing.Exporter})
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	a, err := buildApp(cfg, logger, demo)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      a.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", httpServer.Addr, "version", version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down")
		err := httpServer.Shutdown(shutdownCtx)
		if tpErr := tracing.Shutdown(shutdownCtx, tp); tpErr != nil {
			logger.Warn("tracer provider shutdown failed", "error", tpErr)
		}
		return err
	})
	return g.Wait()
}
