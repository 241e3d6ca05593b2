// Package quickplate assembles the ordering client from its parts: config,
// logging, the backend API client, the session controller, the cart, and
// the dining assistant. Most programs only need New and the accessors;
// the subpackages remain importable directly for finer-grained use:
//   - github.com/quickplate/quickplate-go/core - types, config, stores
//   - github.com/quickplate/quickplate-go/api - raw backend client
//   - github.com/quickplate/quickplate-go/cart - cart and pricing
//   - github.com/quickplate/quickplate-go/session - auth and loyalty state
//   - github.com/quickplate/quickplate-go/assistant - chat and recommendations
package quickplate

import (
	"context"
	"fmt"

	"github.com/quickplate/quickplate-go/api"
	"github.com/quickplate/quickplate-go/assistant"
	"github.com/quickplate/quickplate-go/cart"
	"github.com/quickplate/quickplate-go/core"
	"github.com/quickplate/quickplate-go/session"
	"github.com/quickplate/quickplate-go/telemetry"
)

// Re-export the types callers touch most, so simple programs import one
// package.
type (
	Config = core.Config
	Option = core.Option
	Logger = core.Logger

	Meal           = core.Meal
	MealCategory   = core.MealCategory
	CartItem       = core.CartItem
	Offer          = core.Offer
	Order          = core.Order
	OrderRequest   = core.OrderRequest
	UserProfile    = core.UserProfile
	SignupRequest  = core.SignupRequest
	ProfileUpdate  = core.ProfileUpdate
	Recommendation = core.Recommendation

	AuthState = session.AuthState
)

const (
	StateUnknown       = session.StateUnknown
	StateAnonymous     = session.StateAnonymous
	StateAuthenticated = session.StateAuthenticated
)

// Re-export configuration options
var (
	WithBaseURL         = core.WithBaseURL
	WithRequestTimeout  = core.WithRequestTimeout
	WithSessionProvider = core.WithSessionProvider
	WithRedisURL        = core.WithRedisURL
	WithSessionKey      = core.WithSessionKey
	WithSessionTTL      = core.WithSessionTTL
	WithTelemetry       = core.WithTelemetry
	WithLogLevel        = core.WithLogLevel
	WithLogFormat       = core.WithLogFormat
	WithDevelopmentMode = core.WithDevelopmentMode
	WithConfigFile      = core.WithConfigFile
)

// App is the assembled ordering client
type App struct {
	config    *core.Config
	logger    core.Logger
	store     core.SessionStore
	provider  *telemetry.Provider
	client    *api.Client
	session   *session.Controller
	cart      *cart.Cart
	assistant *assistant.Assistant
}

// New builds an App from configuration options. Configuration resolves in
// three layers, each overriding the previous: defaults, QUICKPLATE_*
// environment variables, then the options given here.
func New(opts ...Option) (*App, error) {
	config, err := core.NewConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := core.NewProductionLogger(config.Logging, config.Development, config.Telemetry.ServiceName)

	var provider *telemetry.Provider
	var tel core.Telemetry = &core.NoOpTelemetry{}
	if config.Telemetry.Enabled {
		provider, err = telemetry.NewProvider(telemetry.ProviderOptions{
			ServiceName:  config.Telemetry.ServiceName,
			Endpoint:     config.Telemetry.Endpoint,
			Insecure:     config.Telemetry.Insecure,
			SamplingRate: config.Telemetry.SamplingRate,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		tel = provider
	}

	store, err := newSessionStore(config, logger)
	if err != nil {
		return nil, err
	}

	clientOpts := api.ClientOptions{
		BaseURL:   config.API.BaseURL,
		Timeout:   config.API.RequestTimeout,
		UserAgent: config.API.UserAgent,
		Logger:    logger,
		Telemetry: tel,
	}
	if config.Telemetry.Enabled {
		clientOpts.Transport = telemetry.InstrumentTransport(nil)
	}
	client, err := api.NewClient(clientOpts)
	if err != nil {
		return nil, err
	}

	controller, err := session.NewController(session.ControllerOptions{
		Backend:    client,
		Store:      store,
		Logger:     logger,
		SessionKey: config.Session.Key,
		SessionTTL: config.Session.TTL,
	})
	if err != nil {
		return nil, err
	}

	basket := cart.New()
	basket.SetLogger(logger)

	logger.Info("QuickPlate client initialized", map[string]interface{}{
		"operation":        "app_init",
		"base_url":         config.API.BaseURL,
		"session_provider": config.Session.Provider,
		"telemetry":        config.Telemetry.Enabled,
	})

	return &App{
		config:    config,
		logger:    logger,
		store:     store,
		provider:  provider,
		client:    client,
		session:   controller,
		cart:      basket,
		assistant: assistant.New(client, logger),
	}, nil
}

func newSessionStore(config *core.Config, logger core.Logger) (core.SessionStore, error) {
	switch config.Session.Provider {
	case "redis":
		return core.NewRedisStore(core.RedisStoreOptions{
			RedisURL:  config.Session.RedisURL,
			Namespace: config.Session.Namespace,
			Logger:    logger,
		})
	case "inmemory", "":
		store := core.NewMemoryStore()
		store.SetLogger(logger)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown session provider %q: %w",
			config.Session.Provider, core.ErrInvalidConfiguration)
	}
}

// Start resolves any persisted session and returns the resulting state
func (a *App) Start(ctx context.Context) AuthState {
	return a.session.Start(ctx)
}

// Shutdown flushes telemetry and releases store connections
func (a *App) Shutdown(ctx context.Context) error {
	if closer, ok := a.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			a.logger.Error("Failed to close session store", map[string]interface{}{
				"operation": "app_shutdown",
				"error":     err.Error(),
			})
		}
	}
	if a.provider != nil {
		return a.provider.Shutdown(ctx)
	}
	return nil
}

// API returns the raw backend client
func (a *App) API() *api.Client { return a.client }

// Session returns the auth and loyalty controller
func (a *App) Session() *session.Controller { return a.session }

// Cart returns the shared cart
func (a *App) Cart() *cart.Cart { return a.cart }

// Assistant returns the dining assistant
func (a *App) Assistant() *assistant.Assistant { return a.assistant }

// Logger returns the configured logger
func (a *App) Logger() Logger { return a.logger }

// Checkout submits the current cart as an order. On success the cart and
// any applied offer are cleared; on failure both are left intact so the
// user can retry.
func (a *App) Checkout(ctx context.Context, pickupTime, paymentMethod string) (*Order, error) {
	items := a.cart.Snapshot()
	if len(items) == 0 {
		return nil, &core.ClientError{
			Op:      "app.Checkout",
			Kind:    "validation",
			Message: "Cart is empty",
			Err:     core.ErrValidation,
		}
	}

	req := core.OrderRequest{
		Items:         items,
		Total:         a.cart.Total(),
		PickupTime:    pickupTime,
		PaymentMethod: paymentMethod,
	}
	// An applied offer discounts the submitted total and declares the
	// points it cost. The cart's own Total stays undiscounted.
	if offer := a.cart.ActiveOffer(); offer != nil {
		req.Total -= offer.DiscountAmount
		if req.Total < 0 {
			req.Total = 0
		}
		req.PointsUsed = offer.PointsRequired
	}

	order, err := a.session.PlaceOrder(ctx, req)
	if err != nil {
		return nil, err
	}

	a.cart.Clear()
	return order, nil
}
