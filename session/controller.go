// Package session owns the authenticated-user state machine. It bridges the
// backend client and the persisted session record: startup reconciliation
// with stale fallback, sign-in/sign-out, the cached order list, and the
// optimistic loyalty-point projection layered over the last authoritative
// balance.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/quickplate/quickplate-go/core"
)

// AuthState is the controller's position in the session lifecycle.
type AuthState string

const (
	// StateUnknown is the initial state, before the persisted session has
	// been consulted.
	StateUnknown AuthState = "unknown"
	// StateAnonymous means no session: never signed in, or signed out.
	StateAnonymous AuthState = "anonymous"
	// StateAuthenticated means a profile is loaded (fresh or stale).
	StateAuthenticated AuthState = "authenticated"
)

// Backend is the slice of the API client the controller depends on.
type Backend interface {
	Login(ctx context.Context, sapID, password string) (*core.UserProfile, error)
	Signup(ctx context.Context, req core.SignupRequest) (*core.UserProfile, error)
	ChangePassword(ctx context.Context, userID int, oldPassword, newPassword string) error
	GetUser(ctx context.Context, userID int) (*core.UserProfile, error)
	UpdateUser(ctx context.Context, userID int, update core.ProfileUpdate) (*core.UserProfile, error)
	CreateOrder(ctx context.Context, req core.OrderRequest) (*core.Order, int, error)
	ListUserOrders(ctx context.Context, userID int) ([]core.Order, error)
}

// Subscriber receives auth-state transitions. Route guarding lives behind
// this: a navigation component subscribes and decides where to steer the
// user, keeping UI concerns out of this package.
type Subscriber func(state AuthState)

// ControllerOptions configures the session controller
type ControllerOptions struct {
	Backend    Backend
	Store      core.SessionStore
	Logger     core.Logger   // optional
	SessionKey string        // defaults to core.DefaultSessionKey
	SessionTTL time.Duration // 0 = persisted record never expires
}

// Controller owns the current authenticated user (or lack thereof) and the
// locally cached order list. Safe for concurrent use; concurrent async
// operations are deliberately not serialized - the last response to apply
// wins.
type Controller struct {
	backend    Backend
	store      core.SessionStore
	logger     core.Logger
	sessionKey string
	sessionTTL time.Duration

	mu sync.RWMutex
	// user is the last confirmed authoritative profile. pendingPoints is
	// the unconfirmed local delta layered on top of it; every successful
	// authoritative fetch resets it.
	user          *core.UserProfile
	pendingPoints int
	orders        []core.Order
	state         AuthState
	subscribers   []Subscriber
}

// NewController creates a session controller
func NewController(opts ControllerOptions) (*Controller, error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("backend is required: %w", core.ErrMissingConfiguration)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("session store is required: %w", core.ErrMissingConfiguration)
	}

	logger := opts.Logger
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	if cal, ok := logger.(core.ComponentAwareLogger); ok {
		logger = cal.WithComponent("quickplate/session")
	}

	sessionKey := opts.SessionKey
	if sessionKey == "" {
		sessionKey = core.DefaultSessionKey
	}

	return &Controller{
		backend:    opts.Backend,
		store:      opts.Store,
		logger:     logger,
		sessionKey: sessionKey,
		sessionTTL: opts.SessionTTL,
		state:      StateUnknown,
	}, nil
}

// Subscribe registers a state-change listener. Listeners fire after every
// transition, outside the controller's lock.
func (c *Controller) Subscribe(fn Subscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// State returns the current auth state
func (c *Controller) State() AuthState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// User returns the current profile projection: the last authoritative
// profile with any unconfirmed point delta applied. Nil when not
// authenticated.
func (c *Controller) User() *core.UserProfile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.projectionLocked()
}

// Orders returns a copy of the cached order list, newest first
func (c *Controller) Orders() []core.Order {
	c.mu.RLock()
	defer c.mu.RUnlock()

	orders := make([]core.Order, len(c.orders))
	copy(orders, c.orders)
	return orders
}

// Start resolves the persisted session. With no stored record the
// controller lands in StateAnonymous. With one, it attempts an
// authoritative refresh; a fetch failure falls back to the stale persisted
// profile rather than forcing sign-out - a network error at startup must
// not strand the user in a state they didn't choose, so the fallback is
// logged, never surfaced.
func (c *Controller) Start(ctx context.Context) AuthState {
	stored, err := c.store.Get(ctx, c.sessionKey)
	if err != nil {
		c.logger.Error("Failed to read persisted session", map[string]interface{}{
			"operation": "session_start",
			"error":     err.Error(),
		})
		return c.transition(nil, nil, StateAnonymous)
	}
	if stored == "" {
		c.logger.Info("No persisted session", map[string]interface{}{
			"operation": "session_start",
			"result":    "anonymous",
		})
		return c.transition(nil, nil, StateAnonymous)
	}

	var persisted core.UserProfile
	if err := json.Unmarshal([]byte(stored), &persisted); err != nil {
		c.logger.Error("Persisted session is corrupt, discarding", map[string]interface{}{
			"operation": "session_start",
			"error":     err.Error(),
		})
		_ = c.store.Delete(ctx, c.sessionKey)
		return c.transition(nil, nil, StateAnonymous)
	}

	fresh, err := c.backend.GetUser(ctx, persisted.ID)
	if err != nil {
		c.logger.Warn("Startup refresh failed, using persisted profile", map[string]interface{}{
			"operation": "session_start",
			"user_id":   persisted.ID,
			"error":     err.Error(),
		})
		return c.transition(&persisted, nil, StateAuthenticated)
	}

	orders := c.fetchOrders(ctx, fresh.ID)
	c.persist(ctx, fresh)

	c.logger.Info("Session restored", map[string]interface{}{
		"operation":   "session_start",
		"user_id":     fresh.ID,
		"order_count": len(orders),
	})
	return c.transition(fresh, orders, StateAuthenticated)
}

// SignIn authenticates with the backend. Input is validated before any
// network call; validation and backend errors both propagate to the caller
// and leave the current state untouched.
func (c *Controller) SignIn(ctx context.Context, sapID, password string) error {
	if err := validateCredentials(sapID, password); err != nil {
		return err
	}

	user, err := c.backend.Login(ctx, sapID, password)
	if err != nil {
		c.logger.Warn("Sign-in failed", map[string]interface{}{
			"operation": "session_sign_in",
			"sap_id":    sapID,
			"error":     err.Error(),
		})
		return err
	}

	c.persist(ctx, user)
	orders := c.fetchOrders(ctx, user.ID)

	c.logger.Info("Signed in", map[string]interface{}{
		"operation":   "session_sign_in",
		"user_id":     user.ID,
		"order_count": len(orders),
	})
	c.transition(user, orders, StateAuthenticated)
	return nil
}

// SignUp registers a new account and signs it in. The account comes back
// from the backend already usable, so the sign-in leg is local bookkeeping.
func (c *Controller) SignUp(ctx context.Context, req core.SignupRequest) error {
	if err := validateSignup(req); err != nil {
		return err
	}

	user, err := c.backend.Signup(ctx, req)
	if err != nil {
		return err
	}

	c.persist(ctx, user)
	c.logger.Info("Account created", map[string]interface{}{
		"operation": "session_sign_up",
		"user_id":   user.ID,
	})
	c.transition(user, nil, StateAuthenticated)
	return nil
}

// SignOut clears the persisted session and cached orders and transitions to
// StateAnonymous unconditionally. No network call is required to succeed; a
// store failure is logged but does not keep the user signed in.
func (c *Controller) SignOut(ctx context.Context) {
	if err := c.store.Delete(ctx, c.sessionKey); err != nil {
		c.logger.Error("Failed to clear persisted session", map[string]interface{}{
			"operation": "session_sign_out",
			"error":     err.Error(),
		})
	}

	c.logger.Info("Signed out", map[string]interface{}{
		"operation": "session_sign_out",
	})
	c.transition(nil, nil, StateAnonymous)
}

// ChangePassword verifies the old password with the backend and swaps it.
func (c *Controller) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if err := validatePasswordChange(oldPassword, newPassword); err != nil {
		return err
	}

	user := c.User()
	if user == nil {
		return core.ErrNotAuthenticated
	}
	return c.backend.ChangePassword(ctx, user.ID, oldPassword, newPassword)
}

// PlaceOrder submits a checkout. On success the new order is prepended to
// the cached list and the profile is re-fetched for the authoritative point
// balance. On failure the order list is left untouched and the error
// propagates; the cart is never cleared here - that is the caller's
// responsibility after confirmed success.
func (c *Controller) PlaceOrder(ctx context.Context, req core.OrderRequest) (*core.Order, error) {
	user := c.User()
	if user == nil {
		return nil, core.ErrNotAuthenticated
	}
	req.UserID = user.ID

	order, pointsEarned, err := c.backend.CreateOrder(ctx, req)
	if err != nil {
		c.logger.Error("Order placement failed", map[string]interface{}{
			"operation": "session_place_order",
			"user_id":   user.ID,
			"error":     err.Error(),
		})
		return nil, err
	}

	c.mu.Lock()
	c.orders = append([]core.Order{*order}, c.orders...)
	c.mu.Unlock()

	c.logger.Info("Order placed", map[string]interface{}{
		"operation":     "session_place_order",
		"user_id":       user.ID,
		"order_id":      order.ID,
		"total":         order.Total,
		"points_earned": pointsEarned,
	})

	// Authoritative refresh for the updated point balance. The order went
	// through; a failed refresh only delays reconciliation.
	fresh, err := c.backend.GetUser(ctx, user.ID)
	if err != nil {
		c.logger.Warn("Post-order refresh failed", map[string]interface{}{
			"operation": "session_place_order",
			"user_id":   user.ID,
			"error":     err.Error(),
		})
		return order, nil
	}

	c.persist(ctx, fresh)
	c.mu.Lock()
	c.applyAuthoritativeLocked(fresh)
	c.mu.Unlock()
	return order, nil
}

// UpdateProfile applies a partial edit through the backend. The cached
// profile is replaced and persisted only on success.
func (c *Controller) UpdateProfile(ctx context.Context, update core.ProfileUpdate) error {
	user := c.User()
	if user == nil {
		return core.ErrNotAuthenticated
	}

	updated, err := c.backend.UpdateUser(ctx, user.ID, update)
	if err != nil {
		return err
	}

	c.persist(ctx, updated)
	c.mu.Lock()
	c.applyAuthoritativeLocked(updated)
	c.mu.Unlock()

	c.logger.Info("Profile updated", map[string]interface{}{
		"operation": "session_update_profile",
		"user_id":   updated.ID,
	})
	return nil
}

// AddLoyaltyPoints optimistically raises the local balance projection. The
// delta is not sent to the backend; the next authoritative fetch replaces
// it.
func (c *Controller) AddLoyaltyPoints(points int) {
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return
	}
	c.pendingPoints += points
	projection := c.projectionLocked()
	c.mu.Unlock()

	c.persist(context.Background(), projection)
	c.logger.Debug("Loyalty points added locally", map[string]interface{}{
		"operation": "session_add_points",
		"points":    points,
		"projected": projection.LoyaltyPoints,
	})
}

// RedeemPoints optimistically spends points from the local projection. It
// returns false - with no state change - when the projected balance cannot
// cover the request. Like AddLoyaltyPoints this is local-only bookkeeping
// pending authoritative reconciliation.
func (c *Controller) RedeemPoints(points int) bool {
	c.mu.Lock()
	if c.user == nil || c.user.LoyaltyPoints+c.pendingPoints < points {
		c.mu.Unlock()
		return false
	}
	c.pendingPoints -= points
	projection := c.projectionLocked()
	c.mu.Unlock()

	c.persist(context.Background(), projection)
	c.logger.Debug("Loyalty points redeemed locally", map[string]interface{}{
		"operation": "session_redeem_points",
		"points":    points,
		"projected": projection.LoyaltyPoints,
	})
	return true
}

// projectionLocked builds the profile view with the pending point delta
// applied. Caller must hold at least a read lock.
func (c *Controller) projectionLocked() *core.UserProfile {
	if c.user == nil {
		return nil
	}
	projection := *c.user
	projection.LoyaltyPoints += c.pendingPoints
	if projection.LoyaltyPoints < 0 {
		projection.LoyaltyPoints = 0
	}
	return &projection
}

// applyAuthoritativeLocked installs a server-confirmed profile and discards
// the unconfirmed delta. Caller must hold the write lock.
func (c *Controller) applyAuthoritativeLocked(user *core.UserProfile) {
	profile := *user
	c.user = &profile
	c.pendingPoints = 0
}

// transition installs user/orders/state and notifies subscribers outside
// the lock when the state actually changed.
func (c *Controller) transition(user *core.UserProfile, orders []core.Order, state AuthState) AuthState {
	c.mu.Lock()
	if user != nil {
		c.applyAuthoritativeLocked(user)
	} else {
		c.user = nil
		c.pendingPoints = 0
	}
	c.orders = orders
	changed := c.state != state
	c.state = state
	subscribers := make([]Subscriber, len(c.subscribers))
	copy(subscribers, c.subscribers)
	c.mu.Unlock()

	if changed {
		for _, fn := range subscribers {
			fn(state)
		}
	}
	return state
}

// fetchOrders loads the order history, degrading to an empty list on
// failure. Order history is a cache, not a precondition for being signed
// in.
func (c *Controller) fetchOrders(ctx context.Context, userID int) []core.Order {
	orders, err := c.backend.ListUserOrders(ctx, userID)
	if err != nil {
		c.logger.Warn("Order history fetch failed", map[string]interface{}{
			"operation": "session_fetch_orders",
			"user_id":   userID,
			"error":     err.Error(),
		})
		return nil
	}
	return orders
}

// persist writes the profile blob to the session store. Persistence
// failures are logged, not surfaced: the in-memory session stays valid for
// this process either way.
func (c *Controller) persist(ctx context.Context, user *core.UserProfile) {
	data, err := json.Marshal(user)
	if err != nil {
		c.logger.Error("Failed to encode session record", map[string]interface{}{
			"operation": "session_persist",
			"error":     err.Error(),
		})
		return
	}
	if err := c.store.Set(ctx, c.sessionKey, string(data), c.sessionTTL); err != nil {
		c.logger.Error("Failed to persist session record", map[string]interface{}{
			"operation": "session_persist",
			"error":     err.Error(),
		})
	}
}
