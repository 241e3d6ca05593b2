package api

import (
	"context"
	"fmt"

	"github.com/quickplate/quickplate-go/core"
)

// Login authenticates with SAP id and password and returns the account
// profile. Credential rejection surfaces the backend's error text.
func (c *Client) Login(ctx context.Context, sapID, password string) (*core.UserProfile, error) {
	body := map[string]string{
		"sapId":    sapID,
		"password": password,
	}

	var out userEnvelope
	if err := c.do(ctx, "api.Login", "POST", "/api/auth/login", body, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, fmt.Errorf("login response carried no user: %w", core.ErrRequestFailed)
	}
	return out.User, nil
}

// Signup registers a new account and returns the created profile.
func (c *Client) Signup(ctx context.Context, req core.SignupRequest) (*core.UserProfile, error) {
	var out userEnvelope
	if err := c.do(ctx, "api.Signup", "POST", "/api/auth/signup", req, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, fmt.Errorf("signup response carried no user: %w", core.ErrRequestFailed)
	}
	return out.User, nil
}

// ChangePassword swaps the account password after verifying the old one.
func (c *Client) ChangePassword(ctx context.Context, userID int, oldPassword, newPassword string) error {
	body := map[string]interface{}{
		"userId":      userID,
		"oldPassword": oldPassword,
		"newPassword": newPassword,
	}

	var out successEnvelope
	return c.do(ctx, "api.ChangePassword", "POST", "/api/auth/change-password", body, &out)
}

// GetUser fetches a profile by id. This is the authoritative read that
// supersedes any locally projected loyalty balance.
func (c *Client) GetUser(ctx context.Context, userID int) (*core.UserProfile, error) {
	var user core.UserProfile
	path := fmt.Sprintf("/api/auth/users/%d", userID)
	if err := c.do(ctx, "api.GetUser", "GET", path, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser applies a partial profile edit and returns the updated
// profile.
func (c *Client) UpdateUser(ctx context.Context, userID int, update core.ProfileUpdate) (*core.UserProfile, error) {
	var out userEnvelope
	path := fmt.Sprintf("/api/auth/users/%d", userID)
	if err := c.do(ctx, "api.UpdateUser", "PUT", path, update, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, fmt.Errorf("update response carried no user: %w", core.ErrRequestFailed)
	}
	return out.User, nil
}
