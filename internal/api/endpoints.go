package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sadopc/kitchenos/internal/menu"
)

// Register creates the user, family and family members in one request.
func (c *Client) Register(ctx context.Context, p RegisterPayload) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, p LoginPayload) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) (*SuccessResponse, error) {
	var out SuccessResponse
	if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestPasswordReset asks the backend to email a one-time code. The
// backend answers ok even for unknown addresses.
func (c *Client) RequestPasswordReset(ctx context.Context, p RequestPasswordResetPayload) (*SuccessResponse, error) {
	var out SuccessResponse
	if err := c.do(ctx, http.MethodPost, "/auth/password-reset/request", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmPasswordReset sets a new password using the 6-digit code. The user
// must log in again afterwards.
func (c *Client) ConfirmPasswordReset(ctx context.Context, p ConfirmPasswordResetPayload) (*SuccessResponse, error) {
	var out SuccessResponse
	if err := c.do(ctx, http.MethodPost, "/auth/password-reset/confirm", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompleteProfile finishes onboarding after an OAuth sign-in.
func (c *Client) CompleteProfile(ctx context.Context, p CompleteProfilePayload) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/complete-profile", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RegisterViaInvite(ctx context.Context, inviteToken string, p RegisterViaInvitePayload) (*AuthResponse, error) {
	var out AuthResponse
	path := "/auth/register-via-invite/" + url.PathEscape(inviteToken)
	if err := c.do(ctx, http.MethodPost, path, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentMenu fetches the active weekly menu, retrying per ShouldRetry.
// A 404 (no menu yet) is returned immediately; check it with IsNotFound.
func (c *Client) CurrentMenu(ctx context.Context) (*menu.Menu, error) {
	const path = "/menu/current"
	for attempt := 0; ; attempt++ {
		var out menu.Menu
		err := c.do(ctx, http.MethodGet, path, nil, &out)
		if err == nil {
			return &out, nil
		}
		if !ShouldRetry(attempt, err) {
			return nil, err
		}
		logRetry(path, attempt, err)
		if err := c.sleep(ctx); err != nil {
			return nil, err
		}
	}
}

func (c *Client) GenerateMenu(ctx context.Context, familyID string) (*menu.Menu, error) {
	var out menu.Menu
	body := map[string]string{"familyId": familyID}
	if err := c.do(ctx, http.MethodPost, "/menu/generate", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateMealStatus(ctx context.Context, mealID string, status menu.MealStatus) (*menu.Meal, error) {
	var out menu.Meal
	body := map[string]menu.MealStatus{"status": status}
	path := "/menu/meals/" + url.PathEscape(mealID) + "/status"
	if err := c.do(ctx, http.MethodPatch, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Profile(ctx context.Context) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FamilyInfo(ctx context.Context) (*FamilyInfoResponse, error) {
	var out FamilyInfoResponse
	if err := c.do(ctx, http.MethodGet, "/profile/family", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
