package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sadopc/kitchenos/internal/menu"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, h http.HandlerFunc, token string) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	c := NewClient(server.URL+"/", time.Second, staticToken(token))
	c.retryDelay = time.Millisecond
	return c
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("http://example.test/", 0, nil)
	if c.BaseURL() != "http://example.test" {
		t.Fatalf("trailing slash not trimmed: %q", c.BaseURL())
	}
	if c.httpClient.Timeout != DefaultTimeout {
		t.Fatalf("timeout = %v, want %v", c.httpClient.Timeout, DefaultTimeout)
	}
}

func TestLogin(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "" {
				t.Errorf("expected no Authorization header, got %q", got)
			}
			if got := r.Header.Get("Content-Type"); got != "application/json" {
				t.Errorf("Content-Type = %q", got)
			}
			var p LoginPayload
			if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
				t.Errorf("decode body: %v", err)
			}
			if p.Email != "a@b.test" || p.Password != "secret1" {
				t.Errorf("unexpected payload %+v", p)
			}
			fmt.Fprint(w, `{"user":{"id":"u1","email":"a@b.test","name":"Ann"},"accessToken":"tok","expiresIn":3600}`)
		}, "")

		resp, err := c.Login(context.Background(), LoginPayload{Email: "a@b.test", Password: "secret1"})
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if resp.AccessToken != "tok" || resp.User.Name != "Ann" || resp.ExpiresIn != 3600 {
			t.Fatalf("unexpected response %+v", resp)
		}
	})

	t.Run("InvalidCredentials", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message":"Invalid credentials"}`)
		}, "")

		_, err := c.Login(context.Background(), LoginPayload{})
		if !IsUnauthorized(err) {
			t.Fatalf("expected unauthorized, got %v", err)
		}
		if Message(err) != "Invalid credentials" {
			t.Fatalf("Message = %q", Message(err))
		}
	})
}

func TestBearerToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer abc" {
			t.Errorf("Authorization = %q", got)
		}
		fmt.Fprint(w, `{"id":"u1","email":"a@b.test","name":"Ann","subscriptionTier":"free","authProvider":"local"}`)
	}, "abc")

	u, err := c.Profile(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if u.SubscriptionTier != TierFree || u.AuthProvider != ProviderLocal {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"String", `{"message":"Email taken"}`, "Email taken"},
		{"Array", `{"message":["email must be an email","password too short"]}`, "email must be an email, password too short"},
		{"Missing", `{"error":"x"}`, fallbackMessage},
		{"NotJSON", `oops`, fallbackMessage},
		{"WrongType", `{"message":42}`, fallbackMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprint(w, tt.body)
			}, "")
			_, err := c.Register(context.Background(), RegisterPayload{})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := Message(err); got != tt.want {
				t.Fatalf("Message = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMessageNonAPIError(t *testing.T) {
	if got := Message(errors.New("dial tcp: refused")); got != fallbackMessage {
		t.Fatalf("got %q", got)
	}
}

func TestShouldRetry(t *testing.T) {
	notFound := &Error{Status: http.StatusNotFound}
	serverErr := &Error{Status: http.StatusInternalServerError}

	if ShouldRetry(0, notFound) {
		t.Fatal("404 must not be retried")
	}
	if ShouldRetry(0, &Error{Status: http.StatusUnauthorized}) {
		t.Fatal("401 must not be retried")
	}
	if !ShouldRetry(0, serverErr) || !ShouldRetry(1, serverErr) {
		t.Fatal("server errors should be retried twice")
	}
	if ShouldRetry(2, serverErr) {
		t.Fatal("third failure should not be retried")
	}
	if ShouldRetry(0, context.Canceled) {
		t.Fatal("cancellation should not be retried")
	}
	if !ShouldRetry(0, fmt.Errorf("wrapped: %w", errors.New("net"))) {
		t.Fatal("network errors should be retried")
	}
}

func TestCurrentMenu(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/menu/current" {
				t.Errorf("path = %s", r.URL.Path)
			}
			fmt.Fprint(w, `{"id":"m1","familyId":"f1","weekStart":"2024-03-04","weekEnd":"2024-03-10","isActive":true,
				"days":[{"id":"d1","menuId":"m1","date":"2024-03-04T00:00:00.000Z","dayNumber":1,
				"meals":[{"id":"x","dayId":"d1","mealType":"lunch","status":"pending","recipe":{"id":"r","name":"Soup","servings":2,"cookingTime":30,"ingredients":[]}}]}]}`)
		}, "tok")

		m, err := c.CurrentMenu(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(m.Days) != 1 || len(m.Days[0].Meals) != 1 {
			t.Fatalf("unexpected menu %+v", m)
		}
		meal := m.Days[0].Meals[0]
		if meal.MealType != menu.Lunch || meal.Status != menu.StatusPending {
			t.Fatalf("unexpected meal %+v", meal)
		}
		if meal.Recipe == nil || meal.Recipe.CookingTime == nil || *meal.Recipe.CookingTime != 30 {
			t.Fatalf("recipe not decoded: %+v", meal.Recipe)
		}
	})

	t.Run("NotFoundIsNotRetried", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"No active menu"}`)
		}, "tok")

		_, err := c.CurrentMenu(context.Background())
		if !IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
		if calls.Load() != 1 {
			t.Fatalf("expected 1 call, got %d", calls.Load())
		}
	})

	t.Run("ServerErrorRetriedTwice", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}, "tok")

		_, err := c.CurrentMenu(context.Background())
		if err == nil {
			t.Fatal("expected error")
		}
		if calls.Load() != 3 {
			t.Fatalf("expected 3 calls, got %d", calls.Load())
		}
	})

	t.Run("RecoversAfterRetry", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			fmt.Fprint(w, `{"id":"m1","days":[]}`)
		}, "tok")

		m, err := c.CurrentMenu(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if m.ID != "m1" || calls.Load() != 2 {
			t.Fatalf("menu %+v after %d calls", m, calls.Load())
		}
	})
}

func TestUpdateMealStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/menu/meals/meal-1/status" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["status"] != "skipped" {
			t.Errorf("status = %q", body["status"])
		}
		fmt.Fprint(w, `{"id":"meal-1","dayId":"d1","mealType":"dinner","status":"skipped"}`)
	}, "tok")

	m, err := c.UpdateMealStatus(context.Background(), "meal-1", menu.StatusSkipped)
	if err != nil {
		t.Fatal(err)
	}
	if m.Status != menu.StatusSkipped {
		t.Fatalf("status = %s", m.Status)
	}
}

func TestGenerateMenu(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if r.URL.Path != "/menu/generate" || body["familyId"] != "fam-1" {
			t.Errorf("unexpected request %s %v", r.URL.Path, body)
		}
		fmt.Fprint(w, `{"id":"m2","familyId":"fam-1","days":[]}`)
	}, "tok")

	m, err := c.GenerateMenu(context.Background(), "fam-1")
	if err != nil {
		t.Fatal(err)
	}
	if m.FamilyID != "fam-1" {
		t.Fatalf("unexpected menu %+v", m)
	}
}

func TestFamilyInfo(t *testing.T) {
	t.Run("WithFamily", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"family":{"id":"f1","weeklyBudget":2000,"budgetUsed":500,
				"budgetPeriodStart":"2024-03-04","budgetPeriodEnd":"2024-03-10",
				"members":[{"id":"m1","name":"Kid","isRegistered":false,"userId":null,"mealTimes":["lunch"],"allergies":["eggs"]}]}}`)
		}, "tok")

		info, err := c.FamilyInfo(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		f := info.Family
		if f == nil || len(f.Members) != 1 {
			t.Fatalf("unexpected family %+v", f)
		}
		if f.Budget().Progress() != 0.25 {
			t.Fatalf("progress = %v", f.Budget().Progress())
		}
		start, end := f.BudgetPeriod()
		if start != "2024-03-04" || end != "2024-03-10" {
			t.Fatalf("period = %q..%q", start, end)
		}
	})

	t.Run("NoFamily", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"family":null}`)
		}, "tok")

		info, err := c.FamilyInfo(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if info.Family != nil {
			t.Fatal("expected nil family")
		}
		if info.Family.Budget().Level() != menu.BudgetUnset {
			t.Fatal("nil family should have unset budget")
		}
	})
}

func TestPasswordResetFlow(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/password-reset/request":
			var p RequestPasswordResetPayload
			json.NewDecoder(r.Body).Decode(&p)
			if p.Email != "a@b.test" {
				t.Errorf("email = %q", p.Email)
			}
		case "/auth/password-reset/confirm":
			var p ConfirmPasswordResetPayload
			json.NewDecoder(r.Body).Decode(&p)
			if p.OTPCode != "123456" || p.NewPassword != "newpass" {
				t.Errorf("unexpected confirm payload %+v", p)
			}
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"ok":true}`)
	}, "")

	ctx := context.Background()
	res, err := c.RequestPasswordReset(ctx, RequestPasswordResetPayload{Email: "a@b.test"})
	if err != nil || !res.OK {
		t.Fatalf("request: %v %+v", err, res)
	}
	res, err = c.ConfirmPasswordReset(ctx, ConfirmPasswordResetPayload{Email: "a@b.test", OTPCode: "123456", NewPassword: "newpass"})
	if err != nil || !res.OK {
		t.Fatalf("confirm: %v %+v", err, res)
	}
}

func TestRegisterViaInvitePath(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/register-via-invite/inv-123" {
			t.Errorf("path = %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"user":{"id":"u2"},"accessToken":"t2","expiresIn":60}`)
	}, "")

	resp, err := c.RegisterViaInvite(context.Background(), "inv-123", RegisterViaInvitePayload{Email: "k@b.test", Password: "secret1", Goal: GoalHealthyEating})
	if err != nil {
		t.Fatal(err)
	}
	if resp.AccessToken != "t2" {
		t.Fatalf("token = %q", resp.AccessToken)
	}
}

func TestContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, "tok")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.CurrentMenu(ctx); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
