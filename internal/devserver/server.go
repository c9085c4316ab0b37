// Package devserver is an in-memory stand-in for the Kitchen OS backend,
// used by --demo and by tests. It is not a product backend: menus are
// generated from a fixed seed catalogue.
package devserver

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sadopc/kitchenos/internal/api"
	"github.com/sadopc/kitchenos/internal/menu"
)

const (
	tokenTTL = 7 * 24 * time.Hour
	otpTTL   = 10 * time.Minute
)

type account struct {
	user         api.User
	passwordHash []byte
	mealTimes    []menu.MealType
	allergies    []api.Allergy
}

type resetCode struct {
	hash    []byte
	expires time.Time
}

// Server is an in-memory stand-in for the Kitchen OS backend. It keeps
// everything in maps guarded by one mutex and forgets it all on exit.
type Server struct {
	mu       sync.Mutex
	secret   []byte
	now      func() time.Time
	accounts map[string]*account // by user ID
	emails   map[string]string   // email -> user ID
	families map[string]*api.Family
	menus    map[string]*menu.Menu // by family ID
	resets   map[string]resetCode  // by email
	revoked  map[string]time.Time  // token ID -> expiry

	app *fiber.App
}

func New(secret []byte) *Server {
	s := &Server{
		secret:   secret,
		now:      time.Now,
		accounts: make(map[string]*account),
		emails:   make(map[string]string),
		families: make(map[string]*api.Family),
		menus:    make(map[string]*menu.Menu),
		resets:   make(map[string]resetCode),
		revoked:  make(map[string]time.Time),
	}
	s.app = s.newApp()
	return s
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Kitchen OS dev",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{Output: log.Writer()}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	auth := app.Group("/auth")
	auth.Post("/register", s.Register)
	auth.Post("/login", s.Login)
	auth.Post("/logout", s.AuthRequired, s.Logout)
	auth.Post("/password-reset/request", s.RequestPasswordReset)
	auth.Post("/password-reset/confirm", s.ConfirmPasswordReset)
	auth.Post("/complete-profile", s.AuthRequired, s.CompleteProfile)
	auth.Post("/register-via-invite/:token", s.RegisterViaInvite)

	m := app.Group("/menu", s.AuthRequired)
	m.Get("/current", s.CurrentMenu)
	m.Post("/generate", s.GenerateMenu)
	m.Patch("/meals/:id/status", s.UpdateMealStatus)

	profile := app.Group("/profile", s.AuthRequired)
	profile.Get("", s.Profile)
	profile.Get("/family", s.FamilyInfo)

	return app
}

// Start listens on addr and serves in the background. It returns the base
// URL clients should use.
func (s *Server) Start(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("listen %s: %w", addr, err)
	}
	go func() {
		if err := s.app.Listener(ln); err != nil {
			log.Printf("devserver: %v", err)
		}
	}()
	baseURL := "http://" + ln.Addr().String()
	log.Printf("devserver: listening on %s", baseURL)
	return baseURL, nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// apiError writes the backend's error shape: {"statusCode": n, "message": "..."}.
func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"statusCode": status,
		"message":    message,
	})
}

// validationError reports several field problems at once, as a message array.
func validationError(c *fiber.Ctx, messages []string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"statusCode": fiber.StatusBadRequest,
		"message":    messages,
	})
}

func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		status = e.Code
	}
	return apiError(c, status, err.Error())
}

func timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
