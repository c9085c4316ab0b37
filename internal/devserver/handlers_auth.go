package devserver

import (
	"log"
	"slices"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sadopc/kitchenos/internal/api"
	"github.com/sadopc/kitchenos/internal/auth"
	"github.com/sadopc/kitchenos/internal/menu"
	"github.com/sadopc/kitchenos/internal/registration"
	"golang.org/x/crypto/bcrypt"
)

func (s *Server) Register(c *fiber.Ctx) error {
	var p api.RegisterPayload
	if err := c.BodyParser(&p); err != nil {
		return apiError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	p.Email = auth.NormalizeEmail(p.Email)
	if problems := validateRegister(p); len(problems) > 0 {
		return validationError(c, problems)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[p.Email]; taken {
		return apiError(c, fiber.StatusConflict, "User with this email already exists")
	}

	acc, err := s.createAccount(p.Email, p.Password, p.Name)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "Failed to secure password")
	}
	acc.user.Height = p.Height
	acc.user.Weight = p.Weight
	acc.user.Goal = p.Goal
	acc.mealTimes = slices.Clone(p.MealTimes)
	acc.allergies = slices.Clone(p.Allergies)
	s.createFamily(acc, p.WeeklyBudget, p.FamilyMembers)

	return s.respondAuth(c, fiber.StatusCreated, acc, false)
}

func (s *Server) Login(c *fiber.Ctx) error {
	var p api.LoginPayload
	if err := c.BodyParser(&p); err != nil {
		return apiError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.emails[auth.NormalizeEmail(p.Email)]
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "Invalid email or password")
	}
	acc := s.accounts[id]
	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(p.Password)); err != nil {
		return apiError(c, fiber.StatusUnauthorized, "Invalid email or password")
	}
	return s.respondAuth(c, fiber.StatusOK, acc, acc.user.FamilyID == nil)
}

// Logout revokes the presented token.
func (s *Server) Logout(c *fiber.Ctx) error {
	id, _ := c.Locals("tokenID").(string)
	exp, _ := c.Locals("tokenExpires").(time.Time)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneRevoked(s.now())
	if id != "" {
		s.revoked[id] = exp
	}
	return c.JSON(api.SuccessResponse{OK: true})
}

// RequestPasswordReset answers ok for any address so accounts cannot be
// probed. Known addresses get a code in the server log.
func (s *Server) RequestPasswordReset(c *fiber.Ctx) error {
	var p api.RequestPasswordResetPayload
	if err := c.BodyParser(&p); err != nil {
		return apiError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	email := auth.NormalizeEmail(p.Email)
	if err := auth.ValidateEmail(email); err != nil {
		return validationError(c, []string{"email must be an email"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.emails[email]; ok {
		code, err := newOTP()
		if err != nil {
			return apiError(c, fiber.StatusInternalServerError, "Failed to create code")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
		if err != nil {
			return apiError(c, fiber.StatusInternalServerError, "Failed to create code")
		}
		s.resets[email] = resetCode{hash: hash, expires: s.now().Add(otpTTL)}
		log.Printf("devserver: password reset code for %s: %s", email, code)
	}
	return c.JSON(api.SuccessResponse{OK: true})
}

func (s *Server) ConfirmPasswordReset(c *fiber.Ctx) error {
	var p api.ConfirmPasswordResetPayload
	if err := c.BodyParser(&p); err != nil {
		return apiError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	email := auth.NormalizeEmail(p.Email)
	if auth.ValidateOTP(p.OTPCode) != nil {
		return apiError(c, fiber.StatusBadRequest, "Invalid or expired code")
	}
	if auth.ValidatePassword(p.NewPassword) != nil {
		return validationError(c, []string{"newPassword must be longer than or equal to 6 characters"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rc, ok := s.resets[email]
	if !ok || s.now().After(rc.expires) ||
		bcrypt.CompareHashAndPassword(rc.hash, []byte(p.OTPCode)) != nil {
		return apiError(c, fiber.StatusBadRequest, "Invalid or expired code")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(p.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "Failed to secure password")
	}
	s.accounts[s.emails[email]].passwordHash = hash
	delete(s.resets, email)
	return c.JSON(api.SuccessResponse{OK: true})
}

// CompleteProfile fills in body metrics for accounts created without them
// and sets up a family when there is none.
func (s *Server) CompleteProfile(c *fiber.Ctx) error {
	var p api.CompleteProfilePayload
	if err := c.BodyParser(&p); err != nil {
		return apiError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if problems := validateMetrics(p.Height, p.Weight, p.Goal, p.MealTimes, p.WeeklyBudget); len(problems) > 0 {
		return validationError(c, problems)
	}

	acc := currentAccount(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	height, weight, goal := p.Height, p.Weight, p.Goal
	acc.user.Height = &height
	acc.user.Weight = &weight
	acc.user.Goal = &goal
	acc.user.UpdatedAt = timestamp(s.now())
	acc.mealTimes = slices.Clone(p.MealTimes)
	acc.allergies = slices.Clone(p.Allergies)
	if acc.user.FamilyID == nil {
		s.createFamily(acc, p.WeeklyBudget, p.FamilyMembers)
	}
	return s.respondAuth(c, fiber.StatusOK, acc, false)
}

// RegisterViaInvite creates an account bound to an existing family member.
func (s *Server) RegisterViaInvite(c *fiber.Ctx) error {
	token := c.Params("token")
	var p api.RegisterViaInvitePayload
	if err := c.BodyParser(&p); err != nil {
		return apiError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	p.Email = auth.NormalizeEmail(p.Email)

	var problems []string
	if auth.ValidateEmail(p.Email) != nil {
		problems = append(problems, "email must be an email")
	}
	if auth.ValidatePassword(p.Password) != nil {
		problems = append(problems, "password must be longer than or equal to 6 characters")
	}
	problems = append(problems, validateMetrics(p.Height, p.Weight, p.Goal, nil, nil)...)
	if len(problems) > 0 {
		return validationError(c, problems)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fam, member := s.findInvite(token)
	if member == nil {
		return apiError(c, fiber.StatusNotFound, "Invite not found or already used")
	}
	if _, taken := s.emails[p.Email]; taken {
		return apiError(c, fiber.StatusConflict, "User with this email already exists")
	}

	acc, err := s.createAccount(p.Email, p.Password, member.Name)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "Failed to secure password")
	}
	height, weight, goal := p.Height, p.Weight, p.Goal
	acc.user.Height = &height
	acc.user.Weight = &weight
	acc.user.Goal = &goal
	acc.user.FamilyID = &fam.ID
	acc.user.FamilyMemberID = &member.ID
	acc.mealTimes = slices.Clone(p.MealTimes)
	if len(acc.mealTimes) == 0 {
		acc.mealTimes = slices.Clone(member.MealTimes)
	}
	acc.allergies = slices.Clone(p.Allergies)

	member.IsRegistered = true
	member.UserID = &acc.user.ID
	member.InviteToken = ""

	return s.respondAuth(c, fiber.StatusCreated, acc, false)
}

func (s *Server) respondAuth(c *fiber.Ctx, status int, acc *account, needsOnboarding bool) error {
	token, expiresIn, err := s.issueToken(acc)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "Failed to create session")
	}
	return c.Status(status).JSON(api.AuthResponse{
		User:            acc.user,
		AccessToken:     token,
		ExpiresIn:       expiresIn,
		NeedsOnboarding: needsOnboarding,
	})
}

// createAccount must be called with s.mu held.
func (s *Server) createAccount(email, password, name string) (*account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := timestamp(s.now())
	acc := &account{
		user: api.User{
			ID:               uuid.NewString(),
			Email:            email,
			Name:             name,
			SubscriptionTier: api.TierFree,
			AuthProvider:     api.ProviderLocal,
			CreatedAt:        now,
			UpdatedAt:        now,
		},
		passwordHash: hash,
	}
	s.accounts[acc.user.ID] = acc
	s.emails[email] = acc.user.ID
	return acc, nil
}

// createFamily makes acc the head of a new family. Must be called with s.mu held.
func (s *Server) createFamily(acc *account, budget *float64, members []api.FamilyMemberInput) {
	start, end := weekBounds(s.now())
	startStr, endStr := timestamp(start), timestamp(end)
	fam := &api.Family{
		ID:                uuid.NewString(),
		WeeklyBudget:      budget,
		BudgetPeriodStart: &startStr,
		BudgetPeriodEnd:   &endStr,
		CreatedAt:         timestamp(s.now()),
	}
	head := api.FamilyMember{
		ID:           uuid.NewString(),
		Name:         acc.user.Name,
		IsRegistered: true,
		UserID:       &acc.user.ID,
		MealTimes:    slices.Clone(acc.mealTimes),
		Allergies:    slices.Clone(acc.allergies),
	}
	fam.Members = append(fam.Members, head)
	for _, m := range members {
		fam.Members = append(fam.Members, api.FamilyMember{
			ID:          uuid.NewString(),
			Name:        m.Name,
			MealTimes:   slices.Clone(m.MealTimes),
			Allergies:   slices.Clone(m.Allergies),
			InviteToken: uuid.NewString(),
		})
	}
	s.families[fam.ID] = fam

	acc.user.IsFamilyHead = true
	acc.user.FamilyID = &fam.ID
	acc.user.FamilyMemberID = &head.ID
}

func (s *Server) findInvite(token string) (*api.Family, *api.FamilyMember) {
	if token == "" {
		return nil, nil
	}
	for _, fam := range s.families {
		for i := range fam.Members {
			if fam.Members[i].InviteToken == token && !fam.Members[i].IsRegistered {
				return fam, &fam.Members[i]
			}
		}
	}
	return nil, nil
}

func validateRegister(p api.RegisterPayload) []string {
	var problems []string
	if auth.ValidateName(p.Name) != nil {
		problems = append(problems, "name must be longer than or equal to 2 characters")
	}
	if auth.ValidateEmail(p.Email) != nil {
		problems = append(problems, "email must be an email")
	}
	if auth.ValidatePassword(p.Password) != nil {
		problems = append(problems, "password must be longer than or equal to 6 characters")
	}
	if p.Height == nil || p.Weight == nil || p.Goal == nil {
		return append(problems, "height, weight and goal are required")
	}
	return append(problems, validateMetrics(*p.Height, *p.Weight, *p.Goal, p.MealTimes, p.WeeklyBudget)...)
}

// validateMetrics skips the meal-time check when mealTimes is nil.
func validateMetrics(height, weight float64, goal api.Goal, mealTimes []menu.MealType, budget *float64) []string {
	var problems []string
	if registration.ValidateHeight(height) != nil {
		problems = append(problems, registration.ErrHeightRange.Error())
	}
	if registration.ValidateWeight(weight) != nil {
		problems = append(problems, registration.ErrWeightRange.Error())
	}
	if !slices.Contains(api.Goals, goal) {
		problems = append(problems, "goal must be one of the following values: "+joinGoals())
	}
	if mealTimes != nil {
		if len(mealTimes) == 0 {
			problems = append(problems, registration.ErrNoMealTimes.Error())
		}
		for _, mt := range mealTimes {
			if !slices.Contains(menu.MealOrder, mt) {
				problems = append(problems, "unknown meal time "+string(mt))
			}
		}
	}
	if budget != nil && *budget <= 0 {
		problems = append(problems, registration.ErrBudgetInvalid.Error())
	}
	return problems
}

func joinGoals() string {
	out := ""
	for i, g := range api.Goals {
		if i > 0 {
			out += ", "
		}
		out += string(g)
	}
	return out
}
