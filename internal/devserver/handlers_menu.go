package devserver

import (
	"slices"

	"github.com/gofiber/fiber/v2"
	"github.com/sadopc/kitchenos/internal/menu"
)

var settableStatuses = []menu.MealStatus{
	menu.StatusPending,
	menu.StatusCooking,
	menu.StatusCompleted,
	menu.StatusSkipped,
}

func (s *Server) CurrentMenu(c *fiber.Ctx) error {
	acc := currentAccount(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	if acc.user.FamilyID == nil {
		return apiError(c, fiber.StatusNotFound, "No active menu")
	}
	m, ok := s.menus[*acc.user.FamilyID]
	if !ok {
		return apiError(c, fiber.StatusNotFound, "No active menu")
	}
	autoSkipPast(m, s.now())
	return c.JSON(m)
}

func (s *Server) GenerateMenu(c *fiber.Ctx) error {
	var body struct {
		FamilyID string `json:"familyId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return apiError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	acc := currentAccount(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	if acc.user.FamilyID == nil || *acc.user.FamilyID != body.FamilyID {
		return apiError(c, fiber.StatusForbidden, "You are not a member of this family")
	}
	fam := s.families[body.FamilyID]
	m := generateWeek(fam, s.now())
	s.menus[fam.ID] = m

	fam.BudgetUsed = 0
	fam.BudgetPeriodStart = &m.WeekStart
	fam.BudgetPeriodEnd = &m.WeekEnd

	return c.Status(fiber.StatusCreated).JSON(m)
}

func (s *Server) UpdateMealStatus(c *fiber.Ctx) error {
	var body struct {
		Status menu.MealStatus `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return apiError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if !slices.Contains(settableStatuses, body.Status) {
		return validationError(c, []string{"status must be one of the following values: pending, cooking, completed, skipped"})
	}
	acc := currentAccount(c)
	mealID := c.Params("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	if acc.user.FamilyID == nil {
		return apiError(c, fiber.StatusNotFound, "Meal not found")
	}
	m := s.menus[*acc.user.FamilyID]
	meal := findMeal(m, mealID)
	if meal == nil {
		return apiError(c, fiber.StatusNotFound, "Meal not found")
	}

	fam := s.families[*acc.user.FamilyID]
	wasCompleted := meal.Status == menu.StatusCompleted
	meal.Status = body.Status
	switch {
	case body.Status == menu.StatusCompleted && !wasCompleted:
		stamp := timestamp(s.now())
		meal.CompletedAt = &stamp
		if meal.Recipe != nil {
			fam.BudgetUsed += dishCost(meal.Recipe.Name)
		}
	case body.Status != menu.StatusCompleted && wasCompleted:
		meal.CompletedAt = nil
		if meal.Recipe != nil {
			fam.BudgetUsed = max(0, fam.BudgetUsed-dishCost(meal.Recipe.Name))
		}
	}
	m.UpdatedAt = timestamp(s.now())
	return c.JSON(meal)
}

func findMeal(m *menu.Menu, id string) *menu.Meal {
	if m == nil {
		return nil
	}
	for i := range m.Days {
		for j := range m.Days[i].Meals {
			if m.Days[i].Meals[j].ID == id {
				return &m.Days[i].Meals[j]
			}
		}
	}
	return nil
}
