package devserver

import (
	"fmt"

	"github.com/sadopc/kitchenos/internal/api"
	"github.com/sadopc/kitchenos/internal/menu"
)

// Seed creates a ready-to-use account with a family, one invited member and
// a generated menu for the current week.
func (s *Server) Seed(email, password, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[email]; taken {
		return fmt.Errorf("seed: %s already exists", email)
	}
	acc, err := s.createAccount(email, password, name)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	height, weight, goal := 172.0, 68.0, api.GoalHealthyEating
	acc.user.Height = &height
	acc.user.Weight = &weight
	acc.user.Goal = &goal
	acc.mealTimes = []menu.MealType{menu.Breakfast, menu.Lunch, menu.Snack, menu.Dinner}

	budget := 120.0
	s.createFamily(acc, &budget, []api.FamilyMemberInput{
		{Name: "Sam", MealTimes: []menu.MealType{menu.Breakfast, menu.Dinner}},
	})

	fam := s.families[*acc.user.FamilyID]
	m := generateWeek(fam, s.now())
	s.menus[fam.ID] = m
	fam.BudgetPeriodStart = &m.WeekStart
	fam.BudgetPeriodEnd = &m.WeekEnd
	return nil
}
