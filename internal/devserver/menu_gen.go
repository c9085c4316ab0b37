package devserver

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/kitchenos/internal/api"
	"github.com/sadopc/kitchenos/internal/menu"
)

type dish struct {
	name     string
	minutes  int
	calories float64
	cost     float64
	items    []string
}

// catalog is the fixed recipe rotation per slot.
var catalog = map[menu.MealType][]dish{
	menu.Breakfast: {
		{"Oatmeal with berries", 10, 320, 2.5, []string{"Oats", "Milk", "Blueberries"}},
		{"Syrniki with sour cream", 25, 410, 3.2, []string{"Cottage cheese", "Eggs", "Flour", "Sour cream"}},
		{"Scrambled eggs on toast", 12, 380, 2.1, []string{"Eggs", "Bread", "Butter"}},
		{"Buckwheat porridge", 20, 300, 1.4, []string{"Buckwheat", "Milk"}},
	},
	menu.Lunch: {
		{"Borscht", 90, 350, 4.8, []string{"Beetroot", "Cabbage", "Potatoes", "Beef"}},
		{"Chicken noodle soup", 45, 310, 3.9, []string{"Chicken", "Noodles", "Carrots"}},
		{"Lentil stew", 40, 420, 2.6, []string{"Lentils", "Onion", "Tomatoes"}},
	},
	menu.Snack: {
		{"Apple with peanut butter", 3, 210, 1.1, []string{"Apple", "Peanut butter"}},
		{"Greek yogurt with honey", 2, 180, 1.5, []string{"Greek yogurt", "Honey"}},
		{"Carrot sticks and hummus", 5, 160, 1.3, []string{"Carrots", "Hummus"}},
	},
	menu.Dinner: {
		{"Baked salmon with rice", 35, 560, 7.9, []string{"Salmon", "Rice", "Lemon"}},
		{"Chicken cutlets with mashed potatoes", 50, 620, 5.4, []string{"Chicken", "Potatoes", "Milk"}},
		{"Vegetable stir-fry", 25, 430, 3.7, []string{"Peppers", "Broccoli", "Rice", "Soy sauce"}},
		{"Varenyky with potatoes", 60, 540, 3.1, []string{"Flour", "Potatoes", "Onion"}},
	},
}

// weekBounds returns midnight of the Monday starting now's week and the
// following Sunday, both in now's location.
func weekBounds(now time.Time) (time.Time, time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 6)
}

// dateStamp renders a local calendar date in the backend's timestamp form.
func dateStamp(t time.Time) string {
	return t.Format("2006-01-02") + "T00:00:00.000Z"
}

// familyMealTimes is the union of every member's meal times in slot order.
func familyMealTimes(fam *api.Family) []menu.MealType {
	var out []menu.MealType
	for _, mt := range menu.MealOrder {
		for _, m := range fam.Members {
			if slices.Contains(m.MealTimes, mt) {
				out = append(out, mt)
				break
			}
		}
	}
	if len(out) == 0 {
		out = []menu.MealType{menu.Breakfast, menu.Lunch, menu.Dinner}
	}
	return out
}

// generateWeek builds a seven-day menu for fam starting on now's Monday.
func generateWeek(fam *api.Family, now time.Time) *menu.Menu {
	start, end := weekBounds(now)
	stamp := timestamp(now)
	m := &menu.Menu{
		ID:        uuid.NewString(),
		FamilyID:  fam.ID,
		WeekStart: dateStamp(start),
		WeekEnd:   dateStamp(end),
		IsActive:  true,
		CreatedAt: stamp,
		UpdatedAt: stamp,
	}

	slots := familyMealTimes(fam)
	for i := range 7 {
		date := start.AddDate(0, 0, i)
		day := menu.Day{
			ID:        uuid.NewString(),
			MenuID:    m.ID,
			Date:      dateStamp(date),
			DayNumber: i + 1,
		}
		for j, mt := range slots {
			dishes := catalog[mt]
			d := dishes[(i+j)%len(dishes)]
			day.Meals = append(day.Meals, menu.Meal{
				ID:       uuid.NewString(),
				DayID:    day.ID,
				MealType: mt,
				Status:   menu.StatusPending,
				Recipe:   d.recipe(),
			})
		}
		m.Days = append(m.Days, day)
	}
	return m
}

func (d dish) recipe() *menu.Recipe {
	minutes, calories := d.minutes, d.calories
	r := &menu.Recipe{
		ID:          uuid.NewString(),
		Name:        d.name,
		CookingTime: &minutes,
		Servings:    2,
		Calories:    &calories,
	}
	for _, item := range d.items {
		p := &menu.Product{ID: uuid.NewString(), Name: item}
		r.Ingredients = append(r.Ingredients, menu.RecipeIngredient{
			ID:        uuid.NewString(),
			ProductID: p.ID,
			Quantity:  1,
			Unit:      menu.UnitPiece,
			Product:   p,
		})
	}
	return r
}

// dishCost looks up the estimated cost of a recipe by name.
func dishCost(name string) float64 {
	for _, dishes := range catalog {
		for _, d := range dishes {
			if d.name == name {
				return d.cost
			}
		}
	}
	return 0
}

// autoSkipPast marks pending meals on days before today as auto-skipped.
func autoSkipPast(m *menu.Menu, now time.Time) {
	today := now.Format("2006-01-02")
	for i := range m.Days {
		if m.Days[i].DateKey() >= today {
			continue
		}
		for j := range m.Days[i].Meals {
			if m.Days[i].Meals[j].Status == menu.StatusPending {
				m.Days[i].Meals[j].Status = menu.StatusAutoSkipped
			}
		}
	}
}
