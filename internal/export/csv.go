package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/kitchenos/internal/menu"
)

var csvHeader = []string{"Date", "Meal", "Status", "Recipe", "Cooking time (min)", "Calories"}

func ToCSV(m *menu.Menu, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range rows(m) {
		row := []string{
			r.Date,
			r.Meal,
			r.Status,
			r.Recipe,
			optionalInt(r.CookingTime),
			optionalFloat(r.Calories),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// row is one exported meal.
type row struct {
	Date        string   `json:"date"`
	MealType    string   `json:"meal_type"`
	Meal        string   `json:"meal"`
	Status      string   `json:"status"`
	Recipe      string   `json:"recipe,omitempty"`
	CookingTime *int     `json:"cooking_time_min,omitempty"`
	Calories    *float64 `json:"calories,omitempty"`
}

// rows flattens the menu in day order, meals in slot order within a day.
func rows(m *menu.Menu) []row {
	if m == nil {
		return nil
	}
	var out []row
	for _, d := range m.Days {
		for _, mt := range menu.MealOrder {
			for _, meal := range d.Meals {
				if meal.MealType != mt {
					continue
				}
				r := row{
					Date:     d.DateKey(),
					MealType: string(meal.MealType),
					Meal:     menu.MealTypeLabel(meal.MealType),
					Status:   menu.MealStatusLabel(meal.Status),
				}
				if meal.Recipe != nil {
					r.Recipe = meal.Recipe.Name
					r.CookingTime = meal.Recipe.CookingTime
					r.Calories = meal.Recipe.Calories
				}
				out = append(out, r)
			}
		}
	}
	return out
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
