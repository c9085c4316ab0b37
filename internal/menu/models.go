package menu

// MealType is one of the four daily meal slots.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Snack     MealType = "snack"
	Dinner    MealType = "dinner"
)

// MealOrder is the fixed order of slots within a day.
var MealOrder = []MealType{Breakfast, Lunch, Snack, Dinner}

type MealStatus string

const (
	StatusPending     MealStatus = "pending"
	StatusCooking     MealStatus = "cooking"
	StatusCompleted   MealStatus = "completed"
	StatusSkipped     MealStatus = "skipped"
	StatusAutoSkipped MealStatus = "auto_skipped"
)

type MeasurementUnit string

const (
	UnitKilogram   MeasurementUnit = "kg"
	UnitGram       MeasurementUnit = "g"
	UnitLiter      MeasurementUnit = "l"
	UnitMilliliter MeasurementUnit = "ml"
	UnitPiece      MeasurementUnit = "piece"
)

type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ImageURL *string `json:"imageUrl"`
}

type RecipeIngredient struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Quantity  float64         `json:"quantity"`
	Unit      MeasurementUnit `json:"unit"`
	Product   *Product        `json:"product,omitempty"`
}

type Recipe struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Description  *string            `json:"description"`
	CookingTime  *int               `json:"cookingTime"` // minutes
	Servings     int                `json:"servings"`
	Calories     *float64           `json:"calories"`
	Protein      *float64           `json:"protein"`
	Fats         *float64           `json:"fats"`
	Carbs        *float64           `json:"carbs"`
	Instructions any                `json:"instructions"`
	ImageURL     *string            `json:"imageUrl"`
	Ingredients  []RecipeIngredient `json:"ingredients"`
}

type Meal struct {
	ID             string     `json:"id"`
	DayID          string     `json:"dayId"`
	FamilyMemberID *string    `json:"familyMemberId"`
	MealType       MealType   `json:"mealType"`
	Status         MealStatus `json:"status"`
	ScheduledTime  *string    `json:"scheduledTime"`
	CompletedAt    *string    `json:"completedAt"`
	Recipe         *Recipe    `json:"recipe,omitempty"`
}

// Day holds the meals of one calendar date. Meals are not guaranteed to be
// in slot order.
type Day struct {
	ID        string `json:"id"`
	MenuID    string `json:"menuId"`
	Date      string `json:"date"`
	DayNumber int    `json:"dayNumber"`
	Meals     []Meal `json:"meals"`
}

type Menu struct {
	ID        string `json:"id"`
	FamilyID  string `json:"familyId"`
	WeekStart string `json:"weekStart"`
	WeekEnd   string `json:"weekEnd"`
	IsActive  bool   `json:"isActive"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
	Days      []Day  `json:"days"`
}

// DateKey returns the YYYY-MM-DD part of the day's date.
func (d Day) DateKey() string {
	if len(d.Date) < 10 {
		return d.Date
	}
	return d.Date[:10]
}

// StatusCounts tallies meal statuses for the day.
func (d Day) StatusCounts() map[MealStatus]int {
	counts := make(map[MealStatus]int, 5)
	for _, m := range d.Meals {
		counts[m.Status]++
	}
	return counts
}

// Resolved reports whether the meal no longer needs attention.
func (s MealStatus) Resolved() bool {
	return s == StatusCompleted || s == StatusSkipped || s == StatusAutoSkipped
}
