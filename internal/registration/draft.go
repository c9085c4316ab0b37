package registration

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sadopc/kitchenos/internal/api"
	"github.com/sadopc/kitchenos/internal/auth"
	"github.com/sadopc/kitchenos/internal/menu"
)

var (
	ErrIncomplete      = errors.New("registration is missing required fields")
	ErrHeightRange     = errors.New("height must be between 120 and 220 cm")
	ErrWeightRange     = errors.New("weight must be between 30 and 200 kg")
	ErrGoalRequired    = errors.New("choose a goal")
	ErrNoMealTimes     = errors.New("choose at least one meal")
	ErrBudgetInvalid   = errors.New("budget must be greater than 0")
	ErrMemberNotFound  = errors.New("family member not found")
	ErrMemberNameEmpty = errors.New("enter the member's name")
)

const (
	MinHeight = 120
	MaxHeight = 220
	MinWeight = 30
	MaxWeight = 200
)

// DefaultMealTimes are preselected for a new registration.
var DefaultMealTimes = []menu.MealType{menu.Breakfast, menu.Lunch, menu.Dinner}

type FamilyMember struct {
	ID        string
	Name      string
	MealTimes []menu.MealType
	Allergies []api.Allergy
}

// Draft accumulates the four registration steps until a single submission.
// It is owned by whoever created it; nothing here is shared globally.
type Draft struct {
	// Step 1
	Name     string
	Email    string
	Password string

	// Step 2
	Height *float64
	Weight *float64
	Goal   *api.Goal

	// Step 3
	MealTimes     []menu.MealType
	Allergies     []api.Allergy
	FamilyMembers []FamilyMember

	// Step 4
	WeeklyBudget *float64
}

func NewDraft() *Draft {
	d := &Draft{}
	d.Reset()
	return d
}

// Reset restores the initial state.
func (d *Draft) Reset() {
	*d = Draft{
		MealTimes: slices.Clone(DefaultMealTimes),
		Allergies: []api.Allergy{},
	}
}

func (d *Draft) SetStep1(name, email, password string) {
	d.Name = strings.TrimSpace(name)
	d.Email = auth.NormalizeEmail(email)
	d.Password = password
}

func (d *Draft) SetStep2(height, weight float64, goal api.Goal) {
	d.Height = &height
	d.Weight = &weight
	d.Goal = &goal
}

func (d *Draft) SetStep3(mealTimes []menu.MealType, allergies []api.Allergy, members []FamilyMember) {
	d.MealTimes = slices.Clone(mealTimes)
	d.Allergies = slices.Clone(allergies)
	d.FamilyMembers = slices.Clone(members)
}

func (d *Draft) SetStep4(weeklyBudget *float64) {
	d.WeeklyBudget = weeklyBudget
}

// AddFamilyMember appends a member with a fresh ID and returns it.
func (d *Draft) AddFamilyMember(name string, mealTimes []menu.MealType, allergies []api.Allergy) (FamilyMember, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return FamilyMember{}, ErrMemberNameEmpty
	}
	m := FamilyMember{
		ID:        uuid.NewString(),
		Name:      name,
		MealTimes: slices.Clone(mealTimes),
		Allergies: slices.Clone(allergies),
	}
	d.FamilyMembers = append(d.FamilyMembers, m)
	return m, nil
}

func (d *Draft) UpdateFamilyMember(id, name string, mealTimes []menu.MealType, allergies []api.Allergy) error {
	i := slices.IndexFunc(d.FamilyMembers, func(m FamilyMember) bool { return m.ID == id })
	if i < 0 {
		return ErrMemberNotFound
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrMemberNameEmpty
	}
	d.FamilyMembers[i] = FamilyMember{
		ID:        id,
		Name:      name,
		MealTimes: slices.Clone(mealTimes),
		Allergies: slices.Clone(allergies),
	}
	return nil
}

func (d *Draft) DeleteFamilyMember(id string) {
	d.FamilyMembers = slices.DeleteFunc(d.FamilyMembers, func(m FamilyMember) bool { return m.ID == id })
}

// Payload builds the register request. Goal, height and weight are required.
func (d *Draft) Payload() (api.RegisterPayload, error) {
	if d.Goal == nil || d.Height == nil || d.Weight == nil {
		return api.RegisterPayload{}, ErrIncomplete
	}

	p := api.RegisterPayload{
		Email:        d.Email,
		Password:     d.Password,
		Name:         d.Name,
		Height:       d.Height,
		Weight:       d.Weight,
		Goal:         d.Goal,
		MealTimes:    slices.Clone(d.MealTimes),
		Allergies:    slices.Clone(d.Allergies),
		WeeklyBudget: d.WeeklyBudget,
	}
	if p.Allergies == nil {
		p.Allergies = []api.Allergy{}
	}
	for _, m := range d.FamilyMembers {
		p.FamilyMembers = append(p.FamilyMembers, api.FamilyMemberInput{
			Name:      m.Name,
			MealTimes: m.MealTimes,
			Allergies: m.Allergies,
		})
	}
	return p, nil
}

// Validate checks every step.
func (d *Draft) Validate() error {
	if err := auth.ValidateName(d.Name); err != nil {
		return fmt.Errorf("step 1: %w", err)
	}
	if err := auth.ValidateEmail(d.Email); err != nil {
		return fmt.Errorf("step 1: %w", err)
	}
	if err := auth.ValidatePassword(d.Password); err != nil {
		return fmt.Errorf("step 1: %w", err)
	}
	if d.Goal == nil {
		return fmt.Errorf("step 2: %w", ErrGoalRequired)
	}
	if d.Height == nil || ValidateHeight(*d.Height) != nil {
		return fmt.Errorf("step 2: %w", ErrHeightRange)
	}
	if d.Weight == nil || ValidateWeight(*d.Weight) != nil {
		return fmt.Errorf("step 2: %w", ErrWeightRange)
	}
	if err := ValidateMealTimes(d.MealTimes); err != nil {
		return fmt.Errorf("step 3: %w", err)
	}
	if d.WeeklyBudget != nil && !(*d.WeeklyBudget > 0 && !math.IsInf(*d.WeeklyBudget, 0)) {
		return fmt.Errorf("step 4: %w", ErrBudgetInvalid)
	}
	return nil
}

func ValidateHeight(cm float64) error {
	if !(cm >= MinHeight && cm <= MaxHeight) {
		return ErrHeightRange
	}
	return nil
}

func ValidateWeight(kg float64) error {
	if !(kg >= MinWeight && kg <= MaxWeight) {
		return ErrWeightRange
	}
	return nil
}

func ValidateMealTimes(mt []menu.MealType) error {
	if len(mt) == 0 {
		return ErrNoMealTimes
	}
	return nil
}

// ParseNumber parses a form field such as "172" or "64,5".
func ParseNumber(raw string) (float64, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	return v, nil
}

// ParseBudget parses the optional weekly budget field. Empty means no budget.
func ParseBudget(raw string) (*float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, err := ParseNumber(raw)
	if err != nil || v <= 0 {
		return nil, ErrBudgetInvalid
	}
	return &v, nil
}
