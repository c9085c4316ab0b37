package api

import "github.com/sadopc/kitchenos/internal/menu"

type Goal string

const (
	GoalWeightLoss     Goal = "weight_loss"
	GoalWeightGain     Goal = "weight_gain"
	GoalHealthyEating  Goal = "healthy_eating"
	GoalMaintainWeight Goal = "maintain_weight"
)

var Goals = []Goal{GoalWeightLoss, GoalWeightGain, GoalHealthyEating, GoalMaintainWeight}

type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGoogle AuthProvider = "google"
	ProviderApple  AuthProvider = "apple"
)

type SubscriptionTier string

const (
	TierFree      SubscriptionTier = "free"
	TierPro       SubscriptionTier = "pro"
	TierFamilyPro SubscriptionTier = "family_pro"
)

type Allergy string

var Allergies = []Allergy{
	"dairy", "eggs", "fish", "shellfish", "tree_nuts",
	"peanuts", "wheat", "soy", "sesame", "mustard",
	"celery", "lupin", "sulfites", "meat", "poultry", "honey",
}

type User struct {
	ID                    string           `json:"id"`
	Email                 string           `json:"email"`
	Name                  string           `json:"name"`
	Height                *float64         `json:"height"`
	Weight                *float64         `json:"weight"`
	Goal                  *Goal            `json:"goal"`
	IsFamilyHead          bool             `json:"isFamilyHead"`
	FamilyID              *string          `json:"familyId"`
	FamilyMemberID        *string          `json:"familyMemberId"`
	SubscriptionTier      SubscriptionTier `json:"subscriptionTier"`
	SubscriptionExpiresAt *string          `json:"subscriptionExpiresAt"`
	TrialEndsAt           *string          `json:"trialEndsAt"`
	AuthProvider          AuthProvider     `json:"authProvider"`
	CreatedAt             string           `json:"createdAt"`
	UpdatedAt             string           `json:"updatedAt"`
}

type AuthResponse struct {
	User            User   `json:"user"`
	AccessToken     string `json:"accessToken"`
	ExpiresIn       int    `json:"expiresIn"`
	NeedsOnboarding bool   `json:"needsOnboarding,omitempty"`
}

type SuccessResponse struct {
	OK bool `json:"ok"`
}

type FamilyMemberInput struct {
	Name      string          `json:"name"`
	MealTimes []menu.MealType `json:"mealTimes,omitempty"`
	Allergies []Allergy       `json:"allergies,omitempty"`
}

type RegisterPayload struct {
	Email         string              `json:"email"`
	Password      string              `json:"password"`
	Name          string              `json:"name"`
	Height        *float64            `json:"height,omitempty"`
	Weight        *float64            `json:"weight,omitempty"`
	Goal          *Goal               `json:"goal,omitempty"`
	MealTimes     []menu.MealType     `json:"mealTimes"`
	Allergies     []Allergy           `json:"allergies"`
	WeeklyBudget  *float64            `json:"weeklyBudget,omitempty"`
	FamilyMembers []FamilyMemberInput `json:"familyMembers,omitempty"`
}

type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RequestPasswordResetPayload struct {
	Email string `json:"email"`
}

type ConfirmPasswordResetPayload struct {
	Email       string `json:"email"`
	OTPCode     string `json:"otpCode"`
	NewPassword string `json:"newPassword"`
}

type CompleteProfilePayload struct {
	Height        float64             `json:"height"`
	Weight        float64             `json:"weight"`
	Goal          Goal                `json:"goal"`
	MealTimes     []menu.MealType     `json:"mealTimes"`
	Allergies     []Allergy           `json:"allergies"`
	WeeklyBudget  *float64            `json:"weeklyBudget,omitempty"`
	FamilyMembers []FamilyMemberInput `json:"familyMembers,omitempty"`
}

type RegisterViaInvitePayload struct {
	Email     string          `json:"email"`
	Password  string          `json:"password"`
	Height    float64         `json:"height"`
	Weight    float64         `json:"weight"`
	Goal      Goal            `json:"goal"`
	MealTimes []menu.MealType `json:"mealTimes,omitempty"`
	Allergies []Allergy       `json:"allergies,omitempty"`
}

type FamilyMember struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	IsRegistered bool            `json:"isRegistered"`
	UserID       *string         `json:"userId"`
	MealTimes    []menu.MealType `json:"mealTimes"`
	Allergies    []Allergy       `json:"allergies"`
	InviteToken  string          `json:"inviteToken,omitempty"`
}

type Family struct {
	ID                string         `json:"id"`
	WeeklyBudget      *float64       `json:"weeklyBudget"`
	BudgetUsed        float64        `json:"budgetUsed"`
	BudgetPeriodStart *string        `json:"budgetPeriodStart"`
	BudgetPeriodEnd   *string        `json:"budgetPeriodEnd"`
	CreatedAt         string         `json:"createdAt"`
	Members           []FamilyMember `json:"members"`
}

type FamilyInfoResponse struct {
	Family *Family `json:"family"`
}

// Budget returns the family's weekly budget snapshot.
func (f *Family) Budget() menu.Budget {
	if f == nil {
		return menu.Budget{}
	}
	return menu.Budget{Weekly: f.WeeklyBudget, Used: f.BudgetUsed}
}

// BudgetPeriod returns the budget period bounds, "" when absent.
func (f *Family) BudgetPeriod() (string, string) {
	if f == nil {
		return "", ""
	}
	var start, end string
	if f.BudgetPeriodStart != nil {
		start = *f.BudgetPeriodStart
	}
	if f.BudgetPeriodEnd != nil {
		end = *f.BudgetPeriodEnd
	}
	return start, end
}
