package tui

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/kitchenos/internal/api"
	"github.com/sadopc/kitchenos/internal/auth"
	"github.com/sadopc/kitchenos/internal/devserver"
	"github.com/sadopc/kitchenos/internal/menu"
	"github.com/sadopc/kitchenos/internal/store"
)

// Wednesday lunchtime.
var fixedNow = time.Date(2024, 3, 6, 13, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestDeps(t *testing.T) Deps {
	t.Helper()
	s := newTestStore(t)
	session := auth.NewSession(s)
	return Deps{
		Store:   s,
		Client:  api.NewClient("http://127.0.0.1:1", time.Second, session),
		Session: session,
		Now:     func() time.Time { return fixedNow },
	}
}

func signedInDeps(t *testing.T) Deps {
	t.Helper()
	d := newTestDeps(t)
	familyID := "fam-1"
	err := d.Session.SignIn(&api.AuthResponse{
		AccessToken: "tok",
		User:        api.User{ID: "u1", Name: "olena", Email: "o@example.com", FamilyID: &familyID, IsFamilyHead: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func ptr[T any](v T) *T { return &v }

func testMeal(id string, mt menu.MealType, status menu.MealStatus, recipe string) menu.Meal {
	return menu.Meal{
		ID:       id,
		MealType: mt,
		Status:   status,
		Recipe: &menu.Recipe{
			Name:        recipe,
			CookingTime: ptr(35),
			Calories:    ptr(520.0),
			Servings:    2,
			Ingredients: []menu.RecipeIngredient{
				{ProductID: "p1", Quantity: 0.5, Unit: menu.UnitKilogram, Product: &menu.Product{Name: "Beetroot"}},
			},
		},
	}
}

func testMenu() *menu.Menu {
	return &menu.Menu{
		ID:        "menu-1",
		WeekStart: "2024-03-04T00:00:00.000Z",
		WeekEnd:   "2024-03-10T00:00:00.000Z",
		Days: []menu.Day{
			{ID: "d1", Date: "2024-03-05T00:00:00.000Z", Meals: []menu.Meal{
				testMeal("m1", menu.Breakfast, menu.StatusAutoSkipped, "Oatmeal"),
			}},
			{ID: "d2", Date: "2024-03-06T00:00:00.000Z", Meals: []menu.Meal{
				testMeal("m3", menu.Dinner, menu.StatusPending, "Varenyky"),
				testMeal("m2", menu.Lunch, menu.StatusPending, "Borscht"),
				testMeal("m4", menu.Breakfast, menu.StatusPending, "Syrniki"),
			}},
		},
	}
}

func keyPress(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// ============================================================
// App model
// ============================================================

func TestNewApp(t *testing.T) {
	app := NewApp(newTestDeps(t))

	if app.gate != gateWelcome {
		t.Fatal("signed-out app should start on the welcome screen")
	}
	if app.activeView != viewHome {
		t.Fatal("default view should be home")
	}
	if app.showHelp || app.exportPicking {
		t.Fatal("help and export picker should be hidden by default")
	}
}

func TestNewAppSignedIn(t *testing.T) {
	app := NewApp(signedInDeps(t))
	if app.gate != gateMain {
		t.Fatal("a stored token should skip the welcome screen")
	}
	if app.isFormActive() {
		t.Fatal("no forms should be active initially")
	}
}

func TestAppLoadingState(t *testing.T) {
	app := NewApp(newTestDeps(t))
	// Width 0 means not yet sized
	if out := app.View(); out != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", out)
	}
}

func TestAppViewStates(t *testing.T) {
	app := NewApp(signedInDeps(t))
	model, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	app = model.(App)

	for _, v := range []viewState{viewHome, viewWeek, viewProfile, viewSettings} {
		app.activeView = v
		if app.View() == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	app := NewApp(signedInDeps(t))
	app.width = 120
	app.height = 40

	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
	if !strings.Contains(header, "O") {
		t.Fatal("header should show the avatar letter")
	}
}

func TestAppStatusMessage(t *testing.T) {
	app := NewApp(signedInDeps(t))
	app.width = 120
	app.height = 40

	model, _ := app.Update(statusMsg{text: "test status"})
	app = model.(App)
	if !strings.Contains(app.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppTabKeys(t *testing.T) {
	app := NewApp(signedInDeps(t))
	model, _ := app.Update(keyPress("2"))
	app = model.(App)
	if app.activeView != viewWeek {
		t.Fatalf("expected week, got %d", app.activeView)
	}
	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyTab})
	app = model.(App)
	if app.activeView != viewProfile {
		t.Fatalf("tab should advance to profile, got %d", app.activeView)
	}
}

func TestAppSessionExpired(t *testing.T) {
	d := signedInDeps(t)
	app := NewApp(d)

	model, _ := app.Update(sessionExpiredMsg{})
	app = model.(App)
	if app.gate != gateWelcome {
		t.Fatal("expired session should return to the welcome screen")
	}
	if d.Session.SignedIn() {
		t.Fatal("session should be cleared")
	}
	if !app.statusErr || !strings.Contains(app.status, "expired") {
		t.Fatalf("status = %q", app.status)
	}
}

func TestAppSignedInNeedsOnboarding(t *testing.T) {
	app := NewApp(newTestDeps(t))
	app.width, app.height = 120, 40

	model, _ := app.Update(signedInMsg{resp: &api.AuthResponse{
		AccessToken:     "tok",
		User:            api.User{ID: "u1", Name: "Ann"},
		NeedsOnboarding: true,
	}})
	app = model.(App)
	if app.gate != gateWelcome || app.welcome.stage != stageOnboarding {
		t.Fatal("a user without a family should be sent to onboarding")
	}
	if app.welcome.form == nil {
		t.Fatal("onboarding form should be shown")
	}
}

func TestAppSignedIn(t *testing.T) {
	d := newTestDeps(t)
	app := NewApp(d)

	model, cmd := app.Update(signedInMsg{resp: &api.AuthResponse{
		AccessToken: "tok",
		User:        api.User{ID: "u1", Name: "Ann"},
	}})
	app = model.(App)
	if app.gate != gateMain {
		t.Fatal("sign in should open the main tabs")
	}
	if cmd == nil {
		t.Fatal("sign in should start loading data")
	}
	if d.Session.Token() != "tok" {
		t.Fatal("token should be stored")
	}
}

func TestAppBroadcastsMenu(t *testing.T) {
	app := NewApp(signedInDeps(t))
	model, _ := app.Update(menuLoadedMsg{menu: testMenu()})
	app = model.(App)
	if app.home.menu == nil || app.week.menu == nil {
		t.Fatal("menu should reach home and week")
	}
}

func TestAppSlotTick(t *testing.T) {
	app := NewApp(signedInDeps(t))
	_, cmd := app.Update(slotTickMsg(fixedNow))
	if cmd == nil {
		t.Fatal("slot tick should reschedule and reload")
	}
}

func TestAppExportPicker(t *testing.T) {
	app := NewApp(signedInDeps(t))

	model, _ := app.Update(keyPress("x"))
	app = model.(App)
	if app.exportPicking {
		t.Fatal("export needs a loaded menu")
	}

	model, _ = app.Update(menuLoadedMsg{menu: testMenu()})
	app = model.(App)
	model, _ = app.Update(keyPress("x"))
	app = model.(App)
	if !app.exportPicking {
		t.Fatal("x should open the export picker")
	}
	model, _ = app.Update(keyPress("esc"))
	app = model.(App)
	if app.exportPicking {
		t.Fatal("esc should close the picker")
	}
}

func TestExportDir(t *testing.T) {
	s := newTestStore(t)
	if exportDir(s) == "" {
		t.Fatal("unset export dir should fall back to home")
	}
	s.SetSetting(store.SettingExportDir, "/tmp/menus")
	if got := exportDir(s); got != "/tmp/menus" {
		t.Fatalf("got %q", got)
	}
}

func TestDoExportWritesFile(t *testing.T) {
	d := signedInDeps(t)
	dir := t.TempDir()
	d.Store.SetSetting(store.SettingExportDir, dir)

	app := NewApp(d)
	app.home.menu = testMenu()
	msg := app.doExport(0)()
	done, ok := msg.(exportDoneMsg)
	if !ok {
		t.Fatalf("expected exportDoneMsg, got %#v", msg)
	}
	if !strings.HasPrefix(done.path, dir) || !strings.HasSuffix(done.path, "kitchenos-menu-2024-03-06.csv") {
		t.Fatalf("path = %q", done.path)
	}
}

// ============================================================
// Helpers
// ============================================================

func TestErrMsg(t *testing.T) {
	if _, ok := errMsg("Menu", &api.Error{Status: 401}).(sessionExpiredMsg); !ok {
		t.Fatal("401 should expire the session")
	}
	msg, ok := errMsg("Menu", &api.Error{Status: 500, Message: "boom"}).(statusMsg)
	if !ok || !msg.isError || msg.text != "Menu: boom" {
		t.Fatalf("got %#v", msg)
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		in   *int
		want string
	}{
		{nil, "—"},
		{ptr(25), "25 min"},
		{ptr(90), "1h 30m"},
	}
	for _, tt := range tests {
		if got := formatMinutes(tt.in); got != tt.want {
			t.Fatalf("formatMinutes = %q, want %q", got, tt.want)
		}
	}
}

func TestFormatCalories(t *testing.T) {
	if formatCalories(nil) != "—" {
		t.Fatal("nil calories")
	}
	if got := formatCalories(ptr(412.6)); got != "413 kcal" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatQuantity(t *testing.T) {
	if formatQuantity(2) != "2" || formatQuantity(0.5) != "0.5" {
		t.Fatal("unexpected quantity format")
	}
}

func TestApplyMealUpdate(t *testing.T) {
	m := testMenu()
	done := "2024-03-06T12:30:00.000Z"
	ok := applyMealUpdate(m, &menu.Meal{ID: "m2", Status: menu.StatusCompleted, CompletedAt: &done})
	if !ok {
		t.Fatal("meal should be found")
	}
	meal := m.Days[1].Meals[1]
	if meal.Status != menu.StatusCompleted || meal.CompletedAt == nil {
		t.Fatalf("not patched: %+v", meal)
	}
	if meal.Recipe == nil || meal.Recipe.Name != "Borscht" {
		t.Fatal("recipe should be kept when the update has none")
	}
	if applyMealUpdate(m, &menu.Meal{ID: "nope"}) {
		t.Fatal("unknown meal should not be found")
	}
	if applyMealUpdate(nil, &menu.Meal{ID: "m2"}) {
		t.Fatal("nil menu")
	}
}

func TestCloneMenuIsIndependent(t *testing.T) {
	m := testMenu()
	c := cloneMenu(m)
	done := "2024-03-06T12:30:00.000Z"
	applyMealUpdate(m, &menu.Meal{ID: "m2", Status: menu.StatusCompleted, CompletedAt: &done})

	meal := c.Days[1].Meals[1]
	if meal.Status != menu.StatusPending || meal.CompletedAt != nil {
		t.Fatalf("clone saw the update: %+v", meal)
	}
	if cloneMenu(nil) != nil {
		t.Fatal("nil menu")
	}
}

func TestDoExportSnapshotsMenu(t *testing.T) {
	d := signedInDeps(t)
	d.Store.SetSetting(store.SettingExportDir, t.TempDir())

	app := NewApp(d)
	app.home.menu = testMenu()
	cmd := app.doExport(1)
	applyMealUpdate(app.home.menu, &menu.Meal{ID: "m2", Status: menu.StatusCompleted})

	done, ok := cmd().(exportDoneMsg)
	if !ok {
		t.Fatal("expected exportDoneMsg")
	}
	data, err := os.ReadFile(done.path)
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Meals []struct {
			Recipe string `json:"recipe"`
			Status string `json:"status"`
		} `json:"meals"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, r := range out.Meals {
		if r.Recipe != "Borscht" {
			continue
		}
		found = true
		if r.Status != menu.MealStatusLabel(menu.StatusPending) {
			t.Fatalf("export picked up a later update: %q", r.Status)
		}
	}
	if !found {
		t.Fatal("lunch missing from export")
	}
}

func TestSortedMeals(t *testing.T) {
	got := sortedMeals(testMenu().Days[1].Meals)
	want := []menu.MealType{menu.Breakfast, menu.Lunch, menu.Dinner}
	for i, m := range got {
		if m.MealType != want[i] {
			t.Fatalf("position %d: %s", i, m.MealType)
		}
	}
}

func TestValidateAPIURL(t *testing.T) {
	for _, ok := range []string{"", "http://localhost:3000", " 'https://api.example.test/' "} {
		if err := validateAPIURL(ok); err != nil {
			t.Fatalf("%q should be valid: %v", ok, err)
		}
	}
	for _, bad := range []string{"localhost:3000", "ftp://x.test", "http://"} {
		if err := validateAPIURL(bad); err == nil {
			t.Fatalf("%q should be rejected", bad)
		}
	}
}

func TestAllergyLabel(t *testing.T) {
	if got := allergyLabel("tree_nuts"); got != "Tree nuts" {
		t.Fatalf("got %q", got)
	}
}

// ============================================================
// Home
// ============================================================

func newTestHome(t *testing.T) homeModel {
	t.Helper()
	h := newHomeModel(signedInDeps(t))
	h.setSize(100, 30)
	return h
}

func TestHomeCurrentMeal(t *testing.T) {
	h := newTestHome(t)
	h, _ = h.update(menuLoadedMsg{menu: testMenu()})

	meal := h.currentMeal()
	if meal == nil || meal.ID != "m2" {
		t.Fatalf("at 13:00 the lunch should be current, got %+v", meal)
	}
	out := h.view()
	if !strings.Contains(out, "Borscht") || !strings.Contains(out, "LUNCH") {
		t.Fatal("home should show the current meal")
	}

	h, _ = h.update(keyPress("enter"))
	if !strings.Contains(h.view(), "Beetroot") {
		t.Fatal("enter should reveal ingredients")
	}
}

func TestHomeNoMenu(t *testing.T) {
	h := newTestHome(t)
	h, _ = h.update(menuLoadedMsg{noMenu: true})
	if !strings.Contains(h.view(), "No menu for this week") {
		t.Fatal("expected no-menu card")
	}
	h, cmd := h.update(keyPress("g"))
	if !h.generating || cmd == nil {
		t.Fatal("g should start generating")
	}
}

func TestHomeAllDone(t *testing.T) {
	m := testMenu()
	for i := range m.Days[1].Meals {
		m.Days[1].Meals[i].Status = menu.StatusCompleted
	}
	h := newTestHome(t)
	h, _ = h.update(menuLoadedMsg{menu: m})
	if h.currentMeal() != nil {
		t.Fatal("nothing should be current")
	}
	if !strings.Contains(h.view(), "All done") {
		t.Fatal("expected all-done card")
	}
}

func TestHomeConfirmForm(t *testing.T) {
	h := newTestHome(t)
	h, _ = h.update(menuLoadedMsg{menu: testMenu()})

	h, _ = h.update(keyPress("s"))
	if !h.formActive || h.pendingMeal != "m2" || h.pendingStatus != menu.StatusSkipped {
		t.Fatal("s should ask to skip the current meal")
	}
	h, _ = h.update(keyPress("esc"))
	if h.formActive {
		t.Fatal("esc should cancel the confirmation")
	}
}

func TestHomeBudget(t *testing.T) {
	h := newTestHome(t)
	h, _ = h.update(familyLoadedMsg{family: &api.Family{
		ID:                "fam-1",
		WeeklyBudget:      ptr(100.0),
		BudgetUsed:        90,
		BudgetPeriodStart: ptr("2024-03-04T00:00:00.000Z"),
		BudgetPeriodEnd:   ptr("2024-03-10T00:00:00.000Z"),
	}})
	h, _ = h.update(menuLoadedMsg{menu: testMenu()})
	out := h.view()
	if !strings.Contains(out, "Running low") {
		t.Fatal("90 of 100 should be running low")
	}
	if !strings.Contains(out, "04.03") {
		t.Fatal("budget period should be shown")
	}

	h.family.WeeklyBudget = nil
	if !strings.Contains(h.view(), "No weekly budget") {
		t.Fatal("unset budget should say so")
	}
}

func TestHomeMealUpdated(t *testing.T) {
	h := newTestHome(t)
	h, _ = h.update(menuLoadedMsg{menu: testMenu()})
	h, cmd := h.update(mealUpdatedMsg{meal: &menu.Meal{ID: "m2", MealType: menu.Lunch, Status: menu.StatusCompleted}})
	if cmd == nil {
		t.Fatal("an update should reload the budget")
	}
	if cur := h.currentMeal(); cur == nil || cur.ID != "m3" {
		t.Fatal("dinner should be next once lunch is done")
	}
}

// ============================================================
// Week
// ============================================================

func TestWeekChart(t *testing.T) {
	wk := newWeekModel(signedInDeps(t))
	wk.setSize(100, 30)
	wk, _ = wk.update(menuLoadedMsg{menu: testMenu()})

	if wk.cursor != 1 {
		t.Fatalf("cursor should start on today, got %d", wk.cursor)
	}
	out := wk.view()
	if !strings.Contains(out, "Wed 06.03") || !strings.Contains(out, "(today)") {
		t.Fatal("week should list today's day")
	}
	if !strings.Contains(out, "Varenyky") {
		t.Fatal("selected day should list its meals")
	}

	wk, _ = wk.update(keyPress("up"))
	if wk.cursor != 0 {
		t.Fatal("up should move the cursor")
	}
	wk, _ = wk.update(keyPress("up"))
	if wk.cursor != 0 {
		t.Fatal("cursor should stop at the first day")
	}
}

func TestWeekNoMenu(t *testing.T) {
	wk := newWeekModel(signedInDeps(t))
	wk.setSize(100, 30)
	wk, _ = wk.update(menuLoadedMsg{noMenu: true})
	if !strings.Contains(wk.view(), "No menu") {
		t.Fatal("expected no-menu hint")
	}
}

// ============================================================
// Welcome and registration
// ============================================================

func TestWelcomeMenu(t *testing.T) {
	w := newWelcomeModel(newTestDeps(t))
	w.setSize(100, 30)

	w, _ = w.update(keyPress("down"))
	if w.cursor != 1 {
		t.Fatalf("cursor = %d", w.cursor)
	}
	w, _ = w.update(keyPress("enter"))
	if w.stage != stageRegister || w.register.form == nil {
		t.Fatal("second entry should open registration")
	}
	w, _ = w.update(keyPress("esc"))
	if w.stage != stageMenu {
		t.Fatal("esc should leave registration")
	}
}

func TestWelcomeAuthFailed(t *testing.T) {
	w := newWelcomeModel(newTestDeps(t))
	w.setSize(100, 30)
	w, _ = w.open(stageLogin)
	w.busy = true

	w, _ = w.update(authFailedMsg{text: "Invalid email or password"})
	if w.busy || w.form == nil || w.stage != stageLogin {
		t.Fatal("a failed login should show the form again")
	}
	if !strings.Contains(w.view(), "Invalid email or password") {
		t.Fatal("error should be shown")
	}
}

func TestWelcomeResetFlow(t *testing.T) {
	w := newWelcomeModel(newTestDeps(t))
	w.creds.email = "o@example.com"
	w.stage = stageResetRequest

	w, _ = w.update(resetRequestedMsg{})
	if w.stage != stageResetConfirm || w.form == nil {
		t.Fatal("should ask for the code next")
	}
	w, _ = w.update(resetConfirmedMsg{})
	if w.stage != stageLogin || !strings.Contains(w.info, "Password changed") {
		t.Fatal("should return to login after a reset")
	}
}

func TestRegisterMembers(t *testing.T) {
	r := newRegisterModel(newTestDeps(t))
	r.stage = regMembers
	r.draft.AddFamilyMember("Taras", []menu.MealType{menu.Lunch}, nil)
	r.draft.AddFamilyMember("Ann", nil, nil)

	r, _ = r.update(keyPress("down"))
	r, _ = r.update(keyPress("e"))
	if r.stage != regMemberForm || r.member.name != "Ann" || r.editingID == "" {
		t.Fatal("e should open the selected member for editing")
	}
	r, _ = r.update(keyPress("esc"))
	if r.stage != regMembers {
		t.Fatal("esc should return to the member list")
	}

	r, _ = r.update(keyPress("d"))
	if len(r.draft.FamilyMembers) != 1 || r.draft.FamilyMembers[0].Name != "Taras" || r.cursor != 0 {
		t.Fatalf("delete removed the wrong member: %+v", r.draft.FamilyMembers)
	}

	r, _ = r.update(keyPress("enter"))
	if r.stage != regBudget || r.form == nil {
		t.Fatal("enter should continue to the budget step")
	}
}

func TestRegisterBackResetsDraft(t *testing.T) {
	r := newRegisterModel(newTestDeps(t))
	r, _ = r.start()
	r.draft.SetStep1("Olena", "o@example.com", "secret1")

	r, _ = r.update(keyPress("esc"))
	if !r.exited {
		t.Fatal("esc on the first step should leave the wizard")
	}
	if r.draft.Name != "" {
		t.Fatal("leaving should reset the draft")
	}
}

func TestRegisterSubmitInvalidDraft(t *testing.T) {
	r := newRegisterModel(newTestDeps(t))
	r, _ = r.submit()
	if r.stage != regAccount || r.err == "" || r.form == nil {
		t.Fatal("an incomplete draft should go back to the first step")
	}
}

// ============================================================
// Against the dev backend
// ============================================================

func startDevserver(t *testing.T) string {
	t.Helper()
	srv := devserver.New([]byte("tui-secret"))
	baseURL, err := srv.Start("127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})
	if err := srv.Seed("demo@kitchenos.app", "demo123", "Demo"); err != nil {
		t.Fatal(err)
	}
	return baseURL
}

func TestLoadersAgainstDevserver(t *testing.T) {
	baseURL := startDevserver(t)
	d := newTestDeps(t)
	d.Client = api.NewClient(baseURL, 5*time.Second, d.Session)
	d.Now = time.Now

	// Bad credentials are an auth failure, not an expired session.
	w := newWelcomeModel(d)
	w.creds.email, w.creds.password = "demo@kitchenos.app", "wrong-password"
	w.stage = stageLogin
	if _, ok := w.submit()().(authFailedMsg); !ok {
		t.Fatal("wrong password should fail the login")
	}

	w.creds.password = "demo123"
	signed, ok := w.submit()().(signedInMsg)
	if !ok {
		t.Fatal("login should succeed")
	}
	if err := d.Session.SignIn(signed.resp); err != nil {
		t.Fatal(err)
	}

	loaded, ok := loadMenuCmd(d)().(menuLoadedMsg)
	if !ok || loaded.menu == nil || len(loaded.menu.Days) != 7 {
		t.Fatalf("expected a seeded week, got %#v", loaded)
	}
	fam, ok := loadFamilyCmd(d)().(familyLoadedMsg)
	if !ok || fam.family == nil || fam.family.WeeklyBudget == nil {
		t.Fatal("expected the seeded family")
	}
	user, ok := loadUserCmd(d)().(userLoadedMsg)
	if !ok || user.user.Email != "demo@kitchenos.app" {
		t.Fatal("expected the seeded user")
	}

	if _, ok := logoutCmd(d)().(signedOutMsg); !ok {
		t.Fatal("logout should sign out")
	}
	if _, ok := loadMenuCmd(d)().(sessionExpiredMsg); !ok {
		t.Fatal("requests without a token should expire the session")
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	if len(groups) == 0 {
		t.Fatal("full help should have groups")
	}
	for i, g := range groups {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles (smoke test, just verify they render)
// ============================================================

func TestStylesRender(t *testing.T) {
	styles := []struct {
		name string
		fn   func() string
	}{
		{"activeTab", func() string { return activeTabStyle.Render("test") }},
		{"inactiveTab", func() string { return inactiveTabStyle.Render("test") }},
		{"panel", func() string { return panelStyle.Render("test") }},
		{"activePanel", func() string { return activePanelStyle.Render("test") }},
		{"mealTitle", func() string { return mealTitleStyle.Render("test") }},
		{"recipeName", func() string { return recipeNameStyle.Render("test") }},
		{"avatar", func() string { return avatarStyle.Render("test") }},
		{"title", func() string { return titleStyle.Render("test") }},
		{"subtitle", func() string { return subtitleStyle.Render("test") }},
		{"success", func() string { return successStyle.Render("test") }},
		{"warning", func() string { return warningStyle.Render("test") }},
		{"error", func() string { return errorStyle.Render("test") }},
		{"muted", func() string { return mutedStyle.Render("test") }},
		{"highlight", func() string { return highlightStyle.Render("test") }},
		{"header", func() string { return headerStyle.Render("test") }},
		{"footer", func() string { return footerStyle.Render("test") }},
		{"selectedItem", func() string { return selectedItemStyle.Render("test") }},
		{"normalItem", func() string { return normalItemStyle.Render("test") }},
		{"status", func() string { return statusStyle("completed").Render("test") }},
	}
	for _, s := range styles {
		if s.fn() == "" {
			t.Fatalf("style %s rendered empty", s.name)
		}
	}
}
