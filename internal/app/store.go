package app

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"remy/internal/ai"
	"remy/internal/cache"
)

var tracer = otel.Tracer("remy/app")

// Store owns one profile's State behind a mutex. Actions are methods; each
// takes the lock, mutates, persists best-effort and returns. Network calls
// happen outside the lock so a slow generation never blocks navigation.
type Store struct {
	mu      sync.Mutex
	state   State
	theme   string
	notice  *Notice
	loading bool

	cache   cache.Cache
	client  ai.Client
	profile string

	images sync.WaitGroup // in-flight background image fills
}

func NewStore(ctx context.Context, c cache.Cache, client ai.Client, profile string) *Store {
	s := &Store{
		cache:   c,
		client:  client,
		profile: profile,
		theme:   "light",
	}
	s.load(ctx)
	return s
}

// Snapshot is what the UI renders: the state plus ephemera that never
// persist.
type Snapshot struct {
	State
	Loading bool    `json:"loading"`
	Theme   string  `json:"theme"`
	Notice  *Notice `json:"notice,omitempty"`
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Pantry = slices.Clone(st.Pantry)
	st.Cookbook = slices.Clone(st.Cookbook)
	if st.Current != nil {
		cp := *st.Current
		st.Current = &cp
	}
	if st.Selected != nil {
		cp := *st.Selected
		st.Selected = &cp
	}
	var notice *Notice
	if s.notice != nil && time.Now().Before(s.notice.Until) {
		n := *s.notice
		notice = &n
	}
	return Snapshot{State: st, Loading: s.loading, Theme: s.theme, Notice: notice}
}

// Generate runs the blocking recipe request, then kicks off the image fill in
// the background. An empty query is ignored rather than failed. The loading
// flag rejects a second generation while one is running.
func (s *Store) Generate(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return ErrGenerationInProgress
	}
	s.loading = true
	pantry := slices.Clone(s.state.Pantry)
	s.mu.Unlock()

	genCtx, span := tracer.Start(ctx, "generate_recipe")
	recipe, err := s.client.GenerateRecipe(genCtx, query, pantry)
	span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		slog.ErrorContext(ctx, "recipe generation failed", "error", err)
		s.setNotice("Couldn't generate a recipe. Try again.")
		return err
	}
	r := recipe.WithDefaults()
	r.ID = uuid.NewString()
	r.ImageDataURI = "" // the result screen never waits on the illustration
	s.state.Current = &r
	s.state.Selected = nil
	s.state.Mode = ModeNone
	s.state.StepIndex = 0
	s.state.Screen = ScreenResult
	s.persist(ctx)

	id, name := r.ID, r.Name
	imgCtx := context.WithoutCancel(ctx)
	s.images.Add(1)
	go func() {
		defer s.images.Done()
		s.fillImage(imgCtx, id, name)
	}()
	return nil
}

// fillImage fetches the illustration for a freshly generated recipe. The
// result is applied only if the current recipe still has the id the request
// was issued for; a stale image for a since-replaced recipe is dropped.
// Failures are swallowed, the UI falls back to a placeholder.
func (s *Store) fillImage(ctx context.Context, id, name string) {
	ctx, span := tracer.Start(ctx, "fill_recipe_image")
	span.SetAttributes(attribute.String("recipe.id", id))
	defer span.End()

	uri, err := s.client.GenerateImage(ctx, ai.ImagePrompt(name))
	if err != nil {
		slog.ErrorContext(ctx, "image generation failed", "recipe", id, "error", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Current == nil || s.state.Current.ID != id {
		slog.InfoContext(ctx, "dropping stale image result", "recipe", id)
		return
	}
	s.state.Current.ImageDataURI = uri
	s.persist(ctx)
}

// WaitImages blocks until background image fills settle. Tests only.
func (s *Store) WaitImages() {
	s.images.Wait()
}

// ChooseHack starts cooking with substitutions straight from the result.
func (s *Store) ChooseHack(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Screen != ScreenResult || s.state.Current == nil {
		return ErrNoRecipe
	}
	if len(s.state.Current.Steps) == 0 {
		return ErrNoSteps
	}
	s.state.Mode = ModeHack
	s.state.StepIndex = 0
	s.state.Screen = ScreenCooking
	s.persist(ctx)
	return nil
}

// ChooseShop moves to the shopping list for the missing ingredients.
func (s *Store) ChooseShop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Screen != ScreenResult || s.state.Current == nil {
		return ErrNoRecipe
	}
	s.state.Mode = ModeShop
	s.state.Screen = ScreenShopping
	s.persist(ctx)
	return nil
}

// StartCooking begins the session after shopping; mode stays SHOP.
func (s *Store) StartCooking(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Screen != ScreenShopping || s.state.Current == nil {
		return ErrNoRecipe
	}
	if len(s.state.Current.Steps) == 0 {
		return ErrNoSteps
	}
	s.state.StepIndex = 0
	s.state.Screen = ScreenCooking
	s.persist(ctx)
	return nil
}

// NextStep advances within the session. At the last step it is a no-op; the
// UI swaps the button for Finish there.
func (s *Store) NextStep(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Screen != ScreenCooking || s.state.Current == nil {
		return
	}
	if s.state.StepIndex < len(s.state.Current.Steps)-1 {
		s.state.StepIndex++
		s.persist(ctx)
	}
}

// PrevStep steps back, never below zero.
func (s *Store) PrevStep(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Screen != ScreenCooking {
		return
	}
	if s.state.StepIndex > 0 {
		s.state.StepIndex--
		s.persist(ctx)
	}
}

// Finish completes the session from the last step, credits the lifetime
// counter and lands on SUCCESS. In HACK mode the credit is the recipe's own
// savings figure, falling back to the default when it is absent or zero; in
// SHOP mode it is always the default.
func (s *Store) Finish(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Screen != ScreenCooking || s.state.Current == nil {
		return ErrNoRecipe
	}
	if s.state.StepIndex < len(s.state.Current.Steps)-1 {
		return errors.New("not on the last step")
	}
	inc := float64(savingsFallback)
	if s.state.Mode == ModeHack {
		if dh := s.state.Current.Sustainability.SavingsDh; dh > 0 {
			inc = dh
		}
	}
	s.state.LifetimeSavings += inc
	// counter first: its key is the authoritative copy and must survive
	// even if the state blob write fails.
	s.persistSavings(ctx)
	s.state.Screen = ScreenSuccess
	s.persist(ctx)
	return nil
}

// Save copies the current recipe into the cookbook, stamped with the path
// that produced it and the save date. Idempotent by id: a duplicate save
// leaves the cookbook untouched and tells the user.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.state.Current
	if r == nil {
		return ErrNoRecipe
	}
	if lo.ContainsBy(s.state.Cookbook, func(e ai.Recipe) bool { return e.ID == r.ID }) {
		s.setNotice("Already in your cookbook")
		return ErrAlreadySaved
	}
	entry := *r
	entry.SaveType = lo.Ternary(s.state.Mode == ModeHack, ai.SaveTypeHack, ai.SaveTypeShop)
	entry.SavedDate = time.Now().Format("January 2, 2006")
	s.state.Cookbook = append([]ai.Recipe{entry}, s.state.Cookbook...)
	s.setNotice("Saved to cookbook")
	s.persist(ctx)
	return nil
}

// OpenCookbook is reachable from every screen.
func (s *Store) OpenCookbook(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Selected = nil
	s.state.Screen = ScreenCookbook
	s.persist(ctx)
}

// OpenSaved shows a cookbook entry on the detail screen. The Selected slot
// holds a copy; edits write back through the cookbook by id.
func (s *Store) OpenSaved(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, found := lo.Find(s.state.Cookbook, func(e ai.Recipe) bool { return e.ID == id })
	if !found {
		return ErrNoRecipe
	}
	s.state.Selected = &entry
	s.state.Screen = ScreenRecipeDetail
	s.persist(ctx)
	return nil
}

// ViewCurrent shows the freshly generated recipe on the detail screen.
func (s *Store) ViewCurrent(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Current == nil {
		return ErrNoRecipe
	}
	s.state.Selected = nil
	s.state.Screen = ScreenRecipeDetail
	s.persist(ctx)
	return nil
}

// Back leaves the detail screen. The populated slot decides the target:
// a selected cookbook entry goes back to the cookbook, a fresh recipe back
// to its result.
func (s *Store) Back(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Screen != ScreenRecipeDetail {
		return
	}
	if s.state.Selected != nil {
		s.state.Selected = nil
		s.state.Screen = ScreenCookbook
	} else {
		s.state.Screen = ScreenResult
	}
	s.persist(ctx)
}

// CookNow starts a session from the detail screen, whichever slot is active.
// A saved recipe restores the mode it was saved under.
func (s *Store) CookNow(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Screen != ScreenRecipeDetail {
		return ErrNoRecipe
	}
	r := s.state.Selected
	if r == nil {
		r = s.state.Current
	}
	if r == nil {
		return ErrNoRecipe
	}
	if len(r.Steps) == 0 {
		return ErrNoSteps
	}
	cp := *r
	s.state.Current = &cp
	s.state.Selected = nil
	switch cp.SaveType {
	case ai.SaveTypeHack:
		s.state.Mode = ModeHack
	case ai.SaveTypeShop:
		s.state.Mode = ModeShop
	}
	s.state.StepIndex = 0
	s.state.Screen = ScreenCooking
	s.persist(ctx)
	return nil
}

// Home returns to the landing screen and clears the working recipe. The
// pantry, city and cookbook stay.
func (s *Store) Home(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Current = nil
	s.state.Selected = nil
	s.state.Mode = ModeNone
	s.state.StepIndex = 0
	s.state.Screen = ScreenLanding
	s.persist(ctx)
}

var ingredientTitler = cases.Title(language.English)

// MergeScanned folds recognized ingredient names into the pantry with set
// semantics: canonicalized to title case, duplicates collapsed
// case-insensitively. Manual adds below deliberately do not dedup.
func (s *Store) MergeScanned(ctx context.Context, names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range names {
		c := ingredientTitler.String(strings.TrimSpace(strings.ToLower(n)))
		if c == "" {
			continue
		}
		if !lo.ContainsBy(s.state.Pantry, func(p string) bool { return strings.EqualFold(p, c) }) {
			s.state.Pantry = append(s.state.Pantry, c)
		}
	}
	s.persist(ctx)
}

// AddPantryItem appends as typed, duplicates and all.
func (s *Store) AddPantryItem(ctx context.Context, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Pantry = append(s.state.Pantry, name)
	s.persist(ctx)
}

// RemovePantryItem removes by position.
func (s *Store) RemovePantryItem(ctx context.Context, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.state.Pantry) {
		return
	}
	s.state.Pantry = slices.Delete(slices.Clone(s.state.Pantry), index, index+1)
	s.persist(ctx)
}

// EditImage asks the collaborator to rework the active recipe's illustration.
// The replacement lands on whichever slot still holds the recipe and, for a
// saved recipe, on its cookbook entry by id.
func (s *Store) EditImage(ctx context.Context, instruction string) error {
	instruction = strings.TrimSpace(instruction)
	s.mu.Lock()
	if instruction == "" {
		s.setNotice("Describe the change you want first")
		s.mu.Unlock()
		return errors.New("empty edit instruction")
	}
	target := s.state.Selected
	if target == nil {
		target = s.state.Current
	}
	if target == nil || target.ImageDataURI == "" {
		s.setNotice("No image to edit yet")
		s.mu.Unlock()
		return ErrNoRecipe
	}
	id, img := target.ID, target.ImageDataURI
	s.mu.Unlock()

	uri, err := s.client.EditImage(ctx, img, instruction)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		slog.ErrorContext(ctx, "image edit failed", "recipe", id, "error", err)
		s.setNotice("Couldn't edit the image")
		return err
	}
	if s.state.Selected != nil && s.state.Selected.ID == id {
		s.state.Selected.ImageDataURI = uri
	}
	if s.state.Current != nil && s.state.Current.ID == id {
		s.state.Current.ImageDataURI = uri
	}
	for i := range s.state.Cookbook {
		if s.state.Cookbook[i].ID == id {
			s.state.Cookbook[i].ImageDataURI = uri
		}
	}
	s.persist(ctx)
	return nil
}

func (s *Store) SetCity(ctx context.Context, city string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.City = strings.TrimSpace(city)
	s.persist(ctx)
}

// SetTheme persists the light/dark choice under its own key.
func (s *Store) SetTheme(ctx context.Context, theme string) {
	if theme != "light" && theme != "dark" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = theme
	s.persistTheme(ctx)
}

// setNotice replaces the transient toast. Callers hold the lock.
func (s *Store) setNotice(message string) {
	s.notice = &Notice{Message: message, Until: time.Now().Add(noticeDuration)}
}
