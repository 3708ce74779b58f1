package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"remy/internal/ai"
	"remy/internal/cache"
)

// Three independently keyed entries per profile, mirroring how a browser app
// would lay out localStorage. The savings key is authoritative: its value
// overrides whatever counter is embedded in the state blob, so the lifetime
// total survives a corrupted or cleared state.
func (s *Store) stateKey() string   { return "state/" + s.profile }
func (s *Store) savingsKey() string { return "savings/" + s.profile }
func (s *Store) themeKey() string   { return "theme/" + s.profile }

// persist writes the state blob with every image payload stripped to bound
// entry size. Best-effort: a failed write is logged and the state stays
// memory-only for the session. Callers hold the lock.
func (s *Store) persist(ctx context.Context) {
	st := s.state
	st.Current = stripImage(st.Current)
	st.Selected = stripImage(st.Selected)
	st.Cookbook = lo.Map(st.Cookbook, func(r ai.Recipe, _ int) ai.Recipe {
		r.ImageDataURI = ""
		return r
	})
	b, err := json.Marshal(st)
	if err != nil {
		slog.ErrorContext(ctx, "marshalling state", "error", err)
		return
	}
	if err := s.cache.Put(ctx, s.stateKey(), string(b), cache.Unconditional()); err != nil {
		slog.ErrorContext(ctx, "persisting state, keeping in memory", "error", err)
	}
}

func (s *Store) persistSavings(ctx context.Context) {
	v := strconv.FormatFloat(s.state.LifetimeSavings, 'f', -1, 64)
	if err := s.cache.Put(ctx, s.savingsKey(), v, cache.Unconditional()); err != nil {
		slog.ErrorContext(ctx, "persisting savings counter", "error", err)
	}
}

func (s *Store) persistTheme(ctx context.Context) {
	if err := s.cache.Put(ctx, s.themeKey(), s.theme, cache.Unconditional()); err != nil {
		slog.ErrorContext(ctx, "persisting theme", "error", err)
	}
}

func stripImage(r *ai.Recipe) *ai.Recipe {
	if r == nil {
		return nil
	}
	cp := *r
	cp.ImageDataURI = ""
	return &cp
}

// load restores the profile's state. A missing or unreadable blob means a
// fresh landing screen; the savings counter and theme are read from their own
// keys regardless.
func (s *Store) load(ctx context.Context) {
	s.state = newState()

	savings, haveSavings := s.loadSavings(ctx)

	if rc, err := s.cache.Get(ctx, s.stateKey()); err == nil {
		var st State
		decodeErr := json.NewDecoder(rc).Decode(&st)
		rc.Close()
		if decodeErr != nil {
			slog.ErrorContext(ctx, "unreadable persisted state, starting fresh", "error", decodeErr)
		} else {
			s.state = repair(st)
		}
	} else if !errors.Is(err, cache.ErrNotFound) {
		slog.ErrorContext(ctx, "loading state", "error", err)
	}

	if haveSavings {
		s.state.LifetimeSavings = savings
	}

	if rc, err := s.cache.Get(ctx, s.themeKey()); err == nil {
		b, _ := io.ReadAll(rc)
		rc.Close()
		if t := strings.TrimSpace(string(b)); t == "light" || t == "dark" {
			s.theme = t
		}
	}
}

func (s *Store) loadSavings(ctx context.Context) (float64, bool) {
	rc, err := s.cache.Get(ctx, s.savingsKey())
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			slog.ErrorContext(ctx, "loading savings counter", "error", err)
		}
		return 0, false
	}
	b, _ := io.ReadAll(rc)
	rc.Close()
	f, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
	if err != nil {
		slog.ErrorContext(ctx, "unreadable savings counter", "error", err)
		return 0, false
	}
	return f, true
}

// repair restores the screen invariants on a loaded state: detail needs a
// populated recipe slot, cooking needs a current recipe with the step in
// range. Violations and unknown versions fall back to landing rather than
// guessing.
func repair(st State) State {
	if st.Version != stateVersion {
		return newState()
	}
	if st.Pantry == nil {
		st.Pantry = []string{}
	}
	if st.Cookbook == nil {
		st.Cookbook = []ai.Recipe{}
	}
	switch st.Screen {
	case ScreenLanding, ScreenResult, ScreenShopping, ScreenCooking, ScreenCookbook, ScreenRecipeDetail, ScreenSuccess:
	default:
		st.Screen = ScreenLanding
	}
	switch st.Screen {
	case ScreenRecipeDetail:
		if st.Current == nil && st.Selected == nil {
			st.Screen = ScreenLanding
		}
	case ScreenResult, ScreenShopping, ScreenSuccess:
		if st.Current == nil {
			st.Screen = ScreenLanding
		}
	case ScreenCooking:
		if st.Current == nil || st.StepIndex < 0 || st.StepIndex >= len(st.Current.Steps) {
			st.Screen = ScreenLanding
			st.StepIndex = 0
		}
	}
	return st
}
