// Package app implements the screen/state machine at the heart of the
// assistant: seven screens, a current recipe slot, a cookbook, a guided
// cooking session and a lifetime savings counter. All network and persistence
// side effects live at the edges of the Store; transitions themselves are
// plain state mutations.
package app

import (
	"errors"
	"time"

	"remy/internal/ai"
)

type Screen string

const (
	ScreenLanding      Screen = "LANDING"
	ScreenResult       Screen = "RESULT"
	ScreenShopping     Screen = "SHOPPING"
	ScreenCooking      Screen = "COOKING"
	ScreenCookbook     Screen = "COOKBOOK"
	ScreenRecipeDetail Screen = "RECIPE_DETAIL"
	ScreenSuccess      Screen = "SUCCESS"
)

// Mode tracks which path the user is walking after a result. Empty means
// neither has been picked yet.
type Mode string

const (
	ModeNone Mode = ""
	ModeHack Mode = "HACK"
	ModeShop Mode = "SHOP"
)

// savingsFallback is the increment credited for a finished cooking session
// when the recipe carries no usable savings figure, and always in SHOP mode.
const savingsFallback = 5

// stateVersion guards future shape migrations of the persisted state blob.
const stateVersion = 1

var (
	ErrGenerationInProgress = errors.New("a generation is already running")
	ErrAlreadySaved         = errors.New("recipe already in cookbook")
	ErrNoRecipe             = errors.New("no recipe selected")
	ErrNoSteps              = errors.New("recipe has no steps to cook")
)

// State is the single root of truth for one profile.
//
// Current is owned exclusively while un-saved; Selected points at a cookbook
// entry being viewed. Whenever Screen is RECIPE_DETAIL at least one of the two
// is non-nil, and whenever Screen is COOKING, Current is non-nil with
// StepIndex inside [0, len(Steps)). Which slot is populated doubles as the
// back-navigation target, there is no navigation stack.
type State struct {
	Version         int         `json:"version"`
	Screen          Screen      `json:"screen"`
	City            string      `json:"city"`
	Current         *ai.Recipe  `json:"current_recipe,omitempty"`
	Selected        *ai.Recipe  `json:"selected_recipe,omitempty"`
	Pantry          []string    `json:"pantry"`
	Cookbook        []ai.Recipe `json:"cookbook"`
	StepIndex       int         `json:"step_index"`
	Mode            Mode        `json:"mode"`
	LifetimeSavings float64     `json:"lifetime_savings"`
}

func newState() State {
	return State{
		Version:  stateVersion,
		Screen:   ScreenLanding,
		Pantry:   []string{},
		Cookbook: []ai.Recipe{},
	}
}

// Notice is a transient user-facing message, the toast analog.
type Notice struct {
	Message string    `json:"message"`
	Until   time.Time `json:"until"`
}

const noticeDuration = 3 * time.Second
