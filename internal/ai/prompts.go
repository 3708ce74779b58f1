package ai

import (
	"fmt"
	"strings"
)

const recipeSystemPrompt = `You are a resourceful home chef who hates wasting food.

# Objective
Given a meal the user wants and the ingredients they already have, produce ONE practical recipe that uses as much of their pantry as possible.

# Instructions
- Split the ingredient list into what the user already has and what they would need to buy, with quantities.
- For every missing ingredient, propose a substitution hack from common pantry staples: the replacement, its quantity, an effectiveness score from 0 to 100, a safety risk of None, Low or High, and a one-line rationale.
- Steps are short imperative sentences starting with prep. Don't prefix with numbers.
- Estimate the total shopping cost for the missing ingredients in local currency.
- Fill in prep time, total time, servings and a difficulty of Easy, Medium or Chef.
- Score how safe the substituted version of the dish is from 0 to 100 and name the factors behind the score.
- Estimate sustainability impact: money saved, CO2 kilograms avoided and food waste grams avoided when cooking with substitutions instead of shopping.
- Add two or three practical tips.`

const recognizePrompt = `List every distinct food ingredient visible in this photo. Respond with ingredient names only, lowercase, no quantities, no commentary.`

const storeSystemPrompt = `You help a home cook find groceries. Given a city, list real well-known grocery stores or supermarkets a resident would shop at. For each give its name, a plausible street address in that city, a rating out of 5 if widely known, whether it is likely open right now, and a Google Maps search URI of the form https://www.google.com/maps/search/?api=1&query=<urlencoded name and city>.`

func recipeUserPrompt(query string, pantry []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I want to cook: %s\n", query)
	if len(pantry) > 0 {
		b.WriteString("Ingredients I already have:\n")
		for _, item := range pantry {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	} else {
		b.WriteString("My pantry is empty; everything goes on the shopping list.\n")
	}
	return b.String()
}

// ImagePrompt is the illustration request for a generated recipe, keyed off
// its name only.
func ImagePrompt(recipeName string) string {
	return fmt.Sprintf("A bright appetizing overhead photo of %s, plated on a rustic table, natural light, no text.", recipeName)
}

func storeUserPrompt(city string) string {
	return fmt.Sprintf("List 5 grocery stores in %s.", city)
}
