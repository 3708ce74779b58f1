// Package mail shares recipes by email through sendgrid.
package mail

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"golang.org/x/sync/errgroup"

	"remy/internal/ai"
	"remy/internal/config"
)

type Sender struct {
	apiKey string
	from   *sgmail.Email
}

// New returns nil when no api key is configured; callers treat a nil Sender
// as mail-disabled.
func New(cfg *config.Config) *Sender {
	if cfg.Mail.APIKey == "" {
		return nil
	}
	return &Sender{
		apiKey: cfg.Mail.APIKey,
		from:   sgmail.NewEmail("Chef", cfg.Mail.FromAddress),
	}
}

// ShareRecipe mails the recipe and its shopping list to every recipient
// concurrently. One bad address fails the batch; the caller only logs it.
func (s *Sender) ShareRecipe(ctx context.Context, to []string, recipe ai.Recipe) error {
	subject := fmt.Sprintf("Recipe: %s", recipe.Name)
	plain := plainBody(recipe)
	html := htmlBody(recipe)

	var grp errgroup.Group
	for _, addr := range to {
		grp.Go(func() error {
			message := sgmail.NewSingleEmail(s.from, subject, sgmail.NewEmail("", addr), plain, html)
			client := sendgrid.NewSendClient(s.apiKey)
			response, err := client.Send(message)
			if err != nil {
				return fmt.Errorf("sending to %s: %w", addr, err)
			}
			return checkResponse(ctx, addr, response)
		})
	}
	return grp.Wait()
}

func checkResponse(ctx context.Context, addr string, response *rest.Response) error {
	if response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid rejected mail to %s: %d %s", addr, response.StatusCode, response.Body)
	}
	slog.InfoContext(ctx, "recipe mailed", "to", addr, "status", response.StatusCode)
	return nil
}

func plainBody(r ai.Recipe) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n%s\n\n", r.Name, r.Description)
	if len(r.BuyIngredients) > 0 {
		b.WriteString("Shopping list:\n")
		for _, ing := range r.BuyIngredients {
			fmt.Fprintf(&b, "- %s (%s)\n", ing.Name, ing.Quantity)
		}
		b.WriteString("\n")
	}
	b.WriteString("Steps:\n")
	for i, step := range r.Steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	return b.String()
}

func htmlBody(r ai.Recipe) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h1>%s</h1><p>%s</p>", html.EscapeString(r.Name), html.EscapeString(r.Description))
	if len(r.BuyIngredients) > 0 {
		b.WriteString("<h2>Shopping list</h2><ul>")
		for _, ing := range r.BuyIngredients {
			fmt.Fprintf(&b, "<li>%s (%s)</li>", html.EscapeString(ing.Name), html.EscapeString(ing.Quantity))
		}
		b.WriteString("</ul>")
	}
	b.WriteString("<h2>Steps</h2><ol>")
	for _, step := range r.Steps {
		fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(step))
	}
	b.WriteString("</ol>")
	return b.String()
}
