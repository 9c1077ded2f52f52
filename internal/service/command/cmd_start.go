package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/janmasethu/sakhi/internal/core"
)

type ProfileReader interface {
	Get(ctx context.Context, userID string) (*core.Profile, error)
}

// StartCommand greets the user and reports which onboarding fields are missing.
type StartCommand struct {
	profiles  ProfileReader
	formatter *ResponseFormatter
}

func NewStartCommand(profiles ProfileReader) *StartCommand {
	return &StartCommand{profiles: profiles, formatter: NewResponseFormatter()}
}

func (c *StartCommand) Name() string        { return "start" }
func (c *StartCommand) Description() string { return "Say hello and check your profile" }

func (c *StartCommand) Execute(ctx context.Context, userID string, args []string) (string, error) {
	p, err := c.profiles.Get(ctx, userID)
	if errors.Is(err, core.ErrNotFound) {
		p = &core.Profile{UserID: userID}
	} else if err != nil {
		return "", err
	}

	greeting := fmt.Sprintf("Namaste! I am %s, your companion for pregnancy and parenting questions.", core.SakhiName)
	if p.Name != "" {
		greeting = fmt.Sprintf("Namaste %s! I am %s, happy to see you again.", p.Name, core.SakhiName)
	}

	if p.OnboardingComplete() {
		return c.formatter.Combine(
			c.formatter.Title(greeting),
			"Ask me anything, in English, Hindi or Hinglish.",
		), nil
	}

	var missing []string
	if p.Name == "" {
		missing = append(missing, "your name")
	}
	if p.Gender == "" {
		missing = append(missing, "your gender")
	}
	if p.Location == "" {
		missing = append(missing, "your city or village")
	}

	return c.formatter.Combine(
		c.formatter.Title(greeting),
		"Before we start, please tell me:",
		c.formatter.List(missing),
	), nil
}
