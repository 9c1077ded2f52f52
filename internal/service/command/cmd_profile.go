package command

import (
	"context"
	"errors"
	"strings"

	"github.com/janmasethu/sakhi/internal/core"
)

// ProfileCommand shows or edits the onboarding fields of the caller's profile.
type ProfileCommand struct {
	profiles  core.ProfileRepository
	formatter *ResponseFormatter
}

func NewProfileCommand(profiles core.ProfileRepository) *ProfileCommand {
	return &ProfileCommand{profiles: profiles, formatter: NewResponseFormatter()}
}

func (c *ProfileCommand) Name() string        { return "profile" }
func (c *ProfileCommand) Description() string { return "Show or set name, gender, location, language" }

func (c *ProfileCommand) Execute(ctx context.Context, userID string, args []string) (string, error) {
	p, err := c.profiles.Get(ctx, userID)
	if errors.Is(err, core.ErrNotFound) {
		p = &core.Profile{UserID: userID}
	} else if err != nil {
		return "", err
	}

	if len(args) == 0 {
		return c.render(p), nil
	}
	if len(args) < 2 {
		return c.formatter.Usage("/profile name|gender|location|language <value>"), nil
	}

	value := strings.Join(args[1:], " ")
	switch strings.ToLower(args[0]) {
	case "name":
		p.Name = value
	case "gender":
		p.Gender = strings.ToLower(value)
	case "location":
		p.Location = value
	case "language":
		p.PreferredLanguage = strings.ToLower(value)
	default:
		return c.formatter.Usage("/profile name|gender|location|language <value>"), nil
	}

	updated, err := c.profiles.Upsert(ctx, *p)
	if err != nil {
		return "", err
	}
	return c.render(updated), nil
}

func (c *ProfileCommand) render(p *core.Profile) string {
	show := func(v string) string {
		if v == "" {
			return "not set"
		}
		return v
	}
	out := c.formatter.Combine(
		c.formatter.Title("Your profile"),
		c.formatter.Label("Name", show(p.Name))+
			c.formatter.Label("Gender", show(p.Gender))+
			c.formatter.Label("Location", show(p.Location))+
			c.formatter.Label("Language", show(p.PreferredLanguage)),
	)
	if !p.OnboardingComplete() {
		out = c.formatter.Combine(out, c.formatter.Tip("set name, gender and location to start chatting, e.g. /profile location Pune"))
	}
	return out
}
