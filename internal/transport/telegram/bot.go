package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/janmasethu/sakhi/internal/config"
	"github.com/janmasethu/sakhi/internal/core"
	"github.com/janmasethu/sakhi/pkg/conv"
	"github.com/janmasethu/sakhi/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

type Commands interface {
	Execute(ctx context.Context, userID, input string) (string, bool)
}

type Bot struct {
	bot      *tele.Bot
	cfg      *config.TelegramConfig
	turns    core.TurnHandler
	commands Commands
	profiles core.ProfileRepository
	sender   *sender
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	turns core.TurnHandler,
	commands Commands,
	profiles core.ProfileRepository,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:      b,
		cfg:      cfg,
		turns:    turns,
		commands: commands,
		profiles: profiles,
		sender:   newSender(b),
	}

	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender() == nil || !cfg.Allowed(c.Sender().ID) {
				return nil
			}
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func userID(senderID int64) string {
	return "telegram-" + strconv.FormatInt(senderID, 10)
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	uid := userID(c.Sender().ID)
	ctx = log.WithFields(ctx, "user_id", uid, "transport", "telegram")
	logger := log.FromCtx(ctx)

	profile, err := b.ensureProfile(ctx, uid, c.Sender())
	if err != nil {
		logger.Error().Err(err).Msg("failed to load profile")
		return c.Send("Sorry, something went wrong. Please try again.")
	}

	if out, ok := b.commands.Execute(ctx, uid, c.Text()); ok {
		return b.sender.sendMarkdown(ctx, c.Recipient(), out, false)
	}

	if !profile.OnboardingComplete() {
		out, _ := b.commands.Execute(ctx, uid, "/profile")
		return b.sender.sendMarkdown(ctx, c.Recipient(), out, false)
	}

	_ = c.Notify(tele.Typing)

	res, err := b.turns.Handle(ctx, core.TurnRequest{
		UserID:   uid,
		Message:  c.Text(),
		Language: profile.PreferredLanguage,
	})
	if err != nil && res == nil {
		logger.Error().Err(err).Msg("turn failed")
		return c.Send(failureText(err))
	}
	if err != nil {
		logger.Error().Err(err).Str("reply", res.Reply).Msg("turn finished with unsaved reply")
	}

	return b.sender.sendReply(ctx, c.Recipient(), res)
}

// ensureProfile creates a profile named after the Telegram account on first contact.
func (b *Bot) ensureProfile(ctx context.Context, uid string, u *tele.User) (*core.Profile, error) {
	p, err := b.profiles.Get(ctx, uid)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}
	return b.profiles.Upsert(ctx, core.Profile{
		UserID:            uid,
		Name:              u.FirstName,
		PreferredLanguage: u.LanguageCode,
	})
}

func failureText(err error) string {
	if stage, ok := core.StageOf(err); ok && stage == core.StageClassification {
		return "Sorry, I could not understand that message. Could you rephrase it?"
	}
	return "Sorry, I am not able to answer right now. Please try again in a moment."
}

func mediaLinks(res *core.TurnResult) []conv.Link {
	return []conv.Link{
		{Label: "📊 Infographic", URL: res.InfographicURL},
		{Label: "▶️ Watch on YouTube", URL: res.YouTubeLink},
	}
}
