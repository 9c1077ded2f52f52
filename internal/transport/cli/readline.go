package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/janmasethu/sakhi/internal/config"
	"github.com/janmasethu/sakhi/internal/core"
	"github.com/janmasethu/sakhi/internal/service/ui"
	"github.com/janmasethu/sakhi/pkg/log"
)

const defaultUserID = "cli-local"

type Commands interface {
	Execute(ctx context.Context, userID, input string) (string, bool)
}

type ReadLine struct {
	cfg      *config.AppConfig
	turns    core.TurnHandler
	commands Commands
	userID   string
	language string
	rl       *readline.Instance
}

func NewReadLine(turns core.TurnHandler, commands Commands, cfg *config.AppConfig, language string) (*ReadLine, error) {
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "you › ",
		HistoryFile:     filepath.Join(cfg.RuntimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:      cfg,
		turns:    turns,
		commands: commands,
		userID:   defaultUserID,
		language: language,
		rl:       rl,
	}, nil
}

func (r *ReadLine) UserID() string {
	return r.userID
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	fmt.Fprintln(r.rl.Stdout(), ui.TitleStyle.Render("Sakhi chat. Type 'exit' to quit, /help for commands."))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil
				}
				continue
			} else if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		if out, ok := r.commands.Execute(ctx, r.userID, line); ok {
			fmt.Fprintln(r.rl.Stdout(), out)
			continue
		}

		res, err := r.turns.Handle(ctx, core.TurnRequest{
			UserID:   r.userID,
			Message:  line,
			Language: r.language,
		})
		if err != nil {
			logger.Error().Err(err).Msg("turn failed")
			fmt.Fprintln(r.rl.Stdout(), ui.ErrorStyle.Render("Error: "+err.Error()))
			if res == nil {
				continue
			}
		}

		fmt.Fprintln(r.rl.Stdout(), FormatResult(res))
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}

// FormatResult renders a turn for the terminal: the reply, media links and a dim route footer.
func FormatResult(res *core.TurnResult) string {
	var sb strings.Builder
	sb.WriteString("sakhi › ")
	sb.WriteString(res.Reply)
	if res.InfographicURL != "" {
		sb.WriteString("\n  infographic: " + ui.UsageStyle.Render(res.InfographicURL))
	}
	if res.YouTubeLink != "" {
		sb.WriteString("\n  video: " + ui.UsageStyle.Render(res.YouTubeLink))
	}

	footer := fmt.Sprintf("%s · %s · %s", res.Route, res.Intent, res.Language)
	if res.Degraded {
		footer += " · degraded"
	}
	sb.WriteString("\n" + ui.DescStyle.Render(footer))
	return sb.String()
}
