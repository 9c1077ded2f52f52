package telegram

import (
	"context"
	"strings"

	"github.com/janmasethu/sakhi/internal/core"
	"github.com/janmasethu/sakhi/pkg/conv"
	"github.com/janmasethu/sakhi/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const maxTelegramMsgLen = 4000 // below the 4096 hard limit

type sender struct {
	bot *tele.Bot
}

func newSender(bot *tele.Bot) *sender {
	return &sender{bot: bot}
}

// sendMarkdown converts Markdown to Telegram HTML and sends it in chunks if needed.
func (s *sender) sendMarkdown(ctx context.Context, to tele.Recipient, md string, silent bool) error {
	html := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(md)))
	return s.sendHTML(ctx, to, html, silent)
}

// sendReply renders the turn reply and appends its media links to the last chunk.
func (s *sender) sendReply(ctx context.Context, to tele.Recipient, res *core.TurnResult) error {
	html := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(res.Reply)))
	html = conv.AppendLinks(html, mediaLinks(res)...)
	return s.sendHTML(ctx, to, html, false)
}

func (s *sender) sendHTML(ctx context.Context, to tele.Recipient, html string, silent bool) error {
	logger := log.FromCtx(ctx)

	for i, chunk := range splitHTML(html, maxTelegramMsgLen) {
		opts := []interface{}{tele.ModeHTML}
		if silent && i == 0 {
			opts = append(opts, tele.Silent)
		}

		if _, err := s.bot.Send(to, chunk, opts...); err != nil {
			logger.Error().Err(err).Int("chunk", i).Int("len", len(chunk)).Msg("failed to send telegram chunk")
			return err
		}
	}
	return nil
}

// splitHTML splits text into chunks under maxLen, preferring newline boundaries.
func splitHTML(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}

		cut := maxLen
		if idx := strings.LastIndex(text[:maxLen], "\n"); idx > maxLen/3 {
			cut = idx
		}

		chunks = append(chunks, text[:cut])
		text = strings.TrimSpace(text[cut:])
	}
	return chunks
}
