package generator

import (
	"fmt"
	"strings"

	"github.com/janmasethu/sakhi/internal/core"
)

const persona = `You are Sakhi, a warm and trustworthy companion for women and families on their fertility, pregnancy and early parenting journey.
Speak simply and kindly, like an elder sister who knows the subject. Keep answers short and practical.
Never diagnose. When something sounds urgent, tell the user to contact a doctor or go to the nearest hospital right away.`

var languageNames = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"te": "Telugu",
	"ta": "Tamil",
	"kn": "Kannada",
	"ml": "Malayalam",
	"bn": "Bengali",
	"gu": "Gujarati",
	"pa": "Punjabi",
	"mr": "Marathi",
}

func languageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	if code == "" {
		return languageNames["en"]
	}
	return code
}

func systemPrompt(in core.GenerationInput) string {
	var b strings.Builder
	b.WriteString(persona)
	fmt.Fprintf(&b, "\nAlways reply in %s.", languageName(in.Language))
	if name := strings.TrimSpace(in.UserName); name != "" {
		fmt.Fprintf(&b, "\nThe user's name is %s. Address her by name when it feels natural.", name)
	}
	return b.String()
}

func contextPrompt(rc core.RetrievalContext) string {
	if rc.Empty() {
		return "No reference material was found for this question. Answer from general knowledge, stay cautious and suggest consulting a doctor for anything specific."
	}
	return "Answer using the reference material below. If it does not cover the question, say so briefly and give general guidance.\n\n" +
		"Reference material:\n" + rc.Text
}

func directMessages(in core.GenerationInput) []core.ChatMessage {
	return []core.ChatMessage{
		{Role: core.RoleSystem, Content: systemPrompt(in)},
		{Role: core.RoleUser, Content: in.Message},
	}
}

func groundedMessages(in core.GenerationInput) []core.ChatMessage {
	messages := make([]core.ChatMessage, 0, len(in.History)+3)
	messages = append(messages,
		core.ChatMessage{Role: core.RoleSystem, Content: systemPrompt(in)},
		core.ChatMessage{Role: core.RoleSystem, Content: contextPrompt(in.Context)},
	)
	for _, m := range in.History {
		if m.Role != core.RoleUser && m.Role != core.RoleAssistant {
			continue
		}
		messages = append(messages, core.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return append(messages, core.ChatMessage{Role: core.RoleUser, Content: in.Message})
}
