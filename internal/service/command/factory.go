package command

import (
	"github.com/janmasethu/sakhi/internal/core"
)

func NewRouter(
	router Decider,
	conversation core.ConversationLog,
	profiles core.ProfileRepository,
) *Router {
	r := New([]core.Command{
		NewStartCommand(profiles),
		NewProfileCommand(profiles),
		NewRouteCommand(router),
		NewHistoryCommand(conversation),
	})
	help := NewHelpCommand(r.ListCommands)
	r.commands[help.Name()] = help
	return r
}
