package handlers

import (
	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// RegisteredHandler represents a command handler with its description and middleware.
// It encapsulates all information needed to register and document a command.
type RegisteredHandler struct {
	Pattern     string
	Description string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	Match       tgbot.MatchFunc
}

// RegisterAllCommands initializes and returns a map of all available bot commands.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	common := []tgbot.Middleware{Recover(deps), RequireSender(deps)}
	botInfo := func() *models.User { return deps.Config.Telegram.BotInfo }

	command := func(pattern, description string, handler tgbot.HandlerFunc) RegisteredHandler {
		return RegisteredHandler{
			Pattern:     pattern,
			Description: description,
			Handler:     handler,
			Middleware:  common,
			Match:       MatchCommand(pattern, botInfo),
		}
	}

	return map[string]RegisteredHandler{
		"/start":        command("start", "", NewStartHandler(deps)),
		"/help":         command("help", "Show help for task commands", NewHelpHandler(deps)),
		"/addtask":      command("addtask", "Add a task: description | YYYY-MM-DD", NewAddTaskHandler(deps)),
		"/listtasks":    command("listtasks", "List all active tasks", NewListTasksHandler(deps)),
		"/complete":     command("complete", "Mark your task as completed", NewCompleteHandler(deps)),
		"/setchannel":   command("setchannel", "Send daily reminders to this chat", NewSetChannelHandler(deps)),
		"/testping":     command("testping", "Create a test task due today", NewTestPingHandler(deps)),
		"/testreminder": command("testreminder", "Send the daily reminder now", NewTestReminderHandler(deps)),
		"/history":      command("history", "Show recent reminder runs", NewHistoryHandler(deps)),
	}
}
