package handlers

import (
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// MatchCommand matches messages starting with /command or, as group clients
// send it, /command@botname. A suffix naming another bot does not match.
// The bot username is read at match time so it may be filled in after
// registration.
func MatchCommand(command string, botInfo func() *models.User) bot.MatchFunc {
	return func(update *models.Update) bool {
		if update.Message == nil {
			return false
		}
		name, target, ok := leadingCommand(update.Message.Text, update.Message.Entities)
		if !ok || name != command {
			return false
		}
		if target == "" {
			return true
		}
		info := botInfo()
		return info != nil && info.Username != "" && strings.EqualFold(target, info.Username)
	}
}

// leadingCommand returns the bot_command entity at offset 0 split into its
// name and @target parts.
func leadingCommand(text string, entities []models.MessageEntity) (name, target string, ok bool) {
	for _, e := range entities {
		if e.Type != models.MessageEntityTypeBotCommand || e.Offset != 0 {
			continue
		}
		// Commands are ASCII, so UTF-16 offsets equal byte offsets here.
		if e.Length < 2 || e.Length > len(text) || text[0] != '/' {
			return "", "", false
		}
		name, target, _ = strings.Cut(text[1:e.Length], "@")
		return name, target, true
	}
	return "", "", false
}
