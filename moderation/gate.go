package moderation

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Gate answers the two questions asked before every privileged command: is
// the caller a chat administrator, and is the bot itself one. Lookup failures
// answer "no" — privilege fails closed.
type Gate struct {
	api   API
	botID int64
}

func NewGate(api API, botID int64) *Gate {
	return &Gate{api: api, botID: botID}
}

// IsAdmin reports whether the user is an administrator or the creator of the
// chat.
func (g *Gate) IsAdmin(chatID, userID int64) bool {
	member, err := g.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: userID,
		},
	})
	if err != nil {
		return false
	}
	return member.IsAdministrator() || member.IsCreator()
}

// IsBotAdmin reports whether the bot holds the administrator role in the
// chat. The creator status is not possible for a bot, so only administrator
// counts.
func (g *Gate) IsBotAdmin(chatID int64) bool {
	member, err := g.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: g.botID,
		},
	})
	if err != nil {
		return false
	}
	return member.IsAdministrator()
}
