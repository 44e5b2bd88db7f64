package moderation

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Actions are thin wrappers over the Bot API mutations. Errors pass through
// untouched; the caller decides how to surface them.
type Actions struct {
	api API
}

func NewActions(api API) *Actions {
	return &Actions{api: api}
}

// lockedPermissions revokes everything; only admins can act in the chat.
func lockedPermissions() *tgbotapi.ChatPermissions {
	return &tgbotapi.ChatPermissions{}
}

// unlockedPermissions restores the default member rights. Changing chat info
// and pinning stay admin-only.
func unlockedPermissions() *tgbotapi.ChatPermissions {
	return &tgbotapi.ChatPermissions{
		CanSendMessages:       true,
		CanSendMediaMessages:  true,
		CanSendPolls:          true,
		CanSendOtherMessages:  true,
		CanAddWebPagePreviews: true,
		CanInviteUsers:        true,
	}
}

// mutedPermissions revokes sending for a single restricted member.
func mutedPermissions() *tgbotapi.ChatPermissions {
	return &tgbotapi.ChatPermissions{}
}

// unmutedPermissions lifts a member restriction back to normal sending
// rights.
func unmutedPermissions() *tgbotapi.ChatPermissions {
	return &tgbotapi.ChatPermissions{
		CanSendMessages:       true,
		CanSendMediaMessages:  true,
		CanSendPolls:          true,
		CanSendOtherMessages:  true,
		CanAddWebPagePreviews: true,
	}
}

// Lock makes the whole group admin-only.
func (a *Actions) Lock(chatID int64) error {
	_, err := a.api.Request(tgbotapi.SetChatPermissionsConfig{
		ChatConfig:  tgbotapi.ChatConfig{ChatID: chatID},
		Permissions: lockedPermissions(),
	})
	return err
}

// Unlock restores default member permissions for the group.
func (a *Actions) Unlock(chatID int64) error {
	_, err := a.api.Request(tgbotapi.SetChatPermissionsConfig{
		ChatConfig:  tgbotapi.ChatConfig{ChatID: chatID},
		Permissions: unlockedPermissions(),
	})
	return err
}

// Mute revokes a member's sending permission until the given time.
func (a *Actions) Mute(chatID, userID int64, until time.Time) error {
	_, err := a.api.Request(tgbotapi.RestrictChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{
			ChatID: chatID,
			UserID: userID,
		},
		UntilDate:   until.Unix(),
		Permissions: mutedPermissions(),
	})
	return err
}

// Unmute restores a restricted member's sending permission.
func (a *Actions) Unmute(chatID, userID int64) error {
	_, err := a.api.Request(tgbotapi.RestrictChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{
			ChatID: chatID,
			UserID: userID,
		},
		Permissions: unmutedPermissions(),
	})
	return err
}

// Ban removes a member from the group permanently.
func (a *Actions) Ban(chatID, userID int64) error {
	_, err := a.api.Request(tgbotapi.BanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{
			ChatID: chatID,
			UserID: userID,
		},
	})
	return err
}

// Kick removes a member but lets them rejoin: ban followed by unban.
func (a *Actions) Kick(chatID, userID int64) error {
	if err := a.Ban(chatID, userID); err != nil {
		return err
	}
	_, err := a.api.Request(tgbotapi.UnbanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{
			ChatID: chatID,
			UserID: userID,
		},
	})
	return err
}
