package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/quailyquaily/groupwarden/stats"
)

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	b.reply(msg, startText)
}

func (b *Bot) handleHelp(ctx context.Context, msg *tgbotapi.Message) {
	b.replyMarkdown(msg, helpText)
}

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat.IsPrivate() {
		b.reply(msg, "This command only works in groups!")
		return
	}

	memberCount, err := b.api.GetChatMembersCount(tgbotapi.ChatMemberCountConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: msg.Chat.ID},
	})
	if err != nil {
		b.reply(msg, fmt.Sprintf("❌ Error getting statistics: %s", err))
		return
	}
	admins, err := b.api.GetChatAdministrators(tgbotapi.ChatAdministratorsConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: msg.Chat.ID},
	})
	if err != nil {
		b.reply(msg, fmt.Sprintf("❌ Error getting statistics: %s", err))
		return
	}
	snap, err := b.store.Snapshot(ctx, msg.Chat.ID)
	if err != nil {
		b.reply(msg, fmt.Sprintf("❌ Error getting statistics: %s", err))
		return
	}
	if err := b.store.SetMemberCount(ctx, msg.Chat.ID, memberCount); err != nil {
		b.logger.Error("set_member_count_failed", "chat_id", msg.Chat.ID, "error", err)
	}

	b.replyMarkdown(msg, statsText(msg.Chat.Title, memberCount, len(admins), snap, b.now()))
}

func (b *Bot) handleLock(ctx context.Context, msg *tgbotapi.Message) {
	if !b.authorize(msg, "lock the group") {
		return
	}
	if err := b.actions.Lock(msg.Chat.ID); err != nil {
		b.reply(msg, fmt.Sprintf("❌ Failed to lock group: %s", err))
		return
	}
	b.recordAction(ctx, msg, 0, "lock")
	b.reply(msg, "🔒 Group has been locked! Only admins can send messages.")
}

func (b *Bot) handleUnlock(ctx context.Context, msg *tgbotapi.Message) {
	if !b.authorize(msg, "unlock the group") {
		return
	}
	if err := b.actions.Unlock(msg.Chat.ID); err != nil {
		b.reply(msg, fmt.Sprintf("❌ Failed to unlock group: %s", err))
		return
	}
	b.recordAction(ctx, msg, 0, "unlock")
	b.reply(msg, "🔓 Group has been unlocked! Everyone can send messages.")
}

func (b *Bot) handleMute(ctx context.Context, msg *tgbotapi.Message) {
	if !b.authorize(msg, "mute users") {
		return
	}
	var target *tgbotapi.User
	switch {
	case msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil:
		target = msg.ReplyToMessage.From
	case strings.HasPrefix(msg.CommandArguments(), "@"):
		// The Bot API has no lookup from username to user id.
		b.reply(msg, "Please reply to a message or provide user ID")
		return
	default:
		b.reply(msg, "Please reply to a message from the user you want to mute or use @username")
		return
	}

	until := b.now().Add(b.muteDuration)
	if err := b.actions.Mute(msg.Chat.ID, target.ID, until); err != nil {
		b.reply(msg, fmt.Sprintf("❌ Failed to mute user: %s", err))
		return
	}
	b.recordAction(ctx, msg, target.ID, "mute")
	b.reply(msg, fmt.Sprintf("🔇 User %s has been muted for %s.", target.FirstName, humanDuration(b.muteDuration)))
}

func (b *Bot) handleUnmute(ctx context.Context, msg *tgbotapi.Message) {
	if !b.authorize(msg, "unmute users") {
		return
	}
	target := b.targetUser(msg, "unmute")
	if target == nil {
		return
	}
	if err := b.actions.Unmute(msg.Chat.ID, target.ID); err != nil {
		b.reply(msg, fmt.Sprintf("❌ Failed to unmute user: %s", err))
		return
	}
	b.recordAction(ctx, msg, target.ID, "unmute")
	b.reply(msg, fmt.Sprintf("🔊 User %s has been unmuted.", target.FirstName))
}

func (b *Bot) handleBan(ctx context.Context, msg *tgbotapi.Message) {
	if !b.authorize(msg, "ban users") {
		return
	}
	target := b.targetUser(msg, "ban")
	if target == nil {
		return
	}
	if err := b.actions.Ban(msg.Chat.ID, target.ID); err != nil {
		b.reply(msg, fmt.Sprintf("❌ Failed to ban user: %s", err))
		return
	}
	b.recordAction(ctx, msg, target.ID, "ban")
	b.reply(msg, fmt.Sprintf("🚫 User %s has been banned from the group.", target.FirstName))
}

func (b *Bot) handleKick(ctx context.Context, msg *tgbotapi.Message) {
	if !b.authorize(msg, "kick users") {
		return
	}
	target := b.targetUser(msg, "kick")
	if target == nil {
		return
	}
	if err := b.actions.Kick(msg.Chat.ID, target.ID); err != nil {
		b.reply(msg, fmt.Sprintf("❌ Failed to kick user: %s", err))
		return
	}
	b.recordAction(ctx, msg, target.ID, "kick")
	b.reply(msg, fmt.Sprintf("👢 User %s has been kicked from the group.", target.FirstName))
}

// authorize runs the two checks in front of every privileged command: the
// caller must be a chat admin and the bot must be one too. verb names what
// the command was about to do, for the second error text.
func (b *Bot) authorize(msg *tgbotapi.Message, verb string) bool {
	if !b.gate.IsAdmin(msg.Chat.ID, msg.From.ID) {
		b.reply(msg, "❌ Only admins can use this command!")
		return false
	}
	if !b.gate.IsBotAdmin(msg.Chat.ID) {
		b.reply(msg, fmt.Sprintf("❌ I need admin privileges to %s!", verb))
		return false
	}
	return true
}

// targetUser resolves the user a member command acts on: the author of the
// replied-to message. Without a reply there is nothing to act on.
func (b *Bot) targetUser(msg *tgbotapi.Message, action string) *tgbotapi.User {
	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil {
		return msg.ReplyToMessage.From
	}
	b.reply(msg, fmt.Sprintf("Please reply to a message from the user you want to %s", action))
	return nil
}

func (b *Bot) trackActivity(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat.IsPrivate() {
		return
	}
	err := b.store.RecordMessage(ctx, stats.Message{
		GroupID:   msg.Chat.ID,
		UserID:    msg.From.ID,
		Username:  msg.From.UserName,
		FirstName: msg.From.FirstName,
	})
	if err != nil {
		b.logger.Error("track_activity_failed", "chat_id", msg.Chat.ID, "user_id", msg.From.ID, "error", err)
	}
}

// recordAction writes the audit row for a moderation call that went through.
// Audit failures are logged, never surfaced to the chat.
func (b *Bot) recordAction(ctx context.Context, msg *tgbotapi.Message, targetID int64, action string) {
	err := b.store.RecordModAction(ctx, stats.ModAction{
		GroupID:  msg.Chat.ID,
		ActorID:  msg.From.ID,
		TargetID: targetID,
		Action:   action,
	})
	if err != nil {
		b.logger.Error("record_mod_action_failed", "action", action, "chat_id", msg.Chat.ID, "error", err)
	}
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	b.send(msg, text, "")
}

func (b *Bot) replyMarkdown(msg *tgbotapi.Message, text string) {
	b.send(msg, text, tgbotapi.ModeMarkdown)
}

func (b *Bot) send(msg *tgbotapi.Message, text, parseMode string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	out.ParseMode = parseMode
	if _, err := b.api.Send(out); err != nil {
		b.logger.Error("send_reply_failed", "chat_id", msg.Chat.ID, "error", err)
	}
}
