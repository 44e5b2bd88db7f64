package bot

import (
	"fmt"
	"time"

	"github.com/quailyquaily/groupwarden/internal/telegramutil"
	"github.com/quailyquaily/groupwarden/stats"
)

const startText = "🤖 Group Manager Bot is now active!\n\n" +
	"I can help you manage this group and provide statistics.\n" +
	"Use /help to see available commands."

const helpText = `🔧 *Group Manager Bot Commands*

📊 *Statistics:*
/stats - Show group statistics

🔒 *Group Management (Admin Only):*
/lock - Lock the group (only admins can send messages)
/unlock - Unlock the group (everyone can send messages)

👥 *User Management (Admin Only):*
/mute - Mute a user (reply to their message)
/unmute - Unmute a user (reply to their message)
/ban - Ban a user from the group (reply to their message)
/kick - Kick a user from the group (reply to their message)

ℹ️ *Other:*
/help - Show this help message

*Note:* Admin commands require both you and the bot to have administrator privileges.`

func statsText(title string, members, admins int, snap stats.GroupSnapshot, now time.Time) string {
	return fmt.Sprintf(`📊 *Group Statistics for %s*

👥 *Members:* %d
👑 *Admins:* %d
📱 *Active Users Today:* %d
💬 *Messages Today:* %d

📅 *Date:* %s`,
		telegramutil.EscapeMarkdown(title), members, admins, snap.ActiveUsersToday, snap.MessagesToday,
		now.Format("2006-01-02 15:04:05"))
}

// humanDuration renders the mute duration the way it reads in chat: whole
// hours and minutes get words, anything else falls back to Duration.String.
func humanDuration(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d == time.Minute:
		return "1 minute"
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}
