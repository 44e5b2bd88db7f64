package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/quailyquaily/groupwarden/stats"
)

const testBotID int64 = 999

type fakeClient struct {
	members     map[int64]tgbotapi.ChatMember
	memberErr   error
	memberCount int
	countErr    error
	admins      []tgbotapi.ChatMember
	adminsErr   error
	requests    []tgbotapi.Chattable
	requestErr  error
	sent        []tgbotapi.MessageConfig
}

func (f *fakeClient) GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
	if f.memberErr != nil {
		return tgbotapi.ChatMember{}, f.memberErr
	}
	return f.members[config.UserID], nil
}

func (f *fakeClient) GetChatMembersCount(config tgbotapi.ChatMemberCountConfig) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.memberCount, nil
}

func (f *fakeClient) GetChatAdministrators(config tgbotapi.ChatAdministratorsConfig) ([]tgbotapi.ChatMember, error) {
	if f.adminsErr != nil {
		return nil, f.adminsErr
	}
	return f.admins, nil
}

func (f *fakeClient) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	if f.requestErr != nil {
		return nil, f.requestErr
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeClient) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if out, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, out)
	}
	return tgbotapi.Message{}, nil
}

// adminClient returns a client where user 1 is an admin, user 2 is a plain
// member, and the bot is an admin.
func adminClient() *fakeClient {
	return &fakeClient{
		members: map[int64]tgbotapi.ChatMember{
			1:         {Status: "administrator"},
			2:         {Status: "member"},
			testBotID: {Status: "administrator"},
		},
	}
}

func newTestBot(t *testing.T, client *fakeClient) (*Bot, *stats.Store) {
	t.Helper()
	store, err := stats.Open(stats.Options{
		Path: filepath.Join(t.TempDir(), "stats.db"),
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	b := New(Options{
		API:          client,
		BotID:        testBotID,
		Store:        store,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		MuteDuration: time.Hour,
	})
	return b, store
}

func groupChat() *tgbotapi.Chat {
	return &tgbotapi.Chat{ID: -100, Type: "supergroup", Title: "Gopher Den"}
}

func privateChat() *tgbotapi.Chat {
	return &tgbotapi.Chat{ID: 1, Type: "private"}
}

func adminUser() *tgbotapi.User  { return &tgbotapi.User{ID: 1, UserName: "alice", FirstName: "Alice"} }
func memberUser() *tgbotapi.User { return &tgbotapi.User{ID: 2, UserName: "bob", FirstName: "Bob"} }

func command(chat *tgbotapi.Chat, from *tgbotapi.User, text string) *tgbotapi.Message {
	cmdLen := len(text)
	if i := strings.Index(text, " "); i >= 0 {
		cmdLen = i
	}
	return &tgbotapi.Message{
		MessageID: 7,
		From:      from,
		Chat:      chat,
		Text:      text,
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: cmdLen},
		},
	}
}

func plainMessage(chat *tgbotapi.Chat, from *tgbotapi.User, text string) *tgbotapi.Message {
	return &tgbotapi.Message{MessageID: 8, From: from, Chat: chat, Text: text}
}

func handle(b *Bot, msg *tgbotapi.Message) {
	b.HandleUpdate(context.Background(), tgbotapi.Update{Message: msg})
}

func lastReply(t *testing.T, client *fakeClient) tgbotapi.MessageConfig {
	t.Helper()
	if len(client.sent) == 0 {
		t.Fatal("no reply was sent")
	}
	return client.sent[len(client.sent)-1]
}

func TestPrivilegedCommandsRejectNonAdmins(t *testing.T) {
	t.Parallel()

	commands := []string{"/lock", "/unlock", "/mute", "/unmute", "/ban", "/kick"}
	for _, cmd := range commands {
		cmd := cmd
		t.Run(strings.TrimPrefix(cmd, "/"), func(t *testing.T) {
			t.Parallel()
			client := adminClient()
			b, _ := newTestBot(t, client)

			handle(b, command(groupChat(), memberUser(), cmd))

			reply := lastReply(t, client)
			if reply.Text != "❌ Only admins can use this command!" {
				t.Fatalf("reply = %q", reply.Text)
			}
			if len(client.requests) != 0 {
				t.Fatalf("got %d moderation requests, want 0", len(client.requests))
			}
		})
	}
}

func TestPrivilegedCommandsRequireBotAdmin(t *testing.T) {
	t.Parallel()

	cases := []struct {
		cmd  string
		want string
	}{
		{cmd: "/lock", want: "❌ I need admin privileges to lock the group!"},
		{cmd: "/unlock", want: "❌ I need admin privileges to unlock the group!"},
		{cmd: "/mute", want: "❌ I need admin privileges to mute users!"},
		{cmd: "/unmute", want: "❌ I need admin privileges to unmute users!"},
		{cmd: "/ban", want: "❌ I need admin privileges to ban users!"},
		{cmd: "/kick", want: "❌ I need admin privileges to kick users!"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(strings.TrimPrefix(tc.cmd, "/"), func(t *testing.T) {
			t.Parallel()
			client := adminClient()
			client.members[testBotID] = tgbotapi.ChatMember{Status: "member"}
			b, _ := newTestBot(t, client)

			handle(b, command(groupChat(), adminUser(), tc.cmd))

			if reply := lastReply(t, client); reply.Text != tc.want {
				t.Fatalf("reply = %q, want %q", reply.Text, tc.want)
			}
			if len(client.requests) != 0 {
				t.Fatalf("got %d moderation requests, want 0", len(client.requests))
			}
		})
	}
}

func TestPermissionLookupFailureRejects(t *testing.T) {
	t.Parallel()

	client := adminClient()
	client.memberErr = errors.New("bad gateway")
	b, _ := newTestBot(t, client)

	handle(b, command(groupChat(), adminUser(), "/lock"))

	if reply := lastReply(t, client); reply.Text != "❌ Only admins can use this command!" {
		t.Fatalf("reply = %q", reply.Text)
	}
}

func TestLockCommand(t *testing.T) {
	t.Parallel()

	client := adminClient()
	b, store := newTestBot(t, client)

	handle(b, command(groupChat(), adminUser(), "/lock"))

	if len(client.requests) != 1 {
		t.Fatalf("got %d requests, want 1", len(client.requests))
	}
	cfg, ok := client.requests[0].(tgbotapi.SetChatPermissionsConfig)
	if !ok {
		t.Fatalf("got %T, want SetChatPermissionsConfig", client.requests[0])
	}
	if cfg.Permissions.CanSendMessages {
		t.Fatal("lock should revoke sending")
	}
	if reply := lastReply(t, client); !strings.HasPrefix(reply.Text, "🔒") {
		t.Fatalf("reply = %q", reply.Text)
	}

	actions, err := store.RecentModActions(context.Background(), -100, 10)
	if err != nil {
		t.Fatalf("RecentModActions: %v", err)
	}
	if len(actions) != 1 || actions[0].Action != "lock" || actions[0].ActorID != 1 {
		t.Fatalf("audit rows = %+v", actions)
	}
}

func TestMuteRequiresTarget(t *testing.T) {
	t.Parallel()

	client := adminClient()
	b, _ := newTestBot(t, client)

	handle(b, command(groupChat(), adminUser(), "/mute"))
	if reply := lastReply(t, client); reply.Text != "Please reply to a message from the user you want to mute or use @username" {
		t.Fatalf("reply = %q", reply.Text)
	}

	handle(b, command(groupChat(), adminUser(), "/mute @bob"))
	if reply := lastReply(t, client); reply.Text != "Please reply to a message or provide user ID" {
		t.Fatalf("reply = %q", reply.Text)
	}

	if len(client.requests) != 0 {
		t.Fatalf("got %d moderation requests, want 0", len(client.requests))
	}
}

func TestMuteRestrictsReplyTarget(t *testing.T) {
	t.Parallel()

	client := adminClient()
	b, _ := newTestBot(t, client)

	msg := command(groupChat(), adminUser(), "/mute")
	msg.ReplyToMessage = plainMessage(groupChat(), memberUser(), "spam")
	handle(b, msg)

	if len(client.requests) != 1 {
		t.Fatalf("got %d requests, want 1", len(client.requests))
	}
	cfg, ok := client.requests[0].(tgbotapi.RestrictChatMemberConfig)
	if !ok {
		t.Fatalf("got %T, want RestrictChatMemberConfig", client.requests[0])
	}
	if cfg.UserID != 2 {
		t.Fatalf("UserID = %d, want 2", cfg.UserID)
	}
	if cfg.Permissions.CanSendMessages {
		t.Fatal("mute should revoke sending")
	}
	if reply := lastReply(t, client); reply.Text != "🔇 User Bob has been muted for 1 hour." {
		t.Fatalf("reply = %q", reply.Text)
	}
}

func TestKickBansThenUnbans(t *testing.T) {
	t.Parallel()

	client := adminClient()
	b, store := newTestBot(t, client)

	msg := command(groupChat(), adminUser(), "/kick")
	msg.ReplyToMessage = plainMessage(groupChat(), memberUser(), "bye")
	handle(b, msg)

	if len(client.requests) != 2 {
		t.Fatalf("got %d requests, want 2", len(client.requests))
	}
	if _, ok := client.requests[0].(tgbotapi.BanChatMemberConfig); !ok {
		t.Fatalf("first request is %T, want BanChatMemberConfig", client.requests[0])
	}
	if _, ok := client.requests[1].(tgbotapi.UnbanChatMemberConfig); !ok {
		t.Fatalf("second request is %T, want UnbanChatMemberConfig", client.requests[1])
	}
	if reply := lastReply(t, client); reply.Text != "👢 User Bob has been kicked from the group." {
		t.Fatalf("reply = %q", reply.Text)
	}

	actions, err := store.RecentModActions(context.Background(), -100, 10)
	if err != nil {
		t.Fatalf("RecentModActions: %v", err)
	}
	if len(actions) != 1 || actions[0].Action != "kick" || actions[0].TargetID != 2 {
		t.Fatalf("audit rows = %+v", actions)
	}
}

func TestModerationFailureRepliesWithError(t *testing.T) {
	t.Parallel()

	client := adminClient()
	client.requestErr = errors.New("not enough rights")
	b, store := newTestBot(t, client)

	msg := command(groupChat(), adminUser(), "/ban")
	msg.ReplyToMessage = plainMessage(groupChat(), memberUser(), "spam")
	handle(b, msg)

	reply := lastReply(t, client)
	if reply.Text != "❌ Failed to ban user: not enough rights" {
		t.Fatalf("reply = %q", reply.Text)
	}

	actions, err := store.RecentModActions(context.Background(), -100, 10)
	if err != nil {
		t.Fatalf("RecentModActions: %v", err)
	}
	if len(actions) != 0 {
		t.Fatalf("failed command should not be audited, got %+v", actions)
	}
}

func TestStatsRejectsPrivateChats(t *testing.T) {
	t.Parallel()

	client := adminClient()
	b, _ := newTestBot(t, client)

	handle(b, command(privateChat(), adminUser(), "/stats"))

	if reply := lastReply(t, client); reply.Text != "This command only works in groups!" {
		t.Fatalf("reply = %q", reply.Text)
	}
}

func TestStatsReportsCounters(t *testing.T) {
	t.Parallel()

	client := adminClient()
	client.memberCount = 25
	client.admins = []tgbotapi.ChatMember{{Status: "creator"}, {Status: "administrator"}}
	b, store := newTestBot(t, client)

	handle(b, plainMessage(groupChat(), adminUser(), "hello"))
	handle(b, plainMessage(groupChat(), memberUser(), "hi"))
	handle(b, plainMessage(groupChat(), memberUser(), "hi again"))

	handle(b, command(groupChat(), adminUser(), "/stats"))

	reply := lastReply(t, client)
	if reply.ParseMode != tgbotapi.ModeMarkdown {
		t.Fatalf("ParseMode = %q", reply.ParseMode)
	}
	for _, want := range []string{
		"Group Statistics for Gopher Den",
		"*Members:* 25",
		"*Admins:* 2",
		"*Active Users Today:* 2",
		"*Messages Today:* 3",
	} {
		if !strings.Contains(reply.Text, want) {
			t.Fatalf("reply %q missing %q", reply.Text, want)
		}
	}

	snap, err := store.Snapshot(context.Background(), -100)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.MessagesToday != 3 {
		t.Fatalf("MessagesToday = %d, want 3", snap.MessagesToday)
	}
}

func TestStatsLookupFailureRepliesWithError(t *testing.T) {
	t.Parallel()

	client := adminClient()
	client.countErr = errors.New("chat not found")
	b, _ := newTestBot(t, client)

	handle(b, command(groupChat(), adminUser(), "/stats"))

	if reply := lastReply(t, client); reply.Text != "❌ Error getting statistics: chat not found" {
		t.Fatalf("reply = %q", reply.Text)
	}
}

func TestKnownCommandsAreNotTracked(t *testing.T) {
	t.Parallel()

	client := adminClient()
	b, store := newTestBot(t, client)

	handle(b, command(groupChat(), memberUser(), "/help"))
	handle(b, command(groupChat(), memberUser(), "/frobnicate"))
	handle(b, plainMessage(privateChat(), memberUser(), "psst"))
	handle(b, plainMessage(groupChat(), memberUser(), "hello"))

	snap, err := store.Snapshot(context.Background(), -100)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	// /help is dispatched, the unknown command and the plain group message
	// count, the private message never does.
	if snap.MessagesToday != 2 {
		t.Fatalf("MessagesToday = %d, want 2", snap.MessagesToday)
	}
}

func TestStartAndHelpReply(t *testing.T) {
	t.Parallel()

	client := adminClient()
	b, _ := newTestBot(t, client)

	handle(b, command(privateChat(), memberUser(), "/start"))
	if reply := lastReply(t, client); !strings.Contains(reply.Text, "Group Manager Bot is now active!") {
		t.Fatalf("reply = %q", reply.Text)
	}

	handle(b, command(privateChat(), memberUser(), "/help"))
	reply := lastReply(t, client)
	if reply.ParseMode != tgbotapi.ModeMarkdown {
		t.Fatalf("ParseMode = %q", reply.ParseMode)
	}
	if !strings.Contains(reply.Text, "/mute") || !strings.Contains(reply.Text, "/stats") {
		t.Fatalf("help text missing commands: %q", reply.Text)
	}
	if reply.ReplyToMessageID != 7 {
		t.Fatalf("ReplyToMessageID = %d, want 7", reply.ReplyToMessageID)
	}
}
