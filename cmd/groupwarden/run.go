package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/quailyquaily/groupwarden/bot"
	"github.com/quailyquaily/groupwarden/internal/logutil"
	"github.com/quailyquaily/groupwarden/stats"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the Telegram moderation bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			token := strings.TrimSpace(flagOrViperString(cmd, "bot-token", "telegram.bot_token"))
			if token == "" {
				return fmt.Errorf("missing telegram.bot_token (set via --bot-token or GROUPWARDEN_TELEGRAM_BOT_TOKEN)")
			}

			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			store, err := stats.Open(stats.Options{
				Path: flagOrViperString(cmd, "db-path", "db.path"),
			})
			if err != nil {
				return fmt.Errorf("open stats store: %w", err)
			}
			defer func() { _ = store.Close() }()

			api, err := tgbotapi.NewBotAPI(token)
			if err != nil {
				return fmt.Errorf("init telegram client: %w", err)
			}

			b := bot.New(bot.Options{
				API:          api,
				BotID:        api.Self.ID,
				Store:        store,
				Logger:       logger,
				MuteDuration: flagOrViperDuration(cmd, "mute-duration", "telegram.mute_duration"),
				PollTimeout:  flagOrViperDuration(cmd, "poll-timeout", "telegram.poll_timeout"),
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("bot_start", "username", api.Self.UserName, "id", api.Self.ID)
			return b.Run(ctx, api)
		},
	}

	cmd.Flags().String("bot-token", "", "Telegram bot token.")
	cmd.Flags().Duration("mute-duration", time.Hour, "How long /mute restricts a user.")
	cmd.Flags().Duration("poll-timeout", 60*time.Second, "Long-poll timeout for getUpdates.")

	_ = viper.BindPFlag("telegram.bot_token", cmd.Flags().Lookup("bot-token"))
	_ = viper.BindPFlag("telegram.mute_duration", cmd.Flags().Lookup("mute-duration"))
	_ = viper.BindPFlag("telegram.poll_timeout", cmd.Flags().Lookup("poll-timeout"))

	return cmd
}
