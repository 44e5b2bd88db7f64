package stats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Message is one observed group message, the unit the counters advance by.
type Message struct {
	GroupID   int64
	UserID    int64
	Username  string
	FirstName string
}

// RecordMessage advances both counters in one transaction: the per-user
// activity row (profile refreshed, last-active day set, running count +1) and
// the group's daily row (messages +1, member_count preserved). N messages
// from one user on one day yield a per-user count of N and contribute exactly
// N to that day's group total.
func (s *Store) RecordMessage(ctx context.Context, msg Message) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if msg.GroupID == 0 {
		return fmt.Errorf("group id is required")
	}
	if msg.UserID == 0 {
		return fmt.Errorf("user id is required")
	}
	day := s.today()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO user_activity (user_id, group_id, username, first_name, last_message, message_count)
		VALUES (?, ?, ?, ?, ?, 1)
		ON CONFLICT (user_id, group_id) DO UPDATE SET
			username = excluded.username,
			first_name = excluded.first_name,
			last_message = excluded.last_message,
			message_count = user_activity.message_count + 1
	`, msg.UserID, msg.GroupID, msg.Username, msg.FirstName, day); err != nil {
		return fmt.Errorf("upsert user activity: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO group_stats (group_id, date, member_count, messages_count)
		VALUES (?, ?, NULL, 1)
		ON CONFLICT (group_id, date) DO UPDATE SET
			messages_count = group_stats.messages_count + 1
	`, msg.GroupID, day); err != nil {
		return fmt.Errorf("upsert group stats: %w", err)
	}

	return tx.Commit()
}

// GroupSnapshot is the stored side of a /stats reply.
type GroupSnapshot struct {
	MessagesToday    int64
	ActiveUsersToday int64
}

// Snapshot reads today's message count and the number of users whose last
// message was sent today. Missing rows read as zero.
func (s *Store) Snapshot(ctx context.Context, groupID int64) (GroupSnapshot, error) {
	if err := s.ready(ctx); err != nil {
		return GroupSnapshot{}, err
	}
	day := s.today()

	var snap GroupSnapshot
	err := s.db.QueryRowContext(ctx, `
		SELECT messages_count FROM group_stats
		WHERE group_id = ? AND date = ?
	`, groupID, day).Scan(&snap.MessagesToday)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return GroupSnapshot{}, fmt.Errorf("read group stats: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM user_activity
		WHERE group_id = ? AND last_message = ?
	`, groupID, day).Scan(&snap.ActiveUsersToday); err != nil {
		return GroupSnapshot{}, fmt.Errorf("count active users: %w", err)
	}

	return snap, nil
}

// SetMemberCount records the member count observed while serving /stats,
// preserving any message count already accumulated for the day.
func (s *Store) SetMemberCount(ctx context.Context, groupID int64, count int) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO group_stats (group_id, date, member_count, messages_count)
		VALUES (?, ?, ?, 0)
		ON CONFLICT (group_id, date) DO UPDATE SET
			member_count = excluded.member_count
	`, groupID, s.today(), count)
	if err != nil {
		return fmt.Errorf("set member count: %w", err)
	}
	return nil
}
