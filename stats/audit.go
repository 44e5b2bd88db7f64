package stats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ModAction is one privileged command that actually went through: who did
// what to whom, in which group.
type ModAction struct {
	ID        string
	GroupID   int64
	ActorID   int64
	TargetID  int64
	Action    string
	CreatedAt time.Time
}

func (s *Store) RecordModAction(ctx context.Context, action ModAction) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(action.Action) == "" {
		return fmt.Errorf("action is required")
	}
	if action.GroupID == 0 {
		return fmt.Errorf("group id is required")
	}
	if action.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		action.ID = id.String()
	}
	if action.CreatedAt.IsZero() {
		action.CreatedAt = s.now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mod_actions (id, group_id, actor_id, target_id, action, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, action.ID, action.GroupID, action.ActorID, action.TargetID, action.Action,
		action.CreatedAt.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("insert mod action: %w", err)
	}
	return nil
}

func (s *Store) RecentModActions(ctx context.Context, groupID int64, limit int) ([]ModAction, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, group_id, actor_id, target_id, action, created_at
		FROM mod_actions
		WHERE group_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, groupID, limit)
	if err != nil {
		return nil, fmt.Errorf("query mod actions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var actions []ModAction
	for rows.Next() {
		var a ModAction
		var createdAt string
		if err := rows.Scan(&a.ID, &a.GroupID, &a.ActorID, &a.TargetID, &a.Action, &createdAt); err != nil {
			return nil, fmt.Errorf("scan mod action: %w", err)
		}
		a.CreatedAt, err = time.Parse(timeFormat, createdAt)
		if err != nil {
			return nil, fmt.Errorf("created_at is invalid: %w", err)
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}
