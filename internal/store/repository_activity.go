package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// InsertActivityLog appends one immutable activity row and fills in its id and
// timestamp.
func (s *Store) InsertActivityLog(ctx context.Context, entry ActivityLog) (ActivityLog, error) {
	err := s.Pool.QueryRow(ctx, `INSERT INTO activity_logs
			(agent_id, action, type, status, response_time, user_name, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, now()))
		RETURNING id, created_at`,
		entry.AgentID, entry.Action, entry.Type, entry.Status, entry.ResponseTimeMS,
		textParam(entry.UserName), textParam(entry.ImageURL), timestamptzParam(entry.CreatedAt),
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return ActivityLog{}, err
	}
	return entry, nil
}

// ListActivityLogs orders by timestamp, newest first, falling back to the
// insertion id when timestamps collide.
func (s *Store) ListActivityLogs(ctx context.Context, f ActivityFilter) ([]ActivityLog, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	rows, err := s.Pool.Query(ctx, `SELECT l.id, l.agent_id, COALESCE(a.name, ''), l.action, l.type, l.status,
			l.response_time, l.user_name, l.image_url, l.created_at
		FROM activity_logs l LEFT JOIN agents a ON a.id = l.agent_id
		WHERE ($1 = '' OR l.agent_id = $1)
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $2 OFFSET $3`, f.AgentID, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ActivityLog{}
	for rows.Next() {
		var (
			l        ActivityLog
			userName pgtype.Text
			imageURL pgtype.Text
		)
		if err := rows.Scan(&l.ID, &l.AgentID, &l.AgentName, &l.Action, &l.Type, &l.Status,
			&l.ResponseTimeMS, &userName, &imageURL, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.UserName = textVal(userName)
		l.ImageURL = textVal(imageURL)
		out = append(out, l)
	}
	return out, rows.Err()
}
