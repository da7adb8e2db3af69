package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetOrCreateUser returns the user for a chat, creating an unauthorized
// record if none exists.
func (r *implRepository) GetOrCreateUser(ctx context.Context, chatID int64) (User, error) {
	user, err := r.userByChatID(ctx, chatID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("query user: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (chat_id, is_authorized) VALUES (?, 0)`, chatID)
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}

	return User{ID: id, ChatID: chatID}, nil
}

// AuthorizeUser grants access to a chat unless the authorized-user cap
// is already reached.
func (r *implRepository) AuthorizeUser(ctx context.Context, chatID int64, maxUsers int) (AuthStatus, error) {
	user, err := r.GetOrCreateUser(ctx, chatID)
	if err != nil {
		return "", err
	}
	if user.IsAuthorized {
		return AuthStatusAlreadyAuthorized, nil
	}

	count, err := r.AuthorizedCount(ctx)
	if err != nil {
		return "", err
	}
	if count >= maxUsers {
		return AuthStatusLimitReached, nil
	}

	if _, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_authorized = 1 WHERE id = ?`, user.ID); err != nil {
		return "", fmt.Errorf("authorize user: %w", err)
	}
	return AuthStatusAuthorized, nil
}

// DeauthorizeUser revokes access. Returns false if the chat is unknown.
func (r *implRepository) DeauthorizeUser(ctx context.Context, chatID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_authorized = 0 WHERE chat_id = ?`, chatID)
	if err != nil {
		return false, fmt.Errorf("deauthorize user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deauthorize user: %w", err)
	}
	return affected > 0, nil
}

func (r *implRepository) IsAuthorized(ctx context.Context, chatID int64) (bool, error) {
	var authorized bool
	err := r.db.QueryRowContext(ctx,
		`SELECT is_authorized FROM users WHERE chat_id = ?`, chatID).Scan(&authorized)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query authorization: %w", err)
	}
	return authorized, nil
}

func (r *implRepository) AuthorizedCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE is_authorized = 1`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count authorized users: %w", err)
	}
	return count, nil
}

// SaveTranscription stores one completed processing result and returns
// its identifier.
func (r *implRepository) SaveTranscription(ctx context.Context, t Transcription) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transcriptions
			(user_id, file_name, file_type, duration_seconds, transcription_text, analysis_text, cost_rubles)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.FileName, t.FileType, t.DurationSeconds,
		t.TranscriptionText, t.AnalysisText, t.CostRubles)
	if err != nil {
		return 0, fmt.Errorf("save transcription: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("save transcription: %w", err)
	}
	return id, nil
}

// ListTranscriptions returns a chat's history, newest first.
func (r *implRepository) ListTranscriptions(ctx context.Context, chatID int64, limit, offset int) ([]Transcription, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.user_id, t.file_name, t.file_type,
			COALESCE(t.duration_seconds, 0), COALESCE(t.transcription_text, ''),
			COALESCE(t.analysis_text, ''), COALESCE(t.cost_rubles, 0), t.created_at
		FROM transcriptions t
		JOIN users u ON u.id = t.user_id
		WHERE u.chat_id = ?
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT ? OFFSET ?`,
		chatID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transcriptions: %w", err)
	}
	defer rows.Close()

	var out []Transcription
	for rows.Next() {
		var t Transcription
		if err := rows.Scan(&t.ID, &t.UserID, &t.FileName, &t.FileType,
			&t.DurationSeconds, &t.TranscriptionText, &t.AnalysisText,
			&t.CostRubles, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transcription: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *implRepository) GetTranscription(ctx context.Context, id int64) (*Transcription, error) {
	var t Transcription
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, file_name, file_type,
			COALESCE(duration_seconds, 0), COALESCE(transcription_text, ''),
			COALESCE(analysis_text, ''), COALESCE(cost_rubles, 0), created_at
		FROM transcriptions WHERE id = ?`, id).
		Scan(&t.ID, &t.UserID, &t.FileName, &t.FileType,
			&t.DurationSeconds, &t.TranscriptionText, &t.AnalysisText,
			&t.CostRubles, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transcription: %w", err)
	}
	return &t, nil
}

func (r *implRepository) userByChatID(ctx context.Context, chatID int64) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, chat_id, is_authorized, created_at FROM users WHERE chat_id = ?`, chatID).
		Scan(&u.ID, &u.ChatID, &u.IsAuthorized, &u.CreatedAt)
	return u, err
}
