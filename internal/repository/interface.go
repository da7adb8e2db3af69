package repository

import (
	"context"
	"time"
)

// User is an authorized chat identity.
type User struct {
	ID           int64
	ChatID       int64
	IsAuthorized bool
	CreatedAt    time.Time
}

// Transcription is one stored processing result.
type Transcription struct {
	ID                int64
	UserID            int64
	FileName          string
	FileType          string
	DurationSeconds   float64
	TranscriptionText string
	AnalysisText      string
	CostRubles        float64
	CreatedAt         time.Time
}

// AuthStatus reports the outcome of an authorization attempt.
type AuthStatus string

const (
	AuthStatusAuthorized        AuthStatus = "authorized"
	AuthStatusAlreadyAuthorized AuthStatus = "already_authorized"
	AuthStatusLimitReached      AuthStatus = "user_limit_reached"
)

// Repository stores users and transcription results.
type Repository interface {
	GetOrCreateUser(ctx context.Context, chatID int64) (User, error)
	AuthorizeUser(ctx context.Context, chatID int64, maxUsers int) (AuthStatus, error)
	DeauthorizeUser(ctx context.Context, chatID int64) (bool, error)
	IsAuthorized(ctx context.Context, chatID int64) (bool, error)
	AuthorizedCount(ctx context.Context) (int, error)
	SaveTranscription(ctx context.Context, t Transcription) (int64, error)
	ListTranscriptions(ctx context.Context, chatID int64, limit, offset int) ([]Transcription, error)
	GetTranscription(ctx context.Context, id int64) (*Transcription, error)
	Close() error
}
