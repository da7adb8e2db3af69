package iam

import "context"

// Manager hands out valid IAM bearer tokens for the cloud API clients,
// refreshing them ahead of expiry.
type Manager interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}
