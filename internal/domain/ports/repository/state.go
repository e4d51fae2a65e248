package repository

import "drive-search-bot/internal/domain/model"

// SessionStore holds short-lived per-user interaction state. It is not
// persisted and does not survive a restart.
type SessionStore interface {
	Mode(userID int64) model.Mode
	SetMode(userID int64, m model.Mode)
	ClearMode(userID int64)

	Enqueue(userID int64, msg model.QueuedMessage) int
	Queue(userID int64) []model.QueuedMessage
	ClearQueue(userID int64)

	StageDeletions(userID int64, fileIDs []string)
	PendingDeletions(userID int64) []string
	ClearDeletions(userID int64)
}
