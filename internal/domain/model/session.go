package model

// Mode is the per-user interaction state. At most one is active per user.
type Mode uint8

const (
	ModeIdle Mode = iota
	ModeBroadcasting
	ModeRequesting
	ModeAwaitingDeleteQuery
	ModeAwaitingBanTarget
	ModeAwaitingUnbanTarget
)

func (m Mode) String() string {
	switch m {
	case ModeBroadcasting:
		return "broadcasting"
	case ModeRequesting:
		return "requesting"
	case ModeAwaitingDeleteQuery:
		return "awaiting_delete_query"
	case ModeAwaitingBanTarget:
		return "awaiting_ban_target"
	case ModeAwaitingUnbanTarget:
		return "awaiting_unban_target"
	default:
		return "idle"
	}
}

// CancelledByCommand reports whether issuing any command abandons the mode.
func (m Mode) CancelledByCommand() bool {
	switch m {
	case ModeAwaitingDeleteQuery, ModeAwaitingBanTarget, ModeAwaitingUnbanTarget:
		return true
	}
	return false
}

// QueuedMessage references a message to be copied during a broadcast.
type QueuedMessage struct {
	ChatID    int64
	MessageID int
}
