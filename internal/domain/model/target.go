package model

import (
	"strconv"
	"strings"

	"drive-search-bot/internal/domain"
)

type targetKind uint8

const (
	targetNone targetKind = iota
	targetID
	targetHandle
)

// Target identifies a user either by numeric id or by handle. It is parsed
// once from operator input and never re-inspected downstream.
type Target struct {
	kind   targetKind
	id     int64
	handle string
}

func TargetByID(id int64) Target { return Target{kind: targetID, id: id} }

// TargetByHandle strips a leading "@"; matching is case-insensitive.
func TargetByHandle(h string) Target {
	return Target{kind: targetHandle, handle: strings.TrimPrefix(strings.TrimSpace(h), "@")}
}

// ParseTarget treats purely numeric input as a user id and anything else as a handle.
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "@" {
		return Target{}, domain.ErrInvalidArgument
	}
	if id, ok := parseInt(s); ok && id > 0 {
		return TargetByID(id), nil
	}
	if strings.ContainsAny(s, " \t\n") {
		return Target{}, domain.ErrInvalidArgument
	}
	return TargetByHandle(s), nil
}

func (t Target) ID() (int64, bool) { return t.id, t.kind == targetID }

func (t Target) Handle() (string, bool) { return t.handle, t.kind == targetHandle }

func (t Target) IsZero() bool { return t.kind == targetNone }

func (t Target) String() string {
	switch t.kind {
	case targetID:
		return strconv.FormatInt(t.id, 10)
	case targetHandle:
		return "@" + t.handle
	default:
		return ""
	}
}

func parseInt(s string) (int64, bool) {
	digits := strings.TrimPrefix(s, "-")
	if digits == "" {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

func formatInt(n int64) string { return strconv.FormatInt(n, 10) }
