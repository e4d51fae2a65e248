package drive

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/api/googleapi"

	"drive-search-bot/internal/domain"
)

var rateLimitReasons = map[string]bool{
	"rateLimitExceeded":     true,
	"userRateLimitExceeded": true,
}

// classify wraps err with the domain sentinel matching its failure class.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{
		domain.ErrUnauthenticated, domain.ErrNoCredentials, domain.ErrTransient,
		domain.ErrForbidden, domain.ErrNotFound, domain.ErrDrive,
		context.Canceled, context.DeadlineExceeded,
	} {
		if errors.Is(err, known) {
			return err
		}
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return fmt.Errorf("drive %s: %w: %w", op, kindOf(gerr), err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("drive %s: %w: %w", op, domain.ErrTransient, err)
	}
	return fmt.Errorf("drive %s: %w: %w", op, domain.ErrDrive, err)
}

func kindOf(gerr *googleapi.Error) error {
	switch {
	case gerr.Code == 401:
		return domain.ErrUnauthenticated
	case gerr.Code == 403:
		for _, item := range gerr.Errors {
			if rateLimitReasons[item.Reason] {
				return domain.ErrTransient
			}
		}
		return domain.ErrForbidden
	case gerr.Code == 404:
		return domain.ErrNotFound
	case gerr.Code == 429 || gerr.Code >= 500:
		return domain.ErrTransient
	default:
		return domain.ErrDrive
	}
}
