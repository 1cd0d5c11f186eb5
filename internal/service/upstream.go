package service

import (
	"fmt"

	"github.com/GTDGit/bakery_storefront/internal/utils"
	"github.com/GTDGit/bakery_storefront/pkg/bakeryapi"
)

// upstreamErr classifies a bakery API failure for the HTTP layer.
func upstreamErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case bakeryapi.IsNotFound(err):
		return fmt.Errorf("%w: %w", utils.ErrNotFound, err)
	case bakeryapi.IsUnauthorized(err):
		return fmt.Errorf("%w: %w", utils.ErrInvalidToken, err)
	default:
		return fmt.Errorf("%w: %w", utils.ErrUpstream, err)
	}
}

// paginate returns the requested page of items. Page is 1-based.
func paginate[T any](items []T, page, limit int) []T {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		return items
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// normalizePage clamps list paging parameters.
func normalizePage(page, limit, maxLimit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
