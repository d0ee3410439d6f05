package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/ghuser/nurseryinventory/services/inventory/domain"
	"github.com/ghuser/nurseryinventory/services/inventory/domain/models"
	"github.com/ghuser/nurseryinventory/services/inventory/domain/repositories"
)

func invalid(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
}

// checkSlugs rejects malformed nursery and bed ids before they reach the
// store.
func checkSlugs(ids ...string) error {
	for _, id := range ids {
		if _, err := models.NewSlug(id); err != nil {
			return invalid(err)
		}
	}
	return nil
}

// checkBatchPath rejects a malformed nursery, bed or cutting batch id.
func checkBatchPath(nurseryID, bedID, batchID string) error {
	if err := checkSlugs(nurseryID, bedID); err != nil {
		return err
	}
	if !models.ValidCuttingBatchID(batchID) {
		return invalid(fmt.Errorf("cutting batch id %q is not a ULID", batchID))
	}
	return nil
}

// actor returns the caller's user id for audit stamps, or "" when anonymous.
func actor(ctx context.Context, identity repositories.IdentityProvider) string {
	if identity == nil {
		return ""
	}
	id, ok := identity.CurrentUserID(ctx)
	if !ok {
		return ""
	}
	return id
}

// listQuery checks orderBy against the fields a collection may be sorted by.
// An empty orderBy sorts by id.
func listQuery(orderBy string, allowed []string, descending bool, limit int, filters ...repositories.Filter) (repositories.Query, error) {
	if orderBy == "" {
		orderBy = fieldID
	}
	if !slices.Contains(allowed, orderBy) {
		return repositories.Query{}, invalid(fmt.Errorf("cannot order by %q, use one of %s", orderBy, strings.Join(allowed, ", ")))
	}
	if limit < 0 {
		return repositories.Query{}, invalid(fmt.Errorf("limit must not be negative"))
	}
	return repositories.Query{
		Filters:    filters,
		OrderBy:    orderBy,
		Descending: descending,
		Limit:      limit,
	}, nil
}
