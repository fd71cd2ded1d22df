package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/tallyfin/tally/internal/common"
)

// Catalog errors. Each wraps one of the common taxonomy sentinels so callers
// can branch on either the specific failure or its class.
var (
	ErrNilContext = errors.New("context cannot be nil")

	ErrEmptyName = fmt.Errorf("%w: category name cannot be empty", common.ErrValidation)
	ErrBadType   = fmt.Errorf("%w: unknown category type", common.ErrValidation)

	ErrCategoryNotFound    = fmt.Errorf("%w: category", common.ErrNotFound)
	ErrSubcategoryNotFound = fmt.Errorf("%w: subcategory", common.ErrNotFound)
	ErrParentNotFound      = fmt.Errorf("%w: parent category", common.ErrNotFound)

	ErrSentinelImmutable = fmt.Errorf("%w: sentinel categories cannot be modified", common.ErrForbidden)
	ErrSentinelParent    = fmt.Errorf("%w: sentinel categories cannot have children", common.ErrForbidden)
	ErrSelfParent        = fmt.Errorf("%w: category cannot be its own parent", common.ErrForbidden)
	ErrNestedParent      = fmt.Errorf("%w: parent must be a top-level category", common.ErrForbidden)
	ErrNotLeaf           = fmt.Errorf("%w: category with children cannot become a child", common.ErrForbidden)
	ErrHasChildren       = fmt.Errorf("%w: category with children cannot be deleted", common.ErrForbidden)
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}
