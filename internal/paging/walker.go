package paging

import (
	"context"
	"fmt"
)

// WalkAll sequentially fetches every page of a collection until the backend
// returns no continuation token, concatenating items in order. It exists for
// background exports only; interactive views must page through a Controller.
//
// Any mid-walk failure aborts the whole walk: no partial result is returned.
// maxPages caps the walk against a backend that never terminates the token
// chain; pass 0 for the default.
func WalkAll[T any](ctx context.Context, fetch FetchFunc[T], pageSize, maxPages int) ([]T, error) {
	if pageSize <= 0 {
		pageSize = 1000
	}
	if maxPages <= 0 {
		maxPages = 10000
	}

	var all []T
	token := ""
	for page := 0; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if page >= maxPages {
			return nil, fmt.Errorf("pagination did not terminate after %d pages", maxPages)
		}
		result, err := fetch(ctx, token, pageSize)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}
		all = append(all, result.Items...)
		if result.NextToken == "" {
			return all, nil
		}
		token = result.NextToken
	}
}
