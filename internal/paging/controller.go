package paging

import (
	"context"
	"sync"

	appErrors "github.com/openlearn-dev/lms-admin-api/pkg/errors"
)

// Page is one fetched window of a cursor-paginated collection. An empty
// NextToken means the collection is exhausted.
type Page[T any] struct {
	Items     []T
	NextToken string
}

// FetchFunc retrieves one page from a remote collection. The empty token
// requests the first page.
type FetchFunc[T any] func(ctx context.Context, token string, limit int) (Page[T], error)

// Controller tracks cursor pagination state for one browse session: the
// current page of items, the stack of cursors that produced each visited
// page, and the cursor for advancing past the current page.
//
// Invariants after every successful load:
//   - len(tokenStack) == pageIndex+1
//   - tokenStack[0] == "" (the first page has no cursor)
//
// Each page fetch fully replaces the visible item set; pages are never merged.
type Controller[T any] struct {
	mu    sync.Mutex
	fetch FetchFunc[T]

	pageSize   int
	items      []T
	pageIndex  int
	tokenStack []string
	nextToken  string
	loading    bool

	// seq invalidates in-flight fetches: a response is discarded when a
	// newer Reset or page-size change has bumped the sequence since the
	// request went out.
	seq uint64
}

// NewController builds a controller around the given fetch function. Call
// Reset to load the first page.
func NewController[T any](fetch FetchFunc[T], pageSize int) *Controller[T] {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &Controller[T]{
		fetch:      fetch,
		pageSize:   pageSize,
		tokenStack: []string{""},
	}
}

// Reset discards all recorded cursors and reloads page 0. It is always
// permitted, even while another fetch is in flight; the stale response is
// discarded when it arrives.
func (c *Controller[T]) Reset(ctx context.Context) error {
	return c.load(ctx, "", 0, true, false)
}

// SetPageSize changes the page size and resets. Cursors recorded under the
// old page size are meaningless and are discarded, never replayed.
func (c *Controller[T]) SetPageSize(ctx context.Context, pageSize int) error {
	c.mu.Lock()
	if pageSize > 0 {
		c.pageSize = pageSize
	}
	c.mu.Unlock()
	return c.Reset(ctx)
}

// Next advances to the following page. It is a no-op on the last page.
func (c *Controller[T]) Next(ctx context.Context) error {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return appErrors.ErrFetchInFlight
	}
	if c.nextToken == "" {
		c.mu.Unlock()
		return nil
	}
	cursor := c.nextToken
	target := c.pageIndex + 1
	c.mu.Unlock()
	return c.load(ctx, cursor, target, false, true)
}

// Prev steps back to the previously visited page by replaying its recorded
// cursor. It is a no-op on page 0.
func (c *Controller[T]) Prev(ctx context.Context) error {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return appErrors.ErrFetchInFlight
	}
	if c.pageIndex == 0 {
		c.mu.Unlock()
		return nil
	}
	target := c.pageIndex - 1
	cursor := c.tokenStack[target]
	c.mu.Unlock()
	return c.load(ctx, cursor, target, false, true)
}

func (c *Controller[T]) load(ctx context.Context, cursor string, targetIndex int, resetTokens, guarded bool) error {
	c.mu.Lock()
	if guarded && c.loading {
		c.mu.Unlock()
		return appErrors.ErrFetchInFlight
	}
	if resetTokens {
		c.seq++
	}
	mySeq := c.seq
	limit := c.pageSize
	c.loading = true
	c.mu.Unlock()

	page, err := c.fetch(ctx, cursor, limit)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seq != mySeq {
		// A newer reset superseded this fetch; drop the response and leave
		// the fresher state untouched.
		return nil
	}
	c.loading = false
	if err != nil {
		// Failed fetches leave pagination state exactly as it was.
		return err
	}

	if resetTokens {
		c.tokenStack = []string{""}
	} else {
		stack := make([]string, targetIndex+1)
		copy(stack, c.tokenStack)
		stack[targetIndex] = cursor
		c.tokenStack = stack
	}
	c.items = page.Items
	c.nextToken = page.NextToken
	c.pageIndex = targetIndex
	return nil
}

// Items returns the currently loaded page.
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items
}

// PageIndex returns the zero-based index of the current page.
func (c *Controller[T]) PageIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageIndex
}

// PageSize returns the active page size.
func (c *Controller[T]) PageSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageSize
}

// HasNext reports whether a continuation token is available.
func (c *Controller[T]) HasNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nextToken != ""
}

// HasPrev reports whether a previous page exists.
func (c *Controller[T]) HasPrev() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageIndex > 0
}

// TokenStack returns a copy of the recorded cursor chain.
func (c *Controller[T]) TokenStack() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	stack := make([]string, len(c.tokenStack))
	copy(stack, c.tokenStack)
	return stack
}
