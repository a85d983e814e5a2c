package pagination

import (
	"context"
	"iter"

	"github.com/rs/zerolog/log"
)

// Page is one server response: its records plus the cursor of the next page.
// An empty NextCursor marks the last page.
type Page[T any] struct {
	Items      []T
	NextCursor string
}

// PageFetcher fetches the page located at cursor. An empty cursor requests
// the first page.
type PageFetcher[T any] interface {
	FetchPage(ctx context.Context, cursor string) (Page[T], error)
}

// FetcherFunc adapts a function to PageFetcher.
type FetcherFunc[T any] func(ctx context.Context, cursor string) (Page[T], error)

// FetchPage implements PageFetcher.
func (f FetcherFunc[T]) FetchPage(ctx context.Context, cursor string) (Page[T], error) {
	return f(ctx, cursor)
}

// CursorIterator walks a cursor-paginated sequence lazily.
// It is not safe for concurrent use.
type CursorIterator[T any] struct {
	fetcher PageFetcher[T]

	cursor  string
	started bool
	done    bool

	buf     []T
	current T
	err     error
	pages   int
}

// NewCursorIterator returns an iterator that starts at startCursor, or at the
// first page when startCursor is empty. No request is made until Next.
func NewCursorIterator[T any](fetcher PageFetcher[T], startCursor string) *CursorIterator[T] {
	return &CursorIterator[T]{
		fetcher: fetcher,
		cursor:  startCursor,
	}
}

// Next advances to the next record, fetching the next page if the buffered
// one is exhausted. It returns false when the sequence ends or an error
// occurs; check Err afterwards.
func (it *CursorIterator[T]) Next(ctx context.Context) bool {
	for len(it.buf) == 0 {
		if it.done || it.err != nil {
			return false
		}
		if it.started && it.cursor == "" {
			it.done = true
			return false
		}

		page, err := it.fetcher.FetchPage(ctx, it.cursor)
		if err != nil {
			it.err = err
			return false
		}
		it.started = true
		it.pages++
		it.buf = page.Items
		it.cursor = page.NextCursor

		log.Debug().
			Int("page", it.pages).
			Int("items", len(page.Items)).
			Bool("has_next", page.NextCursor != "").
			Msg("Fetched page")
	}

	it.current = it.buf[0]
	it.buf = it.buf[1:]
	return true
}

// Item returns the record Next advanced to.
func (it *CursorIterator[T]) Item() T {
	return it.current
}

// Err returns the error that stopped iteration, if any.
func (it *CursorIterator[T]) Err() error {
	return it.err
}

// Cursor returns the cursor of the page that will be fetched next. After the
// last page it is empty.
func (it *CursorIterator[T]) Cursor() string {
	return it.cursor
}

// Buffered returns how many records of the current page have not been
// consumed yet. When it is zero, Cursor is a safe resume position.
func (it *CursorIterator[T]) Buffered() int {
	return len(it.buf)
}

// Pages returns how many pages have been fetched so far.
func (it *CursorIterator[T]) Pages() int {
	return it.pages
}

// All adapts the iterator to a range-over-func sequence. A non-nil error is
// yielded once as the final element.
func (it *CursorIterator[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for it.Next(ctx) {
			if !yield(it.Item(), nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			var zero T
			yield(zero, err)
		}
	}
}
