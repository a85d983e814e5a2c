// Package pagination provides pull-based iteration over cursor-paginated
// endpoints.
//
// Wise list endpoints return a page of records together with an opaque
// cursor naming the next page. An empty cursor marks the last page. The
// iterator in this package fetches a page only when the consumer asks for a
// record that is not buffered yet, so abandoning iteration early skips all
// remaining network calls.
//
// Example usage:
//
//	it := pagination.NewCursorIterator(fetcher, "")
//	for it.Next(ctx) {
//		record := it.Item()
//		// ...
//	}
//	if err := it.Err(); err != nil {
//		return err
//	}
//
// The iterator:
//   - Fetches pages strictly in cursor order, one at a time
//   - Preserves record order within a page
//   - Stops at the first page without a cursor, or at the first error
//   - Does not detect a server repeating the same cursor forever
package pagination
