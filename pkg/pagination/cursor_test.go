package pagination

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// scriptedFetcher serves pages keyed by the cursor that requests them.
type scriptedFetcher struct {
	pages   map[string]Page[string]
	err     map[string]error
	cursors []string
}

func (f *scriptedFetcher) FetchPage(_ context.Context, cursor string) (Page[string], error) {
	f.cursors = append(f.cursors, cursor)
	if err, ok := f.err[cursor]; ok {
		return Page[string]{}, err
	}
	return f.pages[cursor], nil
}

func threePages() *scriptedFetcher {
	return &scriptedFetcher{
		pages: map[string]Page[string]{
			"":   {Items: []string{"a", "b"}, NextCursor: "c1"},
			"c1": {Items: []string{"c"}, NextCursor: "c2"},
			"c2": {Items: []string{"d"}},
		},
	}
}

func drain(t *testing.T, it *CursorIterator[string]) []string {
	t.Helper()

	var got []string
	for it.Next(context.Background()) {
		got = append(got, it.Item())
	}
	return got
}

func TestCursorIterator_FollowsCursors(t *testing.T) {
	fetcher := threePages()
	it := NewCursorIterator[string](fetcher, "")

	got := drain(t, it)

	if want := []string{"a", "b", "c", "d"}; !reflect.DeepEqual(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}
	if want := []string{"", "c1", "c2"}; !reflect.DeepEqual(fetcher.cursors, want) {
		t.Errorf("cursors = %v, want %v", fetcher.cursors, want)
	}
	if err := it.Err(); err != nil {
		t.Errorf("Err() = %v", err)
	}
	if it.Pages() != 3 {
		t.Errorf("Pages() = %d, want 3", it.Pages())
	}
}

func TestCursorIterator_Lazy(t *testing.T) {
	fetcher := threePages()
	it := NewCursorIterator[string](fetcher, "")

	if len(fetcher.cursors) != 0 {
		t.Fatalf("Expected no fetch before Next, got %d", len(fetcher.cursors))
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if !it.Next(ctx) {
			t.Fatalf("Next() = false at record %d", i)
		}
	}

	if len(fetcher.cursors) != 1 {
		t.Errorf("Expected 1 fetch after consuming the first page, got %d", len(fetcher.cursors))
	}
	if it.Buffered() != 0 {
		t.Errorf("Buffered() = %d, want 0", it.Buffered())
	}
	if it.Cursor() != "c1" {
		t.Errorf("Cursor() = %q, want c1", it.Cursor())
	}
}

func TestCursorIterator_EmptyPageContinues(t *testing.T) {
	fetcher := &scriptedFetcher{
		pages: map[string]Page[string]{
			"":   {NextCursor: "c1"},
			"c1": {Items: []string{"x"}},
		},
	}

	got := drain(t, NewCursorIterator[string](fetcher, ""))

	if want := []string{"x"}; !reflect.DeepEqual(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}
}

func TestCursorIterator_StartCursor(t *testing.T) {
	fetcher := threePages()

	got := drain(t, NewCursorIterator[string](fetcher, "c1"))

	if want := []string{"c", "d"}; !reflect.DeepEqual(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}
	if fetcher.cursors[0] != "c1" {
		t.Errorf("first cursor = %q, want c1", fetcher.cursors[0])
	}
}

func TestCursorIterator_ErrorStops(t *testing.T) {
	boom := errors.New("boom")
	fetcher := threePages()
	fetcher.err = map[string]error{"c1": boom}

	it := NewCursorIterator[string](fetcher, "")
	got := drain(t, it)

	if want := []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}
	if !errors.Is(it.Err(), boom) {
		t.Errorf("Err() = %v, want %v", it.Err(), boom)
	}
	if it.Next(context.Background()) {
		t.Error("Next() after error should return false")
	}
	if len(fetcher.cursors) != 2 {
		t.Errorf("fetches = %d, want 2", len(fetcher.cursors))
	}
}

func TestCursorIterator_All(t *testing.T) {
	fetcher := threePages()
	it := NewCursorIterator[string](fetcher, "")

	var got []string
	for item, err := range it.All(context.Background()) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, item)
		if item == "b" {
			break
		}
	}

	if want := []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}
	if len(fetcher.cursors) != 1 {
		t.Errorf("fetches = %d, want 1 after early break", len(fetcher.cursors))
	}
}

func TestCursorIterator_AllYieldsError(t *testing.T) {
	boom := errors.New("boom")
	fetcher := FetcherFunc[string](func(context.Context, string) (Page[string], error) {
		return Page[string]{}, boom
	})

	var errs []error
	for _, err := range NewCursorIterator[string](fetcher, "").All(context.Background()) {
		errs = append(errs, err)
	}

	if len(errs) != 1 || !errors.Is(errs[0], boom) {
		t.Errorf("errors = %v, want [boom]", errs)
	}
}
