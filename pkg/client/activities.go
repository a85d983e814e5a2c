package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/Sternrassler/wise-api-client/pkg/pagination"
	"github.com/Sternrassler/wise-api-client/pkg/timefmt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var wiseActivityPagesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "wise_activity_pages_total",
	Help: "Total activity pages fetched",
})

// Bounds of ActivityFilters.Size.
const (
	MinActivityPageSize = 1
	MaxActivityPageSize = 100
)

// ActivityFilters narrows an activity listing. Zero values are not sent.
type ActivityFilters struct {
	MonetaryResourceType string
	Status               string
	Since                time.Time
	Until                time.Time

	// Size is the page size requested from the server, 1 to 100.
	Size *int

	// StartCursor resumes a listing at a previously returned cursor.
	StartCursor string
}

// Validate checks Size against its bounds.
func (f ActivityFilters) Validate() error {
	if f.Size != nil && (*f.Size < MinActivityPageSize || *f.Size > MaxActivityPageSize) {
		return &ValidationError{
			Field:   "size",
			Value:   *f.Size,
			Message: fmt.Sprintf("must be between %d and %d", MinActivityPageSize, MaxActivityPageSize),
		}
	}
	return nil
}

// Query returns the filters as query parameters, StartCursor excluded.
func (f ActivityFilters) Query() url.Values {
	q := url.Values{}
	if f.MonetaryResourceType != "" {
		q.Set("monetaryResourceType", f.MonetaryResourceType)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if !f.Since.IsZero() {
		q.Set("since", timefmt.Zulu(f.Since))
	}
	if !f.Until.IsZero() {
		q.Set("until", timefmt.Zulu(f.Until))
	}
	if f.Size != nil {
		q.Set("size", strconv.Itoa(*f.Size))
	}
	return q
}

// ActivityResource points at the object an activity describes.
type ActivityResource struct {
	Type string `json:"type"`
	ID   ID     `json:"id"`
}

// Activity is one entry of a profile's activity feed.
type Activity struct {
	ID              ID               `json:"id"`
	Type            string           `json:"type"`
	Resource        ActivityResource `json:"resource"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	PrimaryAmount   string           `json:"primaryAmount"`
	SecondaryAmount string           `json:"secondaryAmount"`
	Status          string           `json:"status"`
	CreatedOn       string           `json:"createdOn"`
	UpdatedOn       string           `json:"updatedOn"`

	// Raw is the record exactly as returned by the server.
	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps the raw record and fills the typed fields best-effort.
// A field of an unexpected type is left at its zero value; it never fails
// the record.
func (a *Activity) UnmarshalJSON(data []byte) error {
	*a = Activity{Raw: append(json.RawMessage(nil), data...)}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}

	decodeField(fields, "id", &a.ID)
	decodeField(fields, "type", &a.Type)
	decodeField(fields, "title", &a.Title)
	decodeField(fields, "description", &a.Description)
	decodeField(fields, "primaryAmount", &a.PrimaryAmount)
	decodeField(fields, "secondaryAmount", &a.SecondaryAmount)
	decodeField(fields, "status", &a.Status)
	decodeField(fields, "createdOn", &a.CreatedOn)
	decodeField(fields, "updatedOn", &a.UpdatedOn)

	var resource map[string]json.RawMessage
	decodeField(fields, "resource", &resource)
	decodeField(resource, "type", &a.Resource.Type)
	decodeField(resource, "id", &a.Resource.ID)

	return nil
}

// decodeField decodes fields[name] into v, leaving v untouched on a type
// mismatch.
func decodeField[T any](fields map[string]json.RawMessage, name string, v *T) {
	raw, ok := fields[name]
	if !ok {
		return
	}
	var tmp T
	if err := json.Unmarshal(raw, &tmp); err == nil {
		*v = tmp
	}
}

// MarshalJSON returns the raw record when present.
func (a Activity) MarshalJSON() ([]byte, error) {
	if len(a.Raw) > 0 {
		return a.Raw, nil
	}
	type plain Activity
	return json.Marshal(plain(a))
}

// ActivityPage is one page of the activities endpoint. An empty Cursor
// marks the last page.
type ActivityPage struct {
	Activities []Activity
	Cursor     string
}

// ActivityIterator lazily walks the activity feed of a profile.
type ActivityIterator = pagination.CursorIterator[Activity]

// ActivitiesPage fetches the single page at cursor. An empty cursor fetches
// the first page.
func (c *Client) ActivitiesPage(ctx context.Context, profileID ID, filters ActivityFilters, cursor string) (*ActivityPage, error) {
	if err := filters.Validate(); err != nil {
		return nil, err
	}
	return c.fetchActivityPage(ctx, profileID, filters.Query(), cursor)
}

// Activities returns an iterator over all activities of a profile that
// match filters. Filters are validated before returning; no request is sent
// until the iterator's Next is called, and each further page is fetched only
// once the previous one is consumed.
//
// The iterator follows cursors until the server returns none. A server that
// keeps returning the same cursor is followed indefinitely.
func (c *Client) Activities(profileID ID, filters ActivityFilters) (*ActivityIterator, error) {
	if err := filters.Validate(); err != nil {
		return nil, err
	}

	base := filters.Query()
	fetch := pagination.FetcherFunc[Activity](func(ctx context.Context, cursor string) (pagination.Page[Activity], error) {
		page, err := c.fetchActivityPage(ctx, profileID, base, cursor)
		if err != nil {
			return pagination.Page[Activity]{}, err
		}
		return pagination.Page[Activity]{Items: page.Activities, NextCursor: page.Cursor}, nil
	})

	return pagination.NewCursorIterator[Activity](fetch, filters.StartCursor), nil
}

func (c *Client) fetchActivityPage(ctx context.Context, profileID ID, base url.Values, cursor string) (*ActivityPage, error) {
	q := make(url.Values, len(base)+1)
	for k, v := range base {
		q[k] = append([]string(nil), v...)
	}
	if cursor != "" {
		q.Set("nextCursor", cursor)
	}

	var body struct {
		Activities []json.RawMessage `json:"activities"`
		Cursor     *string           `json:"cursor"`
	}
	if err := c.GetJSON(ctx, ActivitiesRequest(profileID, q), &body); err != nil {
		return nil, err
	}
	wiseActivityPagesTotal.Inc()

	// Records are opaque; the typed view never rejects one.
	page := &ActivityPage{Activities: make([]Activity, len(body.Activities))}
	for i, raw := range body.Activities {
		page.Activities[i].UnmarshalJSON(raw)
	}
	if body.Cursor != nil {
		page.Cursor = *body.Cursor
	}
	return page, nil
}
