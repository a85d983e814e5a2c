package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/Sternrassler/wise-api-client/pkg/timefmt"
)

// ID is a Wise resource identifier. Wise uses both numeric and string IDs;
// ID accepts either when decoding JSON.
type ID string

// IntID converts a numeric identifier.
func IntID(id int64) ID {
	return ID(strconv.FormatInt(id, 10))
}

// String implements fmt.Stringer.
func (id ID) String() string {
	return string(id)
}

// UnmarshalJSON accepts JSON strings and numbers.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// StatementFormat selects the file extension of a statement request.
type StatementFormat string

const (
	StatementPDF  StatementFormat = "pdf"
	StatementCSV  StatementFormat = "csv"
	StatementJSON StatementFormat = "json"
)

// StatementParams are the parameters shared by both statement endpoints.
type StatementParams struct {
	Currency string
	Start    time.Time
	End      time.Time

	// Format is the requested file format, StatementJSON when empty.
	Format StatementFormat

	// Compact requests the COMPACT statement layout instead of FLAT.
	Compact bool
}

// Statement layouts, sent in the query parameter named "type". This is
// unrelated to Format, which the API also calls "type" in its docs.
const (
	layoutCompact = "COMPACT"
	layoutFlat    = "FLAT"
)

func statementLayout(compact bool) string {
	if compact {
		return layoutCompact
	}
	return layoutFlat
}

func (p StatementParams) format() StatementFormat {
	if p.Format == "" {
		return StatementJSON
	}
	return p.Format
}

func (p StatementParams) query() url.Values {
	q := url.Values{}
	q.Set("intervalStart", timefmt.Zulu(p.Start))
	q.Set("intervalEnd", timefmt.Zulu(p.End))
	q.Set("currency", p.Currency)
	q.Set("type", statementLayout(p.Compact))
	return q
}

func profileQuery(profileID ID) url.Values {
	return url.Values{"profileId": []string{profileID.String()}}
}

// Request descriptors, one per endpoint.

// CurrentUserRequest describes GET /v1/me.
func CurrentUserRequest() Request {
	return Request{Name: "current_user", Path: "/v1/me"}
}

// UserProfilesRequest describes GET /v1/profiles.
func UserProfilesRequest() Request {
	return Request{Name: "profiles", Path: "/v1/profiles"}
}

// AddressesRequest describes GET /v1/addresses.
func AddressesRequest() Request {
	return Request{Name: "addresses", Path: "/v1/addresses"}
}

// BorderlessAccountsRequest lists the multi-currency accounts of profileID.
func BorderlessAccountsRequest(profileID ID) Request {
	return Request{
		Name:  "borderless_accounts",
		Path:  "/v1/borderless-accounts",
		Query: profileQuery(profileID),
	}
}

// BalanceStatementRequest describes a balance statement in p.Format.
func BalanceStatementRequest(profileID, balanceID ID, p StatementParams) Request {
	return Request{
		Name:  "balance_statement",
		Path:  fmt.Sprintf("/v1/profiles/%s/balance-statements/%s/statement.%s", profileID, balanceID, p.format()),
		Query: p.query(),
	}
}

// BorderlessAccountStatementRequest describes a v3 multi-currency account statement.
func BorderlessAccountStatementRequest(profileID, accountID ID, p StatementParams) Request {
	return Request{
		Name:  "borderless_account_statement",
		Path:  fmt.Sprintf("/v3/profiles/%s/borderless-accounts/%s/statement.%s", profileID, accountID, p.format()),
		Query: p.query(),
	}
}

// RecipientAccountsRequest lists the recipient accounts of profileID.
func RecipientAccountsRequest(profileID ID) Request {
	return Request{
		Name:  "recipient_accounts",
		Path:  "/v1/accounts",
		Query: profileQuery(profileID),
	}
}

// RecipientAccountRequest describes one recipient account.
func RecipientAccountRequest(accountID ID) Request {
	return Request{Name: "recipient_account", Path: "/v1/accounts/" + accountID.String()}
}

// TransferRequest describes one transfer.
func TransferRequest(transferID ID) Request {
	return Request{Name: "transfer", Path: "/v1/transfers/" + transferID.String()}
}

// ActivitiesRequest describes one page of the activity feed; query carries
// filters and nextCursor.
func ActivitiesRequest(profileID ID, query url.Values) Request {
	return Request{
		Name:  "activities",
		Path:  fmt.Sprintf("/v1/profiles/%s/activities", profileID),
		Query: query,
	}
}

// CurrentUser returns the user owning the API token.
func (c *Client) CurrentUser(ctx context.Context) (json.RawMessage, error) {
	return c.Get(ctx, CurrentUserRequest())
}

// UserProfiles lists the personal and business profiles of the user.
func (c *Client) UserProfiles(ctx context.Context) (json.RawMessage, error) {
	return c.Get(ctx, UserProfilesRequest())
}

// Addresses lists the addresses of the user.
func (c *Client) Addresses(ctx context.Context) (json.RawMessage, error) {
	return c.Get(ctx, AddressesRequest())
}

// BorderlessAccounts lists the multi-currency accounts of a profile.
func (c *Client) BorderlessAccounts(ctx context.Context, profileID ID) (json.RawMessage, error) {
	return c.Get(ctx, BorderlessAccountsRequest(profileID))
}

// BalanceStatement fetches a balance statement. The body is returned as is:
// JSON, CSV or PDF depending on p.Format.
func (c *Client) BalanceStatement(ctx context.Context, profileID, balanceID ID, p StatementParams) ([]byte, error) {
	return c.GetRaw(ctx, BalanceStatementRequest(profileID, balanceID, p))
}

// BorderlessAccountStatement fetches a statement of a multi-currency account.
// The body is returned as is.
func (c *Client) BorderlessAccountStatement(ctx context.Context, profileID, accountID ID, p StatementParams) ([]byte, error) {
	return c.GetRaw(ctx, BorderlessAccountStatementRequest(profileID, accountID, p))
}

// RecipientAccounts lists the recipient accounts of a profile.
func (c *Client) RecipientAccounts(ctx context.Context, profileID ID) (json.RawMessage, error) {
	return c.Get(ctx, RecipientAccountsRequest(profileID))
}

// RecipientAccountByID fetches one recipient account.
func (c *Client) RecipientAccountByID(ctx context.Context, accountID ID) (json.RawMessage, error) {
	return c.Get(ctx, RecipientAccountRequest(accountID))
}

// TransferByID fetches one transfer.
func (c *Client) TransferByID(ctx context.Context, transferID ID) (json.RawMessage, error) {
	return c.Get(ctx, TransferRequest(transferID))
}
