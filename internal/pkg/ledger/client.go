package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Counters summarizes a wallet's payment history as seen on the ledger.
type Counters struct {
	Total                int
	Credited             int
	UniqueCounterparties int
}

var (
	// ErrUnavailable covers network failures and unexpected statuses from
	// the ledger API.
	ErrUnavailable = errors.New("ledger unavailable")
	// ErrTimeout covers deadline and network timeouts while scanning.
	ErrTimeout = errors.New("ledger request timed out")
)

const (
	pageLimit  = 200
	maxScanned = 10000
)

// Client talks to a Horizon-style ledger API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a ledger client for the given Horizon base URL. The
// timeout applies per page request.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type paymentRecord struct {
	Type        string `json:"type"`
	From        string `json:"from"`
	To          string `json:"to"`
	PagingToken string `json:"paging_token"`
}

type paymentsPage struct {
	Embedded struct {
		Records []paymentRecord `json:"records"`
	} `json:"_embedded"`
	Links struct {
		Next struct {
			Href string `json:"href"`
		} `json:"next"`
	} `json:"_links"`
}

func isPaymentType(t string) bool {
	switch t {
	case "payment", "path_payment", "path_payment_strict_send", "path_payment_strict_receive":
		return true
	}
	return false
}

// FetchPaymentCounters scans the wallet's full payment history, newest
// first, and returns the aggregate counters. An account unknown to the
// ledger (HTTP 404) yields zero counters. The scan stops after a short
// page or once 10 000 records have been examined.
func (c *Client) FetchPaymentCounters(ctx context.Context, walletAddr string) (Counters, error) {
	var counters Counters
	seen := make(map[string]struct{})

	cursor := ""
	scanned := 0
	for {
		page, found, err := c.fetchPage(ctx, walletAddr, cursor)
		if err != nil {
			return Counters{}, err
		}
		if !found {
			return Counters{}, nil
		}

		records := page.Embedded.Records
		for _, rec := range records {
			scanned++
			if !isPaymentType(rec.Type) {
				continue
			}
			counters.Total++
			if rec.To == walletAddr {
				counters.Credited++
			}
			counterparty := rec.From
			if counterparty == walletAddr {
				counterparty = rec.To
			}
			if counterparty != "" && counterparty != walletAddr {
				seen[counterparty] = struct{}{}
			}
		}

		if len(records) < pageLimit || scanned >= maxScanned {
			break
		}
		cursor = records[len(records)-1].PagingToken
	}

	counters.UniqueCounterparties = len(seen)
	return counters, nil
}

// fetchPage requests one page of payment records. found is false when the
// ledger reports the account as never funded (HTTP 404).
func (c *Client) fetchPage(ctx context.Context, walletAddr, cursor string) (*paymentsPage, bool, error) {
	u, err := url.Parse(fmt.Sprintf("%s/accounts/%s/payments", c.BaseURL, walletAddr))
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	q := u.Query()
	q.Set("limit", strconv.Itoa(pageLimit))
	q.Set("order", "desc")
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, false, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, false, fmt.Errorf("%w: status=%d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		if isTimeout(err) {
			return nil, false, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var page paymentsPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, false, fmt.Errorf("%w: invalid response: %v", ErrUnavailable, err)
	}
	return &page, true, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
