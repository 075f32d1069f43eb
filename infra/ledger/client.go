// Package ledger talks to the transaction/ledger service that owns the
// transaction trackers.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/radhian/ledger-reconciler/consts"
	"github.com/radhian/ledger-reconciler/entity"
	"golang.org/x/oauth2"
)

const (
	trackersPath     = "/api/transaction-trackers"
	unreconciledPath = trackersPath + "/unreconciled"
)

// Client is both the remote item source and the remote tracker store.
type Client struct {
	baseURL    string
	transport  *http.Transport
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration, tokens oauth2.TokenSource) *Client {
	if timeout <= 0 {
		timeout = consts.DefaultSourceTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: transport,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: &oauth2.Transport{Source: tokens, Base: transport},
		},
	}
}

type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type trackerUpdateRequest struct {
	NumberOfRetry int        `json:"numberOfRetry"`
	HasPassed     bool       `json:"hasPassed"`
	DatePassed    *time.Time `json:"datePassed"`
}

// GetUnreconciled returns the trackers the ledger still considers unresolved,
// in the order the ledger returns them.
func (c *Client) GetUnreconciled(ctx context.Context, query entity.TrackerQuery) ([]entity.TransactionTracker, error) {
	params := url.Values{}
	params.Set("pageNumber", strconv.Itoa(query.PageNumber))
	params.Set("pageSize", strconv.Itoa(query.PageSize))
	if query.FromDate != nil {
		params.Set("fromDate", query.FromDate.UTC().Format(time.RFC3339))
	}
	if query.ToDate != nil {
		params.Set("toDate", query.ToDate.UTC().Format(time.RFC3339))
	}
	if query.MaxRetry > 0 {
		params.Set("maxRetry", strconv.Itoa(query.MaxRetry))
	}

	var trackers []entity.TransactionTracker
	if err := c.do(ctx, http.MethodGet, unreconciledPath+"?"+params.Encode(), nil, &trackers); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrSourceUnavailable, err)
	}

	log.Infof("[LedgerClient] Fetched %d unreconciled trackers (page %d, size %d)", len(trackers), query.PageNumber, query.PageSize)
	return trackers, nil
}

func (c *Client) GetTransactionTracker(ctx context.Context, trackerID string) (entity.TransactionTracker, error) {
	var tracker entity.TransactionTracker
	if err := c.do(ctx, http.MethodGet, trackerPath(trackerID), nil, &tracker); err != nil {
		return entity.TransactionTracker{}, fmt.Errorf("tracker %s: %w", trackerID, err)
	}
	return tracker, nil
}

// UpdateTransactionTracker writes the reconciliation result back to the ledger.
func (c *Client) UpdateTransactionTracker(ctx context.Context, update entity.TrackerUpdate) error {
	body, err := json.Marshal(trackerUpdateRequest{
		NumberOfRetry: update.NumberOfRetry,
		HasPassed:     update.HasPassed,
		DatePassed:    update.DatePassed,
	})
	if err != nil {
		return fmt.Errorf("failed to encode tracker %s update: %w", update.ID, err)
	}
	if err := c.do(ctx, http.MethodPatch, trackerPath(update.ID), body, nil); err != nil {
		return fmt.Errorf("failed to update tracker %s: %w", update.ID, err)
	}
	log.Debugf("[LedgerClient] Updated tracker %s (retry %d, passed %t)", update.ID, update.NumberOfRetry, update.HasPassed)
	return nil
}

// Close drops the idle connections held by this client.
func (c *Client) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}

func trackerPath(trackerID string) string {
	return trackersPath + "/" + url.PathEscape(trackerID)
}

// do sends one request and decodes the data field of the response envelope
// into out when out is not nil. A 404 maps to entity.ErrRecordNotFound.
func (c *Client) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return entity.ErrRecordNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("ledger returned status %d", resp.StatusCode)
	}

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		if out == nil && err == io.EOF {
			return nil
		}
		return fmt.Errorf("failed to decode response: %v", err)
	}
	if envelope.Status != "" && envelope.Status != "success" {
		return fmt.Errorf("ledger reported %q", envelope.Message)
	}
	if out == nil {
		return nil
	}
	if len(envelope.Data) == 0 {
		return fmt.Errorf("ledger response carried no data")
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %v", err)
	}
	return nil
}
