package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout = 60 * time.Second
	httpTimeoutEnvKey  = "HASHFS_HTTP_TIMEOUT"

	servicePath = "/hashfs/1"
)

// Client is a simple HTTP client for the hashfs API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: httpTimeoutFromEnv()},
	}
}

// Ping checks whether the API server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.getJSON(ctx, "/health", nil)
}

// Info fetches the pricing announcement document.
func (c *Client) Info(ctx context.Context) ([]PricingService, error) {
	var doc []PricingService
	err := c.getJSON(ctx, "/", &doc)
	return doc, err
}

// Status fetches store occupancy.
func (c *Client) Status(ctx context.Context) (StatusResponse, error) {
	var resp StatusResponse
	err := c.getJSON(ctx, "/v1/status", &resp)
	return resp, err
}

// Price asks the pricing oracle for one key.
func (c *Client) Price(ctx context.Context, hash string) (PriceResponse, error) {
	var resp PriceResponse
	err := c.getJSON(ctx, servicePath+"/price/"+hash, &resp)
	return resp, err
}

// Get downloads one object and its response metadata.
func (c *Client) Get(ctx context.Context, hash string) ([]byte, *ObjectMeta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+servicePath+"/get/"+hash, nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, nil, decodeError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	meta := &ObjectMeta{
		ContentType:  resp.Header.Get("Content-Type"),
		Size:         int64(len(body)),
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
	}
	return body, meta, nil
}

// Put uploads one object under its precomputed hash and returns the
// key the server acknowledged.
func (c *Client) Put(ctx context.Context, hash string, body []byte, contentType, ownerIdentity string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+servicePath+"/put/"+hash, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if ownerIdentity != "" {
		req.Header.Set("X-HashFS-PKH", ownerIdentity)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", decodeError(resp)
	}

	ack, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(ack)), nil
}

// Reconcile triggers an orphan sweep on the server.
func (c *Client) Reconcile(ctx context.Context, dryRun bool) (ReconcileResponse, error) {
	var resp ReconcileResponse

	endpoint := c.baseURL + "/v1/admin/reconcile"
	if dryRun {
		endpoint += "?dry_run=true"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return resp, err
	}
	if !dryRun {
		req.Header.Set("X-Confirm", "true")
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return resp, err
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode >= 400 {
		return resp, decodeError(httpResp)
	}
	err = json.NewDecoder(httpResp.Body).Decode(&resp)
	return resp, err
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		_, err = io.Copy(io.Discard, resp.Body)
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		apiErr.Message = fmt.Sprintf("read error response: %v", err)
		return apiErr
	}

	var envelope ErrorResponse
	if json.Unmarshal(body, &envelope) == nil && envelope.Error != "" {
		apiErr.Code = envelope.Code
		apiErr.ErrorCode = envelope.ErrorCode
		apiErr.Message = envelope.Error
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(body))
	return apiErr
}

func httpTimeoutFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if raw == "" {
		return defaultHTTPTimeout
	}
	if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	return defaultHTTPTimeout
}
