package salesforce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIError is a non-2xx response from the Salesforce REST API
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	var items []struct {
		Message   string `json:"message"`
		ErrorCode string `json:"errorCode"`
	}
	if json.Unmarshal([]byte(e.Body), &items) == nil && len(items) > 0 {
		return fmt.Sprintf("salesforce returned %d: %s: %s", e.StatusCode, items[0].ErrorCode, items[0].Message)
	}
	return fmt.Sprintf("salesforce returned %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Client calls the Salesforce REST API for one session
type Client struct {
	session    *Session
	apiVersion string
	http       *http.Client
}

// NewClient creates a REST client. An empty apiVersion uses v60.0.
func NewClient(session *Session, apiVersion string, httpClient *http.Client) *Client {
	if apiVersion == "" {
		apiVersion = "v60.0"
	}
	if !strings.HasPrefix(apiVersion, "v") {
		apiVersion = "v" + apiVersion
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{session: session, apiVersion: apiVersion, http: httpClient}
}

// Query runs a SOQL query and returns the first page of records
func (c *Client) Query(ctx context.Context, soql string) ([]map[string]interface{}, error) {
	endpoint := c.dataURL("/query") + "?q=" + url.QueryEscape(soql)

	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		TotalSize int                      `json:"totalSize"`
		Done      bool                     `json:"done"`
		Records   []map[string]interface{} `json:"records"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode query response: %w", err)
	}
	if result.Records == nil {
		result.Records = make([]map[string]interface{}, 0)
	}
	return result.Records, nil
}

// UpdateRecord patches fields on one record
func (c *Client) UpdateRecord(ctx context.Context, object, id string, fields map[string]interface{}) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	endpoint := c.dataURL("/sobjects/" + url.PathEscape(object) + "/" + url.PathEscape(id))
	_, err = c.do(ctx, http.MethodPatch, endpoint, payload)
	return err
}

func (c *Client) dataURL(path string) string {
	return c.session.InstanceURL + "/services/data/" + c.apiVersion + path
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.session.AccessToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
