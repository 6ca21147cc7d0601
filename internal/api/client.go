// internal/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/user/tigerwatch/internal/types"
)

// Client talks to the investigation backend's REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the given base URL (no trailing slash).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// CreateInvestigation allocates a new investigation identity.
func (c *Client) CreateInvestigation(ctx context.Context, req *types.CreateRequest) (*types.CreateResponse, error) {
	var resp types.CreateResponse
	if err := c.do(ctx, http.MethodPost, "/api/investigations", req, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, &ServerError{Body: []byte("backend returned no investigation id")}
	}
	return &resp, nil
}

// LaunchInvestigation starts the agent pipeline for a freshly created
// investigation. The returned text is the backend's immediate reply, not a
// completion signal.
func (c *Client) LaunchInvestigation(ctx context.Context, req *types.LaunchRequest) (*types.LaunchResponse, error) {
	path := fmt.Sprintf("/api/investigations/%s/launch", url.PathEscape(string(req.InvestigationID)))
	var resp types.LaunchResponse
	if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ContinueInvestigation sends a follow-up turn to an existing investigation.
func (c *Client) ContinueInvestigation(ctx context.Context, req *types.LaunchRequest) (*types.LaunchResponse, error) {
	path := fmt.Sprintf("/api/investigations/%s/continue", url.PathEscape(string(req.InvestigationID)))
	var resp types.LaunchResponse
	if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitApproval confirms or rejects a pending approval.
func (c *Client) SubmitApproval(ctx context.Context, id types.ApprovalID, decision *types.ApprovalDecision) error {
	path := fmt.Sprintf("/api/approvals/%s", url.PathEscape(string(id)))
	return c.do(ctx, http.MethodPost, path, decision, nil)
}

// GetTools fetches the external tool catalog.
func (c *Client) GetTools(ctx context.Context) (*types.ToolCatalog, error) {
	var resp types.ToolCatalog
	if err := c.do(ctx, http.MethodGet, "/api/tools", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do sends one JSON request and decodes the response into out (if non-nil).
// Failures are classified into the error taxonomy: NetworkError for
// transport failures, ValidationError for 400/422, ServerError otherwise.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return &ValidationError{StatusCode: resp.StatusCode, Detail: respBody}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &ServerError{StatusCode: resp.StatusCode, Body: respBody}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}
	return nil
}
