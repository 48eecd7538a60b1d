// Package baseline fetches pull-based equipment snapshots from the dashboard API.
package baseline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"

	"dgu-live/internal/model"
)

// Client calls the equipment snapshot endpoint.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient returns a Client. A nil httpClient gets a 10s timeout client.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    httpClient,
	}
}

// Equipment returns the baseline rows of one site.
func (c *Client) Equipment(ctx context.Context, routerSN string) ([]model.Baseline, error) {
	sn, err := runtime.StyleParamWithLocation("simple", false, "router_sn", runtime.ParamLocationPath, routerSN)
	if err != nil {
		return nil, fmt.Errorf("router_sn: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/objects/"+sn+"/equipment", nil)
	if err != nil {
		return nil, fmt.Errorf("equipment request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("equipment %s: %w", routerSN, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("equipment %s: status %d: %s", routerSN, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var rows []model.Baseline
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("equipment %s: decode: %w", routerSN, err)
	}
	for i := range rows {
		if rows[i].EngineState == "" {
			rows[i].EngineState = string(model.StatusOffline)
		}
		if rows[i].ConnectionStatus == model.StatusUnknown {
			rows[i].ConnectionStatus = model.StatusOffline
		}
	}
	return rows, nil
}
