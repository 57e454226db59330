// Package airtable is a thin client for the Airtable REST API, scoped to one
// base. All reads and writes are remote; there is no local cache.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"applicant-pipeline/internal/common/config"
	apperrors "applicant-pipeline/internal/common/errors"
	"applicant-pipeline/internal/common/logger"
	"applicant-pipeline/internal/common/metrics"
	"applicant-pipeline/internal/models"
)

type Client struct {
	baseURL    string
	baseID     string
	token      string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	logger     logger.Logger
}

func NewClient(cfg config.AirtableConfig, log logger.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		baseID:  cfg.BaseID,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: config.GetDuration(cfg.Timeout),
		},
		maxRetries: cfg.MaxRetries,
		retryDelay: config.GetDuration(cfg.RetryDelay),
		logger:     log.With(map[string]interface{}{"component": "airtable"}),
	}
}

type listResponse struct {
	Records []models.Record `json:"records"`
	Offset  string          `json:"offset,omitempty"`
}

// ListRecords returns all records of a table, following pagination. An
// optional filterByFormula expression narrows the result server-side.
func (c *Client) ListRecords(ctx context.Context, table, formula string) ([]models.Record, error) {
	var records []models.Record
	offset := ""

	for {
		params := url.Values{}
		if formula != "" {
			params.Set("filterByFormula", formula)
		}
		if offset != "" {
			params.Set("offset", offset)
		}

		reqURL := c.tableURL(table)
		if len(params) > 0 {
			reqURL += "?" + params.Encode()
		}

		body, status, err := c.doRequest(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, apperrors.NewRemoteAPIError(table, status, string(body))
		}

		var page listResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decode list response: %w", err)
		}
		records = append(records, page.Records...)

		if page.Offset == "" {
			return records, nil
		}
		offset = page.Offset
	}
}

// GetRecord fetches a single record by its record id.
func (c *Client) GetRecord(ctx context.Context, table, id string) (*models.Record, error) {
	body, status, err := c.doRequest(ctx, http.MethodGet, c.recordURL(table, id), nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, apperrors.NewRecordNotFoundError(table, id)
	}
	if status != http.StatusOK {
		return nil, apperrors.NewRemoteAPIError(table, status, string(body))
	}

	var rec models.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}

// UpdateRecord patches the given fields on a record, leaving others intact.
func (c *Client) UpdateRecord(ctx context.Context, table, id string, fields map[string]interface{}) (*models.Record, error) {
	payload, err := json.Marshal(map[string]interface{}{"fields": fields})
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}

	body, status, err := c.doRequest(ctx, http.MethodPatch, c.recordURL(table, id), payload)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, apperrors.NewRecordNotFoundError(table, id)
	}
	if status != http.StatusOK {
		return nil, apperrors.NewRemoteAPIError(table, status, string(body))
	}

	var rec models.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}

// CreateRecord inserts a new record into a table.
func (c *Client) CreateRecord(ctx context.Context, table string, fields map[string]interface{}) (*models.Record, error) {
	payload, err := json.Marshal(map[string]interface{}{"fields": fields})
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}

	body, status, err := c.doRequest(ctx, http.MethodPost, c.tableURL(table), payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, apperrors.NewRemoteAPIError(table, status, string(body))
	}

	var rec models.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}

func (c *Client) tableURL(table string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(table))
}

func (c *Client) recordURL(table, id string) string {
	return fmt.Sprintf("%s/%s", c.tableURL(table), id)
}

// doRequest executes one HTTP call with bounded exponential backoff on
// transport errors and transient 429/5xx responses. Non-retryable statuses
// are returned to the caller for mapping.
func (c *Client) doRequest(ctx context.Context, method, reqURL string, payload []byte) ([]byte, int, error) {
	var lastErr error
	delay := c.retryDelay

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.TableRequestRetries.Inc()
			c.logger.Warn("retrying table request", map[string]interface{}{
				"method":  method,
				"url":     reqURL,
				"attempt": attempt,
				"delay":   delay.String(),
			})
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			}
			delay *= 2
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
		if err != nil {
			return nil, 0, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if apperrors.IsRetryableStatus(resp.StatusCode) {
			lastErr = apperrors.NewRemoteAPIError("", resp.StatusCode, string(body))
			continue
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, fmt.Errorf("request failed after %d attempts: %w", c.maxRetries+1, lastErr)
}
