// Package client talks to the earthquake HTTP API and keeps a local,
// mutation-patched copy of the page being viewed.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/septivank/earthquake-catalog/internal/earthquake"
	"github.com/septivank/earthquake-catalog/internal/urlstate"
	"go.uber.org/zap"
)

const basePath = "/api/v1/earthquakes"

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client is a typed wrapper over the catalogue API. Server error codes are
// mapped back to the earthquake error sentinels.
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// New creates a client for the API at baseURL
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{httpClient: httpClient, logger: logger}
}

// Query fetches one page
func (c *Client) Query(ctx context.Context, req earthquake.QueryRequest) (earthquake.PagedResult, error) {
	var result earthquake.PagedResult
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParamsFromValues(urlstate.Encode(req)).
		SetResult(&result).
		SetError(&errorBody{}).
		Get(basePath)
	if err := c.check(ctx, "query", resp, err); err != nil {
		return earthquake.PagedResult{}, err
	}
	if result.Data == nil {
		result.Data = []earthquake.Record{}
	}
	return result, nil
}

// Get fetches a single record
func (c *Client) Get(ctx context.Context, id string) (earthquake.Record, error) {
	var rec earthquake.Record
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&rec).
		SetError(&errorBody{}).
		Get(basePath + "/{id}")
	if err := c.check(ctx, "get", resp, err); err != nil {
		return earthquake.Record{}, err
	}
	return rec, nil
}

// Create adds a record
func (c *Client) Create(ctx context.Context, in earthquake.CreateInput) (earthquake.Record, error) {
	var rec earthquake.Record
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(in).
		SetResult(&rec).
		SetError(&errorBody{}).
		Post(basePath)
	if err := c.check(ctx, "create", resp, err); err != nil {
		return earthquake.Record{}, err
	}
	return rec, nil
}

// Update changes the supplied fields of a record
func (c *Client) Update(ctx context.Context, id string, in earthquake.UpdateInput) (earthquake.Record, error) {
	var rec earthquake.Record
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetBody(in).
		SetResult(&rec).
		SetError(&errorBody{}).
		Patch(basePath + "/{id}")
	if err := c.check(ctx, "update", resp, err); err != nil {
		return earthquake.Record{}, err
	}
	return rec, nil
}

// Delete removes a record
func (c *Client) Delete(ctx context.Context, id string) (bool, error) {
	var out struct {
		Deleted bool `json:"deleted"`
	}
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&out).
		SetError(&errorBody{}).
		Delete(basePath + "/{id}")
	if err := c.check(ctx, "delete", resp, err); err != nil {
		return false, err
	}
	return out.Deleted, nil
}

func (c *Client) check(ctx context.Context, op string, resp *resty.Response, err error) error {
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.Warn("earthquake API unreachable", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%w: %s: %v", earthquake.ErrStoreUnavailable, op, err)
	}
	if !resp.IsError() {
		return nil
	}

	if body, ok := resp.Error().(*errorBody); ok && body.Error.Code != "" {
		return earthquake.FromCode(body.Error.Code, body.Error.Message)
	}

	switch status := resp.StatusCode(); {
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", earthquake.ErrNotFound, op)
	case status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %s: HTTP %d", earthquake.ErrStoreUnavailable, op, status)
	default:
		return errors.New(op + ": unexpected HTTP status " + resp.Status())
	}
}
