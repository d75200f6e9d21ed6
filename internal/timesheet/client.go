package timesheet

import (
	"context"
	"net/http"
	"net/url"

	"github.com/frahmantamala/timesheet-management/internal/apiclient"
)

// Client calls the employee-scoped timesheet endpoints.
type Client struct {
	api apiclient.Requester
}

func NewClient(api apiclient.Requester) *Client {
	return &Client{api: api}
}

func (c *Client) List(ctx context.Context) ([]Timesheet, error) {
	var out []Timesheet
	if err := c.api.Do(ctx, http.MethodGet, "/timesheets", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, form Form) (*Timesheet, error) {
	if err := form.RequireFields(); err != nil {
		return nil, err
	}
	var out Timesheet
	if err := c.api.Do(ctx, http.MethodPost, "/timesheets", nil, form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Update(ctx context.Context, id string, form Form) (*Timesheet, error) {
	if err := form.RequireFields(); err != nil {
		return nil, err
	}
	var out Timesheet
	if err := c.api.Do(ctx, http.MethodPut, "/timesheets/"+url.PathEscape(id), nil, form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.api.Do(ctx, http.MethodDelete, "/timesheets/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) ExportCSV(ctx context.Context) (*apiclient.Blob, error) {
	return c.api.Download(ctx, "/timesheets/export/csv", nil)
}

func (c *Client) DownloadPDF(ctx context.Context) (*apiclient.Blob, error) {
	return c.api.Download(ctx, "/timesheets/download-pdf", nil)
}
