package admin

import (
	"context"
	"net/http"
	"net/url"

	"github.com/frahmantamala/timesheet-management/internal/apiclient"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

// Client calls the admin timesheet and dashboard endpoints.
type Client struct {
	api apiclient.Requester
}

func NewClient(api apiclient.Requester) *Client {
	return &Client{api: api}
}

func (c *Client) Timesheets(ctx context.Context, filter timesheet.Filter) ([]timesheet.Timesheet, error) {
	var out []timesheet.Timesheet
	if err := c.api.Do(ctx, http.MethodGet, "/admin/timesheets", filter.Values(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Review(ctx context.Context, id string, dto timesheet.ReviewDTO) (*timesheet.Timesheet, error) {
	var out timesheet.Timesheet
	path := "/admin/timesheets/" + url.PathEscape(id) + "/review"
	if err := c.api.Do(ctx, http.MethodPut, path, nil, dto, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Approve(ctx context.Context, id string) (*timesheet.Timesheet, error) {
	return c.Review(ctx, id, timesheet.ReviewDTO{Status: string(timesheet.StatusAccepted)})
}

func (c *Client) Reject(ctx context.Context, id, comments string) (*timesheet.Timesheet, error) {
	return c.Review(ctx, id, timesheet.ReviewDTO{Status: string(timesheet.StatusRejected), AdminComments: comments})
}

func (c *Client) ExportCSV(ctx context.Context, filter timesheet.Filter) (*apiclient.Blob, error) {
	return c.api.Download(ctx, "/admin/timesheets/export/csv", filter.Values())
}

func (c *Client) Dashboard(ctx context.Context) (*Stats, error) {
	var out Stats
	if err := c.api.Do(ctx, http.MethodGet, "/admin/dashboard", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
