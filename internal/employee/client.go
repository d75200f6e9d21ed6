package employee

import (
	"context"
	"net/http"
	"net/url"

	"github.com/frahmantamala/timesheet-management/internal/apiclient"
)

// Client calls the admin employee endpoints.
type Client struct {
	api apiclient.Requester
}

func NewClient(api apiclient.Requester) *Client {
	return &Client{api: api}
}

func (c *Client) List(ctx context.Context) ([]Employee, error) {
	var out []Employee
	if err := c.api.Do(ctx, http.MethodGet, "/admin/employees", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, form Form) (*Employee, error) {
	if err := form.RequireCreateFields(); err != nil {
		return nil, err
	}
	var out Employee
	if err := c.api.Do(ctx, http.MethodPost, "/admin/employees", nil, form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Update(ctx context.Context, id string, form Form) (*Employee, error) {
	if err := form.RequireFields(); err != nil {
		return nil, err
	}
	var out Employee
	if err := c.api.Do(ctx, http.MethodPut, "/admin/employees/"+url.PathEscape(id), nil, form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.api.Do(ctx, http.MethodDelete, "/admin/employees/"+url.PathEscape(id), nil, nil, nil)
}
