// Package odoo implements the ERP gateway over Odoo's external
// XML-RPC API. Raw wire records are parsed into the typed entities of
// the shipping package at this boundary.
package odoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/kolo/xmlrpc"
)

// ErrNotAuthenticated is returned when a model operation runs before
// Authenticate.
var ErrNotAuthenticated = errors.New("odoo: not authenticated")

// Config holds the connection settings for one Odoo instance.
type Config struct {
	URL      string
	Database string
	User     string
	Password string
}

// Client talks to Odoo over the external XML-RPC API. Every operation
// is a blocking remote call; failures are not retried within a run.
type Client struct {
	cfg    Config
	common *xmlrpc.Client
	object *xmlrpc.Client
	uid    int64
}

// NewClient builds a client for the given instance. No remote call is
// made until Authenticate.
func NewClient(cfg Config, transport http.RoundTripper) (*Client, error) {
	common, err := xmlrpc.NewClient(cfg.URL+"/xmlrpc/2/common", transport)
	if err != nil {
		return nil, fmt.Errorf("odoo: common endpoint: %w", err)
	}
	object, err := xmlrpc.NewClient(cfg.URL+"/xmlrpc/2/object", transport)
	if err != nil {
		return nil, fmt.Errorf("odoo: object endpoint: %w", err)
	}
	return &Client{cfg: cfg, common: common, object: object}, nil
}

// Authenticate resolves the session uid. It must be called once per
// run before any model operation. Odoo answers boolean false for bad
// credentials instead of a fault.
func (c *Client) Authenticate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var reply any
	args := []any{c.cfg.Database, c.cfg.User, c.cfg.Password, map[string]any{}}
	if err := c.common.Call("authenticate", args, &reply); err != nil {
		return fmt.Errorf("odoo: authenticate: %w", err)
	}

	uid, ok := reply.(int64)
	if !ok || uid == 0 {
		return fmt.Errorf("odoo: authenticate: no uid returned for user %s", c.cfg.User)
	}
	c.uid = uid
	return nil
}

// executeKw invokes one model method through the generic execute_kw
// endpoint.
func (c *Client) executeKw(ctx context.Context, model, method string, args []any, kwargs map[string]any, reply any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.uid == 0 {
		return ErrNotAuthenticated
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}

	call := []any{c.cfg.Database, c.uid, c.cfg.Password, model, method, args, kwargs}
	if err := c.object.Call("execute_kw", call, reply); err != nil {
		return fmt.Errorf("odoo: %s.%s: %w", model, method, err)
	}
	return nil
}

// Search returns the ids of records matching the domain filter, capped
// at limit when limit is positive.
func (c *Client) Search(ctx context.Context, model string, domain []any, limit int) ([]int64, error) {
	kwargs := map[string]any{}
	if limit > 0 {
		kwargs["limit"] = limit
	}
	var ids []int64
	if err := c.executeKw(ctx, model, "search", []any{domain}, kwargs, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Read fetches the given fields for the given ids.
func (c *Client) Read(ctx context.Context, model string, ids []int64, fields []string) ([]Record, error) {
	var raw []any
	kwargs := map[string]any{"fields": fields}
	if err := c.executeKw(ctx, model, "read", []any{ids}, kwargs, &raw); err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(raw))
	for _, v := range raw {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("odoo: %s.read: unexpected record shape %T", model, v)
		}
		out = append(out, Record(m))
	}
	return out, nil
}

// Write updates the given field values on the given ids.
func (c *Client) Write(ctx context.Context, model string, ids []int64, values map[string]any) error {
	var ok bool
	return c.executeKw(ctx, model, "write", []any{ids, values}, nil, &ok)
}

// Create inserts one record and returns its id.
func (c *Client) Create(ctx context.Context, model string, values map[string]any) (int64, error) {
	var id int64
	if err := c.executeKw(ctx, model, "create", []any{values}, nil, &id); err != nil {
		return 0, err
	}
	return id, nil
}
