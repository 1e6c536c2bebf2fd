// ABOUTME: Tenant endpoints of the backend API
// ABOUTME: List, create, and update chatbot workspaces

package backend

import (
	"context"
	"fmt"
	"net/http"
)

// ListTenants returns every tenant owned by the authenticated user.
func (c *Client) ListTenants(ctx context.Context, token string) ([]Tenant, error) {
	var tenants []Tenant
	if err := c.doJSON(ctx, http.MethodGet, "/tenants/", token, nil, &tenants); err != nil {
		return nil, err
	}
	return tenants, nil
}

// CreateTenant creates a new tenant and returns it.
func (c *Client) CreateTenant(ctx context.Context, token string, params TenantParams) (*Tenant, error) {
	var tenant Tenant
	if err := c.doJSON(ctx, http.MethodPost, "/tenants/", token, params, &tenant); err != nil {
		return nil, err
	}
	return &tenant, nil
}

// UpdateTenant replaces a tenant's settings and returns the updated record.
func (c *Client) UpdateTenant(ctx context.Context, token string, id int64, params TenantParams) (*Tenant, error) {
	var tenant Tenant
	path := fmt.Sprintf("/tenants/%d/", id)
	if err := c.doJSON(ctx, http.MethodPut, path, token, params, &tenant); err != nil {
		return nil, err
	}
	return &tenant, nil
}
