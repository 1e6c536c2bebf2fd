// ABOUTME: Knowledge base endpoints of the backend API
// ABOUTME: Listing, URL ingestion, file upload, and deletion per tenant

package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// ListKnowledgeItems returns the knowledge base entries for one tenant.
func (c *Client) ListKnowledgeItems(ctx context.Context, token string, tenantID int64) ([]KnowledgeItem, error) {
	var items []KnowledgeItem
	path := fmt.Sprintf("/tenants/%d/knowledge_base_items/", tenantID)
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddURL ingests a web page into the tenant's knowledge base.
func (c *Client) AddURL(ctx context.Context, token string, tenantID int64, pageURL string) (*KnowledgeItem, error) {
	var item KnowledgeItem
	path := fmt.Sprintf("/tenants/%d/knowledge_base_items/add_url/", tenantID)
	form := url.Values{"url": {pageURL}}
	if err := c.doForm(ctx, path, token, form, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UploadFile sends one document to the tenant's knowledge base.
func (c *Client) UploadFile(ctx context.Context, token string, tenantID int64, filename, category string, file io.Reader) (*KnowledgeItem, error) {
	var item KnowledgeItem
	path := fmt.Sprintf("/tenants/%d/knowledge_base_items/", tenantID)
	fields := map[string]string{"category": category}
	if err := c.doMultipart(ctx, path, token, "file", filename, file, fields, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteKnowledgeItem removes one entry from the tenant's knowledge base.
func (c *Client) DeleteKnowledgeItem(ctx context.Context, token string, tenantID int64, itemID string) error {
	path := fmt.Sprintf("/tenants/%d/knowledge_base_items/%s", tenantID, url.PathEscape(itemID))
	return c.doJSON(ctx, http.MethodDelete, path, token, nil, nil)
}
