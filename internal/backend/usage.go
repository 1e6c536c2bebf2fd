// ABOUTME: Usage counter endpoints of the backend API
// ABOUTME: Conversation count, knowledge item count, and the recent activity feed

package backend

import (
	"context"
	"net/http"
)

// ConversationCount returns the total conversations across the user's tenants.
func (c *Client) ConversationCount(ctx context.Context, token string) (int, error) {
	var resp CountResponse
	if err := c.doJSON(ctx, http.MethodGet, "/users/me/conversation_count/", token, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// KnowledgeItemCount returns the total knowledge items across the user's tenants.
func (c *Client) KnowledgeItemCount(ctx context.Context, token string) (int, error) {
	var resp CountResponse
	if err := c.doJSON(ctx, http.MethodGet, "/users/me/knowledge_item_count/", token, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// RecentActivity returns the newest events across the user's tenants.
func (c *Client) RecentActivity(ctx context.Context, token string) ([]ActivityItem, error) {
	var items []ActivityItem
	if err := c.doJSON(ctx, http.MethodGet, "/users/me/recent_activity/", token, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}
