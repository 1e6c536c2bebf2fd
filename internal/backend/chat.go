// ABOUTME: Chat endpoint of the backend API
// ABOUTME: Sends one user message and returns the generated answer with sources

package backend

import (
	"context"
	"net/http"
	"strconv"
)

// Ask sends one user message to the tenant's chatbot and returns the answer.
func (c *Client) Ask(ctx context.Context, token string, tenantID int64, message string) (*AskResponse, error) {
	var resp AskResponse
	path := "/chatbot/ask?tenant_id=" + strconv.FormatInt(tenantID, 10)
	body := map[string]string{"message": message}
	if err := c.doJSON(ctx, http.MethodPost, path, token, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
