// ABOUTME: Wire types exchanged with the backend API
// ABOUTME: Tenants, knowledge items, chat responses, usage counters, and auth payloads

package backend

// Tenant is a chatbot workspace owned by the logged-in user.
type Tenant struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	FBPageURL        *string `json:"fb_url,omitempty"`
	InstaPageURL     *string `json:"insta_url,omitempty"`
	FBVerifyToken    *string `json:"fb_verify_token,omitempty"`
	FBAccessToken    *string `json:"fb_access_token,omitempty"`
	InstaAccessToken *string `json:"insta_access_token,omitempty"`
	TelegramBotToken *string `json:"telegram_bot_token,omitempty"`
	TelegramChatID   *string `json:"telegram_chat_id,omitempty"`
	CreatedAt        string  `json:"created_at,omitempty"`
}

// TenantParams carries the fields for creating or updating a tenant. Optional
// fields are pointers so blanks serialize as null rather than empty strings.
type TenantParams struct {
	Name             string  `json:"name"`
	FBPageURL        *string `json:"fb_url"`
	InstaPageURL     *string `json:"insta_url"`
	FBVerifyToken    *string `json:"fb_verify_token"`
	FBAccessToken    *string `json:"fb_access_token"`
	InstaAccessToken *string `json:"insta_access_token"`
	TelegramBotToken *string `json:"telegram_bot_token"`
	TelegramChatID   *string `json:"telegram_chat_id"`
}

// KnowledgeItem is one entry in a tenant's knowledge base, either an uploaded
// file or an ingested URL.
type KnowledgeItem struct {
	ID        string  `json:"id"`
	Filename  *string `json:"filename,omitempty"`
	URL       *string `json:"url,omitempty"`
	FileType  *string `json:"file_type,omitempty"`
	Category  *string `json:"category,omitempty"`
	TenantID  int64   `json:"tenant_id"`
	CreatedAt string  `json:"created_at,omitempty"`
}

// Title returns the display name for a knowledge item: the filename for
// uploads, the URL for links.
func (k KnowledgeItem) Title() string {
	if k.Filename != nil && *k.Filename != "" {
		return *k.Filename
	}
	if k.URL != nil {
		return *k.URL
	}
	return k.ID
}

// AskResponse is the chat answer for one user message.
type AskResponse struct {
	Response string   `json:"response"`
	Sources  []string `json:"sources"`
}

// CountResponse wraps the usage counter endpoints.
type CountResponse struct {
	Count int `json:"count"`
}

// ActivityItem is one row in the recent activity feed.
type ActivityItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle,omitempty"`
	Type      string `json:"type,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// RegisterParams is the signup payload.
type RegisterParams struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
}

// AuthResponse is returned by both login and register.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}
