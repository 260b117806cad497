package models

// Conversation represents a chat thread between a user and the assistant.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}

// ConversationCreateRequest is the request body for starting a conversation.
type ConversationCreateRequest struct {
	UserID string `json:"userId"`
	Title  string `json:"title,omitempty"`
}

// Message represents one turn in a conversation.
type Message struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversationId"`
	Role           MessageRole `json:"role"`
	Content        string      `json:"content"`
	Provider       *string     `json:"provider,omitempty"`
	Model          *string     `json:"model,omitempty"`
	Confidence     *float64    `json:"confidence,omitempty"`
	Emergency      bool        `json:"emergency,omitempty"`
	Cached         bool        `json:"cached,omitempty"`
	CreatedAt      Timestamp   `json:"createdAt"`
}

// ChatRequest is the request body for sending a message to the assistant.
type ChatRequest struct {
	Message string            `json:"message"`
	Context map[string]string `json:"context,omitempty"`
}

// ChatResponse is the assistant's reply to a chat request.
type ChatResponse struct {
	UserMessage Message `json:"userMessage"`
	Reply       Message `json:"reply"`
	Emergency   bool    `json:"emergency"`
}

// PagedConversations is a paginated list of conversations.
type PagedConversations struct {
	Items []Conversation    `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}

// PagedMessages is a paginated list of messages.
type PagedMessages struct {
	Items []Message         `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}
