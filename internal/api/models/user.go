package models

// User represents a patient account.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	DateOfBirth *string   `json:"dateOfBirth,omitempty"`
	Locale      string    `json:"locale"`
	CreatedAt   Timestamp `json:"createdAt"`
	UpdatedAt   Timestamp `json:"updatedAt"`
}

// UserCreateRequest is the request body for creating a user.
type UserCreateRequest struct {
	Email       string  `json:"email"`
	DisplayName string  `json:"displayName"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
	Locale      string  `json:"locale,omitempty"`
}

// UserUpdateRequest is the request body for updating a user.
type UserUpdateRequest struct {
	Email       *string `json:"email,omitempty"`
	DisplayName *string `json:"displayName,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
	Locale      *string `json:"locale,omitempty"`
}

// PagedUsers is a paginated list of users.
type PagedUsers struct {
	Items []User            `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}
