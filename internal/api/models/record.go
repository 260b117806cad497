package models

// HealthRecord represents one entry in a user's health history.
type HealthRecord struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	Type       RecordType `json:"type"`
	Title      string     `json:"title"`
	Detail     *string    `json:"detail,omitempty"`
	RecordedAt Timestamp  `json:"recordedAt"`
	CreatedAt  Timestamp  `json:"createdAt"`
	UpdatedAt  Timestamp  `json:"updatedAt"`
}

// RecordCreateRequest is the request body for creating a health record.
type RecordCreateRequest struct {
	Type       RecordType `json:"type"`
	Title      string     `json:"title"`
	Detail     *string    `json:"detail,omitempty"`
	RecordedAt *Timestamp `json:"recordedAt,omitempty"`
}

// RecordUpdateRequest is the request body for updating a health record.
type RecordUpdateRequest struct {
	Type       *RecordType `json:"type,omitempty"`
	Title      *string     `json:"title,omitempty"`
	Detail     *string     `json:"detail,omitempty"`
	RecordedAt *Timestamp  `json:"recordedAt,omitempty"`
}

// PagedRecords is a paginated list of health records.
type PagedRecords struct {
	Items []HealthRecord    `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}
