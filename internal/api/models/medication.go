package models

// Medication represents a medication a user is taking.
type Medication struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Dosage    string    `json:"dosage"`
	Schedule  string    `json:"schedule"`
	Notes     *string   `json:"notes,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}

// MedicationCreateRequest is the request body for adding a medication.
type MedicationCreateRequest struct {
	Name     string  `json:"name"`
	Dosage   string  `json:"dosage"`
	Schedule string  `json:"schedule"`
	Notes    *string `json:"notes,omitempty"`
}

// MedicationUpdateRequest is the request body for updating a medication.
type MedicationUpdateRequest struct {
	Name     *string `json:"name,omitempty"`
	Dosage   *string `json:"dosage,omitempty"`
	Schedule *string `json:"schedule,omitempty"`
	Notes    *string `json:"notes,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

// PagedMedications is a paginated list of medications.
type PagedMedications struct {
	Items []Medication      `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}
