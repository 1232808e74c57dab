package contacts

import "time"

// Contact statuses.
const (
	StatusNew        = "New"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
	StatusClosed     = "Closed"
)

// Contact is a contact-form submission.
type Contact struct {
	ID          string    `json:"_id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	CountryCode string    `json:"countryCode"`
	Phone       string    `json:"phone"`
	InquiryType string    `json:"inquiryType"`
	Message     string    `json:"message"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (c *Contact) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Filter narrows and pages the contact list. Zero values are left to the server's defaults.
type Filter struct {
	Status string
	Search string
	SortBy string
	Order  string // "asc" or "desc"
	Limit  int
	Page   int
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type ListResult struct {
	Data       []Contact  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Update changes status and/or notes. Nil fields are not sent.
type Update struct {
	Status *string `json:"status,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

type Stats struct {
	Total      int `json:"total"`
	New        int `json:"new"`
	InProgress int `json:"inProgress"`
	Resolved   int `json:"resolved"`
}
