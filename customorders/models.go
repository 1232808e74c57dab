package customorders

import "time"

// Inquiry statuses, in workflow order.
const (
	StatusPending   = "pending"
	StatusReviewing = "reviewing"
	StatusQuoted    = "quoted"
	StatusCompleted = "completed"
	StatusRejected  = "rejected"
)

// CustomProduct is a made-to-order listing customers can send inquiries about.
type CustomProduct struct {
	ID           string   `json:"_id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Images       []string `json:"images,omitempty"`
	InquiryCount int      `json:"inquiryCount"`
}

type CustomProductInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Images      []string `json:"images,omitempty"`
}

// Inquiry is a customer's request for a quote, optionally tied to a custom product.
type Inquiry struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Company     string    `json:"company,omitempty"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity,omitempty"`
	Budget      string    `json:"budget,omitempty"`
	Timeline    string    `json:"timeline,omitempty"`
	Attachments []string  `json:"attachments,omitempty"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	ProductID   string    `json:"productId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type InquiryInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Company     string `json:"company,omitempty"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity,omitempty"`
	Budget      string `json:"budget,omitempty"`
	Timeline    string `json:"timeline,omitempty"`
	ProductID   string `json:"productId,omitempty"`
}

// InquiryUpdate changes an inquiry's status and/or notes. Nil fields are left alone.
type InquiryUpdate struct {
	Status *string `json:"status,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

// Stats counts inquiries by status. Rejected inquiries only show up in Total.
type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Reviewing int `json:"reviewing"`
	Quoted    int `json:"quoted"`
	Completed int `json:"completed"`
}
