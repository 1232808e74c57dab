package apitest

import (
	"fmt"
	"time"
)

// Wire shapes served by the fake API. Field names follow the backend's JSON.

type Spec struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Product struct {
	ID             string            `json:"_id"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Price          float64           `json:"price"`
	Stock          int               `json:"stock"`
	SKU            string            `json:"sku,omitempty"`
	Slug           string            `json:"slug,omitempty"`
	Images         []string          `json:"images,omitempty"`
	Featured       bool              `json:"featured"`
	Specifications []Spec            `json:"specifications,omitempty"`
	Links          map[string]string `json:"links,omitempty"`
	StockStatus    string            `json:"stockStatus,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

type CustomProduct struct {
	ID           string   `json:"_id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Images       []string `json:"images,omitempty"`
	InquiryCount int      `json:"inquiryCount"`
}

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

// Fixture sizes, handy for assertions.
const (
	SeedProducts       = 7
	SeedCustomProducts = 3
	SeedInquiries      = 6
	SeedContacts       = 5
)

func (s *Server) seed() {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	for i := 1; i <= SeedProducts; i++ {
		created := base.Add(time.Duration(i) * time.Hour)
		s.products = append(s.products, &Product{
			ID:          fmt.Sprintf("prod-%d", i),
			Title:       fmt.Sprintf("Widget %d", i),
			Description: "A sturdy widget",
			Price:       float64(i) * 10,
			Stock:       i,
			SKU:         fmt.Sprintf("WID-%03d", i),
			Slug:        fmt.Sprintf("widget-%d", i),
			Images:      []string{fmt.Sprintf("/uploads/widget-%d.jpg", i)},
			Featured:    i%2 == 0,
			StockStatus: stockStatus(i),
			CreatedAt:   created,
			UpdatedAt:   created,
		})
	}

	categories := []string{"Furniture", "Lighting", "Furniture"}
	for i := 1; i <= SeedCustomProducts; i++ {
		s.customs = append(s.customs, &CustomProduct{
			ID:          fmt.Sprintf("custom-%d", i),
			Title:       fmt.Sprintf("Bespoke %d", i),
			Description: "Made to order",
			Category:    categories[i-1],
		})
	}

	statuses := []string{"pending", "pending", "reviewing", "quoted", "completed", "rejected"}
	for i := 1; i <= SeedInquiries; i++ {
		created := base.Add(time.Duration(i) * 24 * time.Hour)
		productID := ""
		if i <= 3 {
			productID = "custom-1"
		}
		s.inquiries = append(s.inquiries, &Inquiry{
			ID:          fmt.Sprintf("inq-%d", i),
			Name:        fmt.Sprintf("Customer %d", i),
			Email:       fmt.Sprintf("customer%d@example.com", i),
			Phone:       "555-0100",
			Description: "Need a quote",
			Quantity:    i,
			Status:      statuses[i-1],
			ProductID:   productID,
			CreatedAt:   created,
			UpdatedAt:   created,
		})
	}
	for _, inq := range s.inquiries {
		if c := s.findCustomLocked(inq.ProductID); c != nil {
			c.InquiryCount++
		}
	}

	contactStatuses := []string{"New", "New", "In Progress", "Resolved", "Closed"}
	for i := 1; i <= SeedContacts; i++ {
		created := base.Add(time.Duration(i) * 48 * time.Hour)
		s.contacts = append(s.contacts, &Contact{
			ID:          fmt.Sprintf("contact-%d", i),
			FirstName:   fmt.Sprintf("First%d", i),
			LastName:    fmt.Sprintf("Last%d", i),
			Email:       fmt.Sprintf("contact%d@example.com", i),
			CountryCode: "+1",
			Phone:       "555-0199",
			InquiryType: "General",
			Message:     fmt.Sprintf("Message number %d", i),
			Status:      contactStatuses[i-1],
			CreatedAt:   created,
			UpdatedAt:   created,
		})
	}
}

func stockStatus(stock int) string {
	switch {
	case stock <= 0:
		return "Out of Stock"
	case stock < 5:
		return "Low Stock"
	default:
		return "In Stock"
	}
}
