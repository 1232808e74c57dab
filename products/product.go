package products

import (
	"time"

	"github.com/jrsteele09/venta-admin/apiclient"
	"github.com/jrsteele09/venta-admin/internal/utils"
)

// Stock levels as labelled by the API.
const (
	StockInStock    = "In Stock"
	StockLowStock   = "Low Stock"
	StockOutOfStock = "Out of Stock"
)

type Specification struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Product is a catalog entry as returned by the admin API.
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
	Specifications []Specification   `json:"specifications,omitempty"`
	Links          map[string]string `json:"links,omitempty"`
	StockStatus    string            `json:"stockStatus,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// ImageURLs resolves the product's image paths against the asset host.
func (p *Product) ImageURLs(assetBaseURL string) []string {
	urls := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		if u := utils.BuildImageURL(assetBaseURL, img); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// Input is the create/update payload. It is sent as multipart/form-data.
type Input struct {
	Title          string
	SKU            string
	Slug           string
	Description    string
	Price          float64
	Stock          int
	Featured       bool
	Specifications []Specification
	Links          map[string]string
	ExistingImages []string // update only: already uploaded images to keep
	Images         []apiclient.FormFile
}

type Filter struct {
	Search string
}
