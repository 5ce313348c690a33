package domain

import "time"

// Platform identifies the source marketplace of a product URL.
type Platform string

const (
	PlatformWeidian Platform = "weidian"
	PlatformTaobao  Platform = "taobao"
	PlatformAlibaba Platform = "alibaba"
	PlatformUnknown Platform = "unknown"
)

// ProcessedLink is the result of running an operator-supplied URL through
// the link pipeline.
type ProcessedLink struct {
	OriginalURL string `json:"original_url"`
	AgentLink   string `json:"agent_link"`
}

// QCImage is a single quality-control photo as reported by the provider.
type QCImage struct {
	ImageURL    string `json:"image_url"`
	ProductName string `json:"product_name"`
	QCDate      string `json:"qc_date"`
}

// QCGallery groups QC images taken during the same inspection session.
// ImageCount always equals len(Images).
type QCGallery struct {
	ID          string    `json:"id"`
	Images      []QCImage `json:"images"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	ProductName string    `json:"product_name"`
	ImageCount  int       `json:"image_count"`
}

// ScrapedProduct holds display data extracted from a rendered agent page.
type ScrapedProduct struct {
	URL      string   `json:"url"`
	Title    string   `json:"title"`
	Price    string   `json:"price"`
	Currency string   `json:"currency"`
	Platform string   `json:"platform"`
	Images   []string `json:"images,omitempty"`
	Seller   string   `json:"seller,omitempty"`
}

// Product is a finished record curated by the operator and persisted to
// the storefront database.
type Product struct {
	ID        int64             `json:"id,omitempty"`
	Name      string            `json:"name"`
	Price     float64           `json:"price"`
	Image     string            `json:"image"`
	Category  string            `json:"category"`
	Links     map[string]string `json:"links"`
	CreatedAt time.Time         `json:"created_at,omitempty"`
	UpdatedAt time.Time         `json:"updated_at,omitempty"`
}
