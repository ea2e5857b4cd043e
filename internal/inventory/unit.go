package inventory

import (
	"regexp"
	"strings"
	"time"

	"github.com/zombor/expiry-tracker/internal/expiry"
)

// Unit is one physical package whose expiry was recorded
type Unit struct {
	ID             string        `json:"id"`
	ProductName    string        `json:"productName"`
	ProductID      string        `json:"productId"`
	ProductCode    string        `json:"productCode,omitempty"`
	ExpirationDate expiry.Date   `json:"expirationDate"`
	Status         expiry.Status `json:"expirationStatus"` // Recomputed on every read
	CreatedAt      time.Time     `json:"createdAt"`
}

// Settings holds the user-tunable alert window
type Settings struct {
	ExpirationAlertMonths int       `json:"expirationAlertMonths"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// ProductSummary is written when a product's counting session is finalized
type ProductSummary struct {
	ProductID          string        `json:"productId"`
	ProductName        string        `json:"productName"`
	TotalQuantity      int           `json:"totalQuantity"`
	EarliestExpiration expiry.Date   `json:"earliestExpiration"`
	Status             expiry.Status `json:"expirationStatus"`
	LastUpdated        time.Time     `json:"lastUpdated"`
}

// Dashboard counts units per status
type Dashboard struct {
	Products     int `json:"products"`
	Units        int `json:"units"`
	Valid        int `json:"valid"`
	ExpiringSoon int `json:"expiringSoon"`
	Expired      int `json:"expired"`
}

var (
	productIDSpaces  = regexp.MustCompile(`\s+`)
	productIDInvalid = regexp.MustCompile(`[^a-z0-9-]`)
)

// productID derives the stable key of a product from its display name
func productID(name string) string {
	id := strings.ToLower(strings.TrimSpace(name))
	id = productIDSpaces.ReplaceAllString(id, "-")
	return productIDInvalid.ReplaceAllString(id, "")
}
