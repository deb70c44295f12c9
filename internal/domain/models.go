package domain

import (
	"encoding/json"
	"time"
)

type PartStatus string

const (
	StatusAvailable PartStatus = "AVAILABLE"
	StatusReserved  PartStatus = "RESERVED"
	StatusSold      PartStatus = "SOLD"
	StatusListed    PartStatus = "LISTED"
)

type PartCondition string

const (
	ConditionNew       PartCondition = "NEW"
	ConditionExcellent PartCondition = "EXCELLENT"
	ConditionGood      PartCondition = "GOOD"
	ConditionFair      PartCondition = "FAIR"
	ConditionPoor      PartCondition = "POOR"
)

type Category struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type Vehicle struct {
	ID        string    `db:"id" json:"id"`
	SellerID  string    `db:"seller_id" json:"sellerId"`
	Make      string    `db:"make" json:"make"`
	Model     string    `db:"model" json:"model"`
	Year      int       `db:"year" json:"year"`
	VIN       *string   `db:"vin" json:"vin,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Part is a sellable inventory item pulled from a vehicle.
type Part struct {
	ID          string        `db:"id" json:"id"`
	SellerID    string        `db:"seller_id" json:"sellerId"`
	CategoryID  string        `db:"category_id" json:"categoryId"`
	VehicleID   string        `db:"vehicle_id" json:"vehicleId"`
	Name        string        `db:"name" json:"name"`
	Description string        `db:"description" json:"description"`
	PartNumber  *string       `db:"part_number" json:"partNumber,omitempty"`
	Price       float64       `db:"price" json:"price"`
	Currency    string        `db:"currency" json:"currency"`
	Status      PartStatus    `db:"status" json:"status"`
	Condition   PartCondition `db:"condition" json:"condition"`
	Listed      bool          `db:"is_listed_on_marketplace" json:"isListedOnMarketplace"`
	ImagesJSON  string        `db:"images" json:"-"`
	CreatedAt   time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updatedAt"`
}

// Images decodes the stored image list; malformed text yields nil.
func (p Part) Images() []string {
	if p.ImagesJSON == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(p.ImagesJSON), &out); err != nil {
		return nil
	}
	return out
}

func (p Part) MarshalJSON() ([]byte, error) {
	type alias Part
	return json.Marshal(struct {
		alias
		Images []string `json:"images"`
	}{alias: alias(p), Images: p.Images()})
}
