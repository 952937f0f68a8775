package models

import "time"

type Room struct {
	ID             int64     `yaml:"id" json:"id"`
	Name           string    `yaml:"name" json:"name"`
	Description    string    `yaml:"description" json:"description"`
	Price          float64   `yaml:"price" json:"price"`
	Capacity       int       `yaml:"capacity" json:"capacity"`
	Beds           int       `yaml:"beds" json:"beds"`
	Baths          int       `yaml:"baths" json:"baths"`
	Category       string    `yaml:"category" json:"category"`
	BreakfastPrice float64   `yaml:"breakfast_price" json:"breakfast_price"`
	IsAvailable    bool      `yaml:"is_available" json:"is_available"`
	Status         string    `yaml:"status" json:"status"`
	SortOrder      int64     `yaml:"sort_order" json:"sort_order"`
	CreatedAt      time.Time `yaml:"-" json:"created_at"`
	UpdatedAt      time.Time `yaml:"-" json:"updated_at"`
}

// BaseCapacity is the number of adults included in the nightly price.
// Guests above it pay the extra-guest surcharge.
func (r *Room) BaseCapacity() int {
	if r.Category == CategoryRoyalDeluxe {
		return 1
	}
	return 2
}
