package models

import "time"

type PromoCode struct {
	ID             int64     `json:"id"`
	Code           string    `json:"code"`
	DiscountAmount float64   `json:"discount_amount"`
	ExpiryDate     time.Time `json:"expiry_date"`
	MaxUses        int       `json:"max_uses"`
	CurrentUses    int       `json:"current_uses"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Usable reports whether the code can still be applied at the given time.
// A code is usable only while active, unexpired and under its use cap.
func (p *PromoCode) Usable(now time.Time) bool {
	return p.Status == PromoActive &&
		!now.After(p.ExpiryDate) &&
		p.CurrentUses < p.MaxUses
}

// PromoValidation is the outcome of a validation request. Validation never
// mutates the code; usage is counted only on booking finalization.
type PromoValidation struct {
	Valid          bool    `json:"valid"`
	Message        string  `json:"message,omitempty"`
	OriginalAmount float64 `json:"original_amount,omitempty"`
	DiscountAmount float64 `json:"discount_amount,omitempty"`
	FinalAmount    float64 `json:"final_amount,omitempty"`
}
