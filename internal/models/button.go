package models

// ButtonCategory is the fixed taxonomy a consent button falls into.
type ButtonCategory string

// Button categories. The set is closed so exhaustive handling stays
// possible; anything that cannot be classified is CategoryUnknown.
const (
	CategoryAccept   ButtonCategory = "accept"
	CategoryReject   ButtonCategory = "reject"
	CategorySettings ButtonCategory = "settings"
	CategoryUnknown  ButtonCategory = "unknown"
)

// Categories lists all categories in their deterministic matching order.
// Reject is checked before Accept so phrases such as "do not accept"
// resolve to the reject bucket.
func Categories() []ButtonCategory {
	return []ButtonCategory{CategoryReject, CategoryAccept, CategorySettings}
}

// Button is one observed consent-related UI control. Category is always
// derived and never empty.
type Button struct {
	Text      string         `json:"text"`
	HTML      string         `json:"html"`
	IsVisible bool           `json:"isVisible"`
	Category  ButtonCategory `json:"category"`
}
