package models

// Setting is a simple key/value row used for runtime toggles such as the
// defense feature flags. Values are stored as strings; boolean settings use
// "1"/"0" or "true"/"false".
type Setting struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Key   string `json:"key" gorm:"size:100;uniqueIndex"`
	Value string `json:"value" gorm:"size:500"`
}
