package domain

import "time"

// DisclosureRecord is the admin-published disclosure text (security.txt style).
// Version only ever increases by one per update.
type DisclosureRecord struct {
	Address   Address   `json:"address"`
	Admin     Address   `json:"admin"`
	Content   string    `json:"content"`
	Version   uint32    `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}
