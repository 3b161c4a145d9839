package models

import "time"

type Project struct {
	ID          string     `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	OwnerID     string     `json:"user_id" db:"owner_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at" db:"updated_at"`
}

// OwnedBy reports whether uid owns the project.
func (p *Project) OwnedBy(uid string) bool {
	return p != nil && uid != "" && p.OwnerID == uid
}
