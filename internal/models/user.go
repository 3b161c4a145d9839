package models

import "time"

// User is the local record of an identity-provider account.
type User struct {
	ID          int64      `json:"id" db:"id"`
	UID         string     `json:"uid" db:"firebase_uid"`
	Email       string     `json:"email" db:"email"`
	DisplayName string     `json:"displayName" db:"display_name"`
	PhotoURL    *string    `json:"photoURL" db:"photo_url"`
	PhoneNumber *string    `json:"phoneNumber" db:"phone_number"`
	Provider    *string    `json:"provider" db:"provider"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   *time.Time `json:"updatedAt" db:"updated_at"`
	LastLoginAt *time.Time `json:"lastLoginAt" db:"last_login_at"`
}

// ProviderUser is a user record as held by the identity provider.
type ProviderUser struct {
	UID           string     `json:"uid"`
	Email         string     `json:"email"`
	EmailVerified bool       `json:"emailVerified"`
	DisplayName   string     `json:"displayName"`
	PhotoURL      string     `json:"photoURL"`
	PhoneNumber   string     `json:"phoneNumber"`
	Provider      string     `json:"provider"`
	Disabled      bool       `json:"disabled"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastLoginAt   *time.Time `json:"lastLoginAt"`
}

// TokenInfo is the verified content of an ID token.
type TokenInfo struct {
	UID       string
	Email     string
	ExpiresAt time.Time
}

// ProviderUserCreate carries the fields for creating an identity-provider account.
type ProviderUserCreate struct {
	Email       string
	Password    string
	DisplayName *string
	PhotoURL    *string
}

// ProviderUserUpdate carries optional fields; nil means leave unchanged.
type ProviderUserUpdate struct {
	Email       *string
	DisplayName *string
	PhotoURL    *string
	Password    *string
	PhoneNumber *string
}

// IsEmpty reports whether no field is set.
func (u *ProviderUserUpdate) IsEmpty() bool {
	return u.Email == nil && u.DisplayName == nil && u.PhotoURL == nil && u.Password == nil && u.PhoneNumber == nil
}
