package models

import "time"

// User represents an application user (mapped from Keycloak claims).
// The two-factor fields are managed by the twofactor package; when
// TwoFactorEnabled is false, TwoFactorMethods must be empty.
type User struct {
	ID               string    `bson:"_id,omitempty" json:"id"`
	Sub              string    `bson:"sub" json:"sub"` // OIDC subject
	Email            string    `bson:"email" json:"email"`
	Name             string    `bson:"name" json:"name"`
	AvatarKey        string    `bson:"avatarKey,omitempty" json:"avatarKey,omitempty"`
	TwoFactorEnabled bool      `bson:"twoFactorEnabled" json:"twoFactorEnabled"`
	TwoFactorMethods []string  `bson:"twoFactorMethods,omitempty" json:"twoFactorMethods,omitempty"`
	CreatedAt        time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time `bson:"updatedAt" json:"updatedAt"`
}
