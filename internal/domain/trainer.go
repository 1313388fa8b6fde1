package domain

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// DefaultCurrency is used when a trainer has not picked one.
const DefaultCurrency = "USD"

// Trainer is the account owner. Every student, plan and payment belongs to exactly one trainer.
type Trainer struct {
	bun.BaseModel `bun:"table:trainers,alias:t" bson:"-" json:"-"`

	ID           string    `bun:"id,pk,type:uuid" bson:"_id" json:"id"`
	Name         string    `bun:"name,notnull" bson:"name" json:"name"`
	Email        string    `bun:"email,notnull,unique" bson:"email" json:"email"`
	PasswordHash string    `bun:"password_hash,notnull" bson:"passwordHash" json:"-"`
	Phone        string    `bun:"phone" bson:"phone,omitempty" json:"phone,omitempty"`
	BusinessName string    `bun:"business_name" bson:"businessName,omitempty" json:"businessName,omitempty"`
	Bio          string    `bun:"bio" bson:"bio,omitempty" json:"bio,omitempty"`
	AvatarKey    string    `bun:"avatar_key" bson:"avatarKey,omitempty" json:"-"`
	Currency     string    `bun:"currency,notnull" bson:"currency" json:"currency"`
	IsActive     bool      `bun:"is_active,notnull" bson:"isActive" json:"isActive"`
	CreatedAt    time.Time `bun:"created_at,notnull" bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bun:"updated_at,notnull" bson:"updatedAt" json:"updatedAt"`
}

// DisplayName is what students see on shared pages.
func (t *Trainer) DisplayName() string {
	if t.BusinessName != "" {
		return t.BusinessName
	}
	return t.Name
}

// NormalizeEmail lower-cases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
