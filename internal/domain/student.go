package domain

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Student is a person coached by a trainer. Students do not log in.
type Student struct {
	bun.BaseModel `bun:"table:students,alias:s" bson:"-" json:"-"`

	ID        string     `bun:"id,pk,type:uuid" bson:"_id" json:"id"`
	TrainerID string     `bun:"trainer_id,notnull,type:uuid" bson:"trainerId" json:"trainerId"`
	Name      string     `bun:"name,notnull" bson:"name" json:"name"`
	Email     string     `bun:"email" bson:"email,omitempty" json:"email,omitempty"`
	Phone     string     `bun:"phone" bson:"phone,omitempty" json:"phone,omitempty"`
	BirthDate *time.Time `bun:"birth_date" bson:"birthDate,omitempty" json:"birthDate,omitempty"`
	Goal      string     `bun:"goal" bson:"goal,omitempty" json:"goal,omitempty"`
	Notes     string     `bun:"notes" bson:"notes,omitempty" json:"notes,omitempty"`
	IsActive  bool       `bun:"is_active,notnull" bson:"isActive" json:"isActive"`
	CreatedAt time.Time  `bun:"created_at,notnull" bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bun:"updated_at,notnull" bson:"updatedAt" json:"updatedAt"`
}

// FirstName is the part of the name shown on public pages.
func (s *Student) FirstName() string {
	fields := strings.Fields(s.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
