package auth

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name       string    `gorm:"type:varchar(120);not null"`
	Email      string    `gorm:"type:varchar(255);uniqueIndex:uq_users_email;not null"`
	Password   string    `gorm:"type:varchar(255);not null"` // bcrypt hash
	Role       string    `gorm:"type:varchar(20);not null;default:'employee'"`
	Department string    `gorm:"type:varchar(80)"`
	Avatar     string    `gorm:"type:text"`
	IsActive   bool      `gorm:"default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
