package employee

import (
	"time"

	"github.com/google/uuid"
)

type Employee struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	FirstName   string    `gorm:"type:varchar(100);not null"`
	LastName    string    `gorm:"type:varchar(100);not null"`
	Email       string    `gorm:"uniqueIndex;not null"`
	DateOfBirth time.Time `gorm:"type:date"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}
