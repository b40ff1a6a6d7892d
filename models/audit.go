package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreate       = "create"
	ActionUpdate       = "update"
	ActionDelete       = "delete"
	ActionLogin        = "login"
	ActionLogout       = "logout"
	ActionStatusChange = "status_change"
	ActionPayment      = "payment"
	ActionReversal     = "reversal"
)

// JSONB stores the change snapshot of an audit entry.
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, &j)
}

type AuditLog struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	DealershipID uuid.UUID `gorm:"type:uuid;not null;index"`

	UserID    *uuid.UUID `gorm:"type:uuid;index"`
	UserEmail string

	Action     string `gorm:"type:varchar(20);not null;index"`
	Model      string `gorm:"type:varchar(50);index"`
	ObjectID   string
	ObjectRepr string
	Changes    JSONB `gorm:"type:jsonb;default:'{}'"`

	IPAddress string
	UserAgent string
	Path      string
	Method    string `gorm:"type:varchar(10)"`
	Status    int

	CreatedAt time.Time `gorm:"index"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
