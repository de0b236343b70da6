package dbmodels

import (
	"time"

	"github.com/pkg/errors"
)

type BaseModel struct {
	ID        string    `gorm:"primaryKey;default:uuid_generate_v4()" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BaseOrgModel struct {
	BaseModel
	OrgID string `gorm:"type:varchar(36);index" json:"org_id"`
}

func (m BaseOrgModel) Validate() error {
	if m.OrgID == "" {
		return errors.New("organization is not specified")
	}
	return nil
}
