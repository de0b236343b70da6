package dbmodels

import (
	"canopy-backend/models"

	"github.com/pkg/errors"
)

// CreditBalance holds one row per (organization, credit type). Rows are
// created lazily on the first grant and never deleted, only zeroed.
// Uniqueness of (org_id, credit_type) is enforced by an index created in the
// migration.
type CreditBalance struct {
	BaseOrgModel
	CreditType models.CreditType `gorm:"type:varchar(50);index"`
	Balance    int64             `gorm:"not null;default:0;check:balance >= 0"`
}

func (c CreditBalance) Validate() error {
	if err := c.BaseOrgModel.Validate(); err != nil {
		return err
	}
	if !c.CreditType.IsKnown() {
		return errors.Errorf("unknown credit type (%v)", c.CreditType)
	}
	if c.Balance < 0 {
		return errors.New("balance may not be negative")
	}
	return nil
}

// CreditTransaction is the append-only history behind a credit balance.
// Amount is positive for grants and negative for debits.
type CreditTransaction struct {
	BaseOrgModel
	CreditType models.CreditType `gorm:"type:varchar(50);index"`
	Amount     int64
	Reference  string `gorm:"type:varchar(255)"`
}

func (c CreditTransaction) Validate() error {
	if err := c.BaseOrgModel.Validate(); err != nil {
		return err
	}
	if !c.CreditType.IsKnown() {
		return errors.Errorf("unknown credit type (%v)", c.CreditType)
	}
	if c.Amount == 0 {
		return errors.New("amount is not specified")
	}
	return nil
}
