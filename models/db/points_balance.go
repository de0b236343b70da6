package dbmodels

import "github.com/pkg/errors"

// PointsBalance is the loyalty point accrual for an organization, one row per
// org. The monetary value is derived at read time (balance times the fixed
// point value), it is never stored.
type PointsBalance struct {
	BaseOrgModel
	Balance int64 `gorm:"not null;default:0;check:balance >= 0"`
}

func (p PointsBalance) Validate() error {
	if err := p.BaseOrgModel.Validate(); err != nil {
		return err
	}
	if p.Balance < 0 {
		return errors.New("balance may not be negative")
	}
	return nil
}
