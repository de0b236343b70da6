package xlsexport

import (
	"bytes"

	billingapimodels "canopy-backend/models/api/billing"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

type Provider interface {
	ExportCreditHistory(list []billingapimodels.CreditTransactionView) (*bytes.Buffer, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{}
}

type impl struct{}

var creditHistoryHeaders = []string{"Date", "Credit type", "Amount", "Reference"}

func (i impl) ExportCreditHistory(list []billingapimodels.CreditTransactionView) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Error("failed to close the export file")
		}
	}()
	sheet := "Sheet1"
	row := 0
	row, err := writeHeader(f, sheet, row, creditHistoryHeaders)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build the xlsx header")
	}
	if len(list) != 0 {
		_, err = writeCreditHistoryData(f, sheet, list, row)
		if err != nil {
			return nil, errors.Wrap(err, "failed to build the xlsx data table")
		}
	}
	f.SetSheetName(sheet, "Credit history")
	return f.WriteToBuffer()
}

func writeCreditHistoryData(f *excelize.File, sheet string, list []billingapimodels.CreditTransactionView, row int) (int, error) {
	for _, item := range list {
		row++
		// "Date"
		col := 1
		if err := writeColumn(f, sheet, col, row, item.CreatedAt.Format("2006-01-02 15:04")); err != nil {
			return row, err
		}

		// "Credit type"
		col++
		if err := writeColumn(f, sheet, col, row, item.CreditType.ToHuman()); err != nil {
			return row, err
		}

		// "Amount"
		col++
		if err := writeColumn(f, sheet, col, row, item.Amount); err != nil {
			return row, err
		}

		// "Reference"
		col++
		if err := writeColumn(f, sheet, col, row, item.Reference); err != nil {
			return row, err
		}
	}
	return row, nil
}
