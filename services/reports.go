package services

import (
	"fmt"
	"time"

	"fleetdesk/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type MileageRow struct {
	DriverName string `json:"driver_name"`
	Km         int    `json:"km"`
}

type MileageReport struct {
	Rows    []MileageRow `json:"rows"`
	TotalKm int          `json:"total_km"`
}

// MileageByDriver aggregates checkpoint mileage for an optional vehicle
// and/or driver filter across an inclusive "YYYY-MM" range. Rows sum
// (end - start) per driver; TotalKm follows the original accounting of
// (last end in range - first start in range), which disagrees with the
// row sum whenever more than one driver or vehicle matches.
func MileageByDriver(db *gorm.DB, vehicleID, driverID uint, fromMonth, toMonth string) (*MileageReport, error) {
	base := func() *gorm.DB {
		q := db.Model(&models.Checkpoint{}).
			Joins("JOIN utilizations ON utilizations.id = checkpoints.utilization_id")
		if vehicleID > 0 {
			q = q.Where("utilizations.vehicle_id = ?", vehicleID)
		}
		if driverID > 0 {
			q = q.Where("utilizations.driver_id = ?", driverID)
		}
		if fromMonth != "" {
			q = q.Where("checkpoints.month >= ?", fromMonth)
		}
		if toMonth != "" {
			q = q.Where("checkpoints.month <= ?", toMonth)
		}
		return q
	}

	report := &MileageReport{}
	if err := base().
		Joins("JOIN drivers ON drivers.id = utilizations.driver_id").
		Select("drivers.name AS driver_name, SUM(checkpoints.end_km - checkpoints.start_km) AS km").
		Group("drivers.name").
		Order("drivers.name").
		Scan(&report.Rows).Error; err != nil {
		return nil, err
	}

	var first, last []models.Checkpoint
	if err := base().Order("checkpoints.month asc, checkpoints.id asc").
		Limit(1).Find(&first).Error; err != nil {
		return nil, err
	}
	if err := base().Order("checkpoints.month desc, checkpoints.id desc").
		Limit(1).Find(&last).Error; err != nil {
		return nil, err
	}
	if len(first) > 0 && len(last) > 0 {
		report.TotalKm = last[0].EndKm - first[0].StartKm
	}
	return report, nil
}

// FinesInRange filters the ledger by date range and, optionally, vehicle.
func FinesInRange(db *gorm.DB, vehicleID uint, from, to time.Time) ([]models.Fine, error) {
	q := db.Preload("Driver").Preload("Vehicle").Preload("Company")
	if vehicleID > 0 {
		q = q.Where("vehicle_id = ?", vehicleID)
	}
	if !from.IsZero() {
		q = q.Where("date >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("date <= ?", to)
	}
	var fines []models.Fine
	if err := q.Order("date asc, id asc").Find(&fines).Error; err != nil {
		return nil, err
	}
	return fines, nil
}

var exportColumns = []string{
	"Condutor (a)", "Placa", "Empresa", "Centro de Custo", "Unidade",
	"Modalidade", "Mês de Referência", "Infração", "Data da Infração",
	"Hora", "Valor", "Desconto Aplicado", "RH Notificado", "Observações",
}

// FinesWorkbook builds the single-sheet export of a filtered fine set,
// substituting the human-readable month name for the stored "YYYY-MM".
func FinesWorkbook(fines []models.Fine) (*excelize.File, error) {
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)

	for i, col := range exportColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := wb.SetCellValue(sheet, cell, col); err != nil {
			return nil, err
		}
	}

	for rowIdx, f := range fines {
		driverName := ""
		if f.Driver != nil {
			driverName = f.Driver.Name
		}
		companyName := ""
		if f.Company != nil {
			companyName = f.Company.Name
		}
		yes := func(b bool) string {
			if b {
				return "Sim"
			}
			return "Não"
		}
		values := []interface{}{
			driverName,
			f.Plate,
			companyName,
			f.CostCenter,
			f.Unit,
			f.Modality,
			MonthName(f.RefMonth),
			f.Infraction,
			f.Date.Format("02/01/2006"),
			f.Time,
			f.Amount,
			yes(f.DiscountApplied),
			yes(f.HRNotified),
			f.Notes,
		}
		for colIdx, v := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := wb.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}
	return wb, nil
}

// ExportFilename suffixes the attachment name with a timestamp.
func ExportFilename(prefix string) string {
	return fmt.Sprintf("%s_%s.xlsx", prefix, time.Now().Format("20060102_150405"))
}
