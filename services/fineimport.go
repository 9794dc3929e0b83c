package services

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"fleetdesk/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Expected spreadsheet headers, matched exactly after trimming whitespace.
var importHeaders = map[string]string{
	"Condutor (a)":      "driver",
	"Placa":             "plate",
	"Empresa":           "company",
	"Centro de Custo":   "cost_center",
	"Unidade":           "unit",
	"Modalidade":        "modality",
	"Mês de Referência": "ref_month",
	"Infração":          "infraction",
	"Data da Infração":  "date",
	"Hora":              "time",
	"Valor":             "amount",
	"Desconto Aplicado": "discount",
	"RH Notificado":     "hr_notified",
	"Observações":       "notes",
}

type ImportResult struct {
	Inserted  int
	Skipped   int
	RowErrors []string
}

func (r *ImportResult) fail(rowNum int, reason string) {
	r.Skipped++
	r.RowErrors = append(r.RowErrors, fmt.Sprintf("row %d: %s", rowNum, reason))
}

// ImportFines reads a fine batch from an xlsx upload. Rows whose
// (plate, date, infraction) triple already exists are skipped, registry
// references are resolved by case-insensitive exact match (unresolvable
// rows are skipped), time and currency parse best-effort, and the whole
// batch commits once at the end. Per-row failures never abort the batch.
func ImportFines(db *gorm.DB, upload io.Reader) (*ImportResult, error) {
	wb, err := excelize.OpenReader(upload)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	rows, err := wb.GetRows(wb.GetSheetName(0))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("spreadsheet has no header row")
	}

	cols := map[string]int{}
	for i, header := range rows[0] {
		if key, ok := importHeaders[strings.TrimSpace(header)]; ok {
			cols[key] = i
		}
	}
	for _, required := range []string{"driver", "plate", "infraction", "date"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("spreadsheet is missing a required column (%s)", required)
		}
	}

	cell := func(row []string, key string) string {
		i, ok := cols[key]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	res := &ImportResult{}
	err = db.Transaction(func(tx *gorm.DB) error {
		for n, row := range rows[1:] {
			rowNum := n + 2

			plate := models.NormalizePlate(cell(row, "plate"))
			infraction := cell(row, "infraction")
			if plate == "" || infraction == "" {
				res.fail(rowNum, "missing plate or infraction")
				continue
			}

			date, ok := parseDate(cell(row, "date"))
			if !ok {
				res.fail(rowNum, "unparseable infraction date")
				continue
			}

			// A failed statement aborts the whole transaction on postgres;
			// the savepoint confines the damage to the current row.
			if err := tx.SavePoint("fine_row").Error; err != nil {
				return err
			}
			skip := func(reason string) {
				tx.RollbackTo("fine_row")
				res.fail(rowNum, reason)
			}

			// Duplicate triple: already in the database, or earlier in
			// this same batch (visible through the open transaction).
			var dup int64
			if err := tx.Model(&models.Fine{}).
				Where("plate = ? AND date = ? AND infraction = ?", plate, date, infraction).
				Count(&dup).Error; err != nil {
				skip(err.Error())
				continue
			}
			if dup > 0 {
				skip("duplicate of an existing fine")
				continue
			}

			var driver models.Driver
			if err := tx.Where("LOWER(name) = ?", strings.ToLower(cell(row, "driver"))).
				First(&driver).Error; err != nil {
				skip("driver not found")
				continue
			}
			var vehicle models.Vehicle
			if err := tx.Where("plate = ?", plate).First(&vehicle).Error; err != nil {
				skip("vehicle not found")
				continue
			}

			fine := models.Fine{
				DriverID:        &driver.ID,
				VehicleID:       &vehicle.ID,
				Plate:           plate,
				CostCenter:      cell(row, "cost_center"),
				Unit:            cell(row, "unit"),
				Modality:        cell(row, "modality"),
				RefMonth:        parseRefMonth(cell(row, "ref_month"), date),
				Infraction:      infraction,
				Date:            date,
				Time:            parseClock(cell(row, "time")),
				Amount:          parseCurrency(cell(row, "amount")),
				DiscountApplied: parseYes(cell(row, "discount")),
				HRNotified:      parseYes(cell(row, "hr_notified")),
				Notes:           cell(row, "notes"),
			}
			if fine.CostCenter == "" {
				fine.CostCenter = driver.Department
			}
			if name := cell(row, "company"); name != "" {
				var company models.Company
				if err := tx.Where("LOWER(name) = ?", strings.ToLower(name)).
					First(&company).Error; err != nil {
					skip("company not found")
					continue
				}
				fine.CompanyID = &company.ID
			}

			if err := tx.Create(&fine).Error; err != nil {
				skip(err.Error())
				continue
			}
			res.Inserted++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{"02/01/2006", "2006-01-02", "02-01-2006", "02-01-06"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseRefMonth keeps an already-valid "YYYY-MM" label and otherwise tries
// the month-name table against the infraction date's year.
func parseRefMonth(s string, date time.Time) string {
	if ValidMonth(s) {
		return s
	}
	if ref, err := RefMonth(s, date.Year()); err == nil {
		return ref
	}
	return ""
}

func parseClock(s string) string {
	for _, layout := range []string{"15:04", "15:04:05", "3:04 PM"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04")
		}
	}
	return ""
}

// parseCurrency handles "R$ 1.234,56" style values; anything unparseable
// imports as zero rather than failing the row.
func parseCurrency(s string) float64 {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	s = strings.ReplaceAll(s, "\u00a0", "")
	s = strings.ReplaceAll(s, " ", "")
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sim", "s", "x", "true", "1", "yes":
		return true
	}
	return false
}
