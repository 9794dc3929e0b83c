package services

import (
	"fmt"
	"regexp"
	"strings"
)

// Reference months are stored as "YYYY-MM". Forms and spreadsheets use the
// Portuguese month names, converted through this fixed table.
var monthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

var monthLabelRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

func ValidMonth(label string) bool {
	return monthLabelRe.MatchString(label)
}

// RefMonth converts a Portuguese month name plus year into the stored
// "YYYY-MM" label. The name match is case-insensitive.
func RefMonth(name string, year int) (string, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for i, n := range monthNames {
		if strings.ToLower(n) == want {
			return fmt.Sprintf("%04d-%02d", year, i+1), nil
		}
	}
	return "", fmt.Errorf("unknown month name %q", name)
}

// MonthName renders a stored "YYYY-MM" label as "Março/2024" for exports.
// Labels that do not parse are returned unchanged.
func MonthName(label string) string {
	if !ValidMonth(label) {
		return label
	}
	var year, month int
	if _, err := fmt.Sscanf(label, "%d-%d", &year, &month); err != nil {
		return label
	}
	return fmt.Sprintf("%s/%d", monthNames[month-1], year)
}
