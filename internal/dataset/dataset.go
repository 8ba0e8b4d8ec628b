// Package dataset loads credentials and employee names from a spreadsheet.
//
// The sheet holds key/value rows: the key in column A, the value in column B.
// An optional header row ("key", "value") and blank rows are skipped.
//
//	username          Admin
//	password          admin123
//	invalid_password  InvalidPassword
//	add.first_name    David
//	add.last_name     Selvaraj
//	edit.first_name   John
//	edit.last_name    Doe
package dataset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/xkilldash9x/hrmcheck/internal/config"
)

// Keys accepted in the key column.
const (
	KeyUsername        = "username"
	KeyPassword        = "password"
	KeyInvalidPassword = "invalid_password"
	KeyAddFirstName    = "add.first_name"
	KeyAddLastName     = "add.last_name"
	KeyEditFirstName   = "edit.first_name"
	KeyEditLastName    = "edit.last_name"
)

// Values maps keys to the values read from the sheet.
type Values map[string]string

func setters(cfg *config.Config) map[string]*string {
	return map[string]*string{
		KeyUsername:        &cfg.Credentials.Username,
		KeyPassword:        &cfg.Credentials.Password,
		KeyInvalidPassword: &cfg.Credentials.InvalidPassword,
		KeyAddFirstName:    &cfg.Employees.Add.FirstName,
		KeyAddLastName:     &cfg.Employees.Add.LastName,
		KeyEditFirstName:   &cfg.Employees.Edit.FirstName,
		KeyEditLastName:    &cfg.Employees.Edit.LastName,
	}
}

// Load reads the key/value rows of sheet from the workbook at path.
func Load(path, sheet string) (Values, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open test data workbook %s: %w", path, err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found in %s (sheets: %s)", sheet, path, strings.Join(f.GetSheetList(), ", "))
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return parseRows(rows)
}

func parseRows(rows [][]string) (Values, error) {
	known := setters(&config.Config{})
	vals := make(Values)
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(row[0]))
		if key == "" {
			continue
		}
		if i == 0 && key == "key" {
			continue
		}
		if _, ok := known[key]; !ok {
			return nil, fmt.Errorf("row %d: unknown key %q (known: %s)", i+1, row[0], strings.Join(Keys(), ", "))
		}
		var value string
		if len(row) > 1 {
			value = strings.TrimSpace(row[1])
		}
		vals[key] = value
	}
	return vals, nil
}

// Keys lists the accepted keys, sorted.
func Keys() []string {
	m := setters(&config.Config{})
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Apply writes the non-empty values over cfg.
func (v Values) Apply(cfg *config.Config) {
	targets := setters(cfg)
	for k, val := range v {
		if val == "" {
			continue
		}
		if dst, ok := targets[k]; ok {
			*dst = val
		}
	}
}

// LoadInto loads the configured workbook, if any, and applies it to cfg. It
// does nothing when no workbook is configured.
func LoadInto(cfg *config.Config) (Values, error) {
	if cfg.TestData.ExcelFile == "" {
		return nil, nil
	}
	vals, err := Load(cfg.TestData.ExcelFile, cfg.TestData.Sheet)
	if err != nil {
		return nil, err
	}
	vals.Apply(cfg)
	return vals, nil
}
