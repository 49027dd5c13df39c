// Package roster parses the uploaded team spreadsheet into an ordered list
// of teams, each pointing at a repository URL.
package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Required column headers, matched case-sensitively.
const (
	ColumnTeamName = "TeamName"
	ColumnRepoURL  = "GitHubURL"
)

var (
	// ErrEmptyFile means the sheet produced zero data rows.
	ErrEmptyFile = errors.New("roster file contains no rows")
	// ErrBadSchema means the first data row carries neither required column.
	ErrBadSchema = errors.New("roster file is missing the TeamName and GitHubURL columns")
	// ErrNoValidRows means no row had both required values.
	ErrNoValidRows = errors.New("roster file contains no valid rows")
)

// Team is one row of the roster. A new upload replaces the whole list.
type Team struct {
	Name    string `json:"name"`
	RepoURL string `json:"repo_url"`
}

// Parse reads a roster file. CSV files are detected by extension; anything
// else is treated as a spreadsheet and read from its first sheet. The first
// row is the header. Rows missing either value are dropped; the survivors
// keep their original order.
func Parse(r io.Reader, filename string) ([]Team, error) {
	var rows [][]string
	var err error
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		rows, err = readCSV(r)
	} else {
		rows, err = readSpreadsheet(r)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, ErrEmptyFile
	}

	header := rows[0]
	nameCol := columnIndex(header, ColumnTeamName)
	urlCol := columnIndex(header, ColumnRepoURL)

	first := rows[1]
	if cell(first, nameCol) == "" && cell(first, urlCol) == "" {
		return nil, ErrBadSchema
	}

	var teams []Team
	for _, row := range rows[1:] {
		name := cell(row, nameCol)
		repoURL := cell(row, urlCol)
		if name == "" || repoURL == "" {
			continue
		}
		teams = append(teams, Team{Name: name, RepoURL: repoURL})
	}

	if len(teams) == 0 {
		return nil, ErrNoValidRows
	}
	return teams, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, nil
}

func readSpreadsheet(r io.Reader) ([][]string, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
