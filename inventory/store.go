// Package inventory reads the server/application inventory workbook.
package inventory

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Header texts of the inventory sheet.
const (
	HeaderServer      = "Server/Node Name"
	HeaderApplication = "Application Name"
	HeaderEnvironment = "Environment"
	HeaderPort        = "Port"
	HeaderStatus      = "Status"
	HeaderNotes       = "Notes"
)

var ErrSheetNotFound = errors.New("sheet not found")

// Record is one row of the inventory.
type Record struct {
	Server      string `json:"server_name"`
	Application string `json:"application"`
	Environment string `json:"environment"`
	Port        string `json:"port"`
	Status      string `json:"status"`
	Notes       string `json:"notes"`
}

func (r Record) fields() []string {
	return []string{r.Server, r.Application, r.Environment, r.Port, r.Status, r.Notes}
}

// Statistics summarizes the inventory.
type Statistics struct {
	TotalRecords       int `json:"total_records"`
	UniqueServers      int `json:"unique_servers"`
	UniqueApplications int `json:"unique_applications"`
}

// Store is a read-only view of an inventory workbook. The file is re-read on every
// call so edits made in a spreadsheet editor show up without a restart.
type Store struct {
	path  string
	sheet string
}

// Open checks that path holds a workbook with the given sheet and the server and
// application columns.
func Open(path, sheet string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("inventory %s: %w", path, err)
	}
	s := &Store{path: path, sheet: sheet}
	if _, err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Path() string { return s.path }

// Load returns every non-empty row below the header.
func (s *Store) Load() ([]Record, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open inventory %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	if idx, err := f.GetSheetIndex(s.sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("inventory %s: %w: %q", s.path, ErrSheetNotFound, s.sheet)
	}
	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", s.sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("inventory %s: sheet %q has no header row", s.path, s.sheet)
	}

	cols, err := locateColumns(rows[0])
	if err != nil {
		return nil, fmt.Errorf("inventory %s: %w", s.path, err)
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := cols.record(row)
		if rec == (Record{}) {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// SearchByServer returns the records whose server name contains keyword.
func (s *Store) SearchByServer(keyword string) ([]Record, error) {
	return s.search(keyword, func(r Record) []string { return []string{r.Server} })
}

// SearchByApplication returns the records whose application name contains keyword.
func (s *Store) SearchByApplication(keyword string) ([]Record, error) {
	return s.search(keyword, func(r Record) []string { return []string{r.Application} })
}

// SearchAll returns the records where any field contains keyword.
func (s *Store) SearchAll(keyword string) ([]Record, error) {
	return s.search(keyword, Record.fields)
}

func (s *Store) search(keyword string, fields func(Record) []string) ([]Record, error) {
	all, err := s.Load()
	if err != nil {
		return nil, err
	}
	kw := strings.ToLower(strings.TrimSpace(keyword))
	out := []Record{}
	for _, r := range all {
		for _, v := range fields(r) {
			if v != "" && strings.Contains(strings.ToLower(v), kw) {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

// Statistics counts records, distinct servers and distinct applications.
func (s *Store) Statistics() (Statistics, error) {
	all, err := s.Load()
	if err != nil {
		return Statistics{}, err
	}
	servers := map[string]struct{}{}
	apps := map[string]struct{}{}
	for _, r := range all {
		if r.Server != "" {
			servers[r.Server] = struct{}{}
		}
		if r.Application != "" {
			apps[r.Application] = struct{}{}
		}
	}
	return Statistics{
		TotalRecords:       len(all),
		UniqueServers:      len(servers),
		UniqueApplications: len(apps),
	}, nil
}

// columns maps each field to its index in a row; -1 when the sheet lacks the column.
type columns struct {
	server, application, environment, port, status, notes int
}

func locateColumns(header []string) (columns, error) {
	c := columns{-1, -1, -1, -1, -1, -1}
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case HeaderServer:
			c.server = i
		case HeaderApplication:
			c.application = i
		case HeaderEnvironment:
			c.environment = i
		case HeaderPort:
			c.port = i
		case HeaderStatus:
			c.status = i
		case HeaderNotes:
			c.notes = i
		}
	}
	if c.server < 0 || c.application < 0 {
		return c, fmt.Errorf("header must contain %q and %q", HeaderServer, HeaderApplication)
	}
	return c, nil
}

func (c columns) record(row []string) Record {
	cell := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	return Record{
		Server:      cell(c.server),
		Application: cell(c.application),
		Environment: cell(c.environment),
		Port:        cell(c.port),
		Status:      cell(c.status),
		Notes:       cell(c.notes),
	}
}
