package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "servers.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

var sampleRows = [][]interface{}{
	{HeaderServer, HeaderApplication, HeaderEnvironment, HeaderPort, HeaderStatus, HeaderNotes},
	{"web-01", "nginx", "prod", 443, "Active", "edge proxy"},
	{"web-02", "nginx", "prod", 443, "Active", ""},
	{"db-01", "postgres", "prod", 5432, "Active", "primary"},
	{},
	{"db-02", "postgres", "staging", 5432, "Maintenance", "replica of db-01"},
}

func TestStore_Load(t *testing.T) {
	s, err := Open(writeWorkbook(t, "Servers", sampleRows), "Servers")
	require.NoError(t, err)

	records, err := s.Load()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, Record{
		Server: "web-01", Application: "nginx", Environment: "prod",
		Port: "443", Status: "Active", Notes: "edge proxy",
	}, records[0])
}

func TestStore_ReorderedColumns(t *testing.T) {
	rows := [][]interface{}{
		{"Notes", HeaderApplication, "Owner", HeaderServer},
		{"legacy", "tomcat", "team-a", "app-07"},
	}
	s, err := Open(writeWorkbook(t, "Servers", rows), "Servers")
	require.NoError(t, err)

	records, err := s.Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, Record{Server: "app-07", Application: "tomcat", Notes: "legacy"}, records[0])
}

func TestStore_Search(t *testing.T) {
	s, err := Open(writeWorkbook(t, "Servers", sampleRows), "Servers")
	require.NoError(t, err)

	tests := []struct {
		name    string
		search  func(string) ([]Record, error)
		keyword string
		servers []string
	}{
		{"server substring", s.SearchByServer, "WEB", []string{"web-01", "web-02"}},
		{"server exact", s.SearchByServer, "db-02", []string{"db-02"}},
		{"server does not match application", s.SearchByServer, "nginx", []string{}},
		{"application", s.SearchByApplication, "postgres", []string{"db-01", "db-02"}},
		{"application case-insensitive", s.SearchByApplication, "NGINX", []string{"web-01", "web-02"}},
		{"all fields notes", s.SearchAll, "db-01", []string{"db-01", "db-02"}},
		{"all fields port", s.SearchAll, "5432", []string{"db-01", "db-02"}},
		{"all fields status", s.SearchAll, "maintenance", []string{"db-02"}},
		{"no match", s.SearchAll, "redis", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.search(tt.keyword)
			require.NoError(t, err)
			servers := []string{}
			for _, r := range got {
				servers = append(servers, r.Server)
			}
			assert.Equal(t, tt.servers, servers)
		})
	}
}

func TestStore_Statistics(t *testing.T) {
	s, err := Open(writeWorkbook(t, "Servers", sampleRows), "Servers")
	require.NoError(t, err)

	st, err := s.Statistics()
	require.NoError(t, err)
	assert.Equal(t, Statistics{TotalRecords: 4, UniqueServers: 4, UniqueApplications: 2}, st)
}

func TestStore_ReloadsEdits(t *testing.T) {
	path := writeWorkbook(t, "Servers", sampleRows)
	s, err := Open(path, "Servers")
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Servers", "A7", &[]interface{}{"cache-01", "redis"}))
	require.NoError(t, f.Save())
	require.NoError(t, f.Close())

	got, err := s.SearchByApplication("redis")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "cache-01", got[0].Server)
}

func TestOpen_Errors(t *testing.T) {
	valid := writeWorkbook(t, "Servers", sampleRows)

	t.Run("missing file", func(t *testing.T) {
		_, err := Open(filepath.Join(t.TempDir(), "nope.xlsx"), "Servers")
		assert.True(t, errors.Is(err, os.ErrNotExist), fmt.Sprint(err))
	})
	t.Run("missing sheet", func(t *testing.T) {
		_, err := Open(valid, "Inventory")
		assert.ErrorIs(t, err, ErrSheetNotFound)
	})
	t.Run("missing header", func(t *testing.T) {
		path := writeWorkbook(t, "Servers", [][]interface{}{{HeaderServer, "App"}, {"a", "b"}})
		_, err := Open(path, "Servers")
		assert.ErrorContains(t, err, HeaderApplication)
	})
	t.Run("empty sheet", func(t *testing.T) {
		path := writeWorkbook(t, "Servers", nil)
		_, err := Open(path, "Servers")
		assert.ErrorContains(t, err, "no header row")
	})
}
