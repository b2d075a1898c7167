package rosterimport_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/planitkids/fritids/core/roster"
	inmemdb "github.com/planitkids/fritids/storage/database/inmem"
	"github.com/planitkids/fritids/services/rosterimport"
)

func workbook(t *testing.T, sheets map[string][]string, order ...string) *bytes.Buffer {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, sheet := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", sheet))
		} else {
			_, err := f.NewSheet(sheet)
			require.NoError(t, err)
		}
		require.NoError(t, f.SetCellValue(sheet, "A1", "Namn"))
		for j, name := range sheets[sheet] {
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, name))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParse(t *testing.T) {
	buf := workbook(t, map[string][]string{
		"Åk1": {"Alva", " Elias ", "", "Maja"},
		"Åk2": {"Noah"},
	}, "Åk1", "Åk2")

	got, err := rosterimport.Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, roster.ClassRoster{
		"Åk1": {"Alva", "Elias", "Maja"},
		"Åk2": {"Noah"},
	}, got)
}

func TestParse_Empty(t *testing.T) {
	_, err := rosterimport.Parse(workbook(t, map[string][]string{}, "Åk1"))
	assert.Equal(t, rosterimport.ErrEmptyWorkbook, err)

	_, err = rosterimport.Parse(bytes.NewBufferString("plain text"))
	assert.Error(t, err)
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	svc := roster.NewService(inmemdb.NewRosterRepository(inmemdb.NewDB()))
	require.NoError(t, svc.AddStudents(ctx, "s-1", "Åk1", "Alva"))

	buf := workbook(t, map[string][]string{
		"Åk1": {"Alva", "Elias"},
		"Åk3": {"Ella", "Hugo"},
	}, "Åk3", "Åk1")

	counts, err := rosterimport.Import(ctx, svc, "s-1", buf)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Åk1": 2, "Åk3": 2}, counts)

	classes, err := svc.ClassRosters(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, roster.ClassRoster{
		"Åk1": {"Alva", "Elias"},
		"Åk3": {"Ella", "Hugo"},
	}, classes)
}
