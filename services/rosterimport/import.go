// Package rosterimport reads class rosters from excel workbooks.
// Every sheet is a class named after the sheet; column A holds the student names below a header row.
package rosterimport

import (
	"context"
	"io"
	"sort"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/planitkids/fritids/core"
	"github.com/planitkids/fritids/core/roster"
)

var ErrEmptyWorkbook = errors.New("the workbook holds no student")

// Parse reads the class rosters of the workbook r.
func Parse(r io.Reader) (roster.ClassRoster, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "opening workbook")
	}
	defer func() { _ = f.Close() }()

	res := make(roster.ClassRoster)
	for _, sheet := range f.GetSheetList() {
		class := core.CleanString(sheet)
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, errors.Wrapf(err, "reading sheet %s", sheet)
		}
		for i, row := range rows {
			if i == 0 || len(row) == 0 {
				continue // header
			}
			if name := core.CleanString(row[0]); name != "" {
				res[class] = append(res[class], name)
			}
		}
	}
	if len(res) == 0 {
		return nil, ErrEmptyWorkbook
	}
	return res, nil
}

type StudentAdder interface {
	AddStudents(ctx context.Context, schoolID, className string, names ...string) error
}

// Import adds every student of the workbook r to the rosters of schoolID.
// It returns the number of names read per class.
func Import(ctx context.Context, adder StudentAdder, schoolID string, r io.Reader) (map[string]int, error) {
	classes, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return ImportClasses(ctx, adder, schoolID, classes)
}

// ImportClasses adds classes to the rosters of schoolID, in class name order.
func ImportClasses(ctx context.Context, adder StudentAdder, schoolID string, classes roster.ClassRoster) (map[string]int, error) {
	names := make([]string, 0, len(classes))
	for class := range classes {
		names = append(names, class)
	}
	sort.Strings(names)

	counts := make(map[string]int, len(classes))
	for _, class := range names {
		if err := adder.AddStudents(ctx, schoolID, class, classes[class]...); err != nil {
			return counts, errors.Wrapf(err, "importing class %s", class)
		}
		counts[class] = len(classes[class])
	}
	return counts, nil
}
