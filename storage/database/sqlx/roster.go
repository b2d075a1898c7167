package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/planitkids/fritids/core/roster"
)

type rosterRepository struct {
	db *sqlx.DB
}

var _ roster.Repository = (*rosterRepository)(nil)

func NewRosterRepository(db *sqlx.DB) *rosterRepository {
	return &rosterRepository{db: db}
}

type classStudentRow struct {
	ClassName   string `db:"class_name"`
	StudentName string `db:"student_name"`
}

type assignmentRow struct {
	OwnerID     string `db:"owner_id"`
	ClassName   string `db:"class_name"`
	StudentName string `db:"student_name"`
}

func (repo rosterRepository) ClassRosters(ctx context.Context, schoolID string) (roster.ClassRoster, error) {
	b := psql.Select("class_name", "student_name").
		From("class_students").
		Where(sq.Eq{"school_id": schoolID}).
		OrderBy("class_name", "position", "student_name")

	var rows []classStudentRow
	if err := selectAll(ctx, repo.db, &rows, b); err != nil {
		return nil, errors.Wrap(err, "querying class rosters")
	}
	res := make(roster.ClassRoster)
	for _, r := range rows {
		res[r.ClassName] = append(res[r.ClassName], r.StudentName)
	}
	return res, nil
}

func (repo rosterRepository) AddStudents(ctx context.Context, schoolID, className string, names ...string) error {
	return inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var pos int
		b := psql.Select("COALESCE(MAX(position), -1) + 1").
			From("class_students").
			Where(sq.Eq{"school_id": schoolID, "class_name": className})
		if err := get(ctx, tx, &pos, b); err != nil {
			return errors.Wrap(err, "finding roster position")
		}

		ins := psql.Insert("class_students").
			Columns("school_id", "class_name", "student_name", "position").
			Suffix("ON CONFLICT DO NOTHING")
		for i, n := range names {
			ins = ins.Values(schoolID, className, n, pos+i)
		}
		_, err := exec(ctx, tx, ins)
		return errors.Wrap(err, "inserting students")
	})
}

func (repo rosterRepository) DayAssignments(ctx context.Context, schoolID, date string) (map[string][]roster.StudentAssignment, error) {
	b := psql.Select("owner_id", "class_name", "student_name").
		From("group_assignments").
		Where(sq.Eq{"school_id": schoolID, "date": date}).
		OrderBy("owner_id", "position")

	var rows []assignmentRow
	if err := selectAll(ctx, repo.db, &rows, b); err != nil {
		return nil, errors.Wrap(err, "querying group assignments")
	}
	res := make(map[string][]roster.StudentAssignment)
	for _, r := range rows {
		res[r.OwnerID] = append(res[r.OwnerID], roster.StudentAssignment{StudentName: r.StudentName, ClassName: r.ClassName})
	}
	return res, nil
}

func (repo rosterRepository) ReplaceGroupAssignments(ctx context.Context, schoolID, date string, byOwner map[string][]roster.StudentAssignment) error {
	if len(byOwner) == 0 {
		return nil
	}
	owners := make([]string, 0, len(byOwner))
	for owner := range byOwner {
		owners = append(owners, owner)
	}

	return inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		del := psql.Delete("group_assignments").Where(sq.Eq{"school_id": schoolID, "date": date, "owner_id": owners})
		if _, err := exec(ctx, tx, del); err != nil {
			return errors.Wrap(err, "clearing group assignments")
		}

		ins := psql.Insert("group_assignments").
			Columns("school_id", "date", "owner_id", "class_name", "student_name", "position")
		cnt := 0
		for owner, list := range byOwner {
			for i, sa := range list {
				ins = ins.Values(schoolID, date, owner, sa.ClassName, sa.StudentName, i)
				cnt++
			}
		}
		if cnt == 0 {
			return nil
		}
		_, err := exec(ctx, tx, ins)
		return errors.Wrap(err, "inserting group assignments")
	})
}
