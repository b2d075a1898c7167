package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/planitkids/fritids/core/bus"
)

type busRow struct {
	ID       int64       `db:"id"`
	Name     string      `db:"name"`
	DriverID null.String `db:"driver_id"`
	SchoolID string      `db:"school_id"`
}

func (r busRow) bus() bus.Bus {
	return bus.Bus{ID: r.ID, Name: r.Name, DriverID: r.DriverID.String, SchoolID: r.SchoolID}
}

type studentRow struct {
	ID          int64      `db:"id"`
	Name        string     `db:"name"`
	ClassName   string     `db:"class_name"`
	BusID       null.Int64 `db:"bus_id"`
	ParentEmail string     `db:"parent_email"`
}

func (r studentRow) student() bus.Student {
	return bus.Student{ID: r.ID, Name: r.Name, ClassName: r.ClassName, BusID: r.BusID.Int64, ParentEmail: r.ParentEmail}
}

type notificationRow struct {
	ID        int64     `db:"id"`
	StudentID int64     `db:"student_id"`
	BusID     int64     `db:"bus_id"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

func (r notificationRow) notification() bus.Notification {
	return bus.Notification{ID: r.ID, StudentID: r.StudentID, BusID: r.BusID, Status: bus.Status(r.Status), CreatedAt: r.CreatedAt}
}

var (
	busColumns          = []string{"id", "name", "driver_id", "school_id"}
	studentColumns      = []string{"id", "name", "class_name", "bus_id", "parent_email"}
	notificationColumns = []string{"id", "student_id", "bus_id", "status", "created_at"}
)

type busRepository struct {
	db *sqlx.DB
}

var _ bus.Repository = (*busRepository)(nil)

func NewBusRepository(db *sqlx.DB) *busRepository {
	return &busRepository{db: db}
}

func (repo busRepository) CreateBus(ctx context.Context, b bus.Bus) (bus.Bus, error) {
	q := psql.Insert("buses").Columns(busColumns[1:]...).
		Values(b.Name, null.NewString(b.DriverID, b.DriverID != ""), b.SchoolID).
		Suffix("RETURNING id")
	if err := get(ctx, repo.db, &b.ID, q); err != nil {
		return bus.Bus{}, errors.Wrap(err, "inserting bus")
	}
	return b, nil
}

func (repo busRepository) CreateStudent(ctx context.Context, st bus.Student) (bus.Student, error) {
	q := psql.Insert("bus_students").Columns(studentColumns[1:]...).
		Values(st.Name, st.ClassName, null.NewInt64(st.BusID, st.BusID != 0), st.ParentEmail).
		Suffix("RETURNING id")
	if err := get(ctx, repo.db, &st.ID, q); err != nil {
		return bus.Student{}, errors.Wrap(err, "inserting bus student")
	}
	return st, nil
}

func (repo busRepository) GetBus(ctx context.Context, id int64) (bus.Bus, error) {
	var r busRow
	if err := get(ctx, repo.db, &r, psql.Select(busColumns...).From("buses").Where(sq.Eq{"id": id})); err != nil {
		return bus.Bus{}, trapNoRowsErr(err, bus.ErrBusNotFound, "finding bus")
	}
	return r.bus(), nil
}

func (repo busRepository) QueryBuses(ctx context.Context, driverID string) ([]bus.Bus, error) {
	var rows []busRow
	q := psql.Select(busColumns...).From("buses").Where(sq.Eq{"driver_id": driverID}).OrderBy("name")
	if err := selectAll(ctx, repo.db, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying buses")
	}
	buses := make([]bus.Bus, 0, len(rows))
	for _, r := range rows {
		buses = append(buses, r.bus())
	}
	return buses, nil
}

func (repo busRepository) GetStudent(ctx context.Context, id int64) (bus.Student, error) {
	var r studentRow
	if err := get(ctx, repo.db, &r, psql.Select(studentColumns...).From("bus_students").Where(sq.Eq{"id": id})); err != nil {
		return bus.Student{}, trapNoRowsErr(err, bus.ErrStudentNotFound, "finding bus student")
	}
	return r.student(), nil
}

func (repo busRepository) queryStudents(ctx context.Context, pred sq.Eq) ([]bus.Student, error) {
	var rows []studentRow
	q := psql.Select(studentColumns...).From("bus_students").Where(pred).OrderBy("name")
	if err := selectAll(ctx, repo.db, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying bus students")
	}
	students := make([]bus.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.student())
	}
	return students, nil
}

func (repo busRepository) QueryStudents(ctx context.Context, busID int64) ([]bus.Student, error) {
	return repo.queryStudents(ctx, sq.Eq{"bus_id": busID})
}

func (repo busRepository) StudentsByParent(ctx context.Context, email string) ([]bus.Student, error) {
	return repo.queryStudents(ctx, sq.Eq{"parent_email": email})
}

func (repo busRepository) CreateNotification(ctx context.Context, n bus.Notification) (bus.Notification, error) {
	q := psql.Insert("bus_notifications").Columns(notificationColumns[1:]...).
		Values(n.StudentID, n.BusID, string(n.Status), n.CreatedAt.UTC()).
		Suffix("RETURNING id")
	if err := get(ctx, repo.db, &n.ID, q); err != nil {
		return bus.Notification{}, errors.Wrap(err, "inserting bus notification")
	}
	return n, nil
}

func (repo busRepository) LatestNotification(ctx context.Context, studentID int64) (bus.Notification, error) {
	var r notificationRow
	q := psql.Select(notificationColumns...).
		From("bus_notifications").
		Where(sq.Eq{"student_id": studentID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(1)
	if err := get(ctx, repo.db, &r, q); err != nil {
		return bus.Notification{}, trapNoRowsErr(err, bus.ErrNotificationNotFound, "finding latest bus notification")
	}
	return r.notification(), nil
}

func (repo busRepository) DeleteNotificationsBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := exec(ctx, repo.db, psql.Delete("bus_notifications").Where(sq.Lt{"created_at": t.UTC()}))
	if err != nil {
		return 0, errors.Wrap(err, "deleting bus notifications")
	}
	n, err := res.RowsAffected()
	return n, errors.Wrap(err, "counting deleted bus notifications")
}
