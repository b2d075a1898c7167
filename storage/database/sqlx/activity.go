package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/planitkids/fritids/core/activity"
)

var activityColumns = []string{
	"id", "local_id", "school_id", "date", "type", "from_time", "to_time", "location", "description",
	"photos", "staff", "created_at", "updated_at",
}

type activityRow struct {
	ID          int64     `db:"id"`
	LocalID     string    `db:"local_id"`
	SchoolID    string    `db:"school_id"`
	Date        time.Time `db:"date"`
	Type        string    `db:"type"`
	FromTime    string    `db:"from_time"`
	ToTime      string    `db:"to_time"`
	Location    string    `db:"location"`
	Description string    `db:"description"`
	Photos      null.JSON `db:"photos"`
	Staff       null.JSON `db:"staff"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r activityRow) activity() (activity.Activity, error) {
	id := r.ID
	a := activity.Activity{
		LocalID:       r.LocalID,
		RemoteID:      &id,
		SchoolID:      r.SchoolID,
		Date:          r.Date.Format("2006-01-02"),
		Type:          activity.Type(r.Type),
		FromTime:      r.FromTime,
		ToTime:        r.ToTime,
		Location:      r.Location,
		Description:   r.Description,
		Photos:        []activity.Photo{},
		AssignedStaff: []activity.StaffRef{},
		Saved:         true,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.Photos.Valid {
		if err := r.Photos.Unmarshal(&a.Photos); err != nil {
			return activity.Activity{}, errors.Wrap(err, "decoding photos")
		}
	}
	if r.Staff.Valid {
		if err := r.Staff.Unmarshal(&a.AssignedStaff); err != nil {
			return activity.Activity{}, errors.Wrap(err, "decoding staff")
		}
	}
	return a, nil
}

func marshalJSON(v interface{}) (null.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return null.JSON{}, err
	}
	return null.JSONFrom(b), nil
}

type activityRepository struct {
	db *sqlx.DB
}

var _ activity.Repository = (*activityRepository)(nil)

func NewActivityRepository(db *sqlx.DB) *activityRepository {
	return &activityRepository{db: db}
}

func (repo activityRepository) jsonColumns(a activity.Activity) (photos, staff null.JSON, err error) {
	if a.Photos == nil {
		a.Photos = []activity.Photo{}
	}
	if a.AssignedStaff == nil {
		a.AssignedStaff = []activity.StaffRef{}
	}
	if photos, err = marshalJSON(a.Photos); err != nil {
		return photos, staff, errors.Wrap(err, "encoding photos")
	}
	staff, err = marshalJSON(a.AssignedStaff)
	return photos, staff, errors.Wrap(err, "encoding staff")
}

func (repo activityRepository) CreateActivity(ctx context.Context, a activity.Activity) (activity.Activity, error) {
	photos, staff, err := repo.jsonColumns(a)
	if err != nil {
		return activity.Activity{}, err
	}
	b := psql.Insert("activities").
		Columns(activityColumns[1:]...).
		Values(a.LocalID, a.SchoolID, a.Date, a.Type, a.FromTime, a.ToTime, a.Location, a.Description,
			photos, staff, a.CreatedAt.UTC(), a.UpdatedAt.UTC()).
		Suffix("RETURNING id")

	var id int64
	if err := get(ctx, repo.db, &id, b); err != nil {
		return activity.Activity{}, errors.Wrap(err, "inserting activity")
	}
	a.RemoteID = &id
	a.Saved = true
	return a, nil
}

func (repo activityRepository) UpdateActivity(ctx context.Context, a activity.Activity) (activity.Activity, error) {
	if a.RemoteID == nil {
		return activity.Activity{}, activity.ErrNotFound
	}
	photos, staff, err := repo.jsonColumns(a)
	if err != nil {
		return activity.Activity{}, err
	}
	b := psql.Update("activities").SetMap(map[string]interface{}{
		"type":        a.Type,
		"from_time":   a.FromTime,
		"to_time":     a.ToTime,
		"location":    a.Location,
		"description": a.Description,
		"photos":      photos,
		"staff":       staff,
		"updated_at":  a.UpdatedAt.UTC(),
	}).Where(sq.Eq{"id": *a.RemoteID})

	res, err := exec(ctx, repo.db, b)
	if err != nil {
		return activity.Activity{}, errors.Wrap(err, "updating activity")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return activity.Activity{}, activity.ErrNotFound
	}
	return a, nil
}

func (repo activityRepository) DeleteActivity(ctx context.Context, id int64) error {
	res, err := exec(ctx, repo.db, psql.Delete("activities").Where(sq.Eq{"id": id}))
	if err != nil {
		return errors.Wrap(err, "deleting activity")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return activity.ErrNotFound
	}
	return nil
}

func (repo activityRepository) GetActivity(ctx context.Context, id int64) (activity.Activity, error) {
	var r activityRow
	b := psql.Select(activityColumns...).From("activities").Where(sq.Eq{"id": id})
	if err := get(ctx, repo.db, &r, b); err != nil {
		return activity.Activity{}, trapNoRowsErr(err, activity.ErrNotFound, "finding activity")
	}
	return r.activity()
}

func (repo activityRepository) QueryActivities(ctx context.Context, schoolID, date string) ([]activity.Activity, error) {
	var rows []activityRow
	b := psql.Select(activityColumns...).
		From("activities").
		Where(sq.Eq{"school_id": schoolID, "date": date}).
		OrderBy("id")
	if err := selectAll(ctx, repo.db, &rows, b); err != nil {
		return nil, errors.Wrap(err, "querying activities")
	}

	acts := make([]activity.Activity, 0, len(rows))
	for _, r := range rows {
		a, err := r.activity()
		if err != nil {
			return nil, err
		}
		acts = append(acts, a)
	}
	return acts, nil
}
