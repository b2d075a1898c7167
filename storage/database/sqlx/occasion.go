package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/planitkids/fritids/core/calendar"
)

var occasionColumns = []string{"id", "school_id", "date", "title", "description", "images", "created_by", "created_at"}

type occasionRow struct {
	ID          string         `db:"id"`
	SchoolID    string         `db:"school_id"`
	Date        time.Time      `db:"date"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	Images      pq.StringArray `db:"images"`
	CreatedBy   null.String    `db:"created_by"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r occasionRow) occasion() calendar.Occasion {
	images := []string(r.Images)
	if images == nil {
		images = []string{}
	}
	return calendar.Occasion{
		ID:          r.ID,
		SchoolID:    r.SchoolID,
		Date:        calendar.FormatDate(r.Date),
		Title:       r.Title,
		Description: r.Description,
		Images:      images,
		CreatedBy:   r.CreatedBy.String,
		CreatedAt:   r.CreatedAt,
	}
}

type occasionRepository struct {
	db *sqlx.DB
}

var _ calendar.OccasionRepository = (*occasionRepository)(nil)

func NewOccasionRepository(db *sqlx.DB) *occasionRepository {
	return &occasionRepository{db: db}
}

func (repo occasionRepository) CreateOccasion(ctx context.Context, occ calendar.Occasion) (calendar.Occasion, error) {
	b := psql.Insert("occasions").Columns(occasionColumns...).Values(
		occ.ID, occ.SchoolID, occ.Date, occ.Title, occ.Description, pq.StringArray(occ.Images),
		null.NewString(occ.CreatedBy, occ.CreatedBy != ""), occ.CreatedAt.UTC(),
	)
	if _, err := exec(ctx, repo.db, b); err != nil {
		return calendar.Occasion{}, errors.Wrap(err, "inserting occasion")
	}
	return occ, nil
}

func (repo occasionRepository) GetOccasion(ctx context.Context, id string) (calendar.Occasion, error) {
	var r occasionRow
	b := psql.Select(occasionColumns...).From("occasions").Where(sq.Eq{"id": id})
	if err := get(ctx, repo.db, &r, b); err != nil {
		return calendar.Occasion{}, trapNoRowsErr(err, calendar.ErrOccasionNotFound, "finding occasion")
	}
	return r.occasion(), nil
}

func (repo occasionRepository) QueryOccasions(ctx context.Context, schoolID, from, to string) ([]calendar.Occasion, error) {
	var rows []occasionRow
	b := psql.Select(occasionColumns...).
		From("occasions").
		Where(sq.Eq{"school_id": schoolID}).
		Where(sq.GtOrEq{"date": from}).
		Where(sq.LtOrEq{"date": to}).
		OrderBy("date", "created_at")
	if err := selectAll(ctx, repo.db, &rows, b); err != nil {
		return nil, errors.Wrap(err, "querying occasions")
	}
	occs := make([]calendar.Occasion, 0, len(rows))
	for _, r := range rows {
		occs = append(occs, r.occasion())
	}
	return occs, nil
}

func (repo occasionRepository) DeleteOccasion(ctx context.Context, id string) error {
	res, err := exec(ctx, repo.db, psql.Delete("occasions").Where(sq.Eq{"id": id}))
	if err != nil {
		return errors.Wrap(err, "deleting occasion")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return calendar.ErrOccasionNotFound
	}
	return nil
}
