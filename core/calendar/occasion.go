package calendar

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/planitkids/fritids/core"
)

var ErrOccasionNotFound = errors.Wrap(core.ErrNotFound, "occasion")

type Occasion struct {
	ID          string    `json:"id"`
	SchoolID    string    `json:"school_id"`
	Date        string    `json:"date"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Images      []string  `json:"images"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewOccasion contains information needed to add an Occasion to the calendar.
type NewOccasion struct {
	Date        string   `json:"date" validate:"required,isodate"`
	Title       string   `json:"title" validate:"required,notblank"`
	Description string   `json:"description" validate:"required,notblank"`
	Images      []string `json:"images" validate:"omitempty,dive,required"`
}

func (no *NewOccasion) Validate(validate *validator.Validate) error {
	no.Date = core.CleanString(no.Date)
	no.Title = core.CleanString(no.Title)
	no.Description = core.CleanString(no.Description)
	return validate.Struct(no)
}

type (
	OccasionRepository interface {
		CreateOccasion(ctx context.Context, occ Occasion) (Occasion, error)
		GetOccasion(ctx context.Context, id string) (Occasion, error)
		// QueryOccasions returns the occasions of schoolID whose date is within [from, to].
		QueryOccasions(ctx context.Context, schoolID, from, to string) ([]Occasion, error)
		DeleteOccasion(ctx context.Context, id string) error
	}

	OccasionService struct {
		repo OccasionRepository
	}
)

func NewOccasionService(repo OccasionRepository) *OccasionService {
	return &OccasionService{repo: repo}
}

func (svc *OccasionService) Add(ctx context.Context, schoolID, createdBy string, no NewOccasion) (Occasion, error) {
	images := no.Images
	if images == nil {
		images = []string{}
	}
	occ := Occasion{
		ID:          uuid.New().String(),
		SchoolID:    schoolID,
		Date:        no.Date,
		Title:       no.Title,
		Description: no.Description,
		Images:      images,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC(),
	}
	occ, err := svc.repo.CreateOccasion(ctx, occ)
	if err != nil {
		return Occasion{}, core.NewRemoteOperationError("could not save the occasion", err)
	}
	return occ, nil
}

func (svc *OccasionService) Get(ctx context.Context, id string) (Occasion, error) {
	return svc.repo.GetOccasion(ctx, id)
}

func (svc *OccasionService) ForDay(ctx context.Context, schoolID, date string) ([]Occasion, error) {
	if !core.IsISODate(date) {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "date", Error: "date must be formatted as YYYY-MM-DD"})
	}
	return svc.query(ctx, schoolID, date, date)
}

// ForMonth returns the occasions of a YYYY-MM month.
func (svc *OccasionService) ForMonth(ctx context.Context, schoolID, month string) ([]Occasion, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "month", Error: "month must be formatted as YYYY-MM"})
	}
	end := start.AddDate(0, 1, -1)
	return svc.query(ctx, schoolID, FormatDate(start), FormatDate(end))
}

func (svc *OccasionService) ForWeek(ctx context.Context, schoolID string, w WeekWindow) ([]Occasion, error) {
	return svc.query(ctx, schoolID, FormatDate(w.Start()), FormatDate(w.End()))
}

func (svc *OccasionService) query(ctx context.Context, schoolID, from, to string) ([]Occasion, error) {
	occs, err := svc.repo.QueryOccasions(ctx, schoolID, from, to)
	if err != nil {
		return nil, core.NewRemoteOperationError("could not load occasions", err)
	}
	sort.SliceStable(occs, func(i, j int) bool {
		if occs[i].Date != occs[j].Date {
			return occs[i].Date < occs[j].Date
		}
		return occs[i].CreatedAt.Before(occs[j].CreatedAt)
	})
	return occs, nil
}

func (svc *OccasionService) Remove(ctx context.Context, id string) error {
	if err := svc.repo.DeleteOccasion(ctx, id); err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return err
		}
		return core.NewRemoteOperationError("could not remove the occasion", err)
	}
	return nil
}

// MarkedDates returns the distinct dates holding at least one occasion, sorted.
func MarkedDates(occs []Occasion) []string {
	seen := make(map[string]struct{}, len(occs))
	dates := make([]string, 0, len(occs))
	for _, o := range occs {
		if _, ok := seen[o.Date]; !ok {
			seen[o.Date] = struct{}{}
			dates = append(dates, o.Date)
		}
	}
	sort.Strings(dates)
	return dates
}

// InMonth reports whether date (YYYY-MM-DD) belongs to month (YYYY-MM).
func InMonth(date, month string) bool {
	return strings.HasPrefix(date, month+"-")
}
