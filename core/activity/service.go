package activity

import (
	"context"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/planitkids/fritids/core"
)

var (
	activityTypeTag  = "activitytype"
	activityTypeText = "type must be one of Pyssel, Utomhus, Film, Tema Arbete or Bakning"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(activityTypeTag, func(fl validator.FieldLevel) bool {
		return IsValidType(Type(fl.Field().String()))
	})
	core.RegisterCustomTranslation(validate, translator, activityTypeTag, activityTypeText)
}

type (
	Repository interface {
		CreateActivity(ctx context.Context, a Activity) (Activity, error)
		UpdateActivity(ctx context.Context, a Activity) (Activity, error)
		DeleteActivity(ctx context.Context, id int64) error
		GetActivity(ctx context.Context, id int64) (Activity, error)
		// QueryActivities returns the activities of schoolID on date, oldest first.
		QueryActivities(ctx context.Context, schoolID, date string) ([]Activity, error)
	}

	// Service is the RemoteStore backing a Planner.
	Service struct {
		repo     Repository
		validate *validator.Validate
		pending  *inflight // shared by every planner of PlannerFor
	}
)

var _ RemoteStore = (*Service)(nil)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate, pending: newInflight()}
}

func (svc *Service) Insert(ctx context.Context, a Activity) (int64, error) {
	if err := svc.validate.Struct(a); err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	a, err := svc.repo.CreateActivity(ctx, a)
	if err != nil {
		return 0, errors.Wrap(err, "creating activity")
	}
	if a.RemoteID == nil {
		return 0, errors.New("no id returned for the new activity")
	}
	return *a.RemoteID, nil
}

func (svc *Service) Update(ctx context.Context, a Activity) error {
	if a.RemoteID == nil {
		return ErrNotSaved
	}
	if err := svc.validate.Struct(a); err != nil {
		return err
	}
	a.UpdatedAt = time.Now().UTC()
	_, err := svc.repo.UpdateActivity(ctx, a)
	return errors.Wrap(err, "updating activity")
}

func (svc *Service) Delete(ctx context.Context, id int64) error {
	return errors.Wrap(svc.repo.DeleteActivity(ctx, id), "deleting activity")
}

func (svc *Service) Get(ctx context.Context, id int64) (Activity, error) {
	return svc.repo.GetActivity(ctx, id)
}

func (svc *Service) ListByDay(ctx context.Context, schoolID, date string) ([]Activity, error) {
	if !core.IsISODate(date) {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "date", Error: "date must be formatted as YYYY-MM-DD"})
	}
	acts, err := svc.repo.QueryActivities(ctx, schoolID, date)
	if err != nil {
		return nil, core.NewRemoteOperationError("could not load activities", err)
	}
	return acts, nil
}

// PlannerFor loads the planner of schoolID on date.
// Planners of the same Service reject overlapping Save, Update and Remove calls on one activity with ErrPending.
func (svc *Service) PlannerFor(ctx context.Context, schoolID, date string) (*Planner, error) {
	acts, err := svc.ListByDay(ctx, schoolID, date)
	if err != nil {
		return nil, err
	}
	p := newPlanner(svc, schoolID, date, svc.pending)
	p.Load(acts...)
	return p, nil
}
