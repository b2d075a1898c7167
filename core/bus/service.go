package bus

import (
	"context"
	"net/mail"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/planitkids/fritids/core"
)

var (
	busStatusTag  = "busstatus"
	busStatusText = "status must be one of picked_up, arrived, departed or dropped_off"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(busStatusTag, func(fl validator.FieldLevel) bool {
		return IsValidStatus(Status(fl.Field().String()))
	})
	core.RegisterCustomTranslation(validate, translator, busStatusTag, busStatusText)
}

type (
	Repository interface {
		CreateBus(ctx context.Context, b Bus) (Bus, error)
		CreateStudent(ctx context.Context, st Student) (Student, error)
		GetBus(ctx context.Context, id int64) (Bus, error)
		// QueryBuses returns the buses driven by driverID, ordered by name.
		QueryBuses(ctx context.Context, driverID string) ([]Bus, error)
		GetStudent(ctx context.Context, id int64) (Student, error)
		// QueryStudents returns the students of busID, ordered by name.
		QueryStudents(ctx context.Context, busID int64) ([]Student, error)
		// StudentsByParent returns the students whose parent email is email.
		StudentsByParent(ctx context.Context, email string) ([]Student, error)
		CreateNotification(ctx context.Context, n Notification) (Notification, error)
		// LatestNotification returns the most recent notification of studentID.
		LatestNotification(ctx context.Context, studentID int64) (Notification, error)
		// DeleteNotificationsBefore deletes notifications created before t and returns how many were removed.
		DeleteNotificationsBefore(ctx context.Context, t time.Time) (int64, error)
	}

	Service struct {
		repo     Repository
		email    core.EmailService
		validate *validator.Validate
	}

	// StudentStatus is what a parent sees on their dashboard.
	StudentStatus struct {
		Student Student       `json:"student"`
		Latest  *Notification `json:"latest"`
	}
)

func NewService(repo Repository, email core.EmailService, validate *validator.Validate) *Service {
	return &Service{repo: repo, email: email, validate: validate}
}

// AddBus registers a bus driven by driverID.
func (svc *Service) AddBus(ctx context.Context, schoolID, name, driverID string) (Bus, error) {
	name = core.CleanString(name)
	if name == "" {
		return Bus{}, core.NewValidationError(nil, core.FieldError{Field: "name", Error: "this field is required"})
	}
	return svc.repo.CreateBus(ctx, Bus{Name: name, DriverID: driverID, SchoolID: schoolID})
}

// AddStudent puts a student on busID. A bus of another school than schoolID is not found.
func (svc *Service) AddStudent(ctx context.Context, schoolID string, busID int64, name, className, parentEmail string) (Student, error) {
	name = core.CleanString(name)
	if name == "" {
		return Student{}, core.NewValidationError(nil, core.FieldError{Field: "name", Error: "this field is required"})
	}
	b, err := svc.repo.GetBus(ctx, busID)
	if err != nil {
		return Student{}, err
	}
	if b.SchoolID != schoolID {
		return Student{}, ErrBusNotFound
	}
	return svc.repo.CreateStudent(ctx, Student{
		Name:        name,
		ClassName:   core.CleanString(className),
		BusID:       busID,
		ParentEmail: core.CleanString(parentEmail, true),
	})
}

func (svc *Service) BusesForDriver(ctx context.Context, driverID string) ([]Bus, error) {
	buses, err := svc.repo.QueryBuses(ctx, driverID)
	if err != nil {
		return nil, core.NewRemoteOperationError("could not load buses", err)
	}
	return buses, nil
}

// StudentsForBus returns the students of busID. Only the driver of the bus may list them.
func (svc *Service) StudentsForBus(ctx context.Context, driverID string, busID int64) ([]Student, error) {
	b, err := svc.repo.GetBus(ctx, busID)
	if err != nil {
		return nil, err
	}
	if b.DriverID != driverID {
		return nil, core.ErrPermissionDenied
	}
	students, err := svc.repo.QueryStudents(ctx, busID)
	if err != nil {
		return nil, core.NewRemoteOperationError("could not load students", err)
	}
	return students, nil
}

// PostStatus records a status change of a student of driverID's bus and notifies the parent.
func (svc *Service) PostStatus(ctx context.Context, driverID string, busID int64, nn NewNotification) (Notification, error) {
	if err := svc.validate.Struct(nn); err != nil {
		return Notification{}, err
	}

	b, err := svc.repo.GetBus(ctx, busID)
	if err != nil {
		return Notification{}, err
	}
	if b.DriverID != driverID {
		return Notification{}, core.ErrPermissionDenied
	}
	st, err := svc.repo.GetStudent(ctx, nn.StudentID)
	if err != nil {
		return Notification{}, err
	}
	if st.BusID != b.ID {
		return Notification{}, core.ErrPermissionDenied
	}

	n, err := svc.repo.CreateNotification(ctx, Notification{
		StudentID: st.ID,
		BusID:     b.ID,
		Status:    nn.Status,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Notification{}, core.NewRemoteOperationError("could not save the notification", err)
	}

	if st.ParentEmail != "" {
		svc.email.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Address: st.ParentEmail}},
			Subject:      st.Name + " has been " + n.Status.Label(),
			TemplateName: "bus_status",
			TemplateData: map[string]interface{}{
				"StudentName": st.Name,
				"StatusLabel": n.Status.Label(),
				"BusName":     b.Name,
				"Time":        n.CreatedAt.Format("15:04"),
			},
		})
	}
	return n, nil
}

// LatestStatus returns the latest notification of studentID, or nil when none was posted.
func (svc *Service) LatestStatus(ctx context.Context, studentID int64) (*Notification, error) {
	n, err := svc.repo.LatestNotification(ctx, studentID)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return nil, nil
		}
		return nil, core.NewRemoteOperationError("could not load the latest status", err)
	}
	return &n, nil
}

// ChildrenStatus returns the latest status of every student whose parent is parentEmail.
func (svc *Service) ChildrenStatus(ctx context.Context, parentEmail string) ([]StudentStatus, error) {
	students, err := svc.repo.StudentsByParent(ctx, core.CleanString(parentEmail, true))
	if err != nil {
		return nil, core.NewRemoteOperationError("could not load students", err)
	}
	res := make([]StudentStatus, 0, len(students))
	for _, st := range students {
		latest, err := svc.LatestStatus(ctx, st.ID)
		if err != nil {
			return nil, err
		}
		res = append(res, StudentStatus{Student: st, Latest: latest})
	}
	return res, nil
}

// PurgeBefore deletes the notifications older than t.
func (svc *Service) PurgeBefore(ctx context.Context, t time.Time) (int64, error) {
	n, err := svc.repo.DeleteNotificationsBefore(ctx, t)
	return n, errors.Wrap(err, "purging notifications")
}
