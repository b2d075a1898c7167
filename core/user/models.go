package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/planitkids/fritids/core"
)

// Roles
const (
	RoleAdmin = "admin"

	// Staff
	RoleTeamLead   = "fritidsledare"
	RoleStaff      = "fritidspersonal"
	RoleSubstitute = "vikarie"

	RoleBusDriver = "busschauffor"
	RoleParent    = "parent"
)

var (
	StaffRoles = []string{RoleTeamLead, RoleStaff, RoleSubstitute}
	// DailyRoles can be switched by the user at the start of the day.
	DailyRoles = []string{RoleTeamLead, RoleStaff}
	AllRoles   = []string{RoleAdmin, RoleTeamLead, RoleStaff, RoleSubstitute, RoleBusDriver, RoleParent}

	rolePriorities = map[string]int{
		RoleAdmin: 40,

		// Staff: 30 - 11
		RoleTeamLead:   30,
		RoleStaff:      20,
		RoleSubstitute: 11,

		RoleBusDriver: 10,
		RoleParent:    1,
	}

	Roles = []Role{
		{Name: "Fritidsledare", Value: RoleTeamLead},
		{Name: "Fritidspersonal", Value: RoleStaff},
		{Name: "Vikarie", Value: RoleSubstitute},
		{Name: "Busschaufför", Value: RoleBusDriver},
		{Name: "Parent", Value: RoleParent},
		{Name: "Admin", Value: RoleAdmin},
	}
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

func IsDailyRole(role string) bool {
	for _, r := range DailyRoles {
		if r == role {
			return true
		}
	}
	return false
}

func IsValidRole(role string) bool {
	_, ok := rolePriorities[role]
	return ok
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	SchoolID     string    `json:"school_id"`
	IsActive     bool      `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u *User) IsStaff() bool {
	for _, r := range StaffRoles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Role            string `json:"role" validate:"required,role"`
	SchoolID        string `json:"school_id"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	nu.SchoolID = core.CleanString(nu.SchoolID)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name            string `json:"name"`
	Email           string `json:"email" validate:"omitempty,email"`
	Role            string `json:"role" validate:"omitempty,role"`
	SchoolID        string `json:"school_id"`
	IsActive        *bool  `json:"is_active"`
	Password        string `json:"password" validate:"omitempty"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(ctx context.Context, origUsr User, validate *validator.Validate, svc *Service) error {
	if name := core.CleanString(uu.Name); name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}
	if email := core.CleanString(uu.Email, true /* lower */); email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}
	if role := core.CleanString(uu.Role, true /* lower */); role != "" {
		uu.Role = role
	} else {
		uu.Role = origUsr.Role
	}
	if schoolID := core.CleanString(uu.SchoolID); schoolID != "" {
		uu.SchoolID = schoolID
	} else {
		uu.SchoolID = origUsr.SchoolID
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, uu.Email, origUsr)
}

// DailyRole is sent by staff when picking their role for the day.
type DailyRole struct {
	Role string `json:"role" validate:"required,dailyrole"`
}

func (dr *DailyRole) Validate(validate *validator.Validate) error {
	dr.Role = core.CleanString(dr.Role, true /* lower */)
	return validate.Struct(dr)
}

type GetFilter struct {
	ID    string
	Email string
}

type QueryFilter struct {
	Search   string   `query:"search"`
	Roles    []string `query:"role"`
	SchoolID string   `query:"school_id"`
	IsActive *bool    `query:"is_active"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.SchoolID == "" && qf.IsActive == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.SchoolID = core.CleanString(qf.SchoolID)
}
