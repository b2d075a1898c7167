package activity

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/planitkids/fritids/core"
)

// PlaceholderPhotoURI is attached by Planner.AttachPlaceholder.
const PlaceholderPhotoURI = "https://via.placeholder.com/150"

var (
	// ErrPending is returned while a remote call on the same activity is outstanding.
	ErrPending      = errors.New("a request for this activity is already in progress")
	ErrNotConfirmed = errors.New("removal must be confirmed")
	ErrNotSaved     = errors.New("activity must be saved before it can be updated")
)

type (
	// RemoteStore persists activities.
	RemoteStore interface {
		Insert(ctx context.Context, a Activity) (int64, error)
		Update(ctx context.Context, a Activity) error
		Delete(ctx context.Context, id int64) error
	}

	// PhotoPicker is a source of photos, eg. the device library or an upload.
	PhotoPicker interface {
		RequestPermission(ctx context.Context) (bool, error)
		// Pick returns the URI of the selected photo; ok is false when nothing was selected.
		Pick(ctx context.Context) (uri string, ok bool, err error)
	}
)

// Planner is the ordered list of the activities of one school day.
// Each activity is identified by its local id, assigned at creation.
type Planner struct {
	mu       sync.Mutex
	remote   RemoteStore
	schoolID string
	date     string
	items    []*Activity
	pending  *inflight
}

// inflight is the set of activities with an outstanding remote call.
// Planners sharing one inflight set reject overlapping calls on the same activity.
type inflight struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newInflight() *inflight {
	return &inflight{keys: make(map[string]bool)}
}

func (f *inflight) acquire(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.keys[key] {
		return false
	}
	f.keys[key] = true
	return true
}

func (f *inflight) release(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.keys, key)
}

func (f *inflight) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keys[key]
}

// pendingKey identifies a persisted activity by its remote id so that every planner of its day agrees on it.
func (a Activity) pendingKey() string {
	if a.RemoteID != nil {
		return fmt.Sprintf("remote:%d", *a.RemoteID)
	}
	return "local:" + a.LocalID
}

func NewPlanner(remote RemoteStore, schoolID, date string) *Planner {
	return newPlanner(remote, schoolID, date, newInflight())
}

func newPlanner(remote RemoteStore, schoolID, date string, pending *inflight) *Planner {
	return &Planner{
		remote:   remote,
		schoolID: schoolID,
		date:     date,
		pending:  pending,
	}
}

// Load appends already persisted activities.
func (p *Planner) Load(acts ...Activity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, a := range acts {
		a := a.clone()
		if a.LocalID == "" {
			a.LocalID = uuid.New().String()
		}
		a.Saved = a.RemoteID != nil
		p.items = append(p.items, &a)
	}
}

func (p *Planner) Activities() []Activity {
	p.mu.Lock()
	defer p.mu.Unlock()
	res := make([]Activity, 0, len(p.items))
	for _, a := range p.items {
		res = append(res, a.clone())
	}
	return res
}

func (p *Planner) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

func (p *Planner) Get(id string) (Activity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, _, err := p.find(id)
	if err != nil {
		return Activity{}, err
	}
	return a.clone(), nil
}

// ByRemoteID returns the local id of the persisted activity remoteID.
func (p *Planner) ByRemoteID(remoteID int64) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, a := range p.items {
		if a.RemoteID != nil && *a.RemoteID == remoteID {
			return a.LocalID, true
		}
	}
	return "", false
}

func (p *Planner) find(id string) (*Activity, int, error) {
	for i, a := range p.items {
		if a.LocalID == id {
			return a, i, nil
		}
	}
	return nil, -1, ErrNotFound
}

// Add appends a new draft with the default type and empty fields.
func (p *Planner) Add() Activity {
	p.mu.Lock()
	defer p.mu.Unlock()
	a := &Activity{
		LocalID:       uuid.New().String(),
		SchoolID:      p.schoolID,
		Date:          p.date,
		Type:          DefaultType,
		Photos:        []Photo{},
		AssignedStaff: []StaffRef{},
	}
	p.items = append(p.items, a)
	return a.clone()
}

// UpdateField sets one field of an activity. Times go through HandleTimeChange.
func (p *Planner) UpdateField(id string, field Field, value string) (Activity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, _, err := p.find(id)
	if err != nil {
		return Activity{}, err
	}

	switch field {
	case FieldType:
		if !IsValidType(Type(value)) {
			return Activity{}, core.NewValidationError(nil, core.FieldError{Field: string(field), Error: activityTypeText})
		}
		a.Type = Type(value)
	case FieldFromTime:
		a.FromTime = HandleTimeChange(a.FromTime, value)
	case FieldToTime:
		a.ToTime = HandleTimeChange(a.ToTime, value)
	case FieldLocation:
		a.Location = value
	case FieldDescription:
		a.Description = value
	default:
		return Activity{}, ErrUnknownField
	}
	return a.clone(), nil
}

// begin marks id as pending and returns a snapshot of the activity.
func (p *Planner) begin(id string) (Activity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, _, err := p.find(id)
	if err != nil {
		return Activity{}, err
	}
	if !p.pending.acquire(a.pendingKey()) {
		return Activity{}, ErrPending
	}
	return a.clone(), nil
}

// end releases the activity marked pending by begin.
func (p *Planner) end(snap Activity) {
	p.pending.release(snap.pendingKey())
}

// Save persists a draft and stores the remote id. Saving a saved activity is a no-op.
// A draft missing its times or location is rejected without any change.
func (p *Planner) Save(ctx context.Context, id string) (Activity, error) {
	snap, err := p.begin(id)
	if err != nil {
		return Activity{}, err
	}
	if snap.Saved {
		p.mu.Lock()
		p.end(snap)
		p.mu.Unlock()
		return snap, nil
	}
	if flds := snap.missingFields(); len(flds) > 0 {
		p.mu.Lock()
		p.end(snap)
		p.mu.Unlock()
		return Activity{}, core.NewValidationError(nil, flds...)
	}

	remoteID, err := p.remote.Insert(ctx, snap)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.end(snap)
	if err != nil {
		return Activity{}, remoteErr("could not save the activity", err)
	}
	a, _, err := p.find(id)
	if err != nil {
		return Activity{}, err
	}
	a.RemoteID = &remoteID
	a.Saved = true
	return a.clone(), nil
}

// Update pushes the current state of a saved activity.
func (p *Planner) Update(ctx context.Context, id string) (Activity, error) {
	snap, err := p.begin(id)
	if err != nil {
		return Activity{}, err
	}
	if !snap.Saved || snap.RemoteID == nil {
		p.mu.Lock()
		p.end(snap)
		p.mu.Unlock()
		return Activity{}, core.NewValidationError(ErrNotSaved)
	}
	if flds := snap.missingFields(); len(flds) > 0 {
		p.mu.Lock()
		p.end(snap)
		p.mu.Unlock()
		return Activity{}, core.NewValidationError(nil, flds...)
	}

	err = p.remote.Update(ctx, snap)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.end(snap)
	if err != nil {
		return Activity{}, remoteErr("could not update the activity", err)
	}
	return snap, nil
}

// Remove deletes an activity once confirmed. Persisted activities are deleted remotely first
// and the local entry is only dropped on success.
func (p *Planner) Remove(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	snap, err := p.begin(id)
	if err != nil {
		return err
	}

	if snap.RemoteID != nil {
		err = p.remote.Delete(ctx, *snap.RemoteID)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.end(snap)
	if err != nil {
		return remoteErr("could not delete the activity", err)
	}
	if _, idx, err := p.find(id); err == nil {
		p.items = append(p.items[:idx:idx], p.items[idx+1:]...)
	}
	return nil
}

// AttachPhoto appends the photo selected through picker.
// A refused permission aborts with core.ErrPermissionDenied; an empty selection changes nothing.
func (p *Planner) AttachPhoto(ctx context.Context, id string, picker PhotoPicker) (Activity, error) {
	if _, err := p.Get(id); err != nil {
		return Activity{}, err
	}
	granted, err := picker.RequestPermission(ctx)
	if err != nil {
		return Activity{}, errors.Wrap(err, "requesting photo permission")
	}
	if !granted {
		return Activity{}, core.ErrPermissionDenied
	}
	uri, ok, err := picker.Pick(ctx)
	if err != nil {
		return Activity{}, errors.Wrap(err, "picking photo")
	}
	if !ok {
		return p.Get(id)
	}
	return p.attach(id, uri)
}

func (p *Planner) AttachPlaceholder(id string) (Activity, error) {
	return p.attach(id, PlaceholderPhotoURI)
}

func (p *Planner) attach(id, uri string) (Activity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, _, err := p.find(id)
	if err != nil {
		return Activity{}, err
	}
	a.Photos = append(a.Photos, Photo{ID: uuid.New().String(), URI: uri})
	return a.clone(), nil
}

func (p *Planner) RemovePhoto(id, photoID string) (Activity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, _, err := p.find(id)
	if err != nil {
		return Activity{}, err
	}
	for i, ph := range a.Photos {
		if ph.ID == photoID {
			a.Photos = append(a.Photos[:i:i], a.Photos[i+1:]...)
			return a.clone(), nil
		}
	}
	return Activity{}, errors.Wrap(core.ErrNotFound, "photo")
}

// AssignStaff appends ref unless a staff member with the same id is already assigned.
func (p *Planner) AssignStaff(id string, ref StaffRef) (Activity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, _, err := p.find(id)
	if err != nil {
		return Activity{}, err
	}
	for _, s := range a.AssignedStaff {
		if s.ID == ref.ID {
			return a.clone(), nil
		}
	}
	a.AssignedStaff = append(a.AssignedStaff, ref)
	return a.clone(), nil
}

func (p *Planner) UnassignStaff(id, staffID string) (Activity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, _, err := p.find(id)
	if err != nil {
		return Activity{}, err
	}
	staff := make([]StaffRef, 0, len(a.AssignedStaff))
	for _, s := range a.AssignedStaff {
		if s.ID != staffID {
			staff = append(staff, s)
		}
	}
	a.AssignedStaff = staff
	return a.clone(), nil
}

// remoteErr keeps validation and not-found errors as they are and reports anything else as a remote failure.
func remoteErr(msg string, err error) error {
	if _, ok := errors.Cause(err).(validator.ValidationErrors); ok {
		return err
	}
	switch {
	case core.IsValidationError(err), core.IsRemoteOperationError(err), errors.Cause(err) == core.ErrNotFound:
		return err
	}
	return core.NewRemoteOperationError(msg, err)
}
