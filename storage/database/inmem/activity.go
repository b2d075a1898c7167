package inmemdb

import (
	"context"
	"sort"

	"github.com/planitkids/fritids/core/activity"
)

type activityRepository struct {
	db *DB
}

var _ activity.Repository = (*activityRepository)(nil)

func NewActivityRepository(db *DB) *activityRepository {
	return &activityRepository{db: db}
}

func copyActivity(a activity.Activity) activity.Activity {
	a.Photos = append([]activity.Photo{}, a.Photos...)
	a.AssignedStaff = append([]activity.StaffRef{}, a.AssignedStaff...)
	if a.RemoteID != nil {
		id := *a.RemoteID
		a.RemoteID = &id
	}
	return a
}

func (repo *activityRepository) CreateActivity(_ context.Context, a activity.Activity) (activity.Activity, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	id := repo.db.nextID()
	a.RemoteID = &id
	a.Saved = true
	a = copyActivity(a)
	repo.db.activities[id] = &a
	return copyActivity(a), nil
}

func (repo *activityRepository) UpdateActivity(_ context.Context, a activity.Activity) (activity.Activity, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if a.RemoteID == nil {
		return activity.Activity{}, activity.ErrNotFound
	}
	orig, ok := repo.db.activities[*a.RemoteID]
	if !ok {
		return activity.Activity{}, activity.ErrNotFound
	}
	a.CreatedAt = orig.CreatedAt
	a.Saved = true
	a = copyActivity(a)
	repo.db.activities[*a.RemoteID] = &a
	return copyActivity(a), nil
}

func (repo *activityRepository) DeleteActivity(_ context.Context, id int64) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.activities[id]; !ok {
		return activity.ErrNotFound
	}
	delete(repo.db.activities, id)
	return nil
}

func (repo *activityRepository) GetActivity(_ context.Context, id int64) (activity.Activity, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	a, ok := repo.db.activities[id]
	if !ok {
		return activity.Activity{}, activity.ErrNotFound
	}
	return copyActivity(*a), nil
}

func (repo *activityRepository) QueryActivities(_ context.Context, schoolID, date string) ([]activity.Activity, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	res := make([]activity.Activity, 0)
	for _, a := range repo.db.activities {
		if a.SchoolID == schoolID && a.Date == date {
			res = append(res, copyActivity(*a))
		}
	}
	sort.Slice(res, func(i, j int) bool { return *res[i].RemoteID < *res[j].RemoteID })
	return res, nil
}
