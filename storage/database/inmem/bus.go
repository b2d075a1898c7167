package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/planitkids/fritids/core/bus"
)

type busRepository struct {
	db *DB
}

var _ bus.Repository = (*busRepository)(nil)

func NewBusRepository(db *DB) *busRepository {
	return &busRepository{db: db}
}

func (repo *busRepository) CreateBus(_ context.Context, b bus.Bus) (bus.Bus, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	b.ID = repo.db.nextID()
	repo.db.buses[b.ID] = &b
	return b, nil
}

func (repo *busRepository) CreateStudent(_ context.Context, st bus.Student) (bus.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	st.ID = repo.db.nextID()
	repo.db.students[st.ID] = &st
	return st, nil
}

func (repo *busRepository) GetBus(_ context.Context, id int64) (bus.Bus, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	b, ok := repo.db.buses[id]
	if !ok {
		return bus.Bus{}, bus.ErrBusNotFound
	}
	return *b, nil
}

func (repo *busRepository) QueryBuses(_ context.Context, driverID string) ([]bus.Bus, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	res := make([]bus.Bus, 0)
	for _, b := range repo.db.buses {
		if b.DriverID == driverID {
			res = append(res, *b)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (repo *busRepository) GetStudent(_ context.Context, id int64) (bus.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	st, ok := repo.db.students[id]
	if !ok {
		return bus.Student{}, bus.ErrStudentNotFound
	}
	return *st, nil
}

func (repo *busRepository) QueryStudents(_ context.Context, busID int64) ([]bus.Student, error) {
	return repo.students(func(st *bus.Student) bool { return st.BusID == busID }), nil
}

func (repo *busRepository) StudentsByParent(_ context.Context, email string) ([]bus.Student, error) {
	return repo.students(func(st *bus.Student) bool { return st.ParentEmail == email }), nil
}

func (repo *busRepository) students(keep func(*bus.Student) bool) []bus.Student {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	res := make([]bus.Student, 0)
	for _, st := range repo.db.students {
		if keep(st) {
			res = append(res, *st)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res
}

func (repo *busRepository) CreateNotification(_ context.Context, n bus.Notification) (bus.Notification, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	n.ID = repo.db.nextID()
	repo.db.notifications[n.ID] = &n
	return n, nil
}

func (repo *busRepository) LatestNotification(_ context.Context, studentID int64) (bus.Notification, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var latest *bus.Notification
	for _, n := range repo.db.notifications {
		if n.StudentID != studentID {
			continue
		}
		if latest == nil || n.CreatedAt.After(latest.CreatedAt) ||
			(n.CreatedAt.Equal(latest.CreatedAt) && n.ID > latest.ID) {
			latest = n
		}
	}
	if latest == nil {
		return bus.Notification{}, bus.ErrNotificationNotFound
	}
	return *latest, nil
}

func (repo *busRepository) DeleteNotificationsBefore(_ context.Context, t time.Time) (int64, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var cnt int64
	for id, n := range repo.db.notifications {
		if n.CreatedAt.Before(t) {
			delete(repo.db.notifications, id)
			cnt++
		}
	}
	return cnt, nil
}
