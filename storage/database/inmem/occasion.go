package inmemdb

import (
	"context"

	"github.com/planitkids/fritids/core/calendar"
)

type occasionRepository struct {
	db *DB
}

var _ calendar.OccasionRepository = (*occasionRepository)(nil)

func NewOccasionRepository(db *DB) *occasionRepository {
	return &occasionRepository{db: db}
}

func (repo *occasionRepository) CreateOccasion(_ context.Context, occ calendar.Occasion) (calendar.Occasion, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	occ.Images = append([]string{}, occ.Images...)
	repo.db.occasions[occ.ID] = &occ
	return occ, nil
}

func (repo *occasionRepository) GetOccasion(_ context.Context, id string) (calendar.Occasion, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	occ, ok := repo.db.occasions[id]
	if !ok {
		return calendar.Occasion{}, calendar.ErrOccasionNotFound
	}
	return *occ, nil
}

func (repo *occasionRepository) QueryOccasions(_ context.Context, schoolID, from, to string) ([]calendar.Occasion, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	res := make([]calendar.Occasion, 0)
	for _, occ := range repo.db.occasions {
		// ISO dates order lexically
		if occ.SchoolID == schoolID && occ.Date >= from && occ.Date <= to {
			res = append(res, *occ)
		}
	}
	return res, nil
}

func (repo *occasionRepository) DeleteOccasion(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.occasions[id]; !ok {
		return calendar.ErrOccasionNotFound
	}
	delete(repo.db.occasions, id)
	return nil
}
