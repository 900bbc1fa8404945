package profileRepo

import (
	"context"
	"sync"
	"time"

	"fashionstudio/models"
)

// MemoryProfileRepo keeps profiles in process memory. Used for local runs and tests.
type MemoryProfileRepo struct {
	mu       sync.RWMutex
	profiles map[string]models.UserProfile
}

// NewMemoryProfileRepo creates an empty in-memory ProfileRepository.
func NewMemoryProfileRepo() *MemoryProfileRepo {
	return &MemoryProfileRepo{profiles: make(map[string]models.UserProfile)}
}

func clone(p models.UserProfile) *models.UserProfile {
	if p.LastGeneratedAt != nil {
		t := *p.LastGeneratedAt
		p.LastGeneratedAt = &t
	}
	return &p
}

func (r *MemoryProfileRepo) Get(_ context.Context, uid string) (*models.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[uid]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return clone(p), nil
}

func (r *MemoryProfileRepo) Create(_ context.Context, profile *models.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[profile.ID]; ok {
		return ErrProfileExists
	}
	r.profiles[profile.ID] = *clone(*profile)
	return nil
}

func (r *MemoryProfileRepo) TouchLogin(_ context.Context, uid string, at time.Time) (*models.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[uid]
	if !ok {
		return nil, ErrProfileNotFound
	}
	p.LastLoginAt = at
	r.profiles[uid] = p
	return clone(p), nil
}

func (r *MemoryProfileRepo) SpendCredit(_ context.Context, uid string, at time.Time) (*models.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[uid]
	if !ok {
		return nil, ErrProfileNotFound
	}
	if p.RemainingGenerations <= 0 {
		return nil, ErrInsufficientCredits
	}
	p.RemainingGenerations--
	p.TotalGenerations++
	p.LastGeneratedAt = &at
	r.profiles[uid] = p
	return clone(p), nil
}

func (r *MemoryProfileRepo) UpdateDetails(_ context.Context, uid string, update models.ProfileUpdate) (*models.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[uid]
	if !ok {
		return nil, ErrProfileNotFound
	}
	if update.Name != nil {
		p.Name = *update.Name
	}
	if update.Email != nil {
		p.Email = *update.Email
	}
	r.profiles[uid] = p
	return clone(p), nil
}
