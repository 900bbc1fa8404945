package profileRepo

import (
	"context"
	"sync"
	"testing"
	"time"

	"fashionstudio/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func seed(t *testing.T, repo *MemoryProfileRepo, uid string, credits int64) {
	t.Helper()
	now := time.Now()
	require.NoError(t, repo.Create(context.Background(), &models.UserProfile{
		ID:                   uid,
		RemainingGenerations: credits,
		CreatedAt:            now,
		LastLoginAt:          now,
	}))
}

func TestMemoryCreateRejectsDuplicate(t *testing.T) {
	repo := NewMemoryProfileRepo()
	seed(t, repo, "u1", 2)

	err := repo.Create(context.Background(), &models.UserProfile{ID: "u1"})
	assert.ErrorIs(t, err, ErrProfileExists)
}

func TestMemorySpendStopsAtZero(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProfileRepo()
	seed(t, repo, "u1", 1)

	p, err := repo.SpendCredit(ctx, "u1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.RemainingGenerations)
	assert.Equal(t, int64(1), p.TotalGenerations)
	require.NotNil(t, p.LastGeneratedAt)

	_, err = repo.SpendCredit(ctx, "u1", time.Now())
	assert.ErrorIs(t, err, ErrInsufficientCredits)

	p, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.RemainingGenerations)
	assert.Equal(t, int64(1), p.TotalGenerations)
}

func TestMemoryConcurrentSpendNeverTears(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProfileRepo()
	seed(t, repo, "u1", 5)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.SpendCredit(ctx, "u1", time.Now()); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := repo.Get(ctx, "u1")
			if assert.NoError(t, err) {
				assert.Equal(t, int64(5), p.RemainingGenerations+p.TotalGenerations)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	p, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.RemainingGenerations)
	assert.Equal(t, int64(5), p.TotalGenerations)
}

func TestMemoryTouchLoginKeepsCredits(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProfileRepo()
	seed(t, repo, "u1", 2)

	later := time.Now().Add(time.Hour)
	p, err := repo.TouchLogin(ctx, "u1", later)
	require.NoError(t, err)
	assert.True(t, p.LastLoginAt.Equal(later))
	assert.Equal(t, int64(2), p.RemainingGenerations)

	_, err = repo.TouchLogin(ctx, "missing", later)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestMemoryUpdateDetails(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProfileRepo()
	seed(t, repo, "u1", 2)

	name := "Ada"
	p, err := repo.UpdateDetails(ctx, "u1", models.ProfileUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.Name)
	assert.Equal(t, int64(2), p.RemainingGenerations)
}

func TestSpendFilterRequiresPositiveBalance(t *testing.T) {
	filter := spendFilter("u1")
	assert.Equal(t, "u1", filter["_id"])
	assert.Equal(t, bson.M{"$gt": 0}, filter["remainingGenerations"])
}

func TestSpendUpdateTouchesBothCounters(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	update := spendUpdate(at)

	assert.Equal(t, bson.M{"remainingGenerations": -1, "totalGenerations": 1}, update["$inc"])
	assert.Equal(t, bson.M{"lastGeneratedAt": at}, update["$set"])
}

func TestDetailsUpdateNeverTouchesCredits(t *testing.T) {
	assert.Nil(t, detailsUpdate(models.ProfileUpdate{}))

	email := "a@b.co"
	update := detailsUpdate(models.ProfileUpdate{Email: &email})
	assert.Equal(t, bson.M{"$set": bson.M{"email": "a@b.co"}}, update)
}
