package unitofwork_test

import (
	"context"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ai-studio-be/internal/entity"
	"ai-studio-be/internal/model"
	"ai-studio-be/internal/repository/specification"
	"ai-studio-be/internal/repository/unitofwork"
	"ai-studio-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFactory(t *testing.T) unitofwork.RepositoryFactory {
	t.Helper()

	if err := godotenv.Load("../../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err)
	require.NoError(t, model.Migrate(db))

	return unitofwork.NewRepositoryFactory(db)
}

func seedUser(t *testing.T, uow unitofwork.UnitOfWork, daily, monthly int) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	user := &entity.User{
		Id:    uuid.New(),
		Email: "it-" + uuid.NewString() + "@example.com",
		Name:  "Integration User",
	}
	require.NoError(t, uow.UserRepository().Upsert(ctx, user))

	now := time.Now()
	require.NoError(t, uow.QuotaRepository().CreateDefaults(ctx, []*entity.Quota{{
		UserId:         user.Id,
		GenerationType: entity.GenerationTypeImage,
		DailyLimit:     daily,
		MonthlyLimit:   monthly,
		LastReset:      now,
		MonthlyReset:   now,
	}}))
	return user.Id
}

func TestQuotaRepositoryIntegration(t *testing.T) {
	factory := setupFactory(t)
	ctx := context.Background()
	uow := factory.NewUnitOfWork(ctx)
	repo := uow.QuotaRepository()

	userId := seedUser(t, uow, 2, 3)
	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.ByGenerationType{Type: entity.GenerationTypeImage},
	}

	t.Run("defaults are not overwritten", func(t *testing.T) {
		now := time.Now()
		err := repo.CreateDefaults(ctx, []*entity.Quota{{
			UserId: userId, GenerationType: entity.GenerationTypeImage,
			DailyLimit: 99, MonthlyLimit: 99, LastReset: now, MonthlyReset: now,
		}})
		require.NoError(t, err)

		q, err := repo.FindOne(ctx, specs...)
		require.NoError(t, err)
		assert.Equal(t, 2, q.DailyLimit)
	})

	t.Run("increment if available stops at the limit", func(t *testing.T) {
		ok, err := repo.IncrementIfAvailable(ctx, userId, entity.GenerationTypeImage)
		require.NoError(t, err)
		assert.True(t, ok)
		ok, _ = repo.IncrementIfAvailable(ctx, userId, entity.GenerationTypeImage)
		assert.True(t, ok)
		ok, _ = repo.IncrementIfAvailable(ctx, userId, entity.GenerationTypeImage)
		assert.False(t, ok)

		q, _ := repo.FindOne(ctx, specs...)
		assert.Equal(t, 2, q.DailyUsed)
	})

	t.Run("reset is conditional", func(t *testing.T) {
		q, _ := repo.FindOne(ctx, specs...)
		now := time.Now()

		done, err := repo.ResetDaily(ctx, q.Id, q.LastReset.Add(-time.Hour), now)
		require.NoError(t, err)
		assert.False(t, done, "window not stale yet")

		done, err = repo.ResetDaily(ctx, q.Id, q.LastReset, now)
		require.NoError(t, err)
		assert.True(t, done)

		q, _ = repo.FindOne(ctx, specs...)
		assert.Equal(t, 0, q.DailyUsed)
		assert.Equal(t, 2, q.MonthlyUsed)
	})

	t.Run("decrement floors at zero", func(t *testing.T) {
		q, _ := repo.FindOne(ctx, specs...)
		require.NoError(t, repo.Decrement(ctx, q.Reservation()))
		require.NoError(t, repo.Decrement(ctx, q.Reservation()))
		q, _ = repo.FindOne(ctx, specs...)
		assert.Equal(t, 0, q.DailyUsed)
		assert.Equal(t, 0, q.MonthlyUsed)
	})

	t.Run("decrement skips a window reset since the reservation", func(t *testing.T) {
		ok, err := repo.IncrementIfAvailable(ctx, userId, entity.GenerationTypeImage)
		require.NoError(t, err)
		require.True(t, ok)

		q, _ := repo.FindOne(ctx, specs...)
		stale := q.Reservation()

		done, err := repo.ResetDaily(ctx, q.Id, q.LastReset, time.Now())
		require.NoError(t, err)
		require.True(t, done)
		ok, _ = repo.IncrementIfAvailable(ctx, userId, entity.GenerationTypeImage)
		require.True(t, ok)

		require.NoError(t, repo.Decrement(ctx, stale))
		q, _ = repo.FindOne(ctx, specs...)
		assert.Equal(t, 1, q.DailyUsed)
		assert.Equal(t, 1, q.MonthlyUsed)
	})
}

func TestConcurrentIncrementIfAvailableIntegration(t *testing.T) {
	factory := setupFactory(t)
	ctx := context.Background()
	userId := seedUser(t, factory.NewUnitOfWork(ctx), 5, 100)

	var admitted int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := factory.NewUnitOfWork(ctx).QuotaRepository().IncrementIfAvailable(ctx, userId, entity.GenerationTypeImage)
			if err == nil && ok {
				atomic.AddInt64(&admitted, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(5), admitted)
}

func TestUsageAndGenerationIntegration(t *testing.T) {
	factory := setupFactory(t)
	ctx := context.Background()
	uow := factory.NewUnitOfWork(ctx)
	userId := seedUser(t, uow, 10, 250)

	cost := 0.039
	for _, status := range []entity.GenerationStatus{entity.GenerationStatusSuccess, entity.GenerationStatusSuccess, entity.GenerationStatusFailed} {
		g := &entity.Generation{
			UserId: userId,
			Type:   entity.GenerationTypeImage,
			Prompt: "integration prompt",
			Status: status,
			Cost:   &cost,
		}
		require.NoError(t, uow.GenerationRepository().Create(ctx, g))
		assert.NotEqual(t, uuid.Nil, g.Id)
	}

	total, err := uow.GenerationRepository().SumCost(ctx, userId)
	require.NoError(t, err)
	assert.InDelta(t, 0.117, total, 1e-6)

	daily, err := uow.GenerationRepository().DailyCounts(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByStatus{Status: entity.GenerationStatusSuccess},
		specification.CreatedSince{Since: time.Now().Add(-24 * time.Hour)},
	)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, 2, daily[0].Count)

	now := time.Now()
	require.NoError(t, uow.UserUsageRepository().Increment(ctx, userId, entity.GenerationTypeImage, now))
	require.NoError(t, uow.UserUsageRepository().Increment(ctx, userId, entity.GenerationTypeImage, now))

	rows, err := uow.UserUsageRepository().FindAll(ctx, specification.UserOwnedBy{UserID: userId})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Count)

	require.NoError(t, uow.AuditLogRepository().Create(ctx, &entity.AuditLog{
		UserId: &userId,
		Action: "CHECK_QUOTA",
		Input:  "{}",
		Status: "SUCCESS",
	}))
}
