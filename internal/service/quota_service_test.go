package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ai-studio-be/internal/config"
	"ai-studio-be/internal/constant"
	"ai-studio-be/internal/dto"
	"ai-studio-be/internal/entity"
	"ai-studio-be/internal/pkg/logger"
	"ai-studio-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFreeTier = FreeTier(config.QuotaConfig{
	Image: config.Limits{Daily: 10, Monthly: 250},
	Video: config.Limits{Daily: 2, Monthly: 20},
	Music: config.Limits{Daily: 3, Monthly: 30},
})

type harness struct {
	store   *memStore
	clock   *fakeClock
	bus     *recordingBus
	account IAccountService
	quota   IQuotaService
	usage   IUsageService
	audit   IAuditService
}

func newHarness() *harness {
	store := newMemStore()
	factory := &memFactory{store: store}
	clk := newFakeClock()
	bus := &recordingBus{}
	log := logger.NewNopLogger()

	return &harness{
		store:   store,
		clock:   clk,
		bus:     bus,
		account: NewAccountService(factory, testFreeTier, bus, log, clk.Now),
		quota:   NewQuotaService(factory, bus, log, clk.Now),
		usage:   NewUsageService(factory, bus, log, clk.Now),
		audit:   NewAuditService(factory, log),
	}
}

func (h *harness) newUser(t *testing.T) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := h.account.EnsureUser(context.Background(), entity.Identity{
		Id:    id,
		Email: id.String() + "@example.com",
		Name:  "Test User",
	})
	require.NoError(t, err)
	return id
}

func (h *harness) recordSuccess(t *testing.T, userId uuid.UUID, generationType entity.GenerationType) {
	t.Helper()
	cost := 0.039
	_, err := h.usage.Record(context.Background(), dto.RecordGenerationParams{
		UserId: userId,
		Type:   generationType,
		Prompt: "a lighthouse at dusk",
		Status: entity.GenerationStatusSuccess,
		Cost:   &cost,
	})
	require.NoError(t, err)
}

func TestEvaluateNewUserThenDailyLimit(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	userId := h.newUser(t)

	res := h.quota.Evaluate(ctx, userId, entity.GenerationTypeImage)
	assert.True(t, res.CanGenerate)
	assert.Equal(t, 10, res.DailyRemaining)
	assert.Equal(t, 250, res.MonthlyRemaining)
	assert.Empty(t, res.LimitType)

	for i := 0; i < 10; i++ {
		h.recordSuccess(t, userId, entity.GenerationTypeImage)
	}

	res = h.quota.Evaluate(ctx, userId, entity.GenerationTypeImage)
	assert.False(t, res.CanGenerate)
	assert.Equal(t, "Daily limit reached (10/10)", res.Reason)
	assert.Equal(t, constant.LimitTypeDaily, res.LimitType)
	assert.Equal(t, 0, res.DailyRemaining)
	assert.Equal(t, 240, res.MonthlyRemaining)
	require.NotNil(t, res.ResetsAt)
	assert.Equal(t, h.clock.Now().Add(24*time.Hour), *res.ResetsAt)

	// Other types are independent.
	assert.True(t, h.quota.Evaluate(ctx, userId, entity.GenerationTypeVideo).CanGenerate)
}

func TestEvaluateResetsStaleDailyWindow(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	userId := h.newUser(t)

	h.store.updateQuota(userId, entity.GenerationTypeImage, func(q *entity.Quota) {
		q.DailyUsed = 10
		q.MonthlyUsed = 10
	})

	h.clock.Advance(23 * time.Hour)
	assert.False(t, h.quota.Evaluate(ctx, userId, entity.GenerationTypeImage).CanGenerate)
	assert.Equal(t, 0, h.bus.count(events.QuotaReset))

	h.clock.Advance(2 * time.Hour)
	res := h.quota.Evaluate(ctx, userId, entity.GenerationTypeImage)
	assert.True(t, res.CanGenerate)
	assert.Equal(t, 10, res.DailyRemaining)

	q := h.store.quota(userId, entity.GenerationTypeImage)
	assert.Equal(t, 0, q.DailyUsed)
	assert.Equal(t, 10, q.MonthlyUsed, "monthly usage survives a daily reset")
	assert.Equal(t, h.clock.Now(), q.LastReset)
	assert.Equal(t, 1, h.bus.count(events.QuotaReset))

	// A second read in the same window does not reset again.
	h.quota.Evaluate(ctx, userId, entity.GenerationTypeImage)
	assert.Equal(t, 1, h.bus.count(events.QuotaReset))
}

func TestEvaluateMonthlyLimitAndReset(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	userId := h.newUser(t)

	h.store.updateQuota(userId, entity.GenerationTypeMusic, func(q *entity.Quota) {
		q.MonthlyUsed = 30
	})

	res := h.quota.Evaluate(ctx, userId, entity.GenerationTypeMusic)
	assert.False(t, res.CanGenerate)
	assert.Equal(t, "Monthly limit reached (30/30)", res.Reason)
	assert.Equal(t, constant.LimitTypeMonthly, res.LimitType)
	assert.Equal(t, 3, res.DailyRemaining)

	h.clock.Advance(30 * 24 * time.Hour)
	res = h.quota.Evaluate(ctx, userId, entity.GenerationTypeMusic)
	assert.True(t, res.CanGenerate)
	assert.Equal(t, 30, res.MonthlyRemaining)
	assert.Equal(t, 2, h.bus.count(events.QuotaReset))
}

func TestEvaluateDailyCheckedBeforeMonthly(t *testing.T) {
	h := newHarness()
	userId := h.newUser(t)
	h.store.updateQuota(userId, entity.GenerationTypeVideo, func(q *entity.Quota) {
		q.DailyUsed = 2
		q.MonthlyUsed = 20
	})

	res := h.quota.Evaluate(context.Background(), userId, entity.GenerationTypeVideo)
	assert.Equal(t, "Daily limit reached (2/2)", res.Reason)
}

func TestEvaluateNotConfigured(t *testing.T) {
	h := newHarness()
	res := h.quota.Evaluate(context.Background(), uuid.New(), entity.GenerationTypeImage)
	assert.False(t, res.CanGenerate)
	assert.Equal(t, constant.LimitTypeNotConfigured, res.LimitType)
	assert.Equal(t, "No quota configured for user and generation type", res.Reason)
}

func TestEvaluateFailsClosed(t *testing.T) {
	h := newHarness()
	userId := h.newUser(t)
	h.store.failQuotaReads = true

	res := h.quota.Evaluate(context.Background(), userId, entity.GenerationTypeImage)
	assert.False(t, res.CanGenerate)
	assert.Equal(t, constant.LimitTypeError, res.LimitType)
	assert.Equal(t, "Error checking quota", res.Reason)

	res = h.quota.Reserve(context.Background(), userId, entity.GenerationTypeImage)
	assert.False(t, res.CanGenerate)
	assert.Equal(t, constant.LimitTypeError, res.LimitType)
}

func TestReserveAndRelease(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	userId := h.newUser(t)

	first := h.quota.Reserve(ctx, userId, entity.GenerationTypeVideo)
	require.True(t, first.CanGenerate)
	require.NotNil(t, first.Reservation)
	assert.Equal(t, 1, first.DailyRemaining)
	assert.Equal(t, 19, first.MonthlyRemaining)

	second := h.quota.Reserve(ctx, userId, entity.GenerationTypeVideo)
	require.True(t, second.CanGenerate)

	res := h.quota.Reserve(ctx, userId, entity.GenerationTypeVideo)
	assert.False(t, res.CanGenerate)
	assert.Nil(t, res.Reservation)
	assert.Equal(t, constant.LimitTypeDaily, res.LimitType)
	assert.Equal(t, 1, h.bus.count(events.QuotaExceeded))

	require.NoError(t, h.quota.Release(ctx, *first.Reservation))
	q := h.store.quota(userId, entity.GenerationTypeVideo)
	assert.Equal(t, 1, q.DailyUsed)
	assert.Equal(t, 1, q.MonthlyUsed)

	require.NoError(t, h.quota.Release(ctx, *second.Reservation))
	require.NoError(t, h.quota.Release(ctx, *second.Reservation))
	q = h.store.quota(userId, entity.GenerationTypeVideo)
	assert.Equal(t, 0, q.DailyUsed, "release floors at zero")
}

func TestReleaseAfterDailyResetKeepsNewWindow(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	userId := h.newUser(t)

	inFlight := h.quota.Reserve(ctx, userId, entity.GenerationTypeVideo)
	require.True(t, inFlight.CanGenerate)

	h.clock.Advance(25 * time.Hour)

	require.True(t, h.quota.Reserve(ctx, userId, entity.GenerationTypeVideo).CanGenerate)
	require.True(t, h.quota.Reserve(ctx, userId, entity.GenerationTypeVideo).CanGenerate)

	// The reservation from yesterday fails after the reset.
	require.NoError(t, h.quota.Release(ctx, *inFlight.Reservation))

	q := h.store.quota(userId, entity.GenerationTypeVideo)
	assert.Equal(t, 2, q.DailyUsed, "new window keeps its usage")
	assert.Equal(t, 2, q.MonthlyUsed, "monthly window is unchanged, so it is given back")

	res := h.quota.Reserve(ctx, userId, entity.GenerationTypeVideo)
	assert.False(t, res.CanGenerate)
	assert.Equal(t, constant.LimitTypeDaily, res.LimitType)
}

func TestConcurrentReserveNeverExceedsLimit(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	userId := h.newUser(t)

	var admitted int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if h.quota.Reserve(ctx, userId, entity.GenerationTypeImage).CanGenerate {
				atomic.AddInt64(&admitted, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), admitted)
	q := h.store.quota(userId, entity.GenerationTypeImage)
	assert.Equal(t, 10, q.DailyUsed)
	assert.Equal(t, 10, q.MonthlyUsed)
}

func TestGetUserQuotas(t *testing.T) {
	h := newHarness()
	userId := h.newUser(t)
	h.newUser(t)

	quotas, err := h.quota.GetUserQuotas(context.Background(), userId)
	require.NoError(t, err)
	require.Len(t, quotas, 3)
	for _, q := range quotas {
		assert.Equal(t, userId, q.UserId)
	}
}
