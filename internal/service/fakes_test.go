package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"ai-studio-be/internal/entity"
	"ai-studio-be/internal/repository/contract"
	"ai-studio-be/internal/repository/specification"
	"ai-studio-be/internal/repository/unitofwork"
	"ai-studio-be/pkg/generator"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var errStoreDown = errors.New("store unavailable")

// memStore backs every in-memory repository. Each repository call holds the
// mutex for its whole duration, so single-statement operations are atomic
// the way they are in Postgres.
type memStore struct {
	mu sync.Mutex

	users       map[uuid.UUID]*entity.User
	quotas      []*entity.Quota
	generations []*entity.Generation
	usage       []*entity.UserUsage
	audits      []*entity.AuditLog

	failQuotaReads      bool
	failGenerationWrite bool
	failUsageIncrement  bool
	failAudit           bool
}

func newMemStore() *memStore {
	return &memStore{users: make(map[uuid.UUID]*entity.User)}
}

func (s *memStore) quota(userId uuid.UUID, t entity.GenerationType) *entity.Quota {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range s.quotas {
		if q.UserId == userId && q.GenerationType == t {
			cp := *q
			return &cp
		}
	}
	return nil
}

func (s *memStore) updateQuota(userId uuid.UUID, t entity.GenerationType, fn func(q *entity.Quota)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range s.quotas {
		if q.UserId == userId && q.GenerationType == t {
			fn(q)
		}
	}
}

func (s *memStore) usageRow(userId uuid.UUID, t entity.GenerationType) *entity.UserUsage {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.usage {
		if u.UserId == userId && u.Type == t {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (s *memStore) auditActions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.audits))
	for _, a := range s.audits {
		out = append(out, a.Action)
	}
	return out
}

func (s *memStore) generationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.generations)
}

type memFactory struct {
	store *memStore
}

func (f *memFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return &memUnitOfWork{store: f.store}
}

// memUnitOfWork has no isolation; Begin and Commit only track state.
type memUnitOfWork struct {
	store  *memStore
	active bool
}

func (u *memUnitOfWork) Begin(context.Context) error {
	if u.active {
		return errors.New("transaction already started")
	}
	u.active = true
	return nil
}

func (u *memUnitOfWork) Commit() error {
	if !u.active {
		return errors.New("no transaction to commit")
	}
	u.active = false
	return nil
}

func (u *memUnitOfWork) Rollback() error {
	if !u.active {
		return errors.New("no transaction to rollback")
	}
	u.active = false
	return nil
}

func (u *memUnitOfWork) UserRepository() contract.UserRepository {
	return &memUserRepo{u.store}
}

func (u *memUnitOfWork) QuotaRepository() contract.QuotaRepository {
	return &memQuotaRepo{u.store}
}

func (u *memUnitOfWork) GenerationRepository() contract.GenerationRepository {
	return &memGenerationRepo{u.store}
}

func (u *memUnitOfWork) UserUsageRepository() contract.UserUsageRepository {
	return &memUsageRepo{u.store}
}

func (u *memUnitOfWork) AuditLogRepository() contract.AuditLogRepository {
	return &memAuditRepo{u.store}
}

// Users

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) Upsert(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, u := range r.s.users {
		if id != user.Id && u.Email == user.Email {
			return &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
		}
	}
	if existing, ok := r.s.users[user.Id]; ok {
		existing.Email = user.Email
		existing.Name = user.Name
		existing.UpdatedAt = user.UpdatedAt
		return nil
	}
	cp := *user
	r.s.users[user.Id] = &cp
	return nil
}

func (r *memUserRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		ok := true
		for _, spec := range specs {
			switch sp := spec.(type) {
			case specification.ByID:
				ok = ok && u.Id == sp.ID
			}
		}
		if ok {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// Quotas

type memQuotaRepo struct{ s *memStore }

func matchQuota(q *entity.Quota, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if q.Id != sp.ID {
				return false
			}
		case specification.UserOwnedBy:
			if q.UserId != sp.UserID {
				return false
			}
		case specification.ByGenerationType:
			if q.GenerationType != sp.Type {
				return false
			}
		}
	}
	return true
}

func (r *memQuotaRepo) find(userId uuid.UUID, t entity.GenerationType) *entity.Quota {
	for _, q := range r.s.quotas {
		if q.UserId == userId && q.GenerationType == t {
			return q
		}
	}
	return nil
}

func (r *memQuotaRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Quota, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failQuotaReads {
		return nil, errStoreDown
	}
	for _, q := range r.s.quotas {
		if matchQuota(q, specs) {
			cp := *q
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memQuotaRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Quota, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failQuotaReads {
		return nil, errStoreDown
	}
	var out []*entity.Quota
	for _, q := range r.s.quotas {
		if matchQuota(q, specs) {
			cp := *q
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GenerationType < out[j].GenerationType })
	return out, nil
}

func (r *memQuotaRepo) CreateDefaults(_ context.Context, quotas []*entity.Quota) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, q := range quotas {
		if r.find(q.UserId, q.GenerationType) != nil {
			continue
		}
		cp := *q
		cp.Id = uuid.New()
		r.s.quotas = append(r.s.quotas, &cp)
	}
	return nil
}

func (r *memQuotaRepo) reset(id uuid.UUID, staleBefore time.Time, daily bool, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failQuotaReads {
		return false, errStoreDown
	}
	for _, q := range r.s.quotas {
		if q.Id != id {
			continue
		}
		if daily && !q.LastReset.After(staleBefore) {
			q.DailyUsed = 0
			q.LastReset = now
			return true, nil
		}
		if !daily && !q.MonthlyReset.After(staleBefore) {
			q.MonthlyUsed = 0
			q.MonthlyReset = now
			return true, nil
		}
	}
	return false, nil
}

func (r *memQuotaRepo) ResetDaily(_ context.Context, id uuid.UUID, staleBefore, now time.Time) (bool, error) {
	return r.reset(id, staleBefore, true, now)
}

func (r *memQuotaRepo) ResetMonthly(_ context.Context, id uuid.UUID, staleBefore, now time.Time) (bool, error) {
	return r.reset(id, staleBefore, false, now)
}

func (r *memQuotaRepo) Increment(_ context.Context, userId uuid.UUID, t entity.GenerationType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := r.find(userId, t)
	if q == nil {
		return contract.ErrNotFound
	}
	q.DailyUsed++
	q.MonthlyUsed++
	return nil
}

func (r *memQuotaRepo) IncrementIfAvailable(_ context.Context, userId uuid.UUID, t entity.GenerationType) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := r.find(userId, t)
	if q == nil || !q.HasCapacity() {
		return false, nil
	}
	q.DailyUsed++
	q.MonthlyUsed++
	return true, nil
}

func (r *memQuotaRepo) Decrement(_ context.Context, res entity.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := r.find(res.UserId, res.GenerationType)
	if q == nil {
		return nil
	}
	if q.LastReset.Equal(res.DailyWindow) {
		q.DailyUsed = max(q.DailyUsed-1, 0)
	}
	if q.MonthlyReset.Equal(res.MonthlyWindow) {
		q.MonthlyUsed = max(q.MonthlyUsed-1, 0)
	}
	return nil
}

func (r *memQuotaRepo) UpdateLimits(_ context.Context, userId uuid.UUID, t entity.GenerationType, daily, monthly int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := r.find(userId, t)
	if q == nil {
		return contract.ErrNotFound
	}
	q.DailyLimit = daily
	q.MonthlyLimit = monthly
	return nil
}

// Generations

type memGenerationRepo struct{ s *memStore }

func (r *memGenerationRepo) Create(_ context.Context, g *entity.Generation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failGenerationWrite {
		return errStoreDown
	}
	g.Id = uuid.New()
	cp := *g
	r.s.generations = append(r.s.generations, &cp)
	return nil
}

func (r *memGenerationRepo) filter(specs []specification.Specification) []*entity.Generation {
	var out []*entity.Generation
	for _, g := range r.s.generations {
		ok := true
		for _, spec := range specs {
			switch sp := spec.(type) {
			case specification.UserOwnedBy:
				ok = ok && g.UserId == sp.UserID
			case specification.ByStatus:
				ok = ok && g.Status == sp.Status
			case specification.CreatedSince:
				ok = ok && !g.CreatedAt.Before(sp.Since)
			}
		}
		if ok {
			cp := *g
			out = append(out, &cp)
		}
	}

	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.NewestFirst:
			sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
		case specification.Pagination:
			if sp.Offset < len(out) {
				out = out[sp.Offset:]
			} else {
				out = nil
			}
			if sp.Limit > 0 && len(out) > sp.Limit {
				out = out[:sp.Limit]
			}
		}
	}
	return out
}

func (r *memGenerationRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Generation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(specs), nil
}

func (r *memGenerationRepo) SumCost(_ context.Context, userId uuid.UUID) (float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := 0.0
	for _, g := range r.s.generations {
		if g.UserId == userId && g.Cost != nil {
			total += *g.Cost
		}
	}
	return total, nil
}

func (r *memGenerationRepo) DailyCounts(_ context.Context, specs ...specification.Specification) ([]*entity.DailyUsage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	type key struct {
		day string
		t   entity.GenerationType
	}
	counts := make(map[key]*entity.DailyUsage)
	for _, g := range r.filter(specs) {
		day := g.CreatedAt.Truncate(24 * time.Hour)
		k := key{day.Format("2006-01-02"), g.Type}
		if counts[k] == nil {
			counts[k] = &entity.DailyUsage{Day: day, Type: g.Type}
		}
		counts[k].Count++
	}

	out := make([]*entity.DailyUsage, 0, len(counts))
	for _, d := range counts {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Day.Equal(out[j].Day) {
			return out[i].Day.After(out[j].Day)
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}

// Usage

type memUsageRepo struct{ s *memStore }

func (r *memUsageRepo) CreateDefaults(_ context.Context, rows []*entity.UserUsage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, row := range rows {
		exists := false
		for _, u := range r.s.usage {
			if u.UserId == row.UserId && u.Type == row.Type {
				exists = true
			}
		}
		if !exists {
			cp := *row
			cp.Id = uuid.New()
			r.s.usage = append(r.s.usage, &cp)
		}
	}
	return nil
}

func (r *memUsageRepo) Increment(_ context.Context, userId uuid.UUID, t entity.GenerationType, usedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failUsageIncrement {
		return errStoreDown
	}
	for _, u := range r.s.usage {
		if u.UserId == userId && u.Type == t {
			u.Count++
			u.LastUsed = usedAt
			return nil
		}
	}
	r.s.usage = append(r.s.usage, &entity.UserUsage{Id: uuid.New(), UserId: userId, Type: t, Count: 1, LastUsed: usedAt})
	return nil
}

func (r *memUsageRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.UserUsage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.UserUsage
	for _, u := range r.s.usage {
		ok := true
		for _, spec := range specs {
			switch sp := spec.(type) {
			case specification.UserOwnedBy:
				ok = ok && u.UserId == sp.UserID
			}
		}
		if ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

// Audit

type memAuditRepo struct{ s *memStore }

func (r *memAuditRepo) Create(_ context.Context, log *entity.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failAudit {
		return errStoreDown
	}
	cp := *log
	cp.Id = uuid.New()
	r.s.audits = append(r.s.audits, &cp)
	return nil
}

// Collaborators

type recordedEvent struct {
	Type string
	Data map[string]interface{}
}

type recordingBus struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *recordingBus) Emit(_ context.Context, eventType string, data map[string]interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{Type: eventType, Data: data})
}

func (b *recordingBus) count(eventType string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type stubLimiter struct {
	allow bool
	err   error
}

func (l stubLimiter) Allow(context.Context, string) (bool, error) {
	return l.allow, l.err
}

type stubProvider struct {
	mu     sync.Mutex
	calls  int
	result *generator.Result
	err    error
}

func (p *stubProvider) Generate(context.Context, generator.Request) (*generator.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.result, p.err
}

func (p *stubProvider) Name() string {
	return "stub"
}
