package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"finanzas-be/internal/apperrors"
	"finanzas-be/internal/entities"
	"finanzas-be/internal/logging"
	"finanzas-be/internal/repository"
)

var testLogger = logging.Nop()

// fakeStore backs all fake repositories with shared maps so joins (category
// names, movement counts) behave like the database.
type fakeStore struct {
	mu         sync.Mutex
	seq        int
	users      map[string]*entities.User
	categories map[string]*entities.Category
	movements  map[string]*entities.Movement
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      map[string]*entities.User{},
		categories: map[string]*entities.Category{},
		movements:  map[string]*entities.Movement{},
	}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s%d", prefix, f.seq)
}

func (f *fakeStore) repos() *repository.Repositories {
	return &repository.Repositories{
		Users:      &fakeUserRepo{f},
		Categories: &fakeCategoryRepo{f},
		Movements:  &fakeMovementRepo{f},
	}
}

// WithinTx satisfies repository.TxRunner without real isolation.
func (f *fakeStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos *repository.Repositories) error) error {
	return fn(ctx, f.repos())
}

// ---- users

type fakeUserRepo struct{ f *fakeStore }

func (r *fakeUserRepo) Create(_ context.Context, username, email, hash, fullName string) (*entities.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, u := range r.f.users {
		if u.Username == username {
			return nil, apperrors.Conflict("username already exists")
		}
		if strings.EqualFold(u.Email, email) {
			return nil, apperrors.Conflict("email already exists")
		}
	}
	now := time.Now().UTC()
	u := &entities.User{
		ID: r.f.nextID("u"), Username: username, Email: email, PasswordHash: hash,
		FullName: fullName, Active: true, CreatedAt: now, UpdatedAt: now,
	}
	r.f.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) find(match func(*entities.User) bool) (*entities.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, u := range r.f.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*entities.User, error) {
	return r.find(func(u *entities.User) bool { return u.ID == id })
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*entities.User, error) {
	return r.find(func(u *entities.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	return r.find(func(u *entities.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *fakeUserRepo) FindByUsernameOrEmail(ctx context.Context, login string) (*entities.User, error) {
	if u, err := r.FindByUsername(ctx, login); err == nil {
		return u, nil
	}
	return r.FindByEmail(ctx, login)
}

func (r *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	return err == nil, nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *fakeUserRepo) mutate(id string, fn func(*entities.User)) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	u, ok := r.f.users[id]
	if !ok {
		return apperrors.NotFound("user not found")
	}
	fn(u)
	return nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, id, email, fullName string) (*entities.User, error) {
	if err := r.mutate(id, func(u *entities.User) { u.Email, u.FullName = email, fullName }); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	return r.mutate(id, func(u *entities.User) { u.PasswordHash = hash })
}

func (r *fakeUserRepo) SetActive(_ context.Context, id string, active bool) error {
	return r.mutate(id, func(u *entities.User) { u.Active = active })
}

func (r *fakeUserRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	return r.mutate(id, func(u *entities.User) { u.LastLoginAt = &at })
}

// ---- categories

type fakeCategoryRepo struct{ f *fakeStore }

// withCount copies c and fills in its movement count. Caller holds the lock.
func (r *fakeCategoryRepo) withCount(c *entities.Category) *entities.Category {
	cp := *c
	cp.MovementCount = 0
	for _, m := range r.f.movements {
		if m.CategoryID == c.ID {
			cp.MovementCount++
		}
	}
	return &cp
}

func (r *fakeCategoryRepo) List(_ context.Context, filter repository.CategoryFilter) ([]*entities.Category, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	out := []*entities.Category{}
	for _, c := range r.f.categories {
		cc := r.withCount(c)
		if filter.Predefined != nil && cc.IsPredefined != *filter.Predefined {
			continue
		}
		if len(filter.Kinds) > 0 {
			ok := false
			for _, k := range filter.Kinds {
				ok = ok || cc.Kind == k
			}
			if !ok {
				continue
			}
		}
		if filter.NameContains != "" && !strings.Contains(strings.ToLower(cc.Name), strings.ToLower(filter.NameContains)) {
			continue
		}
		if filter.HasMovements != nil && (cc.MovementCount > 0) != *filter.HasMovements {
			continue
		}
		out = append(out, cc)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

func (r *fakeCategoryRepo) FindByID(_ context.Context, id string) (*entities.Category, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	c, ok := r.f.categories[id]
	if !ok {
		return nil, apperrors.NotFound("category not found")
	}
	return r.withCount(c), nil
}

func (r *fakeCategoryRepo) FindByName(_ context.Context, name string) (*entities.Category, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, c := range r.f.categories {
		if strings.EqualFold(c.Name, name) {
			return r.withCount(c), nil
		}
	}
	return nil, apperrors.NotFound("category not found")
}

func (r *fakeCategoryRepo) Create(_ context.Context, c *entities.Category) (*entities.Category, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, existing := range r.f.categories {
		if strings.EqualFold(existing.Name, c.Name) {
			return nil, apperrors.Conflict("category %q already exists", c.Name)
		}
	}
	cp := *c
	cp.ID = r.f.nextID("c")
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	r.f.categories[cp.ID] = &cp
	return r.withCount(&cp), nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, id, name, description string) (*entities.Category, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	c, ok := r.f.categories[id]
	if !ok {
		return nil, apperrors.NotFound("category not found")
	}
	c.Name, c.Description = name, description
	return r.withCount(c), nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id string) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	c, ok := r.f.categories[id]
	if !ok || r.withCount(c).MovementCount > 0 {
		return apperrors.Validation("category not found or still referenced by movements")
	}
	delete(r.f.categories, id)
	return nil
}

// ---- movements

type fakeMovementRepo struct{ f *fakeStore }

func (r *fakeMovementRepo) hydrate(m *entities.Movement) *entities.Movement {
	cp := *m
	if c, ok := r.f.categories[m.CategoryID]; ok {
		cp.CategoryName = c.Name
	}
	return &cp
}

func inPeriod(t time.Time, p repository.Period) bool {
	if !p.From.IsZero() && t.Before(p.From) {
		return false
	}
	if !p.To.IsZero() && !t.Before(p.To) {
		return false
	}
	return true
}

func (r *fakeMovementRepo) Create(_ context.Context, m *entities.Movement) (*entities.Movement, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	cp := *m
	cp.ID = r.f.nextID("m")
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	r.f.movements[cp.ID] = &cp
	return r.hydrate(&cp), nil
}

func (r *fakeMovementRepo) FindByID(_ context.Context, id, userID string) (*entities.Movement, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	m, ok := r.f.movements[id]
	if !ok || m.UserID != userID {
		return nil, apperrors.NotFound("movement not found")
	}
	return r.hydrate(m), nil
}

func (r *fakeMovementRepo) List(_ context.Context, userID string, filter repository.MovementFilter) ([]*entities.Movement, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	out := []*entities.Movement{}
	for _, m := range r.f.movements {
		if m.UserID != userID {
			continue
		}
		if filter.Type != nil && m.Type != *filter.Type {
			continue
		}
		if filter.CategoryID != "" && m.CategoryID != filter.CategoryID {
			continue
		}
		if filter.DescriptionContains != "" && !strings.Contains(strings.ToLower(m.Description), strings.ToLower(filter.DescriptionContains)) {
			continue
		}
		if !inPeriod(m.OccurredAt, filter.Period) {
			continue
		}
		out = append(out, r.hydrate(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *fakeMovementRepo) Update(_ context.Context, m *entities.Movement) (*entities.Movement, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	existing, ok := r.f.movements[m.ID]
	if !ok || existing.UserID != m.UserID {
		return nil, apperrors.NotFound("movement not found")
	}
	cp := *m
	r.f.movements[m.ID] = &cp
	return r.hydrate(&cp), nil
}

func (r *fakeMovementRepo) Delete(_ context.Context, id, userID string) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	m, ok := r.f.movements[id]
	if !ok || m.UserID != userID {
		return apperrors.NotFound("movement not found")
	}
	delete(r.f.movements, id)
	return nil
}

func (r *fakeMovementRepo) Totals(_ context.Context, userID string, p repository.Period) (entities.Totals, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	income, expense := decimal.Zero, decimal.Zero
	for _, m := range r.f.movements {
		if m.UserID != userID || !inPeriod(m.OccurredAt, p) {
			continue
		}
		if m.Type == entities.MovementIncome {
			income = income.Add(m.Amount)
		} else {
			expense = expense.Add(m.Amount)
		}
	}
	return entities.NewTotals(income, expense), nil
}

func (r *fakeMovementRepo) SumByCategory(_ context.Context, userID string, t entities.MovementType, p repository.Period) ([]entities.CategoryAmount, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	sums := map[string]decimal.Decimal{}
	for _, m := range r.f.movements {
		if m.UserID != userID || m.Type != t || !inPeriod(m.OccurredAt, p) {
			continue
		}
		sums[m.CategoryID] = sums[m.CategoryID].Add(m.Amount)
	}
	out := []entities.CategoryAmount{}
	for id, amount := range sums {
		out = append(out, entities.CategoryAmount{CategoryID: id, CategoryName: r.f.categories[id].Name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].CategoryName < out[j].CategoryName
	})
	return out, nil
}

func (r *fakeMovementRepo) TypeStats(_ context.Context, userID string) (income, expense entities.TypeStats, err error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	acc := map[entities.MovementType]*entities.TypeStats{
		entities.MovementIncome:  {Total: decimal.Zero, Average: decimal.Zero, Max: decimal.Zero},
		entities.MovementExpense: {Total: decimal.Zero, Average: decimal.Zero, Max: decimal.Zero},
	}
	for _, m := range r.f.movements {
		if m.UserID != userID {
			continue
		}
		s := acc[m.Type]
		s.Count++
		s.Total = s.Total.Add(m.Amount)
		if m.Amount.GreaterThan(s.Max) {
			s.Max = m.Amount
		}
	}
	for _, s := range acc {
		if s.Count > 0 {
			s.Average = s.Total.Div(decimal.NewFromInt(int64(s.Count)))
		}
	}
	return *acc[entities.MovementIncome], *acc[entities.MovementExpense], nil
}
