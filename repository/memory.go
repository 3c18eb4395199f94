package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"selfcheck/dbx"
	"selfcheck/models"
)

// MemoryManager keeps everything in process. Repositories ignore the DBTX
// they are given; InTx serializes units of work with a single mutex.
// It backs service and router tests.
type MemoryManager struct {
	txMu sync.Mutex

	mu       sync.Mutex
	users    map[uuid.UUID]models.User
	results  []models.TestResult
	profiles map[uuid.UUID]*models.Profile
	nextID   int64

	// Now stamps created_at on inserts.
	Now func() time.Time
}

func NewMemoryManager() *MemoryManager {
	return &MemoryManager{
		users:    make(map[uuid.UUID]models.User),
		profiles: make(map[uuid.UUID]*models.Profile),
		Now:      time.Now,
	}
}

func (m *MemoryManager) Users(dbx.DBTX) UserRepository { return memoryUsers{m} }
func (m *MemoryManager) TestResults(dbx.DBTX) TestResultRepository { return memoryTestResults{m} }
func (m *MemoryManager) Profiles(dbx.DBTX) ProfileRepository { return memoryProfiles{m} }

func (m *MemoryManager) InTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx, nil)
}

type memoryUsers struct{ m *MemoryManager }

func (r memoryUsers) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, u := range r.m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, ErrDuplicate
		}
	}
	user.CreatedAt = r.m.Now().UTC()
	r.m.users[user.ID] = *user
	return user, nil
}

func (r memoryUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	u, ok := r.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r memoryUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, u := range r.m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r memoryUsers) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, u := range r.m.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type memoryTestResults struct{ m *MemoryManager }

func (r memoryTestResults) Lock(context.Context, uuid.UUID, string) error { return nil }

func (r memoryTestResults) Latest(_ context.Context, userID uuid.UUID, testType string) (*models.TestResult, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var latest *models.TestResult
	for i := range r.m.results {
		res := r.m.results[i]
		if res.UserID != userID || res.TestType != testType {
			continue
		}
		if latest == nil || res.CreatedAt.After(latest.CreatedAt) {
			latest = &res
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}

func (r memoryTestResults) Create(_ context.Context, result *models.TestResult) (*models.TestResult, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	r.m.nextID++
	result.ID = r.m.nextID
	result.CreatedAt = r.m.Now().UTC()
	r.m.results = append(r.m.results, *result)
	return result, nil
}

func (r memoryTestResults) ListByUser(_ context.Context, userID uuid.UUID) ([]models.TestResult, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	out := make([]models.TestResult, 0)
	for _, res := range r.m.results {
		if res.UserID == userID {
			out = append(out, res)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memoryProfiles struct{ m *MemoryManager }

func (r memoryProfiles) Exists(_ context.Context, userID uuid.UUID) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	_, ok := r.m.profiles[userID]
	return ok, nil
}

func (r memoryProfiles) Create(_ context.Context, p *models.Profile) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.profiles[p.UserID()]; ok {
		return ErrDuplicate
	}
	r.m.profiles[p.UserID()] = p
	return nil
}

func (r memoryProfiles) GetByUserID(_ context.Context, userID uuid.UUID) (*models.Profile, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	p, ok := r.m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}
