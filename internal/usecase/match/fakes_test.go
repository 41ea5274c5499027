package match

import (
	"context"
	"sync"
	"time"

	"github.com/gdugdh24/bookswap-backend/internal/domain"
	"github.com/gdugdh24/bookswap-backend/internal/repository"
)

type fakeMatchRepo struct {
	mu        sync.Mutex
	matches   map[string]*domain.Match
	created   []*domain.Match
	createErr error
	updateErr error
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: map[string]*domain.Match{}}
}

func (r *fakeMatchRepo) CreateMany(_ context.Context, matches []*domain.Match) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range matches {
		r.matches[m.ID] = m
	}
	r.created = append(r.created, matches...)
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id string) (*domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	return m, nil
}

func (r *fakeMatchRepo) Update(_ context.Context, match *domain.Match) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	match.Version++
	r.mu.Lock()
	r.matches[match.ID] = match
	r.mu.Unlock()
	return nil
}

func (r *fakeMatchRepo) GetAllForUser(_ context.Context, userID string) ([]*domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Match
	for _, m := range r.created {
		if m.HasUser(userID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) GetUserMatchesByReceiver(context.Context, string) ([]*domain.Match, error) {
	return nil, nil
}

func (r *fakeMatchRepo) GetUserMatchesBySender(context.Context, string) ([]*domain.Match, error) {
	return nil, nil
}

type fakeInventoryRepo struct {
	senders []domain.MatchableUser
	query   repository.SenderPoolQuery
	err     error
}

func (r *fakeInventoryRepo) GetSenderPool(_ context.Context, q repository.SenderPoolQuery) ([]domain.MatchableUser, error) {
	r.query = q
	return r.senders, r.err
}

func (r *fakeInventoryRepo) GetActiveByBlid(context.Context, string) ([]*domain.InventoryRecord, error) {
	return nil, nil
}

func (r *fakeInventoryRepo) MarkReturned(context.Context, string, time.Time) error {
	return nil
}

func (r *fakeInventoryRepo) CreateFromOrder(context.Context, *domain.Order) ([]*domain.InventoryRecord, error) {
	return nil, nil
}

type fakeOrderRepo struct {
	receivers []domain.MatchableUser
	query     repository.ReceiverPoolQuery
}

func (r *fakeOrderRepo) GetReceiverPool(_ context.Context, q repository.ReceiverPoolQuery) ([]domain.MatchableUser, error) {
	r.query = q
	return r.receivers, nil
}

func (r *fakeOrderRepo) GetPendingLine(context.Context, string, string) (*domain.OrderLine, error) {
	return nil, domain.ErrOrderNotFound
}

func (r *fakeOrderRepo) MarkLineHandedOut(context.Context, string) error {
	return nil
}

func (r *fakeOrderRepo) CreateExchangeOrder(context.Context, *domain.Order) error {
	return nil
}

type fakeLocker struct {
	held     map[string]bool
	released []string
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]bool{}}
}

func (l *fakeLocker) Acquire(_ context.Context, key string, _ time.Duration) (repository.ReleaseFunc, error) {
	if l.held[key] {
		return nil, domain.ErrLockNotAcquired
	}
	l.held[key] = true
	return func(context.Context) error {
		delete(l.held, key)
		l.released = append(l.released, key)
		return nil
	}, nil
}

type generation struct {
	result              string
	userMatches, stands int
}

type fakeRecorder struct {
	runs []generation
}

func (r *fakeRecorder) RecordGeneration(result string, userMatches, standMatches int) {
	r.runs = append(r.runs, generation{result, userMatches, standMatches})
}
