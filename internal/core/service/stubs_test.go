package service

// In-memory stub implementations of the persistence and revocation ports,
// shared by the service tests in this package.

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/viatero/expense-system/internal/core/domain"
	"github.com/viatero/expense-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// User repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	byLogin map[string]*domain.User

	// invisibleReads makes the next N FindByLogin calls miss, simulating a
	// store without read-after-write consistency.
	invisibleReads int
	// forceIDConflict makes the next Insert fail with ErrUserIDConflict.
	forceIDConflict bool

	updateHashErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byLogin: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByLogin(_ context.Context, login string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.invisibleReads > 0 {
		r.invisibleReads--
		return nil, domain.ErrUserNotFound
	}
	u, ok := r.byLogin[login]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, userID int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byLogin {
		if u.ID == userID {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) ExistsByLogin(_ context.Context, login string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byLogin[login]
	return ok, nil
}

func (r *stubUserRepo) Insert(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.forceIDConflict {
		r.forceIDConflict = false
		return domain.ErrUserIDConflict
	}
	if _, ok := r.byLogin[user.Login]; ok {
		return domain.ErrLoginTaken
	}
	for _, u := range r.byLogin {
		if u.ID == user.ID {
			return domain.ErrUserIDConflict
		}
	}
	r.byLogin[user.Login] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) UpdatePasswordHash(_ context.Context, userID int64, newHash string, ts time.Time) error {
	if r.updateHashErr != nil {
		return r.updateHashErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byLogin {
		if u.ID == userID {
			u.PasswordHash = newHash
			u.UpdatedAt = ts
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (r *stubUserRepo) UpdateRole(_ context.Context, userID int64, role string, ts time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byLogin {
		if u.ID == userID {
			u.Role = role
			u.UpdatedAt = ts
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (r *stubUserRepo) UpdateDisplayName(_ context.Context, userID int64, displayName string, ts time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byLogin {
		if u.ID == userID {
			u.DisplayName = displayName
			u.UpdatedAt = ts
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.byLogin))
	for _, u := range r.byLogin {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Reset repository
// ---------------------------------------------------------------------------

type stubResetRepo struct {
	mu        sync.Mutex
	seq       int
	requests  map[string]*domain.ResetRequest
	insertErr error
}

func newStubResetRepo() *stubResetRepo {
	return &stubResetRepo{requests: make(map[string]*domain.ResetRequest)}
}

func (r *stubResetRepo) Insert(_ context.Context, req *domain.ResetRequest) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	req.ID = fmt.Sprintf("reset-%d", r.seq)
	clone := *req
	r.requests[req.ID] = &clone
	return nil
}

func (r *stubResetRepo) FindActive(_ context.Context, userID int64, code string) (*domain.ResetRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if req.UserID == userID && req.Code == code && !req.Consumed {
			clone := *req
			return &clone, nil
		}
	}
	return nil, domain.ErrInvalidResetCode
}

func (r *stubResetRepo) MarkConsumed(_ context.Context, resetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[resetID]
	if !ok {
		return domain.ErrInvalidResetCode
	}
	req.Consumed = true
	return nil
}

func (r *stubResetRepo) InvalidateForUser(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if req.UserID == userID {
			req.Consumed = true
		}
	}
	return nil
}

// expire backdates every stored request for the user, for expiry tests.
func (r *stubResetRepo) expire(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if req.UserID == userID {
			req.ExpiresAt = time.Now().UTC().Add(-time.Minute)
		}
	}
}

// ---------------------------------------------------------------------------
// Session revoker
// ---------------------------------------------------------------------------

type stubRevoker struct {
	mu      sync.Mutex
	revoked map[string]bool
	cutoffs map[int64]time.Time

	checkErr error // returned by IsTokenRevoked and UserCutoff when set
}

func newStubRevoker() *stubRevoker {
	return &stubRevoker{revoked: make(map[string]bool), cutoffs: make(map[int64]time.Time)}
}

func (s *stubRevoker) RevokeToken(_ context.Context, jti string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = true
	return nil
}

func (s *stubRevoker) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	if s.checkErr != nil {
		return false, s.checkErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked[jti], nil
}

func (s *stubRevoker) SetUserCutoff(_ context.Context, userID int64, at time.Time, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cutoffs[userID] = at
	return nil
}

func (s *stubRevoker) UserCutoff(_ context.Context, userID int64) (time.Time, error) {
	if s.checkErr != nil {
		return time.Time{}, s.checkErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cutoffs[userID], nil
}

// ---------------------------------------------------------------------------
// Notification queue
// ---------------------------------------------------------------------------

type stubQueue struct {
	mu   sync.Mutex
	sent []ports.Notification
}

func (q *stubQueue) Enqueue(n ports.Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sent = append(q.sent, n)
}

func (q *stubQueue) kinds() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, len(q.sent))
	for i, n := range q.sent {
		out[i] = n.Kind
	}
	return out
}

// ---------------------------------------------------------------------------
// Trip repository
// ---------------------------------------------------------------------------

type stubTripRepo struct {
	mu         sync.Mutex
	byID       map[string]*domain.Trip
	lastFilter ports.ListTripsFilter
}

func newStubTripRepo() *stubTripRepo {
	return &stubTripRepo{byID: make(map[string]*domain.Trip)}
}

func (r *stubTripRepo) Create(_ context.Context, t *domain.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *t
	r.byID[t.ID] = &clone
	return nil
}

func (r *stubTripRepo) FindByID(_ context.Context, tripID string) (*domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[tripID]
	if !ok {
		return nil, domain.ErrTripNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *stubTripRepo) Update(_ context.Context, t *domain.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[t.ID]; !ok {
		return domain.ErrTripNotFound
	}
	clone := *t
	r.byID[t.ID] = &clone
	return nil
}

func (r *stubTripRepo) Delete(_ context.Context, tripID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[tripID]; !ok {
		return domain.ErrTripNotFound
	}
	delete(r.byID, tripID)
	return nil
}

func (r *stubTripRepo) List(_ context.Context, filter ports.ListTripsFilter) ([]*domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilter = filter
	var out []*domain.Trip
	for _, t := range r.byID {
		if filter.UserID != 0 && t.UserID != filter.UserID {
			continue
		}
		clone := *t
		out = append(out, &clone)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Expense repository
// ---------------------------------------------------------------------------

type stubExpenseRepo struct {
	mu             sync.Mutex
	byID           map[string]*domain.Expense
	reimbursements []*domain.Reimbursement
}

func newStubExpenseRepo() *stubExpenseRepo {
	return &stubExpenseRepo{byID: make(map[string]*domain.Expense)}
}

func cloneExpense(e *domain.Expense) *domain.Expense {
	clone := *e
	clone.ReviewHistory = append([]domain.ReviewEntry(nil), e.ReviewHistory...)
	return &clone
}

func (r *stubExpenseRepo) Create(_ context.Context, e *domain.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[e.ID] = cloneExpense(e)
	return nil
}

func (r *stubExpenseRepo) FindByID(_ context.Context, expenseID string) (*domain.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[expenseID]
	if !ok {
		return nil, domain.ErrExpenseNotFound
	}
	return cloneExpense(e), nil
}

func (r *stubExpenseRepo) List(_ context.Context, filter ports.ListExpensesFilter) ([]*domain.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Expense
	for _, e := range r.byID {
		if e.TripID != filter.TripID {
			continue
		}
		if filter.Status != "" && string(e.Status) != filter.Status {
			continue
		}
		out = append(out, cloneExpense(e))
	}
	return out, nil
}

// UpdateStatus mirrors the compare-and-set semantics of the real store: the
// write only lands when the current status still matches from.
func (r *stubExpenseRepo) UpdateStatus(_ context.Context, expenseID string, from, to domain.ExpenseStatus, reviewerID int64, ts time.Time, note string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[expenseID]
	if !ok || e.Status != from {
		return domain.ErrInvalidReview
	}
	e.Status = to
	e.ReviewerID = reviewerID
	e.ReviewedAt = ts
	e.ReviewHistory = append(e.ReviewHistory, domain.ReviewEntry{
		Status:     to,
		ReviewerID: reviewerID,
		Timestamp:  ts,
		Note:       note,
	})
	return nil
}

func (r *stubExpenseRepo) Totals(_ context.Context, tripID string) (*ports.TripTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	totals := &ports.TripTotals{
		ByCategory: make(map[string]float64),
		ByStatus:   make(map[string]float64),
	}
	for _, e := range r.byID {
		if e.TripID != tripID {
			continue
		}
		totals.ByCategory[e.Category] += e.Amount
		totals.ByStatus[string(e.Status)] += e.Amount
	}
	return totals, nil
}

func (r *stubExpenseRepo) InsertReimbursement(_ context.Context, rec *domain.Reimbursement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *rec
	r.reimbursements = append(r.reimbursements, &clone)
	return nil
}

func (r *stubExpenseRepo) DeleteByTrip(_ context.Context, tripID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, e := range r.byID {
		if e.TripID == tripID {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}
