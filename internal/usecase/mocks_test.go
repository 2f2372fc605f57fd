//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"heartlink/internal/domain"
	"heartlink/internal/domain/model"
	"heartlink/internal/domain/ports/adapter"
	"heartlink/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// =============================
// Repositories
// =============================

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu    sync.RWMutex
	users map[string]*model.User // by ID

	SaveFunc                func(ctx context.Context, qx repository.Tx, u *model.User) error
	FindByIDFunc            func(ctx context.Context, qx repository.Tx, id string) (*model.User, error)
	FindByEmailFunc         func(ctx context.Context, qx repository.Tx, email string) (*model.User, error)
	GrantChatAccessFunc     func(ctx context.Context, qx repository.Tx, id string, paymentDate time.Time, expiresAt *time.Time, reference string) error
	SetPaymentReferenceFunc func(ctx context.Context, qx repository.Tx, id, reference string) error
	RevokeExpiredAccessFunc func(ctx context.Context, qx repository.Tx, now time.Time) (int64, error)
	ListDiscoverableFunc    func(ctx context.Context, qx repository.Tx, userID string, limit int) ([]*model.User, error)
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{users: make(map[string]*model.User)}
}

func (m *MockUserRepo) Save(ctx context.Context, qx repository.Tx, u *model.User) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, qx, u)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *MockUserRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, qx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, qx repository.Tx, email string) (*model.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, qx, email)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepo) GrantChatAccess(ctx context.Context, qx repository.Tx, id string, paymentDate time.Time, expiresAt *time.Time, reference string) error {
	if m.GrantChatAccessFunc != nil {
		return m.GrantChatAccessFunc(ctx, qx, id, paymentDate, expiresAt, reference)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	pd := paymentDate
	ref := reference
	u.HasChatAccess = true
	u.PaymentDate = &pd
	u.AccessExpiryDate = expiresAt
	u.PaymentReference = &ref
	return nil
}

func (m *MockUserRepo) SetPaymentReference(ctx context.Context, qx repository.Tx, id, reference string) error {
	if m.SetPaymentReferenceFunc != nil {
		return m.SetPaymentReferenceFunc(ctx, qx, id, reference)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	ref := reference
	u.PaymentReference = &ref
	return nil
}

func (m *MockUserRepo) RevokeExpiredAccess(ctx context.Context, qx repository.Tx, now time.Time) (int64, error) {
	if m.RevokeExpiredAccessFunc != nil {
		return m.RevokeExpiredAccessFunc(ctx, qx, now)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.users {
		if u.HasChatAccess && u.AccessExpiryDate != nil && u.AccessExpiryDate.Before(now) {
			u.HasChatAccess = false
			n++
		}
	}
	return n, nil
}

func (m *MockUserRepo) ListDiscoverable(ctx context.Context, qx repository.Tx, userID string, limit int) ([]*model.User, error) {
	if m.ListDiscoverableFunc != nil {
		return m.ListDiscoverableFunc(ctx, qx, userID, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.User
	for _, u := range m.users {
		if u.ID == userID {
			continue
		}
		cp := *u
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// ---- Mock OrderRepository ----

type MockOrderRepo struct {
	mu     sync.RWMutex
	orders map[string]*model.Order

	InsertFunc   func(ctx context.Context, qx repository.Tx, o *model.Order) error
	FindByIDFunc func(ctx context.Context, qx repository.Tx, id string) (*model.Order, error)
}

var _ repository.OrderRepository = (*MockOrderRepo)(nil)

func NewMockOrderRepo() *MockOrderRepo {
	return &MockOrderRepo{orders: make(map[string]*model.Order)}
}

func (m *MockOrderRepo) Insert(ctx context.Context, qx repository.Tx, o *model.Order) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, qx, o)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[o.ID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *MockOrderRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.Order, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, qx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *MockOrderRepo) ListByUser(ctx context.Context, qx repository.Tx, userID string, limit int) ([]*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Mock PaymentTransactionRepository ----

type MockPaymentTxnRepo struct {
	mu   sync.RWMutex
	txns map[string]*model.PaymentTransaction // by Reference

	InsertFunc                 func(ctx context.Context, qx repository.Tx, t *model.PaymentTransaction) error
	FindByReferenceFunc        func(ctx context.Context, qx repository.Tx, reference string) (*model.PaymentTransaction, error)
	MarkSucceededIfPendingFunc func(ctx context.Context, qx repository.Tx, reference string, gatewayTxnID *string, paidAt time.Time) (bool, error)
}

var _ repository.PaymentTransactionRepository = (*MockPaymentTxnRepo)(nil)

func NewMockPaymentTxnRepo() *MockPaymentTxnRepo {
	return &MockPaymentTxnRepo{txns: make(map[string]*model.PaymentTransaction)}
}

func (m *MockPaymentTxnRepo) Insert(ctx context.Context, qx repository.Tx, t *model.PaymentTransaction) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, qx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.txns[t.Reference]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *t
	m.txns[t.Reference] = &cp
	return nil
}

func (m *MockPaymentTxnRepo) FindByReference(ctx context.Context, qx repository.Tx, reference string) (*model.PaymentTransaction, error) {
	if m.FindByReferenceFunc != nil {
		return m.FindByReferenceFunc(ctx, qx, reference)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.txns[reference]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MockPaymentTxnRepo) MarkSucceededIfPending(ctx context.Context, qx repository.Tx, reference string, gatewayTxnID *string, paidAt time.Time) (bool, error) {
	if m.MarkSucceededIfPendingFunc != nil {
		return m.MarkSucceededIfPendingFunc(ctx, qx, reference, gatewayTxnID, paidAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.txns[reference]
	if !ok || t.Status != model.TransactionStatusPending {
		return false, nil
	}
	t.Status = model.TransactionStatusSuccess
	if gatewayTxnID != nil {
		t.GatewayTxnID = gatewayTxnID
	}
	t.UpdatedAt = paidAt
	return true, nil
}

func (m *MockPaymentTxnRepo) MarkFailed(ctx context.Context, qx repository.Tx, reference string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.txns[reference]
	if !ok {
		return domain.ErrNotFound
	}
	t.Status = model.TransactionStatusFailed
	return nil
}

func (m *MockPaymentTxnRepo) SumSucceededSince(ctx context.Context, qx repository.Tx, since time.Time) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum int64
	for _, t := range m.txns {
		if t.Status == model.TransactionStatusSuccess && !t.UpdatedAt.Before(since) {
			sum += t.Amount
		}
	}
	return sum, nil
}

// ---- Mock SubscriptionPlanRepository ----

type MockPlanRepo struct {
	mu    sync.RWMutex
	plans map[string]*model.SubscriptionPlan
}

var _ repository.SubscriptionPlanRepository = (*MockPlanRepo)(nil)

func NewMockPlanRepo() *MockPlanRepo {
	return &MockPlanRepo{plans: make(map[string]*model.SubscriptionPlan)}
}

func (m *MockPlanRepo) Save(ctx context.Context, qx repository.Tx, p *model.SubscriptionPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.plans[p.ID] = &cp
	return nil
}

func (m *MockPlanRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.SubscriptionPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.plans[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPlanRepo) FindByPlanCode(ctx context.Context, qx repository.Tx, code string) (*model.SubscriptionPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.plans {
		if p.PlanCode == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockPlanRepo) ListAll(ctx context.Context, qx repository.Tx) ([]*model.SubscriptionPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.SubscriptionPlan, 0, len(m.plans))
	for _, p := range m.plans {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

// ---- Mock SubscriptionRepository ----

type MockSubscriptionRepo struct {
	mu   sync.RWMutex
	subs map[string]*model.Subscription // by SubscriptionCode

	UpdateStatusIfChangedFunc func(ctx context.Context, qx repository.Tx, code string, status model.SubscriptionStatus, periodEnd *time.Time) (bool, error)
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{subs: make(map[string]*model.Subscription)}
}

func (m *MockSubscriptionRepo) Save(ctx context.Context, qx repository.Tx, s *model.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.subs[s.SubscriptionCode] = &cp
	return nil
}

func (m *MockSubscriptionRepo) FindByCode(ctx context.Context, qx repository.Tx, code string) (*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.subs[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockSubscriptionRepo) FindActiveByUser(ctx context.Context, qx repository.Tx, userID string) (*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.subs {
		if s.UserID == userID && s.Status == model.SubscriptionStatusActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockSubscriptionRepo) UpdateStatusIfChanged(ctx context.Context, qx repository.Tx, code string, status model.SubscriptionStatus, periodEnd *time.Time) (bool, error) {
	if m.UpdateStatusIfChangedFunc != nil {
		return m.UpdateStatusIfChangedFunc(ctx, qx, code, status, periodEnd)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[code]
	if !ok {
		return false, domain.ErrNotFound
	}
	if s.Status == status {
		return false, nil
	}
	s.Status = status
	if periodEnd != nil {
		s.PeriodEnd = *periodEnd
	}
	return true, nil
}

// ---- Mock SwipeRepository ----

type MockSwipeRepo struct {
	mu     sync.RWMutex
	swipes map[string]*model.Swipe // by swiperID+"|"+targetID

	UpsertFunc func(ctx context.Context, qx repository.Tx, s *model.Swipe) error
}

var _ repository.SwipeRepository = (*MockSwipeRepo)(nil)

func NewMockSwipeRepo() *MockSwipeRepo {
	return &MockSwipeRepo{swipes: make(map[string]*model.Swipe)}
}

func (m *MockSwipeRepo) Upsert(ctx context.Context, qx repository.Tx, s *model.Swipe) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, qx, s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.swipes[s.SwiperID+"|"+s.TargetID] = &cp
	return nil
}

func (m *MockSwipeRepo) FindReciprocal(ctx context.Context, qx repository.Tx, swiperID, targetID string) (*model.Swipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.swipes[targetID+"|"+swiperID]
	if !ok || s.Direction != model.SwipeLike {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

// ---- Mock MatchRepository ----

type MockMatchRepo struct {
	mu      sync.RWMutex
	matches map[string]*model.Match // by ID

	InsertFunc func(ctx context.Context, qx repository.Tx, mt *model.Match) error
}

var _ repository.MatchRepository = (*MockMatchRepo)(nil)

func NewMockMatchRepo() *MockMatchRepo {
	return &MockMatchRepo{matches: make(map[string]*model.Match)}
}

func (m *MockMatchRepo) Insert(ctx context.Context, qx repository.Tx, mt *model.Match) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, qx, mt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.matches {
		if existing.UserLoID == mt.UserLoID && existing.UserHiID == mt.UserHiID {
			return domain.ErrAlreadyExists
		}
	}
	cp := *mt
	m.matches[mt.ID] = &cp
	return nil
}

func (m *MockMatchRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mt, ok := m.matches[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *mt
	return &cp, nil
}

func (m *MockMatchRepo) FindByPair(ctx context.Context, qx repository.Tx, a, b string) (*model.Match, error) {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, mt := range m.matches {
		if mt.UserLoID == lo && mt.UserHiID == hi {
			cp := *mt
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockMatchRepo) ListByUser(ctx context.Context, qx repository.Tx, userID string) ([]*model.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Match
	for _, mt := range m.matches {
		if mt.HasParticipant(userID) {
			cp := *mt
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Mock MessageRepository ----

type MockMessageRepo struct {
	mu       sync.RWMutex
	messages []*model.Message

	InsertFunc func(ctx context.Context, qx repository.Tx, msg *model.Message) error
}

var _ repository.MessageRepository = (*MockMessageRepo)(nil)

func NewMockMessageRepo() *MockMessageRepo { return &MockMessageRepo{} }

func (m *MockMessageRepo) Insert(ctx context.Context, qx repository.Tx, msg *model.Message) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, qx, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *msg
	m.messages = append(m.messages, &cp)
	return nil
}

func (m *MockMessageRepo) ListByMatch(ctx context.Context, qx repository.Tx, matchID string, before string, limit int) ([]*model.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Message
	for _, msg := range m.messages {
		if msg.MatchID != matchID {
			continue
		}
		if before != "" && msg.ID >= before {
			continue
		}
		cp := *msg
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MockMessageRepo) MarkRead(ctx context.Context, qx repository.Tx, matchID, readerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, msg := range m.messages {
		if msg.MatchID == matchID && msg.SenderID != readerID && msg.ReadAt == nil {
			t := now
			msg.ReadAt = &t
		}
	}
	return nil
}

// ---- Mock NotificationRepository ----

type MockNotificationRepo struct {
	mu            sync.RWMutex
	notifications []*model.Notification

	InsertFunc func(ctx context.Context, qx repository.Tx, n *model.Notification) error
}

var _ repository.NotificationRepository = (*MockNotificationRepo)(nil)

func NewMockNotificationRepo() *MockNotificationRepo { return &MockNotificationRepo{} }

func (m *MockNotificationRepo) Insert(ctx context.Context, qx repository.Tx, n *model.Notification) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, qx, n)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	m.notifications = append(m.notifications, &cp)
	return nil
}

func (m *MockNotificationRepo) ListByUser(ctx context.Context, qx repository.Tx, userID string, unreadOnly bool, limit int) ([]*model.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.ReadAt != nil {
			continue
		}
		cp := *n
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MockNotificationRepo) MarkRead(ctx context.Context, qx repository.Tx, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.ID == id && n.UserID == userID {
			now := time.Now()
			n.ReadAt = &now
			return nil
		}
	}
	return domain.ErrNotFound
}

// ByUser returns stored notifications for a user without the read filter.
func (m *MockNotificationRepo) ByUser(userID string) []*model.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out
}

// =============================
// Adapters
// =============================

// ---- Mock PaymentGateway ----

type MockPaymentGateway struct {
	NameVal string

	InitializeTransactionFunc func(ctx context.Context, email string, amount int64, metadata map[string]any) (string, string, error)
	VerifyTransactionFunc     func(ctx context.Context, reference string) (adapter.ChargeStatus, error)
	CreateSubscriptionFunc    func(ctx context.Context, customerEmail, planCode string) (string, string, error)
	DisableSubscriptionFunc   func(ctx context.Context, subscriptionCode, emailToken string) error
}

var _ adapter.PaymentGateway = (*MockPaymentGateway)(nil)

func (m *MockPaymentGateway) Name() string {
	if m.NameVal != "" {
		return m.NameVal
	}
	return "mock"
}

func (m *MockPaymentGateway) InitializeTransaction(ctx context.Context, email string, amount int64, metadata map[string]any) (string, string, error) {
	if m.InitializeTransactionFunc != nil {
		return m.InitializeTransactionFunc(ctx, email, amount, metadata)
	}
	return "ref-mock", "https://checkout.example/ref-mock", nil
}

func (m *MockPaymentGateway) VerifyTransaction(ctx context.Context, reference string) (adapter.ChargeStatus, error) {
	if m.VerifyTransactionFunc != nil {
		return m.VerifyTransactionFunc(ctx, reference)
	}
	return adapter.ChargeStatus{Reference: reference, Status: "success", PaidAt: time.Now()}, nil
}

func (m *MockPaymentGateway) CreateSubscription(ctx context.Context, customerEmail, planCode string) (string, string, error) {
	if m.CreateSubscriptionFunc != nil {
		return m.CreateSubscriptionFunc(ctx, customerEmail, planCode)
	}
	return "SUB_mock", "token-mock", nil
}

func (m *MockPaymentGateway) DisableSubscription(ctx context.Context, subscriptionCode, emailToken string) error {
	if m.DisableSubscriptionFunc != nil {
		return m.DisableSubscriptionFunc(ctx, subscriptionCode, emailToken)
	}
	return nil
}

// ---- Mock ChatPusher / PresenceChecker ----

type MockPusher struct {
	mu     sync.Mutex
	Pushed map[string][]any // userID -> events
}

var _ adapter.ChatPusher = (*MockPusher)(nil)

func NewMockPusher() *MockPusher { return &MockPusher{Pushed: make(map[string][]any)} }

func (m *MockPusher) Push(userID string, event any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Pushed[userID] = append(m.Pushed[userID], event)
}

type MockPresence struct {
	OnlineUsers map[string]bool
}

var _ adapter.PresenceChecker = (*MockPresence)(nil)

func (m *MockPresence) IsOnline(ctx context.Context, userID string) (bool, error) {
	return m.OnlineUsers[userID], nil
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, qx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, qx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTx)
}
