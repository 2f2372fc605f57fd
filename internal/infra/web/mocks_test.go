//go:build !integration

package web_test

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"

	"heartlink/internal/domain"
	"heartlink/internal/domain/model"
	"heartlink/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// ---- Mock use cases ----

type MockAuthUC struct {
	RegisterFunc func(ctx context.Context, in usecase.RegisterInput) (*model.User, error)
	LoginFunc    func(ctx context.Context, email, password string) (*model.User, error)
}

var _ usecase.AuthUseCase = (*MockAuthUC)(nil)

func (m *MockAuthUC) Register(ctx context.Context, in usecase.RegisterInput) (*model.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, in)
	}
	return &model.User{ID: "user-1", Email: in.Email, Name: in.Name, Birthdate: in.Birthdate}, nil
}

func (m *MockAuthUC) Login(ctx context.Context, email, password string) (*model.User, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return &model.User{ID: "user-1", Email: email, Birthdate: time.Now().AddDate(-25, 0, 0)}, nil
}

type MockPaymentUC struct {
	InitializeChatAccessFunc func(ctx context.Context, userID string, amount int64, planType model.PlanType) (*model.PaymentTransaction, string, error)
	VerifyByReferenceFunc    func(ctx context.Context, reference string) (bool, error)
	ChatAccessFunc           func(ctx context.Context, userID string) (usecase.AccessStatus, error)
}

var _ usecase.PaymentUseCase = (*MockPaymentUC)(nil)

func (m *MockPaymentUC) InitializeChatAccess(ctx context.Context, userID string, amount int64, planType model.PlanType) (*model.PaymentTransaction, string, error) {
	if m.InitializeChatAccessFunc != nil {
		return m.InitializeChatAccessFunc(ctx, userID, amount, planType)
	}
	txn := &model.PaymentTransaction{ID: "txn-1", UserID: userID, Reference: "ref-1", Amount: amount, Status: model.TransactionStatusPending}
	return txn, "https://checkout.example/ref-1", nil
}

func (m *MockPaymentUC) VerifyByReference(ctx context.Context, reference string) (bool, error) {
	if m.VerifyByReferenceFunc != nil {
		return m.VerifyByReferenceFunc(ctx, reference)
	}
	return true, nil
}

func (m *MockPaymentUC) ChatAccess(ctx context.Context, userID string) (usecase.AccessStatus, error) {
	if m.ChatAccessFunc != nil {
		return m.ChatAccessFunc(ctx, userID)
	}
	return usecase.AccessStatus{HasAccess: true}, nil
}

type MockOrderUC struct {
	CreateFunc func(ctx context.Context, userID string, amount int64, id string, metadata map[string]interface{}) (*model.Order, error)
}

var _ usecase.OrderUseCase = (*MockOrderUC)(nil)

func (m *MockOrderUC) Create(ctx context.Context, userID string, amount int64, id string, metadata map[string]interface{}) (*model.Order, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, amount, id, metadata)
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if id == "" {
		id = "order_generated"
	}
	return &model.Order{ID: id, UserID: userID, Amount: amount, Status: model.OrderStatusPending, CreatedAt: time.Now()}, nil
}

func (m *MockOrderUC) ListByUser(ctx context.Context, userID string, limit int) ([]*model.Order, error) {
	return nil, nil
}

type MockWebhookUC struct {
	ChargeCalls int

	HandleChargeSuccessFunc     func(ctx context.Context, reference, gatewayTxnID, channel string, paidAt time.Time) (usecase.WebhookOutcome, error)
	HandleSubscriptionEventFunc func(ctx context.Context, event, subscriptionCode string, periodEnd *time.Time) (usecase.WebhookOutcome, error)
}

var _ usecase.WebhookUseCase = (*MockWebhookUC)(nil)

func (m *MockWebhookUC) HandleChargeSuccess(ctx context.Context, reference, gatewayTxnID, channel string, paidAt time.Time) (usecase.WebhookOutcome, error) {
	m.ChargeCalls++
	if m.HandleChargeSuccessFunc != nil {
		return m.HandleChargeSuccessFunc(ctx, reference, gatewayTxnID, channel, paidAt)
	}
	return usecase.WebhookApplied, nil
}

func (m *MockWebhookUC) HandleSubscriptionEvent(ctx context.Context, event, subscriptionCode string, periodEnd *time.Time) (usecase.WebhookOutcome, error) {
	if m.HandleSubscriptionEventFunc != nil {
		return m.HandleSubscriptionEventFunc(ctx, event, subscriptionCode, periodEnd)
	}
	return usecase.WebhookApplied, nil
}

type MockMatchUC struct {
	SwipeFunc func(ctx context.Context, swiperID, targetID string, direction model.SwipeDirection) (usecase.SwipeResult, error)
}

var _ usecase.MatchUseCase = (*MockMatchUC)(nil)

func (m *MockMatchUC) Discover(ctx context.Context, userID string, limit int) ([]*model.User, error) {
	return nil, nil
}

func (m *MockMatchUC) Swipe(ctx context.Context, swiperID, targetID string, direction model.SwipeDirection) (usecase.SwipeResult, error) {
	if m.SwipeFunc != nil {
		return m.SwipeFunc(ctx, swiperID, targetID, direction)
	}
	return usecase.SwipeResult{}, nil
}

func (m *MockMatchUC) ListMatches(ctx context.Context, userID string) ([]*model.Match, error) {
	return nil, nil
}

func (m *MockMatchUC) FindMatch(ctx context.Context, matchID string) (*model.Match, error) {
	return nil, domain.ErrNotFound
}

type MockChatUC struct {
	SendMessageFunc func(ctx context.Context, matchID, senderID, body string) (*model.Message, error)
}

var _ usecase.ChatUseCase = (*MockChatUC)(nil)

func (m *MockChatUC) ListMessages(ctx context.Context, matchID, userID, before string, limit int) ([]*model.Message, error) {
	return nil, nil
}

func (m *MockChatUC) SendMessage(ctx context.Context, matchID, senderID, body string) (*model.Message, error) {
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, matchID, senderID, body)
	}
	return &model.Message{ID: "msg-1", MatchID: matchID, SenderID: senderID, Body: body, CreatedAt: time.Now()}, nil
}

type MockNotifUC struct{}

var _ usecase.NotificationUseCase = (*MockNotifUC)(nil)

func (m *MockNotifUC) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*model.Notification, error) {
	return nil, nil
}

func (m *MockNotifUC) MarkRead(ctx context.Context, id, userID string) error { return nil }

type MockSubUC struct{}

var _ usecase.SubscriptionUseCase = (*MockSubUC)(nil)

func (m *MockSubUC) ListPlans(ctx context.Context) ([]*model.SubscriptionPlan, error) {
	return nil, nil
}

func (m *MockSubUC) Subscribe(ctx context.Context, userID, planID string) (*model.Subscription, error) {
	return &model.Subscription{ID: "sub-1", UserID: userID, PlanID: planID, Status: model.SubscriptionStatusActive}, nil
}

func (m *MockSubUC) Cancel(ctx context.Context, userID string) error { return nil }
