package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/glebarez/sqlite"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func InitTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

type sentMail struct {
	To, Subject, Body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendMail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

type fakeCharger struct {
	mu       sync.Mutex
	charges  []payment.ChargeRequest
	refunds  []string
	chargeFn func(req payment.ChargeRequest) (*payment.ChargeResult, error)
	// byOrder answers FindCharge; findErr fails it.
	byOrder map[string]string
	findErr error
}

func (c *fakeCharger) Charge(_ context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.charges = append(c.charges, req)
	if c.chargeFn != nil {
		return c.chargeFn(req)
	}
	return &payment.ChargeResult{ID: "ch_test", Amount: req.Amount, Currency: req.Currency, Paid: true}, nil
}

func (c *fakeCharger) Refund(_ context.Context, chargeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refunds = append(c.refunds, chargeID)
	return nil
}

func (c *fakeCharger) FindCharge(_ context.Context, orderID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.findErr != nil {
		return "", c.findErr
	}
	return c.byOrder[orderID], nil
}

type publishedEvent struct {
	Topic, Key string
	Event      map[string]any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, _ := event.(map[string]any)
	p.events = append(p.events, publishedEvent{Topic: topic, Key: key, Event: m})
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		t, _ := e.Event["type"].(string)
		out = append(out, t)
	}
	return out
}

var errBoom = errors.New("boom")

func seedUser(t *testing.T, r *repo.GormRepo, email string, perms ...string) *models.User {
	t.Helper()
	if len(perms) == 0 {
		perms = []string{"USER"}
	}
	pw, err := hash.HashPassword("secret")
	require.NoError(t, err)
	u := &models.User{Email: email, Name: "Test", Password: pw, Permissions: pq.StringArray(perms)}
	require.NoError(t, r.CreateUserIfNotExists(context.Background(), u))
	return u
}

func seedItem(t *testing.T, r *repo.GormRepo, owner *models.User, title string, price int64) *models.Item {
	t.Helper()
	it, err := r.CreateItem(context.Background(), &models.Item{
		Title: title, Description: title + " description", Price: price, UserID: owner.ID,
	})
	require.NoError(t, err)
	return it
}
