package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
)

type Mailer interface {
	SendMail(ctx context.Context, to, subject, htmlBody string) error
}

type Charger interface {
	Charge(ctx context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error)
	Refund(ctx context.Context, chargeID string) error
	FindCharge(ctx context.Context, orderID string) (string, error)
}

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type ItemIndexer interface {
	IndexItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id string) error
	Search(ctx context.Context, query string, from, size int) (int64, []string, error)
}

func nowFrom(f func() time.Time) time.Time {
	if f == nil {
		return time.Now()
	}
	return f()
}
