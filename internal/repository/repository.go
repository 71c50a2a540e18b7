// Package repository declares the storage contracts the service layer depends on.
package repository

import (
	"context"

	"github.com/sakif/mailinglist/internal/model"
)

// SubscriberRepository is the durable table of subscribers.
//
// Insert must reject a duplicate email atomically with the write and return an
// error wrapping apperror.ErrConflict. It sets subscriber.ID on success.
type SubscriberRepository interface {
	Insert(ctx context.Context, subscriber *model.Subscriber) error
	ListEmailsByInterest(ctx context.Context, interest model.Interest) ([]string, error)
	Ping(ctx context.Context) error
}
