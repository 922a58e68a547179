// Package notify implements the presence notifier capability. Notifiers
// broadcast "currently doing X" status to external services; every caller
// treats them as best-effort and must not fail a timer transition when a
// notifier errors.
package notify

import (
	"context"

	"github.com/gen2brain/beeep"

	"github.com/kirokuapp/kiroku/api"
	"github.com/kirokuapp/kiroku/internal/models"
)

// Session describes the activity being broadcast.
type Session struct {
	// Key identifies this presence session; generated per start.
	Key      string
	Activity models.ActivityRef
	Details  string
}

// Notifier broadcasts presence status. Both operations are asynchronous
// best-effort calls; failures are logged by the caller and swallowed.
type Notifier interface {
	Start(ctx context.Context, sess Session) error
	Stop(ctx context.Context, sess Session) error
}

// Presence broadcasts through the backend's Discord presence endpoints.
type Presence struct {
	client *api.Client
}

func NewPresence(client *api.Client) *Presence {
	return &Presence{client: client}
}

func (p *Presence) Start(ctx context.Context, sess Session) error {
	return p.client.StartPresence(ctx, api.PresenceStart{
		SessionID:    sess.Key,
		Group:        sess.Activity.Group,
		ActivityName: sess.Activity.Name,
		Details:      sess.Details,
		AssetKey:     sess.Activity.Asset,
	})
}

func (p *Presence) Stop(ctx context.Context, sess Session) error {
	return p.client.StopPresence(ctx, sess.Activity.Group)
}

// Desktop shows desktop notifications when tracking starts and stops.
type Desktop struct{}

func (Desktop) Start(_ context.Context, sess Session) error {
	return beeep.Notify("Tracking started", sess.Activity.Name, "")
}

func (Desktop) Stop(_ context.Context, sess Session) error {
	return beeep.Notify("Tracking stopped", sess.Activity.Name, "")
}

// Multi fans out to several notifiers, returning the first error after all
// of them have been attempted.
type Multi []Notifier

func (m Multi) Start(ctx context.Context, sess Session) error {
	var firstErr error

	for _, n := range m {
		if err := n.Start(ctx, sess); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func (m Multi) Stop(ctx context.Context, sess Session) error {
	var firstErr error

	for _, n := range m {
		if err := n.Stop(ctx, sess); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// Noop discards all notifications.
type Noop struct{}

func (Noop) Start(context.Context, Session) error { return nil }

func (Noop) Stop(context.Context, Session) error { return nil }
