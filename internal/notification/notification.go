// Package notification delivers push messages to users. Delivery is
// fire-and-forget: a stale device token or gateway outage must never fail
// the state transition that triggered the notification.
package notification

import "context"

// Sender is the push delivery boundary.
type Sender interface {
	Send(ctx context.Context, userID, title, body string, data map[string]string) error
}

// Noop discards all notifications.
type Noop struct{}

func (Noop) Send(context.Context, string, string, string, map[string]string) error {
	return nil
}

// Recorder captures notifications for tests.
type Recorder struct {
	Sent []Recorded
}

// Recorded is one captured notification.
type Recorded struct {
	UserID string
	Title  string
	Body   string
	Data   map[string]string
}

func (r *Recorder) Send(_ context.Context, userID, title, body string, data map[string]string) error {
	r.Sent = append(r.Sent, Recorded{UserID: userID, Title: title, Body: body, Data: data})
	return nil
}
