// Package sms is the outbound SMS transport. The dispatcher decides
// whether and what to send; this package only moves a message to the
// provider and reports the provider's message id.
package sms

import "context"

// Credentials are tenant-scoped: every tenant brings its own provider
// key and sender id.
type Credentials struct {
	APIKey   string
	SenderID string
}

type Provider interface {
	Send(ctx context.Context, creds Credentials, msisdn, text string) (messageID string, err error)
}

// NoOpProvider accepts every message without sending anything. Used in
// development setups without provider credentials.
type NoOpProvider struct{}

func (NoOpProvider) Send(ctx context.Context, creds Credentials, msisdn, text string) (string, error) {
	return "noop", nil
}
