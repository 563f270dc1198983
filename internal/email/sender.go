package email

import (
	"context"
	"errors"
)

// Sender define los correos que dispara el ciclo de vida de una cuenta.
type Sender interface {
	SendRegister(ctx context.Context, name, toEmail, tempPassword string) error
	SendForgotPassword(ctx context.Context, name, toEmail, tempPassword string) error
	SendPasswordSet(ctx context.Context, name, toEmail string) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) err() error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}

func (s *disabledSender) SendRegister(_ context.Context, _, _, _ string) error {
	return s.err()
}

func (s *disabledSender) SendForgotPassword(_ context.Context, _, _, _ string) error {
	return s.err()
}

func (s *disabledSender) SendPasswordSet(_ context.Context, _, _ string) error {
	return s.err()
}
