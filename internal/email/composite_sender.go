package email

import (
	"context"
	"fmt"
	"strings"
)

// CompositeSender fans a message out to every configured sender, e.g. SMTP
// plus a file audit trail. Errors are collected rather than short-circuited
// so one failing sink does not block the others.
type CompositeSender struct {
	senders []Sender
}

func NewCompositeSender(senders ...Sender) *CompositeSender {
	return &CompositeSender{senders: senders}
}

func (cs *CompositeSender) AddSender(sender Sender) {
	if sender != nil {
		cs.senders = append(cs.senders, sender)
	}
}

func (cs *CompositeSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	if len(cs.senders) == 0 {
		return fmt.Errorf("no senders configured")
	}

	var failures []string
	for _, sender := range cs.senders {
		if err := sender.Send(ctx, to, subject, rawMessage); err != nil {
			failures = append(failures, err.Error())
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("composite email send failed: [ %s ]", strings.Join(failures, "; "))
	}
	return nil
}
