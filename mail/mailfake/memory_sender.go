package mailfake

import (
	"context"
	"sync"

	"github.com/jrsteele09/flow-client/mail"
	"github.com/pkg/errors"
)

var _ mail.Sender = (*MemorySender)(nil)

// Sent is one delivered code.
type Sent struct {
	Email   string
	Code    string
	Purpose string
}

// MemorySender keeps every code it is asked to send.
type MemorySender struct {
	sent []Sent
	fail error
	lock sync.Mutex
}

func NewMemorySender() *MemorySender {
	return &MemorySender{}
}

// FailWith makes subsequent sends return err. Pass nil to recover.
func (m *MemorySender) FailWith(err error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.fail = err
}

func (m *MemorySender) SendOTP(_ context.Context, toEmail, code, purpose string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.fail != nil {
		return errors.Wrap(m.fail, "[MemorySender.SendOTP]")
	}
	m.sent = append(m.sent, Sent{Email: toEmail, Code: code, Purpose: purpose})
	return nil
}

// LastCode returns the most recent code sent to email for purpose.
func (m *MemorySender) LastCode(email, purpose string) (string, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].Email == email && m.sent[i].Purpose == purpose {
			return m.sent[i].Code, true
		}
	}
	return "", false
}

func (m *MemorySender) Count() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return len(m.sent)
}
