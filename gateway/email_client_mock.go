package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"shijia/entity"
)

type EmailSenderMock struct {
	lock sync.Mutex

	Sent     []entity.EmailMessage
	FailNext bool
}

func (c *EmailSenderMock) Send(_ context.Context, message entity.EmailMessage) (string, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.FailNext {
		c.FailNext = false
		return "", errors.New("mocked send failure")
	}

	c.Sent = append(c.Sent, message)
	return fmt.Sprintf("mocked-message-%d", len(c.Sent)), nil
}

func (c *EmailSenderMock) SentMessages() []entity.EmailMessage {
	c.lock.Lock()
	defer c.lock.Unlock()

	out := make([]entity.EmailMessage, len(c.Sent))
	copy(out, c.Sent)
	return out
}
