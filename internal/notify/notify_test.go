package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) Send(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

func TestSendWithoutBrokerDeliversDirectly(t *testing.T) {
	sender := &fakeSender{}
	dispatcher := New(nil, sender)

	err := dispatcher.Send(context.Background(), "a@example.com", "Hi", "Body")
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com"}, sender.sent)
}

func TestSendWithoutBrokerSurfacesError(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	dispatcher := New(nil, sender)

	err := dispatcher.Send(context.Background(), "a@example.com", "Hi", "Body")
	assert.Error(t, err)
}

func TestRunWithoutBrokerIsNoop(t *testing.T) {
	dispatcher := New(nil, &fakeSender{})
	assert.NoError(t, dispatcher.Run(context.Background()))
}
