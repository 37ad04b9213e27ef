package notify

import (
	"context"
	"encoding/json"

	"github.com/jobpilot/apiserver/internal/mailer"
	"github.com/jobpilot/apiserver/internal/mq"
	"github.com/sirupsen/logrus"
)

// Queue is the broker queue carrying outbound email envelopes.
const Queue = "notifications"

// Envelope is the wire form of a queued email.
type Envelope struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Dispatcher sends emails through the message broker when one is
// configured and falls back to direct delivery otherwise.
type Dispatcher struct {
	broker *mq.MQ
	sender mailer.Sender
}

// New constructs a Dispatcher. broker may be nil for direct delivery.
func New(broker *mq.MQ, sender mailer.Sender) *Dispatcher {
	return &Dispatcher{broker: broker, sender: sender}
}

// Send enqueues an email for delivery. With no broker configured the
// message is handed to the mail provider synchronously.
func (d *Dispatcher) Send(ctx context.Context, to, subject, body string) error {
	if d.broker == nil {
		return d.sender.Send(to, subject, body)
	}

	data, err := json.Marshal(Envelope{To: to, Subject: subject, Body: body})
	if err != nil {
		return err
	}

	id, err := d.broker.Publish(ctx, Queue, data, nil)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"message_id": id, "to": to}).Debug("notification enqueued")
	return nil
}

// Run consumes the notification queue and delivers each envelope until
// ctx is cancelled. It is a no-op without a broker.
func (d *Dispatcher) Run(ctx context.Context) error {
	if d.broker == nil {
		return nil
	}

	return d.broker.Subscribe(ctx, Queue, func(ctx context.Context, msg mq.Message) error {
		var env Envelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			// Drop malformed envelopes instead of redelivering them forever.
			logrus.WithField("message_id", msg.ID).WithError(err).Error("malformed notification envelope")
			return nil
		}
		if err := d.sender.Send(env.To, env.Subject, env.Body); err != nil {
			logrus.WithFields(logrus.Fields{"message_id": msg.ID, "to": env.To}).WithError(err).Error("notification delivery failed")
			return err
		}
		return nil
	})
}
