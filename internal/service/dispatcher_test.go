package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"task-notifier/internal/model"
	"task-notifier/pkg/logger"
	"task-notifier/pkg/ratelimit"
	"task-notifier/pkg/render"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	To      string
	Subject string
	Body    string
}

type stubSender struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (s *stubSender) Send(ctx context.Context, to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentMessage{To: to, Subject: subject, Body: body})
	return nil
}

func newTestDispatcher(t *testing.T, sender *stubSender) NotificationDispatcher {
	t.Helper()
	registry, err := render.NewRegistry()
	require.NoError(t, err)

	dispatcher, err := NewNotificationDispatcher(testConfig(), logger.NewNop(), registry, sender, ratelimit.New(100, 100))
	require.NoError(t, err)
	return dispatcher
}

func TestDispatcher_SendsRenderedMessage(t *testing.T) {
	sender := &stubSender{}
	dispatcher := newTestDispatcher(t, sender)

	task := &model.PeriodicTask{ID: 42, Title: "Prepare release notes"}
	contact := model.User{ID: 1, FirstName: "Ana", LastName: "Bell", Email: "ana@example.com"}

	require.NoError(t, dispatcher.Dispatch(context.Background(), task, contact))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "ana@example.com", msg.To)
	assert.Equal(t, "Task reminder", msg.Subject)
	assert.Contains(t, msg.Body, "Hello Ana Bell")
	assert.Contains(t, msg.Body, "Prepare release notes")
	assert.Contains(t, msg.Body, "http://app.example.com/tasks/42")
}

func TestDispatcher_EscapesRecipientSuppliedText(t *testing.T) {
	sender := &stubSender{}
	dispatcher := newTestDispatcher(t, sender)

	task := &model.PeriodicTask{ID: 1, Title: `<script>alert("x")</script>`}
	contact := model.User{ID: 1, FirstName: "<b>Ana</b>", Email: "ana@example.com"}

	require.NoError(t, dispatcher.Dispatch(context.Background(), task, contact))

	require.Len(t, sender.sent, 1)
	assert.NotContains(t, sender.sent[0].Body, "<script>")
	assert.NotContains(t, sender.sent[0].Body, "<b>")
}

func TestDispatcher_ReturnsTransportError(t *testing.T) {
	sender := &stubSender{err: errors.New("gateway unavailable")}
	dispatcher := newTestDispatcher(t, sender)

	err := dispatcher.Dispatch(context.Background(), &model.PeriodicTask{ID: 1, Title: "T"}, model.User{ID: 1, Email: "ana@example.com"})
	assert.Error(t, err)
}

func TestDispatcher_RejectsRecipientWithoutAddress(t *testing.T) {
	sender := &stubSender{}
	dispatcher := newTestDispatcher(t, sender)

	err := dispatcher.Dispatch(context.Background(), &model.PeriodicTask{ID: 1, Title: "T"}, model.User{ID: 1})
	assert.Error(t, err)
	assert.Empty(t, sender.sent)
}
