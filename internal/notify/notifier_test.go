package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notifierFunc func(ctx context.Context, event Event) error

func (f notifierFunc) Notify(ctx context.Context, event Event) error { return f(ctx, event) }

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	err := NewLogNotifier(logger).Notify(context.Background(), Event{Type: EventLoanDelinquent, LoanID: "LOAN-1"})
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "loan.delinquent", entry["event"])
	assert.Equal(t, "LOAN-1", entry["loan_id"])
}

func TestRedisPublisher(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	ctx := context.Background()

	sub := client.Subscribe(ctx, "lending.events")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	event := Event{
		Type:        EventRouteClosed,
		OccurredAt:  time.Date(2024, 2, 1, 18, 0, 0, 0, time.UTC),
		CollectorID: "C1",
	}
	require.NoError(t, NewRedisPublisher(client, "lending.events").Notify(ctx, event))

	select {
	case msg := <-sub.Channel():
		var got Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, EventRouteClosed, got.Type)
		assert.Equal(t, "C1", got.CollectorID)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not published")
	}
}

func TestMulti(t *testing.T) {
	var calls []string
	failing := errors.New("channel down")

	m := Multi{
		notifierFunc(func(context.Context, Event) error { calls = append(calls, "a"); return nil }),
		notifierFunc(func(context.Context, Event) error { calls = append(calls, "b"); return failing }),
		notifierFunc(func(context.Context, Event) error { calls = append(calls, "c"); return nil }),
	}

	err := m.Notify(context.Background(), Event{Type: EventPaymentCollected})
	assert.ErrorIs(t, err, failing)
	assert.Equal(t, []string{"a", "b", "c"}, calls)

	assert.NoError(t, Multi{}.Notify(context.Background(), Event{}))
}
