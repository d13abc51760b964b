package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed []int64
	closed    bool
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	if len(f.msgs) > 0 {
		m := f.msgs[0]
		f.msgs = f.msgs[1:]
		f.mu.Unlock()
		return m, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

func (f *fakeReader) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

type recordingHandler struct {
	mu   sync.Mutex
	got  []string
	done chan struct{}
	want int
}

func (h *recordingHandler) HandleMessage(_ context.Context, message []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.got = append(h.got, string(message))
	if len(h.got) == h.want {
		close(h.done)
	}
	if string(message) == "bad" {
		return errors.New("boom")
	}
	return nil
}

func TestKafkaConsumer_ListenCommitsEveryMessage(t *testing.T) {
	reader := &fakeReader{msgs: []kafka.Message{
		{Offset: 1, Value: []byte("one")},
		{Offset: 2, Value: []byte("bad")},
		{Offset: 3, Value: []byte("three")},
	}}
	handler := &recordingHandler{done: make(chan struct{}), want: 3}
	kc := &KafkaConsumer{Reader: reader, Handler: handler, ServiceName: "test"}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- kc.Listen(ctx) }()

	select {
	case <-handler.done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not receive all messages")
	}
	cancel()
	require.NoError(t, <-errCh)

	assert.Equal(t, []string{"one", "bad", "three"}, handler.got)
	reader.mu.Lock()
	defer reader.mu.Unlock()
	assert.Equal(t, []int64{1, 2, 3}, reader.committed)
	assert.True(t, reader.closed)
}

func TestProducer_NilIsNoop(t *testing.T) {
	p := NewProducer("", "", "", "")
	assert.Nil(t, p)
	assert.NoError(t, p.PublishMessage([]byte("k"), []byte("v")))
	assert.NoError(t, p.Close())
}
