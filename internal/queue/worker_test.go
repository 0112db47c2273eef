// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/content-engine/pkg/types"
)

type sent struct {
	url string
	msg any
}

type fakeQueue struct {
	mu         sync.Mutex
	batches    [][]Message
	receiveErr error
	sendErr    error
	sent       []sent
	deleted    []string
}

func (f *fakeQueue) Receive(ctx context.Context, _ string) ([]Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.receiveErr != nil {
		return nil, f.receiveErr
	}
	if len(f.batches) == 0 {
		return nil, nil
	}
	b := f.batches[0]
	f.batches = f.batches[1:]
	return b, nil
}

func (f *fakeQueue) Delete(_ context.Context, _, handle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, handle)
	return nil
}

func (f *fakeQueue) Send(_ context.Context, url string, msg any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sent{url, msg})
	return nil
}

type fakeGenerator struct {
	prefs []types.Preferences
	err   error
}

func (f *fakeGenerator) Generate(_ context.Context, req types.ContentRequest) (*types.ContentEnvelope, error) {
	f.prefs = append(f.prefs, req.Preferences())
	if f.err != nil {
		return nil, f.err
	}
	return &types.ContentEnvelope{
		Title:    "Guide to " + req.Topic(),
		Stats:    types.Stats{WordCount: 900},
		Metadata: req.Metadata(),
	}, nil
}

type fakeArchive struct{ saved []string }

func (f *fakeArchive) Save(_ context.Context, env *types.ContentEnvelope) (string, error) {
	f.saved = append(f.saved, env.Title)
	return "id", nil
}

func TestProcessBatch(t *testing.T) {
	q := &fakeQueue{batches: [][]Message{{
		{ID: "m-1", Body: `{"topic":"solar power"}`, ReceiptHandle: "h-1"},
		{ID: "m-2", Body: `{"topic":"wind","preferences":{"tone":"formal","fact_check_level":"basic"}}`, ReceiptHandle: "h-2"},
	}}}
	gen := &fakeGenerator{}
	arch := &fakeArchive{}
	w := &Worker{
		Queue: q, InputURL: "in", OutputURL: "out",
		Generator: gen, Archive: arch,
		Preferences: types.DefaultPreferences(),
		Log:         zerolog.Nop(),
	}

	n, err := w.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"h-1", "h-2"}, q.deleted)
	assert.Equal(t, []string{"Guide to solar power", "Guide to wind"}, arch.saved)

	require.Len(t, q.sent, 2)
	first := q.sent[0].msg.(Result)
	assert.Equal(t, "out", q.sent[0].url)
	assert.Equal(t, StatusOK, first.Status)
	assert.Equal(t, "m-1", first.MessageID)
	assert.Equal(t, "Guide to solar power", first.Envelope.Title)

	assert.Equal(t, "professional", gen.prefs[0].Tone, "worker defaults")
	assert.Equal(t, "formal", gen.prefs[1].Tone, "job preferences")
	assert.Equal(t, types.FactCheckBasic, gen.prefs[1].FactCheckLevel)
}

func TestProcessBatchFailures(t *testing.T) {
	q := &fakeQueue{batches: [][]Message{{
		{ID: "bad-json", Body: `{topic`, ReceiptHandle: "h-1"},
		{ID: "no-topic", Body: `{"topic":"  "}`, ReceiptHandle: "h-2"},
		{ID: "gen-fail", Body: `{"topic":"solar"}`, ReceiptHandle: "h-3"},
	}}}
	w := &Worker{
		Queue: q, InputURL: "in", OutputURL: "out",
		Generator: &fakeGenerator{err: errors.New("RESEARCH: quality gate")},
		Log:       zerolog.Nop(),
	}

	n, err := w.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n, "failed jobs are answered and removed")
	require.Len(t, q.sent, 3)
	for _, s := range q.sent {
		res := s.msg.(Result)
		assert.Equal(t, StatusFailed, res.Status, res.MessageID)
		assert.NotEmpty(t, res.Error)
		assert.Nil(t, res.Envelope)
	}
	assert.Contains(t, q.sent[0].msg.(Result).Error, "decoding job")
	assert.Contains(t, q.sent[1].msg.(Result).Error, "topic is empty")
	assert.Equal(t, "solar", q.sent[2].msg.(Result).Topic)
}

func TestProcessBatchKeepsMessageWhenPublishFails(t *testing.T) {
	q := &fakeQueue{
		batches: [][]Message{{{ID: "m-1", Body: `{"topic":"solar"}`, ReceiptHandle: "h-1"}}},
		sendErr: errors.New("throttled"),
	}
	w := &Worker{Queue: q, InputURL: "in", OutputURL: "out", Generator: &fakeGenerator{}, Log: zerolog.Nop()}

	n, err := w.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, q.deleted)
}

func TestProcessBatchWithoutOutputQueue(t *testing.T) {
	q := &fakeQueue{batches: [][]Message{{{ID: "m-1", Body: `{"topic":"solar"}`, ReceiptHandle: "h-1"}}}}
	w := &Worker{Queue: q, InputURL: "in", Generator: &fakeGenerator{}, Log: zerolog.Nop()}

	n, err := w.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, q.sent)
}

func TestProcessBatchReceiveError(t *testing.T) {
	q := &fakeQueue{receiveErr: errors.New("network down")}
	w := &Worker{Queue: q, InputURL: "in", Generator: &fakeGenerator{}, Log: zerolog.Nop()}

	_, err := w.ProcessBatch(context.Background())
	assert.ErrorContains(t, err, "network down")
}

func TestRunStopsOnCancel(t *testing.T) {
	orig := ReceiveBackoff
	ReceiveBackoff = time.Millisecond
	defer func() { ReceiveBackoff = orig }()

	q := &fakeQueue{receiveErr: errors.New("network down")}
	w := &Worker{Queue: q, InputURL: "in", Generator: &fakeGenerator{}, Log: zerolog.Nop()}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := w.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
