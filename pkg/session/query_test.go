package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zlink-protocol/zlink-go/internal/enginetest"
	"github.com/zlink-protocol/zlink-go/pkg/encoding"
	"github.com/zlink-protocol/zlink-go/pkg/keyexpr"
	"github.com/zlink-protocol/zlink-go/pkg/qos"
	"github.com/zlink-protocol/zlink-go/pkg/sample"
)

const queryTimeout = 2 * time.Second

func TestQueryReplySuccessEndToEnd(t *testing.T) {
	s, eng := openTestSession(t)
	ke := keyexpr.MustNew("demo/test")

	_, err := s.DeclareQueryable(ke, func(q *Query) {
		err := q.Reply(q.KeyExpr(), []byte("42"), sample.KindPut).
			Encoding(encoding.TextPlain).
			Res()
		assert.NoError(t, err)
	}).Res()
	require.NoError(t, err)

	replies := eng.Query(ke, enginetest.QueryOptions{}, queryTimeout)
	require.Len(t, replies, 1)

	got, ok := replies[0].OK()
	require.True(t, ok, "reply should be the success variant")
	assert.Equal(t, "demo/test", got.KeyExpr.String())
	assert.Equal(t, []byte("42"), got.Payload)
	assert.Equal(t, sample.KindPut, got.Kind)
	assert.True(t, got.Encoding.Equal(encoding.TextPlain))
	// The engine, not the application, stamps the replier id.
	assert.Equal(t, eng.ReplierID, replies[0].ReplierID())
}

func TestQueryReplyErr(t *testing.T) {
	s, eng := openTestSession(t)
	ke := keyexpr.MustNew("demo/test")

	_, err := s.DeclareQueryable(ke, func(q *Query) {
		assert.NoError(t, q.ReplyErr([]byte("no such key"), encoding.TextPlain).Res())
	}).Res()
	require.NoError(t, err)

	replies := eng.Query(ke, enginetest.QueryOptions{}, queryTimeout)
	require.Len(t, replies, 1)

	re, ok := replies[0].Err()
	require.True(t, ok, "reply should be the error variant")
	assert.Equal(t, []byte("no such key"), re.Payload)
	assert.True(t, re.Encoding.Equal(encoding.TextPlain))
}

func TestQueryCarriesBody(t *testing.T) {
	s, eng := openTestSession(t)
	ke := keyexpr.MustNew("demo/test")

	bodies := make(chan []byte, 1)
	_, err := s.DeclareQueryable(ke, func(q *Query) {
		bodies <- q.Payload()
		assert.Equal(t, []byte{0x0a}, q.Attachment())
		assert.True(t, q.PayloadEncoding().Equal(encoding.ApplicationJSON))
		_ = q.Reply(ke, nil, sample.KindPut).Res()
	}).Res()
	require.NoError(t, err)

	eng.Query(ke, enginetest.QueryOptions{
		Payload:    []byte(`{"max":10}`),
		Encoding:   encoding.ApplicationJSON,
		Attachment: []byte{0x0a},
	}, queryTimeout)

	select {
	case body := <-bodies:
		assert.Equal(t, []byte(`{"max":10}`), body)
	case <-time.After(queryTimeout):
		t.Fatal("handler was never invoked")
	}
}

func TestSecondReplyFailsWithAlreadyReplied(t *testing.T) {
	s, eng := openTestSession(t)
	ke := keyexpr.MustNew("demo/test")

	secondErr := make(chan error, 1)
	_, err := s.DeclareQueryable(ke, func(q *Query) {
		assert.NoError(t, q.Reply(ke, []byte("42"), sample.KindPut).Res())
		// A fresh builder from the same query must hit the consumed slot.
		secondErr <- q.Reply(ke, []byte("43"), sample.KindPut).Res()
	}).Res()
	require.NoError(t, err)

	eng.Query(ke, enginetest.QueryOptions{}, queryTimeout)

	select {
	case err := <-secondErr:
		assert.ErrorIs(t, err, ErrAlreadyReplied)
	case <-time.After(queryTimeout):
		t.Fatal("handler was never invoked")
	}
	assert.Len(t, eng.Replies(), 1)
}

func TestMixedVariantSecondReplyAlsoFails(t *testing.T) {
	s, eng := openTestSession(t)
	ke := keyexpr.MustNew("demo/test")

	secondErr := make(chan error, 1)
	_, err := s.DeclareQueryable(ke, func(q *Query) {
		assert.NoError(t, q.ReplyErr([]byte("boom"), encoding.TextPlain).Res())
		secondErr <- q.Reply(ke, []byte("42"), sample.KindPut).Res()
	}).Res()
	require.NoError(t, err)

	eng.Query(ke, enginetest.QueryOptions{}, queryTimeout)

	select {
	case err := <-secondErr:
		assert.ErrorIs(t, err, ErrAlreadyReplied)
	case <-time.After(queryTimeout):
		t.Fatal("handler was never invoked")
	}
}

func TestReplyBuilderOptionsFlowIntoSample(t *testing.T) {
	s, eng := openTestSession(t)
	ke := keyexpr.MustNew("demo/test")

	ts := time.Unix(1700000000, 0).UTC()
	att := []byte("meta")
	_, err := s.DeclareQueryable(ke, func(q *Query) {
		err := q.Reply(ke, []byte("v"), sample.KindDelete).
			Timestamp(ts).
			Attachment(att).
			Express(true).
			Priority(qos.PriorityRealTime).
			CongestionControl(qos.CongestionControlBlock).
			Res()
		assert.NoError(t, err)
	}).Res()
	require.NoError(t, err)

	replies := eng.Query(ke, enginetest.QueryOptions{}, queryTimeout)
	require.Len(t, replies, 1)

	got, ok := replies[0].OK()
	require.True(t, ok)
	assert.Equal(t, sample.KindDelete, got.Kind)
	assert.True(t, got.Timestamp.Equal(ts))
	assert.Equal(t, att, got.Attachment)
	assert.True(t, got.QoS.Express())
	assert.Equal(t, qos.PriorityRealTime, got.QoS.Priority())
	assert.Equal(t, qos.CongestionControlBlock, got.QoS.CongestionControl())
}

func TestReplyAfterSessionCloseFails(t *testing.T) {
	s, eng := openTestSession(t)
	ke := keyexpr.MustNew("demo/test")

	queries := make(chan *Query, 1)
	_, err := s.DeclareQueryable(ke, func(q *Query) {
		queries <- q
	}).Res()
	require.NoError(t, err)

	eng.Query(ke, enginetest.QueryOptions{}, 100*time.Millisecond)

	var q *Query
	select {
	case q = <-queries:
	case <-time.After(queryTimeout):
		t.Fatal("handler was never invoked")
	}

	require.NoError(t, s.Close())

	err = q.Reply(ke, []byte("too late"), sample.KindPut).Res()
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestReplyEngineErrorPropagates(t *testing.T) {
	s, eng := openTestSession(t)
	ke := keyexpr.MustNew("demo/test")

	engineErr := errors.New("requester gone")
	eng.ReplyErr = engineErr

	replyErr := make(chan error, 1)
	_, err := s.DeclareQueryable(ke, func(q *Query) {
		replyErr <- q.Reply(ke, []byte("42"), sample.KindPut).Res()
	}).Res()
	require.NoError(t, err)

	eng.Query(ke, enginetest.QueryOptions{}, 100*time.Millisecond)

	select {
	case err := <-replyErr:
		assert.ErrorIs(t, err, engineErr)
	case <-time.After(queryTimeout):
		t.Fatal("handler was never invoked")
	}
}

func TestUndeclaredQueryableReceivesNoQueries(t *testing.T) {
	s, eng := openTestSession(t)
	ke := keyexpr.MustNew("demo/test")

	invoked := make(chan struct{}, 1)
	q, err := s.DeclareQueryable(ke, func(query *Query) {
		invoked <- struct{}{}
		_ = query.Reply(ke, nil, sample.KindPut).Res()
	}).Res()
	require.NoError(t, err)

	require.NoError(t, q.Undeclare())
	require.NoError(t, q.Undeclare())

	replies := eng.Query(ke, enginetest.QueryOptions{}, 200*time.Millisecond)
	assert.Empty(t, replies)
	select {
	case <-invoked:
		t.Fatal("handler invoked after undeclare")
	default:
	}
}

func TestQueryableCompleteFlag(t *testing.T) {
	s, _ := openTestSession(t)

	q, err := s.DeclareQueryable(keyexpr.MustNew("demo/test"), func(*Query) {}).
		Complete(true).
		Res()
	require.NoError(t, err)

	assert.True(t, q.Complete())
}

func TestDeclareQueryableNilHandlerFails(t *testing.T) {
	s, _ := openTestSession(t)

	_, err := s.DeclareQueryable(keyexpr.MustNew("demo/test"), nil).Res()
	assert.ErrorIs(t, err, ErrNilHandler)
}
