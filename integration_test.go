package zlink_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zlink-protocol/zlink-go/internal/enginetest"
	"github.com/zlink-protocol/zlink-go/pkg/config"
	"github.com/zlink-protocol/zlink-go/pkg/encoding"
	"github.com/zlink-protocol/zlink-go/pkg/keyexpr"
	"github.com/zlink-protocol/zlink-go/pkg/qos"
	"github.com/zlink-protocol/zlink-go/pkg/sample"
	"github.com/zlink-protocol/zlink-go/pkg/session"
)

// TestPublishQueryLifecycle walks the full application surface once: open
// a session, declare a publisher and a queryable, publish with structured
// attachment metadata, answer a query, then tear everything down and
// verify the resources became unusable.
func TestPublishQueryLifecycle(t *testing.T) {
	eng := enginetest.New()
	s, err := session.Open(eng, config.Default())
	require.NoError(t, err)

	ke := keyexpr.MustNew("demo/sensors/temperature")

	// Publisher with explicit QoS and a CBOR attachment.
	pub, err := s.DeclarePublisher(ke).
		QoS(qos.NewBuilder().Priority(qos.PriorityDataHigh).Build()).
		Encoding(encoding.TextPlain).
		Res()
	require.NoError(t, err)

	att, err := sample.EncodeAttachment(map[string][]byte{"unit": []byte("celsius")})
	require.NoError(t, err)

	require.NoError(t, pub.Put([]byte("21.5")).Attachment(att).Res())

	puts := eng.Puts()
	require.Len(t, puts, 1)
	decoded, err := sample.DecodeAttachment(puts[0].Attachment)
	require.NoError(t, err)
	assert.Equal(t, []byte("celsius"), decoded["unit"])

	// Queryable answering with the last published value.
	_, err = s.DeclareQueryable(ke, func(q *session.Query) {
		err := q.Reply(q.KeyExpr(), []byte("21.5"), sample.KindPut).
			Encoding(encoding.TextPlain).
			Timestamp(time.Now()).
			Res()
		assert.NoError(t, err)
	}).Complete(true).Res()
	require.NoError(t, err)

	replies := eng.Query(ke, enginetest.QueryOptions{Payload: []byte("latest")}, 2*time.Second)
	require.Len(t, replies, 1)
	got, ok := replies[0].OK()
	require.True(t, ok)
	assert.Equal(t, []byte("21.5"), got.Payload)
	assert.Equal(t, eng.ReplierID, replies[0].ReplierID())

	// Teardown cascades and invalidates everything.
	require.NoError(t, s.Close())
	assert.False(t, pub.IsValid())
	assert.ErrorIs(t, pub.Put([]byte("22.0")).Res(), session.ErrPublisherClosed)
	assert.Equal(t, 0, eng.ActivePublishers())
	assert.Equal(t, 0, eng.ActiveQueryables())
	assert.True(t, eng.IsClosed())
}
