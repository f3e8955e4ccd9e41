// Package session implements the session-scoped resource lifecycle and
// the query/reply protocol on top of an engine.
//
// # Resource Lifecycle
//
// Every declared resource (Publisher, Queryable) moves through two
// states: declared (engine handle present) and undeclared (handle
// absent, terminal). Undeclare releases the handle exactly once and is
// idempotent; any data operation after it fails with the resource's
// closed error instead of touching the engine. Session.Close cascades
// undeclare to every live resource before releasing the engine.
//
// A finalizer-based safety net reclaims resources that were abandoned
// without Undeclare. It is best-effort and not timely; deterministic
// release via Undeclare/Close is the primary mechanism.
//
// # Declaring and Publishing
//
//	s, err := session.Open(eng, config.Default())
//	ke := keyexpr.MustNew("demo/test")
//
//	pub, err := s.DeclarePublisher(ke).
//	    QoS(qos.NewBuilder().Priority(qos.PriorityDataHigh).Build()).
//	    Res()
//
//	err = pub.Put([]byte("hello")).
//	    Encoding(encoding.TextPlain).
//	    Res()
//
//	err = pub.Undeclare()
//
// # Queries and Replies
//
// A queryable handler receives each inbound query on an engine
// goroutine and answers it through variant-specific reply builders:
//
//	qry, err := s.DeclareQueryable(ke, func(q *session.Query) {
//	    err := q.Reply(q.KeyExpr(), []byte("42"), sample.KindPut).Res()
//	    // or: q.ReplyErr([]byte("no data"), encoding.TextPlain).Res()
//	}).Res()
//
// Exactly one reply is allowed per query; the second Res attempt on the
// same query fails with ErrAlreadyReplied.
package session
