// Command zlink-demo runs an interactive publish/query session against an
// in-process engine.
//
// It declares one publisher and one queryable on a shared key expression,
// stores the last put value, and serves it back to queries:
//
//	go run ./cmd/zlink-demo
//
//	zlink> put hello
//	zlink> get
//	zlink> delete
//	zlink> quit
//
// The in-process engine records all traffic, so this binary doubles as a
// quick sanity tour of the declare / put / query / reply API.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"github.com/zlink-protocol/zlink-go/internal/enginetest"
	"github.com/zlink-protocol/zlink-go/pkg/config"
	"github.com/zlink-protocol/zlink-go/pkg/encoding"
	"github.com/zlink-protocol/zlink-go/pkg/keyexpr"
	"github.com/zlink-protocol/zlink-go/pkg/sample"
	"github.com/zlink-protocol/zlink-go/pkg/session"
)

func main() {
	keFlag := flag.String("key", "demo/example", "key expression to publish and serve on")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	ke, err := keyexpr.New(*keFlag)
	if err != nil {
		log.Fatalf("Invalid key expression: %v", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "zlink> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		log.Fatalf("Failed to create readline: %v", err)
	}
	defer rl.Close()
	log.SetOutput(rl.Stdout())

	cfg := config.Default()
	if *verbose {
		cfg.Logger = slog.New(slog.NewTextHandler(rl.Stderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	eng := enginetest.New()
	s, err := session.Open(eng, cfg)
	if err != nil {
		log.Fatalf("Failed to open session: %v", err)
	}
	defer func() { _ = s.Close() }()

	pub, err := s.DeclarePublisher(ke).Encoding(encoding.TextPlain).Res()
	if err != nil {
		log.Fatalf("Failed to declare publisher: %v", err)
	}

	// The queryable serves the last value put on the key expression.
	var mu sync.Mutex
	var lastValue []byte

	_, err = s.DeclareQueryable(ke, func(q *session.Query) {
		mu.Lock()
		value := lastValue
		mu.Unlock()

		if value == nil {
			_ = q.ReplyErr([]byte("no value stored"), encoding.TextPlain).Res()
			return
		}
		_ = q.Reply(q.KeyExpr(), value, sample.KindPut).
			Encoding(encoding.TextPlain).
			Timestamp(time.Now()).
			Res()
	}).Complete(true).Res()
	if err != nil {
		log.Fatalf("Failed to declare queryable: %v", err)
	}

	fmt.Fprintf(rl.Stdout(), "Session %s on %q\n", s.ID(), ke)
	printHelp(rl.Stdout())

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(rl.Stdout(), "Exiting...")
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			printHelp(rl.Stdout())

		case "put", "p":
			if len(args) == 0 {
				fmt.Fprintln(rl.Stdout(), "usage: put <value>")
				continue
			}
			value := []byte(strings.Join(args, " "))
			if err := pub.Put(value).Res(); err != nil {
				fmt.Fprintf(rl.Stdout(), "put failed: %v\n", err)
				continue
			}
			mu.Lock()
			lastValue = value
			mu.Unlock()
			fmt.Fprintf(rl.Stdout(), "put %q\n", value)

		case "delete", "del":
			if err := pub.Delete().Res(); err != nil {
				fmt.Fprintf(rl.Stdout(), "delete failed: %v\n", err)
				continue
			}
			mu.Lock()
			lastValue = nil
			mu.Unlock()
			fmt.Fprintln(rl.Stdout(), "deleted")

		case "get", "g":
			replies := eng.Query(ke, enginetest.QueryOptions{}, 2*time.Second)
			if len(replies) == 0 {
				fmt.Fprintln(rl.Stdout(), "no replies")
				continue
			}
			for _, r := range replies {
				if s, ok := r.OK(); ok {
					fmt.Fprintf(rl.Stdout(), "ok from %s: %q\n", r.ReplierID(), s.Payload)
				} else if e, ok := r.Err(); ok {
					fmt.Fprintf(rl.Stdout(), "err from %s: %q\n", r.ReplierID(), e.Payload)
				}
			}

		case "stats":
			fmt.Fprintf(rl.Stdout(), "puts=%d deletes=%d replies=%d\n",
				len(eng.Puts()), len(eng.Deletes()), len(eng.Replies()))

		case "quit", "q", "exit":
			fmt.Fprintln(rl.Stdout(), "Goodbye!")
			return

		default:
			fmt.Fprintf(rl.Stdout(), "unknown command %q (try: help)\n", cmd)
		}
	}
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  put <value>   publish a value")
	fmt.Fprintln(w, "  delete        publish a delete marker")
	fmt.Fprintln(w, "  get           query the key expression")
	fmt.Fprintln(w, "  stats         show engine counters")
	fmt.Fprintln(w, "  quit          close the session and exit")
}
