package ai

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/appengine-ltd/bunker/internal/game"
)

var ErrEmptyReply = errors.New("ai returned an empty reply")

// Port adapts a Generator to game.AIPort. Each request runs on its own
// goroutine and its continuation is posted to the mailbox, so the game
// state is only ever touched by whoever drains it.
type Port struct {
	gen     Generator
	mailbox *game.Mailbox
	timeout time.Duration
	log     *slog.Logger
	wg      sync.WaitGroup

	life context.Context
	stop context.CancelFunc
}

func NewPort(gen Generator, mailbox *game.Mailbox, timeout time.Duration, log *slog.Logger) (*Port, error) {
	if gen == nil {
		return nil, errors.New("ai port needs a generator")
	}
	if mailbox == nil {
		return nil, errors.New("ai port needs a mailbox")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	life, stop := context.WithCancel(context.Background())
	return &Port{
		gen:     gen,
		mailbox: mailbox,
		timeout: timeout,
		log:     log.With("component", "ai"),
		life:    life,
		stop:    stop,
	}, nil
}

func (p *Port) SendMessage(ctx context.Context, prompt string, onSuccess func(string), onFailure func(error)) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		callCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		defer context.AfterFunc(p.life, cancel)()
		if p.timeout > 0 {
			var cancelTimeout context.CancelFunc
			callCtx, cancelTimeout = context.WithTimeout(callCtx, p.timeout)
			defer cancelTimeout()
		}

		started := time.Now()
		text, err := p.gen.Generate(callCtx, prompt)
		if err == nil && strings.TrimSpace(text) == "" {
			err = ErrEmptyReply
		}
		p.log.Debug("ai reply", "elapsed", time.Since(started), "err", err)

		var cont func()
		if err != nil {
			cont = func() { onFailure(err) }
		} else {
			cont = func() { onSuccess(text) }
		}
		// The continuation must still run after the caller gives up so the
		// pending count settles; only Close drops it.
		if !p.mailbox.Post(p.life, cont) {
			p.log.Warn("ai continuation dropped")
		}
	}()
}

// Wait blocks until every in-flight request has posted its continuation.
func (p *Port) Wait() {
	p.wg.Wait()
}

// Close cancels in-flight requests, drops their continuations and waits
// for the workers to exit.
func (p *Port) Close() {
	p.stop()
	p.wg.Wait()
}

var _ game.AIPort = &Port{}
