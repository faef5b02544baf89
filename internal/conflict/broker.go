package conflict

import (
	"context"
	"time"

	"github.com/etklam/srt-subtitle-translator/pkg/log"
)

// DefaultCountdown is how long a conflict waits for an answer before the
// output is renamed.
const DefaultCountdown = 5 * time.Second

// Request asks a front end to resolve one conflict before Deadline.
type Request struct {
	Path     string
	Deadline time.Time

	reply chan Resolution
}

// Reply answers the request. Answers after the first, or after the broker
// gave up waiting, are dropped.
func (r Request) Reply(res Resolution) {
	select {
	case r.reply <- res:
	default:
	}
}

// Broker is a Decider that publishes each conflict on a channel and waits
// for a reply. Without a reply before the countdown ends the answer is
// Rename; a cancelled context answers Skip.
type Broker struct {
	countdown time.Duration
	requests  chan Request
}

func NewBroker(countdown time.Duration) *Broker {
	if countdown < 0 {
		countdown = 0
	}
	return &Broker{
		countdown: countdown,
		requests:  make(chan Request),
	}
}

// Requests is the stream of pending conflicts for a front end to serve.
func (b *Broker) Requests() <-chan Request {
	return b.requests
}

func (b *Broker) Countdown() time.Duration {
	return b.countdown
}

func (b *Broker) Decide(ctx context.Context, path string) Resolution {
	timer := time.NewTimer(b.countdown)
	defer timer.Stop()

	req := Request{
		Path:     path,
		Deadline: time.Now().Add(b.countdown),
		reply:    make(chan Resolution, 1),
	}

	select {
	case b.requests <- req:
	case <-timer.C:
		log.Info("No answer for %s within %s, renaming", path, b.countdown)
		return Rename
	case <-ctx.Done():
		return Skip
	}

	select {
	case res := <-req.reply:
		return res
	case <-timer.C:
		log.Info("No answer for %s within %s, renaming", path, b.countdown)
		return Rename
	case <-ctx.Done():
		return Skip
	}
}
