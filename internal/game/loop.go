package game

import (
	"context"
	"time"
)

type pressRequest struct {
	cell  int
	reply chan pressReply
}

type pressReply struct {
	outcome Outcome
	err     error
}

type snapshotRequest struct {
	reply chan State
}

// Run initializes the display, starts the countdown and rotation tasks and
// serves pointer-down requests until ctx is cancelled. A controller runs at
// most once.
func (c *Controller) Run(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	c.loop(ctx)
	return nil
}

// Start is Run on a new goroutine. Presses sent after Start returns are
// queued until the loop picks them up.
func (c *Controller) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	go c.loop(ctx)
	return nil
}

// Done is closed when the loop has exited.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) loop(ctx context.Context) {
	defer close(c.done)

	c.render()

	countdown := time.NewTicker(c.cfg.TickInterval)
	defer countdown.Stop()
	rotation := time.NewTicker(c.cfg.TickInterval)
	defer rotation.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-rotation.C:
			c.Rotate()
		case <-countdown.C:
			c.Countdown()
		case msg := <-c.inbox:
			c.handle(msg)
		}

		if c.restartCountdown {
			c.restartCountdown = false
			countdown.Reset(c.cfg.TickInterval)
		}
	}
}

func (c *Controller) handle(msg any) {
	switch m := msg.(type) {
	case pressRequest:
		outcome, err := c.PointerDown(m.cell)
		m.reply <- pressReply{outcome: outcome, err: err}
	case snapshotRequest:
		m.reply <- c.state
	}
}

// Press delivers a pointer-down on cell id to the running loop and waits for
// the outcome.
func (c *Controller) Press(ctx context.Context, id int) (Outcome, error) {
	req := pressRequest{cell: id, reply: make(chan pressReply, 1)}
	if err := c.send(ctx, req); err != nil {
		return OutcomeNone, err
	}
	select {
	case r := <-req.reply:
		return r.outcome, r.err
	case <-c.done:
		select {
		case r := <-req.reply:
			return r.outcome, r.err
		default:
			return OutcomeNone, ErrNotRunning
		}
	case <-ctx.Done():
		return OutcomeNone, ctx.Err()
	}
}

// Snapshot returns a copy of the state as seen by the running loop.
func (c *Controller) Snapshot(ctx context.Context) (State, error) {
	req := snapshotRequest{reply: make(chan State, 1)}
	if err := c.send(ctx, req); err != nil {
		return State{}, err
	}
	select {
	case s := <-req.reply:
		return s, nil
	case <-c.done:
		select {
		case s := <-req.reply:
			return s, nil
		default:
			return State{}, ErrNotRunning
		}
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
}

func (c *Controller) send(ctx context.Context, msg any) error {
	if !c.started.Load() {
		return ErrNotRunning
	}
	select {
	case c.inbox <- msg:
		return nil
	case <-c.done:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
}
