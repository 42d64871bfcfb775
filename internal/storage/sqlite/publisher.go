package sqlite

import (
	"context"
	"errors"
	"time"

	"LanderRescue/internal/game"
)

// Publisher adapts the store to the engine's synchronous result sink.
type Publisher struct {
	Store   *Store
	Timeout time.Duration
	// OnSaved runs after a result is stored for the first time.
	OnSaved func(game.MissionResult)
}

// PublishResult stores res. A replayed attempt id is not an error.
func (p Publisher) PublishResult(res game.MissionResult) error {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := p.Store.SaveResult(ctx, res)
	if errors.Is(err, ErrAlreadyExists) {
		return nil
	}
	if err != nil {
		return err
	}
	if p.OnSaved != nil {
		p.OnSaved(res)
	}
	return nil
}
