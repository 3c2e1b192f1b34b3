/*
Package throttle provides the token bucket the manager uses to cap how many
pipeline dispatches start per second.

	t, err := throttle.NewSafe(1000, 1000) // 1000 dispatches/s, bursts of 1000
	if err != nil {
		return err
	}

	if err := t.Wait(ctx); err != nil {
		return err // ctx cancelled while waiting
	}

Allow is the non-blocking form. A Clock can be injected through Config for
deterministic tests.
*/
package throttle
