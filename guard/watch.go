package guard

import (
	"context"

	"github.com/jrsteele09/flow-client/session"
)

// Watch re-evaluates whenever the path or the session state changes and
// emits the decision when it differs from the last one. Nothing is emitted
// until both a path and a state have arrived. The output closes when ctx
// ends or either input closes. A slow reader only sees the latest decision.
func (g *Guard) Watch(ctx context.Context, paths <-chan string, states <-chan session.State) <-chan Decision {
	out := make(chan Decision, 1)
	go func() {
		defer close(out)
		var (
			path     string
			state    session.State
			havePath bool
			haveSt   bool
			last     *Decision
		)
		for {
			select {
			case <-ctx.Done():
				return
			case p, ok := <-paths:
				if !ok {
					return
				}
				path, havePath = p, true
			case st, ok := <-states:
				if !ok {
					return
				}
				state, haveSt = st, true
			}
			if !havePath || !haveSt {
				continue
			}
			d := g.Decide(path, state)
			if last != nil && *last == d {
				continue
			}
			last = &d
			offer(out, d)
		}
	}()
	return out
}

// offer replaces any unread decision with d.
func offer(out chan Decision, d Decision) {
	select {
	case out <- d:
		return
	default:
	}
	select {
	case <-out:
	default:
	}
	select {
	case out <- d:
	default:
	}
}
