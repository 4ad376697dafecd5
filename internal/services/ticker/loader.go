package ticker

import (
	"context"
	"sync"

	"github.com/bobmcallan/vire-ticker/internal/common"
	"github.com/bobmcallan/vire-ticker/internal/interfaces"
	"github.com/bobmcallan/vire-ticker/internal/models"
)

// Loader drives one widget instance. Each Submit supersedes the previous
// one: the prior load is cancelled and, should it still finish, its result
// is discarded. The last submitted inputs always win.
type Loader struct {
	service interfaces.TickerService
	logger  *common.Logger

	mu          sync.Mutex
	seq         uint64
	inFlight    int
	cancel      context.CancelFunc
	current     *models.Panel
	subscribers []chan *models.Panel
}

// NewLoader creates a loader around service. logger may be nil.
func NewLoader(service interfaces.TickerService, logger *common.Logger) *Loader {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Loader{service: service, logger: logger}
}

// Submit starts a load for req and returns its sequence number. The returned
// channel is closed when this load has finished, accepted or not.
func (l *Loader) Submit(ctx context.Context, req interfaces.TickerRequest) (uint64, <-chan struct{}) {
	ctx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.seq++
	seq := l.seq
	l.cancel = cancel
	l.inFlight++
	l.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()

		panel := l.service.Load(ctx, req)
		l.complete(seq, panel)
	}()

	return seq, done
}

func (l *Loader) complete(seq uint64, panel *models.Panel) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.inFlight--

	if seq != l.seq {
		l.logger.Debug().Uint64("seq", seq).Uint64("latest", l.seq).Msg("Discarding stale panel")
		return
	}

	panel.Sequence = seq
	l.current = panel
	l.cancel = nil

	for _, ch := range l.subscribers {
		// Subscribers only care about the latest panel; drop any unread one.
		select {
		case <-ch:
		default:
		}
		ch <- panel
	}
}

// Loading reports whether the latest submitted load is still running.
func (l *Loader) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inFlight > 0 && (l.current == nil || l.current.Sequence != l.seq)
}

// Current returns the last accepted panel, or nil before the first load
// completes. While a load is running the previous panel is returned with
// Loading set.
func (l *Loader) Current() *models.Panel {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return nil
	}
	p := *l.current
	p.Loading = l.inFlight > 0 && l.current.Sequence != l.seq
	return &p
}

// Subscribe returns a channel that receives each accepted panel. The channel
// holds at most one pending panel.
func (l *Loader) Subscribe() <-chan *models.Panel {
	ch := make(chan *models.Panel, 1)

	l.mu.Lock()
	l.subscribers = append(l.subscribers, ch)
	l.mu.Unlock()

	return ch
}

// Close cancels any in-flight load.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}
