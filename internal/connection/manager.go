package connection

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jlin/opinion-data/internal/model"
	"github.com/jlin/opinion-data/internal/subscription"
)

// TopicSource provides the topics to subscribe to on each (re)connect.
type TopicSource interface {
	All() []model.Topic
}

// Manager owns the lifecycle of the streaming connection.
type Manager interface {
	// Start begins the connect/retry loop. Idempotent if already running.
	// It never returns a transport error; those are contained and drive
	// backoff.
	Start(ctx context.Context) error

	// Stop shuts the connection down and halts reconnection. The
	// heartbeat goroutine has fully terminated when Stop returns.
	Stop(ctx context.Context) error

	// Messages returns the channel of raw inbound frames for the
	// Message Router.
	Messages() <-chan RawMessage

	// Status returns a non-blocking snapshot for health reporting.
	Status() Status
}

// dialFunc creates and connects a transport client. Swappable in tests.
type dialFunc func(ctx context.Context, cfg ClientConfig, logger *slog.Logger) (Client, error)

func defaultDial(ctx context.Context, cfg ClientConfig, logger *slog.Logger) (Client, error) {
	c := NewClient(cfg, logger)
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// manager implements the Manager interface.
type manager struct {
	cfg    ManagerConfig
	topics TopicSource
	logger *slog.Logger
	dial   dialFunc

	out chan RawMessage

	state atomic.Value // State

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	client  Client
	started bool
	stopped bool
}

// NewManager creates a new Connection Manager.
func NewManager(cfg ManagerConfig, topics TopicSource, logger *slog.Logger) Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ReconnectBaseDelay <= 0 {
		cfg.ReconnectBaseDelay = DefaultManagerConfig().ReconnectBaseDelay
	}
	if cfg.ReconnectMaxDelay <= 0 {
		cfg.ReconnectMaxDelay = DefaultManagerConfig().ReconnectMaxDelay
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = DefaultManagerConfig().HeartbeatInterval
	}
	if cfg.MessageBufferSize <= 0 {
		cfg.MessageBufferSize = DefaultManagerConfig().MessageBufferSize
	}
	cfg.Client.URL = cfg.URL
	cfg.Client.APIKey = cfg.APIKey

	m := &manager{
		cfg:    cfg,
		topics: topics,
		logger: logger,
		dial:   defaultDial,
		out:    make(chan RawMessage, cfg.MessageBufferSize),
	}
	m.state.Store(StateDisconnected)
	return m
}

// Start begins the connect/retry loop.
func (m *manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started || m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.started = true
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.mu.Unlock()

	m.wg.Add(1)
	go m.run()

	m.logger.Info("connection manager started",
		"url", m.cfg.URL,
		"heartbeat_interval", m.cfg.HeartbeatInterval,
	)
	return nil
}

// Stop shuts down the manager.
func (m *manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.started || m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	m.cancel()
	client := m.client
	m.mu.Unlock()

	if client != nil {
		client.Close()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		m.logger.Warn("connection manager stop timed out")
	}

	m.setState(StateDisconnected)
	close(m.out)

	m.logger.Info("connection manager stopped")
	return nil
}

// Messages returns the router-facing frame channel.
func (m *manager) Messages() <-chan RawMessage {
	return m.out
}

// Status returns a snapshot for health reporting.
func (m *manager) Status() Status {
	return Status{
		Connected:         m.currentState() == StateConnected,
		URL:               m.cfg.URL,
		HeartbeatInterval: int(m.cfg.HeartbeatInterval / time.Second),
	}
}

func (m *manager) currentState() State {
	return m.state.Load().(State)
}

func (m *manager) setState(s State) {
	m.state.Store(s)
}

// run drives the state machine until the manager is stopped.
func (m *manager) run() {
	defer m.wg.Done()

	delay := m.cfg.ReconnectBaseDelay

	for {
		if m.ctx.Err() != nil {
			m.setState(StateDisconnected)
			return
		}

		m.setState(StateConnecting)

		client, err := m.dial(m.ctx, m.cfg.Client, m.logger)
		if err != nil {
			m.logger.Warn("connect failed",
				"url", m.cfg.URL,
				"error", err,
				"retry_in", delay,
			)
			if !m.backoff(delay) {
				return
			}
			delay = nextDelay(delay, m.cfg.ReconnectMaxDelay)
			continue
		}

		m.mu.Lock()
		m.client = client
		m.mu.Unlock()

		m.setState(StateConnected)
		delay = m.cfg.ReconnectBaseDelay

		m.logger.Info("connected", "url", m.cfg.URL)

		if err := m.subscribeAll(client); err != nil {
			m.logger.Warn("failed to send subscriptions", "error", err)
			// Keep the connection; the next reconnect re-derives the set.
		}

		connDone := make(chan struct{})
		m.wg.Add(1)
		go m.heartbeatLoop(client, connDone)

		m.pump(client)
		close(connDone)
		client.Close()

		m.mu.Lock()
		m.client = nil
		m.mu.Unlock()

		if m.ctx.Err() != nil {
			m.setState(StateDisconnected)
			return
		}

		if !m.backoff(delay) {
			return
		}
		delay = nextDelay(delay, m.cfg.ReconnectMaxDelay)
	}
}

// backoff sleeps the current delay. Returns false if the manager was
// stopped while waiting.
func (m *manager) backoff(delay time.Duration) bool {
	m.setState(StateBackoff)
	select {
	case <-m.ctx.Done():
		m.setState(StateDisconnected)
		return false
	case <-time.After(delay):
		return true
	}
}

// nextDelay doubles the backoff delay up to the cap.
func nextDelay(cur, max time.Duration) time.Duration {
	next := cur * 2
	if next > max {
		next = max
	}
	return next
}

// subscribeAll derives the subscription set from the current topic
// store contents and sends every frame.
func (m *manager) subscribeAll(client Client) error {
	frames := subscription.FramesFor(m.topics.All())

	for _, f := range frames {
		data, err := json.Marshal(f)
		if err != nil {
			return err
		}
		if err := client.Send(data); err != nil {
			return err
		}
	}

	m.logger.Info("subscriptions sent", "frames", len(frames))
	return nil
}

// pump forwards inbound frames to the router channel until the
// connection errors or the manager is stopped.
func (m *manager) pump(client Client) {
	for {
		select {
		case <-m.ctx.Done():
			return

		case err := <-client.Errors():
			m.logger.Warn("connection error", "error", err)
			return

		case msg, ok := <-client.Messages():
			if !ok {
				return
			}
			select {
			case m.out <- msg:
			case <-m.ctx.Done():
				return
			default:
				m.logger.Warn("router buffer full, dropping frame")
			}
		}
	}
}

// heartbeatLoop sends a heartbeat frame every interval until the
// connection ends or the manager is stopped.
func (m *manager) heartbeatLoop(client Client, connDone <-chan struct{}) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-connDone:
			return
		case <-ticker.C:
			if err := client.Send(heartbeatFrame); err != nil {
				m.logger.Warn("heartbeat send failed", "error", err)
				return
			}
			m.logger.Debug("heartbeat sent")
		}
	}
}
