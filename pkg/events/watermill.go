// Package events is the inventory event bus: Watermill over PostgreSQL in
// deployed processes and over Go channels in memory mode and tests.
//
// Delivery:
//   - Subscribers sharing Options.ConsumerGroup split a topic between them;
//     each message is handled by one member of the group.
//   - A failing handler is retried with exponential backoff, up to
//     Options.MaxAttempts. A message that still fails is Nacked and
//     redelivered later, so handlers must be idempotent.
//   - A handler error wrapping ErrPermanent skips the retries and the message
//     is Acked after the error is reported, since redelivery cannot fix it.
//
// Publish injects the caller's trace context into message metadata and
// Subscribe restores it, so a repair request carries the trace of the write
// that triggered it into the worker.
package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/ghuser/nurseryinventory/pkg/config"
	"github.com/ghuser/nurseryinventory/pkg/logger"
)

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = time.Second
	shutdownTimeout    = 30 * time.Second
	errBuffer          = 100
	forwarderTopic     = "_forwarder_queue"
)

// ErrPermanent marks a handler failure that redelivery cannot fix, such as an
// undecodable payload.
var ErrPermanent = errors.New("permanent handler failure")

// Permanent wraps err with ErrPermanent.
func Permanent(err error) error {
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// Handler processes one message. ctx carries the publisher's trace.
type Handler func(ctx context.Context, msg *message.Message) error

// Options tune the bus. Zero values take the defaults.
type Options struct {
	ConsumerGroup  string
	MaxAttempts    int
	RetryBaseDelay time.Duration
	// Forwarder routes Publish through a durable SQL queue drained by the
	// daemon started with StartForwarder.
	Forwarder bool
}

// OptionsFromConfig derives Options from the process configuration. Every
// instance of a service shares one consumer group.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ConsumerGroup:  cfg.ServiceName + "-consumer",
		MaxAttempts:    cfg.EventMaxAttempts,
		RetryBaseDelay: cfg.EventRetryDelay,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = defaultMaxAttempts
	}
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = defaultRetryDelay
	}
	return o
}

// EventBus publishes and consumes inventory events.
type EventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	fwd        *forwarder.Forwarder
	db         *sql.DB // nil for the in-memory transport; owned by the caller
	opts       Options
	log        logger.Logger
	wg         sync.WaitGroup
}

// NewEventBus builds the SQL transport on db, the pool the document store
// also uses. The watermill tables are created on first use. Close leaves db
// open.
func NewEventBus(db *sql.DB, opts Options, log logger.Logger) (*EventBus, error) {
	opts = opts.withDefaults()
	wlog := &slogAdapter{log: log}

	pub, err := newSQLPublisher(db, wlog)
	if err != nil {
		return nil, fmt.Errorf("events: new publisher: %w", err)
	}
	var publisher message.Publisher = pub
	if opts.Forwarder {
		publisher = forwarder.NewPublisher(pub, forwarder.PublisherConfig{ForwarderTopic: forwarderTopic})
	}

	sub, err := newSQLSubscriber(db, opts.ConsumerGroup, wlog)
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("events: new subscriber: %w", err)
	}

	return &EventBus{publisher: publisher, subscriber: sub, db: db, opts: opts, log: log}, nil
}

// NewInMemoryEventBus delivers through Go channels inside this process. Every
// subscriber receives every message and nothing survives a restart.
func NewInMemoryEventBus(log logger.Logger) *EventBus {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, &slogAdapter{log: log})
	return &EventBus{
		publisher:  pubSub,
		subscriber: pubSub,
		opts:       Options{}.withDefaults(),
		log:        log,
	}
}

func newSQLPublisher(db *sql.DB, wlog watermill.LoggerAdapter) (*watermillsql.Publisher, error) {
	return watermillsql.NewPublisher(db, watermillsql.PublisherConfig{
		SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
		AutoInitializeSchema: true,
	}, wlog)
}

func newSQLSubscriber(db *sql.DB, group string, wlog watermill.LoggerAdapter) (*watermillsql.Subscriber, error) {
	return watermillsql.NewSubscriber(db, watermillsql.SubscriberConfig{
		SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
		OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
		InitializeSchema: true,
		ConsumerGroup:    group,
	}, wlog)
}

// StartForwarder runs the daemon that moves enveloped messages from the
// forwarder queue to their topics. It returns once the daemon is running.
func (q *EventBus) StartForwarder(ctx context.Context) error {
	switch {
	case !q.opts.Forwarder:
		return errors.New("events: forwarder not enabled on this bus")
	case q.fwd != nil:
		return errors.New("events: forwarder already started")
	case q.db == nil:
		return errors.New("events: forwarder requires the SQL transport")
	}

	wlog := &slogAdapter{log: q.log}
	fwdSub, err := newSQLSubscriber(q.db, "forwarder-consumer", wlog)
	if err != nil {
		return fmt.Errorf("events: new forwarder subscriber: %w", err)
	}
	targetPub, err := newSQLPublisher(q.db, wlog)
	if err != nil {
		_ = fwdSub.Close()
		return fmt.Errorf("events: new forwarder target publisher: %w", err)
	}
	fwd, err := forwarder.NewForwarder(fwdSub, targetPub, wlog, forwarder.Config{ForwarderTopic: forwarderTopic})
	if err != nil {
		_ = targetPub.Close()
		_ = fwdSub.Close()
		return fmt.Errorf("events: create forwarder: %w", err)
	}
	q.fwd = fwd

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		if err := fwd.Run(ctx); err != nil {
			q.log.ErrorContext(ctx, "events: forwarder stopped with error", "error", err)
			return
		}
		q.log.InfoContext(ctx, "events: forwarder stopped")
	}()

	select {
	case <-fwd.Running():
		q.log.InfoContext(ctx, "events: forwarder started")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("events: waiting for forwarder: %w", ctx.Err())
	}
}

// Publish sends msgs to topic with the trace context of ctx attached.
func (q *EventBus) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for _, msg := range msgs {
		for k, v := range carrier {
			msg.Metadata.Set(k, v)
		}
	}
	if err := q.publisher.Publish(topic, msgs...); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe consumes topic in a goroutine until ctx ends or the bus closes.
// Errors that outlive the retries are sent on the returned channel, which the
// caller must drain; when it is full they are logged and dropped.
func (q *EventBus) Subscribe(ctx context.Context, topic string, handler func(context.Context, *message.Message) error) (<-chan error, error) {
	ch, err := q.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("events: subscribe to %s: %w", topic, err)
	}

	errCh := make(chan error, errBuffer)
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer close(errCh)
		for msg := range ch {
			q.deliver(ctx, topic, msg, handler, errCh)
		}
	}()
	return errCh, nil
}

func (q *EventBus) deliver(ctx context.Context, topic string, msg *message.Message, handler Handler, errCh chan<- error) {
	carrier := propagation.MapCarrier{}
	for k, v := range msg.Metadata {
		carrier[k] = v
	}
	msgCtx := otel.GetTextMapPropagator().Extract(ctx, carrier)

	err := retryWithBackoff(msgCtx, msg, handler, q.opts.MaxAttempts, q.opts.RetryBaseDelay, q.log)
	if err == nil {
		msg.Ack()
		return
	}
	if errors.Is(err, ErrPermanent) {
		msg.Ack()
	} else {
		msg.Nack()
	}
	select {
	case errCh <- fmt.Errorf("events: %s message %s: %w", topic, msg.UUID, err):
	default:
		q.log.ErrorContext(msgCtx, "events: error channel full, dropping error", "error", err, "topic", topic)
	}
}

// retryWithBackoff calls handler up to attempts times, doubling the delay
// after each failure. Permanent errors and a done ctx end it early.
func retryWithBackoff(
	ctx context.Context,
	msg *message.Message,
	handler Handler,
	attempts int,
	baseDelay time.Duration,
	log logger.Logger,
) error {
	delay := baseDelay
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return nil
		}
		if errors.Is(err, ErrPermanent) {
			return err
		}
		if attempt == attempts {
			break
		}
		log.WarnContext(ctx, "events: handler failed, retrying",
			"attempt", attempt,
			"max_attempts", attempts,
			"next_delay", delay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("handler failed after %d attempts: %w", attempts, err)
}

// Ping checks the database behind the SQL transport.
func (q *EventBus) Ping(ctx context.Context) error {
	if q.db == nil {
		return nil
	}
	if err := q.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	return nil
}

// Close stops the subscriber and forwarder, waits up to shutdownTimeout for
// in-flight handlers and then closes the publisher.
func (q *EventBus) Close() error {
	if err := q.subscriber.Close(); err != nil {
		return fmt.Errorf("events: close subscriber: %w", err)
	}
	if q.fwd != nil {
		if err := q.fwd.Close(); err != nil {
			return fmt.Errorf("events: close forwarder: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		q.log.Error("events: timed out waiting for in-flight handlers")
	}

	if err := q.publisher.Close(); err != nil {
		return fmt.Errorf("events: close publisher: %w", err)
	}
	return nil
}

// slogAdapter bridges logger.Logger to watermill.LoggerAdapter. Watermill's
// trace level maps to debug.
type slogAdapter struct{ log logger.Logger }

func (a *slogAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(fieldsToArgs(fields), "error", err)...)
}
func (a *slogAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Info(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &slogAdapter{log: a.log.With(fieldsToArgs(fields)...)}
}

func fieldsToArgs(fields watermill.LogFields) []any {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}
