package gosqs

import "time"

// ConsumerConfig configures the consumer engine: the queue identity, backpressure, batching and
// visibility-extension knobs from spec §3. AWS session/credentials setup is carried separately on
// Config (config.go), which ConsumerConfig embeds so a single value can be passed to NewConsumer.
type ConsumerConfig struct {
	Config

	// queue identity -- exactly one of QueueURL or (QueueName[, AccountNumber]) should be set
	QueueURL      string
	QueueName     string
	AccountNumber string
	// CorrectQueueURL rewrites the resolved URL's host to the transport endpoint's host, useful when a
	// queue was created against one hostname (e.g. a container-internal name) but must be dialed through
	// another (e.g. localhost published port).
	CorrectQueueURL bool

	// MaxInFlight caps the number of messages handed to the application but not yet finalized. Defaults to
	// 100 when nil; an explicit 0 means unbounded. A plain int can't distinguish "unset" from "explicitly
	// 0", so this mirrors VisibilityTimeoutSecs's *int convention.
	MaxInFlight *int
	// ReceiveBatchSize is the preferred per-poll batch size, capped at 10 by the service.
	ReceiveBatchSize int
	// MinReceiveBatchSize suppresses polling while available slots fall below this.
	MinReceiveBatchSize int
	// ReceiveWaitTimeSecs is the long-poll wait time.
	ReceiveWaitTimeSecs int
	// VisibilityTimeoutSecs optionally overrides the queue's default visibility timeout on receive and is
	// used as the renewal duration by TimeoutExtender.
	VisibilityTimeoutSecs *int

	// ActivePollIntervalMs delays the next poll after one that produced messages.
	ActivePollIntervalMs int
	// IdlePollIntervalMs delays the next poll after an empty one.
	IdlePollIntervalMs int
	// PollRetryMs delays the next poll after a transport error.
	PollRetryMs int

	// DeleteBatchSize is the flush threshold for DeleteBatcher.
	DeleteBatchSize int
	// DeleteWaitMs is the time threshold for DeleteBatcher.
	DeleteWaitMs int

	// AutoExtendTimeout enables TimeoutExtender.
	AutoExtendTimeout bool
	// NoExtensionsAfterSecs is the wall-clock ceiling past which a message stops being auto-extended.
	NoExtensionsAfterSecs int
	// AdvancedCallMs is how far before expiry TimeoutExtender renews visibility.
	AdvancedCallMs int

	// ReceiveAttributes filters which message attributes are returned.
	ReceiveAttributes []string
	// ReceiveSqsAttributes filters which system attributes are returned.
	ReceiveSqsAttributes []string

	// Transport overrides the default aws-sdk-go-backed SQSTransport, primarily for tests.
	Transport Transport
}

// withDefaults returns a copy of c with every zero-valued tunable replaced by its documented default.
func (c ConsumerConfig) withDefaults() ConsumerConfig {
	if c.MaxInFlight == nil {
		defaultMaxInFlight := 100
		c.MaxInFlight = &defaultMaxInFlight
	}
	if c.ReceiveBatchSize == 0 {
		c.ReceiveBatchSize = 10
	}
	if c.ReceiveBatchSize > 10 {
		c.ReceiveBatchSize = 10
	}
	if c.MinReceiveBatchSize == 0 {
		c.MinReceiveBatchSize = 1
	}
	if c.ReceiveWaitTimeSecs == 0 {
		c.ReceiveWaitTimeSecs = 20
	}
	if c.PollRetryMs == 0 {
		c.PollRetryMs = 10_000
	}
	if c.DeleteBatchSize == 0 {
		c.DeleteBatchSize = 10
	}
	if c.DeleteBatchSize > 10 {
		c.DeleteBatchSize = 10
	}
	if c.DeleteWaitMs == 0 {
		c.DeleteWaitMs = 2_000
	}
	if c.NoExtensionsAfterSecs == 0 {
		c.NoExtensionsAfterSecs = 43_200
	}
	if c.AdvancedCallMs == 0 {
		c.AdvancedCallMs = 5_000
	}
	if len(c.ReceiveAttributes) == 0 {
		c.ReceiveAttributes = []string{"All"}
	}
	if len(c.ReceiveSqsAttributes) == 0 {
		c.ReceiveSqsAttributes = []string{"All"}
	}
	return c
}

func (c ConsumerConfig) visibilityTimeoutSecs() int {
	if c.VisibilityTimeoutSecs != nil {
		return *c.VisibilityTimeoutSecs
	}
	return 30
}

// maxInFlight resolves the configured cap after withDefaults has run, where 0 means unbounded.
func (c ConsumerConfig) maxInFlight() int {
	if c.MaxInFlight != nil {
		return *c.MaxInFlight
	}
	return 100
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
