package gosqs

import "context"

// Transport is the abstract queue-service collaborator described in spec §6. The engine never talks to
// AWS SQS/SNS directly; it only depends on this interface, which is satisfied in production by
// SQSTransport (transport_sqs.go) and in tests by sqstesting.StubTransport. All methods are expected to
// honor ctx cancellation promptly -- this is how Consumer.Stop(soft=false) aborts an in-flight long
// poll.
type Transport interface {
	ReceiveMessage(ctx context.Context, in *ReceiveMessageInput) (*ReceiveMessageOutput, error)
	DeleteMessageBatch(ctx context.Context, in *DeleteMessageBatchInput) (*DeleteMessageBatchOutput, error)
	SendMessage(ctx context.Context, in *SendMessageInput) (*SendMessageOutput, error)
	SendMessageBatch(ctx context.Context, in *SendMessageBatchInput) (*SendMessageBatchOutput, error)
	ChangeMessageVisibility(ctx context.Context, in *ChangeMessageVisibilityInput) error
	CreateQueue(ctx context.Context, in *CreateQueueInput) (string, error)
	DeleteQueue(ctx context.Context, queueURL string) error
	PurgeQueue(ctx context.Context, queueURL string) error
	GetQueueURL(ctx context.Context, in *GetQueueURLInput) (string, error)
	GetQueueAttributes(ctx context.Context, queueURL string, names []string) (map[string]string, error)
	// PublishSNS broadcasts a message to an SNS topic, used by Publisher's fan-out operations
	// (Create/Update/Delete/Modify/Dispatch) rather than a direct per-queue SendMessage.
	PublishSNS(ctx context.Context, topicARN, message string, attrs map[string]Attribute) (string, error)
}

// ReceiveMessageInput mirrors the receiveMessage operation contract of spec §6.
type ReceiveMessageInput struct {
	QueueURL                string
	MaxNumberOfMessages     int
	WaitTimeSeconds         int
	VisibilityTimeout       *int
	MessageAttributeNames   []string
	AttributeNames          []string
}

// ReceiveMessageOutput mirrors receiveMessage's response.
type ReceiveMessageOutput struct {
	Messages []RawMessage
}

// RawMessage is the undecoded wire shape of a single received message, before ReceiveLoop turns it into
// a *Message.
type RawMessage struct {
	MessageID               string
	ReceiptHandle           string
	Body                    []byte
	Attributes              map[string]Attribute
	SystemAttributes        map[string]string
	ApproximateReceiveCount int
}

// DeleteMessageBatchInput mirrors deleteMessageBatch.
type DeleteMessageBatchInput struct {
	QueueURL string
	Entries  []DeleteEntry
}

// DeleteEntry is a single delete request within a batch. DeleteBatcher uses each message's own ID as the
// entry ID and correlates results back to the caller's promise by it; it does not check that IDs are
// unique within one flush.
type DeleteEntry struct {
	ID            string
	ReceiptHandle string
}

// DeleteMessageBatchOutput mirrors deleteMessageBatch's response.
type DeleteMessageBatchOutput struct {
	Successful []string
	Failed     []DeleteFailure
}

// SendMessageInput mirrors sendMessage.
type SendMessageInput struct {
	QueueURL    string
	Body        string
	DelaySeconds *int
	Attributes  map[string]Attribute
}

// SendMessageOutput mirrors sendMessage's response.
type SendMessageOutput struct {
	MessageID string
}

// SendEntry is a single send request within a batch.
type SendEntry struct {
	ID                     string
	Body                   string
	DelaySeconds           *int
	Attributes             map[string]Attribute
	MessageGroupID         *string
	MessageDeduplicationID *string
}

// SendMessageBatchInput mirrors sendMessageBatch.
type SendMessageBatchInput struct {
	QueueURL string
	Entries  []SendEntry
}

// SendMessageBatchOutput mirrors sendMessageBatch's response.
type SendMessageBatchOutput struct {
	Successful []SendBatchResultEntry
	Failed     []SendFailure
}

// SendBatchResultEntry is a single successful send result within a batch response.
type SendBatchResultEntry struct {
	ID        string
	MessageID string
}

// ChangeMessageVisibilityInput mirrors changeMessageVisibility.
type ChangeMessageVisibilityInput struct {
	QueueURL          string
	ReceiptHandle     string
	VisibilityTimeout int
}

// CreateQueueInput mirrors createQueue, including the defaults spec §6 assigns when left unset.
type CreateQueueInput struct {
	QueueName              string
	VisibilityTimeout      *int
	DelaySeconds           *int
	MaximumMessageSize     *int
	MessageRetentionPeriod *int
	ReceiveWaitTimeSeconds *int
	Policy                 *string
}

// GetQueueURLInput mirrors getQueueUrl.
type GetQueueURLInput struct {
	QueueName        string
	QueueOwnerAWSAccountID *string
}

// MergedSendResult is the shape returned by Consumer.SendMessages: successes and failures across all
// chunked batch calls, preserving the caller's input order via contiguous "0".."N-1" ids.
type MergedSendResult struct {
	Successful []SendBatchResultEntry
	Failed     []SendFailure
}
