// Package sqstesting provides an in-memory gosqs.Transport for exercising Consumer and Publisher
// without a live SQS/SNS endpoint, in the spirit of the original package's StubConsumer/StubPublisher
// recording stubs.
package sqstesting

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/qhenkart/gosqs"
)

// SentMessage records a single SendMessage/SendMessageBatch entry or SNS broadcast observed by
// StubTransport.
type SentMessage struct {
	QueueURL   string
	TopicARN   string
	Body       string
	Attributes map[string]gosqs.Attribute
}

// DeletedEntry records a single delete observed by StubTransport.
type DeletedEntry struct {
	QueueURL      string
	ReceiptHandle string
}

// StubTransport is a gosqs.Transport that holds an in-memory inbox of messages to hand back from
// ReceiveMessage and records every outbound call for assertions. All methods are safe for concurrent
// use, since Consumer drives ReceiveMessage/DeleteMessageBatch/SendMessage from separate goroutines.
type StubTransport struct {
	mu sync.Mutex

	inbox       []gosqs.RawMessage
	queueURL    string
	attrs       map[string]string
	nextErr     map[string]error
	failBodies  map[string]bool

	Sent        []SentMessage
	Broadcasts  []SentMessage
	Deleted     []DeletedEntry
	Visibility  []DeletedEntry

	// DeleteBatchSizes/SendBatchSizes/ReceiveBatchSizes record the size of each call as it arrives, in
	// call order, for asserting on batching behavior rather than just aggregate counts.
	DeleteBatchSizes  []int
	SendBatchSizes    []int
	ReceiveBatchSizes []int
}

// NewStubTransport returns an empty StubTransport. Queue resolution returns queueURL until CreateQueue
// replaces it with the URL of the created queue.
func NewStubTransport(queueURL string) *StubTransport {
	return &StubTransport{
		queueURL:   queueURL,
		attrs:      map[string]string{},
		nextErr:    map[string]error{},
		failBodies: map[string]bool{},
	}
}

// FailBody arranges for any SendMessageBatch entry whose body equals body to come back in the
// batch's Failed list instead of Successful, without failing the surrounding call -- the per-entry
// rejection semantics SQS itself uses for things like oversized or malformed individual entries.
func (s *StubTransport) FailBody(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failBodies[body] = true
}

// Enqueue adds messages to the inbox returned by the next ReceiveMessage calls, assigning a fresh
// MessageId/ReceiptHandle to any entry that doesn't already have one.
func (s *StubTransport) Enqueue(messages ...gosqs.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range messages {
		if m.MessageID == "" {
			m.MessageID = uuid.NewString()
		}
		if m.ReceiptHandle == "" {
			m.ReceiptHandle = uuid.NewString()
		}
		s.inbox = append(s.inbox, m)
	}
}

// FailNext arranges for the named operation's next call to return err. op is one of "receive",
// "delete", "send", "sendBatch", "publish", "visibility".
func (s *StubTransport) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextErr[op] = err
}

func (s *StubTransport) takeErr(op string) error {
	err := s.nextErr[op]
	delete(s.nextErr, op)
	return err
}

// SetQueueAttribute seeds the value GetQueueAttributes returns for name.
func (s *StubTransport) SetQueueAttribute(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs[name] = value
}

func (s *StubTransport) ReceiveMessage(ctx context.Context, in *gosqs.ReceiveMessageInput) (*gosqs.ReceiveMessageOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeErr("receive"); err != nil {
		return nil, err
	}

	n := in.MaxNumberOfMessages
	if n <= 0 || n > len(s.inbox) {
		n = len(s.inbox)
	}

	msgs := s.inbox[:n]
	s.inbox = s.inbox[n:]
	s.ReceiveBatchSizes = append(s.ReceiveBatchSizes, len(msgs))

	return &gosqs.ReceiveMessageOutput{Messages: msgs}, nil
}

func (s *StubTransport) DeleteMessageBatch(ctx context.Context, in *gosqs.DeleteMessageBatchInput) (*gosqs.DeleteMessageBatchOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeErr("delete"); err != nil {
		return nil, err
	}

	out := &gosqs.DeleteMessageBatchOutput{}
	s.DeleteBatchSizes = append(s.DeleteBatchSizes, len(in.Entries))
	for _, e := range in.Entries {
		s.Deleted = append(s.Deleted, DeletedEntry{QueueURL: in.QueueURL, ReceiptHandle: e.ReceiptHandle})
		out.Successful = append(out.Successful, e.ID)
	}

	return out, nil
}

func (s *StubTransport) SendMessage(ctx context.Context, in *gosqs.SendMessageInput) (*gosqs.SendMessageOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeErr("send"); err != nil {
		return nil, err
	}

	s.Sent = append(s.Sent, SentMessage{QueueURL: in.QueueURL, Body: in.Body, Attributes: in.Attributes})

	return &gosqs.SendMessageOutput{MessageID: uuid.NewString()}, nil
}

func (s *StubTransport) SendMessageBatch(ctx context.Context, in *gosqs.SendMessageBatchInput) (*gosqs.SendMessageBatchOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeErr("sendBatch"); err != nil {
		return nil, err
	}

	out := &gosqs.SendMessageBatchOutput{}
	s.SendBatchSizes = append(s.SendBatchSizes, len(in.Entries))
	for _, e := range in.Entries {
		if s.failBodies[e.Body] {
			out.Failed = append(out.Failed, gosqs.SendFailure{ID: e.ID, Code: "StubRejected", Message: "rejected by FailBody"})
			continue
		}
		s.Sent = append(s.Sent, SentMessage{QueueURL: in.QueueURL, Body: e.Body, Attributes: e.Attributes})
		out.Successful = append(out.Successful, gosqs.SendBatchResultEntry{ID: e.ID, MessageID: uuid.NewString()})
	}

	return out, nil
}

func (s *StubTransport) ChangeMessageVisibility(ctx context.Context, in *gosqs.ChangeMessageVisibilityInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeErr("visibility"); err != nil {
		return err
	}

	s.Visibility = append(s.Visibility, DeletedEntry{QueueURL: in.QueueURL, ReceiptHandle: in.ReceiptHandle})
	return nil
}

func (s *StubTransport) CreateQueue(ctx context.Context, in *gosqs.CreateQueueInput) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queueURL = "https://sqs.stub.local/000000000000/" + in.QueueName
	return s.queueURL, nil
}

func (s *StubTransport) DeleteQueue(ctx context.Context, queueURL string) error {
	return nil
}

func (s *StubTransport) PurgeQueue(ctx context.Context, queueURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inbox = nil
	return nil
}

func (s *StubTransport) GetQueueURL(ctx context.Context, in *gosqs.GetQueueURLInput) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queueURL, nil
}

func (s *StubTransport) GetQueueAttributes(ctx context.Context, queueURL string, names []string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(names))
	for _, n := range names {
		out[n] = s.attrs[n]
	}
	return out, nil
}

func (s *StubTransport) PublishSNS(ctx context.Context, topicARN, message string, attrs map[string]gosqs.Attribute) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeErr("publish"); err != nil {
		return "", err
	}

	s.Broadcasts = append(s.Broadcasts, SentMessage{TopicARN: topicARN, Body: message, Attributes: attrs})
	return uuid.NewString(), nil
}
