package gosqs

import (
	"context"
	"encoding/json"
)

// Message is an immutable record decoded from a single queue-service receive result. It carries a
// non-owning back-reference to the Consumer that received it so that convenience operations (Delete,
// Release, ChangeVisibility) can be invoked directly on the message. The back-reference is a plain
// pointer, not a retained/ref-counted relation: a Message's usefulness ends the moment a terminal
// operation (Delete/Release/expiry) is applied to it, and the consumer never reaches back through it.
type Message struct {
	ID                      string
	ReceiptHandle           string
	Body                    []byte
	Attributes              map[string]Attribute
	SystemAttributes        map[string]string
	ApproximateReceiveCount int

	consumer *Consumer
}

// Decode unmarshals the message body into out using JSON.
func (m *Message) Decode(out interface{}) error {
	return json.Unmarshal(m.Body, out)
}

// DecodeModified decodes a message produced by Publisher.Modify: the body into out, and the map of
// changed fields into changes.
func (m *Message) DecodeModified(out interface{}, changes interface{}) error {
	s := struct {
		Body    interface{} `json:"Body"`
		Changes interface{} `json:"Changes"`
	}{
		Body:    out,
		Changes: changes,
	}

	return json.Unmarshal(m.Body, &s)
}

// Attribute returns the text value of a named message attribute, or "" if unset. Binary attributes
// return "".
func (m *Message) Attribute(key string) string {
	a, ok := m.Attributes[key]
	if !ok {
		return ""
	}

	return a.Text
}

// Route returns the "route" message attribute, the convention used by RegisterHandler/adapters.go for
// dispatching by event name.
func (m *Message) Route() string {
	return m.Attribute("route")
}

// Delete submits the message to the owning consumer's DeleteBatcher. The returned channel receives
// exactly one DeleteResult once the batch flush that includes this entry completes.
func (m *Message) Delete(ctx context.Context) <-chan DeleteResult {
	if m.consumer == nil {
		ch := make(chan DeleteResult, 1)
		ch <- DeleteResult{Err: ErrNotRunning}
		return ch
	}

	return m.consumer.deleteMessage(ctx, m)
}

// Release marks the message handled and immediately makes it visible again by setting its visibility
// timeout to zero, allowing another consumer to receive it right away.
func (m *Message) Release(ctx context.Context) error {
	if m.consumer == nil {
		return ErrNotRunning
	}

	return m.consumer.releaseMessage(ctx, m)
}

// ChangeVisibility renews or shortens the message's visibility timeout.
func (m *Message) ChangeVisibility(ctx context.Context, seconds int) error {
	if m.consumer == nil {
		return ErrNotRunning
	}

	return m.consumer.ChangeMessageVisibility(ctx, m.ReceiptHandle, seconds)
}

// DeleteResult is the outcome of one DeleteBatcher entry once its containing flush completes.
type DeleteResult struct {
	Err error
}
