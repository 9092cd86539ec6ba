package gosqs

import (
	"fmt"
)

// SQSError defines the error handler for the gosqs package. SQSError satisfies the error interface and can be
// used safely with other error handlers
type SQSError struct {
	Err string `json:"err"`
	// contextErr passes the actual error as part of the error message
	contextErr error
}

// Error is used for implementing the error interface, and for creating
// a proper error string
func (e *SQSError) Error() string {
	if e.contextErr != nil {
		return fmt.Sprintf("%s: %s", e.Err, e.contextErr.Error())
	}

	return e.Err
}

// Unwrap lets errors.Is/errors.As see through to the wrapped error
func (e *SQSError) Unwrap() error {
	return e.contextErr
}

// Context is used for creating a new instance of the error with the contextual error attached
func (e *SQSError) Context(err error) *SQSError {
	ctxErr := new(SQSError)
	*ctxErr = *e
	ctxErr.contextErr = err

	return ctxErr
}

// newSQSErr creates a new SQS Error
func newSQSErr(msg string) *SQSError {
	e := new(SQSError)
	e.Err = msg
	return e
}

// ErrUndefinedPublisher no publisher is stored in the context
var ErrUndefinedPublisher = newSQSErr("sqs publisher is undefined")

// ErrInvalidCreds invalid credentials
var ErrInvalidCreds = newSQSErr("invalid aws credentials")

// ErrUnableToDelete unable to delete item
var ErrUnableToDelete = newSQSErr("unable to delete item in queue")

// ErrUnableToExtend unable to extend message processing time
var ErrUnableToExtend = newSQSErr("unable to extend message processing time")

// ErrQueueURL undefined queueURL
var ErrQueueURL = newSQSErr("undefined queueURL")

// ErrMarshal unable to marshal request
var ErrMarshal = newSQSErr("unable to marshal request")

// ErrInvalidVal the custom attribute value must match the type of the custom attribute Datatype
var ErrInvalidVal = newSQSErr("value type does not match specified datatype")

// ErrNoRoute message received without a route
var ErrNoRoute = newSQSErr("message received without a route")

// ErrGetMessage fires when a request to retrieve messages from sqs fails
var ErrGetMessage = newSQSErr("unable to retrieve message")

// ErrMessageProcessing occurs when a message has exceeded the extension ceiling
var ErrMessageProcessing = newSQSErr("processing time exceeding limit")

// ErrBodyOverflow AWS SQS can only hold payloads of 262144 bytes. Messages must either be routed to s3 or truncated
var ErrBodyOverflow = newSQSErr("message surpasses sqs limit of 262144, please truncate body")

// ErrPublish if there is an error publishing a message
var ErrPublish = newSQSErr("message publish failure")

// ErrConfig is raised synchronously at construction time for missing queue identity or similar misconfiguration
var ErrConfig = newSQSErr("invalid consumer configuration")

// ErrInvalidArgument reports an argument of the wrong kind. deleteMessage/releaseMessage take a *Message, so
// the engine itself never returns it
var ErrInvalidArgument = newSQSErr("invalid argument")

// ErrNotRunning is raised when an operation requires a running consumer
var ErrNotRunning = newSQSErr("consumer is not running")

// DeleteFailure is the per-entry delete failure reported by the transport's batch delete response. It is
// surfaced via the delError event and as the rejection reason for the corresponding per-message delete
// promise.
type DeleteFailure struct {
	ID          string
	Code        string
	Message     string
	SenderFault bool
}

func (e *DeleteFailure) Error() string {
	return fmt.Sprintf("delete failed for id %s: %s (%s)", e.ID, e.Message, e.Code)
}

// SendFailure is the per-entry send failure reported by the transport's batch send response.
type SendFailure struct {
	ID          string
	Code        string
	Message     string
	SenderFault bool
}

func (e *SendFailure) Error() string {
	return fmt.Sprintf("send failed for id %s: %s (%s)", e.ID, e.Message, e.Code)
}
