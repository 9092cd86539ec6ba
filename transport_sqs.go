package gosqs

import (
	"context"
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/aws/aws-sdk-go/service/sns/snsiface"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
)

// sqsTransport is the production Transport (spec §6), backed by sqsiface.SQSAPI/snsiface.SNSAPI
// rather than the concrete *sqs.SQS/*sns.SNS clients so code inside this package can swap in a mock
// of the AWS interfaces without going through sqstesting.StubTransport. The type and its fields are
// unexported, so callers outside the package cannot.
type sqsTransport struct {
	api    sqsiface.SQSAPI
	snsAPI snsiface.SNSAPI
}

func newSQSTransport(cfg Config) (Transport, error) {
	provider := cfg.SessionProvider
	if provider == nil {
		provider = newSession
	}

	sess, err := provider(cfg)
	if err != nil {
		return nil, err
	}

	return &sqsTransport{api: sqs.New(sess), snsAPI: sns.New(sess)}, nil
}

func (t *sqsTransport) ReceiveMessage(ctx context.Context, in *ReceiveMessageInput) (*ReceiveMessageOutput, error) {
	input := &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(in.QueueURL),
		MaxNumberOfMessages:   aws.Int64(int64(in.MaxNumberOfMessages)),
		WaitTimeSeconds:       aws.Int64(int64(in.WaitTimeSeconds)),
		MessageAttributeNames: aws.StringSlice(in.MessageAttributeNames),
		AttributeNames:        aws.StringSlice(in.AttributeNames),
	}
	if in.VisibilityTimeout != nil {
		input.VisibilityTimeout = aws.Int64(int64(*in.VisibilityTimeout))
	}

	out, err := t.api.ReceiveMessageWithContext(ctx, input)
	if err != nil {
		return nil, translateAWSErr(err)
	}

	messages := make([]RawMessage, len(out.Messages))
	for i, m := range out.Messages {
		messages[i] = RawMessage{
			MessageID:               aws.StringValue(m.MessageId),
			ReceiptHandle:           aws.StringValue(m.ReceiptHandle),
			Body:                    []byte(aws.StringValue(m.Body)),
			Attributes:              decodeMessageAttributes(m.MessageAttributes),
			SystemAttributes:        decodeSystemAttributes(m.Attributes),
			ApproximateReceiveCount: parseIntAttr(aws.StringValue(m.Attributes["ApproximateReceiveCount"])),
		}
	}

	return &ReceiveMessageOutput{Messages: messages}, nil
}

func (t *sqsTransport) DeleteMessageBatch(ctx context.Context, in *DeleteMessageBatchInput) (*DeleteMessageBatchOutput, error) {
	entries := make([]*sqs.DeleteMessageBatchRequestEntry, len(in.Entries))
	for i, e := range in.Entries {
		entries[i] = &sqs.DeleteMessageBatchRequestEntry{
			Id:            aws.String(e.ID),
			ReceiptHandle: aws.String(e.ReceiptHandle),
		}
	}

	out, err := t.api.DeleteMessageBatchWithContext(ctx, &sqs.DeleteMessageBatchInput{
		QueueUrl: aws.String(in.QueueURL),
		Entries:  entries,
	})
	if err != nil {
		return nil, translateAWSErr(err)
	}

	result := &DeleteMessageBatchOutput{}
	for _, s := range out.Successful {
		result.Successful = append(result.Successful, aws.StringValue(s.Id))
	}
	for _, f := range out.Failed {
		result.Failed = append(result.Failed, DeleteFailure{
			ID:          aws.StringValue(f.Id),
			Code:        aws.StringValue(f.Code),
			Message:     aws.StringValue(f.Message),
			SenderFault: aws.BoolValue(f.SenderFault),
		})
	}

	return result, nil
}

func (t *sqsTransport) SendMessage(ctx context.Context, in *SendMessageInput) (*SendMessageOutput, error) {
	input := &sqs.SendMessageInput{
		QueueUrl:          aws.String(in.QueueURL),
		MessageBody:       aws.String(in.Body),
		MessageAttributes: encodeMessageAttributes(in.Attributes),
	}
	if in.DelaySeconds != nil {
		input.DelaySeconds = aws.Int64(int64(*in.DelaySeconds))
	}

	out, err := t.api.SendMessageWithContext(ctx, input)
	if err != nil {
		return nil, translateAWSErr(err)
	}

	return &SendMessageOutput{MessageID: aws.StringValue(out.MessageId)}, nil
}

func (t *sqsTransport) SendMessageBatch(ctx context.Context, in *SendMessageBatchInput) (*SendMessageBatchOutput, error) {
	entries := make([]*sqs.SendMessageBatchRequestEntry, len(in.Entries))
	for i, e := range in.Entries {
		entry := &sqs.SendMessageBatchRequestEntry{
			Id:                aws.String(e.ID),
			MessageBody:       aws.String(e.Body),
			MessageAttributes: encodeMessageAttributes(e.Attributes),
		}
		if e.DelaySeconds != nil {
			entry.DelaySeconds = aws.Int64(int64(*e.DelaySeconds))
		}
		if e.MessageGroupID != nil {
			entry.MessageGroupId = e.MessageGroupID
		}
		if e.MessageDeduplicationID != nil {
			entry.MessageDeduplicationId = e.MessageDeduplicationID
		}
		entries[i] = entry
	}

	out, err := t.api.SendMessageBatchWithContext(ctx, &sqs.SendMessageBatchInput{
		QueueUrl: aws.String(in.QueueURL),
		Entries:  entries,
	})
	if err != nil {
		return nil, translateAWSErr(err)
	}

	result := &SendMessageBatchOutput{}
	for _, s := range out.Successful {
		result.Successful = append(result.Successful, SendBatchResultEntry{
			ID:        aws.StringValue(s.Id),
			MessageID: aws.StringValue(s.MessageId),
		})
	}
	for _, f := range out.Failed {
		result.Failed = append(result.Failed, SendFailure{
			ID:          aws.StringValue(f.Id),
			Code:        aws.StringValue(f.Code),
			Message:     aws.StringValue(f.Message),
			SenderFault: aws.BoolValue(f.SenderFault),
		})
	}

	return result, nil
}

func (t *sqsTransport) ChangeMessageVisibility(ctx context.Context, in *ChangeMessageVisibilityInput) error {
	_, err := t.api.ChangeMessageVisibilityWithContext(ctx, &sqs.ChangeMessageVisibilityInput{
		QueueUrl:          aws.String(in.QueueURL),
		ReceiptHandle:     aws.String(in.ReceiptHandle),
		VisibilityTimeout: aws.Int64(int64(in.VisibilityTimeout)),
	})
	if err != nil {
		return translateAWSErr(err)
	}
	return nil
}

func (t *sqsTransport) CreateQueue(ctx context.Context, in *CreateQueueInput) (string, error) {
	attrs := map[string]*string{}
	if in.VisibilityTimeout != nil {
		attrs["VisibilityTimeout"] = aws.String(strconv.Itoa(*in.VisibilityTimeout))
	}
	if in.DelaySeconds != nil {
		attrs["DelaySeconds"] = aws.String(strconv.Itoa(*in.DelaySeconds))
	}
	if in.MaximumMessageSize != nil {
		attrs["MaximumMessageSize"] = aws.String(strconv.Itoa(*in.MaximumMessageSize))
	}
	if in.MessageRetentionPeriod != nil {
		attrs["MessageRetentionPeriod"] = aws.String(strconv.Itoa(*in.MessageRetentionPeriod))
	}
	if in.ReceiveWaitTimeSeconds != nil {
		attrs["ReceiveMessageWaitTimeSeconds"] = aws.String(strconv.Itoa(*in.ReceiveWaitTimeSeconds))
	}
	if in.Policy != nil {
		attrs["Policy"] = in.Policy
	}

	out, err := t.api.CreateQueueWithContext(ctx, &sqs.CreateQueueInput{
		QueueName:  aws.String(in.QueueName),
		Attributes: attrs,
	})
	if err != nil {
		return "", translateAWSErr(err)
	}

	return aws.StringValue(out.QueueUrl), nil
}

func (t *sqsTransport) DeleteQueue(ctx context.Context, queueURL string) error {
	_, err := t.api.DeleteQueueWithContext(ctx, &sqs.DeleteQueueInput{QueueUrl: aws.String(queueURL)})
	if err != nil {
		return translateAWSErr(err)
	}
	return nil
}

func (t *sqsTransport) PurgeQueue(ctx context.Context, queueURL string) error {
	_, err := t.api.PurgeQueueWithContext(ctx, &sqs.PurgeQueueInput{QueueUrl: aws.String(queueURL)})
	if err != nil {
		return translateAWSErr(err)
	}
	return nil
}

func (t *sqsTransport) GetQueueURL(ctx context.Context, in *GetQueueURLInput) (string, error) {
	input := &sqs.GetQueueUrlInput{QueueName: aws.String(in.QueueName)}
	if in.QueueOwnerAWSAccountID != nil {
		input.QueueOwnerAWSAccountId = in.QueueOwnerAWSAccountID
	}

	out, err := t.api.GetQueueUrlWithContext(ctx, input)
	if err != nil {
		return "", translateAWSErr(err)
	}

	return aws.StringValue(out.QueueUrl), nil
}

func (t *sqsTransport) GetQueueAttributes(ctx context.Context, queueURL string, names []string) (map[string]string, error) {
	out, err := t.api.GetQueueAttributesWithContext(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl:       aws.String(queueURL),
		AttributeNames: aws.StringSlice(names),
	})
	if err != nil {
		return nil, translateAWSErr(err)
	}

	result := make(map[string]string, len(out.Attributes))
	for k, v := range out.Attributes {
		result[k] = aws.StringValue(v)
	}
	return result, nil
}

func (t *sqsTransport) PublishSNS(ctx context.Context, topicARN, message string, attrs map[string]Attribute) (string, error) {
	input := &sns.PublishInput{
		TopicArn:          aws.String(topicARN),
		Message:           aws.String(message),
		MessageAttributes: encodeSNSAttributes(attrs),
	}

	out, err := t.snsAPI.PublishWithContext(ctx, input)
	if err != nil {
		return "", translateAWSErr(err)
	}

	return aws.StringValue(out.MessageId), nil
}

func encodeSNSAttributes(attrs map[string]Attribute) map[string]*sns.MessageAttributeValue {
	if len(attrs) == 0 {
		return nil
	}

	out := make(map[string]*sns.MessageAttributeValue, len(attrs))
	for k, a := range attrs {
		v := &sns.MessageAttributeValue{DataType: aws.String(string(a.Type))}
		switch a.Type {
		case AttrBinary:
			v.BinaryValue = a.Bytes
		default:
			v.StringValue = aws.String(a.Text)
		}
		out[k] = v
	}
	return out
}

func encodeMessageAttributes(attrs map[string]Attribute) map[string]*sqs.MessageAttributeValue {
	if len(attrs) == 0 {
		return nil
	}

	out := make(map[string]*sqs.MessageAttributeValue, len(attrs))
	for k, a := range attrs {
		v := &sqs.MessageAttributeValue{DataType: aws.String(string(a.Type))}
		switch a.Type {
		case AttrBinary:
			v.BinaryValue = a.Bytes
		default:
			v.StringValue = aws.String(a.Text)
		}
		out[k] = v
	}
	return out
}

func decodeMessageAttributes(raw map[string]*sqs.MessageAttributeValue) map[string]Attribute {
	if len(raw) == 0 {
		return nil
	}

	out := make(map[string]Attribute, len(raw))
	for k, v := range raw {
		if v == nil {
			out[k] = unsetAttr()
			continue
		}
		switch aws.StringValue(v.DataType) {
		case string(AttrNumber):
			out[k] = NumberAttr(aws.StringValue(v.StringValue))
		case string(AttrBinary):
			out[k] = BinaryAttr(v.BinaryValue)
		default:
			out[k] = StringAttr(aws.StringValue(v.StringValue))
		}
	}
	return out
}

func decodeSystemAttributes(raw map[string]*string) map[string]string {
	if len(raw) == 0 {
		return nil
	}

	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[k] = aws.StringValue(v)
	}
	return out
}

// translateAWSErr wraps a request-cancellation into context.Canceled so ReceiveLoop can tell an
// aborted long poll apart from a genuine transport failure, and leaves every other awserr untouched
// for the caller to classify with request.IsErrorRetryable/IsErrorThrottle.
func translateAWSErr(err error) error {
	if aerr, ok := err.(awserr.Error); ok {
		if aerr.Code() == request.CanceledErrorCode {
			return context.Canceled
		}
	}
	return err
}
