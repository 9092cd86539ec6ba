package gosqs

import (
	"context"
	"testing"

	"github.com/qhenkart/gosqs/sqstesting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessageBypassesBatchingAndSendsDirectly(t *testing.T) {
	stub := sqstesting.NewStubTransport("https://sqs.stub.local/000000000000/test")
	c := newTestConsumer(t, stub, nil)

	id, err := c.SendMessage(context.Background(), "hello", nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	require.Len(t, stub.Sent, 1)
	assert.Equal(t, "hello", stub.Sent[0].Body)
}

func TestSendMessageJSONEncodesNonStringBodies(t *testing.T) {
	stub := sqstesting.NewStubTransport("https://sqs.stub.local/000000000000/test")
	c := newTestConsumer(t, stub, nil)

	type payload struct {
		Name string `json:"name"`
	}

	_, err := c.SendMessage(context.Background(), payload{Name: "card"}, nil, nil)
	require.NoError(t, err)
	require.Len(t, stub.Sent, 1)
	assert.JSONEq(t, `{"name":"card"}`, stub.Sent[0].Body)
}

func TestSendMessagesChunksAndMergesResultsByID(t *testing.T) {
	stub := sqstesting.NewStubTransport("https://sqs.stub.local/000000000000/test")
	c := newTestConsumer(t, stub, nil)

	bodies := make([]string, 23)
	for i := range bodies {
		bodies[i] = "body"
	}

	result, err := c.SendMessages(context.Background(), bodies, nil, nil)
	require.NoError(t, err)

	assert.Len(t, result.Successful, 23)
	assert.Empty(t, result.Failed)
	assert.Len(t, stub.Sent, 23)
}

func TestSendMessagesSurfacesBatchCallFailure(t *testing.T) {
	stub := sqstesting.NewStubTransport("https://sqs.stub.local/000000000000/test")
	c := newTestConsumer(t, stub, nil)

	stub.FailNext("sendBatch", ErrPublish)

	result, err := c.SendMessages(context.Background(), []string{"a", "b"}, nil, nil)
	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestSendMessagesEmptyInputReturnsEmptyResult(t *testing.T) {
	stub := sqstesting.NewStubTransport("https://sqs.stub.local/000000000000/test")
	c := newTestConsumer(t, stub, nil)

	result, err := c.SendMessages(context.Background(), []string{}, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Successful)
	assert.Empty(t, result.Failed)
}
