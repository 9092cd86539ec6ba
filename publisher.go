package gosqs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Notifier used for broadcasting messages
type Notifier interface {
	ModelName() string
}

// Publisher provides an interface for sending messages through AWS SQS and SNS
type Publisher interface {
	// Create sends a message using a notifier, the modelname will be prepended to the static event, e.g card_created
	Create(n Notifier)
	// Delete sends a message using a notifier, the modelname will be prepended to the static event, e.g card_deleted
	Delete(n Notifier)
	// Update sends a message using a notifier, the modelname will be prepended to the static event, e.g card_updated
	Update(n Notifier)
	// Modify sends a message using a notifier, as a map of changes. The modelname will be prepended to the static event, e.g card_modified
	//
	// a special decoder will need to be used to process these events
	Modify(n Notifier, changes interface{})
	// Dispatch sends a message using a notifier, the modelname will be prepended to the provided event, e.g card_published
	Dispatch(n Notifier, event string)
	// Message sends a direct message to an individual queue, the queueName(receiver) must be provided. The event will be sent
	// as is, no prepending will take place. No other queues will receive this message.
	Message(queue, event string, body interface{})
}

// publisher implements Publisher over the shared Transport seam (transport.go) instead of a raw
// *sns.SNS/*sqs.SQS pair, so it exercises the same PublishSNS/SendMessage surface a Consumer uses and
// can be driven by sqstesting.StubTransport in tests.
type publisher struct {
	transport Transport

	arn       string
	env       string
	sqsURL    string
	camelCase bool

	attributes []customAttribute
	logger     Logger
}

// NewPublisher creates a new SQS/SNS publisher instance.
func NewPublisher(c Config) (Publisher, error) {
	transport, err := newSQSTransport(c)
	if err != nil {
		return nil, err
	}

	arn := c.TopicARN
	if arn == "" {
		arn = fmt.Sprintf("arn:aws:sns:%s:%s:%s-%s", c.Region, c.AWSAccountID, c.TopicPrefix, c.Env)
	}

	sqsURL := fmt.Sprintf("%s/", c.Hostname)
	if c.Hostname == "" {
		sqsURL = fmt.Sprintf("https://sqs.%s.amazonaws.com/%s/", c.Region, c.AWSAccountID)
	}

	logger := c.Logger
	if logger == nil {
		logger = newDefaultLogger()
	}

	return &publisher{
		transport:  transport,
		arn:        arn,
		env:        c.Env,
		sqsURL:     sqsURL,
		attributes: c.Attributes,
		logger:     logger,
	}, nil
}

func (p *publisher) event(n Notifier, action string) string {
	if p.camelCase {
		return fmt.Sprintf("%s%s", n.ModelName(), strings.Title(action))
	}

	return fmt.Sprintf("%s_%s", n.ModelName(), action)
}

// Create sends a message using a notifier, the modelname will be prepended to the static event, e.g card_created
func (p *publisher) Create(n Notifier) {
	e := p.event(n, "created")
	go p.broadcast(n, e)
}

// Delete sends a message using a notifier, the modelname will be prepended to the static event, e.g card_deleted
func (p *publisher) Delete(n Notifier) {
	e := p.event(n, "deleted")
	go p.broadcast(n, e)
}

// Update sends a message using a notifier, the modelname will be prepended to the static event, e.g card_updated
func (p *publisher) Update(n Notifier) {
	e := p.event(n, "updated")
	go p.broadcast(n, e)
}

type modify struct {
	Notifier `json:"body"`
	Changes  interface{} `json:"changes"`
}

// newModify creates a new struct with both Notifier and changes
func newModify(n Notifier, changes interface{}) *modify {
	return &modify{
		Notifier: n,
		Changes:  changes,
	}
}

// Modify sends a message using a notifier, as a map of changes. The modelname will be prepended to the static event, e.g card_modified
//
// a special decoder will need to be used to process these events
func (p *publisher) Modify(n Notifier, changes interface{}) {
	e := p.event(n, "modified")
	go p.broadcast(newModify(n, changes), e)
}

// Dispatch sends a message using a notifier, the modelname will be prepended to the provided event, e.g card_published
func (p *publisher) Dispatch(n Notifier, event string) {
	e := p.event(n, event)
	go p.broadcast(n, e)
}

// Message sends a direct message to an individual queue, the queueName(receiver) must be provided. The event will be sent
// as is, no prepending will take place. No other queues will receive this message.
func (p *publisher) Message(queue, event string, body interface{}) {
	name := fmt.Sprintf("%s-%s", p.env, queue)

	out, err := json.Marshal(body)
	if err != nil {
		p.logger.Println(ErrMarshal.Context(err).Error())
		return
	}

	url := p.sqsURL + name

	go p.sendDirectMessage(url, string(out), event)
}

// sendDirectMessage publishes a single SendMessage call in its own goroutine so Message never blocks
// the caller. aws-sdk-go retries the call itself via its exponential-backoff retryer (config.go's
// retryer); a failure surfacing here has already exhausted that budget.
func (p *publisher) sendDirectMessage(queueURL, body, event string) {
	ctx := context.Background()

	_, err := p.transport.SendMessage(ctx, &SendMessageInput{
		QueueURL:   queueURL,
		Body:       body,
		Attributes: p.routedAttributes(event),
	})
	if err != nil {
		if isBodyOverflow(err) {
			panic(ErrBodyOverflow.Context(err))
		}
		p.logger.Println(ErrPublish.Context(err).Error())
	}
}

// broadcast publishes body to the configured SNS topic, tagged with a route attribute of event plus
// any custom attributes configured on the publisher.
func (p *publisher) broadcast(body interface{}, event string) {
	out, err := json.Marshal(body)
	if err != nil {
		p.logger.Println(ErrMarshal.Context(err).Error())
		return
	}

	ctx := context.Background()
	if _, err := p.transport.PublishSNS(ctx, p.arn, string(out), p.routedAttributes(event)); err != nil {
		if isBodyOverflow(err) {
			panic(ErrBodyOverflow.Context(err))
		}
		p.logger.Println(ErrPublish.Context(err).Error())
	}
}

// isBodyOverflow reports whether err is SQS/SNS's InvalidParameterValue rejection for a payload past
// the 262144-byte limit.
func isBodyOverflow(err error) bool {
	return strings.Contains(err.Error(), "262144")
}

// routedAttributes builds the attribute set every publish carries: a "route" attribute set to event,
// plus the publisher's configured custom attributes.
func (p *publisher) routedAttributes(event string) map[string]Attribute {
	attrs := map[string]Attribute{"route": StringAttr(event)}
	for _, a := range p.attributes {
		if a.DataType == DataTypeNumber.String() {
			attrs[a.Title] = NumberAttr(a.Value)
		} else {
			attrs[a.Title] = StringAttr(a.Value)
		}
	}
	return attrs
}
