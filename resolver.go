package gosqs

import (
	"context"
	"net/url"
	"strconv"
)

// resolveQueueURL implements QueueResolver (spec §4.7): an explicit QueueURL is returned with no service
// call; otherwise getQueueUrl is called once and cached. Safe to call concurrently -- resolverMu guards
// the one-shot cache since this is reached both from the owner goroutine (Start) and directly from
// caller goroutines (SendMessage, the thin passthroughs).
func (c *Consumer) resolveQueueURL(ctx context.Context) (string, error) {
	if c.cfg.QueueURL != "" {
		return c.cfg.QueueURL, nil
	}

	c.resolverMu.Lock()
	defer c.resolverMu.Unlock()

	if c.resolverCached != "" {
		return c.resolverCached, nil
	}

	var accountID *string
	if c.cfg.AccountNumber != "" {
		accountID = &c.cfg.AccountNumber
	}

	resolved, err := c.transport.GetQueueURL(ctx, &GetQueueURLInput{
		QueueName:              c.cfg.QueueName,
		QueueOwnerAWSAccountID: accountID,
	})
	if err != nil {
		c.events.emitError(err)
		return "", err
	}

	if c.cfg.CorrectQueueURL {
		if rewritten, rerr := rewriteHost(resolved, c.cfg.Hostname); rerr == nil {
			resolved = rewritten
		}
	}

	c.resolverCached = resolved
	return resolved, nil
}

// rewriteHost replaces the scheme+host+port of resolved with that of endpoint, preserving the path.
func rewriteHost(resolved, endpoint string) (string, error) {
	if endpoint == "" {
		return resolved, nil
	}

	r, err := url.Parse(resolved)
	if err != nil {
		return resolved, err
	}
	e, err := url.Parse(endpoint)
	if err != nil {
		return resolved, err
	}

	r.Scheme = e.Scheme
	r.Host = e.Host

	return r.String(), nil
}

// GetQueueURL returns the resolved queue URL, resolving and caching it if necessary.
func (c *Consumer) GetQueueURL(ctx context.Context) (string, error) {
	return c.resolveQueueURL(ctx)
}

// GetQueueVisibilityTimeout fetches the queue's configured VisibilityTimeout attribute.
func (c *Consumer) GetQueueVisibilityTimeout(ctx context.Context) (int, error) {
	url, err := c.resolveQueueURL(ctx)
	if err != nil {
		return 0, err
	}

	attrs, err := c.transport.GetQueueAttributes(ctx, url, []string{"VisibilityTimeout"})
	if err != nil {
		c.events.emitError(err)
		return 0, err
	}

	return parseIntAttr(attrs["VisibilityTimeout"]), nil
}

// ChangeMessageVisibility renews or shortens the visibility timeout of the message identified by handle.
func (c *Consumer) ChangeMessageVisibility(ctx context.Context, receiptHandle string, seconds int) error {
	url, err := c.resolveQueueURL(ctx)
	if err != nil {
		return err
	}

	err = c.transport.ChangeMessageVisibility(ctx, &ChangeMessageVisibilityInput{
		QueueURL:          url,
		ReceiptHandle:     receiptHandle,
		VisibilityTimeout: seconds,
	})
	if err != nil {
		c.events.emitError(err)
		return ErrUnableToExtend.Context(err)
	}

	return nil
}

// CreateQueue creates the configured queue, applying the defaults in spec §6. QueueName must be set.
func (c *Consumer) CreateQueue(ctx context.Context) (string, error) {
	if c.cfg.QueueName == "" {
		return "", ErrConfig.Context(ErrQueueURL)
	}

	waitSecs, delaySecs, maxSize, retention := 20, 0, 262144, 345600
	in := &CreateQueueInput{
		QueueName:              c.cfg.QueueName,
		ReceiveWaitTimeSeconds: &waitSecs,
		DelaySeconds:           &delaySecs,
		MaximumMessageSize:     &maxSize,
		MessageRetentionPeriod: &retention,
	}
	if c.cfg.VisibilityTimeoutSecs != nil {
		in.VisibilityTimeout = c.cfg.VisibilityTimeoutSecs
	}

	url, err := c.transport.CreateQueue(ctx, in)
	if err != nil {
		c.events.emitError(err)
		return "", err
	}

	c.resolverMu.Lock()
	c.resolverCached = url
	c.resolverMu.Unlock()

	return url, nil
}

// DeleteQueue deletes the consumer's queue.
func (c *Consumer) DeleteQueue(ctx context.Context) error {
	url, err := c.resolveQueueURL(ctx)
	if err != nil {
		return err
	}
	if err := c.transport.DeleteQueue(ctx, url); err != nil {
		c.events.emitError(err)
		return err
	}
	return nil
}

// PurgeQueue purges all messages from the consumer's queue.
func (c *Consumer) PurgeQueue(ctx context.Context) error {
	url, err := c.resolveQueueURL(ctx)
	if err != nil {
		return err
	}
	if err := c.transport.PurgeQueue(ctx, url); err != nil {
		c.events.emitError(err)
		return err
	}
	return nil
}

func parseIntAttr(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
