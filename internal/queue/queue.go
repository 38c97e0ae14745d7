// internal/queue/queue.go
package queue

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

// RunQueue is the durable queue campaign run jobs travel through
// between the API and the worker fleet.
const RunQueue = "campaign_runs"

// maxRequeues bounds how many times a failed job goes back on the queue.
const maxRequeues = 3

// retryCountHeader carries the requeue count across redeliveries. A
// plain Nack keeps the original headers, so the count has to travel on
// a republished message.
const retryCountHeader = "x-retry-count"

// RunJob is one queued campaign run request.
type RunJob struct {
	RunID            string   `json:"run_id"`
	AccountLimit     int      `json:"account_limit"`
	Recipients       []string `json:"recipients"`
	Mode             string   `json:"mode"`
	PerAccountCap    int      `json:"per_account_cap"`
	SendDelaySeconds float64  `json:"send_delay_seconds"`
	SenderNameType   string   `json:"sender_name_type"`
	Subjects         []string `json:"subjects,omitempty"`
	Bodies           []string `json:"bodies,omitempty"`
}

// Publisher enqueues run jobs.
type Publisher interface {
	PublishRun(job RunJob) error
}

// AMQPPublisher publishes run jobs to RabbitMQ.
type AMQPPublisher struct {
	ch *amqp.Channel
}

func NewAMQPPublisher(conn *amqp.Connection) (*AMQPPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open queue channel: %w", err)
	}
	if _, err := ch.QueueDeclare(RunQueue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	return &AMQPPublisher{ch: ch}, nil
}

func (p *AMQPPublisher) PublishRun(job RunJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return p.ch.Publish("", RunQueue, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

func (p *AMQPPublisher) Close() error { return p.ch.Close() }

// Consume drains run jobs, invoking handle for each. A failed job is
// republished with an incremented retry-count header, up to maxRequeues
// times; malformed payloads are acked away without requeue. Blocks
// until the channel closes.
func Consume(conn *amqp.Connection, log zerolog.Logger, handle func(RunJob) error) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open queue channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(RunQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	msgs, err := ch.Consume(RunQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	for d := range msgs {
		var job RunJob
		if err := json.Unmarshal(d.Body, &job); err != nil {
			log.Warn().Err(err).Msg("invalid run job payload, dropping")
			_ = d.Ack(false)
			continue
		}

		if err := handle(job); err != nil {
			if headers, ok := nextRetry(d.Headers); ok {
				pub := amqp.Publishing{
					ContentType: "application/json",
					Headers:     headers,
					Body:        d.Body,
				}
				if pubErr := ch.Publish("", RunQueue, false, false, pub); pubErr != nil {
					// keep the job alive rather than lose it
					log.Error().Err(pubErr).Str("run", job.RunID).Msg("requeue publish failed, nacking")
					_ = d.Nack(false, true)
					continue
				}
				log.Warn().Err(err).Str("run", job.RunID).Int("retry", requeueCount(headers)).Msg("run job failed, requeued")
			} else {
				log.Error().Err(err).Str("run", job.RunID).Msg("run job permanently failed")
			}
		}
		_ = d.Ack(false)
	}
	return nil
}

// nextRetry builds the headers for a failed job's redelivery, or
// reports false once the requeue budget is spent.
func nextRetry(headers amqp.Table) (amqp.Table, bool) {
	n := requeueCount(headers)
	if n >= maxRequeues {
		return nil, false
	}
	return amqp.Table{retryCountHeader: int32(n + 1)}, true
}

func requeueCount(headers amqp.Table) int {
	if headers == nil {
		return 0
	}
	switch v := headers[retryCountHeader].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	}
	return 0
}

// InMemoryPublisher collects jobs in memory. Used in tests and for
// single-process setups without a broker.
type InMemoryPublisher struct {
	mu   sync.Mutex
	jobs []RunJob
}

func NewInMemoryPublisher() *InMemoryPublisher {
	return &InMemoryPublisher{}
}

func (p *InMemoryPublisher) PublishRun(job RunJob) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, job)
	return nil
}

// Jobs returns a copy of everything published so far.
func (p *InMemoryPublisher) Jobs() []RunJob {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]RunJob, len(p.jobs))
	copy(out, p.jobs)
	return out
}
