package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(ctx, exchange, key, msg)
	return args.Error(0)
}

// MockMailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendWelcome(to, name, contractName string) error {
	args := m.Called(to, name, contractName)
	return args.Error(0)
}

type fakeAck struct {
	acked, nacked, requeued bool
}

func (a *fakeAck) Ack(bool) error { a.acked = true; return nil }

func (a *fakeAck) Nack(_, requeue bool) error {
	a.nacked, a.requeued = true, requeue
	return nil
}

func TestPublishCustomerConverted(t *testing.T) {
	ch := new(MockPublisher)
	var sent amqp.Publishing
	ch.On("PublishWithContext", mock.Anything, ExchangeName, RoutingKey, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(3).(amqp.Publishing) }).
		Return(nil)

	p := &RabbitMQProducer{Ch: ch}
	err := p.PublishCustomerConverted(context.Background(), CustomerConvertedPayload{
		CustomerID: "cust-1", Origin: "convert", Email: "ivan@example.com", Cost: "100.00",
	})
	require.NoError(t, err)

	assert.Equal(t, amqp.Persistent, sent.DeliveryMode)
	assert.Equal(t, "cust-1", sent.MessageId)
	assert.Equal(t, "application/json", sent.ContentType)

	var got CustomerConvertedPayload
	require.NoError(t, json.Unmarshal(sent.Body, &got))
	assert.Equal(t, "convert", got.Origin)
	assert.Equal(t, "100.00", got.Cost)
	ch.AssertExpectations(t)
}

func TestPublishCustomerConverted_Error(t *testing.T) {
	ch := new(MockPublisher)
	ch.On("PublishWithContext", mock.Anything, ExchangeName, RoutingKey, mock.Anything).Return(errors.New("channel closed"))

	err := (&RabbitMQProducer{Ch: ch}).PublishCustomerConverted(context.Background(), CustomerConvertedPayload{})
	assert.ErrorContains(t, err, "channel closed")
}

func TestWorkerProcess(t *testing.T) {
	body := func(p CustomerConvertedPayload) []byte {
		b, _ := json.Marshal(p)
		return b
	}

	t.Run("sends welcome and acks", func(t *testing.T) {
		mailer := new(MockMailer)
		mailer.On("SendWelcome", "ivan@example.com", "Ivan Petrov", "C-1").Return(nil)
		w := &Worker{Mailer: mailer, logger: zap.NewNop()}
		ack := &fakeAck{}

		w.process(body(CustomerConvertedPayload{
			FirstName: "Ivan", LastName: "Petrov", Email: "ivan@example.com", ContractName: "C-1",
		}), ack)

		assert.True(t, ack.acked)
		mailer.AssertExpectations(t)
	})

	t.Run("malformed body is dead lettered", func(t *testing.T) {
		w := &Worker{Mailer: new(MockMailer), logger: zap.NewNop()}
		ack := &fakeAck{}

		w.process([]byte("{"), ack)

		assert.True(t, ack.nacked)
		assert.False(t, ack.requeued)
	})

	t.Run("missing email is skipped", func(t *testing.T) {
		mailer := new(MockMailer)
		w := &Worker{Mailer: mailer, logger: zap.NewNop()}
		ack := &fakeAck{}

		w.process(body(CustomerConvertedPayload{FirstName: "Ivan"}), ack)

		assert.True(t, ack.acked)
		mailer.AssertNotCalled(t, "SendWelcome", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("mail failure is dead lettered", func(t *testing.T) {
		mailer := new(MockMailer)
		mailer.On("SendWelcome", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))
		w := &Worker{Mailer: mailer, logger: zap.NewNop()}
		ack := &fakeAck{}

		w.process(body(CustomerConvertedPayload{FirstName: "Ivan", Email: "ivan@example.com"}), ack)

		assert.True(t, ack.nacked)
		assert.False(t, ack.acked)
	})
}

type fakeChannel struct {
	declared []string
	bound    map[string]string
	args     map[string]amqp.Table
	failOn   string
}

func (c *fakeChannel) ExchangeDeclare(name, _ string, _, _, _, _ bool, _ amqp.Table) error {
	if name == c.failOn {
		return errors.New("declare failed")
	}
	c.declared = append(c.declared, name)
	return nil
}

func (c *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, args amqp.Table) (amqp.Queue, error) {
	c.declared = append(c.declared, name)
	c.args[name] = args
	return amqp.Queue{Name: name}, nil
}

func (c *fakeChannel) QueueBind(name, _, exchange string, _ bool, _ amqp.Table) error {
	c.bound[name] = exchange
	return nil
}

func TestSetupTopology(t *testing.T) {
	ch := &fakeChannel{bound: map[string]string{}, args: map[string]amqp.Table{}}
	require.NoError(t, setupTopology(ch))

	assert.Equal(t, []string{DLXName, DLQName, ExchangeName, QueueName}, ch.declared)
	assert.Equal(t, DLXName, ch.bound[DLQName])
	assert.Equal(t, ExchangeName, ch.bound[QueueName])
	assert.Equal(t, DLXName, ch.args[QueueName]["x-dead-letter-exchange"])
}

func TestSetupTopology_Error(t *testing.T) {
	ch := &fakeChannel{bound: map[string]string{}, args: map[string]amqp.Table{}, failOn: ExchangeName}
	assert.Error(t, setupTopology(ch))
	assert.NotContains(t, ch.declared, QueueName)
}
