//go:build integration

package messaging_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"scenario-admin/internal/messaging"
	"scenario-admin/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

const testQueue = "scenario_admin_audit_test"

type RabbitMQPublisherSuite struct {
	suite.Suite
	ctx       context.Context
	container *rabbitmq.RabbitMQContainer
	conn      *amqp.Connection
}

func (s *RabbitMQPublisherSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := rabbitmq.Run(s.ctx,
		"rabbitmq:3-management-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete"),
		),
	)
	require.NoError(s.T(), err)
	s.container = container

	amqpURL, err := container.AmqpURL(s.ctx)
	require.NoError(s.T(), err)

	s.conn, err = messaging.ConnectRabbitMQ(amqpURL, 5, time.Second, zap.NewNop())
	require.NoError(s.T(), err)
}

func (s *RabbitMQPublisherSuite) TearDownSuite() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *RabbitMQPublisherSuite) TestPublishDeliversPersistentJSON() {
	publisher, err := messaging.NewRabbitMQAuditPublisher(s.conn, testQueue, zap.NewNop())
	s.Require().NoError(err)
	defer publisher.Close()

	event := messaging.NewAuditEvent(messaging.ActionScenarioCreated, models.User{ID: "u1", Email: "ann@example.com"}, "s1", "Route A")
	s.Require().NoError(publisher.Publish(s.ctx, event))

	ch, err := s.conn.Channel()
	s.Require().NoError(err)
	defer ch.Close()

	var msg amqp.Delivery
	s.Require().Eventually(func() bool {
		d, ok, err := ch.Get(testQueue, true)
		if err != nil || !ok {
			return false
		}
		msg = d
		return true
	}, 10*time.Second, 100*time.Millisecond)

	s.Equal("application/json", msg.ContentType)
	s.Equal(uint8(amqp.Persistent), msg.DeliveryMode)
	s.Equal("scenario-admin", msg.AppId)
	s.Equal(event.ID.String(), msg.MessageId)

	var got messaging.AuditEvent
	s.Require().NoError(json.Unmarshal(msg.Body, &got))
	s.Equal(event.ID, got.ID)
	s.Equal(messaging.ActionScenarioCreated, got.Action)
	s.Equal("Route A", got.SubjectName)
}

func TestRabbitMQPublisherSuite(t *testing.T) {
	suite.Run(t, new(RabbitMQPublisherSuite))
}
