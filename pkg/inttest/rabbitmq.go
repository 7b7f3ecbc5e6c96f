package inttest

import (
	"context"
	"fmt"
	"testing"

	"github.com/docker/go-connections/nat"
	amqpgo "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const amqpPort = "5672"
const natAMQPPort = amqpPort + "/tcp"

// SetupRabbitMQ creates a RabbitMQ container with an AMQP client ready to send messages to it. The
// management plugin is enabled so a paused test can be inspected through the admin panel.
func SetupRabbitMQ(t *testing.T) *AMQP {
	t.Helper()
	require := require.New(t)
	ctx := context.TODO()

	container, err := newRabbitMQ(ctx)
	require.NoError(err, "failed setting up RabbitMQ")
	t.Cleanup(func() {
		require.NoError(container.Terminate(ctx), "failed to terminate RabbitMQ")
	})

	URI, err := container.AMQPURI(ctx)
	require.NoError(err, "failed to get RabbitMQ AMQP URI")
	conn, err := amqpgo.Dial(URI)
	require.NoError(err, "failed setting up AMQP connection")
	t.Cleanup(func() {
		require.NoError(conn.Close(), "failed to close AMQP connection")
	})
	channel, err := conn.Channel()
	require.NoError(err, "failed setting up AMQP channel")

	return &AMQP{
		URI:     URI,
		Host:    container.host,
		Port:    container.port,
		Channel: channel,
	}
}

// AMQP allows making requests to RabbitMQ. It does so by opening a connection and channel to
// RabbitMQ via the low-level github.com/rabbitmq/amqp091-go library.
type AMQP struct {
	URI     string
	Host    string
	Port    int
	Channel *amqpgo.Channel
}

type rabbitmqContainer struct {
	testcontainers.Container
	user string
	pw   string
	host string
	port int
}

func (rc *rabbitmqContainer) AMQPURI(ctx context.Context) (string, error) {
	ip, err := rc.Host(ctx)
	if err != nil {
		return "", err
	}
	port, err := rc.MappedPort(ctx, nat.Port(natAMQPPort))
	if err != nil {
		return "", err
	}
	rc.host = ip
	rc.port = port.Int()
	return fmt.Sprintf("amqp://%s:%s@%s:%s", rc.user, rc.pw, ip, port.Port()), nil
}

func newRabbitMQ(ctx context.Context) (*rabbitmqContainer, error) {
	user := "guest"
	pw := "guest"
	req := testcontainers.ContainerRequest{
		Image: "bitnami/rabbitmq:3.13",
		Env: map[string]string{
			"RABBITMQ_USERNAME":                    user,
			"RABBITMQ_PASSWORD":                    pw,
			"RABBITMQ_MANAGEMENT_ALLOW_WEB_ACCESS": "true",
			"RABBITMQ_DISK_FREE_ABSOLUTE_LIMIT":    "100MB",
			"RABBITMQ_PLUGINS":                     "rabbitmq_management",
		},
		ExposedPorts: []string{natAMQPPort, "15672/tcp"},
		WaitingFor:   wait.ForLog("Time to start RabbitMQ").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, err
	}

	return &rabbitmqContainer{
		Container: container,
		user:      user,
		pw:        pw,
	}, nil
}
