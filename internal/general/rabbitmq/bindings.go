package rabbitmq

import (
	amqp "github.com/rabbitmq/amqp091-go"

	"ride-track/internal/general/contracts"
)

// declareTopology declares the exchanges and queues this system publishes
// to. Declarations are idempotent; consumers outside this process bind
// their own queues.
func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(
		contracts.ExchangeLocationFanout,
		amqp.ExchangeFanout,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(
		contracts.QueueLocationUpdates,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return err
	}

	return ch.QueueBind(
		contracts.QueueLocationUpdates,
		"", // fanout ignores the routing key
		contracts.ExchangeLocationFanout,
		false,
		nil,
	)
}
