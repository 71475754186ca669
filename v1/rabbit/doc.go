// Package rabbit is the RabbitMQ transport of the ingestion service.
//
// A Consumer declares a durable exchange (topic by default) and a durable
// queue bound with one or more binding keys, then delivers every message as
// an ingest.Message. The AMQP routing key is the ingestion topic, so with a
// topic exchange each distinct routing key gets its own pipeline and series.
//
// Messages are acknowledged through Message.Commit once the session processed
// them, including payloads it dropped as malformed, so a poison message is
// not redelivered forever.
//
// Basic Usage:
//
//	consumer, err := rabbit.NewConsumer(rabbit.Config{
//		Connection: rabbit.Connection{
//			Host:     "localhost",
//			Port:     5672,
//			User:     "guest",
//			Password: "guest",
//		},
//		Exchange: rabbit.Exchange{Name: "telemetry"},
//		Queue: rabbit.Queue{
//			Name:          "pbseries",
//			BindingKeys:   []string{"sensors.#"},
//			PrefetchCount: 64,
//		},
//	}, log)
//	if err != nil {
//		return err
//	}
//	go consumer.RetryConnection()
//	defer consumer.Close()
//
//	wg := &sync.WaitGroup{}
//	err = session.Run(ctx, consumer.Consume(ctx, wg))
//
// Error Handling:
//
// Connection and declaration failures wrap both the AMQP cause and one of the
// package errors from TranslateError, so callers can use errors.Is:
//
//	if errors.Is(err, rabbit.ErrAccessDenied) {
//		// fix credentials or vhost permissions
//	}
//
// Configuration:
//
//	RABBITMQ_HOST=localhost
//	RABBITMQ_PORT=5672
//	RABBITMQ_EXCHANGE_NAME=telemetry
//	RABBITMQ_QUEUE_NAME=pbseries
//	RABBITMQ_BINDING_KEYS=sensors.#,vehicles.*.gps
package rabbit
