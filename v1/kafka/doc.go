// Package kafka is the Kafka transport of the ingestion service.
//
// A Consumer reads one or more topics, usually as a consumer group, and
// delivers every record as an ingest.Message. The Kafka topic becomes the
// ingestion topic, the record timestamp becomes the point timestamp (or the
// receive time when the broker did not set one), and record headers are
// passed on so W3C trace context survives the hop.
//
// Offsets are committed through Message.Commit after the session processed
// the record. Without a group id the consumer reads a single partition and
// commits are skipped.
//
// Basic Usage:
//
//	consumer, err := kafka.NewConsumer(kafka.Config{
//		Brokers: []string{"localhost:9092"},
//		Topics:  []string{"sensors.imu"},
//		GroupID: "pbseries",
//	}, log)
//	if err != nil {
//		return err
//	}
//	defer consumer.Close()
//
//	wg := &sync.WaitGroup{}
//	err = session.Run(ctx, consumer.Consume(ctx, wg))
//	wg.Wait()
//
// Security:
//
// TLS (CA, client certificate) and SASL (PLAIN, SCRAM-SHA-256,
// SCRAM-SHA-512) are configured through Config.TLS and Config.SASL.
//
// Configuration:
//
//	KAFKA_BROKERS=broker-1:9092,broker-2:9092
//	KAFKA_TOPICS=sensors.imu,sensors.gps
//	KAFKA_GROUP_ID=pbseries
//	KAFKA_START_OFFSET=first
//	KAFKA_SASL_ENABLED=true
//	KAFKA_SASL_MECHANISM=SCRAM-SHA-512
package kafka
