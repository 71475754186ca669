// Package config loads the service configuration.
//
// Values come from three layers, later ones winning: a YAML file, environment
// variables named by each section's envconfig tags, and built-in defaults for
// whatever is still empty.
//
//	transport: kafka
//	store: postgres
//	ingest:
//	  unit: telemetry.proto
//	  type: sensors.Imu
//	schemas:
//	  directory: /etc/pbseries/schemas
//	kafka:
//	  brokers: [broker-1:9092]
//	  topics: [sensors.imu]
//	  group_id: pbseries
//	postgres:
//	  auto_migrate: true
//	  connection:
//	    host: db
//	    port: "5432"
//
// The same file with INGEST_TYPE=sensors.Gps in the environment binds a
// different message type without editing it.
package config
