package kafka

import "errors"

var (
	ErrNoBrokers          = errors.New("kafka: no brokers configured")
	ErrNoTopics           = errors.New("kafka: no topics configured")
	ErrGroupRequired      = errors.New("kafka: group_id is required to consume more than one topic")
	ErrUnsupportedSASL    = errors.New("kafka: unsupported SASL mechanism")
	ErrInvalidStartOffset = errors.New("kafka: start_offset must be \"first\" or \"last\"")
)
