package config

import "errors"

var (
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrInvalidTransport  = errors.New("transport must be \"kafka\" or \"rabbit\"")
	ErrInvalidStore      = errors.New("store must be \"memory\" or \"postgres\"")
	ErrIncompleteBinding = errors.New("ingest.unit and ingest.type must be set together")
)
