package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Aleph-Alpha/pbseries/v1/decoder"
	"github.com/Aleph-Alpha/pbseries/v1/flatten"
	"github.com/Aleph-Alpha/pbseries/v1/logger"
	"github.com/Aleph-Alpha/pbseries/v1/metrics"
	"github.com/Aleph-Alpha/pbseries/v1/series"
)

// pipeline is the decode+flatten state of one topic. It is not reentrant;
// mu keeps payloads of the topic strictly sequential.
type pipeline struct {
	mu        sync.Mutex
	topic     string
	decoder   *decoder.Decoder
	flattener *flatten.Flattener
	sink      *series.Sink
	logger    logger.Interface
	metrics   *metrics.Metrics
}

func (p *pipeline) process(ctx context.Context, payload []byte, ts float64) (Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	result, err := p.decodeAndFlatten(payload, ts)
	if err != nil {
		return Report{}, err
	}

	report := Report{FieldErrors: len(result.FieldErrors)}
	for _, fe := range result.FieldErrors {
		p.metrics.IncrementFieldErrors(p.topic, fieldErrorReason(fe))
		p.logger.DebugWithContext(ctx, "Skipping field", fe, map[string]interface{}{
			"topic": p.topic,
			"key":   fe.Key,
		})
	}

	var numeric, text int
	for _, pt := range result.Points {
		err := p.sink.Append(ctx, p.topic, pt.Key, pt.Timestamp, pt.Value)
		switch {
		case err == nil:
			report.Points++
			if pt.Value.Kind() == flatten.ValueNumeric {
				numeric++
			} else {
				text++
			}
		case errors.Is(err, series.ErrSeriesTypeConflict):
			report.Conflicts++
			p.metrics.IncrementConflicts(p.topic)
			p.logger.DebugWithContext(ctx, "Dropping point", err, map[string]interface{}{
				"topic": p.topic,
				"key":   pt.Key,
			})
		default:
			report.StoreErrors++
			p.logger.ErrorWithContext(ctx, "Failed to append point", err, map[string]interface{}{
				"topic": p.topic,
				"key":   pt.Key,
			})
		}
	}
	p.metrics.AddPoints(p.topic, flatten.ValueNumeric.String(), numeric)
	p.metrics.AddPoints(p.topic, flatten.ValueText.String(), text)
	return report, nil
}

// decodeAndFlatten converts a panic into ErrPanic so a single hostile
// payload cannot take the process down.
func (p *pipeline) decodeAndFlatten(payload []byte, ts float64) (result *flatten.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	inst, err := p.decoder.Decode(payload)
	if err != nil {
		return nil, err
	}
	return p.flattener.Flatten(inst, "", ts)
}

func fieldErrorReason(fe *flatten.FieldError) string {
	if errors.Is(fe, flatten.ErrUndefinedEnumValue) {
		return "undefined_enum"
	}
	return "unsupported_kind"
}
