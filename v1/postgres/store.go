package postgres

import (
	"context"
	"fmt"

	"github.com/Aleph-Alpha/pbseries/v1/series"
)

// Migrate creates or updates the sample tables.
func (p *Postgres) Migrate(ctx context.Context) error {
	if err := p.DB().WithContext(ctx).AutoMigrate(&NumericSample{}, &TextSample{}); err != nil {
		return fmt.Errorf("failed to migrate sample tables: %w", TranslateError(err))
	}
	return nil
}

func (p *Postgres) AppendNumeric(ctx context.Context, seriesKey string, ts, value float64) error {
	sample := NumericSample{SeriesKey: seriesKey, Timestamp: ts, Value: value}
	return TranslateError(p.DB().WithContext(ctx).Create(&sample).Error)
}

func (p *Postgres) AppendText(ctx context.Context, seriesKey string, ts float64, value string) error {
	sample := TextSample{SeriesKey: seriesKey, Timestamp: ts, Value: value}
	return TranslateError(p.DB().WithContext(ctx).Create(&sample).Error)
}

// NumericSamples returns the samples of one numeric series in insertion order.
func (p *Postgres) NumericSamples(ctx context.Context, seriesKey string) ([]NumericSample, error) {
	var out []NumericSample
	err := p.DB().WithContext(ctx).Where("series_key = ?", seriesKey).Order("id").Find(&out).Error
	return out, TranslateError(err)
}

// TextSamples returns the samples of one text series in insertion order.
func (p *Postgres) TextSamples(ctx context.Context, seriesKey string) ([]TextSample, error) {
	var out []TextSample
	err := p.DB().WithContext(ctx).Where("series_key = ?", seriesKey).Order("id").Find(&out).Error
	return out, TranslateError(err)
}

var _ series.Store = (*Postgres)(nil)
