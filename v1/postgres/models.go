package postgres

// NumericSample is one point of a numeric series.
type NumericSample struct {
	ID        uint64  `gorm:"primaryKey;autoIncrement"`
	SeriesKey string  `gorm:"not null;index:idx_numeric_series,priority:1"`
	Timestamp float64 `gorm:"not null;index:idx_numeric_series,priority:2"`
	Value     float64 `gorm:"not null"`
}

func (NumericSample) TableName() string { return "numeric_samples" }

// TextSample is one point of a text series.
type TextSample struct {
	ID        uint64  `gorm:"primaryKey;autoIncrement"`
	SeriesKey string  `gorm:"not null;index:idx_text_series,priority:1"`
	Timestamp float64 `gorm:"not null;index:idx_text_series,priority:2"`
	Value     string  `gorm:"not null"`
}

func (TextSample) TableName() string { return "text_samples" }
