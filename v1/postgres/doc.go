// Package postgres is a PostgreSQL backend for series.Store.
//
// Every point becomes one row in numeric_samples or text_samples, keyed by
// the series key ("<topic>/<flattened key>") and indexed on
// (series_key, timestamp). Rows keep insertion order through their serial id,
// which is the order the sink appended them in.
//
// Basic Usage:
//
//	store, err := postgres.NewPostgres(postgres.Config{
//		Connection: postgres.Connection{
//			Host:     "localhost",
//			Port:     "5432",
//			User:     "pbseries",
//			Password: "secret",
//			DbName:   "telemetry",
//			SSLMode:  "disable",
//		},
//	}, log)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	if err := store.Migrate(ctx); err != nil {
//		return err
//	}
//	sink := series.NewSink(store)
//
// Error Handling:
//
// Driver and GORM errors are translated into package errors such as
// ErrUndefinedTable or ErrConnectionFailed, so callers can use errors.Is
// without depending on pgconn.
//
// FX Module Integration:
//
//	app := fx.New(
//		logger.FXModule,
//		postgres.FXModule,
//		fx.Provide(func(p *postgres.Postgres) series.Store { return p }),
//	)
package postgres
