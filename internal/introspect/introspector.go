package introspect

import (
	"context"
	"fmt"
	"time"

	"github.com/koustreak/myschema/internal/database"
	"github.com/koustreak/myschema/internal/errs"
	"github.com/koustreak/myschema/internal/logger"
	"github.com/koustreak/myschema/internal/schema"
)

// Introspector loads tables, columns and indexes of one MySQL database.
// It holds no per-call state and is safe for concurrent use; tables are
// always loaded one after the other.
type Introspector struct {
	db       database.DB
	database string
	timeout  time.Duration
	log      *logger.Logger
}

// Option configures an Introspector.
type Option func(*Introspector)

// WithDatabase selects the schema to read. Empty means the connection's
// current database.
func WithDatabase(name string) Option {
	return func(in *Introspector) { in.database = name }
}

// WithQueryTimeout bounds every catalog query; zero disables the bound.
func WithQueryTimeout(d time.Duration) Option {
	return func(in *Introspector) { in.timeout = d }
}

// WithLogger sets the logger used for skipped tables and type warnings.
func WithLogger(l *logger.Logger) Option {
	return func(in *Introspector) { in.log = l }
}

// New creates an Introspector over db.
func New(db database.DB, opts ...Option) *Introspector {
	in := &Introspector{db: db}
	for _, opt := range opts {
		opt(in)
	}
	if in.log == nil {
		in.log = logger.FromContext(context.Background())
	}
	in.log = in.log.With().Str("component", "introspect").Str("database", in.database).Logger()
	return in
}

// Database returns the configured schema name (empty for the current one).
func (in *Introspector) Database() string {
	return in.database
}

// Column loads a single column.
func (in *Introspector) Column(ctx context.Context, table, column string) (*schema.Column, error) {
	rows, err := in.columnRows(ctx, queryColumn, table, column)
	if err != nil {
		return nil, fmt.Errorf("column %s.%s: %w", table, column, err)
	}
	if len(rows) == 0 {
		return nil, errs.Newf(errs.ErrKindNotFound, "column %s.%s not found", table, column)
	}
	return RowToColumn(rows[0], in.log), nil
}

// Columns loads all columns of a table, ordered by name.
func (in *Introspector) Columns(ctx context.Context, table string) ([]*schema.Column, error) {
	rows, err := in.columnRows(ctx, queryColumns, table)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	columns := make([]*schema.Column, len(rows))
	for i, row := range rows {
		columns[i] = RowToColumn(row, in.log)
	}
	return columns, nil
}

// Index loads a single index.
func (in *Introspector) Index(ctx context.Context, table, index string) (*schema.Index, error) {
	rows, err := in.indexRows(ctx, queryIndex, table, index)
	if err != nil {
		return nil, fmt.Errorf("index %s.%s: %w", table, index, err)
	}
	if len(rows) == 0 {
		return nil, errs.Newf(errs.ErrKindNotFound, "index %s.%s not found", table, index)
	}
	return RowsToIndex(rows...)
}

// Indexes loads all indexes of a table.
func (in *Introspector) Indexes(ctx context.Context, table string) ([]*schema.Index, error) {
	rows, err := in.indexRows(ctx, queryIndexes, table)
	if err != nil {
		return nil, fmt.Errorf("indexes of %s: %w", table, err)
	}
	return GroupIndexes(rows), nil
}

// Table loads one base table with its columns and indexes.
func (in *Introspector) Table(ctx context.Context, table string) (*schema.Table, error) {
	row, err := in.tableRow(ctx, table)
	if errs.IsNotFound(err) {
		return nil, errs.Wrap(errs.ErrKindNotFound, fmt.Sprintf("table %s not found", table), err)
	}
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", table, err)
	}
	return in.load(ctx, row)
}

// Tables loads every base table, ordered by name. A table dropped while
// the run is in progress is logged and skipped; any database failure
// aborts the run.
func (in *Introspector) Tables(ctx context.Context) ([]*schema.Table, error) {
	rows, err := in.tableRows(ctx, queryTables)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	tables := make([]*schema.Table, 0, len(rows))
	for _, row := range rows {
		t, err := in.load(ctx, row)
		if errs.IsNotFound(err) {
			in.log.WarnWith("table vanished during introspection, skipped", err, map[string]interface{}{
				"table": row.TableName,
			})
			continue
		}
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// TableNames lists the base tables, ordered by name.
func (in *Introspector) TableNames(ctx context.Context) ([]string, error) {
	rows, err := in.tableRows(ctx, queryTables)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	names := make([]string, len(rows))
	for i, row := range rows {
		names[i] = row.TableName
	}
	return names, nil
}

// load reads the columns and indexes of the table described by row.
// A table without columns no longer exists.
func (in *Introspector) load(ctx context.Context, row TableRow) (*schema.Table, error) {
	columns, err := in.Columns(ctx, row.TableName)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, errs.Newf(errs.ErrKindNotFound, "table %s has no columns", row.TableName)
	}

	indexes, err := in.Indexes(ctx, row.TableName)
	if err != nil {
		return nil, err
	}

	in.log.With().
		Str("table", row.TableName).
		Int("columns", len(columns)).
		Int("indexes", len(indexes)).
		Logger().
		Debug("table loaded")

	return RowToTable(row, columns, indexes), nil
}

// --- catalog queries ---

func (in *Introspector) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if in.timeout > 0 {
		return context.WithTimeout(ctx, in.timeout)
	}
	return ctx, func() {}
}

func (in *Introspector) query(ctx context.Context, q string, args ...any) (database.Rows, context.CancelFunc, error) {
	ctx, cancel := in.withTimeout(ctx)
	rows, err := in.db.Query(ctx, q, append([]any{in.database}, args...)...)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return rows, cancel, nil
}

func (in *Introspector) columnRows(ctx context.Context, q string, args ...any) ([]ColumnRow, error) {
	rows, cancel, err := in.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer rows.Close()

	var out []ColumnRow
	for rows.Next() {
		var r ColumnRow
		if err := rows.Scan(
			&r.CharacterSetName,
			&r.CollationName,
			&r.ColumnDefault,
			&r.ColumnKey,
			&r.ColumnName,
			&r.ColumnType,
			&r.Extra,
			&r.IsNullable,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (in *Introspector) indexRows(ctx context.Context, q string, args ...any) ([]IndexRow, error) {
	rows, cancel, err := in.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer rows.Close()

	var out []IndexRow
	for rows.Next() {
		var r IndexRow
		var nonUnique int64
		if err := rows.Scan(
			&r.ColumnName,
			&r.IndexName,
			&r.IndexType,
			&nonUnique,
			&r.SeqInIndex,
			&r.SubPart,
		); err != nil {
			return nil, err
		}
		r.NonUnique = nonUnique != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// tableRow reads one base table. A missing table surfaces as
// errs.ErrKindNotFound from the driver.
func (in *Introspector) tableRow(ctx context.Context, table string) (TableRow, error) {
	ctx, cancel := in.withTimeout(ctx)
	defer cancel()

	var r TableRow
	row, err := in.db.QueryRow(ctx, queryTable, in.database, table)
	if err != nil {
		return r, err
	}
	err = row.Scan(&r.Engine, &r.TableCollation, &r.TableName)
	return r, err
}

func (in *Introspector) tableRows(ctx context.Context, q string, args ...any) ([]TableRow, error) {
	rows, cancel, err := in.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer rows.Close()

	var out []TableRow
	for rows.Next() {
		var r TableRow
		if err := rows.Scan(&r.Engine, &r.TableCollation, &r.TableName); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
