package lifelog

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Source produces one named collection of records. Loading is the only
// asynchronous boundary of the pipeline; everything downstream is pure.
type Source interface {
	Load(ctx context.Context) ([]Record, error)
}

// LoadAll loads every named source, producing the collections the filter
// engine consumes. The first failing source aborts the load.
func LoadAll(ctx context.Context, sources map[string]Source) (map[string][]Record, error) {
	out := make(map[string][]Record, len(sources))
	for name, src := range sources {
		records, err := src.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load source %q: %w", name, err)
		}
		out[name] = records
	}

	return out, nil
}

// CSVSource reads records from a CSV export. Columns with a schema spec are
// coerced and unit-scaled while loading; columns without one stay strings.
type CSVSource struct {
	reader io.Reader
	schema *Schema
	logger *zap.Logger
}

// NewCSVSource returns a CSV-backed source.
func NewCSVSource(r io.Reader, schema *Schema, opts ...Option) *CSVSource {
	o := applyOptions(opts)

	return &CSVSource{
		reader: r,
		schema: schema,
		logger: o.logger,
	}
}

// Load parses the CSV. Malformed rows are skipped, not fatal; only a missing
// header aborts the load.
func (s *CSVSource) Load(_ context.Context) ([]Record, error) {
	reader := csv.NewReader(s.reader)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	records := make([]Record, 0)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.logger.Debug("skipping malformed CSV row", zap.Error(err))
			continue
		}

		rec := make(Record, len(columns))
		for i, raw := range row {
			if i >= len(columns) {
				break
			}
			raw = strings.TrimSpace(raw)

			if spec, ok := s.schema.Field(columns[i]); ok {
				rec[columns[i]] = spec.Convert(raw)
			} else {
				rec[columns[i]] = raw
			}
		}

		records = append(records, rec)
	}

	return records, nil
}

// SQLSource reads records from one table (or a table-like SQL expression),
// for dashboards backed by a local export database instead of CSV files.
type SQLSource struct {
	conn   *sql.DB
	table  string
	schema *Schema
	logger *zap.Logger
}

// NewSQLSource returns a table-backed source.
func NewSQLSource(conn *sql.DB, table string, schema *Schema, opts ...Option) *SQLSource {
	o := applyOptions(opts)

	return &SQLSource{
		conn:   conn,
		table:  table,
		schema: schema,
		logger: o.logger,
	}
}

// Ping checks the connection.
func (s *SQLSource) Ping() error {
	_, err := s.conn.Exec(`SELECT 1`)

	return err
}

// Load selects the schema's columns (or everything, without a schema) and
// scans each row into a Record through the driver's reported scan types.
func (s *SQLSource) Load(ctx context.Context) ([]Record, error) {
	query := s.buildQuery()

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to exec query: %w, query: %s", err, query)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0)
	for rows.Next() {
		dest := make([]interface{}, 0, len(types))
		for _, item := range types {
			scanType := item.ScanType()
			if scanType == nil {
				var v interface{}
				dest = append(dest, &v)
				continue
			}
			dest = append(dest, reflect.New(scanType).Interface())
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		rec := make(Record, len(types))
		for i, item := range types {
			rec[item.Name()] = normalizeScanned(dest[i])
		}

		records = append(records, s.schema.Normalize(rec))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.logger.Debug("loaded records from table",
		zap.String("table", s.table),
		zap.Int("count", len(records)),
	)

	return records, nil
}

func (s *SQLSource) buildQuery() string {
	columns := "*"
	if names := s.schema.FieldNames(); len(names) > 0 {
		columns = strings.Join(names, ", ")
	}

	return fmt.Sprintf(`SELECT %s FROM %s`, columns, s.table)
}

// normalizeScanned unwraps a scan destination into a plain record value.
func normalizeScanned(v interface{}) interface{} {
	if pv, ok := v.(*interface{}); ok {
		v = *pv
	} else {
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Ptr {
			if rv.IsNil() {
				return nil
			}
			v = rv.Elem().Interface()
		}
	}

	switch value := v.(type) {
	case []byte:
		return string(value)
	case sql.RawBytes:
		return string(value)
	case sql.NullString:
		if !value.Valid {
			return nil
		}
		return value.String
	case sql.NullTime:
		if !value.Valid {
			return nil
		}
		return value.Time
	case sql.NullFloat64:
		if !value.Valid {
			return nil
		}
		return value.Float64
	case sql.NullInt64:
		if !value.Valid {
			return nil
		}
		return value.Int64
	case time.Time:
		return value
	}

	return v
}

// SliceSource wraps an in-memory record slice, for tests and pages whose
// data arrives through another channel.
type SliceSource []Record

// Load returns the wrapped records unchanged.
func (s SliceSource) Load(_ context.Context) ([]Record, error) {
	return s, nil
}
