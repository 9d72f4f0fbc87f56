package iostore

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"ramalg/internal/domain"
	"ramalg/internal/relation"
)

// driverNames maps the directive's "dialect" parameter to the
// database/sql driver name registered by its blank import, mirroring
// sentra/internal/database/database.go's dialect switch.
var driverNames = map[string]string{
	"mysql":    "mysql",
	"postgres": "postgres",
	"sqlite":   "sqlite",
	"mssql":    "sqlserver",
}

// SQLFactory implements the SQL-table Load/Store directive kind. Params:
// "dialect" (one of mysql/postgres/sqlite/mssql), "dsn", "table".
type SQLFactory struct{}

// NewSQLFactory returns the SQL-backed I/O directive factory.
func NewSQLFactory() *SQLFactory { return &SQLFactory{} }

func (f *SQLFactory) Name() string  { return "sql" }
func (f *SQLFactory) Reader() Reader { return sqlReader{} }
func (f *SQLFactory) Writer() Writer { return sqlWriter{} }

func openDirective(d Directive) (*sql.DB, error) {
	driver, ok := driverNames[d.Params["dialect"]]
	if !ok {
		return nil, errors.Errorf("unknown SQL dialect %q", d.Params["dialect"])
	}
	db, err := sql.Open(driver, d.Params["dsn"])
	if err != nil {
		return nil, errors.Wrapf(err, "open %s dsn", driver)
	}
	return db, nil
}

func columnList(arity int) string {
	cols := make([]string, arity)
	for i := range cols {
		cols[i] = fmt.Sprintf("c%d", i)
	}
	return strings.Join(cols, ", ")
}

type sqlReader struct{}

func (sqlReader) Read(d Directive, symbols *domain.SymbolTable, into relation.Store) error {
	db, err := openDirective(d)
	if err != nil {
		return err
	}
	defer db.Close()

	query := fmt.Sprintf("SELECT %s FROM %s", columnList(d.Spec.Arity), d.Params["table"])
	rows, err := db.Query(query)
	if err != nil {
		return errors.Wrapf(err, "query %s", d.Params["table"])
	}
	defer rows.Close()

	arity := d.Spec.Arity
	scanTargets := make([]interface{}, arity)
	raw := make([]sql.NullString, arity)
	for i := range raw {
		scanTargets[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(scanTargets...); err != nil {
			return errors.Wrapf(err, "scan row from %s", d.Params["table"])
		}
		tuple := make(relation.Tuple, arity)
		for i, v := range raw {
			if i < len(d.Spec.SymbolMask) && d.Spec.SymbolMask[i] {
				tuple[i] = symbols.Lookup(v.String)
				continue
			}
			var n int64
			fmt.Sscanf(v.String, "%d", &n)
			tuple[i] = domain.RamDomain(n)
		}
		into.Insert(tuple)
	}
	return rows.Err()
}

type sqlWriter struct{}

func (sqlWriter) Write(d Directive, symbols *domain.SymbolTable, from relation.Store) error {
	db, err := openDirective(d)
	if err != nil {
		return err
	}
	defer db.Close()

	table := d.Params["table"]
	placeholders := make([]string, d.Spec.Arity)
	for i := range placeholders {
		placeholders[i] = "?"
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, columnList(d.Spec.Arity), strings.Join(placeholders, ", "))

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrapf(err, "begin transaction for %s", table)
	}
	stmt, err := tx.Prepare(insert)
	if err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "prepare insert into %s", table)
	}
	defer stmt.Close()

	for _, tuple := range from.Snapshot() {
		args := make([]interface{}, len(tuple))
		for i, v := range tuple {
			if i < len(d.Spec.SymbolMask) && d.Spec.SymbolMask[i] {
				args[i] = symbols.Resolve(v)
				continue
			}
			args[i] = int64(v)
		}
		if _, err := stmt.Exec(args...); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "insert into %s", table)
		}
	}
	return tx.Commit()
}
