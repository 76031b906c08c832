package daos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/joe-ervin05/myblog/tools"
)

// Table represents a database table's live schema.
type Table struct {
	Name    string `json:"name"`
	Columns []Col  `json:"columns"` // in declaration order
}

// Col represents a column definition.
type Col struct {
	Name string `json:"name"`
	Type string `json:"type"` // declared type, upper-cased
	Pk   bool   `json:"pk"`
}

// KeyColumn returns the name of the row identity column.
func (tbl Table) KeyColumn() string {
	for _, c := range tbl.Columns {
		if c.Pk {
			return c.Name
		}
	}
	return DefaultKeyColumn
}

// IsKey reports whether col is the row identity column.
func (tbl Table) IsKey(col Col) bool {
	return col.Name == tbl.KeyColumn()
}

// Names returns the column names in declaration order.
func (tbl Table) Names() []string {
	names := make([]string, len(tbl.Columns))
	for i, c := range tbl.Columns {
		names[i] = c.Name
	}
	return names
}

// Columns introspects a table from the database's live metadata.
// The name is validated before use since it may end up interpolated into SQL.
func (dao *Database) Columns(ctx context.Context, table string) (Table, error) {
	if err := tools.ValidateTableName(table); err != nil {
		return Table{}, err
	}
	if tools.IsReservedTable(table) {
		return Table{}, fmt.Errorf("%w: %s", tools.ErrReservedTable, table)
	}

	rows, err := dao.Client.QueryContext(ctx,
		"SELECT name, type, pk FROM pragma_table_info(?) ORDER BY cid", table)
	if err != nil {
		return Table{}, err
	}
	defer rows.Close()

	tbl := Table{Name: table}

	for rows.Next() {
		var name, colType sql.NullString
		var pk sql.NullInt64

		if err := rows.Scan(&name, &colType, &pk); err != nil {
			return Table{}, err
		}

		tbl.Columns = append(tbl.Columns, Col{
			Name: name.String,
			Type: strings.ToUpper(colType.String),
			Pk:   pk.Int64 > 0,
		})
	}
	if err := rows.Err(); err != nil {
		return Table{}, err
	}

	if len(tbl.Columns) == 0 {
		return Table{}, tools.TableNotFoundErr(table)
	}

	return tbl, nil
}

// Tables lists the application tables, skipping engine and migration tables.
func (dao *Database) Tables(ctx context.Context) ([]string, error) {
	rows, err := dao.Client.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if tools.IsReservedTable(name) {
			continue
		}
		names = append(names, name)
	}

	return names, rows.Err()
}
