package daos

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/joe-ervin05/myblog/tools"
)

// Insert adds a single row to the table. Every introspected column is
// written, each value coerced by its declared type from the form field of
// the same name; an absent key becomes NULL so the store assigns it.
// Returns the new row's key.
func (dao *Database) Insert(ctx context.Context, table string, form url.Values) (int64, error) {
	tbl, err := dao.Columns(ctx, table)
	if err != nil {
		return 0, writeTargetErr(table, err)
	}

	columns := make([]string, len(tbl.Columns))
	placeholders := make([]string, len(tbl.Columns))
	args := make([]any, len(tbl.Columns))

	for i, col := range tbl.Columns {
		columns[i] = quoteIdent(col.Name)
		placeholders[i] = "?"
		args[i] = Coerce(col.Type, form.Get(col.Name))
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(tbl.Name), strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	result, err := dao.Client.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	id, _ := result.LastInsertId()
	return id, nil
}

// List returns the table's columns and every row, ordered by key when the
// table has one.
func (dao *Database) List(ctx context.Context, table string) (Table, []Row, error) {
	tbl, err := dao.Columns(ctx, table)
	if err != nil {
		return Table{}, nil, err
	}

	columns := make([]string, len(tbl.Columns))
	order := ""
	for i, col := range tbl.Columns {
		columns[i] = quoteIdent(col.Name)
		if col.Pk && order == "" {
			order = " ORDER BY " + quoteIdent(col.Name)
		}
	}

	rows, err := dao.QueryRows(ctx,
		fmt.Sprintf("SELECT %s FROM %s%s", strings.Join(columns, ", "), quoteIdent(tbl.Name), order))
	if err != nil {
		return Table{}, nil, err
	}

	return tbl, rows, nil
}

// Page is one page of the newest-first post listing.
type Page struct {
	Number     int      `json:"page"`
	TotalPages int      `json:"total_pages"`
	Total      int64    `json:"total"`
	Posts      []Rireki `json:"posts"`
}

// HasPrev reports whether a previous page link should be offered.
func (p Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a next page link should be offered.
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// ParsePage turns a raw page query parameter into a page number, clamping
// anything non-numeric or below 1 to 1 and anything above maxPage, however
// large, to maxPage.
func ParsePage(raw string) int {
	prefix := leadingInt(raw)
	if prefix == "" {
		return 1
	}

	n, err := strconv.ParseInt(prefix, 10, 64)
	switch {
	case errors.Is(err, strconv.ErrRange):
		if n < 0 {
			return 1
		}
		return maxPage
	case err != nil, n < 1:
		return 1
	case n > maxPage:
		return maxPage
	}
	return int(n)
}

const maxPage = 1 << 30

// Page returns one page of posts, newest first. Pages past the end are
// empty rather than an error.
func (dao *Database) Page(ctx context.Context, number int) (Page, error) {
	if number < 1 {
		number = 1
	}

	var total int64
	err := dao.Client.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(TableRireki))).Scan(&total)
	if err != nil {
		return Page{}, err
	}

	rows, err := dao.QueryRows(ctx,
		fmt.Sprintf("SELECT * FROM %s ORDER BY %s DESC LIMIT ? OFFSET ?",
			quoteIdent(TableRireki), quoteIdent(DefaultKeyColumn)),
		PortalPageSize, int64(number-1)*PortalPageSize)
	if err != nil {
		return Page{}, err
	}

	posts := make([]Rireki, len(rows))
	for i, row := range rows {
		posts[i] = RirekiFromRow(row)
	}

	return Page{
		Number:     number,
		TotalPages: int((total + PortalPageSize - 1) / PortalPageSize),
		Total:      total,
		Posts:      posts,
	}, nil
}

// Update overwrites every non-key column of the row identified by key. The
// value for column c is read from the form field "c_<key>", which is how the
// update form tells rows apart. Returns the number of rows changed.
func (dao *Database) Update(ctx context.Context, table, key string, form url.Values) (int64, error) {
	if key == "" {
		return 0, tools.ErrNoRowSelected
	}

	tbl, err := dao.Columns(ctx, table)
	if err != nil {
		return 0, writeTargetErr(table, err)
	}

	var sets []string
	var args []any

	for _, col := range tbl.Columns {
		if tbl.IsKey(col) {
			continue
		}
		sets = append(sets, quoteIdent(col.Name)+" = ?")
		args = append(args, Coerce(col.Type, form.Get(col.Name+"_"+key)))
	}

	if len(sets) == 0 {
		return 0, fmt.Errorf("%w: %s has no editable columns", tools.ErrColumnMismatch, table)
	}

	args = append(args, keyArg(key))

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		quoteIdent(tbl.Name), strings.Join(sets, ", "), quoteIdent(tbl.KeyColumn()))

	result, err := dao.Client.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// Delete removes the row identified by key. A key that matches nothing is
// not an error; the affected count is simply zero.
func (dao *Database) Delete(ctx context.Context, table, key string) (int64, error) {
	if key == "" {
		return 0, tools.ErrNoRowSelected
	}

	tbl, err := dao.Columns(ctx, table)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", quoteIdent(tbl.Name), quoteIdent(tbl.KeyColumn()))

	result, err := dao.Client.ExecContext(ctx, query, keyArg(key))
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// keyArg binds the selected key as an integer when it parses as one and
// passes the raw string through otherwise.
func keyArg(key string) any {
	if n, ok := ParseLeadingInt(key); ok {
		return n
	}
	return key
}

// writeTargetErr reports a missing table on the write path as a malformed
// write target; other errors pass through untouched.
func writeTargetErr(table string, err error) error {
	if errors.Is(err, tools.ErrSchema) {
		return tools.ColumnMismatchErr(table, err)
	}
	return err
}
