// Package views renders the blog's HTML pages.
package views

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"time"

	"github.com/joe-ervin05/myblog/daos"
)

//go:embed templates/*.html
var templateFS embed.FS

// DateLayout is the default value of the date field on the post form.
const DateLayout = "2006-01-02-15-04"

var funcs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
}

// Renderer executes the embedded page templates.
type Renderer struct {
	tmpl *template.Template
}

// New parses the embedded templates.
func New() *Renderer {
	return &Renderer{
		tmpl: template.Must(template.New("views").Funcs(funcs).ParseFS(templateFS, "templates/*.html")),
	}
}

type tableView struct {
	Name    string
	Columns []string
	Rows    []rowView
}

type rowView struct {
	Key   string
	Cells []cellView
}

type cellView struct {
	Field string // <column>_<key>, the name the update form submits
	Value string
	Key   bool
}

func newTableView(tbl daos.Table, rows []daos.Row) tableView {
	keyCol := tbl.KeyColumn()

	view := tableView{
		Name:    tbl.Name,
		Columns: tbl.Names(),
		Rows:    make([]rowView, len(rows)),
	}

	for i, row := range rows {
		key := daos.CellString(row[keyCol])

		cells := make([]cellView, len(tbl.Columns))
		for j, col := range tbl.Columns {
			cells[j] = cellView{
				Field: col.Name + "_" + key,
				Value: daos.CellString(row[col.Name]),
				Key:   col.Name == keyCol,
			}
		}

		view.Rows[i] = rowView{Key: key, Cells: cells}
	}

	return view
}

// Portal renders one page of the newest-first post listing.
func (r *Renderer) Portal(w io.Writer, page daos.Page) error {
	return r.execute(w, "portal", page)
}

// Table renders every row of a table under its column headers.
func (r *Renderer) Table(w io.Writer, tbl daos.Table, rows []daos.Row) error {
	return r.execute(w, "table", newTableView(tbl, rows))
}

// InsertPost renders the post form with its photo upload sub-form. The date
// field defaults to now in DateLayout and the photo field to photo, or the
// blank image when photo is empty.
func (r *Renderer) InsertPost(w io.Writer, photo string, now time.Time) error {
	if photo == "" {
		photo = daos.BlankPhoto
	}

	return r.execute(w, "insert_rireki", struct {
		Table string
		Date  string
		Photo string
	}{daos.TableRireki, now.Format(DateLayout), photo})
}

// Insert renders a generic form with one text input per column.
func (r *Renderer) Insert(w io.Writer, tbl daos.Table) error {
	return r.execute(w, "insert", newTableView(tbl, nil))
}

// Update renders every row as editable inputs with a row selector.
func (r *Renderer) Update(w io.Writer, tbl daos.Table, rows []daos.Row) error {
	return r.execute(w, "update", newTableView(tbl, rows))
}

// Delete renders every row read-only with a row selector.
func (r *Renderer) Delete(w io.Writer, tbl daos.Table, rows []daos.Row) error {
	return r.execute(w, "delete", newTableView(tbl, rows))
}

// execute renders into a buffer first so a failed render never leaves a
// half-written page on w.
func (r *Renderer) execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
