package daos

import (
	"fmt"
	"net/url"
	"strconv"
)

// Rireki is a blog post: text fields plus the filename of its photo.
type Rireki struct {
	Key      int64  `json:"key"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Comments string `json:"comments"`
	Photo    string `json:"photo"`
}

// RirekiFromRow maps a generic row of the rireki table onto a Rireki.
func RirekiFromRow(row Row) Rireki {
	return Rireki{
		Key:      rowInt(row, DefaultKeyColumn),
		ID:       rowString(row, "id"),
		Name:     rowString(row, "name"),
		Title:    rowString(row, "title"),
		Date:     rowString(row, "date"),
		Comments: rowString(row, "comments"),
		Photo:    rowString(row, "photo"),
	}
}

// PhotoOrBlank returns the photo filename, or the blank sentinel image when
// the post has none.
func (r Rireki) PhotoOrBlank() string {
	if r.Photo == "" {
		return BlankPhoto
	}
	return r.Photo
}

// Values renders the post as insert form values.
func (r Rireki) Values() url.Values {
	return url.Values{
		"id":       {r.ID},
		"name":     {r.Name},
		"title":    {r.Title},
		"date":     {r.Date},
		"comments": {r.Comments},
		"photo":    {r.Photo},
	}
}

// Member is a user account. Pass is kept exactly as submitted.
type Member struct {
	Key  int64  `json:"key"`
	ID   string `json:"id"`
	Name string `json:"name"`
	Pass string `json:"pass"`
}

// MemberFromRow maps a generic row of the member table onto a Member.
func MemberFromRow(row Row) Member {
	return Member{
		Key:  rowInt(row, DefaultKeyColumn),
		ID:   rowString(row, "id"),
		Name: rowString(row, "name"),
		Pass: rowString(row, "pass"),
	}
}

// Values renders the member as insert form values.
func (m Member) Values() url.Values {
	return url.Values{
		"id":   {m.ID},
		"name": {m.Name},
		"pass": {m.Pass},
	}
}

// CellString renders a stored value for display; NULL renders empty.
func CellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func rowString(row Row, col string) string {
	return CellString(row[col])
}

func rowInt(row Row, col string) int64 {
	switch x := row[col].(type) {
	case int64:
		return x
	case float64:
		return int64(x)
	case string:
		n, _ := ParseLeadingInt(x)
		return n
	default:
		return 0
	}
}
