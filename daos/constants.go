// Package daos provides constants used throughout the data access layer.
package daos

// Known application tables.
const (
	TableRireki = "rireki"
	TableMember = "member"
)

// DefaultKeyColumn is the autoincrement primary key every table carries.
const DefaultKeyColumn = "key"

// PortalPageSize is the number of posts shown per portal page.
const PortalPageSize = 3

// BlankPhoto is the sentinel image used when a post has no photo.
const BlankPhoto = "white.png"

// Form field names shared with the HTML views.
const (
	FieldTableName   = "tablename"
	FieldSelectedRow = "shiteigyou"
)
