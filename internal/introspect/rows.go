// Package introspect reads MySQL's information_schema and assembles
// schema.Table values from it.
//
// The mapping functions (RowToColumn, GroupIndexes, RowsToIndex,
// RowToTable, NormalizeTable) are pure and operate on the catalog row
// types below; Introspector runs the catalog queries and feeds them.
package introspect

// ColumnRow is one row of information_schema.COLUMNS.
type ColumnRow struct {
	CharacterSetName *string
	CollationName    *string
	ColumnDefault    *string
	ColumnKey        string // "", "MUL", "PRI" or "UNI"
	ColumnName       string
	ColumnType       string
	Extra            string
	IsNullable       string // "NO" or "YES"
}

// IndexRow is one row of information_schema.STATISTICS: a single key part
// of an index.
type IndexRow struct {
	ColumnName string
	IndexName  string
	IndexType  string // BTREE, HASH, FULLTEXT, SPATIAL
	NonUnique  bool
	SeqInIndex int
	SubPart    *int64
}

// TableRow is one row of information_schema.TABLES.
type TableRow struct {
	Engine         *string
	TableCollation *string
	TableName      string
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
