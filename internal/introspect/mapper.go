package introspect

import (
	"cmp"
	"slices"
	"strings"

	"github.com/koustreak/myschema/internal/coltype"
	"github.com/koustreak/myschema/internal/errs"
	"github.com/koustreak/myschema/internal/logger"
	"github.com/koustreak/myschema/internal/schema"
)

// RowToColumn builds a column from its catalog row. A malformed
// COLUMN_TYPE is logged at warn level (log may be nil) and the best-effort
// type is kept.
func RowToColumn(row ColumnRow, log *logger.Logger) *schema.Column {
	typ, err := coltype.Parse(row.ColumnType)
	if err != nil && log != nil {
		log.WarnWith("column type parsed partially", err, map[string]interface{}{
			"column": row.ColumnName,
			"type":   row.ColumnType,
		})
	}
	if row.CollationName != nil && *row.CollationName != "" && typ.HasCollation() {
		typ.Collate = *row.CollationName
	}

	canBeNull := row.IsNullable == "YES"
	return &schema.Column{
		Name:          row.ColumnName,
		Type:          typ,
		AutoIncrement: strings.Contains(strings.ToLower(row.Extra), "auto_increment"),
		CanBeNull:     canBeNull,
		Default:       ImplicitDefault(typ, row.ColumnDefault, canBeNull),
		Key:           row.ColumnKey,
		CharacterSet:  deref(row.CharacterSetName),
	}
}

// ImplicitDefault resolves the default of a column. A declared default, or
// a nullable column, passes through unchanged. A NOT NULL column declared
// without a default gets the empty string when it is of the string kind
// and no default otherwise.
func ImplicitDefault(t *schema.Type, declared *string, canBeNull bool) *string {
	if declared != nil || canBeNull {
		return declared
	}
	if t.Kind == schema.KindString {
		empty := ""
		return &empty
	}
	return nil
}

// GroupIndexes folds STATISTICS rows into indexes, one per distinct index
// name. Rows need not arrive sorted: indexes are returned in order of
// first appearance and key parts are ordered by SeqInIndex.
func GroupIndexes(rows []IndexRow) []*schema.Index {
	var names []string
	groups := make(map[string][]IndexRow)
	for _, row := range rows {
		if _, seen := groups[row.IndexName]; !seen {
			names = append(names, row.IndexName)
		}
		groups[row.IndexName] = append(groups[row.IndexName], row)
	}

	indexes := make([]*schema.Index, 0, len(names))
	for _, name := range names {
		indexes = append(indexes, rowsToIndex(groups[name]))
	}
	return indexes
}

// RowsToIndex builds one index from the key-part rows of a single index.
func RowsToIndex(rows ...IndexRow) (*schema.Index, error) {
	if len(rows) == 0 {
		return nil, errs.New(errs.ErrKindNotFound, "no index rows")
	}
	for _, row := range rows[1:] {
		if row.IndexName != rows[0].IndexName {
			return nil, errs.Newf(errs.ErrKindInvalidInput,
				"rows of indexes %q and %q mixed", rows[0].IndexName, row.IndexName)
		}
	}
	return rowsToIndex(rows), nil
}

func rowsToIndex(rows []IndexRow) *schema.Index {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b IndexRow) int {
		return cmp.Compare(a.SeqInIndex, b.SeqInIndex)
	})

	keys := make([]schema.KeyPart, len(sorted))
	for i, row := range sorted {
		keys[i] = schema.KeyPart{Column: row.ColumnName, SubPart: row.SubPart}
	}

	first := sorted[0]
	unique := !first.NonUnique
	return &schema.Index{
		Name:   first.IndexName,
		Keys:   keys,
		Type:   schema.IndexTypeFor(first.IndexName, unique),
		Unique: unique,
		Method: first.IndexType,
	}
}

// RowToTable assembles a table from its catalog row and already mapped
// columns and indexes.
func RowToTable(row TableRow, columns []*schema.Column, indexes []*schema.Index) *schema.Table {
	if columns == nil {
		columns = []*schema.Column{}
	}
	if indexes == nil {
		indexes = []*schema.Index{}
	}
	return &schema.Table{
		Name:      row.TableName,
		Collation: deref(row.TableCollation),
		Engine:    schema.Engine(deref(row.Engine)),
		Columns:   columns,
		Indexes:   indexes,
	}
}

// NormalizeTable quantizes every column type of t in place.
func NormalizeTable(t *schema.Table) {
	for _, c := range t.Columns {
		coltype.Normalize(c.Type)
	}
}
