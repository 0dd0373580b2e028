// Package schema is the engine-agnostic model produced by introspection:
// tables, their columns and indexes, and structured column types.
//
// Values are read-only snapshots; the only sanctioned mutation is
// normalizing column types in place.
package schema

// Column describes a single table column.
type Column struct {
	Name          string  `json:"name"`
	Type          *Type   `json:"type"`
	AutoIncrement bool    `json:"autoIncrement"`
	CanBeNull     bool    `json:"canBeNull"`
	Default       *string `json:"default,omitempty"` // nil means no default

	// Key is the raw COLUMN_KEY marker: PRI, UNI, MUL or empty.
	Key          string `json:"key,omitempty"`
	CharacterSet string `json:"characterSet,omitempty"`
}

// IndexType classifies an index.
type IndexType string

const (
	IndexPrimary IndexType = "primary"
	IndexUnique  IndexType = "unique"
	IndexKey     IndexType = "key"
)

// PrimaryIndexName is the name MySQL reserves for the primary key.
const PrimaryIndexName = "PRIMARY"

// KeyPart is one key part of an index.
type KeyPart struct {
	Column  string `json:"column"`
	SubPart *int64 `json:"subPart,omitempty"` // prefix length; nil indexes the whole column
}

// Index is a named, possibly multi-column index.
type Index struct {
	Name   string    `json:"name"`
	Keys   []KeyPart `json:"keys"`
	Type   IndexType `json:"type"`
	Unique bool      `json:"unique"`
	Method string    `json:"method,omitempty"` // BTREE, HASH, FULLTEXT, SPATIAL
}

// IndexTypeFor applies the classification rule: the reserved name always
// means primary, otherwise the unique flag decides.
func IndexTypeFor(name string, unique bool) IndexType {
	switch {
	case name == PrimaryIndexName:
		return IndexPrimary
	case unique:
		return IndexUnique
	default:
		return IndexKey
	}
}

// Engine is a storage engine name as reported by the catalog.
type Engine string

const (
	EngineArchive    Engine = "ARCHIVE"
	EngineBDB        Engine = "BDB"
	EngineCSV        Engine = "CSV"
	EngineFederated  Engine = "FEDERATED"
	EngineInnoDB     Engine = "InnoDB"
	EngineMyISAM     Engine = "MyISAM"
	EngineMemory     Engine = "MEMORY"
	EngineMerge      Engine = "MERGE"
	EngineNDBCluster Engine = "NDBCluster"
	EngineAria       Engine = "Aria"
)

// Known reports whether e is one of the engines listed above.
func (e Engine) Known() bool {
	switch e {
	case EngineArchive, EngineBDB, EngineCSV, EngineFederated, EngineInnoDB,
		EngineMyISAM, EngineMemory, EngineMerge, EngineNDBCluster, EngineAria:
		return true
	}
	return false
}

// Table is a base table with its columns and indexes.
type Table struct {
	Name      string    `json:"name"`
	Collation string    `json:"collation"`
	Engine    Engine    `json:"engine"`
	Columns   []*Column `json:"columns"`
	Indexes   []*Index  `json:"indexes"`
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Index returns the index with the given name, or nil.
func (t *Table) Index(name string) *Index {
	for _, i := range t.Indexes {
		if i.Name == name {
			return i
		}
	}
	return nil
}

// PrimaryKey returns the primary index, or nil when the table has none.
func (t *Table) PrimaryKey() *Index {
	for _, i := range t.Indexes {
		if i.Type == IndexPrimary {
			return i
		}
	}
	return nil
}
