package coltype

// Storage tiers shared by the default table and the normalizer.
const (
	tinyTextLength   int64 = 255
	textLength       int64 = 65_535
	mediumTextLength int64 = 16_777_215
	longTextLength   int64 = 4_294_967_295
	enumLength       int64 = 1_048_575
)

var defaultLengths = map[string]int64{
	"bigint":     20,
	"binary":     tinyTextLength,
	"char":       tinyTextLength,
	"tinyblob":   tinyTextLength,
	"tinytext":   tinyTextLength,
	"bit":        64,
	"blob":       textLength,
	"text":       textLength,
	"varbinary":  textLength,
	"varchar":    textLength,
	"date":       10,
	"datetime":   19, // without fractional seconds
	"decimal":    65,
	"numeric":    65,
	"double":     53,
	"float":      53,
	"enum":       enumLength,
	"set":        enumLength,
	"int":        10,
	"integer":    10,
	"longblob":   longTextLength,
	"longtext":   longTextLength,
	"mediumblob": mediumTextLength,
	"mediumtext": mediumTextLength,
	"mediumint":  8,
	"smallint":   5,
	"time":       8, // without fractional seconds
	"tinyint":    3,
	"year":       4,
}

var defaultPrecisions = map[string]int64{
	"decimal": 30,
	"numeric": 30,
	"double":  53,
	"float":   53,
	"real":    53,
}

// DefaultLength returns the length MySQL implies for a base type declared
// without an explicit length. ok is false for types with no default (real).
func DefaultLength(baseType string) (length int64, ok bool) {
	length, ok = defaultLengths[baseType]
	return length, ok
}

// DefaultPrecision is DefaultLength for the fractional part of floating types.
func DefaultPrecision(baseType string) (precision int64, ok bool) {
	precision, ok = defaultPrecisions[baseType]
	return precision, ok
}

func defaultLength(baseType string) *int64 {
	if n, ok := DefaultLength(baseType); ok {
		return &n
	}
	return nil
}

func defaultPrecision(baseType string) *int64 {
	if n, ok := DefaultPrecision(baseType); ok {
		return &n
	}
	return nil
}
