package coltype

import (
	"testing"

	"github.com/koustreak/myschema/internal/errs"
	"github.com/koustreak/myschema/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_Kinds(t *testing.T) {
	tests := []struct {
		raw  string
		want schema.Kind
	}{
		{"binary(16)", schema.KindBlob},
		{"blob", schema.KindBlob},
		{"longblob", schema.KindBlob},
		{"mediumblob", schema.KindBlob},
		{"tinyblob", schema.KindBlob},
		{"varbinary(255)", schema.KindBlob},
		{"bit(1)", schema.KindBit},
		{"boolean", schema.KindBoolean},
		{"date", schema.KindDate},
		{"datetime", schema.KindDatetime},
		{"datetime(6)", schema.KindDatetime},
		{"decimal(10,2)", schema.KindFloat},
		{"double", schema.KindFloat},
		{"float", schema.KindFloat},
		{"numeric(5,1)", schema.KindFloat},
		{"real", schema.KindFloat},
		{"bigint(20)", schema.KindInteger},
		{"int(11)", schema.KindInteger},
		{"integer", schema.KindInteger},
		{"mediumint(8)", schema.KindInteger},
		{"smallint(5)", schema.KindInteger},
		{"tinyint(1)", schema.KindInteger},
		{"enum('a')", schema.KindEnum},
		{"set('a','b')", schema.KindSet},
		{"time", schema.KindTime},
		{"timestamp", schema.KindTimestamp},
		{"year(4)", schema.KindYear},
		{"char(3)", schema.KindString},
		{"varchar(255)", schema.KindString},
		{"text", schema.KindString},
		{"tinytext", schema.KindString},
		{"mediumtext", schema.KindString},
		{"longtext", schema.KindString},
		{"INT(11)", schema.KindInteger},
		{"VarChar(10)", schema.KindString},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Convert(tt.raw).Kind)
		})
	}
}

func TestConvert_Integer(t *testing.T) {
	typ := Convert("int(11) unsigned zerofill")

	require.Equal(t, schema.KindInteger, typ.Kind)
	require.NotNil(t, typ.Length)
	assert.Equal(t, int64(11), *typ.Length)
	assert.False(t, typ.Signed)
	assert.True(t, typ.ZeroFill)
	assert.Nil(t, typ.Precision)
	assert.Empty(t, typ.Collate)
	assert.Nil(t, typ.Values)

	typ = Convert("bigint(20)")
	assert.True(t, typ.Signed)
	assert.False(t, typ.ZeroFill)

	typ = Convert("TINYINT(3) UNSIGNED")
	assert.False(t, typ.Signed)
}

func TestConvert_DefaultLength(t *testing.T) {
	tests := []struct {
		raw  string
		want *int64
	}{
		{"int", schema.Int64(10)},
		{"integer", schema.Int64(10)},
		{"bigint", schema.Int64(20)},
		{"tinyint unsigned", schema.Int64(3)},
		{"smallint", schema.Int64(5)},
		{"mediumint", schema.Int64(8)},
		{"char", schema.Int64(255)},
		{"binary", schema.Int64(255)},
		{"tinyblob", schema.Int64(255)},
		{"tinytext", schema.Int64(255)},
		{"blob", schema.Int64(65535)},
		{"text", schema.Int64(65535)},
		{"mediumtext", schema.Int64(16777215)},
		{"longblob", schema.Int64(4294967295)},
		{"longtext collate utf8mb4_bin", schema.Int64(4294967295)},
		{"decimal", schema.Int64(65)},
		{"double", schema.Int64(53)},
		{"real", nil},
		{"json", nil},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Convert(tt.raw).Length)
		})
	}
}

func TestConvert_Float(t *testing.T) {
	tests := []struct {
		raw       string
		length    *int64
		precision *int64
		signed    bool
		zeroFill  bool
	}{
		{"decimal(10,2) unsigned zerofill", schema.Int64(10), schema.Int64(2), false, true},
		{"decimal(10,2)", schema.Int64(10), schema.Int64(2), true, false},
		{"decimal(10)", schema.Int64(10), schema.Int64(30), true, false},
		{"decimal", schema.Int64(65), schema.Int64(30), true, false},
		{"numeric", schema.Int64(65), schema.Int64(30), true, false},
		{"float", schema.Int64(53), schema.Int64(53), true, false},
		{"double unsigned", schema.Int64(53), schema.Int64(53), false, false},
		{"real", nil, schema.Int64(53), true, false},
		{"double(8, 3)", schema.Int64(8), schema.Int64(3), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			typ := Convert(tt.raw)
			require.Equal(t, schema.KindFloat, typ.Kind)
			assert.Equal(t, tt.length, typ.Length)
			assert.Equal(t, tt.precision, typ.Precision)
			assert.Equal(t, tt.signed, typ.Signed)
			assert.Equal(t, tt.zeroFill, typ.ZeroFill)
		})
	}
}

func TestConvert_Blob(t *testing.T) {
	typ := Convert("varbinary(64)")
	assert.Equal(t, schema.Int64(64), typ.Length)
	assert.True(t, typ.VariableLength)
	assert.Empty(t, typ.Collate)

	typ = Convert("binary(16)")
	assert.False(t, typ.VariableLength)
}

func TestConvert_String(t *testing.T) {
	typ := Convert("varchar(100) collate utf8mb4_bin")
	require.Equal(t, schema.KindString, typ.Kind)
	assert.Equal(t, "utf8mb4_bin", typ.Collate)
	assert.Equal(t, schema.Int64(100), typ.Length)
	assert.True(t, typ.VariableLength)

	typ = Convert("char(2) character set latin1 collate latin1_general_ci")
	assert.Equal(t, "latin1_general_ci", typ.Collate)
	assert.False(t, typ.VariableLength)

	typ = Convert("text")
	assert.Empty(t, typ.Collate)
}

func TestConvert_EnumValues(t *testing.T) {
	tests := []struct {
		raw     string
		values  []string
		collate string
	}{
		{"enum('a','b''c')", []string{"a", "b'c"}, ""},
		{"enum('small','medium','large')", []string{"small", "medium", "large"}, ""},
		{"set('x','x')", []string{"x", "x"}, ""},
		{"enum('')", []string{""}, ""},
		{"enum('''')", []string{"'"}, ""},
		{"enum('a,b','c)d')", []string{"a,b", "c)d"}, ""},
		{"enum('collate x','b') collate utf8mb4_bin", []string{"collate x", "b"}, "utf8mb4_bin"},
		{"set('it''s','ok') character set utf8mb4 collate utf8mb4_unicode_ci", []string{"it's", "ok"}, "utf8mb4_unicode_ci"},
		{"enum()", []string{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			typ := Convert(tt.raw)
			assert.Equal(t, tt.values, typ.Values)
			assert.Equal(t, tt.collate, typ.Collate)
			assert.Nil(t, typ.Length)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		raw   string
		check func(t *testing.T, typ *schema.Type)
	}{
		{"int(abc)", func(t *testing.T, typ *schema.Type) {
			assert.Equal(t, schema.KindInteger, typ.Kind)
			assert.Nil(t, typ.Length)
		}},
		{"varchar(255", func(t *testing.T, typ *schema.Type) {
			assert.Equal(t, schema.KindString, typ.Kind)
			assert.Nil(t, typ.Length)
		}},
		{"decimal(10,x)", func(t *testing.T, typ *schema.Type) {
			assert.Equal(t, schema.Int64(10), typ.Length)
			assert.Nil(t, typ.Precision)
		}},
		{"enum('a','b", func(t *testing.T, typ *schema.Type) {
			assert.Equal(t, []string{"a", "b"}, typ.Values)
		}},
		{"enum(", func(t *testing.T, typ *schema.Type) {
			assert.Equal(t, schema.KindEnum, typ.Kind)
			assert.Equal(t, []string{}, typ.Values)
		}},
		{"set('a'", func(t *testing.T, typ *schema.Type) {
			assert.Equal(t, schema.KindSet, typ.Kind)
			assert.Equal(t, []string{"a"}, typ.Values)
		}},
		{"geometry", func(t *testing.T, typ *schema.Type) {
			assert.Equal(t, schema.KindString, typ.Kind)
		}},
		{"", func(t *testing.T, typ *schema.Type) {
			assert.Equal(t, schema.KindString, typ.Kind)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			typ, err := Parse(tt.raw)
			require.Error(t, err)
			assert.True(t, errs.IsParseFailed(err))
			require.NotNil(t, typ)
			tt.check(t, typ)
			assert.Equal(t, typ, Convert(tt.raw))
		})
	}
}

func TestParse_WellFormed(t *testing.T) {
	for _, raw := range []string{
		"int(11) unsigned", "decimal(10,2)", "varchar(20) collate utf8_bin",
		"enum('a','b''c')", "datetime(3)", "longtext",
	} {
		_, err := Parse(raw)
		assert.NoError(t, err, raw)
	}
}

func TestNormalize_Fixed(t *testing.T) {
	tests := []struct {
		typ  *schema.Type
		want int64
	}{
		{schema.NewType(schema.KindBit), 64},
		{schema.NewType(schema.KindBoolean), 1},
		{schema.NewType(schema.KindDate), 10},
		{schema.NewType(schema.KindDatetime), 19},
		{schema.NewFloat(schema.Int64(10), schema.Int64(2), true, false), 53},
		{schema.NewEnum("", []string{"a"}), 1048575},
		{schema.NewSet("", nil), 1048575},
		{schema.NewType(schema.KindTime), 8},
		{schema.NewType(schema.KindYear), 4},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ.Kind), func(t *testing.T) {
			Normalize(tt.typ)
			require.NotNil(t, tt.typ.Length)
			assert.Equal(t, tt.want, *tt.typ.Length)
		})
	}
}

func TestNormalize_LeavesOtherAttributes(t *testing.T) {
	typ := Convert("enum('b','a','b') collate utf8mb4_bin")
	Normalize(typ)
	assert.Equal(t, []string{"b", "a", "b"}, typ.Values)
	assert.Equal(t, "utf8mb4_bin", typ.Collate)

	typ = Convert("decimal(10,2)")
	Normalize(typ)
	assert.Equal(t, schema.Int64(2), typ.Precision)

	typ = Convert("timestamp")
	Normalize(typ)
	assert.Nil(t, typ.Length)
}

func TestNormalize_Integer(t *testing.T) {
	tests := []struct {
		length *int64
		want   int64
	}{
		{nil, 20},
		{schema.Int64(0), 3},
		{schema.Int64(1), 3},
		{schema.Int64(3), 3},
		{schema.Int64(4), 5},
		{schema.Int64(5), 5},
		{schema.Int64(6), 8},
		{schema.Int64(8), 8},
		{schema.Int64(9), 10},
		{schema.Int64(10), 10},
		{schema.Int64(11), 20},
		{schema.Int64(255), 20},
	}

	for _, tt := range tests {
		typ := schema.NewInteger(tt.length, true, false)
		Normalize(typ)
		assert.Equal(t, tt.want, *typ.Length)
	}
}

func TestNormalize_IntegerMonotonicAndIdempotent(t *testing.T) {
	tiers := map[int64]bool{3: true, 5: true, 8: true, 10: true, 20: true}
	prev := int64(0)
	for l := int64(0); l <= 64; l++ {
		typ := schema.NewInteger(schema.Int64(l), true, false)
		Normalize(typ)
		got := *typ.Length

		assert.True(t, tiers[got], "length %d mapped to %d", l, got)
		assert.GreaterOrEqual(t, got, prev, "not monotonic at %d", l)
		prev = got

		Normalize(typ)
		assert.Equal(t, got, *typ.Length, "not idempotent at %d", l)
	}
}

func TestNormalize_Text(t *testing.T) {
	tests := []struct {
		raw      string
		want     int64
		variable bool
	}{
		{"char(1)", 255, false},
		{"varchar(255)", 255, true},
		{"varchar(256)", 65535, true},
		{"text", 65535, false},
		{"varbinary(65536)", 16777215, true},
		{"mediumblob", 16777215, false},
		{"longtext", 4294967295, false},
		{"json", 255, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			typ := Convert(tt.raw)
			Normalize(typ)
			assert.Equal(t, tt.want, *typ.Length)
			assert.Equal(t, tt.variable, typ.VariableLength)

			Normalize(typ)
			assert.Equal(t, tt.want, *typ.Length)
		})
	}
}

func TestDefaultTables(t *testing.T) {
	n, ok := DefaultLength("enum")
	assert.True(t, ok)
	assert.Equal(t, int64(1048575), n)

	_, ok = DefaultLength("real")
	assert.False(t, ok)

	n, ok = DefaultPrecision("real")
	assert.True(t, ok)
	assert.Equal(t, int64(53), n)

	_, ok = DefaultPrecision("int")
	assert.False(t, ok)
}

func BenchmarkConvert(b *testing.B) {
	inputs := []string{
		"int(11) unsigned zerofill",
		"decimal(10,2)",
		"varchar(255) collate utf8mb4_bin",
		"enum('small','medium','large','it''s')",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Convert(inputs[i%len(inputs)])
	}
}
