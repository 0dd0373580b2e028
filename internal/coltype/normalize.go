package coltype

import "github.com/koustreak/myschema/internal/schema"

// Normalize rewrites t.Length in place to the storage tier MySQL would
// use for it, regardless of the declared length. Integer and text widths
// are rounded up to the next tier; fixed-width kinds get their natural
// width. Timestamps and enum/set values are left as they are.
//
// Normalize is idempotent.
func Normalize(t *schema.Type) {
	switch t.Kind {
	case schema.KindBit:
		t.Length = schema.Int64(64)
	case schema.KindBlob, schema.KindString:
		normalizeText(t)
	case schema.KindBoolean:
		t.Length = schema.Int64(1)
	case schema.KindDate:
		t.Length = schema.Int64(10)
	case schema.KindDatetime:
		t.Length = schema.Int64(19)
	case schema.KindFloat:
		t.Length = schema.Int64(53)
	case schema.KindInteger:
		t.Length = schema.Int64(integerTier(t.Length))
	case schema.KindEnum, schema.KindSet:
		t.Length = schema.Int64(enumLength)
	case schema.KindTime:
		t.Length = schema.Int64(8)
	case schema.KindYear:
		t.Length = schema.Int64(4)
	}
}

// integerTier maps a display width onto 3/5/8/10/20
// (tinyint, smallint, mediumint, int, bigint).
func integerTier(length *int64) int64 {
	switch {
	case length == nil:
		return 20
	case *length > 10:
		return 20
	case *length > 8:
		return 10
	case *length > 5:
		return 8
	case *length > 3:
		return 5
	default:
		return 3
	}
}

func normalizeText(t *schema.Type) {
	if t.Length == nil {
		t.Length = schema.Int64(tinyTextLength)
		t.VariableLength = true
		return
	}
	switch n := *t.Length; {
	case n > mediumTextLength:
		t.Length = schema.Int64(longTextLength)
	case n > textLength:
		t.Length = schema.Int64(mediumTextLength)
	case n > tinyTextLength:
		t.Length = schema.Int64(textLength)
	default:
		t.Length = schema.Int64(tinyTextLength)
	}
}
