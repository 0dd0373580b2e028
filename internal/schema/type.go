package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/koustreak/myschema/internal/errs"
)

// Kind is the engine-agnostic family of a column type.
type Kind string

const (
	KindBlob      Kind = "blob"
	KindBit       Kind = "bit"
	KindBoolean   Kind = "boolean"
	KindDate      Kind = "date"
	KindDatetime  Kind = "datetime"
	KindFloat     Kind = "float"
	KindInteger   Kind = "integer"
	KindEnum      Kind = "enum"
	KindSet       Kind = "set"
	KindTime      Kind = "time"
	KindTimestamp Kind = "timestamp"
	KindYear      Kind = "year"
	KindString    Kind = "string"
)

var kinds = map[Kind]bool{
	KindBlob: true, KindBit: true, KindBoolean: true, KindDate: true,
	KindDatetime: true, KindFloat: true, KindInteger: true, KindEnum: true,
	KindSet: true, KindTime: true, KindTimestamp: true, KindYear: true,
	KindString: true,
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return kinds[k]
}

// Type is a structured column type. Which attributes are meaningful
// depends on Kind:
//
//	blob            Length, VariableLength
//	string          Length, VariableLength, Collate
//	float           Length, Precision, Signed, ZeroFill
//	integer         Length, Signed, ZeroFill
//	enum, set       Collate, Values
//
// Use the New* constructors; they never populate attributes foreign to
// the kind. Length is also assigned to fixed-width kinds when a type is
// normalized to its storage tier.
type Type struct {
	Kind           Kind
	Length         *int64
	Precision      *int64
	Signed         bool
	ZeroFill       bool
	VariableLength bool
	Collate        string
	Values         []string
}

// NewType returns a type for the attribute-less kinds
// (bit, boolean, date, datetime, time, timestamp, year).
func NewType(kind Kind) *Type {
	return &Type{Kind: kind}
}

func NewBlob(length *int64, variableLength bool) *Type {
	return &Type{Kind: KindBlob, Length: length, VariableLength: variableLength}
}

func NewString(length *int64, variableLength bool, collate string) *Type {
	return &Type{Kind: KindString, Length: length, VariableLength: variableLength, Collate: collate}
}

func NewFloat(length, precision *int64, signed, zeroFill bool) *Type {
	return &Type{Kind: KindFloat, Length: length, Precision: precision, Signed: signed, ZeroFill: zeroFill}
}

func NewInteger(length *int64, signed, zeroFill bool) *Type {
	return &Type{Kind: KindInteger, Length: length, Signed: signed, ZeroFill: zeroFill}
}

func NewEnum(collate string, values []string) *Type {
	return &Type{Kind: KindEnum, Collate: collate, Values: values}
}

func NewSet(collate string, values []string) *Type {
	return &Type{Kind: KindSet, Collate: collate, Values: values}
}

// HasCollation reports whether the kind carries a collation.
func (t *Type) HasCollation() bool {
	return t.Kind == KindString || t.Kind == KindEnum || t.Kind == KindSet
}

// Int64 returns a pointer to n, for building lengths and precisions.
func Int64(n int64) *int64 {
	return &n
}

// String renders the type roughly the way MySQL would declare it.
func (t *Type) String() string {
	var sb strings.Builder
	sb.WriteString(string(t.Kind))
	switch t.Kind {
	case KindEnum, KindSet:
		quoted := make([]string, len(t.Values))
		for i, v := range t.Values {
			quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
		}
		sb.WriteString("(" + strings.Join(quoted, ",") + ")")
	default:
		switch {
		case t.Length != nil && t.Precision != nil:
			fmt.Fprintf(&sb, "(%d,%d)", *t.Length, *t.Precision)
		case t.Length != nil:
			fmt.Fprintf(&sb, "(%d)", *t.Length)
		}
	}
	if (t.Kind == KindInteger || t.Kind == KindFloat) && !t.Signed {
		sb.WriteString(" unsigned")
	}
	if t.ZeroFill {
		sb.WriteString(" zerofill")
	}
	if t.Collate != "" {
		sb.WriteString(" collate " + t.Collate)
	}
	return sb.String()
}

// typeJSON is the wire form of Type; only kind-relevant fields are filled.
type typeJSON struct {
	Kind           Kind      `json:"kind"`
	Length         *int64    `json:"length,omitempty"`
	Precision      *int64    `json:"precision,omitempty"`
	Signed         *bool     `json:"signed,omitempty"`
	ZeroFill       *bool     `json:"zeroFill,omitempty"`
	VariableLength *bool     `json:"variableLength,omitempty"`
	Collate        string    `json:"collate,omitempty"`
	Values         *[]string `json:"values,omitempty"`
}

func (t *Type) MarshalJSON() ([]byte, error) {
	out := typeJSON{Kind: t.Kind, Length: t.Length}
	switch t.Kind {
	case KindBlob:
		out.VariableLength = &t.VariableLength
	case KindString:
		out.VariableLength = &t.VariableLength
		out.Collate = t.Collate
	case KindFloat:
		out.Precision = t.Precision
		out.Signed, out.ZeroFill = &t.Signed, &t.ZeroFill
	case KindInteger:
		out.Signed, out.ZeroFill = &t.Signed, &t.ZeroFill
	case KindEnum, KindSet:
		out.Collate = t.Collate
		values := t.Values
		if values == nil {
			values = []string{}
		}
		out.Values = &values
	}
	return json.Marshal(out)
}

func (t *Type) UnmarshalJSON(data []byte) error {
	var in typeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if !in.Kind.Valid() {
		return errs.Newf(errs.ErrKindParseFailed, "unknown type kind %q", in.Kind)
	}
	deref := func(b *bool) bool { return b != nil && *b }
	var values []string
	if in.Values != nil {
		values = *in.Values
	}
	*t = Type{
		Kind:           in.Kind,
		Length:         in.Length,
		Precision:      in.Precision,
		Signed:         deref(in.Signed),
		ZeroFill:       deref(in.ZeroFill),
		VariableLength: deref(in.VariableLength),
		Collate:        in.Collate,
		Values:         values,
	}
	return nil
}
