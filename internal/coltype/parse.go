// Package coltype turns MySQL column type declarations, as stored in
// information_schema.COLUMNS.COLUMN_TYPE, into schema.Type values and
// quantizes them to MySQL's storage tiers.
//
// The grammar handled is
//
//	BASETYPE[(ARG[,ARG])] [UNSIGNED] [ZEROFILL] [CHARACTER SET name] [COLLATE name]
//
// where enum and set take a list of single-quoted values, a doubled quote
// standing for a literal quote.
//
// All functions are pure and safe for concurrent use.
package coltype

import (
	"strconv"
	"strings"

	"github.com/koustreak/myschema/internal/errs"
	"github.com/koustreak/myschema/internal/schema"
)

// Convert parses raw and never fails: anything it cannot make sense of is
// left unset, and unknown base types become the string kind.
func Convert(raw string) *schema.Type {
	t, _ := Parse(raw)
	return t
}

// Parse is Convert plus a report. The returned type is always usable and
// identical to Convert's; err is a parse_failed *errs.Error describing the
// first malformed fragment, or nil.
func Parse(raw string) (*schema.Type, error) {
	p := newParser(raw)
	t := p.parse()
	return t, p.err
}

// stringTypes are the base types that legitimately map to the string kind.
var stringTypes = map[string]bool{
	"char": true, "varchar": true, "text": true,
	"tinytext": true, "mediumtext": true, "longtext": true,
}

type parser struct {
	raw  string
	base string // lower-cased base type keyword
	tail string // lower-cased text following the keyword
	err  error
}

func newParser(raw string) *parser {
	end := len(raw)
	if i := strings.IndexAny(raw, "( "); i >= 0 {
		end = i
	}
	return &parser{
		raw:  raw,
		base: strings.ToLower(raw[:end]),
		tail: strings.ToLower(raw[end:]),
	}
}

func (p *parser) parse() *schema.Type {
	switch p.base {
	case "binary", "blob", "longblob", "mediumblob", "tinyblob", "varbinary":
		return schema.NewBlob(p.length(), p.variable())
	case "bit":
		return schema.NewType(schema.KindBit)
	case "boolean":
		return schema.NewType(schema.KindBoolean)
	case "date":
		return schema.NewType(schema.KindDate)
	case "datetime":
		return schema.NewType(schema.KindDatetime)
	case "decimal", "double", "float", "numeric", "real":
		return schema.NewFloat(p.length(), p.precision(), p.signed(), p.zeroFill())
	case "bigint", "int", "integer", "mediumint", "smallint", "tinyint":
		return schema.NewInteger(p.length(), p.signed(), p.zeroFill())
	case "enum":
		values, end := p.values()
		return schema.NewEnum(p.collate(end), values)
	case "set":
		values, end := p.values()
		return schema.NewSet(p.collate(end), values)
	case "time":
		return schema.NewType(schema.KindTime)
	case "timestamp":
		return schema.NewType(schema.KindTimestamp)
	case "year":
		return schema.NewType(schema.KindYear)
	}

	switch {
	case p.base == "":
		p.fail("empty column type")
	case !stringTypes[p.base]:
		p.fail("unrecognised base type " + strconv.Quote(p.base) + ", treated as string")
	}
	return schema.NewString(p.length(), p.variable(), p.collate(len(p.base)))
}

func (p *parser) fail(msg string) {
	if p.err == nil {
		p.err = errs.Newf(errs.ErrKindParseFailed, "column type %q: %s", p.raw, msg)
	}
}

func (p *parser) variable() bool {
	return strings.HasPrefix(p.base, "var")
}

func (p *parser) signed() bool {
	return !strings.Contains(p.tail, "unsigned")
}

func (p *parser) zeroFill() bool {
	return strings.Contains(p.tail, "zerofill")
}

// arguments returns the text following the first "(", or ok=false.
func (p *parser) arguments() (string, bool) {
	open := strings.IndexByte(p.raw, '(')
	if open < 0 {
		return "", false
	}
	return p.raw[open+1:], true
}

func (p *parser) length() *int64 {
	args, ok := p.arguments()
	if !ok {
		return defaultLength(p.base)
	}
	end := strings.IndexAny(args, ",)")
	if end < 0 {
		p.fail("unterminated argument list")
		return nil
	}
	return p.number(args[:end], "length")
}

func (p *parser) precision() *int64 {
	args, ok := p.arguments()
	if !ok {
		return defaultPrecision(p.base)
	}
	closing := strings.IndexByte(args, ')')
	comma := strings.IndexByte(args, ',')
	if comma < 0 || (closing >= 0 && comma > closing) {
		return defaultPrecision(p.base)
	}
	args = args[comma+1:]
	end := strings.IndexByte(args, ')')
	if end < 0 {
		p.fail("unterminated argument list")
		return nil
	}
	return p.number(args[:end], "precision")
}

func (p *parser) number(token, what string) *int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(token), 10, 64)
	if err != nil {
		p.fail("non-numeric " + what + " " + strconv.Quote(token))
		return nil
	}
	return &n
}

// collate returns the name following "collate " at or after offset from.
// The search is case-sensitive, as the catalog reports it in lower case.
func (p *parser) collate(from int) string {
	if from > len(p.raw) {
		return ""
	}
	const marker = "collate "
	i := strings.Index(p.raw[from:], marker)
	if i < 0 {
		return ""
	}
	name := p.raw[from+i+len(marker):]
	if end := strings.IndexByte(name, ' '); end >= 0 {
		name = name[:end]
	}
	return name
}

// values scans the quoted enum/set list. It returns the unescaped values in
// source order and the offset just past the last closing quote.
func (p *parser) values() ([]string, int) {
	values := []string{}
	raw := p.raw
	pos := len(p.base)
	open := strings.IndexByte(raw, '(')
	if open >= 0 {
		pos = open + 1
	}

	for {
		start := strings.IndexByte(raw[pos:], '\'')
		if start < 0 {
			if open >= 0 && strings.IndexByte(raw[pos:], ')') < 0 {
				p.fail("unterminated argument list")
			}
			return values, pos
		}
		i := pos + start + 1

		var sb strings.Builder
		closed := false
		for i < len(raw) {
			if raw[i] != '\'' {
				sb.WriteByte(raw[i])
				i++
				continue
			}
			if i+1 < len(raw) && raw[i+1] == '\'' {
				sb.WriteByte('\'')
				i += 2
				continue
			}
			closed = true
			break
		}
		values = append(values, sb.String())

		if !closed {
			p.fail("unterminated quoted value")
			return values, len(raw)
		}
		pos = i + 1
	}
}
