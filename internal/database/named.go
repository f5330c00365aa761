package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/adrtdr/mysqlconn/internal/errs"
)

// bindArgs separates positional values from sql.Named values. When any
// named argument is present, named binding wins entirely: the query's
// :name placeholders are expanded to ? and the positional values are
// dropped. Mixing the two styles in one call is not a supported contract —
// named always takes over.
func bindArgs(query string, args []any) (string, []any, error) {
	var positional []any
	var named map[string]any

	for _, arg := range args {
		switch v := arg.(type) {
		case sql.NamedArg:
			if named == nil {
				named = make(map[string]any)
			}
			named[v.Name] = v.Value
		case *sql.NamedArg:
			if named == nil {
				named = make(map[string]any)
			}
			named[v.Name] = v.Value
		default:
			positional = append(positional, arg)
		}
	}

	if len(named) == 0 {
		return query, positional, nil
	}
	return expandNamed(query, named)
}

// expandNamed rewrites :name placeholders to ? and collects the bound
// values in placeholder order. Quoted regions ('…', "…", `…`) are copied
// verbatim; a colon not followed by an identifier is left alone.
func expandNamed(query string, named map[string]any) (string, []any, error) {
	var sb strings.Builder
	sb.Grow(len(query))
	var args []any

	var quote byte // active quote character, 0 outside quoted regions
	for i := 0; i < len(query); i++ {
		ch := query[i]

		if quote != 0 {
			sb.WriteByte(ch)
			if ch == quote {
				quote = 0
			}
			continue
		}

		switch ch {
		case '\'', '"', '`':
			quote = ch
			sb.WriteByte(ch)
		case ':':
			end := i + 1
			for end < len(query) && isNameByte(query[end]) {
				end++
			}
			if end == i+1 {
				sb.WriteByte(ch)
				continue
			}
			name := query[i+1 : end]
			value, ok := named[name]
			if !ok {
				return "", nil, errs.New(errs.ErrKindInvalidInput,
					fmt.Sprintf("no value bound for parameter %q", name))
			}
			sb.WriteByte('?')
			args = append(args, value)
			i = end - 1
		default:
			sb.WriteByte(ch)
		}
	}

	return sb.String(), args, nil
}

func isNameByte(ch byte) bool {
	return ch == '_' ||
		('0' <= ch && ch <= '9') ||
		('a' <= ch && ch <= 'z') ||
		('A' <= ch && ch <= 'Z')
}
