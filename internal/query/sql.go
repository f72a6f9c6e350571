package query

import (
	"fmt"
	"strings"
)

type builder struct {
	sb   strings.Builder
	args []any
	next int
}

func (b *builder) placeholder(v any) string {
	b.args = append(b.args, v)
	p := fmt.Sprintf("$%d", b.next)
	b.next++
	return p
}

// SQL renders f as a boolean expression whose placeholders start at
// $startArg, returning the expression and its positional arguments.
func SQL(f Filter, startArg int) (string, []any) {
	if f == nil {
		f = All()
	}
	b := &builder{next: startArg}
	f.render(b)
	return b.sb.String(), b.args
}

// Where is SQL prefixed with " WHERE ", or empty when f matches every row.
func Where(f Filter, startArg int) (string, []any) {
	if IsAll(f) {
		return "", nil
	}
	clause, args := SQL(f, startArg)
	return " WHERE " + clause, args
}

func (f eq) render(b *builder) {
	b.sb.WriteString(string(f.field))
	b.sb.WriteString(" = ")
	b.sb.WriteString(b.placeholder(f.value))
}

func (f ne) render(b *builder) {
	b.sb.WriteString(string(f.field))
	b.sb.WriteString(" <> ")
	b.sb.WriteString(b.placeholder(f.value))
}

func (f and) render(b *builder) {
	renderGroup(b, []Filter(f), " AND ", "TRUE")
}

func (f or) render(b *builder) {
	renderGroup(b, []Filter(f), " OR ", "FALSE")
}

func renderGroup(b *builder, parts []Filter, sep, empty string) {
	switch len(parts) {
	case 0:
		b.sb.WriteString(empty)
		return
	case 1:
		parts[0].render(b)
		return
	}

	b.sb.WriteString("(")
	for i, part := range parts {
		if i > 0 {
			b.sb.WriteString(sep)
		}
		part.render(b)
	}
	b.sb.WriteString(")")
}
