package expr

import (
	"strconv"
	"strings"
)

// Format renders a node in the canonical textual form used by the CLI and
// by golden tests. The form is deterministic: equal trees format equally.
func Format(n Node) string {
	var sb strings.Builder
	format(&sb, n)
	return sb.String()
}

func format(sb *strings.Builder, n Node) {
	switch v := n.(type) {
	case *IntLit:
		sb.WriteString(v.Text)
	case *FloatLit:
		sb.WriteString(v.Text)
	case *StrLit:
		sb.WriteString(strconv.Quote(v.Val))
	case *TypeLit:
		sb.WriteByte('@')
		sb.WriteString(v.T.String())
	case *ValueLit:
		sb.WriteString(v.V.String())
	case *Ident:
		sb.WriteString(v.Name)
	case *Call:
		format(sb, v.Callee)
		formatArgs(sb, "(", v.Args)
	case *Broadcast:
		format(sb, v.Callee)
		formatArgs(sb, ".(", v.Args)
	case *Assign:
		sb.WriteString(v.Name)
		sb.WriteString(" = ")
		format(sb, v.Value)
	case *Block:
		sb.WriteByte('{')
		for i, s := range v.Stmts {
			if i > 0 {
				sb.WriteString("; ")
			}
			format(sb, s)
		}
		sb.WriteByte('}')
	case *ArrayLit:
		sb.WriteByte('[')
		for i, e := range v.Elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			format(sb, e)
		}
		sb.WriteByte(']')
	case *Generic:
		sb.WriteByte('#')
		sb.WriteString(v.Tag)
		formatArgs(sb, "(", v.Children)
	default:
		sb.WriteString("<?>")
	}
}

func formatArgs(sb *strings.Builder, open string, args []Node) {
	sb.WriteString(open)
	for i, a := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		format(sb, a)
	}
	sb.WriteByte(')')
}
