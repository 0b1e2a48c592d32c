package ast

import (
	"fmt"
	"io"
	"os"
)

// String renders a one-line, print-friendly summary of n: its kind plus whatever
// payload detail is most useful for a reader, mirroring the teacher's
// ir.Node.String switch over n.Typ.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch d := n.Data.(type) {
	case IdentData:
		return fmt.Sprintf("%s [%s]", n.Kind, d.Name)
	case IntLitData:
		return fmt.Sprintf("%s [%d%s]", n.Kind, d.Value, d.Suffix)
	case FloatLitData:
		return fmt.Sprintf("%s [%g%s]", n.Kind, d.Value, d.Suffix)
	case StringLitData:
		return fmt.Sprintf("%s [%q]", n.Kind, d.Value)
	case CharLitData:
		return fmt.Sprintf("%s [%q]", n.Kind, d.Value)
	case BinaryData:
		return fmt.Sprintf("%s [%s]", n.Kind, d.Op)
	case UnaryData:
		return fmt.Sprintf("%s [%s]", n.Kind, d.Op)
	case AssignData:
		return fmt.Sprintf("%s [%s]", n.Kind, d.Op)
	case DeclData:
		return fmt.Sprintf("%s [%s]", n.Kind, d.Name)
	case FuncData:
		return fmt.Sprintf("%s [%s]", n.Kind, d.Name)
	case FieldData:
		return fmt.Sprintf("%s [%s]", n.Kind, d.Name)
	case RecordData:
		if d.Tag == "" {
			return fmt.Sprintf("%s [<anonymous>]", n.Kind)
		}
		return fmt.Sprintf("%s [%s]", n.Kind, d.Tag)
	case MemberData:
		return fmt.Sprintf("%s [.%s]", n.Kind, d.Field)
	case GotoData:
		return fmt.Sprintf("%s [%s]", n.Kind, d.Label)
	case LabeledData:
		return fmt.Sprintf("%s [%s:]", n.Kind, d.Label)
	case TypeData:
		return fmt.Sprintf("%s [%s]", n.Kind, d.Name)
	default:
		return n.Kind.String()
	}
}

// Print recursively writes n and its Children to w, indenting two spaces per
// depth level, in the same shape as the teacher's ir.Node.Print(depth, showDepth).
func (n *Node) Print(w io.Writer, depth int) {
	if depth < 0 {
		depth = 0
	}
	if n == nil {
		fmt.Fprintf(w, "%*s---> NIL\n", depth*2, "")
		return
	}
	fmt.Fprintf(w, "%*s%s\n", depth*2, "", n.String())
	for _, c := range n.Children {
		c.Print(w, depth+1)
	}
}

// Dump prints n to stdout, for quick debugging. The --debug-ast CLI flag does not
// use it: src/driver routes the tree through glog instead.
func (n *Node) Dump() {
	n.Print(os.Stdout, 0)
}

// Visitor is called once per node during a Walk, pre-order.
type Visitor func(n *Node)

// Walk invokes visit on n and then recursively on every descendant, pre-order —
// the generic tree-walk spec §4.D calls for alongside the tree-printer.
func Walk(n *Node, visit Visitor) {
	if n == nil {
		return
	}
	visit(n)
	for _, c := range n.Children {
		Walk(c, visit)
	}
}
