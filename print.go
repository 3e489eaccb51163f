package spaview

import (
	"fmt"
	"strings"
)

// PrintRoutes renders the route tree, one node per line, children indented
// below their parent in declaration order.
func PrintRoutes(t *RouteTable) string {
	var sb strings.Builder
	printNode(&sb, t.root, 0)
	return sb.String()
}

func printNode(sb *strings.Builder, n *RouteNode, depth int) {
	fmt.Fprintf(sb, "%s%s", strings.Repeat("  ", depth), n.FullPath())
	if n.Name != "" {
		fmt.Fprintf(sb, " [%s]", n.Name)
	}
	sb.WriteString(" view=" + n.kind())
	if n.Index != nil {
		sb.WriteString(" index=" + n.Index.Name)
	}
	sb.WriteByte('\n')
	for _, child := range n.Children {
		printNode(sb, child, depth+1)
	}
}
