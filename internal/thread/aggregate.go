package thread

// AggregateTotal считает все узлы в памяти: корни и загруженные ответы.
// Незагруженные ответы дают ноль.
func AggregateTotal(nodes []*Node) int {
	count := 0
	for _, n := range nodes {
		if n == nil {
			continue
		}
		count++
		count += AggregateTotal(n.Replies())
	}
	return count
}

// Walk обходит дерево в глубину в порядке сервера.
// fn получает глубину узла; false не пускает обход в его ответы.
func Walk(nodes []*Node, fn func(depth int, n *Node) bool) {
	walk(nodes, 0, false, fn)
}

// WalkExpanded - как Walk, но спускается только в раскрытые узлы
func WalkExpanded(nodes []*Node, fn func(depth int, n *Node) bool) {
	walk(nodes, 0, true, fn)
}

func walk(nodes []*Node, depth int, onlyExpanded bool, fn func(depth int, n *Node) bool) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if !fn(depth, n) {
			continue
		}
		if onlyExpanded && !n.Expanded {
			continue
		}
		walk(n.Replies(), depth+1, onlyExpanded, fn)
	}
}
