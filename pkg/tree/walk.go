package tree

import "fmt"

// Order selects the traversal strategy of Walk. There is no default; every
// call site names the order it relies on.
type Order int

const (
	// DepthFirst transforms a node's children before visiting the node.
	DepthFirst Order = iota + 1
	// BreadthFirst visits nodes level by level, parents before children.
	// Children are queued only if the visited node still has them.
	BreadthFirst
)

func (o Order) String() string {
	switch o {
	case DepthFirst:
		return "depth-first"
	case BreadthFirst:
		return "breadth-first"
	default:
		return fmt.Sprintf("order(%d)", int(o))
	}
}

// Step is the outcome of visiting one node: either the (possibly rewritten)
// node to keep walking with, or a stop value that ends the traversal. The two
// cases are built through Continue and Stop so a result can never be mistaken
// for a node.
type Step[T any] struct {
	node  Node
	value T
	stop  bool
}

// Continue keeps walking, replacing the visited node with node.
func Continue[T any](node Node) Step[T] {
	return Step[T]{node: node}
}

// Stop ends the traversal immediately; value becomes the walk result.
func Stop[T any](value T) Step[T] {
	return Step[T]{value: value, stop: true}
}

// Visitor is invoked once per node.
type Visitor[T any] func(Node) Step[T]

// Result holds either the transformed tree or the value of the Stop that
// interrupted the walk.
type Result[T any] struct {
	Nodes   []Node
	Value   T
	Stopped bool
}

// Walk visits every node of the tree exactly once in the requested order and
// returns the rewritten tree. The input slice is never modified in place; map
// fields are shared with the input unless the visitor clones them.
func Walk[T any](nodes []Node, order Order, visit Visitor[T]) Result[T] {
	if len(nodes) == 0 {
		return Result[T]{Nodes: []Node{}}
	}
	if visit == nil {
		panic("tree: visitor is required")
	}

	var (
		out     []Node
		value   T
		stopped bool
	)
	switch order {
	case DepthFirst:
		out, value, stopped = walkDepthFirst(nodes, visit)
	case BreadthFirst:
		out, value, stopped = walkBreadthFirst(nodes, visit)
	default:
		panic(fmt.Sprintf("tree: unknown walk order %s", order))
	}

	if stopped {
		return Result[T]{Value: value, Stopped: true}
	}
	return Result[T]{Nodes: out}
}

func walkDepthFirst[T any](nodes []Node, visit Visitor[T]) ([]Node, T, bool) {
	var zero T
	out := make([]Node, len(nodes))
	for i, node := range nodes {
		if len(node.Children) > 0 {
			children, value, stopped := walkDepthFirst(node.Children, visit)
			if stopped {
				return nil, value, true
			}
			node.Children = children
		}
		step := visit(node)
		if step.stop {
			return nil, step.value, true
		}
		out[i] = step.node
	}
	return out, zero, false
}

func walkBreadthFirst[T any](nodes []Node, visit Visitor[T]) ([]Node, T, bool) {
	var zero T
	out := append([]Node(nil), nodes...)
	queue := make([]*Node, 0, len(out))
	for i := range out {
		queue = append(queue, &out[i])
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		step := visit(*current)
		if step.stop {
			return nil, step.value, true
		}
		*current = step.node
		if len(current.Children) == 0 {
			continue
		}
		current.Children = append([]Node(nil), current.Children...)
		for i := range current.Children {
			queue = append(queue, &current.Children[i])
		}
	}
	return out, zero, false
}
