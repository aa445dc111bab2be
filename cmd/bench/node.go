package bench

import (
	"github.com/ValentinKolb/dPortable/lib/portable"
)

// Node is a vertex of the benchmark graph. Next links all nodes to a ring,
// Hub points to a node shared by the whole graph.
type Node struct {
	ID    int64
	Name  string
	Tags  []string
	Attrs map[string]interface{}
	Next  *Node
	Hub   *Node
}

// WritePortable implements portable.IPortable
func (n *Node) WritePortable(w portable.IPortableWriter) error {
	if err := w.WriteInt64("id", n.ID); err != nil {
		return err
	}
	if err := w.WriteString("name", n.Name); err != nil {
		return err
	}
	if err := w.WriteObject("tags", n.Tags); err != nil {
		return err
	}
	if err := w.WriteObject("attrs", n.Attrs); err != nil {
		return err
	}
	if err := w.WriteObject("next", n.Next); err != nil {
		return err
	}
	return w.WriteObject("hub", n.Hub)
}

// PortableHashCode implements portable.IPortableHashCoder
func (n *Node) PortableHashCode() int32 {
	return int32(n.ID ^ (n.ID >> 32))
}

// RegisterNode registers Node with the given registry
func RegisterNode(r *portable.TypeRegistry) error {
	_, err := r.Register(&Node{}, portable.TypeConfig{TypeName: "bench.Node"})
	return err
}

// BuildGraph creates a ring of n nodes. Every node references the first node as hub,
// so the encoding contains one full record per node and back-references for the rest.
func BuildGraph(n int) *Node {
	if n <= 0 {
		return nil
	}

	nodes := make([]*Node, n)
	for i := range nodes {
		nodes[i] = &Node{
			ID:   int64(i),
			Name: "node",
			Tags: []string{"bench", "graph"},
			Attrs: map[string]interface{}{
				"weight": float64(i) / 2,
				"active": i%2 == 0,
			},
		}
	}
	for i, node := range nodes {
		node.Next = nodes[(i+1)%n]
		node.Hub = nodes[0]
	}
	return nodes[0]
}
