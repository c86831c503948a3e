package model

// Sequences is the level-order linearization of a finished tree.
// It is the only structure the rendering layer consumes.
//
// Paths and Names have one entry per node. IntroSentences has one entry per
// non-root node: IntroSentences[i-1] explains why node i was included.
type Sequences struct {
	// Paths are local image paths in breadth-first order.
	Paths []string `json:"paths"`

	// IntroSentences are the captions of every node except the root.
	IntroSentences []string `json:"introSentences"`

	// Names are display names in breadth-first order.
	Names []string `json:"names"`
}

// NodeCount returns the number of nodes the sequences describe.
func (s Sequences) NodeCount() int {
	return len(s.Paths)
}

// Serialize flattens the tree into level-order sequences.
// Nodes of one depth are emitted left to right before any node of the next
// depth. The root's intro sentence is elided, not padded.
//
// Serialize performs no I/O and does not modify the tree, so calling it twice
// on the same tree yields identical sequences.
func Serialize(root *PersonNode) Sequences {
	seq := Sequences{
		Paths:          make([]string, 0),
		IntroSentences: make([]string, 0),
		Names:          make([]string, 0),
	}

	first := true
	levelOrder(root, func(node *PersonNode) {
		seq.Paths = append(seq.Paths, node.ImagePath)
		seq.Names = append(seq.Names, node.Name)
		if first {
			first = false
			return
		}
		seq.IntroSentences = append(seq.IntroSentences, node.IntroSentence)
	})

	return seq
}

// levelOrder calls fn for every node in breadth-first order.
func levelOrder(root *PersonNode, fn func(*PersonNode)) {
	if root == nil {
		return
	}

	queue := []*PersonNode{root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		fn(node)
		queue = append(queue, node.Children...)
	}
}
