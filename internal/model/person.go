package model

// MaxChildren is the maximum number of children a person can have in the tree.
const MaxChildren = 2

// PersonNode represents one biography article in the relationship tree.
//
// A PersonNode is built exactly once by the crawler: every field, including
// Children, is assigned in the construction step and never modified after the
// node has been handed to its parent. Readers can therefore walk a finished
// tree from several goroutines without locking.
type PersonNode struct {
	// URL is the absolute article URL. It is unique within a crawl.
	URL string `json:"url"`

	// Name is the display name taken from the page title's subject portion.
	Name string `json:"name"`

	// ImageURL is the remote location of the infobox portrait.
	ImageURL string `json:"image_url"`

	// ImagePath is the deterministic local path the portrait is written to.
	ImagePath string `json:"image_path"`

	// IntroSentence is the sentence in the parent's prose that first mentions
	// this person. It is empty for the root.
	IntroSentence string `json:"intro_sentence,omitempty"`

	// HasIntro reports whether IntroSentence was found.
	HasIntro bool `json:"has_intro"`

	// Children holds at most MaxChildren nodes in the order they were accepted.
	Children []*PersonNode `json:"children,omitempty"`
}

// IsLeaf returns true if the node has no children.
func (p *PersonNode) IsLeaf() bool {
	return len(p.Children) == 0
}

// Walk visits every node of the tree in depth-first pre-order.
// The walk stops early when fn returns false.
func (p *PersonNode) Walk(fn func(node *PersonNode, depth int) bool) {
	p.walk(fn, 0)
}

func (p *PersonNode) walk(fn func(node *PersonNode, depth int) bool, depth int) bool {
	if p == nil {
		return true
	}
	if !fn(p, depth) {
		return false
	}
	for _, child := range p.Children {
		if !child.walk(fn, depth+1) {
			return false
		}
	}
	return true
}

// CountNodes returns the number of nodes in the tree rooted at root.
func CountNodes(root *PersonNode) int {
	if root == nil {
		return 0
	}
	count := 0
	root.Walk(func(_ *PersonNode, _ int) bool {
		count++
		return true
	})
	return count
}

// Depth returns the depth of the deepest node, where the root has depth 0.
// An empty tree has depth -1.
func Depth(root *PersonNode) int {
	if root == nil {
		return -1
	}
	deepest := 0
	root.Walk(func(_ *PersonNode, depth int) bool {
		if depth > deepest {
			deepest = depth
		}
		return true
	})
	return deepest
}

// ImageTasks returns the (imageURL, imagePath) pairs of every node in
// level order. Nodes without an image URL are skipped.
func ImageTasks(root *PersonNode) []ImageTask {
	tasks := make([]ImageTask, 0)
	levelOrder(root, func(node *PersonNode) {
		if node.ImageURL == "" {
			return
		}
		tasks = append(tasks, ImageTask{
			NodeURL: node.URL,
			URL:     node.ImageURL,
			Path:    node.ImagePath,
		})
	})
	return tasks
}

// Levels groups the nodes of the tree by depth, left to right within a level.
func Levels(root *PersonNode) [][]*PersonNode {
	levels := make([][]*PersonNode, 0)
	if root == nil {
		return levels
	}

	current := []*PersonNode{root}
	for len(current) > 0 {
		levels = append(levels, current)
		next := make([]*PersonNode, 0, len(current)*MaxChildren)
		for _, node := range current {
			next = append(next, node.Children...)
		}
		current = next
	}
	return levels
}
