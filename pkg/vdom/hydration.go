package vdom

import (
	"fmt"
	"sync"
)

// HIDGenerator generates unique hydration IDs for elements.
type HIDGenerator struct {
	counter uint32
	mu      sync.Mutex
}

// NewHIDGenerator creates a new HIDGenerator.
func NewHIDGenerator() *HIDGenerator {
	return &HIDGenerator{}
}

// Next returns the next hydration ID (e.g., "h1", "h2", ...).
func (g *HIDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("h%d", g.counter)
}

// Reset resets the counter to 0.
func (g *HIDGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter = 0
}

// Current returns the current counter value without incrementing.
func (g *HIDGenerator) Current() uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counter
}

// AssignAllHIDs assigns HIDs to every element node in pre-order.
// Running it over equal trees with fresh generators yields equal IDs, which
// is what lets the browser find the server-rendered elements.
func AssignAllHIDs(node *VNode, gen *HIDGenerator) {
	if node == nil {
		return
	}

	if node.Kind == KindElement {
		node.HID = gen.Next()
	}

	for _, child := range node.Children {
		AssignAllHIDs(child, gen)
	}
}

// AssignMissingHIDs assigns HIDs to element nodes that do not have one yet.
// It is used after Diff, which carries IDs over from the previous tree but
// leaves inserted and replaced subtrees unnumbered.
func AssignMissingHIDs(node *VNode, gen *HIDGenerator) {
	if node == nil {
		return
	}

	if node.Kind == KindElement && node.HID == "" {
		node.HID = gen.Next()
	}

	for _, child := range node.Children {
		AssignMissingHIDs(child, gen)
	}
}

// CollectHIDs returns a map of HID to VNode for all nodes with HIDs.
func CollectHIDs(node *VNode) map[string]*VNode {
	result := make(map[string]*VNode)
	collectHIDs(node, result)
	return result
}

func collectHIDs(node *VNode, result map[string]*VNode) {
	if node == nil {
		return
	}

	if node.HID != "" {
		result[node.HID] = node
	}

	for _, child := range node.Children {
		collectHIDs(child, result)
	}
}

// FindByHID finds a node by its HID in the tree.
func FindByHID(node *VNode, hid string) *VNode {
	if node == nil {
		return nil
	}

	if node.HID == hid {
		return node
	}

	for _, child := range node.Children {
		if found := FindByHID(child, hid); found != nil {
			return found
		}
	}

	return nil
}

// CountElements returns the number of element nodes in the tree.
func CountElements(node *VNode) int {
	if node == nil {
		return 0
	}

	count := 0
	if node.Kind == KindElement {
		count = 1
	}

	for _, child := range node.Children {
		count += CountElements(child)
	}

	return count
}

// ClearHIDs removes all HIDs from the tree.
func ClearHIDs(node *VNode) {
	if node == nil {
		return
	}

	node.HID = ""

	for _, child := range node.Children {
		ClearHIDs(child)
	}
}
