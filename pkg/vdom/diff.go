package vdom

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// Diff compares two VNode trees and returns the patches needed to transform prev into next.
// HIDs of matched nodes are carried over from prev to next.
func Diff(prev, next *VNode) []Patch {
	var patches []Patch
	diff(prev, next, "", &patches)
	return patches
}

// diff recursively compares nodes and appends patches.
// parentHID is the HID of the parent element, used for text patches that don't have their own HID.
func diff(prev, next *VNode, parentHID string, patches *[]Patch) {
	if prev == nil && next == nil {
		return
	}

	// Node added (handled by parent via InsertNode)
	if prev == nil {
		return
	}

	if next == nil {
		*patches = append(*patches, Patch{
			Op:  PatchRemoveNode,
			HID: prev.HID,
		})
		return
	}

	if prev.Kind != next.Kind {
		*patches = append(*patches, Patch{
			Op:   PatchReplaceNode,
			HID:  targetHID(prev, parentHID),
			Node: next,
		})
		return
	}

	switch prev.Kind {
	case KindText:
		diffText(prev, next, parentHID, patches)
	case KindElement:
		diffElement(prev, next, patches)
	case KindFragment:
		diffFragment(prev, next, parentHID, patches)
	case KindComponent:
		diffComponent(prev, next, parentHID, patches)
	case KindRaw:
		diffRaw(prev, next, parentHID, patches)
	}
}

// targetHID returns the node's own HID, falling back to its parent's.
func targetHID(node *VNode, parentHID string) string {
	if node.HID != "" {
		return node.HID
	}
	return parentHID
}

// diffText compares text nodes.
// Text nodes don't carry HIDs, so changes target the parent element's text content.
func diffText(prev, next *VNode, parentHID string, patches *[]Patch) {
	next.HID = prev.HID

	if prev.Text != next.Text {
		if hid := targetHID(prev, parentHID); hid != "" {
			*patches = append(*patches, Patch{
				Op:    PatchSetText,
				HID:   hid,
				Value: next.Text,
			})
		}
	}
}

// diffElement compares element nodes.
func diffElement(prev, next *VNode, patches *[]Patch) {
	if prev.Tag != next.Tag {
		*patches = append(*patches, Patch{
			Op:   PatchReplaceNode,
			HID:  prev.HID,
			Node: next,
		})
		return
	}

	next.HID = prev.HID

	diffProps(prev, next, patches)
	diffChildren(prev, next, prev.HID, patches)
}

// diffFragment compares fragment nodes.
func diffFragment(prev, next *VNode, parentHID string, patches *[]Patch) {
	next.HID = prev.HID
	diffChildren(prev, next, parentHID, patches)
}

// diffComponent renders both components and diffs their output.
func diffComponent(prev, next *VNode, parentHID string, patches *[]Patch) {
	next.HID = prev.HID

	if prev.Comp != nil && next.Comp != nil {
		diff(prev.Comp.Render(), next.Comp.Render(), parentHID, patches)
	}
}

// diffRaw compares raw HTML nodes.
func diffRaw(prev, next *VNode, parentHID string, patches *[]Patch) {
	next.HID = prev.HID

	if prev.Text != next.Text {
		if hid := targetHID(prev, parentHID); hid != "" {
			*patches = append(*patches, Patch{
				Op:   PatchReplaceNode,
				HID:  hid,
				Node: next,
			})
		}
	}
}

// diffProps compares and patches attributes. Keys are visited in sorted
// order so the patch list is deterministic.
func diffProps(prev, next *VNode, patches *[]Patch) {
	for _, key := range sortedKeys(prev.Props) {
		if key == "key" {
			continue // Key is not a real attribute
		}

		nextVal, exists := next.Props[key]
		if !exists {
			*patches = append(*patches, Patch{
				Op:  PatchRemoveAttr,
				HID: prev.HID,
				Key: key,
			})
		} else if !propsEqual(prev.Props[key], nextVal) {
			*patches = append(*patches, Patch{
				Op:    PatchSetAttr,
				HID:   prev.HID,
				Key:   key,
				Value: propToString(nextVal),
			})
		}
	}

	for _, key := range sortedKeys(next.Props) {
		if key == "key" {
			continue
		}
		if _, exists := prev.Props[key]; !exists {
			*patches = append(*patches, Patch{
				Op:    PatchSetAttr,
				HID:   prev.HID,
				Key:   key,
				Value: propToString(next.Props[key]),
			})
		}
	}
}

func sortedKeys(props Props) []string {
	keys := make([]string, 0, len(props))
	for key := range props {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// diffChildren compares and patches child nodes.
func diffChildren(prev, next *VNode, parentHID string, patches *[]Patch) {
	if hasKeys(prev.Children) || hasKeys(next.Children) {
		diffKeyedChildren(prev, prev.Children, next.Children, parentHID, patches)
	} else {
		diffUnkeyedChildren(prev, next, parentHID, patches)
	}
}

// diffUnkeyedChildren handles children without keys using positional matching.
// A child without its own HID that changes kind can't be addressed, so the
// parent element is replaced instead.
func diffUnkeyedChildren(parent, nextParent *VNode, parentHID string, patches *[]Patch) {
	prev, next := parent.Children, nextParent.Children

	if parent.Kind == KindElement && parent.HID != "" {
		for i := 0; i < len(prev) && i < len(next); i++ {
			if prev[i] != nil && next[i] != nil && prev[i].HID == "" && prev[i].Kind != next[i].Kind {
				*patches = append(*patches, Patch{
					Op:   PatchReplaceNode,
					HID:  parent.HID,
					Node: nextParent,
				})
				return
			}
		}
	}

	maxLen := len(prev)
	if len(next) > maxLen {
		maxLen = len(next)
	}

	for i := 0; i < maxLen; i++ {
		var prevChild, nextChild *VNode

		if i < len(prev) {
			prevChild = prev[i]
		}
		if i < len(next) {
			nextChild = next[i]
		}

		switch {
		case prevChild == nil && nextChild != nil:
			*patches = append(*patches, Patch{
				Op:       PatchInsertNode,
				ParentID: parent.HID,
				Index:    i,
				Node:     nextChild,
			})
		case prevChild != nil && nextChild == nil:
			*patches = append(*patches, Patch{
				Op:  PatchRemoveNode,
				HID: prevChild.HID,
			})
		default:
			diff(prevChild, nextChild, parentHID, patches)
		}
	}
}

// diffKeyedChildren handles children with keys for efficient reordering.
func diffKeyedChildren(parent *VNode, prev, next []*VNode, parentHID string, patches *[]Patch) {
	prevKeyMap := make(map[string]int)
	for i, child := range prev {
		if key := getKey(child); key != "" {
			prevKeyMap[key] = i
		}
	}

	matched := make(map[int]bool)

	for nextIdx, nextChild := range next {
		key := getKey(nextChild)

		prevIdx, exists := prevKeyMap[key]
		if key == "" || !exists {
			// New or unkeyed node in a keyed list
			*patches = append(*patches, Patch{
				Op:       PatchInsertNode,
				ParentID: parent.HID,
				Index:    nextIdx,
				Node:     nextChild,
			})
			continue
		}

		matched[prevIdx] = true
		prevChild := prev[prevIdx]

		if prevIdx != nextIdx {
			*patches = append(*patches, Patch{
				Op:       PatchMoveNode,
				HID:      prevChild.HID,
				ParentID: parent.HID,
				Index:    nextIdx,
			})
		}

		diff(prevChild, nextChild, parentHID, patches)
	}

	for i, prevChild := range prev {
		if !matched[i] {
			*patches = append(*patches, Patch{
				Op:  PatchRemoveNode,
				HID: prevChild.HID,
			})
		}
	}
}

// getKey extracts the key from a node.
func getKey(node *VNode) string {
	if node == nil {
		return ""
	}
	if node.Key != "" {
		return node.Key
	}
	if key, ok := node.Props["key"].(string); ok {
		return key
	}
	return ""
}

// hasKeys returns true if any child has a key.
func hasKeys(children []*VNode) bool {
	for _, child := range children {
		if getKey(child) != "" {
			return true
		}
	}
	return false
}

// propsEqual compares two prop values for equality.
func propsEqual(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	return reflect.DeepEqual(a, b)
}

// propToString converts a prop value to a string for the patch.
func propToString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
