package client

import (
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/vango-dev/popular/pkg/render"
	"github.com/vango-dev/popular/pkg/vdom"
)

// fakeNode is a node of the fake document: an element, or a text node
// when tag is empty. Like the browser's childNodes, children include text.
type fakeNode struct {
	tag      string
	hid      string
	attrs    map[string]string
	text     string
	parent   *fakeNode
	children []*fakeNode
}

func (n *fakeNode) isText() bool { return n.tag == "" }

var (
	tagPattern  = regexp.MustCompile(`<(/?)([a-z0-9]+)([^>]*)>`)
	attrPattern = regexp.MustCompile(`([a-zA-Z_:][-a-zA-Z0-9_:.]*)(?:="([^"]*)")?`)
)

// parseMarkup builds nodes from renderer output. Adjacent text merges into
// one node, as it does when a browser parses HTML.
func parseMarkup(markup string) []*fakeNode {
	root := &fakeNode{tag: "root"}
	cur := root
	pos := 0

	addText := func(raw string) {
		if raw == "" {
			return
		}
		cur.children = append(cur.children, &fakeNode{text: html.UnescapeString(raw), parent: cur})
	}

	for _, loc := range tagPattern.FindAllStringSubmatchIndex(markup, -1) {
		addText(markup[pos:loc[0]])
		pos = loc[1]

		closing := loc[3] > loc[2]
		tag := markup[loc[4]:loc[5]]
		if closing {
			if cur.parent != nil {
				cur = cur.parent
			}
			continue
		}

		n := &fakeNode{tag: tag, attrs: map[string]string{}, parent: cur}
		for _, am := range attrPattern.FindAllStringSubmatch(markup[loc[6]:loc[7]], -1) {
			if am[1] == "data-hid" {
				n.hid = am[2]
				continue
			}
			n.attrs[am[1]] = html.UnescapeString(am[2])
		}
		cur.children = append(cur.children, n)
		if !vdom.IsVoidElement(tag) {
			cur = n
		}
	}
	addText(markup[pos:])

	for _, c := range root.children {
		c.parent = nil
	}
	return root.children
}

// dump writes n without hydration ids, attributes sorted. Two documents
// a user would see identically dump identically.
func dump(b *strings.Builder, n *fakeNode) {
	if n.isText() {
		b.WriteString(html.EscapeString(n.text))
		return
	}
	b.WriteString("<" + n.tag)
	keys := make([]string, 0, len(n.attrs))
	for k := range n.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, ` %s="%s"`, k, html.EscapeString(n.attrs[k]))
	}
	b.WriteString(">")
	for _, c := range n.children {
		dump(b, c)
	}
	if !vdom.IsVoidElement(n.tag) {
		b.WriteString("</" + n.tag + ">")
	}
}

// visible is the dump of markup as the fake DOM would hold it.
func visible(markup string) string {
	var b strings.Builder
	for _, n := range parseMarkup(markup) {
		dump(&b, n)
	}
	return b.String()
}

type fakeDOM struct {
	mu       sync.Mutex
	mount    *fakeNode
	renderer *render.Renderer

	replaced  []string
	applied   [][]vdom.Patch
	failApply bool
}

func newFakeDOM(markup string) *fakeDOM {
	d := &fakeDOM{renderer: render.NewRenderer(render.RendererConfig{})}
	d.setMarkup(markup)
	return d
}

func (d *fakeDOM) setMarkup(markup string) {
	d.mount = &fakeNode{tag: "div", attrs: map[string]string{}}
	for _, c := range parseMarkup(markup) {
		c.parent = d.mount
		d.mount.children = append(d.mount.children, c)
	}
}

func (d *fakeDOM) Tags() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()

	tags := map[string]string{}
	var walk func(n *fakeNode)
	walk = func(n *fakeNode) {
		for _, c := range n.children {
			if !c.isText() && c.hid != "" {
				tags[c.hid] = c.tag
			}
			walk(c)
		}
	}
	walk(d.mount)
	return tags
}

func (d *fakeDOM) Replace(markup string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.replaced = append(d.replaced, markup)
	d.setMarkup(markup)
}

func (d *fakeDOM) replaceCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.replaced)
}

// Visible returns the mount's content as a user would see it.
func (d *fakeDOM) Visible() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var b strings.Builder
	for _, c := range d.mount.children {
		dump(&b, c)
	}
	return b.String()
}

func (d *fakeDOM) find(n *fakeNode, hid string) *fakeNode {
	if !n.isText() && n.hid == hid && hid != "" {
		return n
	}
	for _, c := range n.children {
		if f := d.find(c, hid); f != nil {
			return f
		}
	}
	return nil
}

func (d *fakeDOM) nodeFor(v *vdom.VNode) (*fakeNode, error) {
	markup, err := d.renderer.RenderToString(v)
	if err != nil {
		return nil, err
	}
	nodes := parseMarkup(markup)
	if len(nodes) != 1 || nodes[0].isText() {
		return nil, fmt.Errorf("patch node rendered %d elements", len(nodes))
	}
	return nodes[0], nil
}

func detach(n *fakeNode) {
	p := n.parent
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			return
		}
	}
}

func insertAt(parent, n *fakeNode, index int) {
	n.parent = parent
	if index > len(parent.children) {
		index = len(parent.children)
	}
	parent.children = append(parent.children, nil)
	copy(parent.children[index+1:], parent.children[index:])
	parent.children[index] = n
}

func (d *fakeDOM) Apply(patches []vdom.Patch) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.applied = append(d.applied, patches)
	if d.failApply {
		return fmt.Errorf("apply disabled")
	}

	for _, p := range patches {
		switch p.Op {
		case vdom.PatchSetText, vdom.PatchSetAttr, vdom.PatchRemoveAttr:
			n := d.find(d.mount, p.HID)
			if n == nil {
				return fmt.Errorf("%s: no element %s", p.Op, p.HID)
			}
			switch p.Op {
			case vdom.PatchSetText:
				// textContent replaces every child.
				n.children = nil
				if p.Value != "" {
					n.children = []*fakeNode{{text: p.Value, parent: n}}
				}
			case vdom.PatchSetAttr:
				n.attrs[p.Key] = p.Value
			case vdom.PatchRemoveAttr:
				delete(n.attrs, p.Key)
			}
		case vdom.PatchRemoveNode:
			n := d.find(d.mount, p.HID)
			if n == nil {
				return fmt.Errorf("remove: no element %s", p.HID)
			}
			detach(n)
		case vdom.PatchInsertNode, vdom.PatchMoveNode:
			parent := d.find(d.mount, p.ParentID)
			if parent == nil {
				return fmt.Errorf("%s: no parent %s", p.Op, p.ParentID)
			}
			var n *fakeNode
			if p.Op == vdom.PatchMoveNode {
				n = d.find(d.mount, p.HID)
				if n == nil {
					return fmt.Errorf("move: no element %s", p.HID)
				}
				detach(n)
			} else {
				var err error
				if n, err = d.nodeFor(p.Node); err != nil {
					return err
				}
			}
			insertAt(parent, n, p.Index)
		case vdom.PatchReplaceNode:
			old := d.find(d.mount, p.HID)
			if old == nil {
				return fmt.Errorf("replace: no element %s", p.HID)
			}
			n, err := d.nodeFor(p.Node)
			if err != nil {
				return err
			}
			n.parent = old.parent
			for i, c := range old.parent.children {
				if c == old {
					old.parent.children[i] = n
				}
			}
		}
	}
	return nil
}

type fakeHistory struct {
	mu     sync.Mutex
	pushed []string
}

func (h *fakeHistory) Push(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pushed = append(h.pushed, path)
}
