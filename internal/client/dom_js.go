//go:build js && wasm

package client

import (
	"fmt"
	"log/slog"
	"strings"
	"syscall/js"

	"github.com/vango-dev/popular/internal/app"
	"github.com/vango-dev/popular/internal/github"
	"github.com/vango-dev/popular/pkg/render"
	"github.com/vango-dev/popular/pkg/router"
	"github.com/vango-dev/popular/pkg/vdom"
)

// jsDOM drives the real document through syscall/js.
type jsDOM struct {
	doc      js.Value
	mount    js.Value
	renderer *render.Renderer
}

func (d *jsDOM) Tags() map[string]string {
	tags := make(map[string]string)
	list := d.mount.Call("querySelectorAll", "[data-hid]")
	for i := 0; i < list.Length(); i++ {
		el := list.Index(i)
		tags[el.Call("getAttribute", "data-hid").String()] = strings.ToLower(el.Get("tagName").String())
	}
	return tags
}

func (d *jsDOM) Replace(markup string) {
	d.mount.Set("innerHTML", markup)
}

// Apply applies patches in order. A JS exception panics inside syscall/js;
// it is turned into an error so the caller can fall back to Replace.
func (d *jsDOM) Apply(patches []vdom.Patch) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("apply patch: %v", r)
		}
	}()

	for _, p := range patches {
		if err := d.apply(p); err != nil {
			return err
		}
	}
	return nil
}

func (d *jsDOM) apply(p vdom.Patch) error {
	switch p.Op {
	case vdom.PatchSetText:
		el, err := d.find(p.HID)
		if err != nil {
			return err
		}
		el.Set("textContent", p.Value)

	case vdom.PatchSetAttr:
		el, err := d.find(p.HID)
		if err != nil {
			return err
		}
		el.Call("setAttribute", p.Key, p.Value)

	case vdom.PatchRemoveAttr:
		el, err := d.find(p.HID)
		if err != nil {
			return err
		}
		el.Call("removeAttribute", p.Key)

	case vdom.PatchInsertNode:
		parent, err := d.find(p.ParentID)
		if err != nil {
			return err
		}
		node, err := d.create(p.Node)
		if err != nil {
			return err
		}
		parent.Call("insertBefore", node, childAt(parent, p.Index))

	case vdom.PatchRemoveNode:
		el, err := d.find(p.HID)
		if err != nil {
			return err
		}
		el.Call("remove")

	case vdom.PatchMoveNode:
		el, err := d.find(p.HID)
		if err != nil {
			return err
		}
		parent, err := d.find(p.ParentID)
		if err != nil {
			return err
		}
		el.Call("remove")
		parent.Call("insertBefore", el, childAt(parent, p.Index))

	case vdom.PatchReplaceNode:
		el, err := d.find(p.HID)
		if err != nil {
			return err
		}
		node, err := d.create(p.Node)
		if err != nil {
			return err
		}
		el.Call("replaceWith", node)

	default:
		return fmt.Errorf("unknown patch op %s", p.Op)
	}
	return nil
}

func (d *jsDOM) find(hid string) (js.Value, error) {
	el := d.mount.Call("querySelector", `[data-hid="`+hid+`"]`)
	if el.IsNull() {
		return js.Null(), fmt.Errorf("no element with data-hid %q", hid)
	}
	return el, nil
}

// create renders node and parses it through a template element.
func (d *jsDOM) create(node *vdom.VNode) (js.Value, error) {
	html, err := d.renderer.RenderToString(node)
	if err != nil {
		return js.Null(), err
	}
	tpl := d.doc.Call("createElement", "template")
	tpl.Set("innerHTML", html)
	first := tpl.Get("content").Get("firstChild")
	if first.IsNull() {
		return js.Null(), fmt.Errorf("node rendered to empty markup")
	}
	return first, nil
}

// childAt returns the reference node for insertBefore; null appends.
func childAt(parent js.Value, index int) js.Value {
	nodes := parent.Get("childNodes")
	if index < 0 || index >= nodes.Length() {
		return js.Null()
	}
	return nodes.Index(index)
}

type jsHistory struct {
	history js.Value
}

func (h jsHistory) Push(path string) {
	h.history.Call("pushState", js.Null(), "", path)
}

// Config is what the browser runtime needs to know about the page.
type Config struct {
	MountID string
	BaseURL string
	Logger  *slog.Logger
}

// Bootstrap hydrates the server markup with payload and starts handling
// link clicks and history navigation. The returned App lives for the life
// of the page.
func Bootstrap(cfg Config, payload []github.Repo) (*App, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	window := js.Global()
	doc := window.Get("document")
	mount := doc.Call("getElementById", cfg.MountID)
	if mount.IsNull() {
		return nil, fmt.Errorf("mount element #%s not found", cfg.MountID)
	}

	src := github.NewClient(github.Config{BaseURL: cfg.BaseURL, Logger: cfg.Logger})
	a := New(Options{
		Page:    app.NewPage(app.NewRegistry(src)),
		Table:   app.NewTable(),
		DOM:     &jsDOM{doc: doc, mount: mount, renderer: render.NewRenderer(render.RendererConfig{})},
		History: jsHistory{history: window.Get("history")},
		Logger:  cfg.Logger,
	})

	onClick := js.FuncOf(func(this js.Value, args []js.Value) any {
		ev := args[0]
		if ev.Get("defaultPrevented").Bool() || ev.Get("button").Int() != 0 ||
			ev.Get("metaKey").Bool() || ev.Get("ctrlKey").Bool() || ev.Get("shiftKey").Bool() || ev.Get("altKey").Bool() {
			return nil
		}
		target := ev.Get("target")
		if target.Get("closest").IsUndefined() {
			return nil
		}
		link := target.Call("closest", "a["+router.LinkAttr+"]")
		if link.IsNull() {
			return nil
		}
		ev.Call("preventDefault")
		a.Navigate(link.Get("pathname").String())
		return nil
	})
	doc.Call("addEventListener", "click", onClick)

	onPopState := js.FuncOf(func(this js.Value, args []js.Value) any {
		a.PopState(window.Get("location").Get("pathname").String())
		return nil
	})
	window.Call("addEventListener", "popstate", onPopState)

	a.Hydrate(window.Get("location").Get("pathname").String(), payload)
	return a, nil
}
