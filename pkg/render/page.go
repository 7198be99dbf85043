package render

import (
	"encoding/json"
	"fmt"
	"io"
)

// Document contains everything needed to render the HTML shell around
// server-rendered markup.
type Document struct {
	// Title is the page title
	Title string

	// Lang is the language attribute for the html element.
	// Defaults to "en" if not specified
	Lang string

	// Meta contains meta tags for the page
	Meta []MetaTag

	// Markup is the pre-rendered view, written verbatim inside the mount element
	Markup string

	// MountID is the id of the element the browser runtime hydrates.
	// Defaults to "app"
	MountID string

	// DataGlobal is the window property the payload is assigned to.
	// Defaults to "__INITIAL_DATA__"
	DataGlobal string

	// Payload is serialized as JSON into the data script. A nil payload
	// serializes as null.
	Payload any

	// Bundles are script paths loaded with defer from the head
	Bundles []string

	// Scripts are additional script tags appended to the body
	Scripts []ScriptTag
}

// MetaTag represents a meta element in the document head.
type MetaTag struct {
	Name    string // name attribute
	Content string // content attribute
}

// ScriptTag represents a script element.
type ScriptTag struct {
	Src    string // src attribute
	Type   string // type attribute
	Defer  bool   // defer attribute
	Inline string // inline script content (not escaped)
}

// EncodePayload serializes v for embedding in an inline script.
// encoding/json escapes <, >, &, U+2028 and U+2029, so the result cannot
// close the script element or break the surrounding JavaScript.
func EncodePayload(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return data, nil
}

// RenderDocument renders a complete HTML document to the given writer.
func (r *Renderer) RenderDocument(w io.Writer, doc Document) error {
	lang := doc.Lang
	if lang == "" {
		lang = "en"
	}
	mountID := doc.MountID
	if mountID == "" {
		mountID = "app"
	}
	global := doc.DataGlobal
	if global == "" {
		global = "__INITIAL_DATA__"
	}

	// Encode before writing anything so a bad payload leaves w untouched.
	payload, err := EncodePayload(doc.Payload)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, `<html lang="%s">`+"\n", escapeAttr(lang)); err != nil {
		return err
	}

	if err := r.renderHead(w, doc); err != nil {
		return err
	}

	if _, err := io.WriteString(w, "<body>\n"); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, `<div id="%s">%s</div>`+"\n", escapeAttr(mountID), doc.Markup); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "<script>window.%s = %s;</script>\n", global, payload); err != nil {
		return err
	}

	for _, script := range doc.Scripts {
		if err := r.renderScriptTag(w, script); err != nil {
			return err
		}
	}

	if _, err := io.WriteString(w, "</body>\n</html>\n"); err != nil {
		return err
	}

	return nil
}

// renderHead renders the document head section.
func (r *Renderer) renderHead(w io.Writer, doc Document) error {
	if _, err := io.WriteString(w, "<head>\n"); err != nil {
		return err
	}

	if _, err := io.WriteString(w, `  <meta charset="utf-8">`+"\n"); err != nil {
		return err
	}

	if _, err := io.WriteString(w, `  <meta name="viewport" content="width=device-width, initial-scale=1">`+"\n"); err != nil {
		return err
	}

	if doc.Title != "" {
		if _, err := fmt.Fprintf(w, "  <title>%s</title>\n", escapeHTML(doc.Title)); err != nil {
			return err
		}
	}

	for _, meta := range doc.Meta {
		if _, err := fmt.Fprintf(w, `  <meta name="%s" content="%s">`+"\n",
			escapeAttr(meta.Name), escapeAttr(meta.Content)); err != nil {
			return err
		}
	}

	// Deferred bundles run after the document (and the payload script) is parsed.
	for _, src := range doc.Bundles {
		if err := r.renderScriptTag(w, ScriptTag{Src: src, Defer: true}); err != nil {
			return err
		}
	}

	if _, err := io.WriteString(w, "</head>\n"); err != nil {
		return err
	}

	return nil
}

// renderScriptTag renders a script element.
func (r *Renderer) renderScriptTag(w io.Writer, script ScriptTag) error {
	if _, err := io.WriteString(w, "  <script"); err != nil {
		return err
	}

	if script.Src != "" {
		if _, err := fmt.Fprintf(w, ` src="%s"`, escapeAttr(script.Src)); err != nil {
			return err
		}
	}

	if script.Type != "" {
		if _, err := fmt.Fprintf(w, ` type="%s"`, escapeAttr(script.Type)); err != nil {
			return err
		}
	}

	if script.Defer {
		if _, err := io.WriteString(w, " defer"); err != nil {
			return err
		}
	}

	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}

	if script.Inline != "" {
		if _, err := io.WriteString(w, script.Inline); err != nil {
			return err
		}
	}

	if _, err := io.WriteString(w, "</script>\n"); err != nil {
		return err
	}

	return nil
}
