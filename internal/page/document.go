package page

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/guiltyguilty/disturb/internal/domain"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// IDAttr is stamped onto every discovered element so clients can address it.
const IDAttr = "data-disturb-id"

// Document is a parsed HTML page. All DOM access goes through mu.
type Document struct {
	mu        sync.RWMutex
	root      *html.Node
	nodes     []*Node
	byElement map[*html.Node]*Node
	publisher domain.ChangePublisher
}

// Node is one discovered element. It implements domain.TextTarget.
type Node struct {
	doc *Document
	el  *html.Node
	id  string
}

func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &Document{
		root:      root,
		byElement: make(map[*html.Node]*Node),
	}, nil
}

func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// SetPublisher attaches the sink for text changes. Nil detaches it.
func (d *Document) SetPublisher(p domain.ChangePublisher) {
	d.mu.Lock()
	d.publisher = p
	d.mu.Unlock()
}

// Discover returns the elements whose class list contains markerClass, in
// document order. Repeated calls return the same Nodes; ids are assigned
// sequentially across all discoveries on the document.
func (d *Document) Discover(markerClass string) []*Node {
	d.mu.Lock()
	defer d.mu.Unlock()

	var found []*Node
	walk(d.root, func(el *html.Node) bool {
		if el.Type != html.ElementNode || !hasClass(el, markerClass) {
			return true
		}

		n, ok := d.byElement[el]
		if !ok {
			n = &Node{doc: d, el: el, id: strconv.Itoa(len(d.nodes))}
			setAttr(el, IDAttr, n.id)
			d.byElement[el] = n
			d.nodes = append(d.nodes, n)
		}
		found = append(found, n)
		return true
	})
	return found
}

// Node looks up a discovered element by its exact id. Non-canonical spellings
// such as "01" or "+1" do not match.
func (d *Document) Node(id string) (*Node, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	i, err := strconv.Atoi(id)
	if err != nil || i < 0 || i >= len(d.nodes) || d.nodes[i].id != id {
		return nil, false
	}
	return d.nodes[i], true
}

// Snapshot returns the current text of every discovered element.
func (d *Document) Snapshot() []domain.TextChange {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]domain.TextChange, 0, len(d.nodes))
	for _, n := range d.nodes {
		out = append(out, domain.TextChange{ID: n.id, Text: textContent(n.el)})
	}
	return out
}

// AppendScript adds <script src=src defer> to the end of <body>, or of the
// document root when there is no body.
func (d *Document) AppendScript(src string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	script := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Script,
		Data:     "script",
		Attr: []html.Attribute{
			{Key: "src", Val: src},
			{Key: "defer"},
		},
	}

	parent := d.root
	walk(d.root, func(el *html.Node) bool {
		if el.Type == html.ElementNode && el.DataAtom == atom.Body {
			parent = el
			return false
		}
		return true
	})
	parent.AppendChild(script)
}

// Render writes the document, including any scrambled text, as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if err := html.Render(w, d.root); err != nil {
		return fmt.Errorf("failed to render document: %w", err)
	}
	return nil
}

func (n *Node) ID() string { return n.id }

// Attr returns the value of an attribute on the element.
func (n *Node) Attr(key string) (string, bool) {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()

	for _, a := range n.el.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Text returns the element's text content.
func (n *Node) Text() string {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return textContent(n.el)
}

// SetText replaces all children with a single text node and publishes the
// change. Markup nested inside a marker element is flattened on first write.
func (n *Node) SetText(text string) {
	n.doc.mu.Lock()
	for c := n.el.FirstChild; c != nil; c = n.el.FirstChild {
		n.el.RemoveChild(c)
	}
	n.el.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	publisher := n.doc.publisher
	n.doc.mu.Unlock()

	if publisher != nil {
		publisher.PublishTextChanged(domain.TextChange{ID: n.id, Text: text})
	}
}

func hasClass(el *html.Node, class string) bool {
	for _, a := range el.Attr {
		if a.Namespace == "" && a.Key == "class" {
			return slices.Contains(strings.Fields(a.Val), class)
		}
	}
	return false
}

func setAttr(el *html.Node, key, val string) {
	for i, a := range el.Attr {
		if a.Namespace == "" && a.Key == key {
			el.Attr[i].Val = val
			return
		}
	}
	el.Attr = append(el.Attr, html.Attribute{Key: key, Val: val})
}

func textContent(el *html.Node) string {
	var b strings.Builder
	walk(el, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}

// walk visits n and its descendants in document order until visit returns false.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}
