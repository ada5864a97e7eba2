package hxel

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/pthm/hxel/lib/dom"
)

// TestTimeout bounds TestDocument.Settle.
var TestTimeout = 5 * time.Second

// TestDocument is a connected document with its own registry, for element
// tests.
//
//	td := hxel.NewTestDocument(Counter)
//	el, _ := td.Mount("x-counter", dom.Attr{Name: "step", Value: "2"})
//	el.Call("Increment")
//	if err := td.Settle(); err != nil {
//	    t.Fatal(err)
//	}
type TestDocument struct {
	Doc      *dom.Document
	Registry *Registry
}

// NewTestDocument creates an empty document and defines classes in a fresh
// registry.
func NewTestDocument(classes ...*Class) *TestDocument {
	reg := NewRegistry([]byte("hxel-test-key"))
	reg.Define(classes...)
	return &TestDocument{Doc: dom.NewDocument(), Registry: reg}
}

// Mount creates an element, sets attrs and appends it to the body.
func (td *TestDocument) Mount(tag string, attrs ...dom.Attr) (*Element, error) {
	el, err := td.Registry.Create(tag)
	if err != nil {
		return nil, err
	}
	for _, a := range attrs {
		el.node.SetAttribute(a.Name, a.Value)
	}
	td.Doc.Body().Append(el.node)
	return el, nil
}

// Settle waits for pending work with TestTimeout.
func (td *TestDocument) Settle() error {
	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	return Settle(ctx)
}

// Render settles pending work and renders the document.
func (td *TestDocument) Render() (*TestResult, error) {
	if err := td.Settle(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := td.Doc.Node().Component().Render(context.Background(), &buf); err != nil {
		return nil, err
	}
	return &TestResult{HTML: buf.String()}, nil
}

// TestResult holds rendered output for assertions.
type TestResult struct {
	HTML string
}

// HTMLContains checks if the HTML contains a substring.
func (r *TestResult) HTMLContains(substr string) bool {
	return strings.Contains(r.HTML, substr)
}

// HTMLContainsAll checks if the HTML contains all the given substrings.
func (r *TestResult) HTMLContainsAll(substrs ...string) bool {
	for _, s := range substrs {
		if !strings.Contains(r.HTML, s) {
			return false
		}
	}
	return true
}

// HTMLContainsAny checks if the HTML contains any of the given substrings.
func (r *TestResult) HTMLContainsAny(substrs ...string) bool {
	for _, s := range substrs {
		if strings.Contains(r.HTML, s) {
			return true
		}
	}
	return false
}

// AttributeLog records attribute writes on one element.
type AttributeLog struct {
	obs    *dom.MutationObserver
	node   *dom.Node
	writes map[string][]*string
}

// RecordAttributes starts recording writes of the named attributes (all
// attributes when none are named).
func RecordAttributes(h Host, names ...string) *AttributeLog {
	log := &AttributeLog{node: h.Base().node, writes: make(map[string][]*string)}
	log.obs = dom.NewMutationObserver(func(records []dom.MutationRecord, _ *dom.MutationObserver) {
		for _, rec := range records {
			var v *string
			if s, ok := log.node.GetAttribute(rec.AttributeName); ok {
				v = &s
			}
			log.writes[rec.AttributeName] = append(log.writes[rec.AttributeName], v)
		}
	})
	log.obs.Observe(log.node, dom.MutationObserverInit{Attributes: true, AttributeFilter: names})
	return log
}

// Count returns how many times name was written or removed.
func (l *AttributeLog) Count(name string) int {
	return len(l.writes[name])
}

// Values returns the recorded values of name; removals read as "<removed>".
func (l *AttributeLog) Values(name string) []string {
	out := make([]string, len(l.writes[name]))
	for i, v := range l.writes[name] {
		if v == nil {
			out[i] = "<removed>"
		} else {
			out[i] = *v
		}
	}
	return out
}

// Stop ends recording.
func (l *AttributeLog) Stop() {
	l.obs.Disconnect()
}
