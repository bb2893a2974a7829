// Package tagfile drives extraction rules over a parsed Doxygen tag file.
//
// A Processor owns the parsed document and an ordered registry of named
// rules. Process runs every rule over the whole document and streams each
// matched entry into a Sink, which is expected to collapse duplicate
// triples silently (see internal/zealdb).
package tagfile

import (
	"fmt"
	"io"
	"log"

	"github.com/beevik/etree"
	"github.com/vedvyas/doxytag2zealdb/internal/doxytag"
)

// Sink receives extracted search index entries. Implementations must treat
// an exact duplicate (name, entryType, path) triple as a silent no-op.
type Sink interface {
	Insert(name, entryType, path string) error
}

// Progress is notified after each rule finishes its pass over the document,
// with the number of entries that rule inserted.
type Progress func(rule string, inserted int)

// RuleStat reports how many entries one named rule inserted.
type RuleStat struct {
	Name     string
	Inserted int
}

// Processor walks a parsed tag file once per registered rule and forwards
// every match to the sink. Not safe for concurrent use; the whole pipeline
// runs on one goroutine.
type Processor struct {
	doc     *etree.Document
	sink    Sink
	verbose bool

	order    []string
	rules    map[string]*doxytag.Rule
	counts   map[string]int
	total    int
	progress Progress
}

// New parses the tag file XML from r and returns a Processor with the
// built-in rules registered in their canonical order.
func New(r io.Reader, sink Sink, opts doxytag.Options, verbose bool) (*Processor, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("failed to parse tag file: %w", err)
	}

	p := &Processor{
		doc:     doc,
		sink:    sink,
		verbose: verbose,
		rules:   make(map[string]*doxytag.Rule),
		counts:  make(map[string]int),
	}

	for _, nr := range doxytag.BuiltinRules(opts) {
		p.Register(nr.Name, nr.Rule)
	}

	return p, nil
}

// SetProgress installs a per-rule completion callback. Pass nil to remove.
func (p *Processor) SetProgress(fn Progress) {
	p.progress = fn
}

// Register adds rule under name. Re-registering an existing name replaces
// the rule but keeps its position in the run order; new names run last.
func (p *Processor) Register(name string, rule *doxytag.Rule) {
	if _, ok := p.rules[name]; !ok {
		p.order = append(p.order, name)
	}
	p.rules[name] = rule
}

// Unregister removes the named rule. Unknown names are a no-op.
func (p *Processor) Unregister(name string) {
	if _, ok := p.rules[name]; !ok {
		return
	}
	delete(p.rules, name)
	for i, n := range p.order {
		if n == name {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// RuleNames returns the registered rule names in run order.
func (p *Processor) RuleNames() []string {
	return append([]string(nil), p.order...)
}

// EntryCount returns the total number of entries forwarded to the sink so
// far. Duplicates the sink ignored are still counted, matching what the
// verbose report shows.
func (p *Processor) EntryCount() int {
	return p.total
}

// Stats returns per-rule insertion counts in run order.
func (p *Processor) Stats() []RuleStat {
	stats := make([]RuleStat, 0, len(p.order))
	for _, name := range p.order {
		stats = append(stats, RuleStat{Name: name, Inserted: p.counts[name]})
	}
	return stats
}

// Process runs every registered rule, in registration order, over a full
// pre-order traversal of the document. The first sink or extraction error
// aborts the run.
func (p *Processor) Process() error {
	for _, name := range p.order {
		inserted, err := p.runRule(name)
		if err != nil {
			return err
		}

		if p.verbose {
			log.Printf("Inserted %d entries for %q tag processor", inserted, name)
		}
		if p.progress != nil {
			p.progress(name, inserted)
		}
	}

	if p.verbose {
		log.Printf("Inserted %d entries overall", p.total)
	}
	return nil
}

// runRule walks the whole document with one rule and returns how many
// entries it inserted.
func (p *Processor) runRule(name string) (int, error) {
	rule := p.rules[name]
	before := p.counts[name]

	err := walk(p.doc.Root(), func(el *etree.Element) error {
		if !rule.Matches(el) {
			return nil
		}
		return p.insertEntry(name, rule, el)
	})
	if err != nil {
		return 0, err
	}

	return p.counts[name] - before, nil
}

// insertEntry extracts one entry and forwards it to the sink. An empty name
// means the tag file violates the Doxygen schema and the run must stop.
func (p *Processor) insertEntry(name string, rule *doxytag.Rule, el *etree.Element) error {
	entryName := rule.Name(el)
	if entryName == "" {
		return fmt.Errorf("malformed tag file: <%s kind=%q> element has no name", el.Tag, rule.Kind())
	}

	entryType := rule.EntryType(el)
	path := rule.Locator(el)

	if err := p.sink.Insert(entryName, entryType, path); err != nil {
		return fmt.Errorf("failed to insert entry %q: %w", entryName, err)
	}

	p.counts[name]++
	p.total++
	return nil
}

// walk visits el and all of its descendant elements in pre-order, stopping
// at the first error.
func walk(el *etree.Element, fn func(*etree.Element) error) error {
	if el == nil {
		return nil
	}
	if err := fn(el); err != nil {
		return err
	}
	for _, child := range el.ChildElements() {
		if err := walk(child, fn); err != nil {
			return err
		}
	}
	return nil
}
