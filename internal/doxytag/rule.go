// Package doxytag implements extraction rules for Doxygen tag-file nodes.
//
// A Rule recognizes one kind of element in a parsed tag file ("compound" or
// "member" elements carrying a particular kind attribute) and extracts the
// (name, entry type, path) triple that Zeal and Dash expect in their search
// index. Rules are built by the constructors in builtin.go and handed to a
// tagfile.Processor, which walks the document and feeds every match through
// the rule's extractors.
package doxytag

import (
	"github.com/beevik/etree"
)

// Options control optional parts of entry-name extraction. One Options value
// is shared by every rule of a processing run.
type Options struct {
	// IncludeParentScopes prefixes member names with the enclosing
	// class/struct/namespace name, e.g. "Foo::bar" instead of "bar".
	IncludeParentScopes bool

	// IncludeFunctionSignatures appends argument lists and return types to
	// function entry names, e.g. "run(int x) -> void". Only the function
	// rule consults this.
	IncludeFunctionSignatures bool
}

// extractFunc computes one component of a search index entry from a matched
// element. The rule is passed back in so overrides can fall through to the
// defaults with the rule's own configuration.
type extractFunc func(r *Rule, el *etree.Element) string

// Rule matches tag-file elements by element tag and kind attribute and
// extracts search index entries from them. The zero value is not usable;
// build rules with the constructors in this package. Rules are immutable
// after construction and safe to reuse across runs.
type Rule struct {
	tagName   string
	kind      string
	entryType string
	opts      Options

	// Overrides for the default extraction behavior. A nil field means the
	// package-level default applies.
	nameFn      extractFunc
	entryTypeFn extractFunc
	locatorFn   extractFunc
}

// Kind returns the Doxygen kind attribute value this rule matches.
func (r *Rule) Kind() string { return r.kind }

// Matches reports whether el is an element this rule should extract. A
// missing kind attribute is treated as the empty string and never matches a
// non-empty expectation.
func (r *Rule) Matches(el *etree.Element) bool {
	return el.Tag == r.tagName && el.SelectAttrValue("kind", "") == r.kind
}

// Name returns the entry name for a matched element.
func (r *Rule) Name(el *etree.Element) string {
	if r.nameFn != nil {
		return r.nameFn(r, el)
	}
	return defaultName(r, el)
}

// EntryType returns the Dash entry type for a matched element.
func (r *Rule) EntryType(el *etree.Element) string {
	if r.entryTypeFn != nil {
		return r.entryTypeFn(r, el)
	}
	return r.entryType
}

// Locator returns the documentation path (optionally with a #anchor) for a
// matched element. Empty when the element carries no location children.
func (r *Rule) Locator(el *etree.Element) string {
	if r.locatorFn != nil {
		return r.locatorFn(r, el)
	}
	return defaultLocator(el)
}

// childText returns the text of el's immediate child with the given tag, or
// "" when the child is absent.
func childText(el *etree.Element, tag string) string {
	child := el.SelectElement(tag)
	if child == nil {
		return ""
	}
	return child.Text()
}

// scopeKinds are the parent kinds that qualify a member name.
var scopeKinds = map[string]bool{
	"class":     true,
	"struct":    true,
	"namespace": true,
}

func defaultName(r *Rule, el *etree.Element) string {
	name := childText(el, "name")

	if r.opts.IncludeParentScopes {
		if parent := el.Parent(); parent != nil && scopeKinds[parent.SelectAttrValue("kind", "")] {
			name = childText(parent, "name") + "::" + name
		}
	}

	return name
}

func defaultLocator(el *etree.Element) string {
	if filename := el.SelectElement("filename"); filename != nil {
		return filename.Text()
	}

	if anchorfile := el.SelectElement("anchorfile"); anchorfile != nil {
		locator := anchorfile.Text()
		if anchor := childText(el, "anchor"); anchor != "" {
			locator += "#" + anchor
		}
		return locator
	}

	return ""
}
