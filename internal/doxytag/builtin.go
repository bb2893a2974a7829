package doxytag

import (
	"strings"

	"github.com/beevik/etree"
)

// NamedRule pairs a registry key with its rule.
type NamedRule struct {
	Name string
	Rule *Rule
}

// entryTypeOverrides maps member kinds whose Dash entry type is not just the
// capitalized kind. Dash only recognizes a fixed set of entry types, so
// "enumeration" members must be filed as "Enum" and so on.
var entryTypeOverrides = map[string]string{
	"enumeration": "Enum",
	"enumvalue":   "Value",
	"typedef":     "Type",
}

// capitalize upper-cases the first byte of a Doxygen kind string. Kinds are
// plain ASCII identifiers ("class", "union", ...).
func capitalize(kind string) string {
	if kind == "" {
		return ""
	}
	return strings.ToUpper(kind[:1]) + kind[1:]
}

// NewCompoundRule builds a rule for <compound kind="..."> elements. The
// entry type is the capitalized kind.
func NewCompoundRule(kind string, opts Options) *Rule {
	return &Rule{
		tagName:   "compound",
		kind:      kind,
		entryType: capitalize(kind),
		opts:      opts,
	}
}

// NewMemberRule builds a rule for <member kind="..."> elements. The entry
// type is the capitalized kind unless Dash requires a different label for
// that kind.
func NewMemberRule(kind string, opts Options) *Rule {
	entryType := capitalize(kind)
	if override, ok := entryTypeOverrides[kind]; ok {
		entryType = override
	}
	return &Rule{
		tagName:   "member",
		kind:      kind,
		entryType: entryType,
		opts:      opts,
	}
}

// NewFileRule builds the compound rule for kind "file". Doxygen writes file
// compound <filename> children without the .html extension, so the locator
// gains it here.
func NewFileRule(opts Options) *Rule {
	r := NewCompoundRule("file", opts)
	r.locatorFn = func(_ *Rule, el *etree.Element) string {
		return defaultLocator(el) + ".html"
	}
	return r
}

// NewFunctionRule builds the member rule for kind "function". Functions
// nested in a class or struct are filed as "Method", and when
// IncludeFunctionSignatures is set the entry name gains the argument list
// and return type, e.g. "run(int x) -> void".
func NewFunctionRule(opts Options) *Rule {
	r := NewMemberRule("function", opts)

	r.entryTypeFn = func(r *Rule, el *etree.Element) string {
		if parent := el.Parent(); parent != nil {
			switch parent.SelectAttrValue("kind", "") {
			case "class", "struct":
				return "Method"
			}
		}
		return r.entryType
	}

	r.nameFn = func(r *Rule, el *etree.Element) string {
		name := defaultName(r, el)
		if !r.opts.IncludeFunctionSignatures {
			return name
		}

		// The arglist text already starts with "(", so no separator.
		if args := childText(el, "arglist"); args != "" {
			name += args
		}
		if ret := childText(el, "type"); ret != "" {
			name += " -> " + ret
		}
		return name
	}

	return r
}

// BuiltinRules returns the standard rule set in its canonical registration
// order. The order only affects verbose per-rule reporting, not the final
// index contents.
func BuiltinRules(opts Options) []NamedRule {
	return []NamedRule{
		{"class", NewCompoundRule("class", opts)},
		{"file", NewFileRule(opts)},
		{"namespace", NewCompoundRule("namespace", opts)},
		{"struct", NewCompoundRule("struct", opts)},
		{"union", NewCompoundRule("union", opts)},
		{"function", NewFunctionRule(opts)},
		{"define", NewMemberRule("define", opts)},
		{"enumeration", NewMemberRule("enumeration", opts)},
		{"enumvalue", NewMemberRule("enumvalue", opts)},
		{"typedef", NewMemberRule("typedef", opts)},
		{"variable", NewMemberRule("variable", opts)},
	}
}
