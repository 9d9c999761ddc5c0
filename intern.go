package hashschema

import "unique"

// Intern returns the canonical Symbol for s. Equal inputs share one backing
// string while any of them is reachable; unreferenced entries are collected.
func Intern(s string) Symbol {
	return Symbol(unique.Make(s).Value())
}
