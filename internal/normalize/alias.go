package normalize

import "strings"

// AliasTable maps raw customer names from the exports to the canonical name
// used in the customers table. The zero value resolves every name to itself.
type AliasTable struct {
	aliases map[string]string
}

// NewAliasTable builds a table from raw -> canonical pairs. Keys and values are trimmed.
func NewAliasTable(aliases map[string]string) *AliasTable {
	t := &AliasTable{aliases: make(map[string]string, len(aliases))}
	for raw, canonical := range aliases {
		t.aliases[strings.TrimSpace(raw)] = strings.TrimSpace(canonical)
	}
	return t
}

// Resolve returns the canonical name for name, or the trimmed name when unmapped
func (t *AliasTable) Resolve(name string) string {
	name = strings.TrimSpace(name)
	if t == nil {
		return name
	}
	if canonical, ok := t.aliases[name]; ok {
		return canonical
	}
	return name
}

// Len reports the number of configured aliases
func (t *AliasTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.aliases)
}
