package doctype

import "sort"

// Module is a named grouping of DocType names for navigation.
type Module struct {
	Name         string
	DocTypeNames []string
}

// Membership pairs a DocType name with the modules it declares.
type Membership struct {
	DocType string
	Modules []string
}

// GroupModules derives modules from DocType memberships. Modules are sorted
// by name; DocType names inside a module are de-duplicated and sorted.
func GroupModules(members []Membership) []Module {
	byModule := make(map[string]map[string]bool)
	for _, m := range members {
		for _, mod := range m.Modules {
			if mod == "" || m.DocType == "" {
				continue
			}
			if byModule[mod] == nil {
				byModule[mod] = make(map[string]bool)
			}
			byModule[mod][m.DocType] = true
		}
	}

	out := make([]Module, 0, len(byModule))
	for name, set := range byModule {
		names := make([]string, 0, len(set))
		for dt := range set {
			names = append(names, dt)
		}
		sort.Strings(names)
		out = append(out, Module{Name: name, DocTypeNames: names})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
