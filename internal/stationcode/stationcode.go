// Package stationcode shortens station codes to the four characters the
// HYPO71-family file formats allow, keeping the mapping reversible so
// decoded result files can be mapped back to full station names.
package stationcode

// Map is a bidirectional station-name mapping. Stations sharing the same
// four-character prefix collide and are disambiguated:
//
//	group of 1     →  first 4 characters
//	group of ≤10   →  first 2 characters + "_" + index      (e.g. "EX_3")
//	larger groups  →  first character + "_" + 2-digit index (e.g. "E_07")
type Map struct {
	toShort map[string]string
	toFull  map[string]string
}

// New builds the mapping for the given station names. Duplicate names are
// ignored; the first occurrence wins. Group indices follow input order, so a
// stable input yields a stable mapping.
func New(stations []string) *Map {
	groups := map[string][]string{}
	var prefixes []string
	seen := map[string]struct{}{}
	for _, sta := range stations {
		if _, dup := seen[sta]; dup {
			continue
		}
		seen[sta] = struct{}{}
		prefix := sta
		if len(prefix) > 4 {
			prefix = prefix[:4]
		}
		if _, ok := groups[prefix]; !ok {
			prefixes = append(prefixes, prefix)
		}
		groups[prefix] = append(groups[prefix], sta)
	}

	m := &Map{
		toShort: make(map[string]string, len(seen)),
		toFull:  make(map[string]string, len(seen)),
	}
	for _, prefix := range prefixes {
		members := groups[prefix]
		switch {
		case len(members) == 1:
			m.add(members[0], prefix)
		case len(members) <= 10:
			for i, sta := range members {
				m.add(sta, shortPrefix(sta, 2)+"_"+string(rune('0'+i)))
			}
		default:
			for i, sta := range members {
				m.add(sta, shortPrefix(sta, 1)+"_"+twoDigits(i))
			}
		}
	}
	return m
}

func (m *Map) add(full, short string) {
	m.toShort[full] = short
	m.toFull[short] = full
}

// Short returns the short code for a full station name.
func (m *Map) Short(station string) (string, bool) {
	s, ok := m.toShort[station]
	return s, ok
}

// Full reverse-maps a short code to the full station name.
func (m *Map) Full(short string) (string, bool) {
	f, ok := m.toFull[short]
	return f, ok
}

func shortPrefix(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func twoDigits(i int) string {
	return string(rune('0'+i/10)) + string(rune('0'+i%10))
}
