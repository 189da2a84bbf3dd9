package model

// GroupRow is one roster row: a normalized group label and its members in
// roster order. A row with exactly one member is a solo entry.
type GroupRow struct {
	Label   string   `json:"label"`
	Members []string `json:"members"`
}

// Solo reports whether the row holds a single member
func (r GroupRow) Solo() bool {
	return len(r.Members) == 1
}

// Roster is a parsed upload: either a flat name list (individuals-only
// headers) or group rows (Group+Members headers). Exactly one of the two
// slices is populated.
type Roster struct {
	Names []string   `json:"names,omitempty"`
	Rows  []GroupRow `json:"rows,omitempty"`
}

// SplitMixed partitions group rows for the mixed flow: rows with more than
// one member stay groups, single-member rows contribute their one name to
// the solo list. Order is preserved on both sides.
func SplitMixed(rows []GroupRow) (groups []GroupRow, solos []string) {
	for _, r := range rows {
		if r.Solo() {
			solos = append(solos, r.Members[0])
		} else if len(r.Members) > 1 {
			groups = append(groups, r)
		}
	}
	return groups, solos
}

// TotalUnits is the fixed amount of work for a set of group rows:
// one folder, one requirements sheet and one sheet per member for each row.
func TotalUnits(rows []GroupRow) int {
	total := 0
	for _, r := range rows {
		total += 2 + len(r.Members)
	}
	return total
}
