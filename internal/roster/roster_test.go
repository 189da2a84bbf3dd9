package roster

import (
	"errors"
	"reflect"
	"testing"

	"rosterforge/internal/model"
)

func TestNormalizeLabel(t *testing.T) {
	cases := []struct{ in, want string }{
		{"1.0", "1"},
		{"2", "2"},
		{"3.50", "3.5"},
		{"Alpha", "Alpha"},
		{"  7  ", "7"},
		{"", ""},
		{"Team B", "Team B"},
	}
	for _, c := range cases {
		if got := NormalizeLabel(c.in); got != c.want {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseNamesSingleColumn(t *testing.T) {
	csvData := []byte("Student Name\nAlice\n\nBob \n")
	names, err := ParseNames(csvData, "roster.csv")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Alice", "Bob"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
}

func TestParseNamesHeaderAliases(t *testing.T) {
	names, err := ParseNames([]byte("name\nCarol\n"), "r.csv")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "Carol" {
		t.Errorf("names = %v", names)
	}
}

func TestParseNamesFirstLast(t *testing.T) {
	csvData := []byte("First Name,Last Name\nAda,Lovelace\nGrace,Hopper\n")
	names, err := ParseNames(csvData, "r.csv")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Ada Lovelace", "Grace Hopper"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
}

func TestParseNamesMissingHeader(t *testing.T) {
	_, err := ParseNames([]byte("Group,Members\n1,A\n"), "r.csv")
	if !errors.Is(err, ErrNoHeader) {
		t.Fatalf("err = %v, want ErrNoHeader", err)
	}
}

func TestParseGroupRows(t *testing.T) {
	csvData := []byte("Group,Members\n1.0,\"Alice, Bob\"\n2,Carol\n3,\n")
	rows, err := ParseGroupRows(csvData, "r.csv")
	if err != nil {
		t.Fatal(err)
	}
	want := []model.GroupRow{
		{Label: "1", Members: []string{"Alice", "Bob"}},
		{Label: "2", Members: []string{"Carol"}},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v, want %v", rows, want)
	}
}

func TestParseGroupRowsSemicolonDelimiter(t *testing.T) {
	csvData := []byte("Group;Members\n1;Alice, Bob\n")
	rows, err := ParseGroupRows(csvData, "r.csv")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || len(rows[0].Members) != 2 {
		t.Fatalf("rows = %v", rows)
	}
}

func TestParseGroupRowsMissingHeaders(t *testing.T) {
	_, err := ParseGroupRows([]byte("Student Name\nAlice\n"), "r.csv")
	if !errors.Is(err, ErrNoHeader) {
		t.Fatalf("err = %v, want ErrNoHeader", err)
	}
}

func TestDecodeLegacyEncoding(t *testing.T) {
	// "José" in cp1252: é = 0xE9, invalid as UTF-8
	data := append([]byte("Student Name\nJos"), 0xE9, '\n')
	names, err := ParseNames(data, "r.csv")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "José" {
		t.Errorf("names = %q", names)
	}
}

func TestUTF8BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Student Name\nAlice\n")...)
	names, err := ParseNames(data, "r.csv")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "Alice" {
		t.Errorf("names = %v", names)
	}
}

func TestSplitMixed(t *testing.T) {
	rows := []model.GroupRow{
		{Label: "1", Members: []string{"A", "B"}},
		{Label: "2", Members: []string{"C"}},
	}
	groups, solos := model.SplitMixed(rows)
	if len(groups) != 1 || groups[0].Label != "1" {
		t.Errorf("groups = %v", groups)
	}
	if !reflect.DeepEqual(solos, []string{"C"}) {
		t.Errorf("solos = %v", solos)
	}
	if total := model.TotalUnits(groups) + len(solos); total != 5 {
		t.Errorf("total units = %d, want 5", total)
	}
}
