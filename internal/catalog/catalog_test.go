package catalog

import "testing"

func TestSearchMatchesNameDescriptionCategory(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{"category match", "розы", []string{"1", "2", "3"}},
		{"name match is case insensitive", "РАДУГА", []string{"3"}},
		{"description match", "бельгийского", []string{"8"}},
		{"no match", "кактус", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Search(tt.query, 0)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("Search(%q) returned %d products, want %d", tt.query, len(got), len(tt.wantIDs))
			}
			for i, p := range got {
				if p.ID != tt.wantIDs[i] {
					t.Errorf("result %d: got id %s, want %s", i, p.ID, tt.wantIDs[i])
				}
			}
		})
	}
}

func TestSearchTruncates(t *testing.T) {
	got := Search("роз", 2)
	if len(got) != 2 {
		t.Errorf("expected 2 results, got %d", len(got))
	}
}

func TestPopular(t *testing.T) {
	got := Popular()
	if len(got) != 2 {
		t.Fatalf("expected 2 popular products, got %d", len(got))
	}
	for _, p := range got {
		if !p.IsPopular {
			t.Errorf("product %s is not flagged popular", p.ID)
		}
	}
}

func TestTop(t *testing.T) {
	if got := Top(6); len(got) != 6 {
		t.Errorf("Top(6) returned %d products", len(got))
	}
	if got := Top(100); len(got) != len(All()) {
		t.Errorf("Top beyond catalog size must return the whole catalog, got %d", len(got))
	}
}

func TestAllReturnsCopy(t *testing.T) {
	a := All()
	a[0].Name = "mutated"

	if All()[0].Name == "mutated" {
		t.Error("All() must not expose internal catalog state")
	}
}
