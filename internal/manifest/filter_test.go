package manifest

import "testing"

func TestFilter(t *testing.T) {
	m := New()
	m.Repositories = []Repository{
		{ID: "a", Groups: Groups{"g1", "g3"}},
		{ID: "b", Groups: Groups{"g2"}},
		{ID: "c"},
		{ID: "d", Groups: Groups{"g3"}},
	}

	tests := []struct {
		name   string
		groups []string
		want   []string
	}{
		{"all", nil, []string{"a", "b", "c", "d"}},
		{"intersects", []string{"g2", "g3"}, []string{"a", "b", "d"}},
		{"disjoint", []string{"g4"}, nil},
		{"single", []string{"g1"}, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(m, tt.groups)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d repos, want %d", len(got), len(tt.want))
			}
			for i, r := range got {
				if r.ID != tt.want[i] {
					t.Errorf("position %d = %q, want %q", i, r.ID, tt.want[i])
				}
			}
		})
	}
}
