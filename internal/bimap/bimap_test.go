// SPDX-License-Identifier: EPL-2.0

package bimap

import "testing"

func TestBiMap_InsertAndGet(t *testing.T) {
	t.Parallel()

	m := New[string, int](4)
	if !m.Insert("sfx", 1) {
		t.Fatal("Insert(sfx, 1) = false, want true")
	}

	if r, ok := m.GetByLeft("sfx"); !ok || r != 1 {
		t.Errorf("GetByLeft(sfx) = %d, %v, want 1, true", r, ok)
	}
	if l, ok := m.GetByRight(1); !ok || l != "sfx" {
		t.Errorf("GetByRight(1) = %q, %v, want sfx, true", l, ok)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestBiMap_Conflicts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		l    string
		r    int
		want bool
	}{
		{name: "same pair again", l: "music", r: 7, want: true},
		{name: "left already taken", l: "music", r: 8, want: false},
		{name: "right already taken", l: "voice", r: 7, want: false},
		{name: "fresh pair", l: "voice", r: 9, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := New[string, int](4)
			m.Insert("music", 7)

			if got := m.Insert(tt.l, tt.r); got != tt.want {
				t.Fatalf("Insert(%q, %d) = %v, want %v", tt.l, tt.r, got, tt.want)
			}

			// the original pairing must survive a refused insert
			if r, _ := m.GetByLeft("music"); r != 7 {
				t.Errorf("GetByLeft(music) = %d, want 7", r)
			}
			if l, _ := m.GetByRight(7); l != "music" {
				t.Errorf("GetByRight(7) = %q, want music", l)
			}
		})
	}
}

func TestBiMap_Remove(t *testing.T) {
	t.Parallel()

	m := New[string, int](4)
	m.Insert("a", 1)
	m.Insert("b", 2)

	if r, ok := m.RemoveByLeft("a"); !ok || r != 1 {
		t.Errorf("RemoveByLeft(a) = %d, %v, want 1, true", r, ok)
	}
	if m.ContainsRight(1) {
		t.Error("right side 1 still present after RemoveByLeft")
	}

	if l, ok := m.RemoveByRight(2); !ok || l != "b" {
		t.Errorf("RemoveByRight(2) = %q, %v, want b, true", l, ok)
	}
	if m.ContainsLeft("b") {
		t.Error("left side b still present after RemoveByRight")
	}

	if _, ok := m.RemoveByRight(2); ok {
		t.Error("RemoveByRight on missing key returned ok")
	}

	// names are free again once removed
	if !m.Insert("a", 2) {
		t.Error("Insert after removal refused")
	}
}
