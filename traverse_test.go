package steg

import "testing"

func TestNextCell(t *testing.T) {
	if got := NextCell(10, 3); got != 13 {
		t.Errorf("NextCell(10, 3) = %d, want 13", got)
	}
}

func TestUsableCells(t *testing.T) {
	tests := []struct {
		total, start, step int
		want               int
	}{
		{1000, 0, 1, 1000},
		{1000, 0, 5, 200},
		{1000, 999, 5, 1},
		{1000, 1000, 1, 0},
		{10, 3, 3, 3}, // 3, 6, 9
		{10, 4, 3, 2}, // 4, 7
	}
	for _, tt := range tests {
		if got := usableCells(tt.total, tt.start, tt.step); got != tt.want {
			t.Errorf("usableCells(%d, %d, %d) = %d, want %d", tt.total, tt.start, tt.step, got, tt.want)
		}
	}
}

func TestCursor(t *testing.T) {
	cur := newCursor(4, 3, 10)
	var got []int
	for {
		cell, ok := cur.next()
		if !ok {
			break
		}
		got = append(got, cell)
	}
	want := []int{4, 7}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("cursor visited %v, want %v", got, want)
	}
	if _, ok := cur.next(); ok {
		t.Error("exhausted cursor should stay exhausted")
	}
}
