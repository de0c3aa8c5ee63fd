package store

import "testing"

func TestTotalPages(t *testing.T) {
	tests := []struct {
		totalItems int
		pageSize   int
		want       int
	}{
		{0, 50, 1},
		{1, 50, 1},
		{50, 50, 1},
		{51, 50, 2},
		{100, 50, 2},
		{101, 50, 3},
		{25, 25, 1},
		{26, 25, 2},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.totalItems, tt.pageSize); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.totalItems, tt.pageSize, got, tt.want)
		}
	}
}

func TestNewPage(t *testing.T) {
	p := NewPage([]int{1, 2, 3}, 1, 50, 103)
	if p.TotalPages != 3 {
		t.Errorf("TotalPages: got %d, want 3", p.TotalPages)
	}
	if p.TotalItems != 103 {
		t.Errorf("TotalItems: got %d, want 103", p.TotalItems)
	}
	if len(p.Items) != 3 {
		t.Errorf("Items: got %d, want 3", len(p.Items))
	}
}

func TestNewPageNilItems(t *testing.T) {
	p := NewPage[int](nil, 9, 50, 0)
	if p.Items == nil {
		t.Error("Items should be an empty slice, not nil")
	}
	if p.TotalPages != 1 {
		t.Errorf("TotalPages: got %d, want 1", p.TotalPages)
	}
}
