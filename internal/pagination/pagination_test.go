package pagination

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 1, DefaultPageSize},
		{-3, 5, 1, 5},
		{2, 1000, 2, MaxPageSize},
		{4, 20, 4, 20},
	}
	for _, tc := range cases {
		p, s := Normalize(tc.page, tc.size)
		if p != tc.wantPage || s != tc.wantSize {
			t.Fatalf("Normalize(%d, %d) = %d, %d; want %d, %d", tc.page, tc.size, p, s, tc.wantPage, tc.wantSize)
		}
	}
}

func TestOffset(t *testing.T) {
	if got := Offset(3, 10); got != 20 {
		t.Fatalf("Offset(3, 10) = %d, want 20", got)
	}
	if got := Offset(0, 0); got != 0 {
		t.Fatalf("Offset(0, 0) = %d, want 0", got)
	}
}

func TestFromTotal(t *testing.T) {
	p := FromTotal([]int{1, 2}, 5, 2, 2)
	if !p.HasNext || !p.HasPrev || p.Total != 5 {
		t.Fatalf("middle page = %+v", p)
	}
	p = FromTotal([]int{5}, 5, 3, 2)
	if p.HasNext {
		t.Fatalf("last page must not have next: %+v", p)
	}
}

func TestPaginate(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	p := Paginate(items, 1, 2)
	if len(p.Items) != 2 || p.Items[0] != "a" || !p.HasNext || p.HasPrev {
		t.Fatalf("first page = %+v", p)
	}
	p = Paginate(items, 3, 2)
	if len(p.Items) != 1 || p.Items[0] != "e" || p.HasNext {
		t.Fatalf("last page = %+v", p)
	}
	p = Paginate(items, 9, 2)
	if len(p.Items) != 0 || p.Total != 5 {
		t.Fatalf("past the end = %+v", p)
	}
}
