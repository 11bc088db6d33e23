package source

import "testing"

func TestLoadNormalizesInput(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/room.c"
	if err := writeFile(path, "\xEF\xBB\xBFint x;\r\nint y;\r\n"); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	f := fs.Get(id)
	if got := string(f.Content); got != "int x;\nint y;\n" {
		t.Fatalf("content = %q", got)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("flags = %b, want BOM and CRLF bits", f.Flags)
	}
	if _, ok := fs.GetByPath(path); !ok {
		t.Fatalf("GetByPath(%q) missed", path)
	}
}

func TestPosition(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("mem.c", []byte("ab\ncd\n\nef")))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}},
		{3, LineCol{2, 1}},
		{6, LineCol{3, 1}},
		{8, LineCol{4, 2}},
	}
	for _, tt := range tests {
		if got := f.Position(tt.off); got != tt.want {
			t.Errorf("Position(%d) = %+v, want %+v", tt.off, got, tt.want)
		}
	}
}

func TestSpanOverlaps(t *testing.T) {
	sp := Span{Start: 10, End: 20}
	cases := []struct {
		start, end uint32
		want       bool
	}{
		{0, 10, false},
		{0, 11, true},
		{19, 30, true},
		{20, 30, false},
		{15, 15, true},
		{20, 20, false},
	}
	for _, c := range cases {
		if got := sp.Overlaps(c.start, c.end); got != c.want {
			t.Errorf("Overlaps(%d,%d) = %v, want %v", c.start, c.end, got, c.want)
		}
	}
	if got := sp.Cover(Span{Start: 5, End: 12}); got.Start != 5 || got.End != 20 {
		t.Fatalf("Cover = %v", got)
	}
}
