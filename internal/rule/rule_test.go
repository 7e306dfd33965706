package rule

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		ptype  string
		params []string
	}{
		{"empty", "p", nil},
		{"single", "p", []string{"alice"}},
		{"access rule", "p", []string{"alice", "data1", "read"}},
		{"grouping rule", "g", []string{"alice", "admin"}},
		{"full width", "p", []string{"a", "b", "c", "d", "e", "f"}},
		{"empty string param", "p", []string{"alice", "", "read"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Encode(tt.ptype, tt.params)
			if err != nil {
				t.Fatalf("Encode() failed: %v", err)
			}
			got := Decode(rec)
			if got.PType != tt.ptype {
				t.Errorf("decoded ptype = %q, want %q", got.PType, tt.ptype)
			}
			want := tt.params
			if want == nil {
				want = []string{}
			}
			if diff := cmp.Diff(want, got.Params); diff != "" {
				t.Errorf("decoded params mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncodeArityBound(t *testing.T) {
	if _, err := Encode("p", []string{"a", "b", "c", "d", "e", "f"}); err != nil {
		t.Errorf("Encode() with 6 params failed: %v", err)
	}

	_, err := Encode("p", []string{"a", "b", "c", "d", "e", "f", "g"})
	if err == nil {
		t.Fatal("Encode() with 7 params succeeded, want ArityError")
	}
	var arityErr *ArityError
	if !errors.As(err, &arityErr) {
		t.Fatalf("Encode() returned %T, want *ArityError", err)
	}
	if arityErr.Count != 7 {
		t.Errorf("ArityError.Count = %d, want 7", arityErr.Count)
	}
}

func TestEncodeAbsentSlotsAreNull(t *testing.T) {
	rec, err := Encode("p", []string{"alice", "data1"})
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if !rec.V[i].Valid {
			t.Errorf("slot v%d invalid, want present", i)
		}
	}
	for i := 2; i < MaxParams; i++ {
		if rec.V[i].Valid {
			t.Errorf("slot v%d = %q, want absent", i, rec.V[i].String)
		}
		if rec.V[i].String != "" {
			t.Errorf("absent slot v%d carries value %q", i, rec.V[i].String)
		}
	}
}

func TestDecodeSkipsHoles(t *testing.T) {
	// Rows like this only appear through direct database edits; the decoder
	// joins the present slots in order.
	rec := Record{
		PType: "p",
		V: [MaxParams]sql.NullString{
			{String: "alice", Valid: true},
			{},
			{String: "read", Valid: true},
		},
	}
	got := Decode(rec)
	want := []string{"alice", "read"}
	if diff := cmp.Diff(want, got.Params); diff != "" {
		t.Errorf("Decode() params mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeDistinguishesEmptyFromAbsent(t *testing.T) {
	rec := Record{
		PType: "p",
		V: [MaxParams]sql.NullString{
			{String: "", Valid: true},
		},
	}
	got := Decode(rec)
	if len(got.Params) != 1 || got.Params[0] != "" {
		t.Errorf("Decode() params = %v, want one empty-string param", got.Params)
	}
}
