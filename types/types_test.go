package types

import "testing"

func TestIntegerFor(t *testing.T) {
	tests := []struct {
		value int64
		want  Integer
	}{
		{0, Byte},
		{127, Byte},
		{-128, Byte},
		{128, ShortInt},
		{-129, ShortInt},
		{32767, ShortInt},
		{32768, Int},
		{-1 << 31, Int},
		{1 << 31, LongInt},
		{-1<<31 - 1, LongInt},
	}
	for _, tt := range tests {
		if got := IntegerFor(tt.value); got != tt.want {
			t.Errorf("IntegerFor(%d) = %s, want %s", tt.value, got, tt.want)
		}
	}
}

func TestLargest(t *testing.T) {
	tests := []struct {
		a, b Numeric
		want Numeric
	}{
		{Byte, ShortInt, ShortInt},
		{LongInt, Int, LongInt},
		{ShortReal, LongReal, LongReal},
		{LongInt, ShortReal, ShortReal},
		{ShortReal, Byte, ShortReal},
	}
	for _, tt := range tests {
		if got := Largest(tt.a, tt.b); got != tt.want {
			t.Errorf("Largest(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestComparisons(t *testing.T) {
	record := &Array{Elem: Boolean, Length: 3}
	ptr := &Pointer{Base: record}
	str := &Array{Elem: Char, Length: 8}

	tests := []struct {
		name     string
		a, b     Type
		equality bool
		order    bool
	}{
		{"numbers", Int, LongReal, true, true},
		{"number and char", Int, Char, false, false},
		{"chars", Char, Char, true, true},
		{"char and string", Char, str, true, true},
		{"strings", str, OpenArray(Char), true, true},
		{"non-char arrays", record, record, false, false},
		{"sets", Set, Set, true, false},
		{"booleans", Boolean, Boolean, true, false},
		{"pointer and nil", ptr, Nil, true, false},
		{"pointers to same base", ptr, &Pointer{Base: record}, true, false},
		{"pointers to other base", ptr, &Pointer{Base: str}, false, false},
		{"pointer and set", ptr, Set, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.CanTestEquality(tt.b); got != tt.equality {
				t.Errorf("%s.CanTestEquality(%s) = %v, want %v", tt.a, tt.b, got, tt.equality)
			}
			if got := tt.a.CanCompare(tt.b); got != tt.order {
				t.Errorf("%s.CanCompare(%s) = %v, want %v", tt.a, tt.b, got, tt.order)
			}
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{Nil, "NIL"},
		{&Pointer{Base: Char}, "POINTER TO CHAR"},
		{&Array{Elem: Char, Length: 4}, "ARRAY 4 OF CHAR"},
		{OpenArray(Int), "ARRAY OF INTEGER"},
		{ShortInt, "SHORTINT"},
		{LongReal, "LONGREAL"},
		{Set, "SET"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
