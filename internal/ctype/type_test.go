package ctype

import "testing"

func TestAlignTo(t *testing.T) {
	tests := []struct {
		n, align, want int
	}{
		{0, 8, 0},
		{1, 8, 8},
		{8, 8, 8},
		{9, 8, 16},
		{3, 4, 4},
	}
	for _, tt := range tests {
		if got := AlignTo(tt.n, tt.align); got != tt.want {
			t.Errorf("AlignTo(%d, %d) = %d, want %d", tt.n, tt.align, got, tt.want)
		}
	}
}

func TestPrimitiveSizes(t *testing.T) {
	tests := []struct {
		name string
		ty   *Type
		size int
	}{
		{"bool", BoolTy, 1},
		{"char", CharTy, 1},
		{"short", ShortTy, 2},
		{"int", IntTy, 4},
		{"long", LongTy, 8},
	}
	for _, tt := range tests {
		if tt.ty.Size != tt.size {
			t.Errorf("%s size = %d, want %d", tt.name, tt.ty.Size, tt.size)
		}
	}
}

func TestIsIntegerExcludesPointersAndAggregates(t *testing.T) {
	if !IsInteger(IntTy) {
		t.Error("int should be integer")
	}
	if IsInteger(PointerTo(IntTy)) {
		t.Error("pointer should not be integer")
	}
	if IsInteger(ArrayOf(IntTy, 3)) {
		t.Error("array should not be integer")
	}
}

func TestIsPointerLikeCoversArraysAndPointers(t *testing.T) {
	if !IsPointerLike(PointerTo(IntTy)) {
		t.Error("pointer should be pointer-like")
	}
	if !IsPointerLike(ArrayOf(CharTy, 4)) {
		t.Error("array should be pointer-like")
	}
	if IsPointerLike(IntTy) {
		t.Error("int should not be pointer-like")
	}
}

func TestArrayOfComputesSize(t *testing.T) {
	arr := ArrayOf(IntTy, 5)
	if arr.Size != 20 {
		t.Errorf("size = %d, want 20", arr.Size)
	}
	if arr.Align != 4 {
		t.Errorf("align = %d, want 4", arr.Align)
	}
}

func TestFindMember(t *testing.T) {
	st := NewStruct()
	st.Members = []*Member{{Name: "x", Ty: IntTy, Offset: 0}, {Name: "y", Ty: IntTy, Offset: 4}}
	m := st.FindMember("y")
	if m == nil || m.Offset != 4 {
		t.Fatalf("FindMember(y) = %v, want offset 4", m)
	}
	if st.FindMember("z") != nil {
		t.Fatal("FindMember(z) should be nil")
	}
}

func TestNewStructIdentityStableAcrossCompletion(t *testing.T) {
	st := NewStruct()
	if !st.IsIncomplete {
		t.Fatal("fresh struct should be incomplete")
	}
	ptr := PointerTo(st) // self-referential member captured before completion
	st.Members = []*Member{{Name: "next", Ty: ptr, Offset: 0}}
	st.Size = 8
	st.IsIncomplete = false
	if ptr.Base != st {
		t.Fatal("pointer taken before completion should still refer to the same Type value")
	}
}
