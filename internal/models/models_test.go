package models

import "testing"

func TestNewID_PositiveAndVaried(t *testing.T) {
	seen := make(map[int64]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		if id <= 0 {
			t.Fatalf("expected positive id, got %d", id)
		}
		if seen[id] {
			t.Fatalf("generator repeated id %d within 1000 draws", id)
		}
		seen[id] = true
	}
}

func TestSubTaskEqual(t *testing.T) {
	a := SubTask{ID: 1, TaskID: 2, Name: "eggs"}
	if !a.Equal(a) {
		t.Fatalf("subtask not equal to itself")
	}
	b := a
	b.IsCompleted = true
	if a.Equal(b) {
		t.Fatalf("field change must break identity match")
	}
}
