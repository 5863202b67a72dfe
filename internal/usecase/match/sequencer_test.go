package match

import (
	"reflect"
	"testing"
)

func TestSequencer_EmitsInOrderDespiteOutOfOrderSubmission(t *testing.T) {
	var emitted []int
	s := newSequencer(func(it item) { emitted = append(emitted, it.seq) })

	s.submit(item{seq: 2})
	s.submit(item{seq: 1})
	if len(emitted) != 0 {
		t.Fatalf("emitted %v before seq 0 arrived, want none yet", emitted)
	}
	s.submit(item{seq: 0})

	want := []int{0, 1, 2}
	if !reflect.DeepEqual(emitted, want) {
		t.Errorf("emitted = %v, want %v", emitted, want)
	}
}

func TestSequencer_SingleItem(t *testing.T) {
	var emitted []int
	s := newSequencer(func(it item) { emitted = append(emitted, it.seq) })
	s.submit(item{seq: 0})
	if !reflect.DeepEqual(emitted, []int{0}) {
		t.Errorf("emitted = %v, want [0]", emitted)
	}
}
