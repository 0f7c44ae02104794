package curve

import (
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := New(
		NewKeyframe(0, 1, TypeSmooth),
		NewKeyframe(0.5, 1, TypeLinear),
		NewKeyframe(1.25, -3, TypeLinear),
		NewKeyframe(2, 0, TypeFlat),
	)
	c.ApplyTypes(ApplyOptions{})

	records := c.Records()
	if records[1].Value != nil {
		t.Fatalf("unchanged value should be omitted, got %v", *records[1].Value)
	}
	if records[2].CurveType != nil {
		t.Fatalf("unchanged curve type should be omitted, got %v", *records[2].CurveType)
	}

	restored := New()
	if err := restored.Load(records); err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := c.Keys()
	got := restored.Keys()
	if len(got) != len(want) {
		t.Fatalf("got %d keys, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("key %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDecodeFallsBackToPrevious(t *testing.T) {
	one, two := float32(1), float32(2)
	linear := TypeLinear
	keys, err := Decode([]Record{
		{Value: &two, CurveType: &linear},
		{Time: &one},
	})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if keys[0].Time != 0 || keys[1].Value != 2 || keys[1].CurveType != TypeLinear {
		t.Fatalf("unexpected keys %+v", keys)
	}
}

func TestDecodeRejectsRepeatedTime(t *testing.T) {
	one := float32(1)
	_, err := Decode([]Record{{Time: &one}, {}})
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("got %v, want ErrDuplicateKey", err)
	}
}

func TestLoadFailureKeepsKeys(t *testing.T) {
	c := New(NewKeyframe(0, 7, TypeSmooth), NewKeyframe(2, 7, TypeSmooth))
	before := c.Keys()

	zero, one, almost := float32(0), float32(1), float32(1.00005)
	err := c.Load([]Record{{Time: &zero}, {Time: &one}, {Time: &almost}})
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("got %v, want ErrDuplicateKey", err)
	}
	got := c.Keys()
	if len(got) != len(before) {
		t.Fatalf("got %d keys after failed load, want %d", len(got), len(before))
	}
	for i := range before {
		if got[i] != before[i] {
			t.Fatalf("key %d: got %+v, want %+v", i, got[i], before[i])
		}
	}
}
