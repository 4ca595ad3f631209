package catalog

import (
	"testing"
)

type stubOrderStore struct {
	saved    []string
	ok       bool
	written  []string
	saveErr  error
	loadHits int
}

func (s *stubOrderStore) LoadOrder() ([]string, bool) {
	s.loadHits++
	return s.saved, s.ok
}

func (s *stubOrderStore) SaveOrder(order []string) error {
	s.written = append([]string(nil), order...)
	return s.saveErr
}

func testCatalog() []Transformation {
	return []Transformation{
		{Key: "a", TitleKey: "t.a", Prompt: "prompt a", Shape: ShapeSingle},
		{Key: "b", TitleKey: "t.b", Prompt: "prompt b", Shape: ShapeSingle},
		{Key: "c", TitleKey: "t.c", Prompt: "prompt c", Shape: ShapeFreeText},
	}
}

func TestMergeSavedOrder(t *testing.T) {
	got := MergeSavedOrder([]string{"b", "a"}, []string{"a", "b", "c"})
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("merged order mismatch: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("merged[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMergeSavedOrderDropsUnknownKeys(t *testing.T) {
	got := MergeSavedOrder([]string{"zombie", "c"}, []string{"a", "b", "c"})
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("merged order %v, want %v", got, want)
		}
	}
}

func TestNewRegistryAppliesPersistedOrderOnce(t *testing.T) {
	store := &stubOrderStore{saved: []string{"c", "a"}, ok: true}
	reg, err := NewRegistry(testCatalog(), store)
	if err != nil {
		t.Fatalf("NewRegistry returned error: %v", err)
	}
	if store.loadHits != 1 {
		t.Fatalf("expected one persisted-order read at startup, got %d", store.loadHits)
	}
	listed := reg.List()
	wantKeys := []string{"c", "a", "b"}
	for i, key := range wantKeys {
		if listed[i].Key != key {
			t.Fatalf("List()[%d].Key = %q, want %q", i, listed[i].Key, key)
		}
	}
}

func TestReorderPersistsMergedOrder(t *testing.T) {
	store := &stubOrderStore{}
	reg, err := NewRegistry(testCatalog(), store)
	if err != nil {
		t.Fatalf("NewRegistry returned error: %v", err)
	}
	merged, err := reg.Reorder([]string{"b", "ghost"})
	if err != nil {
		t.Fatalf("Reorder returned error: %v", err)
	}
	want := []string{"b", "a", "c"}
	for i := range want {
		if merged[i] != want[i] {
			t.Fatalf("merged order %v, want %v", merged, want)
		}
	}
	for i := range want {
		if store.written[i] != want[i] {
			t.Fatalf("persisted order %v, want %v", store.written, want)
		}
	}
}

func TestResolveUnknownKey(t *testing.T) {
	reg, err := NewRegistry(testCatalog(), nil)
	if err != nil {
		t.Fatalf("NewRegistry returned error: %v", err)
	}
	if _, err := reg.Resolve("missing"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestDefaultCatalogDescriptorsAreValid(t *testing.T) {
	for _, tr := range DefaultTransformations() {
		if err := tr.Validate(); err != nil {
			t.Fatalf("catalog descriptor %s invalid: %v", tr.Key, err)
		}
		if tr.VideoPrompt != "" && tr.Shape != ShapeBatchVideo {
			t.Fatalf("%s: videoPrompt outside batch-video shape", tr.Key)
		}
		if tr.Shape == ShapeTwoStep && tr.MaxImages != 0 {
			t.Fatalf("%s: two-step descriptor must not carry maxImages", tr.Key)
		}
	}
}

func TestValidateRejectsIllegalCombinations(t *testing.T) {
	bad := Transformation{
		Key:           "bad",
		Prompt:        "p",
		Shape:         ShapeTwoStep,
		StepTwoPrompt: "s2",
		MaxImages:     4,
	}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected two-step + maxImages to be rejected")
	}
	noStepTwo := Transformation{Key: "bad2", Prompt: "p", Shape: ShapeTwoStep}
	if err := noStepTwo.Validate(); err == nil {
		t.Fatal("expected two-step without stepTwoPrompt to be rejected")
	}
}
