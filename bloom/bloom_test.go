package bloom

import "testing"

func TestPushThenMightContain(t *testing.T) {
	f := New()
	f.Push([]uint32{10, 20, 30})
	if !f.MightContain([4]uint32{10, 0, 0, 0}) {
		t.Error("expected pushed hash to be found")
	}
	if !f.MightContain([4]uint32{10, 20, 30, 0}) {
		t.Error("expected all pushed hashes to be found")
	}
}

func TestPopRemovesFrame(t *testing.T) {
	f := New()
	f.Push([]uint32{42})
	f.Pop()
	if f.Depth() != 0 {
		t.Errorf("expected depth 0 after pop, got %d", f.Depth())
	}
}

func TestPopUnbalancedPanics(t *testing.T) {
	f := New()
	defer func() {
		if recover() == nil {
			t.Error("expected panic from unbalanced Pop")
		}
	}()
	f.Pop()
}

// TestIsolationAcrossSiblingSubtrees mirrors
// style_calculation.rs's test_calculate_styles_for_tree_bloom_filter_isolation:
// hashes pushed while visiting one subtree must not leak into a
// sibling subtree visited afterwards.
func TestIsolationAcrossSiblingSubtrees(t *testing.T) {
	f := New()

	// Visit first child subtree: push a hash unique to it, then pop.
	f.Push([]uint32{111})
	f.Push([]uint32{222})
	f.Pop()
	f.Pop()

	// Now in a sibling subtree, the earlier hashes must be gone.
	if f.MightContain([4]uint32{111, 0, 0, 0}) {
		t.Error("expected isolation: hash from prior sibling subtree should not remain")
	}
	if f.Depth() != 0 {
		t.Errorf("expected filter to be empty between sibling subtrees, depth=%d", f.Depth())
	}
}

func TestCountingAllowsSharedHashAcrossBranches(t *testing.T) {
	f := New()
	f.Push([]uint32{7}) // ancestor A has hash 7
	f.Push([]uint32{7}) // descendant also has hash 7 (e.g. same class)
	if !f.MightContain([4]uint32{7, 0, 0, 0}) {
		t.Error("expected shared hash to be present while both frames are pushed")
	}
	f.Pop() // leave the descendant
	if !f.MightContain([4]uint32{7, 0, 0, 0}) {
		t.Error("expected hash to remain present: ancestor A's frame still holds a count")
	}
	f.Pop() // leave A
	if f.MightContain([4]uint32{7, 0, 0, 0}) {
		t.Error("expected hash to be gone once both frames are popped")
	}
}

func TestClear(t *testing.T) {
	f := New()
	f.Push([]uint32{1, 2, 3})
	f.Clear()
	if f.Depth() != 0 {
		t.Errorf("expected depth 0 after clear, got %d", f.Depth())
	}
	if f.MightContain([4]uint32{1, 0, 0, 0}) {
		t.Error("expected no hashes present after clear")
	}
}

func TestZeroHashIgnored(t *testing.T) {
	f := New()
	// A selector with fewer than 4 ancestor hashes pads with 0; 0 must
	// never be treated as "must find bucket 0".
	if !f.MightContain([4]uint32{0, 0, 0, 0}) {
		t.Error("an all-zero hash set should vacuously match")
	}
}
