package metrics

import "testing"

func TestRecordClone(t *testing.T) {
	c := getCounter("clone_counter", "test_group")
	r := Record{
		metrics:    c,
		value:      7,
		count:      1,
		dimensions: Dimension{"zone": "a"},
	}

	cp := r.Clone()
	if cp.Value() != r.Value() {
		t.Errorf("Expected cloned value %v, got %v", r.Value(), cp.Value())
	}
	cp.dimensions["zone"] = "b"
	if r.dimensions["zone"] != "a" {
		t.Error("Clone must not share the dimensions map")
	}
}

func TestRecordValueByPolicy(t *testing.T) {
	s := getStopWatch("value_watch", "test_group")
	r := Record{
		metrics: s,
		value:   30,
		count:   3,
	}
	if r.Value() != 10 {
		t.Errorf("Expected averaged value 10, got %v", r.Value())
	}

	v, c := r.RawData()
	if v != 30 || c != 3 {
		t.Errorf("Expected raw data (30,3), got (%v,%d)", v, c)
	}
}

func TestRecordMerge(t *testing.T) {
	t.Run("TestMergeSum", func(t *testing.T) {
		c := getCounter("merge_counter", "test_group")
		a := Record{metrics: c, value: 5}
		b := Record{metrics: c, value: 3}
		if err := a.Merge(b); err != nil {
			t.Fatalf("Merge failed: %v", err)
		}
		if a.Value() != 8 {
			t.Errorf("Expected merged sum 8, got %v", a.Value())
		}
	})

	t.Run("TestMergeMax", func(t *testing.T) {
		g := GetDecayingMaxGauge("merge_max_gauge", "test_group", "", nil, WindowSettings{Store: &mockStore{}})
		defer StopDecayingMaxGauges()

		a := Record{metrics: g, value: 5}
		b := Record{metrics: g, value: 9}
		if err := a.Merge(b); err != nil {
			t.Fatalf("Merge failed: %v", err)
		}
		if a.Value() != 9 {
			t.Errorf("Expected merged max 9, got %v", a.Value())
		}

		c := Record{metrics: g, value: 4}
		if err := a.Merge(c); err != nil {
			t.Fatalf("Merge failed: %v", err)
		}
		if a.Value() != 9 {
			t.Errorf("Expected merged max to stay 9, got %v", a.Value())
		}
	})

	t.Run("TestMergeMismatch", func(t *testing.T) {
		a := Record{metrics: getCounter("merge_a", "test_group"), value: 1}
		b := Record{metrics: getCounter("merge_b", "test_group"), value: 1}
		if err := a.Merge(b); err == nil {
			t.Error("Expected merge of different metrics to fail")
		}
	})

	t.Run("TestMergeDimensionMismatch", func(t *testing.T) {
		c := getCounter("merge_dim_counter", "test_group")
		a := Record{metrics: c, value: 1, dimensions: Dimension{"zone": "a"}}
		b := Record{metrics: c, value: 1, dimensions: Dimension{"zone": "b"}}
		if err := a.Merge(b); err == nil {
			t.Error("Expected merge of different dimensions to fail")
		}
	})
}
