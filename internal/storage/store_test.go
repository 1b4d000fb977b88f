package storage

import (
	"testing"

	"github.com/san-kum/odeflow/internal/solve"
	"github.com/san-kum/odeflow/internal/stepper"
	"github.com/san-kum/odeflow/internal/vec"
)

func sampleResult() *solve.Result {
	return &solve.Result{
		Times: []float64{0, 0.5, 1},
		States: []vec.Vector{
			{1, 0},
			{0.87, -0.47},
			{0.54, -0.84},
		},
		Stats: stepper.Stats{Accepted: 12, Rejected: 2, Evaluations: 100},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save("rk45", 1e-6, 1e-8, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Fatal("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Method != "rk45" {
		t.Errorf("expected method rk45, got %s", meta.Method)
	}
	if meta.Rtol != 1e-6 {
		t.Errorf("expected rtol 1e-6, got %g", meta.Rtol)
	}
	if meta.Accepted != 12 || meta.Rejected != 2 || meta.Evaluations != 100 {
		t.Errorf("stats not persisted: %+v", meta)
	}
	if meta.T0 != 0 || meta.TEnd != 1 {
		t.Errorf("time span not persisted: %g..%g", meta.T0, meta.TEnd)
	}

	states, times, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	if len(states) != 3 || len(times) != 3 {
		t.Fatalf("expected 3 samples, got %d states, %d times", len(states), len(times))
	}
	if states[1][1] != -0.47 {
		t.Errorf("state value not round-tripped: %v", states[1])
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	if _, err := st.Save("rk23", 1e-6, 1e-8, sampleResult()); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreSaveEmpty(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	if _, err := st.Save("rk45", 1e-6, 1e-8, &solve.Result{}); err == nil {
		t.Error("expected error for empty result")
	}
}
