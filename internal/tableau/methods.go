package tableau

import (
	"fmt"
	"sort"
)

// Registry of named methods. Each tableau is validated once at package
// init; a coefficient typo fails fast instead of corrupting runs.

var methods = map[string]*Tableau{}

var aliases = map[string]string{
	"bs23":   "rk23",
	"dopri5": "rk45",
}

func register(tb *Tableau) {
	if err := tb.Validate(); err != nil {
		panic(err)
	}
	methods[tb.Name] = tb
}

// Get returns the named method's tableau. Aliases resolve to their
// canonical name.
func Get(name string) (*Tableau, error) {
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	tb, ok := methods[name]
	if !ok {
		return nil, fmt.Errorf("unknown method: %s", name)
	}
	return tb, nil
}

// Names lists the registered canonical method names, sorted.
func Names() []string {
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	// Forward Euler. Fixed step; the linear interpolant is exact for
	// the method itself.
	register(&Tableau{
		Name:        "euler",
		Stages:      1,
		Order:       1,
		DenseOrder:  1,
		Interpolate: true,
		A:           [][]float64{{}},
		B:           []float64{1},
		C:           []float64{0},
		BI:          [][]float64{{1}},
	})

	// Classic fourth-order Runge-Kutta. Fixed step. One extra stage at
	// the step endpoint (its A row repeats the solution weights, so the
	// stage derivative is f(t+dt, y_new)) feeds a cubic Hermite
	// interpolant.
	register(&Tableau{
		Name:        "rk4",
		Stages:      4,
		ExtraStages: 1,
		Order:       4,
		DenseOrder:  3,
		Interpolate: true,
		A: [][]float64{
			{},
			{1.0 / 2},
			{0, 1.0 / 2},
			{0, 0, 1},
			{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6},
		},
		B: []float64{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6},
		C: []float64{0, 1.0 / 2, 1.0 / 2, 1, 1},
		BI: [][]float64{
			{1, -3.0 / 2, 2.0 / 3},
			{0, 1, -2.0 / 3},
			{0, 1, -2.0 / 3},
			{0, 1.0 / 2, -1.0 / 3},
			{0, -1, 1},
		},
	})

	// Bogacki-Shampine 3(2). The fourth stage sits at the step endpoint
	// and serves both the embedded second-order estimate and the cubic
	// interpolant.
	register(&Tableau{
		Name:        "rk23",
		Stages:      4,
		Order:       3,
		DenseOrder:  3,
		Adaptive:    true,
		Interpolate: true,
		A: [][]float64{
			{},
			{1.0 / 2},
			{0, 3.0 / 4},
			{2.0 / 9, 1.0 / 3, 4.0 / 9},
		},
		B: []float64{2.0 / 9, 1.0 / 3, 4.0 / 9, 0},
		C: []float64{0, 1.0 / 2, 3.0 / 4, 1},
		E: []float64{5.0 / 72, -1.0 / 12, -1.0 / 9, 1.0 / 8},
		BI: [][]float64{
			{1, -4.0 / 3, 5.0 / 9},
			{0, 1, -2.0 / 3},
			{0, 4.0 / 3, -8.0 / 9},
			{0, -1, 1},
		},
	})

	// Dormand-Prince 5(4). The seventh stage repeats the solution
	// weights (FSAL), so it evaluates at (t+dt, y_new); it carries zero
	// solution weight but enters the error estimate and the quartic
	// interpolant.
	register(&Tableau{
		Name:        "rk45",
		Stages:      7,
		Order:       5,
		DenseOrder:  4,
		Adaptive:    true,
		Interpolate: true,
		A: [][]float64{
			{},
			{1.0 / 5},
			{3.0 / 40, 9.0 / 40},
			{44.0 / 45, -56.0 / 15, 32.0 / 9},
			{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
			{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
			{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
		},
		B: []float64{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84, 0},
		C: []float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1},
		E: []float64{71.0 / 57600, 0, -71.0 / 16695, 71.0 / 1920, -17253.0 / 339200, 22.0 / 525, -1.0 / 40},
		BI: [][]float64{
			{1, -8048581381.0 / 2820520608, 8663915743.0 / 2820520608, -12715105075.0 / 11282082432},
			{0, 0, 0, 0},
			{0, 131558114200.0 / 32700410799, -68118460800.0 / 10900136933, 87487479700.0 / 32700410799},
			{0, -1754552775.0 / 470086768, 14199869525.0 / 1410260304, -10690763975.0 / 1880347072},
			{0, 127303824393.0 / 49829197408, -318862633887.0 / 49829197408, 701980252875.0 / 199316789632},
			{0, -282668133.0 / 205662961, 2019193451.0 / 616988883, -1453857185.0 / 822651844},
			{0, 40617522.0 / 29380423, -110615467.0 / 29380423, 69997945.0 / 29380423},
		},
	})
}
