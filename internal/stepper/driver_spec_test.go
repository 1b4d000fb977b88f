package stepper_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/odeflow/internal/operator"
	"github.com/san-kum/odeflow/internal/stepper"
	"github.com/san-kum/odeflow/internal/vec"
)

var _ = Describe("Driver state machine", func() {
	var s *stepper.Stepper

	BeforeEach(func() {
		var err error
		s, err = stepper.New(operator.NewDiagonal([]float64{-1}), stepper.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
	})

	Context("before initialization", func() {
		It("reports an uninitialized status", func() {
			Expect(s.Status()).To(Equal(stepper.StatusUninitialized))
		})

		It("rejects Integrate", func() {
			_, _, err := s.Integrate(1, false)
			Expect(err).To(MatchError(stepper.ErrNotInitialized))
		})

		It("rejects Evaluate", func() {
			_, err := s.Evaluate(0.5)
			Expect(err).To(MatchError(stepper.ErrNotInitialized))
		})
	})

	Context("after SetInitialValue", func() {
		BeforeEach(func() {
			s.SetInitialValue(vec.Vector{1}, 0)
		})

		It("becomes ready with a positive proposed step", func() {
			Expect(s.Status()).To(Equal(stepper.StatusReady))
			Expect(s.Stats().NextStep).To(BeNumerically(">", 0))
		})

		It("integrates and returns to ready", func() {
			tReached, y, err := s.Integrate(1, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(tReached).To(Equal(1.0))
			Expect(y[0]).To(BeNumerically("~", math.Exp(-1), 1e-5))
			Expect(s.Status()).To(Equal(stepper.StatusReady))
		})

		It("serves dense queries inside the accepted interval", func() {
			_, _, err := s.Integrate(0.5, false)
			Expect(err).NotTo(HaveOccurred())

			y, err := s.Evaluate(s.Front())
			Expect(err).NotTo(HaveOccurred())
			Expect(y[0]).To(BeNumerically("~", math.Exp(-s.Front()), 1e-5))

			_, err = s.Evaluate(s.Front() + 1)
			Expect(err).To(MatchError(stepper.ErrOutOfRangeInterpolation))
		})
	})

	Context("after exhausting the step budget", func() {
		BeforeEach(func() {
			opts := stepper.DefaultOptions()
			opts.MaxSteps = 1
			opts.FirstStep = 1e-3

			var err error
			s, err = stepper.New(operator.NewDiagonal([]float64{-1}), opts)
			Expect(err).NotTo(HaveOccurred())
			s.SetInitialValue(vec.Vector{1}, 0)

			_, _, err = s.Integrate(10, false)
			Expect(err).To(MatchError(stepper.ErrMaxStepsExceeded))
		})

		It("is terminal", func() {
			Expect(s.Status().Failed()).To(BeTrue())
			_, _, err := s.Integrate(10, false)
			Expect(err).To(MatchError(stepper.ErrNotInitialized))
		})

		It("retains the partially advanced state", func() {
			Expect(s.T()).To(BeNumerically(">=", 0))
			Expect(s.Y()[0]).To(BeNumerically("<=", 1))
		})

		It("recovers through SetInitialValue", func() {
			s.SetInitialValue(vec.Vector{1}, 0)
			Expect(s.Status()).To(Equal(stepper.StatusReady))

			_, y, err := s.Integrate(1, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(y[0]).To(BeNumerically("~", math.Exp(-1), 1e-5))
		})
	})
})
