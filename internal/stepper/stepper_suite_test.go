package stepper_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestStepperSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Stepper Suite")
}
