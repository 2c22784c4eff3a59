package aggregate

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

var sumContext = apd.BaseContext.WithPrecision(34)

// volumeSum accumulates float volumes exactly, so a sum does not depend on
// row order. Each float enters at its shortest decimal representation.
// The first failure sticks and is reported by Float64.
type volumeSum struct {
	value apd.Decimal
	err   error
}

func (s *volumeSum) Add(v float64) {
	if s.err != nil {
		return
	}

	var d apd.Decimal
	if _, err := d.SetFloat64(v); err != nil {
		s.err = fmt.Errorf("volume %v is not a decimal: %w", v, err)
		return
	}
	if d.Form != apd.Finite {
		s.err = fmt.Errorf("volume %v is not finite", v)
		return
	}
	if _, err := sumContext.Add(&s.value, &s.value, &d); err != nil {
		s.err = fmt.Errorf("failed to add volume %v: %w", v, err)
	}
}

func (s *volumeSum) Float64() (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.value.Float64()
}
