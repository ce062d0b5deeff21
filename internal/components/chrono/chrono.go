package chrono

import "time"

// API is the interface that anything depending on the system clock should use.
type API interface {
	Now() time.Time
}

type StandardImpl struct{}

func NewStandardImpl() StandardImpl {
	return StandardImpl{}
}

func (StandardImpl) Now() time.Time {
	return time.Now()
}

// FixedImpl always reports the same instant.
type FixedImpl struct {
	At time.Time
}

func NewFixedImpl(at time.Time) FixedImpl {
	return FixedImpl{At: at}
}

func (f FixedImpl) Now() time.Time {
	return f.At
}
