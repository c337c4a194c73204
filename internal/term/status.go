package term

// ReadStatus is the outcome of a single-byte read.
type ReadStatus int

const (
	// ReadOK means a byte was read.
	ReadOK ReadStatus = iota
	// ReadTimeout means no byte arrived before the timeout.
	ReadTimeout
	// ReadResize means the read was interrupted by a window resize.
	ReadResize
)

// String returns the status name.
func (s ReadStatus) String() string {
	switch s {
	case ReadOK:
		return "ok"
	case ReadTimeout:
		return "timeout"
	case ReadResize:
		return "resize"
	default:
		return "unknown"
	}
}
