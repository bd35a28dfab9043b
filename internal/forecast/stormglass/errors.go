package stormglass

// ErrorKind tells where a StormGlass call failed.
type ErrorKind int

const (
	// KindTransport means the request never got an answer from StormGlass.
	KindTransport ErrorKind = iota + 1
	// KindService means StormGlass answered with an error status.
	KindService
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindService:
		return "service"
	default:
		return "unknown"
	}
}

// Error is returned by Client for every failed fetch.
type Error struct {
	Kind    ErrorKind
	Status  int // only set for KindService
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindService:
		return "Unexpected error returned by the StormGlass service: " + e.Message
	default:
		return "Unexpected error when trying to communicate to StormGlass: " + e.Message
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}
