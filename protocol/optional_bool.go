package protocol

// OptionalBool is a boolean that may be left unset so that the receiver can
// apply its own default.
type OptionalBool int8

const (
	BoolUnset OptionalBool = iota
	BoolFalse
	BoolTrue
)

func NewOptionalBool(b bool) OptionalBool {
	if b {
		return BoolTrue
	}
	return BoolFalse
}

func (b OptionalBool) IsSet() bool {
	return b == BoolFalse || b == BoolTrue
}

// Value returns the flag, or def when it is unset.
func (b OptionalBool) Value(def bool) bool {
	if !b.IsSet() {
		return def
	}
	return b == BoolTrue
}

// OrFalse collapses an unset flag to false. Formats without a presence byte
// go through here.
func (b OptionalBool) OrFalse() bool {
	return b.Value(false)
}

func (b OptionalBool) String() string {
	switch b {
	case BoolTrue:
		return "true"
	case BoolFalse:
		return "false"
	}
	return "unset"
}
