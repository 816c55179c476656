package protocol

import "math"

// EagerEncoder writes in a single pass, growing its buffer as it goes. Use it
// when walking the body twice is more expensive than reallocating.
type EagerEncoder struct {
	encoder ByteEncoder
}

func NewEagerEncoder() *EagerEncoder {
	return &EagerEncoder{}
}

func (e *EagerEncoder) Bytes() []byte {
	return e.encoder.Bytes()
}

func (e *EagerEncoder) checkBuf(i int) {
	if cap(e.encoder.b) >= len(e.encoder.b)+i {
		e.encoder.b = e.encoder.b[:len(e.encoder.b)+i]
	} else {
		newb := make([]byte, len(e.encoder.b)+i, 2*(len(e.encoder.b)+i))
		copy(newb, e.encoder.b)
		e.encoder.b = newb
	}
}

func (e *EagerEncoder) PutBool(in bool) {
	e.checkBuf(1)
	e.encoder.PutBool(in)
}

func (e *EagerEncoder) PutInt8(in int8) {
	e.checkBuf(1)
	e.encoder.PutInt8(in)
}

func (e *EagerEncoder) PutInt16(in int16) {
	e.checkBuf(2)
	e.encoder.PutInt16(in)
}

func (e *EagerEncoder) PutInt32(in int32) {
	e.checkBuf(4)
	e.encoder.PutInt32(in)
}

func (e *EagerEncoder) PutInt64(in int64) {
	e.checkBuf(8)
	e.encoder.PutInt64(in)
}

func (e *EagerEncoder) PutArrayLength(in int) error {
	e.checkBuf(4)
	return e.encoder.PutArrayLength(in)
}

func (e *EagerEncoder) PutRawBytes(in []byte) error {
	if len(in) > math.MaxInt32 {
		return ErrInvalidByteSliceLength
	}
	e.checkBuf(len(in))
	return e.encoder.PutRawBytes(in)
}

func (e *EagerEncoder) PutBytes(in []byte) error {
	if len(in) > math.MaxInt32 {
		return ErrInvalidByteSliceLength
	}
	e.checkBuf(4 + len(in))
	return e.encoder.PutBytes(in)
}

func (e *EagerEncoder) PutString(in string) error {
	if len(in) > math.MaxInt16 {
		return ErrInvalidStringLength
	}
	e.checkBuf(2 + len(in))
	return e.encoder.PutString(in)
}

func (e *EagerEncoder) PutNullableString(in *string) error {
	if in == nil {
		e.checkBuf(2)
		return e.encoder.PutNullableString(in)
	}
	return e.PutString(*in)
}

func (e *EagerEncoder) Push(pe PushEncoder) {
	e.checkBuf(pe.ReserveSize())
	e.encoder.Push(pe)
}

func (e *EagerEncoder) Pop() error {
	return e.encoder.Pop()
}
