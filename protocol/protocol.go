package protocol

import (
	"encoding/binary"
	"fmt"
)

var Encoding = binary.BigEndian

func MakeInt16(b []byte) int16 {
	return int16(Encoding.Uint16(b))
}

func MakeInt32(b []byte) int32 {
	return int32(Encoding.Uint32(b))
}

func ExpectZeroSize(sz int, err error) error {
	if err == nil && sz != 0 {
		err = fmt.Errorf("reading a response left %d unread bytes", sz)
	}
	return err
}
