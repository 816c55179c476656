package protocol

import "errors"

var errSizeMismatch = errors.New("pipesim: length field invalid")

// SizeField reserves the int32 that prefixes every frame and fills it in once
// the frame's length is known.
type SizeField struct {
	StartOffset int
}

func (s *SizeField) SaveOffset(in int) {
	s.StartOffset = in
}

func (s *SizeField) ReserveSize() int {
	return 4
}

func (s *SizeField) Fill(curOffset int, buf []byte) error {
	Encoding.PutUint32(buf[s.StartOffset:], uint32(curOffset-s.StartOffset-4))
	return nil
}

func (s *SizeField) Check(curOffset int, buf []byte) error {
	if uint32(curOffset-s.StartOffset-4) != Encoding.Uint32(buf[s.StartOffset:]) {
		return errSizeMismatch
	}
	return nil
}
