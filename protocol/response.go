package protocol

type ResponseBody interface {
	VersionedEncoder
	VersionedDecoder
}

// Response is a full frame sent back to clients. Body is encoded at
// APIVersion, which the server copies from the request header.
type Response struct {
	CorrelationID int32
	APIVersion    int16
	Body          ResponseBody
}

func (r *Response) Encode(pe PacketEncoder) (err error) {
	pe.Push(&SizeField{})
	pe.PutInt32(r.CorrelationID)
	if err = r.Body.Encode(pe, r.APIVersion); err != nil {
		return err
	}
	return pe.Pop()
}

// Decode reads a frame including its size prefix. Body must be set to the
// expected response type.
func (r *Response) Decode(pd PacketDecoder, version int16) (err error) {
	r.APIVersion = version
	if err = pd.Push(&SizeField{}); err != nil {
		return err
	}
	if r.CorrelationID, err = pd.Int32(); err != nil {
		return err
	}
	if r.Body != nil {
		if err = r.Body.Decode(pd, version); err != nil {
			return err
		}
	}
	return pd.Pop()
}
