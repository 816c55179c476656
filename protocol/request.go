package protocol

import "fmt"

type Body interface {
	VersionedEncoder
	VersionedDecoder
	Key() int16
}

// Request is a full frame sent by clients: size, header, then the body encoded
// at APIVersion.
type Request struct {
	CorrelationID int32
	ClientID      string
	APIVersion    int16
	Body          Body
}

func (r *Request) Encode(pe PacketEncoder) (err error) {
	pe.Push(&SizeField{})
	pe.PutInt16(r.Body.Key())
	pe.PutInt16(r.APIVersion)
	pe.PutInt32(r.CorrelationID)
	if err = pe.PutString(r.ClientID); err != nil {
		return err
	}
	if err = r.Body.Encode(pe, r.APIVersion); err != nil {
		return err
	}
	return pe.Pop()
}

// Decode reads a whole frame, size prefix included, and checks that the body
// used up exactly the bytes the prefix announced.
func (r *Request) Decode(pd PacketDecoder) (err error) {
	if err = pd.Push(&SizeField{}); err != nil {
		return err
	}
	var key int16
	if key, err = pd.Int16(); err != nil {
		return err
	}
	if r.APIVersion, err = pd.Int16(); err != nil {
		return err
	}
	if r.CorrelationID, err = pd.Int32(); err != nil {
		return err
	}
	if r.ClientID, err = pd.String(); err != nil {
		return err
	}
	r.Body = AllocateBody(key)
	if r.Body == nil {
		return fmt.Errorf("unknown request key %d: %w", key, ErrUnknownAPIKey)
	}
	if err = r.Body.Decode(pd, r.APIVersion); err != nil {
		return err
	}
	return pd.Pop()
}

// AllocateBody returns an empty request body for key, or nil.
func AllocateBody(key int16) Body {
	switch key {
	case SimulatePipelineKey:
		return &SimulatePipelineRequest{}
	case APIVersionsKey:
		return &APIVersionsRequest{}
	}
	return nil
}
