package protocol

// SimulatePipelineResponse carries the documents produced by a simulation,
// each encoded as JSON.
type SimulatePipelineResponse struct {
	ErrorCode  int16
	PipelineID *string
	Verbose    bool
	Documents  [][]byte
}

func (r *SimulatePipelineResponse) Encode(e PacketEncoder, _ int16) (err error) {
	e.PutInt16(r.ErrorCode)
	if err = e.PutNullableString(r.PipelineID); err != nil {
		return err
	}
	e.PutBool(r.Verbose)
	if err = e.PutArrayLength(len(r.Documents)); err != nil {
		return err
	}
	for _, doc := range r.Documents {
		if err = e.PutBytes(doc); err != nil {
			return err
		}
	}
	return nil
}

func (r *SimulatePipelineResponse) Decode(d PacketDecoder, _ int16) (err error) {
	if r.ErrorCode, err = d.Int16(); err != nil {
		return err
	}
	if r.PipelineID, err = d.NullableString(); err != nil {
		return err
	}
	if r.Verbose, err = d.Bool(); err != nil {
		return err
	}
	n, err := d.ArrayLength()
	if err != nil {
		return err
	}
	if n == 0 {
		r.Documents = nil
		return nil
	}
	r.Documents = make([][]byte, n)
	for i := range r.Documents {
		if r.Documents[i], err = d.Bytes(); err != nil {
			return err
		}
	}
	return nil
}

// Err returns the response's error code as an error, or nil.
func (r *SimulatePipelineResponse) Err() error {
	if r.ErrorCode == ErrNone.Code() {
		return nil
	}
	return Error(r.ErrorCode)
}
