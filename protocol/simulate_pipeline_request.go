package protocol

// SimulatePipelineRequest asks the server to run a pipeline over the documents
// in Source without indexing anything.
//
// Two layouts exist. From SimulatePipelineContentTypeVersion on:
//
//	id       bool present, string
//	type     int8 content type ordinal
//	source   int32 length, bytes
//	verbose  bool present, bool
//
// Older versions have no content type (the source is always JSON) and send
// verbose as a plain bool:
//
//	id       bool present, string
//	source   int32 length, bytes
//	verbose  bool
type SimulatePipelineRequest struct {
	ID          *string
	Source      []byte
	ContentType ContentType
	Verbose     OptionalBool
}

type requestFormat int8

const (
	legacyFormat requestFormat = iota
	contentTypeFormat
)

func simulateFormat(version int16) requestFormat {
	if version >= SimulatePipelineContentTypeVersion {
		return contentTypeFormat
	}
	return legacyFormat
}

func (r *SimulatePipelineRequest) Encode(e PacketEncoder, version int16) error {
	if simulateFormat(version) == legacyFormat {
		return r.encodeLegacy(e, version)
	}
	return r.encode(e, version)
}

func (r *SimulatePipelineRequest) encode(e PacketEncoder, version int16) error {
	if err := putOptionalString(e, r.ID); err != nil {
		return &EncodingError{Field: "id", Version: version, Err: err}
	}
	if !r.ContentType.Valid() {
		return &EncodingError{Field: "content type", Version: version, Err: ErrUnknownContentType}
	}
	e.PutInt8(int8(r.ContentType))
	if err := e.PutBytes(nonNil(r.Source)); err != nil {
		return &EncodingError{Field: "source", Version: version, Err: err}
	}
	e.PutBool(r.Verbose.IsSet())
	if r.Verbose.IsSet() {
		e.PutBool(r.Verbose.Value(false))
	}
	return nil
}

func (r *SimulatePipelineRequest) encodeLegacy(e PacketEncoder, version int16) error {
	if r.ContentType != JSON {
		return &EncodingError{Field: "content type", Version: version, Err: ErrContentTypeNotSupported}
	}
	if err := putOptionalString(e, r.ID); err != nil {
		return &EncodingError{Field: "id", Version: version, Err: err}
	}
	if err := e.PutBytes(nonNil(r.Source)); err != nil {
		return &EncodingError{Field: "source", Version: version, Err: err}
	}
	e.PutBool(r.Verbose.OrFalse())
	return nil
}

// Decode reads a request written at version. r is only modified when the whole
// record decodes.
func (r *SimulatePipelineRequest) Decode(d PacketDecoder, version int16) error {
	var (
		req SimulatePipelineRequest
		err error
	)
	if simulateFormat(version) == legacyFormat {
		err = req.decodeLegacy(d, version)
	} else {
		err = req.decode(d, version)
	}
	if err != nil {
		return err
	}
	*r = req
	return nil
}

func (r *SimulatePipelineRequest) decode(d PacketDecoder, version int16) (err error) {
	if r.ID, err = optionalString(d); err != nil {
		return &DecodingError{Field: "id", Version: version, Err: err}
	}
	ct, err := d.Int8()
	if err != nil {
		return &DecodingError{Field: "content type", Version: version, Err: err}
	}
	if r.ContentType = ContentType(ct); !r.ContentType.Valid() {
		return &DecodingError{Field: "content type", Version: version, Err: ErrUnknownContentType}
	}
	if r.Source, err = source(d); err != nil {
		return &DecodingError{Field: "source", Version: version, Err: err}
	}
	present, err := d.Bool()
	if err != nil {
		return &DecodingError{Field: "verbose", Version: version, Err: err}
	}
	if present {
		verbose, err := d.Bool()
		if err != nil {
			return &DecodingError{Field: "verbose", Version: version, Err: err}
		}
		r.Verbose = NewOptionalBool(verbose)
	}
	return nil
}

func (r *SimulatePipelineRequest) decodeLegacy(d PacketDecoder, version int16) (err error) {
	if r.ID, err = optionalString(d); err != nil {
		return &DecodingError{Field: "id", Version: version, Err: err}
	}
	if r.Source, err = source(d); err != nil {
		return &DecodingError{Field: "source", Version: version, Err: err}
	}
	r.ContentType = JSON
	verbose, err := d.Bool()
	if err != nil {
		return &DecodingError{Field: "verbose", Version: version, Err: err}
	}
	r.Verbose = NewOptionalBool(verbose)
	return nil
}

func (r *SimulatePipelineRequest) Key() int16 {
	return SimulatePipelineKey
}

func putOptionalString(e PacketEncoder, s *string) error {
	e.PutBool(s != nil)
	if s == nil {
		return nil
	}
	return e.PutString(*s)
}

func optionalString(d PacketDecoder) (*string, error) {
	present, err := d.Bool()
	if err != nil || !present {
		return nil, err
	}
	// present, so a null string is corrupt
	s, err := d.NullableString()
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrInvalidStringLength
	}
	return s, nil
}

// source reads the request body. A nil body is never written, so -1 is corrupt.
func source(d PacketDecoder) ([]byte, error) {
	b, err := d.Bytes()
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrInvalidByteSliceLength
	}
	return b, nil
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
