package protocol

import "fmt"

type RequestHeader struct {
	// Size of the request
	Size int32
	// ID of the API (e.g. simulate pipeline, api versions)
	APIKey int16
	// Version of the API to use
	APIVersion int16
	// User defined ID to correlate requests between server and client
	CorrelationID int32
	// Name of the client sending the request
	ClientID string
}

func (r *RequestHeader) Encode(e PacketEncoder) error {
	e.PutInt32(r.Size)
	e.PutInt16(r.APIKey)
	e.PutInt16(r.APIVersion)
	e.PutInt32(r.CorrelationID)
	return e.PutString(r.ClientID)
}

func (r *RequestHeader) Decode(d PacketDecoder) error {
	var err error
	r.Size, err = d.Int32()
	if err != nil {
		return err
	}
	r.APIKey, err = d.Int16()
	if err != nil {
		return err
	}
	r.APIVersion, err = d.Int16()
	if err != nil {
		return err
	}
	r.CorrelationID, err = d.Int32()
	if err != nil {
		return err
	}
	r.ClientID, err = d.String()
	return err
}

func (r *RequestHeader) String() string {
	return fmt.Sprintf(
		"correlation id: %d, api key: %d, api version: %d, client: %s, size: %d",
		r.CorrelationID,
		r.APIKey,
		r.APIVersion,
		r.ClientID,
		r.Size,
	)
}
