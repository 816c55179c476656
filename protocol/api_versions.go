package protocol

import "fmt"

// APIVersions is the table of versions this build speaks.
var APIVersions = []APIVersion{
	{APIKey: SimulatePipelineKey, MinVersion: SimulatePipelineMinVersion, MaxVersion: SimulatePipelineMaxVersion},
	{APIKey: APIVersionsKey, MinVersion: APIVersionsMinVersion, MaxVersion: APIVersionsMaxVersion},
}

type APIVersion struct {
	APIKey     int16
	MinVersion int16
	MaxVersion int16
}

// Supports reports whether version falls in the range.
func (v APIVersion) Supports(version int16) bool {
	return version >= v.MinVersion && version <= v.MaxVersion
}

// LookupAPIVersion finds key in versions.
func LookupAPIVersion(versions []APIVersion, key int16) (APIVersion, bool) {
	for _, v := range versions {
		if v.APIKey == key {
			return v, true
		}
	}
	return APIVersion{}, false
}

// NegotiateVersion picks the highest version both ranges share.
func NegotiateVersion(local, remote APIVersion) (int16, error) {
	max := local.MaxVersion
	if remote.MaxVersion < max {
		max = remote.MaxVersion
	}
	min := local.MinVersion
	if remote.MinVersion > min {
		min = remote.MinVersion
	}
	if max < min {
		return -1, fmt.Errorf("api key %d: local %d-%d, remote %d-%d: %w",
			local.APIKey, local.MinVersion, local.MaxVersion, remote.MinVersion, remote.MaxVersion, ErrUnsupportedVersion)
	}
	return max, nil
}

type APIVersionsRequest struct{}

func (c *APIVersionsRequest) Encode(_ PacketEncoder, _ int16) error {
	return nil
}

func (c *APIVersionsRequest) Decode(_ PacketDecoder, _ int16) error {
	return nil
}

func (c *APIVersionsRequest) Key() int16 {
	return APIVersionsKey
}

type APIVersionsResponse struct {
	ErrorCode   int16
	APIVersions []APIVersion
}

func (c *APIVersionsResponse) Encode(e PacketEncoder, _ int16) error {
	e.PutInt16(c.ErrorCode)
	if err := e.PutArrayLength(len(c.APIVersions)); err != nil {
		return err
	}
	for _, av := range c.APIVersions {
		e.PutInt16(av.APIKey)
		e.PutInt16(av.MinVersion)
		e.PutInt16(av.MaxVersion)
	}
	return nil
}

func (c *APIVersionsResponse) Decode(d PacketDecoder, _ int16) (err error) {
	if c.ErrorCode, err = d.Int16(); err != nil {
		return err
	}
	l, err := d.ArrayLength()
	if err != nil {
		return err
	}
	c.APIVersions = make([]APIVersion, l)
	for i := range c.APIVersions {
		key, err := d.Int16()
		if err != nil {
			return err
		}

		minVersion, err := d.Int16()
		if err != nil {
			return err
		}

		maxVersion, err := d.Int16()
		if err != nil {
			return err
		}

		c.APIVersions[i] = APIVersion{
			APIKey:     key,
			MinVersion: minVersion,
			MaxVersion: maxVersion,
		}
	}
	return nil
}
