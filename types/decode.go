// Package types holds decoding helpers shared by the ingest surfaces.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/motionlog/motiond/types/fix"
	"github.com/paulmach/orb/geojson"
	"github.com/tidwall/gjson"
)

var ErrDecodeFixes = fmt.Errorf("could not decode as geojson fc or feature array or ndjson features")

// DecodeFixesShotgun is a serial collection of handy-bandy attempts
// to turn input data into a slice of fixes, which is useful for a
// legacy-supporting API. Android clients post a GeoJSON
// FeatureCollection, iOS clients post a bare JSON array of features,
// and the batch uploaders post NDJSON.
func DecodeFixesShotgun(data []byte) (out []*fix.Fix, err error) {

	// Is it a geojson.FeatureCollection object?
	// https://datatracker.ietf.org/doc/html/rfc7946#section-3.3
	// > A FeatureCollection object has a member with the name "features".
	if res := gjson.GetBytes(data, "features"); res.Exists() {
		gjfc := geojson.NewFeatureCollection()
		if err := gjfc.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		for _, f := range gjfc.Features {
			ff := fix.Fix(*f)
			out = append(out, &ff)
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("empty feature collection")
		}
		return out, nil
	}

	parsed := gjson.ParseBytes(data)
	if parsed.IsArray() {
		arr := parsed.Array()
		if len(arr) == 0 {
			return nil, fmt.Errorf("empty set")
		}
		for _, el := range arr {
			if !el.IsObject() {
				return nil, fmt.Errorf("non-object element in array")
			}
			f := &fix.Fix{}
			if err := json.Unmarshal([]byte(el.Raw), f); err != nil {
				return nil, err
			}
			out = append(out, f)
		}
		return out, nil
	}

	// NDJSON, one feature per line.
	dec := json.NewDecoder(bytes.NewReader(data))
	for {
		f := &fix.Fix{}
		err := dec.Decode(f)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ErrDecodeFixes
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, ErrDecodeFixes
	}
	return out, nil
}
