package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// Use it when the manifest must be readable by tools that only speak
// encoding/json semantics. Both built-in codecs produce compatible output
// for the manifest types in this module.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the codec used for new manifests.
var Default Codec = GoJSON{}
