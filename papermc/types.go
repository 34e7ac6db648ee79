package papermc

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// projectResponse mirrors GET /projects/{project}.
type projectResponse struct {
	ProjectID string   `json:"project_id"`
	Versions  []string `json:"versions"`
}

// versionResponse mirrors GET /projects/{project}/versions/{version}.
type versionResponse struct {
	Version string  `json:"version"`
	Builds  []Build `json:"builds"`
}

// Build is one upstream build of a version. Channel is the raw
// channel label published by the API ("default" or
// "experimental"); it is empty when the API returned the build as
// a bare number.
type Build struct {
	Number  int    `json:"build"`
	Channel string `json:"channel"`
}

// HasChannel reports whether the build carries channel metadata.
func (b Build) HasChannel() bool {
	return b.Channel != ""
}

// UnmarshalJSON accepts both the object form
// {"build": 12, "channel": "default"} and the bare number form
// used by older API revisions.
func (b *Build) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)

	if len(trimmed) > 0 && trimmed[0] != '{' {
		var number int
		if err := json.Unmarshal(trimmed, &number); err != nil {
			return fmt.Errorf("decoding build number: %w", err)
		}

		*b = Build{Number: number}

		return nil
	}

	type plain Build

	var decoded plain
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return fmt.Errorf("decoding build object: %w", err)
	}

	*b = Build(decoded)

	return nil
}
