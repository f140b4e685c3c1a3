package node

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// reservedParameters is the typed shape of the three reserved
// parameter names (process_gid, process_uid, n_messages); a nil field
// means that parameter was not present in the batch being applied.
type reservedParameters struct {
	ProcessGID *int `mapstructure:"process_gid"`
	ProcessUID *int `mapstructure:"process_uid"`
	NMessages  *int `mapstructure:"n_messages"`
}

// decodeReservedParameters decodes the reserved subset of a raw
// name->value parameter map into a reservedParameters struct ahead of
// validation, using mapstructure's weakly-typed mode to tolerate the
// float64 a JSON-decoded request body produces for any bare number.
func decodeReservedParameters(raw map[string]interface{}) (reservedParameters, error) {
	var out reservedParameters

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return out, fmt.Errorf("node: building reserved-parameter decoder: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return out, fmt.Errorf("node: decoding reserved parameters: %w", err)
	}

	return out, nil
}
