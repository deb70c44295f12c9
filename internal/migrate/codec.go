package migrate

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Codec converts one column between its SQLite form (Encode) and its
// structured PostgreSQL form (Decode).
type Codec interface {
	Decode(v any) (any, error)
	Encode(v any) (any, error)
}

var (
	JSONText Codec = jsonText{}
	Bool     Codec = boolInt{}
)

// jsonText holds JSON documents serialized into TEXT columns.
type jsonText struct{}

func (jsonText) Decode(v any) (any, error) {
	var raw []byte
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		raw = []byte(x)
	case []byte:
		raw = x
	default:
		// already structured
		return v, nil
	}
	if strings.TrimSpace(string(raw)) == "" {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (jsonText) Encode(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// boolInt holds booleans SQLite stores as 0/1 integers.
type boolInt struct{}

func (boolInt) Decode(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case bool:
		return x, nil
	case int64:
		return x != 0, nil
	case int:
		return x != 0, nil
	case float64:
		return x != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "1", "true", "t":
			return true, nil
		case "0", "false", "f", "":
			return false, nil
		}
	}
	return nil, fmt.Errorf("cannot read %v (%T) as bool", v, v)
}

func (boolInt) Encode(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case bool:
		if x {
			return int64(1), nil
		}
		return int64(0), nil
	}
	return v, nil
}
