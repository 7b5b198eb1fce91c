package value

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/suzuki-shunsuke/go-convmap/convmap"
)

// FromGo converts a plain Go value into a Node. Maps with interface keys (as produced by some
// YAML and msgpack decoders) are normalized first. Map keys are sorted because Go maps carry no
// order. Types that are not handled directly go through their JSON encoding.
func FromGo(v any) (Node, error) {
	normalized, err := convmap.Convert(v, nil)
	if err != nil {
		return Node{}, fmt.Errorf("normalize value: %w", err)
	}

	return fromNormalized(normalized)
}

func fromNormalized(v any) (Node, error) {
	switch t := v.(type) {
	case nil:
		return Node{}, nil
	case Node:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint32:
		return Int(int64(t)), nil
	case uint64:
		if t > math.MaxInt64 {
			return Float(float64(t)), nil
		}

		return Int(int64(t)), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case json.Number:
		return ParseJSON([]byte(t.String()))
	case []any:
		items := make([]Node, 0, len(t))
		for _, item := range t {
			n, err := fromNormalized(item)
			if err != nil {
				return Node{}, err
			}
			items = append(items, n)
		}

		return Node{kind: KindList, items: items}, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := Object()
		for _, k := range keys {
			n, err := fromNormalized(t[k])
			if err != nil {
				return Node{}, fmt.Errorf("key %q: %w", k, err)
			}
			obj = obj.With(k, n)
		}

		return obj, nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return Node{}, fmt.Errorf("unsupported value of type %T: %w", v, err)
		}

		return ParseJSON(b)
	}
}
