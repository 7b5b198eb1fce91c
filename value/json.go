package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

var ErrTrailingData = errors.New("value: unexpected data after the JSON document")

var ErrNonFiniteFloat = errors.New("value: NaN and infinite floats cannot be encoded as JSON")

// String renders the node as compact JSON. Undefined renders as null.
func (n Node) String() string {
	b, err := n.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<invalid: %v>", err)
	}

	return string(b)
}

// MarshalJSON encodes the node with object keys in insertion order.
func (n Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.writeJSON(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (n Node) writeJSON(buf *bytes.Buffer) error {
	switch n.kind {
	case KindUndefined:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(n.b))
	case KindInt:
		buf.WriteString(strconv.FormatInt(n.i, 10))
	case KindFloat:
		if math.IsNaN(n.f) || math.IsInf(n.f, 0) {
			return ErrNonFiniteFloat
		}
		buf.WriteString(strconv.FormatFloat(n.f, 'g', -1, 64))
	case KindString:
		return writeJSONString(buf, n.s)
	case KindList:
		buf.WriteByte('[')
		for i, item := range n.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, p := range n.props {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, p.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := p.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}

	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)

	return nil
}

// UnmarshalJSON decodes JSON keeping the order of object keys. JSON null decodes to undefined.
// Numbers without a fraction or exponent that fit in an int64 decode as integers.
func (n *Node) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeJSON(dec)
	if err != nil {
		return err
	}
	if _, err = dec.Token(); !errors.Is(err, io.EOF) {
		return ErrTrailingData
	}
	*n = v

	return nil
}

// ParseJSON decodes a JSON document into a Node.
func ParseJSON(data []byte) (Node, error) {
	var n Node
	if err := n.UnmarshalJSON(data); err != nil {
		return Node{}, err
	}

	return n, nil
}

func decodeJSON(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return Node{}, err
	}

	switch t := tok.(type) {
	case nil:
		return Node{}, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		if i, err := strconv.ParseInt(t.String(), 10, 64); err == nil {
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Node{}, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}

		return Float(f), nil
	case json.Delim:
		switch t {
		case '[':
			items := []Node{}
			for dec.More() {
				item, err := decodeJSON(dec)
				if err != nil {
					return Node{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Node{}, err
			}

			return Node{kind: KindList, items: items}, nil
		case '{':
			obj := Object()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Node{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Node{}, fmt.Errorf("unexpected object key %v", keyTok)
				}
				v, err := decodeJSON(dec)
				if err != nil {
					return Node{}, err
				}
				obj = obj.With(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return Node{}, err
			}

			return obj, nil
		}
	}

	return Node{}, fmt.Errorf("unexpected JSON token %v", tok)
}
