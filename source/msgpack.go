package source

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

func unmarshalMsgPack(data []byte) (any, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetMapDecoder(func(d *msgpack.Decoder) (any, error) {
		return d.DecodeUntypedMap()
	})
	v, err := dec.DecodeInterface()
	if err != nil {
		return nil, fmt.Errorf("source: msgpack: %w", err)
	}
	return normalize(v), nil
}

func marshalMsgPack(v any) ([]byte, error) {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("source: msgpack: %w", err)
	}
	return b, nil
}
