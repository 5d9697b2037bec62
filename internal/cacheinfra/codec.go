package cacheinfra

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec converts cache values to and from the bytes stored in Redis.
type Codec[T any] interface {
	Marshal(value T) ([]byte, error)
	Unmarshal(data []byte) (T, error)
}

// NewCodec returns the codec registered under name. An empty name selects msgpack.
func NewCodec[T any](name string) (Codec[T], error) {
	switch name {
	case "", CodecMsgpack:
		return msgpackCodec[T]{}, nil
	case CodecJSON:
		return jsonCodec[T]{}, nil
	default:
		return nil, &ConfigError{Field: "Redis.Codec", Message: "unknown codec " + name}
	}
}

type msgpackCodec[T any] struct{}

func (msgpackCodec[T]) Marshal(value T) ([]byte, error) {
	return msgpack.Marshal(value)
}

func (msgpackCodec[T]) Unmarshal(data []byte) (T, error) {
	var value T
	err := msgpack.Unmarshal(data, &value)
	return value, err
}

type jsonCodec[T any] struct{}

func (jsonCodec[T]) Marshal(value T) ([]byte, error) {
	return json.Marshal(value)
}

func (jsonCodec[T]) Unmarshal(data []byte) (T, error) {
	var value T
	err := json.Unmarshal(data, &value)
	return value, err
}
