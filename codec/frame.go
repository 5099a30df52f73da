package codec

import (
	"encoding/json"
)

// Frame is the wire envelope used on both socket protocols.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type IFrame interface {
	GetType() string
	GetData() json.RawMessage
}

func (f *Frame) GetType() string {
	return f.Type
}

func (f *Frame) GetData() json.RawMessage {
	return f.Data
}

type ICodec interface {
	Decode(data []byte) (IFrame, error)
	Encode(frame IFrame) ([]byte, error)
}

type JsonCodec struct {
}

func NewJsonCodec() ICodec {
	return &JsonCodec{}
}

func (c *JsonCodec) Decode(data []byte) (IFrame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *JsonCodec) Encode(frame IFrame) ([]byte, error) {
	return json.Marshal(frame)
}

// NewFrame builds a Frame with data marshalled as the payload.
func NewFrame[T any](frameType string, data T) (*Frame, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Frame{Type: frameType, Data: payload}, nil
}
