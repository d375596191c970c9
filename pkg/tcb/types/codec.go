package types

import (
	"bytes"
	"encoding/gob"
)

// EncodeGraphMessage serializes a GraphMessage for the wire, the same role
// the Rust source's bincode::serialize plays before handing bytes to a
// sender thread.
func EncodeGraphMessage(msg GraphMessage) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(msg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeGraphMessage is the inverse of EncodeGraphMessage.
func DecodeGraphMessage(body []byte) (GraphMessage, error) {
	var msg GraphMessage
	err := gob.NewDecoder(bytes.NewReader(body)).Decode(&msg)
	return msg, err
}

// EncodeVVMessage serializes a VVMessage for the wire.
func EncodeVVMessage(msg VVMessage) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(msg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeVVMessage is the inverse of EncodeVVMessage.
func DecodeVVMessage(body []byte) (VVMessage, error) {
	var msg VVMessage
	err := gob.NewDecoder(bytes.NewReader(body)).Decode(&msg)
	return msg, err
}
