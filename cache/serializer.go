package cache

import (
	"github.com/bytedance/sonic"
)

// Serializer converts values to and from bytes for event sinks.
type Serializer interface {
	Serialize(v interface{}) ([]byte, error)
	Deserialize(data []byte, v interface{}) error
}

// SonicSerializer implements Serializer using the Sonic JSON library
type SonicSerializer struct {
	api sonic.API
}

// NewSonicSerializer creates a new Sonic-based serializer
func NewSonicSerializer() *SonicSerializer {
	return &SonicSerializer{
		api: sonic.ConfigDefault,
	}
}

// Serialize converts a value to JSON bytes
func (s *SonicSerializer) Serialize(v interface{}) ([]byte, error) {
	return s.api.Marshal(v)
}

// Deserialize converts JSON bytes back to a value
func (s *SonicSerializer) Deserialize(data []byte, v interface{}) error {
	return s.api.Unmarshal(data, v)
}
