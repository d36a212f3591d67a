package grpc

import (
	"encoding/json"
)

// CodecName - подтип содержимого gRPC (application/grpc+json)
const CodecName = "json"

// jsonCodec передаёт сообщения как JSON. *json.RawMessage проходит без
// проверки, чтобы тело запроса разбиралось тем же парсером, что и в HTTP.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	if raw, ok := v.(*json.RawMessage); ok {
		return *raw, nil
	}
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	if raw, ok := v.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return CodecName
}
