package server

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// frameToProto converts a frame to a protobuf Struct by way of its JSON form,
// so both formats carry identical field names.
func frameToProto(frame outboundFrame) (*structpb.Struct, error) {
	data, err := json.Marshal(frame)
	if err != nil {
		return nil, err
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return structpb.NewStruct(payload)
}

// sendProtoFrame sends frame as a binary protobuf message.
func sendProtoFrame(conn *websocket.Conn, frame outboundFrame) error {
	msg, err := frameToProto(frame)
	if err != nil {
		return fmt.Errorf("convert %s: %w", frame.Type, err)
	}
	data, err := proto.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}
	return conn.WriteMessage(websocket.BinaryMessage, data)
}
