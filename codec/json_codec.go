package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"duplexrpc/message"
)

// recordSeparator terminates every JSON record on the wire. A payload may
// carry several records; a payload not ending in the separator is truncated.
const recordSeparator = 0x1e

// JSONCodec encodes each protocol message as one JSON object followed by a
// 0x1E record separator. Values (arguments, items, results) travel as plain
// JSON values and decode to the usual encoding/json types.
type JSONCodec struct{}

// NewJSON returns the JSON codec.
func NewJSON() *JSONCodec {
	return &JSONCodec{}
}

func (c *JSONCodec) Name() string { return "json" }

// jsonRecord is the wire shape of a message. Item and Result stay raw during
// decoding so that a present-but-null value is distinguishable from an absent
// one.
type jsonRecord struct {
	Type        byte            `json:"type"`
	ID          string          `json:"invocationId,omitempty"`
	Target      string          `json:"target,omitempty"`
	Arguments   []any           `json:"arguments,omitempty"`
	NonBlocking bool            `json:"nonblocking,omitempty"`
	Item        json.RawMessage `json:"item,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
}

func (c *JSONCodec) ParseMessages(payload []byte) ([]message.Message, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	if payload[len(payload)-1] != recordSeparator {
		return nil, fmt.Errorf("json codec: truncated payload, missing record separator")
	}

	var msgs []message.Message
	for _, record := range bytes.Split(payload[:len(payload)-1], []byte{recordSeparator}) {
		if len(record) == 0 {
			continue
		}
		var r jsonRecord
		if err := json.Unmarshal(record, &r); err != nil {
			return nil, fmt.Errorf("json codec: decode record: %w", err)
		}
		m, err := r.toMessage()
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *m)
	}
	return msgs, nil
}

func (r *jsonRecord) toMessage() (*message.Message, error) {
	switch message.Kind(r.Type) {
	case message.KindInvocation:
		return message.NewInvocation(r.ID, r.Target, r.Arguments, r.NonBlocking), nil

	case message.KindStreamItem:
		var item any
		if len(r.Item) > 0 {
			if err := json.Unmarshal(r.Item, &item); err != nil {
				return nil, fmt.Errorf("json codec: decode item: %w", err)
			}
		}
		return message.NewStreamItem(r.ID, item), nil

	case message.KindCompletion:
		if r.Error != "" {
			return message.NewErrorCompletion(r.ID, r.Error), nil
		}
		if len(r.Result) > 0 {
			var result any
			if err := json.Unmarshal(r.Result, &result); err != nil {
				return nil, fmt.Errorf("json codec: decode result: %w", err)
			}
			return message.NewResultCompletion(r.ID, result), nil
		}
		return message.NewCompletion(r.ID), nil

	default:
		return &message.Message{Kind: message.KindUnrecognized, ID: r.ID, RawKind: r.Type}, nil
	}
}

func (c *JSONCodec) WriteMessage(m *message.Message) ([]byte, error) {
	r := jsonRecord{
		Type:        byte(m.Kind),
		ID:          m.ID,
		Target:      m.Target,
		Arguments:   m.Arguments,
		NonBlocking: m.NonBlocking,
		Error:       m.Error,
	}
	if m.Kind == message.KindStreamItem {
		raw, err := json.Marshal(m.Item)
		if err != nil {
			return nil, fmt.Errorf("json codec: encode item: %w", err)
		}
		r.Item = raw
	}
	if m.Kind == message.KindCompletion && m.HasResult {
		raw, err := json.Marshal(m.Result)
		if err != nil {
			return nil, fmt.Errorf("json codec: encode result: %w", err)
		}
		r.Result = raw
	}

	buf, err := json.Marshal(&r)
	if err != nil {
		return nil, fmt.Errorf("json codec: encode record: %w", err)
	}
	return append(buf, recordSeparator), nil
}
