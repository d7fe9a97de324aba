package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"message-board/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// contentRule counts characters, not bytes.
var contentRule = fmt.Sprintf("required,max=%d", MaxContentLength)

// WriteRequest is one of the two POST payload shapes.
// The set of implementations is closed: CreateMessageRequest and ReactRequest.
type WriteRequest interface {
	writeRequest()
}

// CreateMessageRequest asks for a new message.
type CreateMessageRequest struct {
	Content string  `json:"content"`
	Avatar  *string `json:"avatar,omitempty"`
}

// ReactRequest increments one reaction counter of an existing message.
type ReactRequest struct {
	MessageID string `json:"messageId" validate:"required"`
	Timestamp int64  `json:"timestamp"`
	Reaction  string `json:"reaction" validate:"required"`
}

func (CreateMessageRequest) writeRequest() {}
func (ReactRequest) writeRequest()         {}

// Validate checks the content rules of the create path.
func (r CreateMessageRequest) Validate() error {
	if err := validate.Var(r.Content, contentRule); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidContent, err)
	}
	return nil
}

// DecodeWriteRequest resolves the payload shape before any business logic runs.
// A body carrying both "messageId" and "reaction" is a reaction, anything else is a creation.
func DecodeWriteRequest(body []byte) (WriteRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidBody, err)
	}

	_, hasMessageID := fields["messageId"]
	_, hasReaction := fields["reaction"]
	if hasMessageID && hasReaction {
		return decodeReact(fields)
	}
	return decodeCreate(fields)
}

func decodeCreate(fields map[string]json.RawMessage) (CreateMessageRequest, error) {
	var req CreateMessageRequest
	if raw, ok := fields["content"]; ok {
		if err := json.Unmarshal(raw, &req.Content); err != nil {
			return CreateMessageRequest{}, fmt.Errorf("%w: content must be a string", errors.ErrInvalidContent)
		}
	}
	if raw, ok := fields["avatar"]; ok && !isNull(raw) {
		var avatar string
		if err := json.Unmarshal(raw, &avatar); err != nil {
			return CreateMessageRequest{}, fmt.Errorf("%w: avatar must be a string", errors.ErrInvalidBody)
		}
		req.Avatar = &avatar
	}
	return req, nil
}

func decodeReact(fields map[string]json.RawMessage) (ReactRequest, error) {
	var req ReactRequest
	if err := json.Unmarshal(fields["messageId"], &req.MessageID); err != nil {
		return ReactRequest{}, fmt.Errorf("%w: messageId must be a string", errors.ErrInvalidBody)
	}
	if err := json.Unmarshal(fields["reaction"], &req.Reaction); err != nil {
		return ReactRequest{}, fmt.Errorf("%w: reaction must be a string", errors.ErrInvalidBody)
	}

	raw, ok := fields["timestamp"]
	if !ok || isNull(raw) {
		return ReactRequest{}, fmt.Errorf("%w: timestamp is required", errors.ErrInvalidBody)
	}
	var number json.Number
	if err := json.Unmarshal(raw, &number); err != nil {
		return ReactRequest{}, fmt.Errorf("%w: timestamp must be a number", errors.ErrInvalidBody)
	}
	timestamp, err := wholeNumber(number)
	if err != nil {
		return ReactRequest{}, fmt.Errorf("%w: %v", errors.ErrInvalidBody, err)
	}
	req.Timestamp = timestamp

	if err = validate.Struct(req); err != nil {
		return ReactRequest{}, fmt.Errorf("%w: %v", errors.ErrInvalidBody, err)
	}
	return req, nil
}

// wholeNumber accepts 1700000000000 as well as 1.7e12, but not 12.5.
// float64(math.MaxInt64) rounds up to 2^63, which no int64 holds, hence >=.
func wholeNumber(n json.Number) (int64, error) {
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("timestamp %s is not an integer", n)
	}
	return int64(f), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
