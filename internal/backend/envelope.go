package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// decodeEnvelope normalizes the backend's two response styles,
// {"success": true, ...} and {"status": "success", ...}, and returns the
// first payload field present among fields. A nil payload with a nil error
// means the envelope was ok but carried none of the fields.
func decodeEnvelope(body []byte, fields ...string) (json.RawMessage, error) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if !envelopeOK(env) {
		msg := firstString(env, "message", "error")
		if msg == "" {
			msg = "request rejected"
		}
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, msg)
	}

	for _, f := range fields {
		if raw, ok := env[f]; ok && !isNull(raw) {
			return raw, nil
		}
	}
	return nil, nil
}

func envelopeOK(env map[string]json.RawMessage) bool {
	if raw, ok := env["success"]; ok {
		var b bool
		if json.Unmarshal(raw, &b) == nil {
			return b
		}
		var n int
		if json.Unmarshal(raw, &n) == nil {
			return n == 1
		}
	}
	return strings.EqualFold(firstString(env, "status"), "success")
}

func firstString(env map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		var s string
		if raw, ok := env[k]; ok && json.Unmarshal(raw, &s) == nil && s != "" {
			return s
		}
	}
	return ""
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// decodeList decodes an array payload. Anything that is not an array yields
// an empty list and a warning.
func decodeList[T any](raw json.RawMessage, logger *zap.Logger, what string) []T {
	out := []T{}
	if raw == nil {
		logger.Warn("payload missing, using empty list", zap.String("payload", what))
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		logger.Warn("malformed payload, using empty list", zap.String("payload", what), zap.Error(err))
		return []T{}
	}
	return out
}

// count accepts counters sent as numbers or numeric strings.
type count int

func (c *count) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*c = 0
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		i, err := strconv.Atoi(n.String())
		if err != nil {
			return err
		}
		*c = count(i)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*c = count(i)
	return nil
}

type rawSummary struct {
	Views    count `json:"views"`
	Likes    count `json:"likes"`
	Comments count `json:"comments"`
	Shares   count `json:"shares"`
}
