package server

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"TrendBot/internal/model"
)

// ParsePayload decodes a form-encoded slash-command body into a Request.
// Gateways that deliver the body base64 encoded set base64Encoded.
func ParsePayload(body []byte, base64Encoded bool) (model.Request, error) {
	form, err := DecodeBody(body, base64Encoded)
	if err != nil {
		return model.Request{}, err
	}
	return parseForm(form)
}

// DecodeBody returns the form body as Slack sent and signed it.
func DecodeBody(body []byte, base64Encoded bool) ([]byte, error) {
	if !base64Encoded {
		return body, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(body)))
	if err != nil {
		return nil, fmt.Errorf("%w: body is not base64: %v", model.ErrMalformedRequest, err)
	}
	return decoded, nil
}

func parseForm(body []byte) (model.Request, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return model.Request{}, fmt.Errorf("%w: %v", model.ErrMalformedRequest, err)
	}

	req := model.Request{
		Ticker:  strings.TrimSpace(values.Get("text")),
		User:    strings.TrimSpace(values.Get("user_name")),
		Channel: strings.TrimSpace(values.Get("channel_id")),
	}
	var missing []string
	if req.Ticker == "" {
		missing = append(missing, "text")
	}
	if req.User == "" {
		missing = append(missing, "user_name")
	}
	if req.Channel == "" {
		missing = append(missing, "channel_id")
	}
	if len(missing) > 0 {
		return model.Request{}, fmt.Errorf("%w: missing %s", model.ErrMalformedRequest, strings.Join(missing, ", "))
	}
	return req, nil
}
