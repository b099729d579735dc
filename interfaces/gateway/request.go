package gateway

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
)

// Request is the subset of an API Gateway proxy event the search consumes.
// Body stays raw because callers send it either as a JSON-encoded string
// (API Gateway) or as an already parsed object (direct invocation).
type Request struct {
	QueryStringParameters QueryParams     `json:"queryStringParameters,omitempty"`
	Body                  json.RawMessage `json:"body,omitempty"`
	IsBase64Encoded       bool            `json:"isBase64Encoded,omitempty"`
	RequestContext        RequestContext  `json:"requestContext"`
}

// QueryParams holds query string values. Direct invocations may send
// values that are not strings; those are dropped on decode, the same way a
// non-string body product is ignored.
type QueryParams map[string]string

// UnmarshalJSON implements json.Unmarshaler.
func (p *QueryParams) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		*p = nil
		return nil
	}

	params := make(QueryParams, len(raw))
	for key, value := range raw {
		var text string
		if err := json.Unmarshal(value, &text); err == nil {
			params[key] = text
		}
	}
	*p = params
	return nil
}

// DecodeRequest decodes a raw proxy event.
func DecodeRequest(event []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(event, &req); err != nil {
		return Request{}, err
	}
	return req, nil
}

// RequestContext carries the gateway's request metadata.
type RequestContext struct {
	RequestID string `json:"requestId,omitempty"`
}

// NewRequest builds a Request whose body is a JSON string, the way API
// Gateway delivers it.
func NewRequest(params map[string]string, body string) Request {
	req := Request{QueryStringParameters: params}
	if body != "" {
		encoded, _ := json.Marshal(body)
		req.Body = encoded
	}
	return req
}

// ProductParam returns the product parameter: the query string wins, then
// the body's "product" field. Body decode failures count as absent.
func (r Request) ProductParam() string {
	if product := r.QueryStringParameters[ParamProduct]; product != "" {
		return product
	}
	return r.bodyProduct()
}

func (r Request) bodyProduct() string {
	payload := r.bodyPayload()
	if payload == nil {
		return ""
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return ""
	}

	raw, ok := fields[ParamProduct]
	if !ok {
		return ""
	}

	var product string
	if err := json.Unmarshal(raw, &product); err != nil {
		return ""
	}
	return product
}

// bodyPayload resolves the body to the JSON document it carries.
func (r Request) bodyPayload() []byte {
	raw := bytes.TrimSpace(r.Body)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	if raw[0] != '"' {
		return raw
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil
	}

	if r.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return nil
		}
		return decoded
	}

	return []byte(text)
}
