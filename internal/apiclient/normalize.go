// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"

	"github.com/olegiv/campus-go/internal/model"
)

var errInvalidJSON = errors.New("response body is not valid JSON")

// Payload is a response body after envelope normalization. Data always holds
// the interesting JSON, whether the backend wrapped it in {data: ...} or not.
type Payload struct {
	Data       json.RawMessage
	Pagination *model.Pagination
	Success    *bool
	Message    string
}

// Failed reports an envelope that explicitly says success: false.
func (p Payload) Failed() bool {
	return p.Success != nil && !*p.Success
}

// Normalize unwraps the {data, pagination?} envelope when present and
// otherwise treats the whole body as data. An empty body is JSON null.
func Normalize(body []byte) (Payload, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Payload{Data: json.RawMessage("null")}, nil
	}
	if !gjson.ValidBytes(body) {
		return Payload{}, errInvalidJSON
	}

	root := gjson.ParseBytes(body)
	p := Payload{Data: json.RawMessage(body)}
	if !root.IsObject() {
		return p, nil
	}

	if data := root.Get("data"); data.Exists() {
		p.Data = json.RawMessage(data.Raw)
	}

	if pg := root.Get("pagination"); pg.IsObject() {
		p.Pagination = &model.Pagination{
			Total: int(pg.Get("total").Int()),
			Page:  int(pg.Get("page").Int()),
			Limit: int(pg.Get("limit").Int()),
			Pages: int(pg.Get("pages").Int()),
		}
	}

	if s := root.Get("success"); s.Exists() {
		ok := s.Bool()
		p.Success = &ok
	}

	p.Message = messageFrom(root)
	return p, nil
}

// errorMessage extracts a human-readable message from an error body.
func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	return messageFrom(gjson.ParseBytes(body))
}

func messageFrom(root gjson.Result) string {
	for _, key := range []string{"message", "error", "msg", "error.message"} {
		if v := root.Get(key); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

// decodeList decodes a list payload. null decodes to an empty list; any
// non-array shape is a server error.
func decodeList[T any](op string, p Payload) ([]T, error) {
	res := gjson.ParseBytes(p.Data)
	if res.Type == gjson.Null {
		return []T{}, nil
	}
	if !res.IsArray() {
		return nil, &Error{Kind: KindServer, Op: op, Message: "unexpected response shape"}
	}

	items := []T{}
	if err := json.Unmarshal(p.Data, &items); err != nil {
		return nil, &Error{Kind: KindServer, Op: op, Message: "invalid response body", Err: err}
	}
	return items, nil
}

// decodeOne decodes a single-object payload.
func decodeOne[T any](op string, p Payload) (T, error) {
	var v T
	if !gjson.ParseBytes(p.Data).IsObject() {
		return v, &Error{Kind: KindServer, Op: op, Message: "unexpected response shape"}
	}
	if err := json.Unmarshal(p.Data, &v); err != nil {
		return v, &Error{Kind: KindServer, Op: op, Message: "invalid response body", Err: err}
	}
	return v, nil
}
