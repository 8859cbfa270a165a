package types

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadsParams(t *testing.T) {
	tests := []struct {
		verb string
		want bool
	}{
		{http.MethodGet, true},
		{http.MethodHead, true},
		{http.MethodDelete, false},
		{http.MethodPost, false},
		{http.MethodPut, false},
		{http.MethodPatch, false},
	}

	for _, tt := range tests {
		t.Run(tt.verb, func(t *testing.T) {
			assert.Equal(t, tt.want, ReadsParams(tt.verb))
		})
	}
}

func TestMergeParams(t *testing.T) {
	base := url.Values{"limit": {"5"}, "api_type": {"xml"}}
	fixed := url.Values{"api_type": {"json"}, "raw_json": {"1"}}

	merged := MergeParams(base, fixed)

	assert.Equal(t, "5", merged.Get("limit"))
	assert.Equal(t, "json", merged.Get("api_type"))
	assert.Equal(t, "1", merged.Get("raw_json"))
	assert.Equal(t, "xml", base.Get("api_type"), "base must not be mutated")
}

func TestMergeParams_NilBase(t *testing.T) {
	merged := MergeParams(nil, url.Values{"raw_json": {"1"}})
	assert.Equal(t, url.Values{"raw_json": {"1"}}, merged)
}

func TestResponse(t *testing.T) {
	var nilResp *Response
	assert.Equal(t, "", nilResp.Text())
	assert.False(t, nilResp.IsSuccess())

	resp := &Response{StatusCode: http.StatusCreated, Body: []byte(`{"ok":true}`)}
	assert.Equal(t, `{"ok":true}`, resp.Text())
	assert.True(t, resp.IsSuccess())

	resp.StatusCode = http.StatusBadGateway
	assert.False(t, resp.IsSuccess())
}
