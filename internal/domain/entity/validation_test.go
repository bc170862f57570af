package entity

import (
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "valid https URL", url: "https://93.184.216.34/news/1", wantErr: false},
		{name: "valid http URL with port", url: "http://93.184.216.34:8080/story", wantErr: false},
		{name: "empty URL", url: "", wantErr: true},
		{name: "ftp scheme", url: "ftp://example.com/feed", wantErr: true},
		{name: "javascript scheme", url: "javascript:alert(1)", wantErr: true},
		{name: "no host", url: "https://", wantErr: true},
		{name: "loopback", url: "http://127.0.0.1/admin", wantErr: true},
		{name: "metadata endpoint", url: "http://169.254.169.254/latest", wantErr: true},
		{name: "private network", url: "http://10.1.2.3/", wantErr: true},
		{name: "too long", url: "https://example.com/" + strings.Repeat("a", maxURLLength), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateURL_ErrorTypes(t *testing.T) {
	err := ValidateURL("http://192.168.1.10")
	var ve *ValidationError
	if assert.True(t, errors.As(err, &ve)) {
		assert.Equal(t, "url", ve.Field)
		assert.Contains(t, ve.Message, "private network")
	}
}

func TestValidateHeadline(t *testing.T) {
	assert.NoError(t, ValidateHeadline(Headline{Title: "Story", URL: "https://93.184.216.34/a"}))

	err := ValidateHeadline(Headline{Title: " ", URL: "https://93.184.216.34/a"})
	var ve *ValidationError
	if assert.ErrorAs(t, err, &ve) {
		assert.Equal(t, "title", ve.Field)
	}

	assert.Error(t, ValidateHeadline(Headline{Title: "Story"}))
	assert.Error(t, ValidateHeadline(Headline{Title: "Story", URL: "/relative/path"}))
	assert.Error(t, ValidateHeadline(Headline{Title: "Story", URL: "ftp://example.com/a"}))
	assert.NoError(t, ValidateHeadline(Headline{Title: "Local", URL: "http://127.0.0.1:8080/a"}))
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip        string
		isPrivate bool
	}{
		{"127.0.0.1", true},
		{"::1", true},
		{"169.254.169.254", true},
		{"fe80::1", true},
		{"10.123.45.67", true},
		{"172.16.0.1", true},
		{"172.31.255.255", true},
		{"172.32.0.1", false},
		{"192.168.0.1", true},
		{"0.0.0.0", true},
		{"8.8.8.8", false},
		{"2001:4860:4860::8888", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			assert.Equal(t, tt.isPrivate, IsPrivateIP(net.ParseIP(tt.ip)))
		})
	}
}
