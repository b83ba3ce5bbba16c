package providers

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDomain(t *testing.T) {
	for _, in := range []string{"", "general", " Tech ", "ART", "sport"} {
		_, err := ParseDomain(in)
		assert.NoError(t, err, in)
	}
	d, err := ParseDomain("")
	require.NoError(t, err)
	assert.Equal(t, DomainGeneral, d)

	_, err = ParseDomain("legal")
	assert.Error(t, err)
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "Korean", LanguageName("ko"))
	assert.Equal(t, "Japanese", LanguageName("ja"))
	assert.Equal(t, "not a tag!", LanguageName("not a tag!"))
}

func TestInstruction(t *testing.T) {
	assert.Equal(t, "다음 텍스트를 자연스럽고 정확하게 Korean로 번역해주세요:", Instruction(DomainGeneral, "ko"))
	assert.Equal(t, Instruction(DomainGeneral, "en"), Instruction(Domain("legal"), "en"))
	assert.Contains(t, Instruction(DomainSport, "en"), "스포츠")
	assert.Contains(t, UserPrompt(DomainArt, "fr", "그림"), "\n\n원문: 그림")
}

func TestPostProcess(t *testing.T) {
	tests := []struct {
		name, translated, original, want string
	}{
		{"plain", "Hello", "안녕", "Hello"},
		{"quoted", `"Hello"`, "안녕", "Hello"},
		{"whitespace", "  Hello \n", "안녕", "Hello"},
		{"single quote char", `"`, "x", `"`},
		{"echo case insensitive", "API KEY", "api key", "api key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PostProcess(tt.translated, tt.original))
		})
	}
}

func TestStatusError(t *testing.T) {
	tests := []struct {
		status    int
		code      string
		retryable bool
	}{
		{429, ErrCodeRateLimit, true},
		{401, ErrCodeAuth, false},
		{403, ErrCodeAuth, false},
		{504, ErrCodeTimeout, true},
		{502, ErrCodeServer, true},
		{400, ErrCodeInvalidRequest, false},
	}
	for _, tt := range tests {
		err := StatusError("p", tt.status, []byte("body"))
		assert.Equal(t, tt.code, err.Code, "status %d", tt.status)
		assert.Equal(t, tt.retryable, err.IsRetryable(), "status %d", tt.status)
		assert.Equal(t, fmt.Sprintf("p: HTTP %d: body", tt.status), err.Error())
	}
}
