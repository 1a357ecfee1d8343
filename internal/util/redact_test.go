package util_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smartsales/lead-pipeline/internal/util"
)

func TestRedactSecrets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{
			name: "bearer_token",
			in:   "401 from upstream: Bearer eyJhbGciOi.payload.sig rejected",
			want: "401 from upstream: Bearer <redacted> rejected",
		},
		{
			name: "api_key_kv",
			in:   "request failed: api_key=sk-123456 invalid",
			want: "request failed: <redacted> invalid",
		},
		{
			name: "gemini_key",
			in:   "GEMINI_API_KEY: abc123",
			want: "<redacted>",
		},
		{
			name: "plain_text_untouched",
			in:   "enrichment timed out after 30s",
			want: "enrichment timed out after 30s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, util.RedactSecrets(tt.in))
		})
	}
}
