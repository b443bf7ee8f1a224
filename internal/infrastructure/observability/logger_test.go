package observability

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestLogLevelFromEnv(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  zerolog.Level
	}{
		{name: "unset defaults to info", value: "", want: zerolog.InfoLevel},
		{name: "debug", value: "debug", want: zerolog.DebugLevel},
		{name: "mixed case", value: "WARN", want: zerolog.WarnLevel},
		{name: "padded", value: " error ", want: zerolog.ErrorLevel},
		{name: "garbage falls back to info", value: "loud", want: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.value)
			if got := logLevelFromEnv(); got != tt.want {
				t.Errorf("logLevelFromEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}
