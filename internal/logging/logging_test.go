package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	for _, tc := range []struct {
		level string
		json  bool
		want  zapcore.Level
	}{
		{"debug", false, zapcore.DebugLevel},
		{"info", true, zapcore.InfoLevel},
		{"warn", false, zapcore.WarnLevel},
	} {
		logger, err := New(tc.level, tc.json)
		if err != nil {
			t.Fatalf("%s: %v", tc.level, err)
		}
		if !logger.Core().Enabled(tc.want) {
			t.Fatalf("%s: level %s disabled", tc.level, tc.want)
		}
		if tc.want > zapcore.DebugLevel && logger.Core().Enabled(tc.want-1) {
			t.Fatalf("%s: level below %s enabled", tc.level, tc.want)
		}
	}
	if _, err := New("loud", false); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
