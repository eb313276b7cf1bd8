package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestInit_UnknownLevelFallsBackToInfo(t *testing.T) {
	lg, err := Init("chatty", "prod", "v1")
	if err != nil {
		t.Fatal(err)
	}
	defer lg.Closer()
	if lg.Base.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug must be off")
	}
	if !lg.Base.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("info must be on")
	}
}
