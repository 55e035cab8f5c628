package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestInit_DoesNotPanic(t *testing.T) {
	Init(false, false)
	L().Info().Msg("test json info")

	Init(true, false)
	L().Debug().Msg("test json debug")

	Init(false, true)
	L().Info().Msg("test human info")

	Init(false, false)
}

func TestInitWriterPrettyMode(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, false, true)
	if !IsPrettyMode() {
		t.Error("expected pretty mode after human init")
	}
	L().Info().Msg("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("expected message in output, got: %s", buf.String())
	}

	InitWriter(&buf, false, false)
	if IsPrettyMode() {
		t.Error("expected pretty mode off after JSON init")
	}
	Init(false, false)
}

func TestWithPhase(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))

	log := WithPhase("load")
	log.Info().Msg("test message")

	if !bytes.Contains(buf.Bytes(), []byte(`"phase":"load"`)) {
		t.Errorf("expected phase field in output, got: %s", buf.String())
	}
	Init(false, false)
}

func TestLevelComplete(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	LevelComplete(log, 2, 1500*time.Millisecond).
		Count("candidates", 10).
		Count("frequent", 4).
		Ratio("kept_pct", 4, 10).
		Log("level done")

	output := buf.String()
	for _, want := range []string{
		`"event":"level_completed"`,
		`"phase":"mine"`,
		`"level":2`,
		`"duration_ms":1500`,
		`"candidates":10`,
		`"frequent":4`,
		`"kept_pct":40`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output, got: %s", want, output)
		}
	}
}

func TestCompletionEventRatioZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	PhaseComplete(zerolog.New(&buf), "rules", time.Second).
		Ratio("kept_pct", 0, 0).
		Log("done")

	if strings.Contains(buf.String(), "kept_pct") {
		t.Errorf("expected no ratio field for zero total, got: %s", buf.String())
	}
}

func TestFileWritten(t *testing.T) {
	var buf bytes.Buffer
	FileWritten(zerolog.New(&buf), "rules.csv", time.Millisecond).
		Int("rules", 3).
		Bytes("size", 2048).
		Log("exported")

	output := buf.String()
	if !strings.Contains(output, `"path":"rules.csv"`) || !strings.Contains(output, `"rules":3`) {
		t.Errorf("unexpected output: %s", output)
	}
}
