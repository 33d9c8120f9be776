package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{"Info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"  error ", LevelError},
		{"bogus", DefaultLevel},
		{"", DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLevelNamesRoundTrip(t *testing.T) {
	t.Parallel()

	for name := range Levels() {
		if got := ParseLevel(name).String(); got != name {
			t.Errorf("ParseLevel(%q).String() = %q", name, got)
		}
	}

	if got := slices.Collect(Formats()); !slices.Equal(got, []string{"json", "text"}) {
		t.Errorf("Formats() = %v", got)
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	if ParseFormat("TEXT") != FormatText {
		t.Error("expected text format")
	}

	if ParseFormat("json") != FormatJSON {
		t.Error("expected json format")
	}

	if ParseFormat("xml") != DefaultFormat {
		t.Error("expected default format for unknown input")
	}
}

func TestMakeDefaults(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := Make(&buf)

	if logger.Level() != DefaultLevel {
		t.Errorf("Level() = %v, want %v", logger.Level(), DefaultLevel)
	}

	if logger.Format() != DefaultFormat {
		t.Errorf("Format() = %v, want %v", logger.Format(), DefaultFormat)
	}

	logger.Debug("hidden")

	if buf.Len() != 0 {
		t.Errorf("debug record written at default level: %s", buf.String())
	}

	logger.Info("shown", slog.String("key", "value"))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v: %s", err, buf.String())
	}

	for key, want := range map[string]any{
		"level": "INFO",
		"msg":   "shown",
		"key":   "value",
	} {
		if rec[key] != want {
			t.Errorf("record[%q] = %v, want %v", key, rec[key], want)
		}
	}

	if _, ok := rec["time"]; !ok {
		t.Error("expected a timestamp")
	}
}

func TestZeroLoggerDiscards(t *testing.T) {
	t.Parallel()

	var logger Logger

	logger.Error("nothing happens")
	logger.With(slog.Int("n", 1)).InfoContext(context.Background(), "still nothing")

	if logger.Enabled(context.Background(), LevelError) {
		t.Error("zero logger reports enabled")
	}
}

func TestWrapKeepsOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelError)).
		Wrap(WithLevel(LevelTrace), WithFormat(FormatText), WithTimeLayout("none"))

	logger.Trace("deep")

	if got, want := buf.String(), "level=TRACE msg=deep\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestWithCaller(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	Make(&buf, WithCaller(true), WithFormat(FormatText)).Warn("here")

	if !strings.Contains(buf.String(), "log_test.go:") {
		t.Errorf("expected caller in output: %s", buf.String())
	}
}

func TestPrettyText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := Make(&buf,
		WithPretty(true),
		WithFormat(FormatText),
		WithTimeLayout("none"),
	)

	logger.With(slog.String("path", "a.html")).
		Info("loaded", slog.Group("cache", slog.Bool("hit", true)))

	out := buf.String()

	for _, want := range []string{"INFO", "loaded", "a.html", "cache.hit", "true"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}

	if strings.Contains(out, "time") {
		t.Errorf("timestamp written with layout none: %s", out)
	}
}

func TestPrettyJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := Make(&buf, WithPretty(true), WithFormat(FormatJSON))
	logger.Error("failed", slog.Any("error", errors.New("boom")))

	out := buf.String()

	if !strings.HasPrefix(out, "{\n") || !strings.HasSuffix(out, "\n}\n") {
		t.Errorf("unexpected framing: %q", out)
	}

	for _, want := range []string{"time", "ERROR", "failed", "boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestConcurrentLogging(t *testing.T) {
	t.Parallel()

	var (
		buf syncBuffer
		wg  sync.WaitGroup
	)

	logger := Make(&buf, WithFormat(FormatText), WithTimeLayout("none"))

	for i := range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			logger.Info("tick", slog.Int("i", i))
		}()
	}

	wg.Wait()

	if got := strings.Count(buf.String(), "\n"); got != 16 {
		t.Errorf("got %d records, want 16", got)
	}
}

func TestPackageDefault(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	var buf bytes.Buffer

	SetDefault(Make(&buf, WithFormat(FormatText), WithTimeLayout("none")))
	Config(WithLevel(LevelDebug))

	Debug("via package", slog.String("k", "v"))
	Trace("filtered")

	if got, want := buf.String(), "level=DEBUG msg=\"via package\" k=v\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}
