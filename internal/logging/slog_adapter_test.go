// Kappa - Comic Recommendation Service
// Copyright 2026 Kappa Works
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kappaworks/kappa

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// adapterLogger builds an slog.Logger whose zerolog backend writes to buf.
func adapterLogger(buf *bytes.Buffer) *slog.Logger {
	zl := zerolog.New(buf).Level(zerolog.DebugLevel)
	return slog.New(&SlogHandler{logger: zl})
}

func TestSlogHandlerLevels(t *testing.T) {
	tests := []struct {
		name string
		log  func(l *slog.Logger)
		want string
	}{
		{name: "debug", log: func(l *slog.Logger) { l.Debug("m") }, want: `"level":"debug"`},
		{name: "info", log: func(l *slog.Logger) { l.Info("m") }, want: `"level":"info"`},
		{name: "warn", log: func(l *slog.Logger) { l.Warn("m") }, want: `"level":"warn"`},
		{name: "error", log: func(l *slog.Logger) { l.Error("m") }, want: `"level":"error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(adapterLogger(&buf))
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q missing %s", buf.String(), tt.want)
			}
		})
	}
}

func TestSlogHandlerAttributes(t *testing.T) {
	var buf bytes.Buffer
	l := adapterLogger(&buf)

	l.Info("attrs",
		slog.String("service", "snapshot-refresher"),
		slog.Int("restarts", 3),
		slog.Bool("ok", true),
	)

	out := buf.String()
	for _, want := range []string{
		`"service":"snapshot-refresher"`,
		`"restarts":3`,
		`"ok":true`,
		`"message":"attrs"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %s", out, want)
		}
	}
}

func TestSlogHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := adapterLogger(&buf).With(slog.String("supervisor", "kappa"))

	l.Info("event")

	if !strings.Contains(buf.String(), `"supervisor":"kappa"`) {
		t.Errorf("pre-configured attr missing from %q", buf.String())
	}
}

func TestSlogHandlerWithGroup(t *testing.T) {
	var buf bytes.Buffer
	l := adapterLogger(&buf).WithGroup("suture")

	l.Info("event", slog.String("service", "http-server"))

	if !strings.Contains(buf.String(), `"suture.service":"http-server"`) {
		t.Errorf("grouped key missing from %q", buf.String())
	}
}

func TestSlogHandlerEnabled(t *testing.T) {
	zl := zerolog.New(&bytes.Buffer{}).Level(zerolog.WarnLevel)
	h := &SlogHandler{logger: zl}

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info enabled under warn-level backend")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error disabled under warn-level backend")
	}
}
