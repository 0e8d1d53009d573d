package logging

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"trace", TraceLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"info", zapcore.InfoLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"verbose", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := LevelFromString(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{
			name:    "bad format",
			mutate:  func(c *Config) { c.Format = "text" },
			wantErr: "format must be",
		},
		{
			name:    "no outputs",
			mutate:  func(c *Config) { c.Output = OutputConfig{} },
			wantErr: "at least one output",
		},
		{
			name:    "zero sampling tick",
			mutate:  func(c *Config) { c.Sampling.Tick = 0 },
			wantErr: "sampling tick",
		},
		{
			name:   "zero tick with sampling off",
			mutate: func(c *Config) { c.Sampling = SamplingConfig{} },
		},
		{
			name: "negative caller skip",
			mutate: func(c *Config) {
				c.Caller = CallerConfig{Enabled: true, Skip: -1}
			},
			wantErr: "caller skip",
		},
		{
			name:    "invalid pattern",
			mutate:  func(c *Config) { c.Redaction.Patterns = []string{"("} },
			wantErr: "invalid redaction pattern",
		},
		{
			name: "pattern too long",
			mutate: func(c *Config) {
				c.Redaction.Patterns = []string{strings.Repeat("a", maxPatternLen+1)}
			},
			wantErr: "too long",
		},
		{
			name:    "empty field value",
			mutate:  func(c *Config) { c.Fields = map[string]string{"service": ""} },
			wantErr: "empty value",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
