package main

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Host               string        `env:"HOST,default=localhost"`
	Port               int           `env:"PORT,default=5000"`
	BadgerFilepath     string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel           string        `env:"LOG_LEVEL,default=INFO"`
	SweepInterval      time.Duration `env:"SWEEP_INTERVAL,default=15s"`
	ParticipantTimeout time.Duration `env:"PARTICIPANT_TIMEOUT,default=10s"`
	RestartInterval    time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	TelemetryInterval  time.Duration `env:"TELEMETRY_INTERVAL,default=30s"`
	// BroadcastNames is a comma-separated list of reserved "to" values
	// meaning "everyone". Empty keeps the legacy defaults Todos/All.
	BroadcastNames string `env:"BROADCAST_NAMES"`
	// CensoredWords is a comma-separated banned-word list. Empty
	// disables moderation.
	CensoredWords  string `env:"CENSORED_WORDS"`
	ModerationChar string `env:"MODERATION_CHARACTER,default=*"`
	// InspectorPort serves the badger inspect page when non-zero.
	InspectorPort int `env:"INSPECTOR_PORT,default=0"`
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// characterRune enforces that the moderation replacement is exactly
// one character.
func characterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf("MODERATION_CHARACTER must be a single character, got %q", str)
	}
	return r[0], nil
}
