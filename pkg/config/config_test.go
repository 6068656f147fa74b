package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy(t *testing.T) {
	p := MustDefaultPolicy()

	assert.Equal(t, int64(10485760), p.MaxFileSize())
	assert.Equal(t, 30*time.Second, p.DefaultTimeout())
	assert.Equal(t, []string{"utf-8", "gbk", "latin-1", "cp1252"}, p.Encodings())

	for _, ext := range []string{".txt", ".py", ".clj", ".dump"} {
		assert.True(t, p.ExtensionAllowed(ext), ext)
	}
	assert.False(t, p.ExtensionAllowed(".exe"))

	for _, cmd := range []string{"rm", "del", "format", "mkfs", "dd", "shutdown", "reboot", "halt", "poweroff"} {
		assert.True(t, p.CommandBlocked(cmd), cmd)
	}
	assert.False(t, p.CommandBlocked("ls"))
}

func TestNewPolicyNormalizes(t *testing.T) {
	p, err := NewPolicy(PolicySpec{
		AllowedExtensions: []string{" .TXT", "md", ""},
		MaxFileSizeBytes:  100,
		BlockedCommands:   []string{"RM", " Shutdown "},
		EncodingPriority:  []string{"UTF8", "utf-8", "Latin1"},
		TimeoutSeconds:    5,
	})
	require.NoError(t, err)

	assert.True(t, p.ExtensionAllowed(".txt"))
	assert.True(t, p.ExtensionAllowed(".md"))
	assert.True(t, p.CommandBlocked("rm"))
	assert.True(t, p.CommandBlocked("shutdown"))
	assert.Equal(t, []string{"utf-8", "latin-1"}, p.Encodings())

	spec := p.Spec()
	assert.Equal(t, []string{".md", ".txt"}, spec.AllowedExtensions)
	assert.Equal(t, []string{"rm", "shutdown"}, spec.BlockedCommands)
	assert.Equal(t, 5, spec.TimeoutSeconds)
}

func TestNewPolicyRejectsInvalid(t *testing.T) {
	base := DefaultPolicySpec()

	tests := []struct {
		name   string
		mutate func(*PolicySpec)
	}{
		{"empty extensions", func(s *PolicySpec) { s.AllowedExtensions = nil }},
		{"blank extensions", func(s *PolicySpec) { s.AllowedExtensions = []string{" "} }},
		{"empty blocked commands", func(s *PolicySpec) { s.BlockedCommands = []string{} }},
		{"empty encodings", func(s *PolicySpec) { s.EncodingPriority = nil }},
		{"unknown encoding", func(s *PolicySpec) { s.EncodingPriority = []string{"utf-8", "martian"} }},
		{"zero size", func(s *PolicySpec) { s.MaxFileSizeBytes = 0 }},
		{"negative timeout", func(s *PolicySpec) { s.TimeoutSeconds = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := base
			spec.AllowedExtensions = append([]string(nil), base.AllowedExtensions...)
			tt.mutate(&spec)
			_, err := NewPolicy(spec)
			assert.Error(t, err)
		})
	}
}

func TestPolicyEncodingsReturnsCopy(t *testing.T) {
	p := MustDefaultPolicy()
	enc := p.Encodings()
	enc[0] = "mutated"
	assert.Equal(t, "utf-8", p.Encodings()[0])
}

func TestSetViperDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	SetViperDefaults()

	assert.Equal(t, ".", viper.GetString(KeyRoot))
	assert.Equal(t, int64(DefaultMaxFileSize), viper.GetInt64(KeyMaxFileSize))
	assert.Equal(t, DefaultTimeoutSeconds, viper.GetInt(KeyTimeout))
	assert.Equal(t, "rg", viper.GetString(KeySearchBinary))
	assert.Equal(t, "info", viper.GetString(KeyLogLevel))

	p, err := NewPolicy(PolicySpecFromViper(viper.GetViper()))
	require.NoError(t, err)
	assert.Equal(t, MustDefaultPolicy().Spec(), p.Spec())
}
