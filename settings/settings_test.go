package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	require.NoError(t, d.Validate())

	assert.True(t, d.General.LaunchAtStartup)
	assert.False(t, d.General.RememberPosition)
	assert.Equal(t, "stable", d.General.UpdateChannel)
	assert.Equal(t, "system", d.Theme.Appearance)
	assert.Equal(t, "purple", d.Theme.AccentColor)
	assert.True(t, d.Theme.Animations)
	assert.True(t, d.Theme.BlurEffects)
	assert.Equal(t, "gpt4", d.AI.Model)
	assert.True(t, d.AI.CodeCompletion)
	assert.False(t, d.AI.ImageGeneration)
	assert.False(t, d.AI.VoiceCommands)
	assert.False(t, d.Privacy.DataCollection)
	assert.Equal(t, "system", d.Privacy.Security)
}

func TestValidate_RejectsUnknownEnums(t *testing.T) {
	s := Defaults()
	s.Theme.Appearance = "neon"
	s.Privacy.Security = "retina"

	err := s.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSetting)
	assert.Contains(t, err.Error(), "theme.appearance")
	assert.Contains(t, err.Error(), "privacy.security")
}

func TestWith(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		check   func(t *testing.T, s Settings)
		wantErr bool
	}{
		{
			name: "enum", key: "theme.appearance", value: "dark",
			check: func(t *testing.T, s Settings) { assert.Equal(t, "dark", s.Theme.Appearance) },
		},
		{
			name: "bool", key: "ai.voice_commands", value: "true",
			check: func(t *testing.T, s Settings) { assert.True(t, s.AI.VoiceCommands) },
		},
		{
			name: "bool shorthand", key: "general.launch_at_startup", value: "0",
			check: func(t *testing.T, s Settings) { assert.False(t, s.General.LaunchAtStartup) },
		},
		{name: "invalid enum", key: "ai.model", value: "gpt2", wantErr: true},
		{name: "invalid bool", key: "theme.animations", value: "sometimes", wantErr: true},
		{name: "unknown key", key: "theme.font", value: "serif", wantErr: true},
		{name: "unknown group", key: "network.proxy", value: "x", wantErr: true},
		{name: "no group", key: "appearance", value: "dark", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := Defaults()
			got, err := before.With(tt.key, tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidSetting)
				assert.Equal(t, Defaults(), got)
				return
			}
			require.NoError(t, err)
			tt.check(t, got)
			assert.Equal(t, Defaults(), before)
		})
	}
}
