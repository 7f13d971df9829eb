package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestLanguageDescription(t *testing.T) {
	assert.Equal(t, "Traditional Chinese (zh-TW)", languageDescription(domain.LanguageTraditionalChinese))
	assert.Equal(t, "English (en)", languageDescription(domain.LanguageEnglish))
	assert.Equal(t, "fr", languageDescription(domain.Language("fr")))
}

func TestMemoryDescription(t *testing.T) {
	assert.Equal(t, "full conversation", memoryDescription(0))
	assert.Equal(t, "last exchange", memoryDescription(1))
	assert.Equal(t, "last 5 exchanges", memoryDescription(5))
}

func TestSettingsShowCmd(t *testing.T) {
	cleanup, mocks := setupTestServicesWithMocks()
	defer cleanup()
	mocks.settings.settings.LLM.APIKey = "sk-1234567890abcdef"

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings", "show"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "[QA]")
	assert.Contains(t, out, "Language: Traditional Chinese (zh-TW)")
	assert.Contains(t, out, "Memory: full conversation")
	assert.Contains(t, out, "[Vector]")
	assert.Contains(t, out, "Backend: sqlite")
	assert.Contains(t, out, "API Key: sk-1...cdef")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShowCmd_InvalidConfig(t *testing.T) {
	cleanup, mocks := setupTestServicesWithMocks()
	defer cleanup()
	mocks.settings.validateErr = domain.ErrLLMUnavailable

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "docqa settings wizard")
}

func TestSettingsLanguageCmd(t *testing.T) {
	cleanup, mocks := setupTestServicesWithMocks()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings", "language", "en"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, domain.LanguageEnglish, mocks.settings.settings.QA.Language)
	assert.Contains(t, buf.String(), "English (en)")
}

func TestSettingsLanguageCmd_Unsupported(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"settings", "language", "fr"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported language "fr"`)
}

func TestSettingsMemoryCmd(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		want    int
		wantErr bool
	}{
		{name: "Positive", arg: "3", want: 3},
		{name: "Zero is unbounded", arg: "0", want: 0},
		{name: "Negative", arg: "-1", wantErr: true},
		{name: "Not a number", arg: "many", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup, mocks := setupTestServicesWithMocks()
			defer cleanup()
			mocks.settings.settings.QA.MemoryTurns = 7

			buf := new(bytes.Buffer)
			rootCmd.SetOut(buf)
			rootCmd.SetErr(buf)
			rootCmd.SetArgs([]string{"settings", "memory", "--", tt.arg})
			defer rootCmd.SetArgs(nil)

			err := rootCmd.Execute()

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, 7, mocks.settings.settings.QA.MemoryTurns)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, mocks.settings.settings.QA.MemoryTurns)
		})
	}
}
