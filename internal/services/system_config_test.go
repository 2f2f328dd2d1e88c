package services

import (
	"testing"
)

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		sep      string
		expected []string
	}{
		{
			name:     "empty string",
			input:    "",
			sep:      ",",
			expected: nil,
		},
		{
			name:     "single value",
			input:    "value",
			sep:      ",",
			expected: []string{"value"},
		},
		{
			name:     "multiple values",
			input:    "a,b,c",
			sep:      ",",
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "with spaces",
			input:    " a , b , c ",
			sep:      ",",
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "empty parts filtered",
			input:    "a,,b,  ,c",
			sep:      ",",
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "different separator",
			input:    "a;b;c",
			sep:      ";",
			expected: []string{"a", "b", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitAndTrim(tt.input, tt.sep)
			if len(result) != len(tt.expected) {
				t.Errorf("splitAndTrim() returned %d items, expected %d", len(result), len(tt.expected))
				return
			}
			for i, v := range result {
				if v != tt.expected[i] {
					t.Errorf("splitAndTrim()[%d] = %q, expected %q", i, v, tt.expected[i])
				}
			}
		})
	}
}

func TestEmailConfigResponse_Defaults(t *testing.T) {
	cfg := &EmailConfigResponse{
		Enabled:     false,
		Host:        "",
		Port:        587,
		Username:    "",
		From:        "",
		UseTLS:      false,
		PasswordSet: false,
	}

	if cfg.Enabled {
		t.Error("Enabled should be false by default")
	}
	if cfg.Host != "" {
		t.Errorf("Host should be empty, got %s", cfg.Host)
	}
	if cfg.Port != 587 {
		t.Errorf("default port should be 587, got %d", cfg.Port)
	}
	if cfg.Username != "" {
		t.Errorf("Username should be empty, got %s", cfg.Username)
	}
	if cfg.UseTLS {
		t.Error("UseTLS should be false by default")
	}
	if cfg.PasswordSet {
		t.Error("PasswordSet should be false by default")
	}
}

func TestUpdateEmailConfigRequest_PartialUpdate(t *testing.T) {
	enabled := true
	host := "smtp.example.com"
	port := 465

	req := &UpdateEmailConfigRequest{
		Enabled: &enabled,
		Host:    &host,
		Port:    &port,
	}

	if req.Enabled == nil || *req.Enabled != true {
		t.Error("Enabled should be set to true")
	}
	if req.Host == nil || *req.Host != "smtp.example.com" {
		t.Error("Host should be set")
	}
	if req.Port == nil || *req.Port != 465 {
		t.Error("Port should be set to 465")
	}
	if req.Username != nil {
		t.Error("Username should be nil (not set)")
	}
	if req.Password != nil {
		t.Error("Password should be nil (not set)")
	}
}
