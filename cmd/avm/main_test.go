package main

import "testing"

func TestIsTruthy(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"on", true},
		{"0", false},
		{"false", false},
		{"", false},
		{"nope", false},
	}
	for _, tt := range tests {
		if got := isTruthy(tt.in); got != tt.want {
			t.Errorf("isTruthy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDetermineLogLevelFlagPriority(t *testing.T) {
	defer func() {
		quietFlag, verboseFlag, debugFlag = false, false, false
	}()

	debugFlag = true
	verboseFlag = true
	quietFlag = true
	if lvl := determineLogLevel(); lvl.String() != "DEBUG" {
		t.Errorf("debug flag should win, got %v", lvl)
	}

	debugFlag = false
	if lvl := determineLogLevel(); lvl.String() != "INFO" {
		t.Errorf("verbose flag should win over quiet, got %v", lvl)
	}

	verboseFlag = false
	if lvl := determineLogLevel(); lvl.String() != "ERROR" {
		t.Errorf("quiet flag should win over default, got %v", lvl)
	}
}

func TestDetermineLogLevelEnvFallback(t *testing.T) {
	defer func() {
		quietFlag, verboseFlag, debugFlag = false, false, false
		t.Setenv("AVM_LOG_DEBUG", "")
		t.Setenv("AVM_LOG_VERBOSE", "")
		t.Setenv("AVM_LOG_QUIET", "")
	}()

	t.Setenv("AVM_LOG_DEBUG", "1")
	if lvl := determineLogLevel(); lvl.String() != "DEBUG" {
		t.Errorf("AVM_LOG_DEBUG should select debug, got %v", lvl)
	}

	t.Setenv("AVM_LOG_DEBUG", "")
	t.Setenv("AVM_LOG_VERBOSE", "true")
	if lvl := determineLogLevel(); lvl.String() != "INFO" {
		t.Errorf("AVM_LOG_VERBOSE should select info, got %v", lvl)
	}

	t.Setenv("AVM_LOG_VERBOSE", "")
	if lvl := determineLogLevel(); lvl.String() != "WARN" {
		t.Errorf("no flags or env should default to warn, got %v", lvl)
	}
}

func TestToolDir(t *testing.T) {
	orig := paths
	defer func() { paths = orig }()

	paths.toolsBase = "/data/tools"
	if got, want := toolDir("go"), "/data/tools/go"; got != want {
		t.Errorf("toolDir(%q) = %q, want %q", "go", got, want)
	}
}
