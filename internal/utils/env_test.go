package utils

import "testing"

func TestGetEnv(t *testing.T) {
	t.Setenv("GRIDSIGHT_TEST_STR", "hello")
	if got := GetEnv("GRIDSIGHT_TEST_STR", "fallback", nil); got != "hello" {
		t.Fatalf("GetEnv = %q, want hello", got)
	}
	if got := GetEnv("GRIDSIGHT_TEST_MISSING", "fallback", nil); got != "fallback" {
		t.Fatalf("GetEnv missing = %q, want fallback", got)
	}
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("GRIDSIGHT_TEST_INT", "42")
	if got := GetEnvAsInt("GRIDSIGHT_TEST_INT", 7, nil); got != 42 {
		t.Fatalf("GetEnvAsInt = %d, want 42", got)
	}
	t.Setenv("GRIDSIGHT_TEST_INT", "not-a-number")
	if got := GetEnvAsInt("GRIDSIGHT_TEST_INT", 7, nil); got != 7 {
		t.Fatalf("GetEnvAsInt unparsable = %d, want 7", got)
	}
	if got := GetEnvAsInt("GRIDSIGHT_TEST_MISSING", 7, nil); got != 7 {
		t.Fatalf("GetEnvAsInt missing = %d, want 7", got)
	}
}

func TestGetEnvAsFloat(t *testing.T) {
	t.Setenv("GRIDSIGHT_TEST_FLOAT", "0.75")
	if got := GetEnvAsFloat("GRIDSIGHT_TEST_FLOAT", 0.5, nil); got != 0.75 {
		t.Fatalf("GetEnvAsFloat = %v, want 0.75", got)
	}
	if got := GetEnvAsFloat("GRIDSIGHT_TEST_MISSING", 0.5, nil); got != 0.5 {
		t.Fatalf("GetEnvAsFloat missing = %v, want 0.5", got)
	}
}
