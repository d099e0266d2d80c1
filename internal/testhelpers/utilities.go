package testhelpers

import (
	"encoding/json"
	"testing"
	"time"
)

// AssertJSONKeyValue checks that a JSON object has a key with the expected value
func AssertJSONKeyValue(t *testing.T, jsonStr string, key string, expectedValue interface{}, msg string) {
	t.Helper()

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(jsonStr), &obj); err != nil {
		t.Fatalf("%s: invalid JSON: %v", msg, err)
	}

	actual, ok := obj[key]
	if !ok {
		t.Errorf("%s: key %q not found in JSON", msg, key)
		return
	}

	expectedJSON, _ := json.Marshal(expectedValue)
	actualJSON, _ := json.Marshal(actual)
	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("%s: key %q = %s, want %s", msg, key, actualJSON, expectedJSON)
	}
}

// AssertSliceLen checks the length of a slice
func AssertSliceLen[T any](t *testing.T, slice []T, expectedLen int, msg string) {
	t.Helper()
	if len(slice) != expectedLen {
		t.Errorf("%s: expected length %d, got %d", msg, expectedLen, len(slice))
	}
}

// AssertSliceContains checks that a slice contains an element
func AssertSliceContains[T comparable](t *testing.T, slice []T, elem T, msg string) {
	t.Helper()
	for _, v := range slice {
		if v == elem {
			return
		}
	}
	t.Errorf("%s: expected slice to contain %v", msg, elem)
}

// AssertTimeWithin checks that two times are within a tolerance of each other
func AssertTimeWithin(t *testing.T, actual, reference time.Time, tolerance time.Duration, msg string) {
	t.Helper()
	diff := actual.Sub(reference)
	if diff < 0 {
		diff = -diff
	}
	if diff > tolerance {
		t.Errorf("%s: %v is not within %v of %v", msg, actual, tolerance, reference)
	}
}

// AssertTrue checks that a condition is true
func AssertTrue(t *testing.T, condition bool, msg string) {
	t.Helper()
	if !condition {
		t.Errorf("%s: expected true", msg)
	}
}

// AssertFalse checks that a condition is false
func AssertFalse(t *testing.T, condition bool, msg string) {
	t.Helper()
	if condition {
		t.Errorf("%s: expected false", msg)
	}
}
