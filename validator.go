package hubclient

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pmezard/go-difflib/difflib"
)

// ValidateResponse compares an actual response against an expectation and
// returns a multierror listing every mismatch with its expected and actual
// values, or nil when everything matches.
func ValidateResponse(actual *Response, expected *ExpectedResponse) error {
	if actual == nil {
		return fmt.Errorf("validation: actual response is nil")
	}
	if expected == nil {
		return nil
	}

	var errs *multierror.Error
	errs = validateStatusCode(actual, expected, errs)
	errs = validateHeaders(actual, expected, errs)
	errs = validateBodyFields(actual, expected, errs)
	errs = validateBody(actual, expected, errs)
	return errs.ErrorOrNil()
}

func validateStatusCode(actual *Response, expected *ExpectedResponse, errs *multierror.Error) *multierror.Error {
	if expected.StatusCode != nil && actual.StatusCode != *expected.StatusCode {
		errs = multierror.Append(errs, fmt.Errorf(
			"status code mismatch: expected %d, got %d", *expected.StatusCode, actual.StatusCode))
	}
	return errs
}

func validateHeaders(actual *Response, expected *ExpectedResponse, errs *multierror.Error) *multierror.Error {
	for key, expectedValues := range expected.Headers {
		actualValues := actual.Headers.Values(key)
		if len(actualValues) == 0 {
			errs = multierror.Append(errs, fmt.Errorf("expected header '%s' not found", key))
			continue
		}
		for _, ev := range expectedValues {
			if !isHeaderValuePresent(ev, actualValues) {
				errs = multierror.Append(errs, fmt.Errorf(
					"expected value '%s' for header '%s' not found in actual values %v", ev, key, actualValues))
			}
		}
	}
	return errs
}

// isHeaderValuePresent checks if an expected header value is present in the actual values.
func isHeaderValuePresent(expectedValue string, actualValues []string) bool {
	for _, av := range actualValues {
		if av == expectedValue {
			return true
		}
	}
	return false
}

func validateBodyFields(actual *Response, expected *ExpectedResponse, errs *multierror.Error) *multierror.Error {
	paths := make([]string, 0, len(expected.BodyFields))
	for path := range expected.BodyFields {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		want := expected.BodyFields[path]
		got, ok := lookupField(path, actual)
		if !ok {
			errs = multierror.Append(errs, fmt.Errorf("field '%s': expected %v, but it is absent", path, want))
			continue
		}
		if !fieldEqual(want, got) {
			errs = multierror.Append(errs, fmt.Errorf("field '%s': expected %v (%T), got %v (%T)", path, want, want, got, got))
		}
	}
	return errs
}

func lookupField(path string, actual *Response) (any, bool) {
	if strings.HasPrefix(path, "$") {
		return FromJSONPath(path, actual)
	}
	return FromObjectPath(strings.Split(path, "."), actual)
}

// fieldEqual compares values after a JSON round trip so that an expected
// int matches a decoded float64.
func fieldEqual(want, got any) bool {
	if reflect.DeepEqual(want, got) {
		return true
	}
	wantJSON, errWant := json.Marshal(want)
	gotJSON, errGot := json.Marshal(got)
	if errWant != nil || errGot != nil {
		return false
	}
	var wantNorm, gotNorm any
	if json.Unmarshal(wantJSON, &wantNorm) != nil || json.Unmarshal(gotJSON, &gotNorm) != nil {
		return false
	}
	return reflect.DeepEqual(wantNorm, gotNorm)
}

func validateBody(actual *Response, expected *ExpectedResponse, errs *multierror.Error) *multierror.Error {
	if expected.Body == nil {
		return errs
	}
	if err := compareBodies(*expected.Body, actual.BodyString); err != nil {
		errs = multierror.Append(errs, err)
	}
	return errs
}

// compareBodies compares normalized JSON when both bodies are JSON, and
// trimmed text otherwise. JSON mismatches carry a unified diff.
func compareBodies(expectedBody, actualBody string) error {
	normalizedExpected, expectedIsJSON := normalizeJSON(expectedBody)
	normalizedActual, actualIsJSON := normalizeJSON(actualBody)

	if !expectedIsJSON || !actualIsJSON {
		want := strings.TrimSpace(expectedBody)
		got := strings.TrimSpace(actualBody)
		if want != got {
			return fmt.Errorf("body mismatch: expected %q, got %q", want, got)
		}
		return nil
	}

	if normalizedActual != normalizedExpected {
		diff := difflib.UnifiedDiff{
			A:        difflib.SplitLines(normalizedExpected),
			B:        difflib.SplitLines(normalizedActual),
			FromFile: "Expected JSON (normalized)",
			ToFile:   "Actual JSON (normalized)",
			Context:  3,
		}
		diffText, _ := difflib.GetUnifiedDiffString(diff)
		return fmt.Errorf("JSON body mismatch:\n%s", diffText)
	}
	return nil
}

func normalizeJSON(s string) (string, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return "", false
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", false
	}
	return string(out) + "\n", true
}
