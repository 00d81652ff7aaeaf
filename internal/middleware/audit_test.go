package middleware

import (
	"strings"
	"testing"

	"training-portal/internal/model"
)

func TestMaskSensitiveData(t *testing.T) {
	in := `{"email":"a@x.com","password":"hunter2","old_password": "previous","new_password":"s3cret"}`
	out := maskSensitiveData(in)

	for _, secret := range []string{"hunter2", "previous", "s3cret"} {
		if strings.Contains(out, secret) {
			t.Errorf("credential value %q survives masking: %s", secret, out)
		}
	}
	for _, key := range []string{`"password":"***"`, `"old_password":"***"`, `"new_password":"***"`} {
		if !strings.Contains(out, key) {
			t.Errorf("masked marker %s missing: %s", key, out)
		}
	}
	if !strings.Contains(out, `"email":"a@x.com"`) {
		t.Errorf("unrelated fields should be untouched: %s", out)
	}
}

func TestParseActionFromPath(t *testing.T) {
	cases := []struct {
		method, path             string
		action, resource, wantID string
	}{
		{"POST", "/api/auth/login", model.ActionLogin, model.ResourceUser, ""},
		{"POST", "/api/admin/applications/6ba7b810-9dad-11d1-80b4-00c04fd430c8/approve",
			model.ActionApprove, model.ResourceApplication, "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
		{"PUT", "/api/admin/programs/6ba7b810-9dad-11d1-80b4-00c04fd430c8",
			model.ActionUpdate, model.ResourceProgram, "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
		{"DELETE", "/api/applications/6ba7b810-9dad-11d1-80b4-00c04fd430c8",
			model.ActionDelete, model.ResourceApplication, "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
	}

	for _, tc := range cases {
		action, resource, id := parseActionFromPath(tc.method, tc.path)
		if action != tc.action || resource != tc.resource || id != tc.wantID {
			t.Errorf("%s %s = (%s, %s, %s), want (%s, %s, %s)",
				tc.method, tc.path, action, resource, id, tc.action, tc.resource, tc.wantID)
		}
	}
}
