package utils

import (
	"strings"
	"testing"
)

func TestMaskEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"alice@example.com", "a***e@example.com"},
		{"ab@example.com", "ab@example.com"},
		{"not-an-email", "not-an-email"},
	}
	for _, tc := range cases {
		if got := MaskEmail(tc.in); got != tc.want {
			t.Errorf("MaskEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDedupeEmails(t *testing.T) {
	got := DedupeEmails([]string{"a@x.com", "", "b@x.com", "a@x.com", "c@x.com", ""})
	want := []string{"a@x.com", "b@x.com", "c@x.com"}

	if len(got) != len(want) {
		t.Fatalf("DedupeEmails returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DedupeEmails[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDedupeEmailsEmpty(t *testing.T) {
	if got := DedupeEmails(nil); len(got) != 0 {
		t.Errorf("DedupeEmails(nil) = %v, want empty", got)
	}
	if got := DedupeEmails([]string{"", ""}); len(got) != 0 {
		t.Errorf("DedupeEmails of blanks = %v, want empty", got)
	}
}

func TestGenerateInvoiceRef(t *testing.T) {
	ref := GenerateInvoiceRef()

	if !strings.HasPrefix(ref, "TRN-") {
		t.Fatalf("invoice ref %q missing TRN- prefix", ref)
	}
	suffix := strings.TrimPrefix(ref, "TRN-")
	if len(suffix) != 8 {
		t.Errorf("invoice ref suffix %q should be 8 characters", suffix)
	}
	if suffix != strings.ToUpper(suffix) {
		t.Errorf("invoice ref suffix %q should be upper case", suffix)
	}
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 50; i++ {
		otp := GenerateOTP()
		if len(otp) != 6 {
			t.Fatalf("OTP %q should be 6 digits", otp)
		}
		for _, r := range otp {
			if r < '0' || r > '9' {
				t.Fatalf("OTP %q contains a non-digit", otp)
			}
		}
	}
}

func TestGenerateRandomStringLength(t *testing.T) {
	for _, n := range []int{4, 8, 16, 32} {
		if got := GenerateRandomString(n); len(got) != n {
			t.Errorf("GenerateRandomString(%d) returned %d characters", n, len(got))
		}
	}
}
