package history

import "testing"

func TestGenerateOTPDigits(t *testing.T) {
	for _, digits := range []int{startOTPDigits, completionOTPDigits} {
		for i := 0; i < 200; i++ {
			code := generateOTP(digits)
			if len(code) != digits {
				t.Fatalf("generateOTP(%d) = %q, want %d digits", digits, code, digits)
			}
			if code[0] == '0' {
				t.Fatalf("generateOTP(%d) = %q, leading zero", digits, code)
			}
			for _, r := range code {
				if r < '0' || r > '9' {
					t.Fatalf("generateOTP(%d) = %q, non-digit %q", digits, code, r)
				}
			}
		}
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := string(newID())
		if len(id) != 32 {
			t.Fatalf("newID() = %q, want 32 hex chars", id)
		}
		if seen[id] {
			t.Fatalf("newID() produced duplicate %q", id)
		}
		seen[id] = true
	}
}
