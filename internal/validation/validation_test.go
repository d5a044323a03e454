package validation

import "testing"

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name       string
		in         RegistrationInput
		wantFields []string
	}{
		{
			name: "valid form",
			in:   RegistrationInput{Username: "masha", Email: "masha@example.com", Password: "secret", ZipCode: "12345"},
		},
		{
			name: "valid form without zip",
			in:   RegistrationInput{Username: "masha", Email: "masha@example.com", Password: "secret"},
		},
		{
			name:       "short username",
			in:         RegistrationInput{Username: "ab", Email: "a@example.com", Password: "secret"},
			wantFields: []string{"username"},
		},
		{
			name:       "whitespace username",
			in:         RegistrationInput{Username: "   ", Email: "a@example.com", Password: "secret"},
			wantFields: []string{"username"},
		},
		{
			name:       "bad email",
			in:         RegistrationInput{Username: "masha", Email: "not-an-email", Password: "secret"},
			wantFields: []string{"email"},
		},
		{
			name:       "short password",
			in:         RegistrationInput{Username: "masha", Email: "masha@example.com", Password: "1234"},
			wantFields: []string{"password"},
		},
		{
			name:       "bad zip",
			in:         RegistrationInput{Username: "masha", Email: "masha@example.com", Password: "secret", ZipCode: "12-345"},
			wantFields: []string{"zipCode"},
		},
		{
			name:       "everything wrong",
			in:         RegistrationInput{Username: "a", Email: "", Password: "1", ZipCode: "x"},
			wantFields: []string{"username", "email", "password", "zipCode"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateRegistration(tt.in)

			if len(errs) != len(tt.wantFields) {
				t.Fatalf("errors = %v, want fields %v", errs, tt.wantFields)
			}
			for _, f := range tt.wantFields {
				if _, ok := errs[f]; !ok {
					t.Fatalf("missing error for field %q: %v", f, errs)
				}
			}
		})
	}
}

func TestValidZipCode(t *testing.T) {
	valid := []string{"12345", "12345-6789"}
	invalid := []string{"", "1234", "123456", "12345-678", "abcde", "12345 6789"}

	for _, zip := range valid {
		if !ValidZipCode(zip) {
			t.Fatalf("zip %q must be valid", zip)
		}
	}
	for _, zip := range invalid {
		if ValidZipCode(zip) {
			t.Fatalf("zip %q must be invalid", zip)
		}
	}
}

func TestValidFeedback(t *testing.T) {
	if ValidFeedback("    ") {
		t.Fatalf("whitespace feedback must be invalid")
	}
	if ValidFeedback("ok") {
		t.Fatalf("too short feedback must be invalid")
	}
	if !ValidFeedback("очень вкусный хлеб") {
		t.Fatalf("meaningful feedback must be valid")
	}
}
