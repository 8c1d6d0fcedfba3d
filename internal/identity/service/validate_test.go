package service

import "testing"

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		pw string
		ok bool
	}{
		{"Vecina2026", true},
		{"Ñandú2026x", true},
		{"short1A", false},
		{"alllowercase1", false},
		{"ALLUPPERCASE1", false},
		{"NoDigitsHere", false},
	}
	for _, tt := range tests {
		if err := validatePassword(tt.pw); (err == nil) != tt.ok {
			t.Errorf("validatePassword(%q) = %v, want ok=%v", tt.pw, err, tt.ok)
		}
	}
}

func TestValidateCURP(t *testing.T) {
	tests := []struct {
		curp string
		ok   bool
	}{
		{"GODE561231HDFRRN09", true},
		{"GODE561231HDFRRN0", false},
		{"GODE561231HDFRRN091", false},
		{"GODE561231HDFRRN0Ñ", false},
		{"gode561231hdfrrn09", false},
	}
	for _, tt := range tests {
		if err := validateCURP(tt.curp); (err == nil) != tt.ok {
			t.Errorf("validateCURP(%q) = %v, want ok=%v", tt.curp, err, tt.ok)
		}
	}
}

func TestErrorCodeStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{CodeInvalidInput, 400},
		{CodeInvalidCredentials, 401},
		{CodeCSRFMissing, 403},
		{CodeWrongRole, 403},
		{CodeDuplicateIdentity, 409},
		{CodeRateLimited, 429},
		{CodePersistenceError, 500},
		{"SOMETHING_ELSE", 500},
	}
	for _, tt := range tests {
		if got := tt.code.Status(); got != tt.want {
			t.Errorf("%s.Status() = %d, want %d", tt.code, got, tt.want)
		}
	}
}
