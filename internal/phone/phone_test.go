package phone

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		ok     bool
		reason string
	}{
		{"empty", "", false, "Phone number is required"},
		{"missing prefix", "9876543210", false, "Phone number must start with +91"},
		{"too short", "+91987654321", false, "Phone number must be +91 followed by 10 digits"},
		{"too long", "+9198765432101", false, "Phone number must be +91 followed by 10 digits"},
		{"landline leading digit", "+915876543210", false, "Invalid mobile number"},
		{"valid", "+919876543210", true, ""},
		{"valid with spaces", "+91 98765 43210", true, ""},
		{"valid with dashes", "+91-6123-456-789", true, ""},
		{"inner plus dropped", "+91+9876543210", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := Validate(tt.raw)
			if ok != tt.ok {
				t.Errorf("expected ok=%v, got %v (reason %q)", tt.ok, ok, reason)
			}
			if reason != tt.reason {
				t.Errorf("expected reason %q, got %q", tt.reason, reason)
			}
		})
	}
}

func TestClean(t *testing.T) {
	tests := map[string]string{
		"+91 98765 43210":   "+919876543210",
		"(+91) 98765-43210": "+919876543210",
		"91+98765":          "9198765",
		"  +919876543210  ": "+919876543210",
		"abc":               "",
	}
	for raw, want := range tests {
		if got := Clean(raw); got != want {
			t.Errorf("Clean(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestCustomRules(t *testing.T) {
	us := Rules{Prefix: "+1", SubscriberDigits: 10, MobileLeading: "23456789"}
	if ok, reason := us.Validate("+1 415 555 0100"); !ok {
		t.Errorf("expected valid US number, got %q", reason)
	}
	if ok, _ := us.Validate("+1 015 555 0100"); ok {
		t.Error("expected leading zero to be rejected")
	}
}
