package domain

import "testing"

func strPtr(s string) *string { return &s }

func TestCreateUserRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateUserRequest
		wantErr bool
	}{
		{"valid", CreateUserRequest{Username: "gamer123", Email: "gamer123@example.com"}, false},
		{"valid with steam id", CreateUserRequest{Username: "gamer123", Email: "gamer123@example.com", SteamID: strPtr("76561198000000000")}, false},
		{"username too short", CreateUserRequest{Username: "ab", Email: "ab@example.com"}, true},
		{"username too long", CreateUserRequest{Username: string(make([]byte, 51)), Email: "x@example.com"}, true},
		{"missing email", CreateUserRequest{Username: "gamer123"}, true},
		{"email without domain", CreateUserRequest{Username: "gamer123", Email: "gamer123@"}, true},
		{"email without tld", CreateUserRequest{Username: "gamer123", Email: "gamer123@localhost"}, true},
		{"steam id too long", CreateUserRequest{Username: "gamer123", Email: "g@example.com", SteamID: strPtr(string(make([]byte, 101)))}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr && !IsValidationError(err) {
				t.Fatalf("error not classified as validation: %v", err)
			}
		})
	}
}

func TestCreateUserRequestValidateTrims(t *testing.T) {
	req := CreateUserRequest{Username: "  gamer123  ", Email: " gamer123@example.com "}
	if err := req.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Username != "gamer123" {
		t.Fatalf("username not trimmed: %q", req.Username)
	}
	if req.Email != "gamer123@example.com" {
		t.Fatalf("email not trimmed: %q", req.Email)
	}
}

func TestValidateAppID(t *testing.T) {
	for _, id := range []string{"1245623", "1", "0042"} {
		if err := ValidateAppID(id); err != nil {
			t.Fatalf("ValidateAppID(%q) = %v, want nil", id, err)
		}
	}
	for _, id := range []string{"", "abc", "12a", "-1", "1.5", " 12"} {
		if err := ValidateAppID(id); err == nil {
			t.Fatalf("ValidateAppID(%q) = nil, want error", id)
		}
	}
}

func TestParseFileType(t *testing.T) {
	for _, s := range []string{"json", "lua", "manifest", "vdf"} {
		ft, ok := ParseFileType(s)
		if !ok {
			t.Fatalf("ParseFileType(%q) not recognized", s)
		}
		if string(ft) != s {
			t.Fatalf("ParseFileType(%q) = %q", s, ft)
		}
	}
	for _, s := range []string{"", "exe", "JSON", "json "} {
		if _, ok := ParseFileType(s); ok {
			t.Fatalf("ParseFileType(%q) unexpectedly recognized", s)
		}
	}
}

func TestFileTypeExtension(t *testing.T) {
	tests := []struct {
		ft   FileType
		want string
	}{
		{FileTypeJSON, ".json"},
		{FileTypeLua, ".lua"},
		{FileTypeManifest, ".manifest"},
		{FileTypeVDF, ".vdf"},
		{FileType("exe"), ".txt"},
	}
	for _, tt := range tests {
		if got := tt.ft.Extension(); got != tt.want {
			t.Errorf("Extension(%q) = %q, want %q", tt.ft, got, tt.want)
		}
	}
}
