package user

import "testing"

func TestPasswordHashAndVerify(t *testing.T) {
	salt, err := GenerateSaltHex()
	if err != nil {
		t.Fatalf("GenerateSaltHex: %v", err)
	}

	hash, err := HashPassword("s3cret-pass", salt)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "" {
		t.Fatal("empty hash")
	}

	if !VerifyPassword("s3cret-pass", salt, hash) {
		t.Error("correct password rejected")
	}
	if VerifyPassword("wrong-pass", salt, hash) {
		t.Error("wrong password accepted")
	}

	salt2, _ := GenerateSaltHex()
	hash2, err := HashPassword("s3cret-pass", salt2)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash2 == hash {
		t.Error("same hash for different salts")
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	salt, _ := GenerateSaltHex()
	if _, err := HashPassword("", salt); err == nil {
		t.Error("expected error for empty password")
	}
	if _, err := HashPassword("pw", "not-hex!"); err == nil {
		t.Error("expected error for invalid salt")
	}
}

func TestRolesRoundTrip(t *testing.T) {
	u := User{Roles: RolesJoin([]string{"Driver", " Dispatcher "})}
	got := u.RolesSlice()
	if len(got) != 2 || got[0] != "Driver" || got[1] != "Dispatcher" {
		t.Errorf("unexpected roles: %v", got)
	}
	if (User{}).RolesSlice() != nil {
		t.Error("expected nil roles for empty field")
	}
}
