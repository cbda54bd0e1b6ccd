package password

import (
	"errors"
	"strings"
	"testing"
)

var cheap = Params{Memory: minMemoryKB, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 16}

func TestHashVerifyRoundTrip(t *testing.T) {
	h, err := HashWith("correct horse", cheap)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(h, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected encoding %q", h)
	}
	ok, err := Verify("correct horse", h)
	if err != nil || !ok {
		t.Fatalf("verify = %v, %v", ok, err)
	}
	ok, err = Verify("wrong horse", h)
	if err != nil || ok {
		t.Fatalf("wrong password verify = %v, %v", ok, err)
	}
}

func TestHashUsesFreshSalt(t *testing.T) {
	a, _ := HashWith("pw", cheap)
	b, _ := HashWith("pw", cheap)
	if a == b {
		t.Fatalf("two hashes of the same password should differ")
	}
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	if _, err := HashWith("", cheap); !errors.Is(err, ErrEmpty) {
		t.Fatalf("err = %v, want ErrEmpty", err)
	}
}

func TestVerifyRejectsMalformedHashes(t *testing.T) {
	for _, h := range []string{
		"",
		"plain",
		"$bcrypt$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$short$aGFzaA",
	} {
		if _, err := Verify("pw", h); !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("Verify(%q) err = %v, want ErrInvalidFormat", h, err)
		}
	}
}
