package password

import (
	"strings"
	"testing"
)

// Params chicos para que los tests no quemen CPU.
var fast = Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}

func TestHashVerify_RoundTrip(t *testing.T) {
	phc, err := Hash(fast, "s3cretpass")
	if err != nil {
		t.Fatalf("Hash err: %v", err)
	}
	if !strings.HasPrefix(phc, "$argon2id$v=19$") {
		t.Fatalf("PHC inesperado: %q", phc)
	}
	if !Verify("s3cretpass", phc) {
		t.Fatal("Verify rechazó la password correcta")
	}
	if Verify("otra", phc) {
		t.Fatal("Verify aceptó una password incorrecta")
	}
}

func TestHash_SaltsDiffer(t *testing.T) {
	a, err := Hash(fast, "mismapass")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Hash(fast, "mismapass")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("dos hashes de la misma password salieron idénticos (salt repetido?)")
	}
	if !Verify("mismapass", a) || !Verify("mismapass", b) {
		t.Fatal("Verify falló sobre hashes válidos")
	}
}

func TestHash_EmptyPassword(t *testing.T) {
	if _, err := Hash(fast, ""); err == nil {
		t.Fatal("Hash aceptó password vacía")
	}
}

func TestVerify_MalformedPHC(t *testing.T) {
	for _, phc := range []string{
		"",
		"no-es-un-phc",
		"$argon2i$v=19$m=8,t=1,p=1$c2FsdA$aGFzaA",  // variante equivocada
		"$argon2id$v=18$m=8,t=1,p=1$c2FsdA$aGFzaA", // versión equivocada
		"$argon2id$v=19$m=8,t=1,p=1$!!!$aGFzaA",    // salt no-base64
		"$argon2id$v=19$m=8,t=1,p=1$c2FsdA",        // faltan segmentos
	} {
		if Verify("loquesea", phc) {
			t.Fatalf("Verify aceptó PHC malformado: %q", phc)
		}
	}
}
