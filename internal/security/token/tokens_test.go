package tokens

import "testing"

func TestGenerateOpaqueToken_Distinct(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		tk, err := GenerateOpaqueToken(32)
		if err != nil {
			t.Fatalf("GenerateOpaqueToken err: %v", err)
		}
		if tk == "" {
			t.Fatal("token vacío")
		}
		if _, dup := seen[tk]; dup {
			t.Fatalf("token repetido en la iteración %d", i)
		}
		seen[tk] = struct{}{}
	}
}

func TestGenerateOpaqueToken_Length(t *testing.T) {
	tk, err := GenerateOpaqueToken(32)
	if err != nil {
		t.Fatal(err)
	}
	// 32 bytes -> 43 chars en base64url sin padding
	if len(tk) != 43 {
		t.Fatalf("longitud inesperada: %d (%q)", len(tk), tk)
	}
}

func TestSHA256Base64URL_Stable(t *testing.T) {
	a := SHA256Base64URL("refresh-token-claro")
	b := SHA256Base64URL("refresh-token-claro")
	if a != b {
		t.Fatal("el hash no es determinístico")
	}
	if a == SHA256Base64URL("otro-token") {
		t.Fatal("hashes de entradas distintas colisionan")
	}
	if a == "refresh-token-claro" {
		t.Fatal("el hash devolvió el claro")
	}
}
