package minerkey_test

import (
	"testing"

	"github.com/ghostdag-network/consensus/internal/minerkey"
)

func TestGenerateProducesAUsableScriptPublicKey(t *testing.T) {
	key, err := minerkey.Generate()
	if err != nil {
		t.Fatalf("Generate: %+v", err)
	}
	if len(key.ScriptPublicKey()) == 0 {
		t.Fatalf("expected a non-empty serialized public key")
	}
}

func TestGenerateProducesDistinctKeys(t *testing.T) {
	first, err := minerkey.Generate()
	if err != nil {
		t.Fatalf("Generate: %+v", err)
	}
	second, err := minerkey.Generate()
	if err != nil {
		t.Fatalf("Generate: %+v", err)
	}
	if string(first.ScriptPublicKey()) == string(second.ScriptPublicKey()) {
		t.Fatalf("expected two generated keys to differ")
	}
}

func TestLoadRejectsInvalidHex(t *testing.T) {
	if _, err := minerkey.Load("not-hex"); err == nil {
		t.Fatalf("expected an error loading invalid hex")
	}
}

func TestLoadRejectsWrongLengthKey(t *testing.T) {
	if _, err := minerkey.Load("aabbcc"); err == nil {
		t.Fatalf("expected an error loading a key of the wrong length")
	}
}
