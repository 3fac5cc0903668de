package address

import "testing"

func TestEncodeParseRoundTrip(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	encoded, err := Encode(Mainnet, payload)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	addr, err := Parse(encoded)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if addr.Prefix != Mainnet {
		t.Fatalf("expected prefix %q, got %q", Mainnet, addr.Prefix)
	}
	if len(addr.Payload) != len(payload) {
		t.Fatalf("expected payload length %d, got %d", len(payload), len(addr.Payload))
	}
	for i := range payload {
		if addr.Payload[i] != payload[i] {
			t.Fatalf("payload byte %d mismatch: got %d want %d", i, addr.Payload[i], payload[i])
		}
	}
}

func TestParseRejectsMissingSeparator(t *testing.T) {
	if _, err := Parse("pyrinqpzry9x8gf2tv"); err == nil {
		t.Fatalf("expected an error for an address with no ':' separator")
	}
}

func TestParseRejectsBadChecksum(t *testing.T) {
	encoded, err := Encode(Mainnet, []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	corrupted := []byte(encoded)
	corrupted[len(corrupted)-1] = flipChar(corrupted[len(corrupted)-1])
	if _, err := Parse(string(corrupted)); err == nil {
		t.Fatalf("expected a checksum error for a corrupted address")
	}
}

func flipChar(c byte) byte {
	for i := 0; i < len(charset); i++ {
		if charset[i] != c {
			return charset[i]
		}
	}
	return c
}

func TestValid(t *testing.T) {
	encoded, _ := Encode(Testnet, []byte{9, 9, 9})
	if !Valid(encoded) {
		t.Fatalf("expected a freshly encoded address to be valid")
	}
	if Valid("not-an-address") {
		t.Fatalf("expected a malformed string to be invalid")
	}
}

func TestSameNetwork(t *testing.T) {
	a, _ := Encode(Mainnet, []byte{1})
	b, _ := Encode(Mainnet, []byte{2})
	c, _ := Encode(Testnet, []byte{1})

	if !SameNetwork(a, b) {
		t.Fatalf("expected two mainnet addresses to share a network")
	}
	if SameNetwork(a, c) {
		t.Fatalf("expected mainnet and testnet addresses to differ in network")
	}
}
