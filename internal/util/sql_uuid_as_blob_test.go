package util

import (
	"bytes"
	"testing"
)

func TestNullUUIDAsBlobValue(t *testing.T) {
	id := NewUUIDAsBlob()

	v, err := NullUUIDAsBlob{UUID: id, Valid: true}.Value()
	if err != nil {
		t.Fatal(err)
	}

	// The driver only accepts primitive types, returning the wrapper struct
	// here fails every bind of a non-null value.
	buf, ok := v.([]byte)
	if !ok {
		t.Fatalf("expected a []byte, got %T", v)
	}

	raw := id.UUID()
	if !bytes.Equal(buf, raw[:]) {
		t.Errorf("expected % x, got % x", raw[:], buf)
	}

	v, err = NullUUIDAsBlob{}.Value()
	if err != nil {
		t.Fatal(err)
	}
	if v != nil {
		t.Errorf("expected nil for the null value, got %v", v)
	}
}
