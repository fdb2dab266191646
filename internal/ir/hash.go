package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Hash domains. The version suffix leaves room to change the encoding.
const (
	DomainModule = "optimal/module/v1"
	DomainTerm   = "optimal/term/v1"
)

// hashWithDomain computes SHA256(domain || 0x00 || data) as lowercase hex.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ModuleHash is the content address of a module: its name, the hashes of
// the modules it imports (order preserved) and the printed form of every
// definition keyed by qualified name.
func ModuleHash(name string, imports []string, defs map[string]string) (string, error) {
	d := make(Object, len(defs))
	for k, src := range defs {
		d[k] = String(src)
	}
	obj := Object{
		"name":    String(name),
		"imports": Strings(imports...),
		"defs":    d,
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("ModuleHash: %w", err)
	}
	return hashWithDomain(DomainModule, canonical), nil
}

// TermHash is the content address of a term already converted to a Value.
func TermHash(v Value) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("TermHash: %w", err)
	}
	return hashWithDomain(DomainTerm, canonical), nil
}

// MustModuleHash is like ModuleHash but panics on error.
func MustModuleHash(name string, imports []string, defs map[string]string) string {
	h, err := ModuleHash(name, imports, defs)
	if err != nil {
		panic(err)
	}
	return h
}

// ShortHash abbreviates a hash for display.
func ShortHash(h string) string {
	if len(h) <= 12 {
		return h
	}
	return h[:12]
}
