// Package uuidgen implements uuid.* on top of github.com/google/uuid,
// promoted here from an indirect teacher dependency into first-class use.
package uuidgen

import "github.com/google/uuid"

// DNSNamespace and URLNamespace are the standard RFC 4122 namespace UUIDs
// VCL's uuid.* built-ins reference by name.
var (
	DNSNamespace = uuid.NameSpaceDNS
	URLNamespace = uuid.NameSpaceURL
)

// V4 implements uuid.version4(): a random UUID.
func V4() string {
	return uuid.New().String()
}

// V3 implements uuid.version3(namespace, name): MD5-based, namespace given as
// a UUID string (e.g. "" falls back to the DNS namespace).
func V3(namespace, name string) string {
	ns := resolveNamespace(namespace)
	return uuid.NewMD5(ns, []byte(name)).String()
}

// V5 implements uuid.version5(namespace, name): SHA1-based.
func V5(namespace, name string) string {
	ns := resolveNamespace(namespace)
	return uuid.NewSHA1(ns, []byte(name)).String()
}

func resolveNamespace(namespace string) uuid.UUID {
	if namespace == "" {
		return DNSNamespace
	}
	if ns, err := uuid.Parse(namespace); err == nil {
		return ns
	}
	return DNSNamespace
}

// IsValid implements uuid.is_valid(s).
func IsValid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// Version backs uuid.is_version3/4/5: the UUID's version nibble, or -1 if s
// does not parse.
func Version(s string) int {
	id, err := uuid.Parse(s)
	if err != nil {
		return -1
	}
	return int(id.Version())
}

// Decode implements uuid.decode(s): parses any of uuid.Parse's accepted
// textual forms and returns the raw 16-byte sequence as a string. Reports
// false if s does not parse.
func Decode(s string) (string, bool) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return string(id[:]), true
}

// Encode implements uuid.encode(raw): the inverse of Decode, rendering a
// raw 16-byte sequence as the canonical 8-4-4-4-12 hex form. Reports false
// if raw isn't exactly 16 bytes.
func Encode(raw string) (string, bool) {
	if len(raw) != 16 {
		return "", false
	}
	var id uuid.UUID
	copy(id[:], raw)
	return id.String(), true
}
