// Package digest implements digest.*: hashing and encoding
// helpers built directly on stdlib crypto/hash packages. No example repo in
// the pack wires a third-party hashing library for general-purpose digests
// (cespare/xxhash instead backs director key hashing in vclcontext, a
// distinct concern), so this one stays on stdlib.
package digest

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

func HashMD5(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func HashSHA1(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func HashSHA256(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// HMACSHA256Hex implements digest.hmac_sha256(key, s), hex-encoded.
func HMACSHA256Hex(key, s string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(s))
	return hex.EncodeToString(mac.Sum(nil))
}

// Base64 / Base64URL implement digest.base64/base64url encode/decode pairs.
func Base64Encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func Base64Decode(s string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func Base64URLEncode(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func Base64URLDecode(s string) (string, error) {
	b, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// HexEncode / HexDecode implement digest.hex_encode/hex_decode.
func HexEncode(s string) string {
	return hex.EncodeToString([]byte(s))
}

func HexDecode(s string) (string, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// SecureIsEqual implements digest.secure_is_equal(a, b): constant-time
// comparison, guarding against timing attacks on token/signature checks.
func SecureIsEqual(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
