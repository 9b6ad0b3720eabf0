package contract

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"math"

	"github.com/lernwerk/backoffice/core"
)

// Link tokens make contract identifiers safe for public URLs: the id is
// XORed with a secret-derived keystream and sealed with a truncated HMAC
// tag, so a holder of one link can neither read the id nor mint a link for
// a neighboring contract. The transform is reversible, not a hash.

const (
	tokenIDLen  = 8
	tokenTagLen = 16
	tokenLen    = tokenIDLen + tokenTagLen
)

var (
	tokenSalt = []byte("backoffice.core.contract.token")
	secretKey []byte // overridable in tests; defaults to core.Conf.SecretKey

	// ErrInvalidLink covers every malformed, forged or perturbed token.
	ErrInvalidLink = errors.New("invalid link")
)

func signingKey() []byte {
	if len(secretKey) > 0 {
		return secretKey
	}
	return []byte(core.Conf.SecretKey)
}

func keystream() [tokenIDLen]byte {
	h := hmac.New(sha256.New, signingKey())
	h.Write(tokenSalt)
	var pad [tokenIDLen]byte
	copy(pad[:], h.Sum(nil))
	return pad
}

func seal(obf []byte) []byte {
	h := hmac.New(sha256.New, signingKey())
	h.Write(tokenSalt)
	h.Write(obf)
	return h.Sum(nil)[:tokenTagLen]
}

// EncodeID encodes a contract id into an opaque URL-safe token.
func EncodeID(id int) (string, error) {
	if id <= 0 {
		return "", ErrInvalidLink
	}

	var buf [tokenLen]byte
	binary.BigEndian.PutUint64(buf[:tokenIDLen], uint64(id))
	pad := keystream()
	for i := 0; i < tokenIDLen; i++ {
		buf[i] ^= pad[i]
	}
	copy(buf[tokenIDLen:], seal(buf[:tokenIDLen]))
	return base64.RawURLEncoding.EncodeToString(buf[:]), nil
}

// DecodeID reverses EncodeID. Any input not produced by EncodeID under the
// current key fails with ErrInvalidLink; invalid input never decodes to a
// plausible identifier.
func DecodeID(token string) (int, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) != tokenLen {
		return 0, ErrInvalidLink
	}

	obf := raw[:tokenIDLen]
	if subtle.ConstantTimeCompare(raw[tokenIDLen:], seal(obf)) == 0 {
		return 0, ErrInvalidLink
	}

	pad := keystream()
	var buf [tokenIDLen]byte
	for i := 0; i < tokenIDLen; i++ {
		buf[i] = obf[i] ^ pad[i]
	}
	id := binary.BigEndian.Uint64(buf[:])
	if id == 0 || id > math.MaxInt32 {
		return 0, ErrInvalidLink
	}
	return int(id), nil
}
