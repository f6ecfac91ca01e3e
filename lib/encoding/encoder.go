// Package encoding serializes compiled patch programs.
//
// A Dump captures everything about a Compiled that does not depend on the
// driver: the program, the expression sources, the event names and the
// shape of the fragment. Dumps are packed with msgpack, which makes them
// byte-for-byte reproducible, and can be signed so that a program listing
// handed around by the CLI can be checked for tampering.
package encoding

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pthm/hxview"
)

// Version is the dump format version.
const Version = 1

var (
	ErrInvalidFormat = errors.New("encoding: invalid format: missing signature")
	ErrSignature     = errors.New("encoding: signature verification failed")
	ErrVersion       = errors.New("encoding: unsupported dump version")
)

// Dump is the driver independent description of a Compiled.
type Dump struct {
	Version     int            `msgpack:"v"`
	Roots       int            `msgpack:"r"`
	Program     hxview.Program `msgpack:"p"`
	Expressions []string       `msgpack:"x,omitempty"`
	Events      []string       `msgpack:"e,omitempty"`
	Embeds      int            `msgpack:"m,omitempty"`
}

// NewDump describes c.
func NewDump(c *hxview.Compiled) *Dump {
	exprs := c.Expressions()
	d := &Dump{
		Version: Version,
		Roots:   len(c.Prototypes()),
		Program: c.Program(),
		Embeds:  c.Embeds(),
	}
	if events := c.Events(); len(events) > 0 {
		d.Events = events
	}
	if len(exprs) > 0 {
		d.Expressions = make([]string, len(exprs))
		for i, e := range exprs {
			d.Expressions[i] = e.String()
		}
	}
	return d
}

// Marshal packs the dump of c.
func Marshal(c *hxview.Compiled) ([]byte, error) {
	return msgpack.Marshal(NewDump(c))
}

// Unmarshal unpacks a dump produced by Marshal.
func Unmarshal(data []byte) (*Dump, error) {
	var d Dump
	if err := msgpack.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("encoding: unpack dump: %w", err)
	}
	if d.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, d.Version)
	}
	return &d, nil
}

// Fingerprint returns a short hex digest of the dump of c. Compiling the
// same template twice yields the same fingerprint.
func Fingerprint(c *hxview.Compiled) (string, error) {
	packed, err := Marshal(c)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(packed)
	return hex.EncodeToString(sum[:8]), nil
}

// Signer signs and verifies packed dumps with HMAC-SHA256.
type Signer struct {
	key []byte
}

// NewSigner returns a signer for key. Keys shorter than 32 bytes are
// stretched with SHA-256.
func NewSigner(key []byte) *Signer {
	if len(key) < 32 {
		h := sha256.Sum256(key)
		key = h[:]
	}
	return &Signer{key: key}
}

// Sign packs the dump of c and returns it as base64.signature.
func (s *Signer) Sign(c *hxview.Compiled) (string, error) {
	packed, err := Marshal(c)
	if err != nil {
		return "", err
	}
	return s.seal(packed), nil
}

// Verify checks the signature of a token produced by Sign and returns the
// dump it carries.
func (s *Signer) Verify(token string) (*Dump, error) {
	body, sig, ok := strings.Cut(token, ".")
	if !ok {
		return nil, ErrInvalidFormat
	}
	data, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("encoding: decode body: %w", err)
	}
	mac, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return nil, fmt.Errorf("encoding: decode signature: %w", err)
	}
	if !hmac.Equal(mac, s.mac(data)) {
		return nil, ErrSignature
	}
	return Unmarshal(data)
}

func (s *Signer) seal(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data) + "." +
		base64.RawURLEncoding.EncodeToString(s.mac(data))
}

// mac returns the first 16 bytes of the HMAC of data.
func (s *Signer) mac(data []byte) []byte {
	h := hmac.New(sha256.New, s.key)
	h.Write(data)
	return h.Sum(nil)[:16]
}
