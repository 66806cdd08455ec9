package license

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/rookgm/licensed/internal/models"
)

// length of machine id prefix included in the key
const machineHashLen = 8

// token used instead of expiry date for perpetual licenses
const perpetualToken = "FOREVER"

// expiry date layout
const expiryLayout = "20060102"

// Generator builds signed license keys
type Generator struct {
	priv ed25519.PrivateKey
}

// NewGenerator creates new Generator instance. The private key may be nil
// when signing is not configured, Generate will then fail with
// models.ErrSigningKeyMissing.
func NewGenerator(priv ed25519.PrivateKey) *Generator {
	return &Generator{priv: priv}
}

// Generate builds license key for machine id and license type at given time.
// The key has form type-machineHash-expiry-signature where signature is
// computed over type-machineHash-expiry.
func (g *Generator) Generate(machineID, typ string, now time.Time) (string, error) {
	if len(g.priv) == 0 {
		return "", models.ErrSigningKeyMissing
	}
	if !models.ValidLicenseType(typ) {
		return "", models.ErrInvalidLicenseType
	}
	if len(machineID) < machineHashLen {
		return "", models.ErrInvalidMachineID
	}

	machineHash := strings.ToUpper(machineID[:machineHashLen])

	var expiry string
	switch typ {
	case models.LicenseTypeMonthly:
		expiry = now.AddDate(0, 1, 0).Format(expiryLayout)
	case models.LicenseTypeYearly:
		expiry = now.AddDate(1, 0, 0).Format(expiryLayout)
	case models.LicenseTypePerpetual:
		expiry = perpetualToken
	}

	payload := fmt.Sprintf("%s-%s-%s", typ, machineHash, expiry)
	sig := ed25519.Sign(g.priv, []byte(payload))

	return payload + "-" + base64.StdEncoding.EncodeToString(sig), nil
}

// Verify checks license key signature against public key. The signed
// payload is everything before the last separator: machine hashes may
// contain dashes, the base64 signature never does.
func Verify(pub ed25519.PublicKey, key string) bool {
	idx := strings.LastIndex(key, "-")
	if idx <= 0 {
		return false
	}

	sig, err := base64.StdEncoding.DecodeString(key[idx+1:])
	if err != nil {
		return false
	}

	return ed25519.Verify(pub, []byte(key[:idx]), sig)
}
