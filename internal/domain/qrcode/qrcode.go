// Package qrcode generates and validates the purchase voucher codes, formatted as
// FC-<faction3>-<user8>-<timestamp13>-<random6>.
package qrcode

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cardcon-lab/backend/pkg/crypto"
	"github.com/cardcon-lab/backend/pkg/errorx"
	goqrcode "github.com/skip2/go-qrcode"
)

const (
	Prefix = "FC"

	factionPartLen = 3
	userPartLen    = 8
	randomPartLen  = 6
	padding        = "X"
)

var codeRegex = regexp.MustCompile(`^FC-[A-Z0-9]{3}-[A-Z0-9]{8}-[0-9]{13}-[A-Z0-9]{6}$`)

// Generate builds a new code. The faction and user parts are the first alphanumeric characters
// of the ids, uppercased and right-padded with X.
func Generate(factionID, userID string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%s-%013d-%s",
		Prefix,
		part(factionID, factionPartLen),
		part(userID, userPartLen),
		now.UnixMilli(),
		crypto.GenerateRandomString(crypto.UpperAlphanumeric, randomPartLen),
	)
}

func part(s string, n int) string {
	var b strings.Builder
	for _, c := range strings.ToUpper(s) {
		if b.Len() == n {
			break
		}

		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		}
	}

	for b.Len() < n {
		b.WriteString(padding)
	}

	return b.String()
}

// LooksLikeCode reports whether s is meant to be a code rather than an id.
func LooksLikeCode(s string) bool {
	return strings.HasPrefix(s, Prefix+"-")
}

func Validate(code string) error {
	if !codeRegex.MatchString(code) {
		return errorx.New(errorx.BadRequest, "Invalid QR code format")
	}

	return nil
}

// Image encodes the code as a PNG QR image of size x size pixels.
func Image(code string, size int) ([]byte, error) {
	return goqrcode.Encode(code, goqrcode.Medium, size)
}
