package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kirillkom/commerce-reconciler/internal/core/normalize"
)

// Facet is one identity-bearing attribute of a record: a stable cluster key
// plus the canonical id this facet would mint if it ends up the best one in
// its cluster. Lower priority wins; only facets of the same entity ever meet
// in a cluster.
type Facet struct {
	Priority int
	Key      string
	ID       string
}

const (
	priEmail = iota
	priSourceID
	priNumericAlias
	priNamePhone
	priNamePostal
	priName
)

const (
	customerPrefix = "CUST_"
	productPrefix  = "PROD_"
	refPadWidth    = 4
)

var digitsOnly = regexp.MustCompile(`\D`)

func hashID(prefix, key string) string {
	sum := sha256.Sum256([]byte(key))
	return prefix + strings.ToUpper(hex.EncodeToString(sum[:5]))
}

func foldKey(s string) string {
	return normalize.FoldAccents(strings.ToLower(normalize.CleanString(s, normalize.CaseNone)))
}

// CanonicalizeCustomerRef normalizes a raw customer reference into canonical
// id form: CLI_ maps onto CUST_, bare numerics gain the CUST_ prefix
// zero-padded to four digits, already-prefixed and non-numeric refs pass
// through uppercased. Empty in, empty out.
func CanonicalizeCustomerRef(raw string) string {
	ref := strings.ToUpper(strings.TrimSpace(raw))
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "CLI_") {
		ref = customerPrefix + strings.TrimPrefix(ref, "CLI_")
	}
	if strings.HasPrefix(ref, customerPrefix) {
		return ref
	}
	if n, ok := numericRef(ref); ok {
		return customerPrefix + fmt.Sprintf("%0*d", refPadWidth, n)
	}
	return ref
}

// CanonicalizeProductRef uppercases a raw product reference verbatim
// (sources key products by arbitrary SKU schemes, so the cleaned ref is the
// canonical id) and extracts the bare numeric part that older order feeds
// use on its own: ITM_0007, "0007" and "7" all alias the same product.
func CanonicalizeProductRef(raw string) (id string, numeric string) {
	ref := strings.ToUpper(strings.TrimSpace(raw))
	if ref == "" {
		return "", ""
	}
	if digits := digitsOnly.ReplaceAllString(ref, ""); digits != "" {
		if n, err := strconv.Atoi(digits); err == nil {
			numeric = strconv.Itoa(n)
		}
	}
	return ref, numeric
}

func numericRef(ref string) (int, bool) {
	f, err := strconv.ParseFloat(ref, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return int(f), true
}

func EmailFacet(email string) Facet {
	key := "email:" + foldKey(email)
	return Facet{Priority: priEmail, Key: key, ID: hashID(customerPrefix, key)}
}

func CustomerSourceFacet(canonicalID string) Facet {
	return Facet{Priority: priSourceID, Key: "src:" + canonicalID, ID: canonicalID}
}

func NamePhoneFacet(name, phone string) Facet {
	key := "np:" + foldKey(name) + "|" + digitsOnly.ReplaceAllString(phone, "")
	return Facet{Priority: priNamePhone, Key: key, ID: hashID(customerPrefix, key)}
}

func NamePostalFacet(name, postal string) Facet {
	key := "npc:" + foldKey(name) + "|" + strings.ToUpper(strings.TrimSpace(postal))
	return Facet{Priority: priNamePostal, Key: key, ID: hashID(customerPrefix, key)}
}

func ProductSourceFacet(canonicalID string) Facet {
	return Facet{Priority: priSourceID, Key: "psrc:" + canonicalID, ID: canonicalID}
}

// ProductNumericFacet aliases the digit-only form of a source id to the same
// canonical id as its source facet.
func ProductNumericFacet(numeric, canonicalID string) Facet {
	return Facet{Priority: priNumericAlias, Key: "pnum:" + numeric, ID: canonicalID}
}

func ProductNameFacet(name string) Facet {
	key := "pname:" + foldKey(name)
	return Facet{Priority: priName, Key: key, ID: hashID(productPrefix, key)}
}
