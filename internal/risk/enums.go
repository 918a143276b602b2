package risk

import "strings"

// Tier is a discrete clinical severity category.
type Tier string

const (
	TierNone     Tier = ""
	TierLow      Tier = "low"
	TierMedium   Tier = "medium"
	TierHigh     Tier = "high"
	TierCritical Tier = "critical"
)

func (t Tier) Valid() bool {
	switch t {
	case TierLow, TierMedium, TierHigh, TierCritical:
		return true
	}
	return false
}

// order returns a sort key (lower = more severe).
func (t Tier) order() int {
	switch t {
	case TierCritical:
		return 0
	case TierHigh:
		return 1
	case TierMedium:
		return 2
	case TierLow:
		return 3
	default:
		return 4
	}
}

// AtLeast reports whether t is as severe as or more severe than other.
// TierNone is never at least anything.
func (t Tier) AtLeast(other Tier) bool {
	if !t.Valid() || !other.Valid() {
		return false
	}
	return t.order() <= other.order()
}

// ScaleID identifies one of the supported scoring scales.
type ScaleID string

const (
	ScaleQSOFA          ScaleID = "qsofa"
	ScaleCHA2DS2VASc    ScaleID = "cha2ds2vasc"
	ScaleGCS            ScaleID = "gcs"
	ScaleCURB65         ScaleID = "curb65"
	ScaleCockcroftGault ScaleID = "cockcroft_gault"
	ScaleMELD           ScaleID = "meld"
	ScaleHEART          ScaleID = "heart"
	ScaleNIHSS          ScaleID = "nihss"
)

// Scales lists every supported scale in a stable order.
var Scales = []ScaleID{
	ScaleQSOFA, ScaleCHA2DS2VASc, ScaleGCS, ScaleCURB65,
	ScaleCockcroftGault, ScaleMELD, ScaleHEART, ScaleNIHSS,
}

func (s ScaleID) Valid() bool {
	switch s {
	case ScaleQSOFA, ScaleCHA2DS2VASc, ScaleGCS, ScaleCURB65,
		ScaleCockcroftGault, ScaleMELD, ScaleHEART, ScaleNIHSS:
		return true
	}
	return false
}

var scaleAliases = map[string]ScaleID{
	"cha2ds2-vasc":    ScaleCHA2DS2VASc,
	"chads-vasc":      ScaleCHA2DS2VASc,
	"glasgow":         ScaleGCS,
	"curb-65":         ScaleCURB65,
	"cockcroft-gault": ScaleCockcroftGault,
	"cockcroftgault":  ScaleCockcroftGault,
	"crcl":            ScaleCockcroftGault,
}

// ParseScaleID resolves a scale name or common alias, case-insensitively.
func ParseScaleID(name string) (ScaleID, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if id := ScaleID(key); id.Valid() {
		return id, nil
	}
	if id, ok := scaleAliases[key]; ok {
		return id, nil
	}
	return "", &ConfigurationError{Scale: name, Reason: "unknown scale identifier"}
}

// Kind is the semantic type of an input field.
type Kind string

const (
	KindBool Kind = "bool"
	KindInt  Kind = "int"
	KindReal Kind = "real"
	KindEnum Kind = "enum"
)

func (k Kind) Valid() bool {
	switch k {
	case KindBool, KindInt, KindReal, KindEnum:
		return true
	}
	return false
}
