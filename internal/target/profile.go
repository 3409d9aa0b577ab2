// Package target describes shader model profiles and pipeline stages.
package target

import (
	"fmt"
	"strings"
)

// Profile is a shader model level. Ordering is meaningful: a feature
// available at sm5_0 is available at every later profile.
type Profile uint8

const (
	SM4_0 Profile = iota
	SM5_0
	SM5_1
	SM6_0
	SM6_2
)

// Default is used when a request names no profile.
const Default = SM5_0

var profileNames = [...]string{"sm4_0", "sm5_0", "sm5_1", "sm6_0", "sm6_2"}

func (p Profile) String() string {
	if int(p) < len(profileNames) {
		return profileNames[p]
	}
	return fmt.Sprintf("Profile(%d)", p)
}

// ParseProfile accepts "sm5_0", "5_0" and "5.0" spellings.
func ParseProfile(s string) (Profile, error) {
	if s == "" {
		return Default, nil
	}
	norm := strings.ToLower(strings.ReplaceAll(s, ".", "_"))
	if !strings.HasPrefix(norm, "sm") {
		norm = "sm" + norm
	}
	for i, name := range profileNames {
		if name == norm {
			return Profile(i), nil
		}
	}
	return Default, fmt.Errorf("unknown profile %q (want one of %s)", s, strings.Join(profileNames[:], ", "))
}

// SPIRVVersion is the version word written into the module header.
func (p Profile) SPIRVVersion() uint32 {
	if p >= SM6_0 {
		return 0x00010300
	}
	return 0x00010000
}

// Feature is a capability gated by profile.
type Feature uint8

const (
	FeatureDouble Feature = iota
	FeatureCompute
	FeatureInt64
	FeatureWave
	FeatureHalf
)

var featureMin = map[Feature]Profile{
	FeatureDouble:  SM5_0,
	FeatureCompute: SM5_0,
	FeatureInt64:   SM6_0,
	FeatureWave:    SM6_0,
	FeatureHalf:    SM6_2,
}

var featureNames = map[Feature]string{
	FeatureDouble:  "double precision",
	FeatureCompute: "compute shaders",
	FeatureInt64:   "64-bit integers",
	FeatureWave:    "wave intrinsics",
	FeatureHalf:    "16-bit floats",
}

func (f Feature) String() string { return featureNames[f] }

// MinProfile returns the first profile supporting f.
func (f Feature) MinProfile() Profile { return featureMin[f] }

// Supports reports whether f is available at p.
func (p Profile) Supports(f Feature) bool { return p >= featureMin[f] }
