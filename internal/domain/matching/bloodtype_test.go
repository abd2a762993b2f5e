package matching

import (
	"reflect"
	"testing"
)

// expectedDonorsFor is the donor table from §4.4 inverted by hand: for each
// recipient, every donor type that can serve them, in canonical order.
var expectedDonorsFor = map[string][]string{
	"O-":  {"O-"},
	"O+":  {"O-", "O+"},
	"A-":  {"O-", "A-"},
	"A+":  {"O-", "O+", "A-", "A+"},
	"B-":  {"O-", "B-"},
	"B+":  {"O-", "O+", "B-", "B+"},
	"AB-": {"O-", "A-", "B-", "AB-"},
	"AB+": {"O-", "O+", "A-", "A+", "B-", "B+", "AB-", "AB+"},
}

func TestCompatibilityGrid(t *testing.T) {
	for _, recipient := range bloodTypes {
		compatible := map[string]bool{}
		for _, d := range expectedDonorsFor[recipient] {
			compatible[d] = true
		}
		for _, donorType := range bloodTypes {
			got := IsCompatible(recipient, donorType)
			if got != compatible[donorType] {
				t.Errorf("IsCompatible(%s, %s) = %v, want %v", recipient, donorType, got, compatible[donorType])
			}
		}
	}
}

func TestUniversalDonorAndRecipient(t *testing.T) {
	for _, recipient := range bloodTypes {
		if !IsCompatible(recipient, "O-") {
			t.Errorf("O- must be able to give to %s", recipient)
		}
	}
	for _, donorType := range bloodTypes {
		if !IsCompatible("AB+", donorType) {
			t.Errorf("AB+ must be able to receive from %s", donorType)
		}
	}
}

func TestCompatibleDonorTypes(t *testing.T) {
	for recipient, want := range expectedDonorsFor {
		got := CompatibleDonorTypes(recipient)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("CompatibleDonorTypes(%s) = %v, want %v", recipient, got, want)
		}
	}
	if got := CompatibleDonorTypes("C+"); got != nil {
		t.Errorf("unknown type must return nil, got %v", got)
	}
}

func TestKnownBloodType(t *testing.T) {
	for _, bt := range bloodTypes {
		if !KnownBloodType(bt) {
			t.Errorf("%s should be known", bt)
		}
	}
	for _, bad := range []string{"", "O", "ab+", "C-"} {
		if KnownBloodType(bad) {
			t.Errorf("%q should not be known", bad)
		}
	}
}
