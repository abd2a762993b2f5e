package matching

// donorGivesTo maps a donor blood type to the recipient types it can serve.
// One-directional: O- gives to everyone, AB+ receives from everyone.
var donorGivesTo = map[string][]string{
	"O-":  {"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"},
	"O+":  {"A+", "B+", "AB+", "O+"},
	"A-":  {"A+", "A-", "AB+", "AB-"},
	"A+":  {"A+", "AB+"},
	"B-":  {"B+", "B-", "AB+", "AB-"},
	"B+":  {"B+", "AB+"},
	"AB-": {"AB+", "AB-"},
	"AB+": {"AB+"},
}

// bloodTypes fixes iteration order so inverted lookups are deterministic.
var bloodTypes = []string{"O-", "O+", "A-", "A+", "B-", "B+", "AB-", "AB+"}

// KnownBloodType reports whether s is one of the eight ABO/Rh types.
func KnownBloodType(s string) bool {
	_, ok := donorGivesTo[s]
	return ok
}

// IsCompatible reports whether a donor of type donorType can give to a
// recipient of type recipientType.
func IsCompatible(recipientType, donorType string) bool {
	for _, r := range donorGivesTo[donorType] {
		if r == recipientType {
			return true
		}
	}
	return false
}

// CompatibleDonorTypes inverts the donor table: all donor types whose
// recipient set contains the requested type. Returns nil for an unknown type.
func CompatibleDonorTypes(recipientType string) []string {
	if !KnownBloodType(recipientType) {
		return nil
	}
	var out []string
	for _, dt := range bloodTypes {
		if IsCompatible(recipientType, dt) {
			out = append(out, dt)
		}
	}
	return out
}
