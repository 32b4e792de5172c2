package models

// BloodGroups lists the accepted ABO/Rh values.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

func ValidBloodGroup(value string) bool {
	for _, g := range BloodGroups {
		if g == value {
			return true
		}
	}
	return false
}
