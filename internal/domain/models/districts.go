// internal/domain/models/districts.go
package models

import "strings"

// AllBihar targets every district.
const AllBihar = "All Bihar"

// Districts lists the districts of Bihar in display order.
var Districts = []string{
	"Araria", "Arwal", "Aurangabad", "Banka", "Begusarai", "Bhagalpur", "Bhojpur", "Buxar",
	"Darbhanga", "East Champaran", "Gaya", "Gopalganj", "Jamui", "Jehanabad", "Kaimur",
	"Katihar", "Khagaria", "Kishanganj", "Lakhisarai", "Madhepura", "Madhubani", "Munger",
	"Muzaffarpur", "Nalanda", "Nawada", "Patna", "Purnia", "Rohtas", "Saharsa", "Samastipur",
	"Saran", "Sheikhpura", "Sheohar", "Sitamarhi", "Siwan", "Supaul", "Vaishali", "West Champaran",
}

var districtIndex = func() map[string]string {
	m := make(map[string]string, len(Districts))
	for _, d := range Districts {
		m[strings.ToLower(d)] = d
	}
	return m
}()

// CanonicalDistrict returns the display form of d (case-insensitive match)
// and whether it is a known district. The AllBihar sentinel is not a district.
func CanonicalDistrict(d string) (string, bool) {
	c, ok := districtIndex[strings.ToLower(strings.TrimSpace(d))]
	return c, ok
}

// IsMeetingTarget reports whether d can be a meeting's target.
func IsMeetingTarget(d string) bool {
	if d == AllBihar {
		return true
	}
	_, ok := CanonicalDistrict(d)
	return ok
}
