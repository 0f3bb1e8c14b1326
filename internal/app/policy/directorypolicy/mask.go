package directorypolicy

import (
	"github.com/dalemusser/sangathan/internal/domain/models"
)

// MemberView is the projection of a user record that leaves this package.
// Hidden fields are empty and omitted from JSON.
type MemberView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	FatherName   string `json:"father_name,omitempty"`
	Mobile       string `json:"mobile,omitempty"`
	District     string `json:"district"`
	Designation  string `json:"designation"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
	Role         string `json:"role"`
	Status       string `json:"status,omitempty"`
	Badge        string `json:"badge,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
}

// Mask projects target for viewer, blanking every field viewer may not see.
func Mask(viewer, target *models.User) MemberView {
	v := MemberView{
		ID:   target.ID.Hex(),
		Role: target.Role,
	}
	if IsFieldVisible(viewer, target, FieldName) {
		v.Name = target.Name
	}
	if IsFieldVisible(viewer, target, FieldDistrict) {
		v.District = target.District
	}
	if IsFieldVisible(viewer, target, FieldDesignation) {
		v.Designation = target.Designation
	}
	if IsFieldVisible(viewer, target, FieldJurisdiction) {
		v.Jurisdiction = target.Jurisdiction
	}
	if IsFieldVisible(viewer, target, FieldBadge) {
		v.Badge = target.Badge
	}
	if IsFieldVisible(viewer, target, FieldPhoto) {
		v.PhotoURL = target.PhotoURL
	}
	if IsFieldVisible(viewer, target, FieldFatherName) {
		v.FatherName = target.FatherName
	}
	if IsFieldVisible(viewer, target, FieldMobile) {
		v.Mobile = target.Mobile
	}
	if IsFieldVisible(viewer, target, FieldStatus) {
		v.Status = target.Status
	}
	return v
}

// MaskAll projects every target for viewer.
func MaskAll(viewer *models.User, targets []models.User) []MemberView {
	out := make([]MemberView, 0, len(targets))
	for i := range targets {
		out = append(out, Mask(viewer, &targets[i]))
	}
	return out
}
