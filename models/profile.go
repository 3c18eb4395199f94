package models

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/google/uuid"

	"selfcheck/common"
)

// Profile is the write-once personal data of a user. Values are only built
// through NewProfile, so a Profile with a blank name or a non-positive
// weight or height cannot exist.
type Profile struct {
	userID    uuid.UUID
	fullName  string
	birthDate string
	weight    *float64
	height    *float64
}

func NewProfile(userID uuid.UUID, fullName, birthDate string, weight, height *float64) (*Profile, error) {
	fullName = strings.TrimSpace(fullName)
	birthDate = strings.TrimSpace(birthDate)

	if fullName == "" || birthDate == "" {
		return nil, common.Validation("full name and birth date are required")
	}
	if !validMeasure(weight) {
		return nil, common.Validation("weight must be a positive number")
	}
	if !validMeasure(height) {
		return nil, common.Validation("height must be a positive number")
	}

	return &Profile{
		userID:    userID,
		fullName:  fullName,
		birthDate: birthDate,
		weight:    weight,
		height:    height,
	}, nil
}

func validMeasure(v *float64) bool {
	if v == nil {
		return true
	}
	return !math.IsNaN(*v) && !math.IsInf(*v, 0) && *v > 0
}

func (p *Profile) UserID() uuid.UUID { return p.userID }
func (p *Profile) FullName() string { return p.fullName }
func (p *Profile) BirthDate() string { return p.birthDate }
func (p *Profile) Weight() *float64 { return p.weight }
func (p *Profile) Height() *float64 { return p.height }

// View returns the wire representation of p.
func (p *Profile) View() ProfileView {
	return ProfileView{
		FullName:  &p.fullName,
		BirthDate: &p.birthDate,
		Weight:    p.weight,
		Height:    p.height,
	}
}

func (p *Profile) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.View())
}

// ProfileView is what user-info returns. Every field is null when the user
// has not saved a profile yet.
type ProfileView struct {
	FullName  *string  `json:"nome_completo"`
	BirthDate *string  `json:"nascimento"`
	Weight    *float64 `json:"peso"`
	Height    *float64 `json:"altura"`
}
