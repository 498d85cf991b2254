package models

import (
	"encoding/json"
	"fmt"
)

// UnitType tags which kind of unit an analysis covers. The two variants carry
// different extra sections; expansion into a view matches exhaustively on the
// tag instead of sniffing fields at runtime.
type UnitType string

const (
	UnitTypeCharacter UnitType = "character"
	UnitTypeDragon    UnitType = "dragon"
)

// Valid reports whether t is a known unit type.
func (t UnitType) Valid() bool {
	return t == UnitTypeCharacter || t == UnitTypeDragon
}

// CharacterSections are the analysis sections specific to playable characters.
type CharacterSections struct {
	Forte                 string   `json:"forte"`
	SkillNotes            string   `json:"skill_notes"`
	CoAbilityNotes        string   `json:"co_ability_notes"`
	RecommendedWyrmprints []string `json:"recommended_wyrmprints"`
}

// DragonSections are the analysis sections specific to dragons.
type DragonSections struct {
	AuraNotes    string   `json:"aura_notes"`
	SkillNotes   string   `json:"skill_notes"`
	BestPairings []string `json:"best_pairings"`
}

// AnalysisContent is the type-specific payload of a unit analysis post.
// Exactly one of Character/Dragon is populated, selected by UnitType.
type AnalysisContent struct {
	UnitID    string             `json:"unit_id"`
	UnitType  UnitType           `json:"unit_type"`
	Summary   string             `json:"summary"`
	Character *CharacterSections `json:"character,omitempty"`
	Dragon    *DragonSections    `json:"dragon,omitempty"`
}

// ToMap converts the content to the generic field map stored in the post's
// JSONB column.
func (c *AnalysisContent) ToMap() (JSONMap, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	var m JSONMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// AnalysisView is the type-specific result shape handed to the response
// layer for a single analysis.
type AnalysisView struct {
	SequencedPost
	UnitID    string             `json:"unit_id"`
	UnitType  UnitType           `json:"unit_type"`
	Summary   string             `json:"summary"`
	Character *CharacterSections `json:"character,omitempty"`
	Dragon    *DragonSections    `json:"dragon,omitempty"`
}

// ExpandAnalysis turns a generic post record into the type-specific view,
// matching exhaustively on the unit type tag.
func ExpandAnalysis(post *SequencedPost) (*AnalysisView, error) {
	var content AnalysisContent
	data, err := json.Marshal(post.Content)
	if err != nil {
		return nil, fmt.Errorf("marshal analysis content: %w", err)
	}
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("decode analysis content: %w", err)
	}

	view := &AnalysisView{
		SequencedPost: *post,
		UnitID:        content.UnitID,
		UnitType:      content.UnitType,
		Summary:       content.Summary,
	}

	switch content.UnitType {
	case UnitTypeCharacter:
		view.Character = content.Character
		if view.Character == nil {
			view.Character = &CharacterSections{}
		}
	case UnitTypeDragon:
		view.Dragon = content.Dragon
		if view.Dragon == nil {
			view.Dragon = &DragonSections{}
		}
	default:
		return nil, fmt.Errorf("unknown unit type %q", content.UnitType)
	}

	return view, nil
}
