package models

import "encoding/json"

// QuestContent is the type-specific payload of a quest write-up post.
type QuestContent struct {
	QuestID      string   `json:"quest_id"`
	Boss         string   `json:"boss"`
	Positioning  string   `json:"positioning"`
	TeamNotes    string   `json:"team_notes"`
	Attributions []string `json:"attributions"`
	VideoURL     string   `json:"video_url,omitempty"`
}

// ToMap converts the content to the generic field map stored in the post's
// JSONB column.
func (c *QuestContent) ToMap() (JSONMap, error) {
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

// MiscContent is the type-specific payload of a misc article post.
type MiscContent struct {
	Sections []MiscSection `json:"sections"`
	Tags     []string      `json:"tags,omitempty"`
}

// MiscSection is one titled body of a misc article.
type MiscSection struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// ToMap converts the content to the generic field map stored in the post's
// JSONB column.
func (c *MiscContent) ToMap() (JSONMap, error) {
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
