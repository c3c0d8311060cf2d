package model

import "time"

type Plant struct {
	ID             int64
	Name           string
	NameNorm       string
	DisplayName    string
	Category       string
	Spacing        string
	RowSpacingCM   float64
	PlantSpacingCM float64
	Notes          string
	Image          PlantImage
	ImageCheckedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (p Plant) Label() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Name
}

type PlantImage struct {
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
	ThumbURL string `json:"thumb_url,omitempty" yaml:"thumb_url,omitempty"`
	Author   string `json:"author,omitempty" yaml:"author,omitempty"`
	License  string `json:"license,omitempty" yaml:"license,omitempty"`
	PageURL  string `json:"page_url,omitempty" yaml:"page_url,omitempty"`
}

func (i PlantImage) Empty() bool {
	return i.URL == ""
}

type FrostProfile struct {
	LastFrost  string
	FirstFrost string
	Location   string
}
