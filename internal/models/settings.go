package models

import (
	"encoding/json"
	"time"
)

// Setting is a generic key/value entry; Value is opaque except for the keys
// with a validated shape.
type Setting struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

const SettingKeyCarousel = "carousel"

const DefaultCarouselInterval = 4000

// CarouselSettings is the validated shape stored under the "carousel" key.
type CarouselSettings struct {
	AutoPlay bool `json:"autoPlay"`
	Interval int  `json:"interval"`
}
