// Package feeds serves the static operations feeds shown next to the
// network: alerts, work orders, water quality and conservation tips.
package feeds

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed feeds.yaml
var builtin []byte

type Alert struct {
	ID       int    `yaml:"id" json:"id"`
	Type     string `yaml:"type" json:"type"`
	Location string `yaml:"location" json:"location"`
	Severity string `yaml:"severity" json:"severity"`
	Time     string `yaml:"time" json:"time"`
}

type WorkOrder struct {
	ID       string `yaml:"id" json:"id"`
	Type     string `yaml:"type" json:"type"`
	Location string `yaml:"location" json:"location"`
	Priority string `yaml:"priority" json:"priority"`
	Status   string `yaml:"status" json:"status"`
	Time     string `yaml:"time" json:"time"`
}

// Reading is the latest water quality sample.
type Reading struct {
	PH        float64 `yaml:"ph" json:"ph"`
	Turbidity float64 `yaml:"turbidity" json:"turbidity"`
	Chlorine  float64 `yaml:"chlorine" json:"chlorine"`
	Status    string  `yaml:"status" json:"status"`
}

type DailyQuality struct {
	Day     string  `yaml:"day" json:"day"`
	PH      float64 `yaml:"ph" json:"ph"`
	Quality int     `yaml:"quality" json:"quality"`
}

type WaterQuality struct {
	Current Reading        `yaml:"current" json:"current"`
	History []DailyQuality `yaml:"history" json:"history"`
}

type Tip struct {
	ID    int    `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
	Text  string `yaml:"text" json:"text"`
	Icon  string `yaml:"icon" json:"icon"`
}

// Feeds is the full document.
type Feeds struct {
	Alerts       []Alert      `yaml:"alerts" json:"alerts"`
	WorkOrders   []WorkOrder  `yaml:"work_orders" json:"work_orders"`
	WaterQuality WaterQuality `yaml:"water_quality" json:"water_quality"`
	Tips         []Tip        `yaml:"tips" json:"tips"`
}

// Parse decodes a feeds document. Unknown keys are rejected.
func Parse(data []byte) (*Feeds, error) {
	var f Feeds
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse feeds: %w", err)
	}
	return &f, nil
}

var builtinFeeds = sync.OnceValues(func() (*Feeds, error) {
	return Parse(builtin)
})

// Default returns the embedded feeds. Callers must not modify the result.
func Default() (*Feeds, error) {
	return builtinFeeds()
}
