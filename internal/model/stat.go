package model

import (
	"strings"
	"unicode/utf8"
)

// StatKey names one trackable per-player statistic.
type StatKey string

const (
	StatGoals           StatKey = "goals"
	StatAssists         StatKey = "assists"
	StatShotsOnTarget   StatKey = "shotsOnTarget"
	StatShotsOffTarget  StatKey = "shotsOffTarget"
	StatPassesCompleted StatKey = "passesCompleted"
	StatPassesMissed    StatKey = "passesMissed"
	StatInterceptions   StatKey = "interceptions"
	StatTackles         StatKey = "tackles"
	StatFouls           StatKey = "fouls"
	StatDribbles        StatKey = "dribbles"
	StatSaves           StatKey = "saves"
	StatGoalsConceded   StatKey = "goalsConceded"
)

// StatInfo is the display metadata attached to a StatKey.
type StatInfo struct {
	Key        StatKey `json:"key"`
	Label      string  `json:"label"`
	ShortLabel string  `json:"short_label"`
	Shortcut   string  `json:"shortcut"`
	GKOnly     bool    `json:"gk_only"`
}

// statCatalog is ordered the way stats are presented on the tracking screen.
var statCatalog = []StatInfo{
	{Key: StatGoals, Label: "Goal", ShortLabel: "GOL", Shortcut: "G"},
	{Key: StatAssists, Label: "Assist", ShortLabel: "AST", Shortcut: "A"},
	{Key: StatShotsOnTarget, Label: "Shot on Target", ShortLabel: "SOT", Shortcut: "S"},
	{Key: StatShotsOffTarget, Label: "Shot off Target", ShortLabel: "MIS", Shortcut: "X"},
	{Key: StatPassesCompleted, Label: "Pass Completed", ShortLabel: "PAS", Shortcut: "P"},
	{Key: StatPassesMissed, Label: "Pass Missed", ShortLabel: "M.P", Shortcut: "M"},
	{Key: StatInterceptions, Label: "Interception", ShortLabel: "INT", Shortcut: "I"},
	{Key: StatTackles, Label: "Tackle", ShortLabel: "TCK", Shortcut: "T"},
	{Key: StatFouls, Label: "Foul", ShortLabel: "FOU", Shortcut: "F"},
	{Key: StatDribbles, Label: "Dribble", ShortLabel: "DRB", Shortcut: "D"},
	{Key: StatSaves, Label: "Save", ShortLabel: "SAV", Shortcut: "V", GKOnly: true},
	{Key: StatGoalsConceded, Label: "Goal Conceded", ShortLabel: "CON", Shortcut: "C", GKOnly: true},
}

// StatCatalog returns a copy of the full catalog in presentation order.
func StatCatalog() []StatInfo {
	out := make([]StatInfo, len(statCatalog))
	copy(out, statCatalog)
	return out
}

// AllStats lists every StatKey in catalog order.
func AllStats() []StatKey {
	out := make([]StatKey, len(statCatalog))
	for i, s := range statCatalog {
		out[i] = s.Key
	}
	return out
}

// Info returns the catalog entry of k.
func (k StatKey) Info() (StatInfo, bool) {
	for _, s := range statCatalog {
		if s.Key == k {
			return s, true
		}
	}
	return StatInfo{}, false
}

// Valid reports whether k is one of the twelve known stats.
func (k StatKey) Valid() bool {
	_, ok := k.Info()
	return ok
}

// StatForShortcut resolves a single-character keyboard shortcut, case-insensitively.
func StatForShortcut(key string) (StatKey, bool) {
	key = strings.TrimSpace(key)
	if utf8.RuneCountInString(key) != 1 {
		return "", false
	}
	key = strings.ToUpper(key)
	for _, s := range statCatalog {
		if s.Shortcut == key {
			return s.Key, true
		}
	}
	return "", false
}

// PlayerStats holds one counter per StatKey. Counts are never negative at rest.
type PlayerStats struct {
	Goals           int `json:"goals"`
	Assists         int `json:"assists"`
	ShotsOnTarget   int `json:"shotsOnTarget"`
	ShotsOffTarget  int `json:"shotsOffTarget"`
	PassesCompleted int `json:"passesCompleted"`
	PassesMissed    int `json:"passesMissed"`
	Interceptions   int `json:"interceptions"`
	Tackles         int `json:"tackles"`
	Fouls           int `json:"fouls"`
	Dribbles        int `json:"dribbles"`
	Saves           int `json:"saves"`
	GoalsConceded   int `json:"goalsConceded"`
}

func (s *PlayerStats) field(k StatKey) *int {
	switch k {
	case StatGoals:
		return &s.Goals
	case StatAssists:
		return &s.Assists
	case StatShotsOnTarget:
		return &s.ShotsOnTarget
	case StatShotsOffTarget:
		return &s.ShotsOffTarget
	case StatPassesCompleted:
		return &s.PassesCompleted
	case StatPassesMissed:
		return &s.PassesMissed
	case StatInterceptions:
		return &s.Interceptions
	case StatTackles:
		return &s.Tackles
	case StatFouls:
		return &s.Fouls
	case StatDribbles:
		return &s.Dribbles
	case StatSaves:
		return &s.Saves
	case StatGoalsConceded:
		return &s.GoalsConceded
	default:
		return nil
	}
}

// Get returns the count for k; unknown keys read as zero.
func (s PlayerStats) Get(k StatKey) int {
	if p := s.field(k); p != nil {
		return *p
	}
	return 0
}

// Add applies delta to k and clamps the result at zero.
// It returns false when k is not a known stat.
func (s *PlayerStats) Add(k StatKey, delta int) bool {
	p := s.field(k)
	if p == nil {
		return false
	}
	*p += delta
	if *p < 0 {
		*p = 0
	}
	return true
}

// Plus returns the element-wise sum of s and o.
func (s PlayerStats) Plus(o PlayerStats) PlayerStats {
	out := s
	for _, k := range AllStats() {
		*out.field(k) += o.Get(k)
	}
	return out
}

// AsMap renders the counters keyed by StatKey, always with all twelve keys.
func (s PlayerStats) AsMap() map[StatKey]int {
	out := make(map[StatKey]int, len(statCatalog))
	for _, k := range AllStats() {
		out[k] = s.Get(k)
	}
	return out
}
