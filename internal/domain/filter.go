// Package domain decides whether a question is about snakes before any
// upstream call is made.
package domain

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultKeywords covers Thai and English vocabulary for snake species,
// venom types and snakebite treatment.
var DefaultKeywords = []string{
	// Thai
	"งู", "งูมีพิษ", "งูไม่มีพิษ", "พิษงู", "โดนงูกัด", "ถูกงูกัด",
	"ปฐมพยาบาลงู", "สายพันธุ์งู", "ชนิดงู",
	"งูเห่า", "งูจงอาง", "งูสามเหลี่ยม", "งูกะปะ",
	"งูเขียวหางไหม้", "งูทางมะพร้าว", "งูเหลือม", "งูหลาม",
	"เขี้ยวงู", "เซรุ่ม", "พิษประสาท", "พิษเลือด", "พิษกล้ามเนื้อ",
	// English
	"snake", "snakes", "snakebite", "venom", "antivenom",
	"cobra", "king cobra", "krait", "viper", "pit viper",
}

var defaultFilter = NewFilter(DefaultKeywords)

// IsInDomain reports whether text mentions any of the built-in keywords.
func IsInDomain(text string) bool {
	return defaultFilter.InDomain(text)
}

// Filter is an immutable keyword matcher, safe for concurrent use.
type Filter struct {
	keywords []string
}

// NewFilter lower-cases the keywords and drops blank entries, since an empty
// keyword would match every input.
func NewFilter(keywords []string) *Filter {
	kws := make([]string, 0, len(keywords))
	seen := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		kws = append(kws, k)
	}
	return &Filter{keywords: kws}
}

// InDomain lower-cases text and returns true iff at least one keyword is a
// substring of it.
func (f *Filter) InDomain(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	t := strings.ToLower(text)
	for _, k := range f.keywords {
		if strings.Contains(t, k) {
			return true
		}
	}
	return false
}

// Keywords returns a copy of the normalized keyword list.
func (f *Filter) Keywords() []string {
	out := make([]string, len(f.keywords))
	copy(out, f.keywords)
	return out
}

// keywordFile is the YAML layout accepted by LoadKeywordsFile:
//
//	replace: false
//	keywords:
//	  - rattlesnake
//	  - งูแมวเซา
type keywordFile struct {
	Replace  bool     `yaml:"replace"`
	Keywords []string `yaml:"keywords"`
}

// LoadKeywordsFile reads a YAML keyword file and returns the resulting list.
// Unless the file sets replace: true, its keywords extend DefaultKeywords.
func LoadKeywordsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keyword file: %w", err)
	}

	var kf keywordFile
	if err := yaml.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("failed to parse keyword file %s: %w", path, err)
	}

	if kf.Replace {
		if len(kf.Keywords) == 0 {
			return nil, fmt.Errorf("keyword file %s replaces the defaults but lists no keywords", path)
		}
		return kf.Keywords, nil
	}

	out := make([]string, 0, len(DefaultKeywords)+len(kf.Keywords))
	out = append(out, DefaultKeywords...)
	out = append(out, kf.Keywords...)
	return out, nil
}
