package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"solar-relay/internal/domain/model"
)

// SolarFields are the dashboard element ids read by default.
var SolarFields = []string{
	"lbl_online_date",
	"lbl_daily_pw",
	"lbl_today_price",
	"lbl_total_price",
	"lbl_system_time",
}

var defaultTargetURLs = []string{
	"http://tienching.ipvita.net/InstantPower.aspx?gw6UXnBQFxQcqRQvH_s-Zw&lang=traditional_chinese&time=0",
	"http://tienching.ipvita.net/InstantPower.aspx?9SGSfISfMFauB-qNFJwe2w&lang=traditional_chinese&time=",
	"http://tienching.ipvita.net/InstantPower.aspx?Us4azBhQh_643NPCj6EZzQ&lang=traditional_chinese&time=0",
}

// DefaultTargets returns the three built-in solar sites.
func DefaultTargets() []model.Target {
	targets := make([]model.Target, 0, len(defaultTargetURLs))
	for i, u := range defaultTargetURLs {
		targets = append(targets, model.Target{
			Name:   fmt.Sprintf("第%d期", i+1),
			URL:    u,
			Tag:    model.DefaultTag,
			Fields: append([]string(nil), SolarFields...),
		})
	}
	return targets
}

type targetFile struct {
	Targets []targetEntry `yaml:"targets"`
}

type targetEntry struct {
	Name   string   `yaml:"name"`
	URL    string   `yaml:"url"`
	Tag    string   `yaml:"tag"`
	Fields []string `yaml:"fields"`
}

// LoadTargets reads target definitions from a YAML file.
func LoadTargets(path string) ([]model.Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read targets file: %w", err)
	}
	return ParseTargets(data)
}

// ParseTargets decodes target definitions from YAML. Entries without fields
// read the default solar fields; unnamed entries are numbered.
func ParseTargets(data []byte) ([]model.Target, error) {
	var file targetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse targets file: %w", err)
	}

	targets := make([]model.Target, 0, len(file.Targets))
	for i, entry := range file.Targets {
		target := model.Target{
			Name:   entry.Name,
			URL:    entry.URL,
			Tag:    entry.Tag,
			Fields: entry.Fields,
		}
		if target.Name == "" {
			target.Name = fmt.Sprintf("第%d期", i+1)
		}
		if target.Tag == "" {
			target.Tag = model.DefaultTag
		}
		if len(target.Fields) == 0 {
			target.Fields = append([]string(nil), SolarFields...)
		}
		targets = append(targets, target)
	}

	if err := ValidateTargets(targets); err != nil {
		return nil, err
	}
	return targets, nil
}

// ValidateTargets checks every target has an absolute http(s) URL and unique fields.
func ValidateTargets(targets []model.Target) error {
	if len(targets) == 0 {
		return errors.New("at least one target is required")
	}

	var errs []error
	for i, t := range targets {
		u, err := url.Parse(t.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("target %d (%s): url %q must be an absolute http(s) URL", i+1, t.Name, t.URL))
		}
		if len(t.Fields) == 0 {
			errs = append(errs, fmt.Errorf("target %d (%s): at least one field is required", i+1, t.Name))
		}
		seen := make(map[string]struct{}, len(t.Fields))
		for _, f := range t.Fields {
			if f == "" {
				errs = append(errs, fmt.Errorf("target %d (%s): empty field id", i+1, t.Name))
				continue
			}
			if _, dup := seen[f]; dup {
				errs = append(errs, fmt.Errorf("target %d (%s): duplicate field %q", i+1, t.Name, f))
			}
			seen[f] = struct{}{}
		}
	}
	return errors.Join(errs...)
}

func validateCron(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("SCHEDULE_CRON %q: %w", spec, err)
	}
	return nil
}
