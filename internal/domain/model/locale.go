package model

import (
	"fmt"
	"strings"
)

// Locale holds the display labels and fault wording used when rendering a report.
type Locale struct {
	Name         string
	Labels       map[string]string
	MissingField string
	FetchFault   string
}

// LocaleEN keeps raw field ids as labels.
var LocaleEN = Locale{
	Name:         "en",
	MissingField: "field not found: %s",
	FetchFault:   "error occurred: %s",
}

// LocaleZhTW labels the solar dashboard fields in Traditional Chinese.
var LocaleZhTW = Locale{
	Name: "zh-TW",
	Labels: map[string]string{
		"lbl_online_date": "系統掛表日期",
		"lbl_daily_pw":    "今日發電量kw",
		"lbl_today_price": "今日收入",
		"lbl_total_price": "掛表至今總收入",
		"lbl_system_time": "更新時間",
	},
	MissingField: "找不到 id 為 %s 的 span 元素",
	FetchFault:   "發生錯誤: %s",
}

// LookupLocale finds a built-in locale by name, case-insensitively.
func LookupLocale(name string) (Locale, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "en":
		return LocaleEN, true
	case "zh-tw", "zh_tw":
		return LocaleZhTW, true
	default:
		return Locale{}, false
	}
}

// Label returns the display label for id, falling back to the id itself.
func (l Locale) Label(id string) string {
	if label, ok := l.Labels[id]; ok {
		return label
	}
	return id
}

// MissingFieldText is the fault string for a field absent from the page.
func (l Locale) MissingFieldText(id string) string {
	format := l.MissingField
	if format == "" {
		format = LocaleEN.MissingField
	}
	return fmt.Sprintf(format, id)
}

// FetchFaultText is the fault string for every field of a page that could not be fetched.
func (l Locale) FetchFaultText(err error) string {
	format := l.FetchFault
	if format == "" {
		format = LocaleEN.FetchFault
	}
	return fmt.Sprintf(format, err)
}
