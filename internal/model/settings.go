package model

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"time"
)

// SettingsID is the fixed key of the settings singleton.
const SettingsID = "settings"

// PINLength is the number of digits in a security PIN.
const PINLength = 4

// DefaultReminderDays are the offsets used when none are configured.
var DefaultReminderDays = []int{0, 1}

// ErrInvalidPIN is returned for PINs that are not exactly four digits.
var ErrInvalidPIN = errors.New("pin must be exactly 4 digits")

// Notifications toggles each reminder category. A toggle missing from stored
// JSON decodes as enabled.
type Notifications struct {
	Anniversary bool `json:"anniversary"`
	Valentine   bool `json:"valentine"`
	Holidays    bool `json:"holidays"`
	OnThisDay   bool `json:"onThisDay"`
	Birthdays   bool `json:"birthdays"`
}

// AllNotifications has every category enabled.
func AllNotifications() Notifications {
	return Notifications{Anniversary: true, Valentine: true, Holidays: true, OnThisDay: true, Birthdays: true}
}

func (n *Notifications) UnmarshalJSON(b []byte) error {
	var raw struct {
		Anniversary *bool `json:"anniversary"`
		Valentine   *bool `json:"valentine"`
		Holidays    *bool `json:"holidays"`
		OnThisDay   *bool `json:"onThisDay"`
		Birthdays   *bool `json:"birthdays"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	n.Anniversary = boolOr(raw.Anniversary, true)
	n.Valentine = boolOr(raw.Valentine, true)
	n.Holidays = boolOr(raw.Holidays, true)
	n.OnThisDay = boolOr(raw.OnThisDay, true)
	n.Birthdays = boolOr(raw.Birthdays, true)
	return nil
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// Partner is one half of the couple.
type Partner struct {
	Name string
	// DOB is a calendar date; empty when unknown.
	DOB    string
	Avatar *string
}

// Display holds theme preferences. The core never interprets them but keeps
// them intact through storage and backups.
type Display struct {
	BgImage          *string `json:"bgImage"`
	BgOpacity        float64 `json:"bgOpacity"`
	CardOpacity      float64 `json:"cardOpacity"`
	ThemeEffect      string  `json:"themeEffect"`
	ThemeColor       string  `json:"themeColor"`
	FontStyle        string  `json:"fontStyle"`
	ShowTimeDetails  bool    `json:"showTimeDetails"`
	GlobalBackground bool    `json:"globalBackground"`
}

// Settings is the singleton configuration record.
type Settings struct {
	// StartDate may hold an unparseable string; date consumers degrade.
	StartDate       string
	CountFromDayOne bool
	// ReminderDays nil means "not configured" and falls back to [0];
	// an empty non-nil slice disables countdown reminders.
	ReminderDays  []int
	Notifications Notifications
	Partners      [2]Partner
	SecurityPIN   *string
	Display       Display
}

// DefaultSettings is the record used when the store holds none.
func DefaultSettings(now time.Time) Settings {
	return Settings{
		StartDate:       now.Format("2006-01-02"),
		CountFromDayOne: true,
		ReminderDays:    append([]int(nil), DefaultReminderDays...),
		Notifications:   AllNotifications(),
		Partners: [2]Partner{
			{Name: "Partner 1"},
			{Name: "Partner 2"},
		},
		Display: Display{
			BgOpacity:   0.6,
			CardOpacity: 0.6,
			ThemeEffect: "hearts",
			ThemeColor:  "#fa3452",
			FontStyle:   "sans",
		},
	}
}

// ReminderOffsets returns the configured offsets, or [0] when unset.
func (s *Settings) ReminderOffsets() []int {
	if s.ReminderDays == nil {
		return []int{0}
	}
	return s.ReminderDays
}

// PINEnabled reports whether the settings screen is locked.
func (s *Settings) PINEnabled() bool {
	return s.SecurityPIN != nil && *s.SecurityPIN != ""
}

// SetPIN validates and stores pin. An empty pin disables the lock.
func (s *Settings) SetPIN(pin string) error {
	if pin == "" {
		s.SecurityPIN = nil
		return nil
	}
	if err := ValidatePIN(pin); err != nil {
		return err
	}
	s.SecurityPIN = &pin
	return nil
}

// CheckPIN reports whether input unlocks the settings. Always true when no
// PIN is set.
func (s *Settings) CheckPIN(input string) bool {
	if !s.PINEnabled() {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(*s.SecurityPIN), []byte(input)) == 1
}

// ValidatePIN checks that pin is exactly four ASCII digits.
func ValidatePIN(pin string) error {
	if len(pin) != PINLength {
		return ErrInvalidPIN
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return ErrInvalidPIN
		}
	}
	return nil
}

// settingsJSON is the flat wire shape shared with existing backups.
type settingsJSON struct {
	ID              string        `json:"id,omitempty"`
	StartDate       string        `json:"startDate"`
	CountFromDayOne bool          `json:"countFromDayOne"`
	ReminderDays    []int         `json:"reminderDays"`
	Notifications   Notifications `json:"notifications"`
	Partner1Name    string        `json:"partner1Name"`
	Partner1Dob     string        `json:"partner1Dob"`
	Partner1Avatar  *string       `json:"partner1Avatar"`
	Partner2Name    string        `json:"partner2Name"`
	Partner2Dob     string        `json:"partner2Dob"`
	Partner2Avatar  *string       `json:"partner2Avatar"`
	SecurityPIN     *string       `json:"securityPin"`
	Display
}

func (s Settings) MarshalJSON() ([]byte, error) {
	return json.Marshal(settingsJSON{
		StartDate:       s.StartDate,
		CountFromDayOne: s.CountFromDayOne,
		ReminderDays:    s.ReminderDays,
		Notifications:   s.Notifications,
		Partner1Name:    s.Partners[0].Name,
		Partner1Dob:     s.Partners[0].DOB,
		Partner1Avatar:  s.Partners[0].Avatar,
		Partner2Name:    s.Partners[1].Name,
		Partner2Dob:     s.Partners[1].DOB,
		Partner2Avatar:  s.Partners[1].Avatar,
		SecurityPIN:     s.SecurityPIN,
		Display:         s.Display,
	})
}

func (s *Settings) UnmarshalJSON(b []byte) error {
	// Toggles default to on when the whole object is missing.
	w := settingsJSON{Notifications: AllNotifications()}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*s = Settings{
		StartDate:       w.StartDate,
		CountFromDayOne: w.CountFromDayOne,
		ReminderDays:    w.ReminderDays,
		Notifications:   w.Notifications,
		Partners: [2]Partner{
			{Name: w.Partner1Name, DOB: w.Partner1Dob, Avatar: w.Partner1Avatar},
			{Name: w.Partner2Name, DOB: w.Partner2Dob, Avatar: w.Partner2Avatar},
		},
		SecurityPIN: w.SecurityPIN,
		Display:     w.Display,
	}
	return nil
}
