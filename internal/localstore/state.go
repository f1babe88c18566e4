package localstore

import (
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"time"
)

const (
	keyMySplits = "easysplit-my-splits"
	keyMenus    = "easysplit-menus"
	keyStatuses = "easysplit-split-statuses"
	keyUserName = "easysplit-user-name"
)

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

type SplitStatus struct {
	Code    string    `json:"code"`
	Status  Status    `json:"status"`
	SavedAt time.Time `json:"savedAt"`
}

func (st SplitStatus) valid() bool {
	return st.Code != "" && (st.Status == StatusOpen || st.Status == StatusClosed) && !st.SavedAt.IsZero()
}

// MySplits returns codes of splits saved from this device, most recent first.
func (s *Store) MySplits() []string {
	return s.codes(keyMySplits)
}

// AddMySplit puts code at the front of MySplits unless it is already listed.
func (s *Store) AddMySplit(code string) error {
	return s.prepend(keyMySplits, code)
}

func (s *Store) RemoveMySplit(code string) error {
	code = normalize(code)

	return s.Set(keyMySplits, slices.DeleteFunc(s.MySplits(), func(c string) bool { return c == code }))
}

// OwnedMenus returns codes of menus created from this device.
func (s *Store) OwnedMenus() []string {
	return s.codes(keyMenus)
}

func (s *Store) AddOwnedMenu(code string) error {
	return s.prepend(keyMenus, code)
}

// SplitStatuses returns every valid status entry. Invalid entries are dropped and the
// cleaned list is written back.
func (s *Store) SplitStatuses() []SplitStatus {
	var raw []json.RawMessage

	ok, err := s.Get(keyStatuses, &raw)
	if err != nil {
		slog.Warn("failed to reset split statuses", "error", err)
	}

	if !ok {
		return nil
	}

	statuses := make([]SplitStatus, 0, len(raw))

	for _, r := range raw {
		var st SplitStatus
		if err := json.Unmarshal(r, &st); err != nil || !st.valid() {
			continue
		}

		statuses = append(statuses, st)
	}

	if dropped := len(raw) - len(statuses); dropped > 0 {
		slog.Warn("filtered invalid split status entries", "count", dropped)

		if err := s.Set(keyStatuses, statuses); err != nil {
			slog.Warn("failed to save cleaned split statuses", "error", err)
		}
	}

	return statuses
}

// SplitStatus defaults to open for splits with no recorded status.
func (s *Store) SplitStatus(code string) Status {
	code = normalize(code)

	for _, st := range s.SplitStatuses() {
		if st.Code == code {
			return st.Status
		}
	}

	return StatusOpen
}

func (s *Store) SetSplitStatus(code string, status Status) error {
	entry := SplitStatus{Code: normalize(code), Status: status, SavedAt: time.Now().UTC()}

	statuses := s.SplitStatuses()

	i := slices.IndexFunc(statuses, func(st SplitStatus) bool { return st.Code == entry.Code })
	if i >= 0 {
		statuses[i] = entry
	} else {
		statuses = append(statuses, entry)
	}

	return s.Set(keyStatuses, statuses)
}

func (s *Store) RemoveSplitStatus(code string) error {
	code = normalize(code)

	return s.Set(keyStatuses, slices.DeleteFunc(s.SplitStatuses(), func(st SplitStatus) bool { return st.Code == code }))
}

// OpenSplits returns codes whose recorded status is open.
func (s *Store) OpenSplits() []string {
	var out []string

	for _, st := range s.SplitStatuses() {
		if st.Status == StatusOpen {
			out = append(out, st.Code)
		}
	}

	return out
}

// UserName is the name remembered for joining splits, or "".
func (s *Store) UserName() string {
	var name string
	if _, err := s.Get(keyUserName, &name); err != nil {
		slog.Warn("failed to reset user name", "error", err)
	}

	return name
}

func (s *Store) SetUserName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return s.Delete(keyUserName)
	}

	return s.Set(keyUserName, name)
}

func (s *Store) codes(key string) []string {
	var codes []string
	if _, err := s.Get(key, &codes); err != nil {
		slog.Warn("failed to reset stored codes", "key", key, "error", err)
	}

	return codes
}

func (s *Store) prepend(key, code string) error {
	code = normalize(code)
	codes := s.codes(key)

	if slices.Contains(codes, code) {
		return nil
	}

	return s.Set(key, append([]string{code}, codes...))
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
