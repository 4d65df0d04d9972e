// Package options provides the typed configuration side-channel used while
// assembling a machine topology. Machine generators stash per-component
// options in a Store, and component factories read them back by instance
// name. Absence of a key is a valid state, not an error.
package options

import "strconv"

// A Store holds boolean, integer, and string options, keyed first by
// component instance name and then by option name.
type Store struct {
	bools map[string]map[string]bool
	ints  map[string]map[string]int
	strs  map[string]map[string]string
}

// NewStore creates an empty option Store.
func NewStore() *Store {
	return &Store{
		bools: make(map[string]map[string]bool),
		ints:  make(map[string]map[string]int),
		strs:  make(map[string]map[string]string),
	}
}

// InstanceName derives the conventional instance name for a numbered
// component, such as "core0" for kind "core" and id 0.
func InstanceName(kind string, id int) string {
	return kind + strconv.Itoa(id)
}

// AddBool sets a boolean option. Rewriting a key overwrites the old value.
func (s *Store) AddBool(name, opt string, value bool) {
	inner, ok := s.bools[name]
	if !ok {
		inner = make(map[string]bool)
		s.bools[name] = inner
	}
	inner[opt] = value
}

// AddInt sets an integer option.
func (s *Store) AddInt(name, opt string, value int) {
	inner, ok := s.ints[name]
	if !ok {
		inner = make(map[string]int)
		s.ints[name] = inner
	}
	inner[opt] = value
}

// AddString sets a string option.
func (s *Store) AddString(name, opt, value string) {
	inner, ok := s.strs[name]
	if !ok {
		inner = make(map[string]string)
		s.strs[name] = inner
	}
	inner[opt] = value
}

// AddBoolFor sets a boolean option for a numbered component instance.
func (s *Store) AddBoolFor(kind string, id int, opt string, value bool) {
	s.AddBool(InstanceName(kind, id), opt, value)
}

// AddIntFor sets an integer option for a numbered component instance.
func (s *Store) AddIntFor(kind string, id int, opt string, value int) {
	s.AddInt(InstanceName(kind, id), opt, value)
}

// AddStringFor sets a string option for a numbered component instance.
func (s *Store) AddStringFor(kind string, id int, opt, value string) {
	s.AddString(InstanceName(kind, id), opt, value)
}

// GetBool looks up a boolean option. The second return value reports
// whether the option was found.
func (s *Store) GetBool(name, opt string) (bool, bool) {
	inner, ok := s.bools[name]
	if !ok {
		return false, false
	}
	v, ok := inner[opt]
	return v, ok
}

// GetInt looks up an integer option.
func (s *Store) GetInt(name, opt string) (int, bool) {
	inner, ok := s.ints[name]
	if !ok {
		return 0, false
	}
	v, ok := inner[opt]
	return v, ok
}

// GetString looks up a string option.
func (s *Store) GetString(name, opt string) (string, bool) {
	inner, ok := s.strs[name]
	if !ok {
		return "", false
	}
	v, ok := inner[opt]
	return v, ok
}

// IntOrDefault returns the option value if present, or def otherwise.
func (s *Store) IntOrDefault(name, opt string, def int) int {
	if v, ok := s.GetInt(name, opt); ok {
		return v
	}
	return def
}

// BoolOrDefault returns the option value if present, or def otherwise.
func (s *Store) BoolOrDefault(name, opt string, def bool) bool {
	if v, ok := s.GetBool(name, opt); ok {
		return v
	}
	return def
}

// StringOrDefault returns the option value if present, or def otherwise.
func (s *Store) StringOrDefault(name, opt, def string) string {
	if v, ok := s.GetString(name, opt); ok {
		return v
	}
	return def
}
