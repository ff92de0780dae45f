package rcon

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Reply is the decoded top-level object of a command response. An empty
// Reply means the command did not go through.
type Reply map[string]json.RawMessage

func (r Reply) Empty() bool {
	return len(r) == 0
}

// Successful reports the reply's success flag. Replies without a flag count
// as successful.
func (r Reply) Successful() bool {
	raw, ok := r["Successful"]
	if !ok {
		return true
	}
	var flag bool
	if err := json.Unmarshal(raw, &flag); err != nil {
		return false
	}
	return flag
}

// Field decodes one top-level field into v.
func (r Reply) Field(name string, v any) error {
	raw, ok := r[name]
	if !ok {
		return fmt.Errorf("reply has no field %q", name)
	}
	return json.Unmarshal(raw, v)
}

// flexInt accepts both JSON numbers and numeric strings; the game server
// reports scores and rounds as strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexInt(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected number or string, got %s", string(data))
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", s, err)
	}
	*f = flexInt(n)
	return nil
}

// parseKDA splits a "kills/deaths/assists" triple. Missing parts are zero.
func parseKDA(s string) (kills, deaths, assists int) {
	parts := strings.Split(s, "/")
	vals := make([]int, 3)
	for i := 0; i < len(parts) && i < 3; i++ {
		vals[i], _ = strconv.Atoi(strings.TrimSpace(parts[i]))
	}
	return vals[0], vals[1], vals[2]
}
