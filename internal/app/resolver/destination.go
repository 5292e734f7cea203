package resolver

import (
	"strconv"
	"strings"
	"time"

	"github.com/relinkd/relink/internal/app/model"
)

// ResolveDestination picks the destination URL for an available link.
// Precedence: time rules, then device rules, then the default URL. Time
// rules win over device rules whenever both sets are enabled. The function
// is pure; now must be the single per-request instant captured by the caller.
func ResolveDestination(link *model.Link, now time.Time, device model.DeviceClass) string {
	if link.TimeRules.Enabled {
		if url, ok := matchTimeRules(link.TimeRules.Rules, now); ok {
			return url
		}
	}

	if link.DeviceRules.Enabled {
		if url, ok := matchDeviceRules(link.DeviceRules.Rules, device); ok {
			return url
		}
	}

	return link.URL
}

// matchTimeRules walks rules in stored order and returns the first match.
// Rule order is an explicit priority set by the link owner, not a best-match
// search.
func matchTimeRules(rules []model.TimeRule, now time.Time) (string, bool) {
	for _, rule := range rules {
		if timeRuleMatches(rule, now) {
			return rule.URL, true
		}
	}
	return "", false
}

func timeRuleMatches(rule model.TimeRule, now time.Time) bool {
	// A rule pointing nowhere cannot match; falling through to the next
	// rule beats redirecting to an empty URL.
	if rule.URL == "" {
		return false
	}

	loc, err := time.LoadLocation(rule.Timezone)
	if err != nil {
		return false
	}

	start, ok := parseMinuteOfDay(rule.Start)
	if !ok {
		return false
	}
	end, ok := parseMinuteOfDay(rule.End)
	if !ok {
		return false
	}

	// start == end is a degenerate window and matches nothing, never
	// "all day". The conversion to local time happens per request so a
	// DST transition in the rule's zone takes effect immediately.
	if start == end {
		return false
	}

	local := now.In(loc)
	if !containsDay(rule.Days, int(local.Weekday())) {
		return false
	}

	minute := local.Hour()*60 + local.Minute()
	return minute >= start && minute < end
}

// parseMinuteOfDay parses an "HH:MM" clock string into minutes since
// midnight, rejecting anything outside 00:00..23:59.
func parseMinuteOfDay(s string) (int, bool) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	min, err := strconv.Atoi(m)
	if err != nil || min < 0 || min > 59 {
		return 0, false
	}
	return hour*60 + min, true
}

// containsDay checks membership in the rule's day list. Day numbering is
// 0=Sunday..6=Saturday, matching time.Weekday directly.
func containsDay(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

// matchDeviceRules finds the rule for the visitor's device class. Tablets
// degrade to the mobile rule when no tablet rule exists.
func matchDeviceRules(rules []model.DeviceRule, device model.DeviceClass) (string, bool) {
	for _, rule := range rules {
		if rule.Device == device && rule.URL != "" {
			return rule.URL, true
		}
	}

	if device == model.DeviceTablet {
		for _, rule := range rules {
			if rule.Device == model.DeviceMobile && rule.URL != "" {
				return rule.URL, true
			}
		}
	}

	return "", false
}
