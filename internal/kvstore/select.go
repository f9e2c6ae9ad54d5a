package kvstore

// Select builds the tier chain from the configured backends. remote and
// cache may be nil when not configured; local is always last.
//
// The remote REST tier is not authoritative: a key missing there may still
// live in a lower tier. Cache and local tiers answer "absent" for good.
func Select(remote, cache, local Backend) []Tier {
	var tiers []Tier
	if remote != nil {
		tiers = append(tiers, Tier{Backend: remote})
	}
	if cache != nil {
		tiers = append(tiers, Tier{Backend: cache, Authoritative: true})
	}
	if local != nil {
		tiers = append(tiers, Tier{Backend: local, Authoritative: true})
	}
	return tiers
}
