// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package appconfig caches runtime settings stored in the app_config table.

A Cache is an explicit value owned by whoever needs fresh settings; there
is no package-level state. Values are reloaded from the Source after the
TTL (60s by default) and can be dropped early with Invalidate:

	configs := appconfig.New(st, appconfig.WithClock(clock))

	var defaults appconfig.DecisionDefaults
	found, err := configs.Get(ctx, appconfig.KeyDecisionDefaults, &defaults)

	// after a staff update
	configs.Invalidate(appconfig.KeyDecisionDefaults)

# Keys

  - decision_ttl_seconds: {"default": 7200, "restaurants": 3600}
  - decision_defaults: {"maxOptions": 8}
*/
package appconfig
