// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package decision

import (
	"context"

	"github.com/danielhkuo/unanimy/store"
)

// SetBeforeTransition installs fn to run inside the closing transaction
// right before the open -> closed update
func SetBeforeTransition(s *Service, fn func(ctx context.Context, tx *store.Store, id string) error) {
	s.beforeTransition = fn
}
