// SPDX-License-Identifier: MIT

package settings

import (
	"context"

	"github.com/rs/zerolog"
)

// Fallback is the explicit "never block the settings UI on a transient
// backend failure" policy: it runs fetch and substitutes def on any error.
// Only the façade methods enumerated in their package tests opt into this;
// everything else propagates transport errors unchanged.
func Fallback[T any](ctx context.Context, logger zerolog.Logger, name string, fetch func(context.Context) (T, error), def func() T) T {
	value, err := fetch(ctx)
	if err != nil {
		logger.Warn().Err(err).Str("endpoint", name).Msg("settings fetch failed, serving defaults")
		return def()
	}
	return value
}
