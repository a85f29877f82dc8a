// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlags_Keys(t *testing.T) {
	f := Flags()
	keys := f.Keys()

	v := reflect.ValueOf(f)
	assert.Len(t, keys, v.NumField(), "every flag needs a configuration key")
	for i := range v.NumField() {
		name := v.Field(i).String()
		assert.NotEmpty(t, name)
		assert.Contains(t, keys, name)
	}
	assert.Equal(t, "intel.retry.delay", keys[f.IntelRetryDelay])
	assert.Equal(t, "telemetry.sampleRatio", keys[f.TelemetrySampleRatio])
}
