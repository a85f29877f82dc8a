// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/telekom/pathscope/internal/hop"
)

func TestCommandFor(t *testing.T) {
	tests := []struct {
		goos        string
		wantName    string
		wantDialect hop.Dialect
	}{
		{"linux", "traceroute", hop.DialectUnix},
		{"darwin", "traceroute", hop.DialectUnix},
		{"freebsd", "traceroute", hop.DialectUnix},
		{"windows", "tracert", hop.DialectWindows},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			c := CommandFor(tt.goos)
			assert.Equal(t, tt.wantName, c.Name)
			assert.Equal(t, tt.wantDialect, c.Dialect)
			assert.NotEmpty(t, c.Remediation)
		})
	}
}

func TestCommand_argv(t *testing.T) {
	c := CommandFor("linux")
	argv := c.argv("example.com")

	assert.Equal(t, "example.com", argv[len(argv)-1])
	assert.Len(t, c.Args, len(argv)-1, "argv must not grow the command's args")

	// A hostile-looking target stays one discrete argument.
	argv = c.argv("a; rm -rf /")
	assert.Equal(t, "a; rm -rf /", argv[len(argv)-1])
}
