//go:build unit
// +build unit

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetVersion(t *testing.T) {
	tests := []struct {
		name               string
		conf               *Conf
		versionByBuildFlag string
		wantVersion        string
	}{
		{
			name:               "build flag only",
			conf:               &Conf{},
			versionByBuildFlag: "v0.3.0",
			wantVersion:        "v0.3.0",
		},
		{
			name:               "conf only",
			conf:               &Conf{Version: "v0.2.1"},
			versionByBuildFlag: "",
			wantVersion:        "v0.2.1",
		},
		{
			name:               "build flag wins over conf",
			conf:               &Conf{Version: "v0.2.1"},
			versionByBuildFlag: "v0.3.0",
			wantVersion:        "v0.3.0",
		},
		{
			name:               "neither set",
			conf:               &Conf{},
			versionByBuildFlag: "",
			wantVersion:        NoVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetVersion(tt.conf, tt.versionByBuildFlag)
			assert.Equal(t, tt.wantVersion, Version)
		})
	}
}
