package nudbconfig

import "embed"

// The default configuration ships inside the package so a bare import is
// enough to get a working settings object, the same way the upstream
// metadata catalog is distributed.
//
//go:embed config/*.yaml
var embeddedConfig embed.FS
