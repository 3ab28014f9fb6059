// Package version reports the build of the running binary.
//
// Values are set at link time and fall back to the module build info:
//
//	go build -ldflags "-X github.com/kbukum/ssehub/version.Version=1.0.0 \
//	  -X github.com/kbukum/ssehub/version.GitCommit=$(git rev-parse --short HEAD)"
package version
