package build

import "strings"

// Set at link time, e.g.
// -ldflags "-X github.com/rohmanhakim/a11y-crawler/internal/build.Version=1.2.0"
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

const shortCommitLen = 7

// FullVersion is what --version prints: "1.2.0+abc1234", followed by
// " (built <time>)" when the build time was stamped. Full commit hashes
// are shortened.
func FullVersion() string {
	var b strings.Builder
	b.WriteString(Version)
	b.WriteString("+")
	b.WriteString(shortCommit(Commit))
	if BuildTime != "" && BuildTime != "unknown" {
		b.WriteString(" (built ")
		b.WriteString(BuildTime)
		b.WriteString(")")
	}
	return b.String()
}

func shortCommit(commit string) string {
	if len(commit) > shortCommitLen && isHex(commit) {
		return commit[:shortCommitLen]
	}
	return commit
}

func isHex(s string) bool {
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}
