package game

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

// DiscoveryKey canonicalizes a fusion material multiset into a stable hex
// digest. The same templates in any order always hash to the same key, so a
// player can only discover each combination once.
func DiscoveryKey(materialTemplateIDs []string) string {
	sorted := append([]string(nil), materialTemplateIDs...)
	sort.Strings(sorted)

	var b strings.Builder
	b.WriteString("v1|m=")
	b.WriteString(strconv.Itoa(len(sorted)))
	b.WriteString("|")
	b.WriteString(strings.Join(sorted, "|"))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
