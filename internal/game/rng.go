package game

// The engine owns its shuffle so that a seed reproduces the exact same duel
// on any platform. splitmix64 keeps the sequence stable without depending on
// a library RNG whose stream could change between versions.

func splitmix64(state *uint64) uint64 {
	*state += 0x9e3779b97f4a7c15
	z := *state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// deterministicHash folds a string into a 64-bit seed (FNV-1a).
func deterministicHash(input string) int64 {
	var hash uint64 = 0xcbf29ce484222325
	for i := 0; i < len(input); i++ {
		hash ^= uint64(input[i])
		hash *= 0x100000001b3
	}
	return int64(hash)
}

// shuffleWithSeed returns a new slice with the items in seeded random order.
func shuffleWithSeed(items []string, seed int64) []string {
	out := append([]string(nil), items...)
	state := uint64(seed)
	for i := len(out) - 1; i > 0; i-- {
		j := int(splitmix64(&state) % uint64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}
